package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ait-ops/cmms-api/internal/dto"
	"github.com/ait-ops/cmms-api/internal/models"
	appErrors "github.com/ait-ops/cmms-api/pkg/errors"
	"github.com/ait-ops/cmms-api/pkg/response"
)

type workOrderService interface {
	List(ctx context.Context, filter models.WorkOrderFilter) ([]models.WorkOrder, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.WorkOrder, error)
	Create(ctx context.Context, req dto.CreateWorkOrderRequest) (*models.WorkOrder, error)
	UpdateStatus(ctx context.Context, id string, req dto.UpdateWorkOrderStatusRequest) error
	Close(ctx context.Context, id string, req dto.CloseWorkOrderRequest) error
}

// WorkOrderHandler exposes corrective maintenance endpoints.
type WorkOrderHandler struct {
	service workOrderService
}

// NewWorkOrderHandler constructs the handler.
func NewWorkOrderHandler(service workOrderService) *WorkOrderHandler {
	return &WorkOrderHandler{service: service}
}

// List godoc
// @Summary List work orders
// @Tags WorkOrders
// @Produce json
// @Security BearerAuth
// @Param bfmNo query string false "Equipment number filter"
// @Param status query string false "Status filter"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /work-orders [get]
func (h *WorkOrderHandler) List(c *gin.Context) {
	filter := models.WorkOrderFilter{
		BFMNo:    c.Query("bfmNo"),
		Status:   c.Query("status"),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "pageSize", 20),
	}
	orders, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, orders, pagination)
}

// Get godoc
// @Summary Get one work order
// @Tags WorkOrders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Work order ID"
// @Success 200 {object} response.Envelope
// @Router /work-orders/{id} [get]
func (h *WorkOrderHandler) Get(c *gin.Context) {
	order, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, order, nil)
}

// Create godoc
// @Summary Open a work order
// @Tags WorkOrders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateWorkOrderRequest true "Work order details"
// @Success 201 {object} response.Envelope
// @Router /work-orders [post]
func (h *WorkOrderHandler) Create(c *gin.Context) {
	var req dto.CreateWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid work order payload"))
		return
	}
	order, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, order)
}

// UpdateStatus godoc
// @Summary Move a work order between Open and In Progress
// @Tags WorkOrders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Work order ID"
// @Param payload body dto.UpdateWorkOrderStatusRequest true "New status"
// @Success 204
// @Router /work-orders/{id}/status [patch]
func (h *WorkOrderHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateWorkOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid status payload"))
		return
	}
	if err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Close godoc
// @Summary Close a work order
// @Tags WorkOrders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Work order ID"
// @Param payload body dto.CloseWorkOrderRequest true "Close-out details"
// @Success 204
// @Router /work-orders/{id}/close [post]
func (h *WorkOrderHandler) Close(c *gin.Context) {
	var req dto.CloseWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid close payload"))
		return
	}
	if err := h.service.Close(c.Request.Context(), c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
