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

type partService interface {
	List(ctx context.Context, filter models.PartFilter) ([]models.Part, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Part, error)
	Create(ctx context.Context, req dto.CreatePartRequest) (*models.Part, error)
	AdjustStock(ctx context.Context, id string, req dto.AdjustStockRequest) (*dto.AdjustStockResponse, error)
}

// PartHandler exposes MRO stock endpoints.
type PartHandler struct {
	service partService
}

// NewPartHandler constructs the handler.
func NewPartHandler(service partService) *PartHandler {
	return &PartHandler{service: service}
}

// List godoc
// @Summary List parts
// @Tags Parts
// @Produce json
// @Security BearerAuth
// @Param search query string false "Search by part number or description"
// @Param lowStock query bool false "Only parts at or below reorder point"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /parts [get]
func (h *PartHandler) List(c *gin.Context) {
	filter := models.PartFilter{
		Search:   c.Query("search"),
		LowStock: c.Query("lowStock") == "true",
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "pageSize", 20),
	}
	parts, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, parts, pagination)
}

// Get godoc
// @Summary Get one part
// @Tags Parts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Part ID"
// @Success 200 {object} response.Envelope
// @Router /parts/{id} [get]
func (h *PartHandler) Get(c *gin.Context) {
	part, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, part, nil)
}

// Create godoc
// @Summary Register a new part
// @Tags Parts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreatePartRequest true "Part details"
// @Success 201 {object} response.Envelope
// @Router /parts [post]
func (h *PartHandler) Create(c *gin.Context) {
	var req dto.CreatePartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid part payload"))
		return
	}
	part, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, part)
}

// AdjustStock godoc
// @Summary Adjust a part's on-hand quantity
// @Tags Parts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Part ID"
// @Param payload body dto.AdjustStockRequest true "Signed quantity delta"
// @Success 200 {object} response.Envelope
// @Router /parts/{id}/stock [post]
func (h *PartHandler) AdjustStock(c *gin.Context) {
	var req dto.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid stock adjustment"))
		return
	}
	result, err := h.service.AdjustStock(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
