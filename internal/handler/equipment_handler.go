package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ait-ops/cmms-api/internal/dto"
	"github.com/ait-ops/cmms-api/internal/models"
	appErrors "github.com/ait-ops/cmms-api/pkg/errors"
	"github.com/ait-ops/cmms-api/pkg/response"
)

type equipmentService interface {
	List(ctx context.Context, filter models.EquipmentFilter) ([]models.EquipmentRecord, *models.Pagination, error)
	Get(ctx context.Context, bfmNo string) (*models.EquipmentRecord, error)
	Create(ctx context.Context, req dto.CreateEquipmentRequest) (*models.EquipmentRecord, error)
	Update(ctx context.Context, bfmNo string, req dto.UpdateEquipmentRequest) (*models.EquipmentRecord, error)
	UpdateStatus(ctx context.Context, bfmNo string, req dto.UpdateEquipmentStatusRequest) error
}

// EquipmentHandler exposes asset roster endpoints.
type EquipmentHandler struct {
	service equipmentService
}

// NewEquipmentHandler constructs the handler.
func NewEquipmentHandler(service equipmentService) *EquipmentHandler {
	return &EquipmentHandler{service: service}
}

// List godoc
// @Summary List equipment
// @Tags Equipment
// @Produce json
// @Security BearerAuth
// @Param search query string false "Search by number or description"
// @Param status query string false "Lifecycle status filter"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /equipment [get]
func (h *EquipmentHandler) List(c *gin.Context) {
	filter := models.EquipmentFilter{
		Search:   c.Query("search"),
		Status:   c.Query("status"),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "pageSize", 20),
	}
	records, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, pagination)
}

// Get godoc
// @Summary Get one asset
// @Tags Equipment
// @Produce json
// @Security BearerAuth
// @Param bfmNo path string true "BFM equipment number"
// @Success 200 {object} response.Envelope
// @Router /equipment/{bfmNo} [get]
func (h *EquipmentHandler) Get(c *gin.Context) {
	record, err := h.service.Get(c.Request.Context(), c.Param("bfmNo"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Create godoc
// @Summary Register a new asset
// @Tags Equipment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateEquipmentRequest true "Asset details"
// @Success 201 {object} response.Envelope
// @Router /equipment [post]
func (h *EquipmentHandler) Create(c *gin.Context) {
	var req dto.CreateEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid equipment payload"))
		return
	}
	record, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// Update godoc
// @Summary Update an asset
// @Tags Equipment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param bfmNo path string true "BFM equipment number"
// @Param payload body dto.UpdateEquipmentRequest true "Asset details"
// @Success 200 {object} response.Envelope
// @Router /equipment/{bfmNo} [put]
func (h *EquipmentHandler) Update(c *gin.Context) {
	var req dto.UpdateEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid equipment payload"))
		return
	}
	record, err := h.service.Update(c.Request.Context(), c.Param("bfmNo"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// UpdateStatus godoc
// @Summary Change an asset's lifecycle status
// @Tags Equipment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param bfmNo path string true "BFM equipment number"
// @Param payload body dto.UpdateEquipmentStatusRequest true "New status"
// @Success 204
// @Router /equipment/{bfmNo}/status [patch]
func (h *EquipmentHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateEquipmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid status payload"))
		return
	}
	if err := h.service.UpdateStatus(c.Request.Context(), c.Param("bfmNo"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
