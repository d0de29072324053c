package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ait-ops/cmms-api/internal/middleware"
	"github.com/ait-ops/cmms-api/internal/models"
	appErrors "github.com/ait-ops/cmms-api/pkg/errors"
	"github.com/ait-ops/cmms-api/pkg/response"
)

type dashboardService interface {
	WeeklyKPI(ctx context.Context, weekStart time.Time) (*models.WeeklyKPI, bool, error)
}

type metricsSnapshotter interface {
	Snapshot() models.SystemMetrics
}

// DashboardHandler wires the KPI service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
	metrics metricsSnapshotter
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService, metrics metricsSnapshotter) *DashboardHandler {
	return &DashboardHandler{service: service, metrics: metrics}
}

// WeeklyKPI godoc
// @Summary Weekly maintenance KPI summary
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param weekStart query string true "Week start (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /dashboard/kpi [get]
func (h *DashboardHandler) WeeklyKPI(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	raw := strings.TrimSpace(c.Query("weekStart"))
	if raw == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "weekStart is required"))
		return
	}
	weekStart, err := time.Parse("2006-01-02", raw)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "weekStart must be YYYY-MM-DD"))
		return
	}

	start := time.Now()
	kpi, cacheHit, err := h.service.WeeklyKPI(c.Request.Context(), weekStart)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, kpi, nil, meta)
}

// System godoc
// @Summary Aggregated runtime metrics
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /dashboard/system [get]
func (h *DashboardHandler) System(c *gin.Context) {
	if h.metrics == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	response.JSON(c, http.StatusOK, h.metrics.Snapshot(), nil)
}
