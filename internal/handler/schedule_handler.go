package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ait-ops/cmms-api/internal/dto"
	"github.com/ait-ops/cmms-api/internal/models"
	appErrors "github.com/ait-ops/cmms-api/pkg/errors"
	"github.com/ait-ops/cmms-api/pkg/response"
)

type scheduleGenerator interface {
	GenerateWeeklySchedule(ctx context.Context, weekStart time.Time, maxPMs int) ([]models.PMAssignment, error)
}

type schedulePersistence interface {
	PersistWeek(ctx context.Context, weekStart time.Time, assignments []models.PMAssignment) ([]models.ScheduleEntry, error)
	ListWeek(ctx context.Context, weekStart time.Time) ([]models.ScheduleEntry, error)
	Complete(ctx context.Context, scheduleID, technician string, completedAt time.Time) (*models.ScheduleEntry, error)
	ClearStale(ctx context.Context, scheduleID string) error
}

type dashboardInvalidator interface {
	InvalidateWeek(ctx context.Context, weekStart time.Time)
}

// ScheduleHandler exposes weekly PM schedule endpoints.
type ScheduleHandler struct {
	generator scheduleGenerator
	schedules schedulePersistence
	dashboard dashboardInvalidator
}

// NewScheduleHandler constructs the handler. dashboard may be nil when
// caching is disabled.
func NewScheduleHandler(generator scheduleGenerator, schedules schedulePersistence, dashboard dashboardInvalidator) *ScheduleHandler {
	return &ScheduleHandler{generator: generator, schedules: schedules, dashboard: dashboard}
}

// Generate godoc
// @Summary Preview the weekly PM assignment list
// @Tags Schedule
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.GenerateScheduleRequest true "Generation options"
// @Success 200 {object} response.Envelope
// @Router /schedule/generate [post]
func (h *ScheduleHandler) Generate(c *gin.Context) {
	var req dto.GenerateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid generation payload"))
		return
	}
	weekStart, err := time.Parse("2006-01-02", req.WeekStart)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "weekStart must be YYYY-MM-DD"))
		return
	}

	assignments, err := h.generator.GenerateWeeklySchedule(c.Request.Context(), weekStart, req.MaxPMs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.GenerateScheduleResponse{
		WeekStart:   req.WeekStart,
		Count:       len(assignments),
		Assignments: assignments,
	}, nil)
}

// Persist godoc
// @Summary Generate and persist the weekly schedule
// @Tags Schedule
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.PersistScheduleRequest true "Persistence options"
// @Success 201 {object} response.Envelope
// @Router /schedule [post]
func (h *ScheduleHandler) Persist(c *gin.Context) {
	var req dto.PersistScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid persistence payload"))
		return
	}
	weekStart, err := time.Parse("2006-01-02", req.WeekStart)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "weekStart must be YYYY-MM-DD"))
		return
	}

	assignments, err := h.generator.GenerateWeeklySchedule(c.Request.Context(), weekStart, req.MaxPMs)
	if err != nil {
		response.Error(c, err)
		return
	}
	entries, err := h.schedules.PersistWeek(c.Request.Context(), weekStart, assignments)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.dashboard != nil {
		h.dashboard.InvalidateWeek(c.Request.Context(), weekStart)
	}
	response.JSON(c, http.StatusCreated, dto.PersistScheduleResponse{
		WeekStart: req.WeekStart,
		Count:     len(entries),
		Entries:   entries,
	}, nil)
}

// ListWeek godoc
// @Summary List the persisted schedule for a week
// @Tags Schedule
// @Produce json
// @Security BearerAuth
// @Param weekStart query string true "Week start (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /schedule [get]
func (h *ScheduleHandler) ListWeek(c *gin.Context) {
	weekStart, err := time.Parse("2006-01-02", c.Query("weekStart"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "weekStart must be YYYY-MM-DD"))
		return
	}
	entries, err := h.schedules.ListWeek(c.Request.Context(), weekStart)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Complete godoc
// @Summary Record a PM completion
// @Tags Schedule
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Schedule entry ID"
// @Param payload body dto.CompleteScheduleRequest true "Completion details"
// @Success 200 {object} response.Envelope
// @Router /schedule/{id}/complete [post]
func (h *ScheduleHandler) Complete(c *gin.Context) {
	var req dto.CompleteScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid completion payload"))
		return
	}
	var completedAt time.Time
	if req.CompletedAt != "" {
		parsed, err := time.Parse("2006-01-02", req.CompletedAt)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "completedAt must be YYYY-MM-DD"))
			return
		}
		completedAt = parsed
	}

	entry, err := h.schedules.Complete(c.Request.Context(), c.Param("id"), req.Technician, completedAt)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.dashboard != nil {
		if week, parseErr := time.Parse("2006-01-02", entry.WeekStart); parseErr == nil {
			h.dashboard.InvalidateWeek(c.Request.Context(), week)
		}
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// ClearStale godoc
// @Summary Remove an uncompleted prior-week schedule entry
// @Tags Schedule
// @Produce json
// @Security BearerAuth
// @Param id path string true "Schedule entry ID"
// @Success 204
// @Router /schedule/{id}/stale [delete]
func (h *ScheduleHandler) ClearStale(c *gin.Context) {
	if err := h.schedules.ClearStale(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
