package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ait-ops/cmms-api/internal/models"
	appErrors "github.com/ait-ops/cmms-api/pkg/errors"
)

type fakeScheduleGenerator struct {
	assignments []models.PMAssignment
	err         error
	gotWeek     time.Time
	gotMax      int
}

func (f *fakeScheduleGenerator) GenerateWeeklySchedule(_ context.Context, weekStart time.Time, maxPMs int) ([]models.PMAssignment, error) {
	f.gotWeek = weekStart
	f.gotMax = maxPMs
	return f.assignments, f.err
}

type fakeSchedulePersistence struct {
	entries      []models.ScheduleEntry
	completed    *models.ScheduleEntry
	completeErr  error
	clearErr     error
	persistedFor time.Time
	clearedID    string
}

func (f *fakeSchedulePersistence) PersistWeek(_ context.Context, weekStart time.Time, assignments []models.PMAssignment) ([]models.ScheduleEntry, error) {
	f.persistedFor = weekStart
	return f.entries, nil
}

func (f *fakeSchedulePersistence) ListWeek(_ context.Context, _ time.Time) ([]models.ScheduleEntry, error) {
	return f.entries, nil
}

func (f *fakeSchedulePersistence) Complete(_ context.Context, scheduleID, technician string, completedAt time.Time) (*models.ScheduleEntry, error) {
	if f.completeErr != nil {
		return nil, f.completeErr
	}
	return f.completed, nil
}

func (f *fakeSchedulePersistence) ClearStale(_ context.Context, scheduleID string) error {
	f.clearedID = scheduleID
	return f.clearErr
}

type fakeInvalidator struct {
	weeks []time.Time
}

func (f *fakeInvalidator) InvalidateWeek(_ context.Context, weekStart time.Time) {
	f.weeks = append(f.weeks, weekStart)
}

func postJSON(t *testing.T, body interface{}, target string) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, target, bytes.NewReader(payload))
	c.Request.Header.Set("Content-Type", "application/json")
	return rec, c
}

func TestScheduleHandlerGenerate(t *testing.T) {
	generator := &fakeScheduleGenerator{assignments: []models.PMAssignment{
		{BFMNo: "10250", PMType: models.PMTypeWeekly, PriorityScore: 1100},
	}}
	handler := NewScheduleHandler(generator, &fakeSchedulePersistence{}, nil)

	rec, c := postJSON(t, gin.H{"weekStart": "2026-03-02", "maxPms": 50}, "/schedule/generate")
	handler.Generate(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), generator.gotWeek)
	assert.Equal(t, 50, generator.gotMax)

	var envelope struct {
		Data struct {
			Count int `json:"count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, 1, envelope.Data.Count)
}

func TestScheduleHandlerGenerateRejectsBadWeekStart(t *testing.T) {
	handler := NewScheduleHandler(&fakeScheduleGenerator{}, &fakeSchedulePersistence{}, nil)

	rec, c := postJSON(t, gin.H{"weekStart": "03/02/2026"}, "/schedule/generate")
	handler.Generate(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScheduleHandlerPersistInvalidatesDashboard(t *testing.T) {
	generator := &fakeScheduleGenerator{assignments: []models.PMAssignment{
		{BFMNo: "10250", PMType: models.PMTypeWeekly},
	}}
	persistence := &fakeSchedulePersistence{entries: []models.ScheduleEntry{
		{BFMNo: "10250", PMType: "Weekly", WeekStart: "2026-03-02"},
	}}
	invalidator := &fakeInvalidator{}
	handler := NewScheduleHandler(generator, persistence, invalidator)

	rec, c := postJSON(t, gin.H{"weekStart": "2026-03-02"}, "/schedule")
	handler.Persist(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), persistence.persistedFor)
	require.Len(t, invalidator.weeks, 1)
}

func TestScheduleHandlerListWeekRequiresDate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewScheduleHandler(&fakeScheduleGenerator{}, &fakeSchedulePersistence{}, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/schedule", nil)

	handler.ListWeek(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScheduleHandlerComplete(t *testing.T) {
	completedAt := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	persistence := &fakeSchedulePersistence{completed: &models.ScheduleEntry{
		ID:          "sched-1",
		BFMNo:       "10250",
		PMType:      "Monthly",
		WeekStart:   "2026-03-02",
		Status:      models.ScheduledPMStatusCompleted,
		CompletedAt: &completedAt,
	}}
	invalidator := &fakeInvalidator{}
	handler := NewScheduleHandler(&fakeScheduleGenerator{}, persistence, invalidator)

	rec, c := postJSON(t, gin.H{"technician": "J. Park", "completedAt": "2026-03-04"}, "/schedule/sched-1/complete")
	c.Params = gin.Params{{Key: "id", Value: "sched-1"}}
	handler.Complete(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, invalidator.weeks, 1)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), invalidator.weeks[0])
}

func TestScheduleHandlerCompleteConflict(t *testing.T) {
	persistence := &fakeSchedulePersistence{
		completeErr: appErrors.Clone(appErrors.ErrConflict, "schedule entry is already resolved"),
	}
	handler := NewScheduleHandler(&fakeScheduleGenerator{}, persistence, nil)

	rec, c := postJSON(t, gin.H{}, "/schedule/sched-1/complete")
	c.Params = gin.Params{{Key: "id", Value: "sched-1"}}
	handler.Complete(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestScheduleHandlerClearStale(t *testing.T) {
	gin.SetMode(gin.TestMode)
	persistence := &fakeSchedulePersistence{}
	handler := NewScheduleHandler(&fakeScheduleGenerator{}, persistence, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodDelete, "/schedule/sched-9/stale", nil)
	c.Params = gin.Params{{Key: "id", Value: "sched-9"}}

	handler.ClearStale(c)
	// The handler only sets the status; flush it so the recorder sees it.
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "sched-9", persistence.clearedID)
}
