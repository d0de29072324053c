package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ait-ops/cmms-api/internal/models"
)

type txProviderMock struct {
	db   *sqlx.DB
	mock sqlmock.Sqlmock
}

func newTxProviderMock(t *testing.T) (*txProviderMock, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	t.Cleanup(func() { db.Close() })
	return &txProviderMock{db: sqlxdb, mock: mock}, mock
}

func (t *txProviderMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return t.db.BeginTxx(ctx, opts)
}

type scheduleStoreStub struct {
	entry       *models.ScheduleEntry
	findErr     error
	inserted    []models.ScheduleEntry
	completions []models.CompletionRecord
	completed   []string
	cleared     []string
	clearErr    error
}

func (s *scheduleStoreStub) InsertBatch(ctx context.Context, exec sqlx.ExtContext, rows []models.ScheduleEntry) error {
	s.inserted = append(s.inserted, rows...)
	return nil
}

func (s *scheduleStoreStub) ListWeek(ctx context.Context, weekStart time.Time) ([]models.ScheduleEntry, error) {
	return s.inserted, nil
}

func (s *scheduleStoreStub) FindByID(ctx context.Context, id string) (*models.ScheduleEntry, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.entry, nil
}

func (s *scheduleStoreStub) MarkCompleted(ctx context.Context, exec sqlx.ExtContext, id string, completedAt time.Time) error {
	s.completed = append(s.completed, id)
	return nil
}

func (s *scheduleStoreStub) ClearStale(ctx context.Context, id string) error {
	if s.clearErr != nil {
		return s.clearErr
	}
	s.cleared = append(s.cleared, id)
	return nil
}

func (s *scheduleStoreStub) InsertCompletion(ctx context.Context, exec sqlx.ExtContext, record models.CompletionRecord) error {
	s.completions = append(s.completions, record)
	return nil
}

type lastPMWriterStub struct {
	calls []struct {
		BFMNo  string
		PMType models.PMType
	}
}

func (s *lastPMWriterStub) UpdateLastPMDate(ctx context.Context, exec sqlx.ExtContext, bfmNo string, pmType models.PMType, completed time.Time) error {
	s.calls = append(s.calls, struct {
		BFMNo  string
		PMType models.PMType
	}{bfmNo, pmType})
	return nil
}

func TestPersistWeekRoundRobin(t *testing.T) {
	tx, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	store := &scheduleStoreStub{}
	svc := NewPMScheduleService(store, &lastPMWriterStub{}, tx, []string{"J. Park", "M. Reyes"}, zap.NewNop())

	assignments := []models.PMAssignment{
		{BFMNo: "10100", PMType: models.PMTypeWeekly, Reason: "Weekly PM never completed - HIGH PRIORITY"},
		{BFMNo: "10200", PMType: models.PMTypeMonthly, Reason: "Monthly PM OVERDUE by 10 days"},
		{BFMNo: "10300", PMType: models.PMTypeWeekly, Reason: "Weekly PM due now"},
	}

	rows, err := svc.PersistWeek(context.Background(), testNow, assignments)

	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "J. Park", rows[0].Technician)
	assert.Equal(t, "M. Reyes", rows[1].Technician)
	assert.Equal(t, "J. Park", rows[2].Technician)
	for _, row := range rows {
		assert.Equal(t, models.ScheduledPMStatusScheduled, row.Status)
		assert.Equal(t, "2026-03-02", row.WeekStart)
	}
	assert.Len(t, store.inserted, 3)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPersistWeekRejectsEmptyRun(t *testing.T) {
	tx, _ := newTxProviderMock(t)
	svc := NewPMScheduleService(&scheduleStoreStub{}, &lastPMWriterStub{}, tx, nil, zap.NewNop())

	_, err := svc.PersistWeek(context.Background(), testNow, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no assignments")
}

func TestCompleteRecordsCompletionAndStampsEquipment(t *testing.T) {
	tx, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	store := &scheduleStoreStub{entry: &models.ScheduleEntry{
		ID:         "sched-1",
		BFMNo:      "10100",
		PMType:     "Monthly",
		WeekStart:  "2026-03-02",
		Technician: "J. Park",
		Status:     models.ScheduledPMStatusScheduled,
	}}
	equipment := &lastPMWriterStub{}
	svc := NewPMScheduleService(store, equipment, tx, nil, zap.NewNop())
	completedAt := time.Date(2026, 3, 4, 14, 30, 0, 0, time.UTC)

	entry, err := svc.Complete(context.Background(), "sched-1", "M. Reyes", completedAt)

	require.NoError(t, err)
	assert.Equal(t, models.ScheduledPMStatusCompleted, entry.Status)
	assert.Equal(t, "M. Reyes", entry.Technician)
	require.NotNil(t, entry.CompletedAt)

	require.Len(t, store.completions, 1)
	assert.Equal(t, models.PMTypeMonthly, store.completions[0].PMType)
	assert.Equal(t, "M. Reyes", store.completions[0].Technician)

	require.Len(t, equipment.calls, 1)
	assert.Equal(t, "10100", equipment.calls[0].BFMNo)
	assert.Equal(t, models.PMTypeMonthly, equipment.calls[0].PMType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteDefaultsTechnicianToAssignee(t *testing.T) {
	tx, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	store := &scheduleStoreStub{entry: &models.ScheduleEntry{
		ID:         "sched-2",
		BFMNo:      "10200",
		PMType:     "Weekly",
		Technician: "J. Park",
		Status:     models.ScheduledPMStatusScheduled,
	}}
	svc := NewPMScheduleService(store, &lastPMWriterStub{}, tx, nil, zap.NewNop())

	entry, err := svc.Complete(context.Background(), "sched-2", "", time.Time{})

	require.NoError(t, err)
	assert.Equal(t, "J. Park", entry.Technician)
	require.Len(t, store.completions, 1)
	assert.Equal(t, "J. Park", store.completions[0].Technician)
}

func TestCompleteRejectsResolvedEntry(t *testing.T) {
	tx, _ := newTxProviderMock(t)
	store := &scheduleStoreStub{entry: &models.ScheduleEntry{
		ID:     "sched-3",
		BFMNo:  "10300",
		PMType: "Weekly",
		Status: models.ScheduledPMStatusCompleted,
	}}
	svc := NewPMScheduleService(store, &lastPMWriterStub{}, tx, nil, zap.NewNop())

	_, err := svc.Complete(context.Background(), "sched-3", "", time.Time{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "already resolved")
}

func TestCompleteMissingEntry(t *testing.T) {
	tx, _ := newTxProviderMock(t)
	store := &scheduleStoreStub{findErr: sql.ErrNoRows}
	svc := NewPMScheduleService(store, &lastPMWriterStub{}, tx, nil, zap.NewNop())

	_, err := svc.Complete(context.Background(), "missing", "", time.Time{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestCompleteUnknownPMType(t *testing.T) {
	tx, _ := newTxProviderMock(t)
	store := &scheduleStoreStub{entry: &models.ScheduleEntry{
		ID:     "sched-4",
		BFMNo:  "10400",
		PMType: "Quarterly",
		Status: models.ScheduledPMStatusScheduled,
	}}
	svc := NewPMScheduleService(store, &lastPMWriterStub{}, tx, nil, zap.NewNop())

	_, err := svc.Complete(context.Background(), "sched-4", "", time.Time{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown pm type")
}

func TestClearStale(t *testing.T) {
	tx, _ := newTxProviderMock(t)
	store := &scheduleStoreStub{}
	svc := NewPMScheduleService(store, &lastPMWriterStub{}, tx, nil, zap.NewNop())

	require.NoError(t, svc.ClearStale(context.Background(), "sched-5"))
	assert.Equal(t, []string{"sched-5"}, store.cleared)

	store.clearErr = errors.New("schedule sched-6 is not open")
	err := svc.ClearStale(context.Background(), "sched-6")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to clear stale schedule")
}
