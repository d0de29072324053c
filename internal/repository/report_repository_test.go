package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ait-ops/cmms-api/internal/models"
)

func newReportRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestReportJobRepositoryCreateAssignsDefaults(t *testing.T) {
	db, mock, cleanup := newReportRepoMock(t)
	defer cleanup()
	repo := NewReportJobRepository(db)

	mock.ExpectExec("INSERT INTO report_jobs").
		WithArgs(sqlmock.AnyArg(), "WEEKLY_SCHEDULE", sqlmock.AnyArg(), "QUEUED", 0, "user-7", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	job := &models.ReportJob{
		Type:      models.ReportTypeWeeklySchedule,
		Params:    models.ReportJobParams{Format: models.ReportFormatCSV, WeekStart: "2026-03-02"},
		CreatedBy: "user-7",
	}
	require.NoError(t, repo.Create(context.Background(), job))
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, models.ReportStatusQueued, job.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportJobRepositoryGetByIDDecodesParams(t *testing.T) {
	db, mock, cleanup := newReportRepoMock(t)
	defer cleanup()
	repo := NewReportJobRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "type", "params", "status", "progress", "result_url", "error_message", "created_by", "created_at", "finished_at",
	}).AddRow("job-1", "WEEKLY_SCHEDULE", []byte(`{"format":"csv","week_start":"2026-03-02"}`), "QUEUED", 0, nil, nil, "user-7", now, nil)
	mock.ExpectQuery("SELECT id, type, params").
		WithArgs("job-1").
		WillReturnRows(rows)

	job, err := repo.GetByID(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, models.ReportTypeWeeklySchedule, job.Type)
	assert.Equal(t, models.ReportFormatCSV, job.Params.Format)
	assert.Equal(t, "2026-03-02", job.Params.WeekStart)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportJobRepositoryUpdatePartialFields(t *testing.T) {
	db, mock, cleanup := newReportRepoMock(t)
	defer cleanup()
	repo := NewReportJobRepository(db)

	status := models.ReportStatusProcessing
	progress := 10
	mock.ExpectExec(regexp.QuoteMeta("UPDATE report_jobs SET")).
		WithArgs("job-1", "PROCESSING", 10, nil, nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), "job-1", UpdateReportJobParams{
		Status:   &status,
		Progress: &progress,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportJobRepositoryListQueued(t *testing.T) {
	db, mock, cleanup := newReportRepoMock(t)
	defer cleanup()
	repo := NewReportJobRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "type", "params", "status", "progress", "result_url", "error_message", "created_by", "created_at", "finished_at",
	}).
		AddRow("job-1", "WEEKLY_SCHEDULE", []byte(`{"format":"csv"}`), "QUEUED", 0, nil, nil, "user-7", now, nil).
		AddRow("job-2", "LOW_STOCK", []byte(`{"format":"pdf"}`), "QUEUED", 0, nil, nil, "user-8", now, nil)
	mock.ExpectQuery("SELECT id, type, params").
		WithArgs("QUEUED", 100).
		WillReturnRows(rows)

	jobs, err := repo.ListQueued(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, models.ReportTypeLowStock, jobs[1].Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportJobRepositoryListFinishedBefore(t *testing.T) {
	db, mock, cleanup := newReportRepoMock(t)
	defer cleanup()
	repo := NewReportJobRepository(db)

	cutoff := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	finished := cutoff.Add(-2 * time.Hour)
	url := "/api/v1/export/token-1"
	rows := sqlmock.NewRows([]string{
		"id", "type", "params", "status", "progress", "result_url", "error_message", "created_by", "created_at", "finished_at",
	}).AddRow("job-1", "EQUIPMENT", []byte(`{"format":"pdf"}`), "FINISHED", 100, url, nil, "user-7", finished.Add(-time.Hour), finished)
	mock.ExpectQuery("SELECT id, type, params").
		WithArgs("FINISHED", cutoff, 50).
		WillReturnRows(rows)

	jobs, err := repo.ListFinishedBefore(context.Background(), cutoff, 50)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.NotNil(t, jobs[0].ResultURL)
	assert.Equal(t, url, *jobs[0].ResultURL)
	assert.NoError(t, mock.ExpectationsWereMet())
}
