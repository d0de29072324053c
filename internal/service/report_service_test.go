package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ait-ops/cmms-api/internal/dto"
	"github.com/ait-ops/cmms-api/internal/models"
	"github.com/ait-ops/cmms-api/internal/repository"
	appErrors "github.com/ait-ops/cmms-api/pkg/errors"
	"github.com/ait-ops/cmms-api/pkg/jobs"
)

type reportStoreStub struct {
	jobs    map[string]*models.ReportJob
	updates []repository.UpdateReportJobParams
	queued  []models.ReportJob
}

func newReportStoreStub() *reportStoreStub {
	return &reportStoreStub{jobs: map[string]*models.ReportJob{}}
}

func (s *reportStoreStub) Create(_ context.Context, job *models.ReportJob) error {
	if job.ID == "" {
		job.ID = fmt.Sprintf("job-%d", len(s.jobs)+1)
	}
	if job.Status == "" {
		job.Status = models.ReportStatusQueued
	}
	stored := *job
	s.jobs[job.ID] = &stored
	return nil
}

func (s *reportStoreStub) GetByID(_ context.Context, id string) (*models.ReportJob, error) {
	job, ok := s.jobs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *job
	return &copied, nil
}

func (s *reportStoreStub) Update(_ context.Context, id string, params repository.UpdateReportJobParams) error {
	s.updates = append(s.updates, params)
	job, ok := s.jobs[id]
	if !ok {
		return sql.ErrNoRows
	}
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.Progress != nil {
		job.Progress = *params.Progress
	}
	if params.ResultURL != nil {
		job.ResultURL = params.ResultURL
	}
	if params.ErrorMessage != nil {
		job.ErrorMessage = params.ErrorMessage
	}
	if params.FinishedAt != nil {
		job.FinishedAt = params.FinishedAt
	}
	return nil
}

func (s *reportStoreStub) ListQueued(_ context.Context, _ int) ([]models.ReportJob, error) {
	return s.queued, nil
}

func (s *reportStoreStub) ListFinishedBefore(_ context.Context, _ time.Time, _ int) ([]models.ReportJob, error) {
	return nil, nil
}

type queueStub struct {
	enqueued []jobs.Job
	err      error
}

func (q *queueStub) Enqueue(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.enqueued = append(q.enqueued, job)
	return nil
}

type exportEngineStub struct {
	result      *ExportResult
	generateErr error
	parsedPath  string
	parseErr    error
	deleted     []string
}

func (e *exportEngineStub) Generate(_ context.Context, _ *models.ReportJob) (*ExportResult, error) {
	if e.generateErr != nil {
		return nil, e.generateErr
	}
	return e.result, nil
}

func (e *exportEngineStub) ParseToken(token string, _ bool) (string, string, time.Time, error) {
	if e.parseErr != nil {
		return "", "", time.Time{}, e.parseErr
	}
	return "job-1", e.parsedPath, time.Now().Add(time.Hour), nil
}

func (e *exportEngineStub) Delete(relPath string) error {
	e.deleted = append(e.deleted, relPath)
	return nil
}

func (e *exportEngineStub) Cleanup(_ time.Duration) ([]string, error) {
	return nil, nil
}

func newTestReportService(store *reportStoreStub, queue *queueStub, exports *exportEngineStub) *ReportService {
	return NewReportService(store, queue, exports, nil, ReportServiceConfig{}, zap.NewNop())
}

func TestCreateJobQueuesExport(t *testing.T) {
	store := newReportStoreStub()
	queue := &queueStub{}
	svc := newTestReportService(store, queue, &exportEngineStub{})

	resp, err := svc.CreateJob(context.Background(), "user-7", dto.ReportRequest{
		Type:      models.ReportTypeWeeklySchedule,
		Format:    models.ReportFormatCSV,
		WeekStart: "2026-03-02",
	})
	require.NoError(t, err)

	assert.Equal(t, models.ReportStatusQueued, resp.Status)
	require.Len(t, queue.enqueued, 1)
	assert.Equal(t, resp.ID, queue.enqueued[0].ID)

	stored := store.jobs[resp.ID]
	require.NotNil(t, stored)
	assert.Equal(t, "user-7", stored.CreatedBy)
	assert.Equal(t, "2026-03-02", stored.Params.WeekStart)
}

func TestCreateJobWeeklyScheduleRequiresWeekStart(t *testing.T) {
	svc := newTestReportService(newReportStoreStub(), &queueStub{}, &exportEngineStub{})

	_, err := svc.CreateJob(context.Background(), "user-7", dto.ReportRequest{
		Type:   models.ReportTypeWeeklySchedule,
		Format: models.ReportFormatPDF,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCreateJobEnqueueFailureMarksJobFailed(t *testing.T) {
	store := newReportStoreStub()
	queue := &queueStub{err: fmt.Errorf("queue not started")}
	svc := newTestReportService(store, queue, &exportEngineStub{})

	_, err := svc.CreateJob(context.Background(), "user-7", dto.ReportRequest{
		Type:   models.ReportTypeEquipment,
		Format: models.ReportFormatCSV,
	})
	require.Error(t, err)

	require.Len(t, store.jobs, 1)
	for _, job := range store.jobs {
		assert.Equal(t, models.ReportStatusFailed, job.Status)
	}
}

func TestGetStatusTechnicianCannotReadOthersJobs(t *testing.T) {
	store := newReportStoreStub()
	require.NoError(t, store.Create(context.Background(), &models.ReportJob{
		ID:        "job-1",
		Type:      models.ReportTypeEquipment,
		CreatedBy: "user-7",
	}))
	svc := newTestReportService(store, &queueStub{}, &exportEngineStub{})

	_, err := svc.GetStatus(context.Background(), "job-1", "user-9", models.RoleTechnician)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	resp, err := svc.GetStatus(context.Background(), "job-1", "user-9", models.RolePlanner)
	require.NoError(t, err)
	assert.Equal(t, "job-1", resp.ID)
}

func TestResolveDownloadRequiresFinishedJob(t *testing.T) {
	store := newReportStoreStub()
	require.NoError(t, store.Create(context.Background(), &models.ReportJob{
		ID:        "job-1",
		Type:      models.ReportTypeLowStock,
		Status:    models.ReportStatusProcessing,
		CreatedBy: "user-7",
	}))
	svc := newTestReportService(store, &queueStub{}, &exportEngineStub{parsedPath: "exports/low_stock.csv"})

	_, _, err := svc.ResolveDownload(context.Background(), "token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	finished := models.ReportStatusFinished
	require.NoError(t, store.Update(context.Background(), "job-1", repository.UpdateReportJobParams{Status: &finished}))

	relPath, job, err := svc.ResolveDownload(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, "exports/low_stock.csv", relPath)
	assert.Equal(t, "job-1", job.ID)
}

func TestRecoverPendingJobsReenqueues(t *testing.T) {
	store := newReportStoreStub()
	store.queued = []models.ReportJob{
		{ID: "job-1", Type: models.ReportTypeEquipment},
		{ID: "job-2", Type: models.ReportTypeLowStock},
	}
	queue := &queueStub{}
	svc := newTestReportService(store, queue, &exportEngineStub{})

	require.NoError(t, svc.RecoverPendingJobs(context.Background()))
	assert.Len(t, queue.enqueued, 2)
}

func TestWorkerHandleFinishesJob(t *testing.T) {
	store := newReportStoreStub()
	require.NoError(t, store.Create(context.Background(), &models.ReportJob{
		ID:   "job-1",
		Type: models.ReportTypeWeeklySchedule,
		Params: models.ReportJobParams{
			WeekStart: "2026-03-02",
			Format:    models.ReportFormatCSV,
		},
	}))
	exports := &exportEngineStub{result: &ExportResult{
		RelativePath: "exports/weekly_schedule.csv",
		URL:          "/api/v1/export/abc",
		Format:       models.ReportFormatCSV,
	}}
	worker := NewReportWorker(store, exports, zap.NewNop())

	require.NoError(t, worker.Handle(context.Background(), jobs.Job{ID: "job-1"}))

	job := store.jobs["job-1"]
	assert.Equal(t, models.ReportStatusFinished, job.Status)
	assert.Equal(t, 100, job.Progress)
	require.NotNil(t, job.ResultURL)
	assert.Equal(t, "/api/v1/export/abc", *job.ResultURL)
	require.NotNil(t, job.FinishedAt)
}

func TestWorkerHandleGenerationFailureMarksFailed(t *testing.T) {
	store := newReportStoreStub()
	require.NoError(t, store.Create(context.Background(), &models.ReportJob{
		ID:   "job-1",
		Type: models.ReportTypeEquipment,
		Params: models.ReportJobParams{
			Format: models.ReportFormatPDF,
		},
	}))
	exports := &exportEngineStub{generateErr: fmt.Errorf("roster query failed")}
	worker := NewReportWorker(store, exports, zap.NewNop())

	err := worker.Handle(context.Background(), jobs.Job{ID: "job-1"})
	require.Error(t, err)

	job := store.jobs["job-1"]
	assert.Equal(t, models.ReportStatusFailed, job.Status)
	require.NotNil(t, job.ErrorMessage)
	assert.Contains(t, *job.ErrorMessage, "roster query failed")
}

func TestWorkerHandleSkipsFinishedJob(t *testing.T) {
	store := newReportStoreStub()
	require.NoError(t, store.Create(context.Background(), &models.ReportJob{
		ID:     "job-1",
		Type:   models.ReportTypeEquipment,
		Status: models.ReportStatusFinished,
	}))
	worker := NewReportWorker(store, &exportEngineStub{generateErr: fmt.Errorf("should not run")}, zap.NewNop())

	require.NoError(t, worker.Handle(context.Background(), jobs.Job{ID: "job-1"}))
}
