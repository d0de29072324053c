package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ait-ops/cmms-api/internal/dto"
	"github.com/ait-ops/cmms-api/internal/models"
	"github.com/ait-ops/cmms-api/internal/repository"
	appErrors "github.com/ait-ops/cmms-api/pkg/errors"
	"github.com/ait-ops/cmms-api/pkg/jobs"
)

type reportJobStore interface {
	Create(ctx context.Context, job *models.ReportJob) error
	GetByID(ctx context.Context, id string) (*models.ReportJob, error)
	Update(ctx context.Context, id string, params repository.UpdateReportJobParams) error
	ListQueued(ctx context.Context, limit int) ([]models.ReportJob, error)
	ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ReportJob, error)
}

type jobQueue interface {
	Enqueue(job jobs.Job) error
}

type exportEngine interface {
	Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error)
	ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error)
	Delete(relPath string) error
	Cleanup(ttl time.Duration) ([]string, error)
}

// ReportServiceConfig tunes the async export pipeline.
type ReportServiceConfig struct {
	ResultTTL       time.Duration
	CleanupInterval time.Duration
	RecoveryLimit   int
}

// ReportService queues export jobs and resolves their results. Generation
// itself runs on the queue workers via ReportWorker.
type ReportService struct {
	repo      reportJobStore
	queue     jobQueue
	exports   exportEngine
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ReportServiceConfig
}

// NewReportService constructs a ReportService.
func NewReportService(repo reportJobStore, queue jobQueue, exports exportEngine, validate *validator.Validate, cfg ReportServiceConfig, logger *zap.Logger) *ReportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Hour
	}
	if cfg.RecoveryLimit <= 0 {
		cfg.RecoveryLimit = 100
	}
	return &ReportService{
		repo:      repo,
		queue:     queue,
		exports:   exports,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// CreateJob validates the request, persists a queued job and hands it to the
// worker pool.
func (s *ReportService) CreateJob(ctx context.Context, userID string, req dto.ReportRequest) (*dto.ReportJobResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report request")
	}
	switch req.Type {
	case models.ReportTypeWeeklySchedule:
		if req.WeekStart == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "weekStart is required for the weekly schedule report")
		}
	case models.ReportTypeEquipment, models.ReportTypeWorkOrders, models.ReportTypeLowStock:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown report type %q", req.Type))
	}

	job := &models.ReportJob{
		Type: req.Type,
		Params: models.ReportJobParams{
			WeekStart: req.WeekStart,
			Status:    req.Status,
			Format:    req.Format,
		},
		CreatedBy: userID,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create report job")
	}

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: string(job.Type)}); err != nil {
		s.markFailed(ctx, job.ID, "queue unavailable")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue report job")
	}

	s.logger.Info("report job queued",
		zap.String("job_id", job.ID), zap.String("type", string(job.Type)), zap.String("format", string(req.Format)))
	return &dto.ReportJobResponse{ID: job.ID, Status: job.Status, Progress: job.Progress}, nil
}

// GetStatus returns job progress. Technicians only see their own jobs.
func (s *ReportService) GetStatus(ctx context.Context, jobID, userID string, role models.UserRole) (*dto.ReportStatusResponse, error) {
	job, err := s.loadJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if role == models.RoleTechnician && job.CreatedBy != userID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "report belongs to another user")
	}
	return &dto.ReportStatusResponse{
		ID:        job.ID,
		Status:    job.Status,
		Progress:  job.Progress,
		ResultURL: job.ResultURL,
		Error:     job.ErrorMessage,
	}, nil
}

// ResolveDownload validates a signed token and returns the file path of a
// finished export.
func (s *ReportService) ResolveDownload(ctx context.Context, token string) (string, *models.ReportJob, error) {
	jobID, relPath, _, err := s.exports.ParseToken(token, false)
	if err != nil {
		return "", nil, appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid or expired download token")
	}
	job, err := s.loadJob(ctx, jobID)
	if err != nil {
		return "", nil, err
	}
	if job.Status != models.ReportStatusFinished {
		return "", nil, appErrors.Clone(appErrors.ErrConflict, "report is not ready")
	}
	return relPath, job, nil
}

// RecoverPendingJobs re-enqueues jobs left queued by a previous process, so a
// restart does not strand exports.
func (s *ReportService) RecoverPendingJobs(ctx context.Context) error {
	pending, err := s.repo.ListQueued(ctx, s.cfg.RecoveryLimit)
	if err != nil {
		return fmt.Errorf("list queued report jobs: %w", err)
	}
	for _, job := range pending {
		if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: string(job.Type)}); err != nil {
			s.logger.Warn("failed to recover report job", zap.String("job_id", job.ID), zap.Error(err))
			continue
		}
	}
	if len(pending) > 0 {
		s.logger.Info("recovered pending report jobs", zap.Int("count", len(pending)))
	}
	return nil
}

// StartCleanup launches a background loop that expires old export files and
// their job records. It returns immediately; the loop stops with ctx.
func (s *ReportService) StartCleanup(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.cfg.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runCleanup(ctx)
			}
		}
	}()
}

func (s *ReportService) runCleanup(ctx context.Context) {
	cutoff := time.Now().Add(-s.cfg.ResultTTL)
	expired, err := s.repo.ListFinishedBefore(ctx, cutoff, s.cfg.RecoveryLimit)
	if err != nil {
		s.logger.Warn("report cleanup query failed", zap.Error(err))
		return
	}
	removed := 0
	for _, job := range expired {
		if job.ResultURL == nil {
			continue
		}
		token := extractToken(*job.ResultURL)
		_, relPath, _, err := s.exports.ParseToken(token, true)
		if err == nil {
			if err := s.exports.Delete(relPath); err != nil {
				s.logger.Warn("failed to delete expired export", zap.String("job_id", job.ID), zap.Error(err))
			}
		}
		msg := "export expired and was removed"
		if err := s.repo.Update(ctx, job.ID, repository.UpdateReportJobParams{ErrorMessage: &msg}); err != nil {
			s.logger.Warn("failed to mark export expired", zap.String("job_id", job.ID), zap.Error(err))
			continue
		}
		removed++
	}
	// Sweep orphans that lost their job rows.
	if _, err := s.exports.Cleanup(s.cfg.ResultTTL); err != nil {
		s.logger.Warn("export directory sweep failed", zap.Error(err))
	}
	if removed > 0 {
		s.logger.Info("expired report exports removed", zap.Int("count", removed))
	}
}

func (s *ReportService) loadJob(ctx context.Context, jobID string) (*models.ReportJob, error) {
	job, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report job")
	}
	return job, nil
}

func (s *ReportService) markFailed(ctx context.Context, jobID, message string) {
	status := models.ReportStatusFailed
	now := time.Now().UTC()
	if err := s.repo.Update(ctx, jobID, repository.UpdateReportJobParams{
		Status:       &status,
		ErrorMessage: &message,
		FinishedAt:   &now,
	}); err != nil {
		s.logger.Warn("failed to mark report job failed", zap.String("job_id", jobID), zap.Error(err))
	}
}

func extractToken(resultURL string) string {
	idx := strings.LastIndex(resultURL, "/")
	if idx < 0 {
		return resultURL
	}
	return resultURL[idx+1:]
}

// ReportWorker processes queued export jobs.
type ReportWorker struct {
	repo    reportJobStore
	exports exportEngine
	logger  *zap.Logger
}

// NewReportWorker constructs a ReportWorker.
func NewReportWorker(repo reportJobStore, exports exportEngine, logger *zap.Logger) *ReportWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportWorker{repo: repo, exports: exports, logger: logger}
}

// Handle runs one export job to completion. Returning an error lets the
// queue apply its retry policy.
func (w *ReportWorker) Handle(ctx context.Context, job jobs.Job) error {
	record, err := w.repo.GetByID(ctx, job.ID)
	if err != nil {
		return fmt.Errorf("load report job %s: %w", job.ID, err)
	}
	if record.Status == models.ReportStatusFinished {
		return nil
	}

	processing := models.ReportStatusProcessing
	progress := 10
	if err := w.repo.Update(ctx, record.ID, repository.UpdateReportJobParams{
		Status:   &processing,
		Progress: &progress,
	}); err != nil {
		return fmt.Errorf("mark report job processing: %w", err)
	}

	result, err := w.exports.Generate(ctx, record)
	if err != nil {
		w.fail(ctx, record.ID, err)
		return fmt.Errorf("generate report %s: %w", record.ID, err)
	}

	finished := models.ReportStatusFinished
	done := 100
	now := time.Now().UTC()
	if err := w.repo.Update(ctx, record.ID, repository.UpdateReportJobParams{
		Status:     &finished,
		Progress:   &done,
		ResultURL:  &result.URL,
		FinishedAt: &now,
	}); err != nil {
		return fmt.Errorf("mark report job finished: %w", err)
	}

	w.logger.Info("report export finished",
		zap.String("job_id", record.ID),
		zap.String("type", string(record.Type)),
		zap.String("format", string(result.Format)),
		zap.String("path", result.RelativePath))
	return nil
}

func (w *ReportWorker) fail(ctx context.Context, jobID string, cause error) {
	failed := models.ReportStatusFailed
	msg := cause.Error()
	now := time.Now().UTC()
	if err := w.repo.Update(ctx, jobID, repository.UpdateReportJobParams{
		Status:       &failed,
		ErrorMessage: &msg,
		FinishedAt:   &now,
	}); err != nil {
		w.logger.Warn("failed to mark report job failed", zap.String("job_id", jobID), zap.Error(err))
	}
}
