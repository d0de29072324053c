package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ait-ops/cmms-api/internal/models"
)

// ReportJobRepository persists async export jobs.
type ReportJobRepository struct {
	db *sqlx.DB
}

// NewReportJobRepository creates a report job repository.
func NewReportJobRepository(db *sqlx.DB) *ReportJobRepository {
	return &ReportJobRepository{db: db}
}

// UpdateReportJobParams carries the mutable job fields; nil means unchanged.
type UpdateReportJobParams struct {
	Status       *models.ReportStatus
	Progress     *int
	ResultURL    *string
	ErrorMessage *string
	FinishedAt   *time.Time
}

type reportJobRow struct {
	ID           string          `db:"id"`
	Type         string          `db:"type"`
	Params       json.RawMessage `db:"params"`
	Status       string          `db:"status"`
	Progress     int             `db:"progress"`
	ResultURL    *string         `db:"result_url"`
	ErrorMessage *string         `db:"error_message"`
	CreatedBy    string          `db:"created_by"`
	CreatedAt    time.Time       `db:"created_at"`
	FinishedAt   *time.Time      `db:"finished_at"`
}

const reportJobColumns = "id, type, params, status, progress, result_url, error_message, created_by, created_at, finished_at"

// Create inserts a new queued job.
func (r *ReportJobRepository) Create(ctx context.Context, job *models.ReportJob) error {
	const query = `INSERT INTO report_jobs (id, type, params, status, progress, created_by, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = models.ReportStatusQueued
	}
	job.CreatedAt = time.Now().UTC()
	params, err := json.Marshal(job.Params)
	if err != nil {
		return fmt.Errorf("encode report params: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query,
		job.ID, string(job.Type), params, string(job.Status), job.Progress, job.CreatedBy, job.CreatedAt,
	); err != nil {
		return fmt.Errorf("create report job: %w", err)
	}
	return nil
}

// GetByID loads one job.
func (r *ReportJobRepository) GetByID(ctx context.Context, id string) (*models.ReportJob, error) {
	query := fmt.Sprintf("SELECT %s FROM report_jobs WHERE id = $1", reportJobColumns)
	var row reportJobRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get report job: %w", err)
	}
	return row.toModel()
}

// Update applies the provided mutable fields.
func (r *ReportJobRepository) Update(ctx context.Context, id string, params UpdateReportJobParams) error {
	const query = `UPDATE report_jobs SET
  status = COALESCE($2, status),
  progress = COALESCE($3, progress),
  result_url = COALESCE($4, result_url),
  error_message = COALESCE($5, error_message),
  finished_at = COALESCE($6, finished_at)
WHERE id = $1`
	var status *string
	if params.Status != nil {
		s := string(*params.Status)
		status = &s
	}
	if _, err := r.db.ExecContext(ctx, query,
		id, status, params.Progress, params.ResultURL, params.ErrorMessage, params.FinishedAt,
	); err != nil {
		return fmt.Errorf("update report job: %w", err)
	}
	return nil
}

// ListQueued returns jobs awaiting a worker, oldest first.
func (r *ReportJobRepository) ListQueued(ctx context.Context, limit int) ([]models.ReportJob, error) {
	query := fmt.Sprintf("SELECT %s FROM report_jobs WHERE status = $1 ORDER BY created_at LIMIT $2", reportJobColumns)
	var rows []reportJobRow
	if err := r.db.SelectContext(ctx, &rows, query, string(models.ReportStatusQueued), limit); err != nil {
		return nil, fmt.Errorf("list queued report jobs: %w", err)
	}
	return toModels(rows)
}

// ListFinishedBefore returns finished jobs older than the cutoff, used by
// the export cleanup loop.
func (r *ReportJobRepository) ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ReportJob, error) {
	query := fmt.Sprintf("SELECT %s FROM report_jobs WHERE status = $1 AND finished_at < $2 ORDER BY finished_at LIMIT $3", reportJobColumns)
	var rows []reportJobRow
	if err := r.db.SelectContext(ctx, &rows, query, string(models.ReportStatusFinished), cutoff, limit); err != nil {
		return nil, fmt.Errorf("list finished report jobs: %w", err)
	}
	return toModels(rows)
}

func (row reportJobRow) toModel() (*models.ReportJob, error) {
	job := &models.ReportJob{
		ID:           row.ID,
		Type:         models.ReportType(row.Type),
		Status:       models.ReportStatus(row.Status),
		Progress:     row.Progress,
		ResultURL:    row.ResultURL,
		ErrorMessage: row.ErrorMessage,
		CreatedBy:    row.CreatedBy,
		CreatedAt:    row.CreatedAt,
		FinishedAt:   row.FinishedAt,
	}
	if len(row.Params) > 0 {
		if err := json.Unmarshal(row.Params, &job.Params); err != nil {
			return nil, fmt.Errorf("decode report params: %w", err)
		}
	}
	return job, nil
}

func toModels(rows []reportJobRow) ([]models.ReportJob, error) {
	jobs := make([]models.ReportJob, 0, len(rows))
	for _, row := range rows {
		job, err := row.toModel()
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, nil
}
