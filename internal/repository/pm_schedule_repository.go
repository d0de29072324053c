package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ait-ops/cmms-api/internal/models"
)

// PMScheduleRepository persists weekly PM schedules and completions.
type PMScheduleRepository struct {
	db *sqlx.DB
}

// NewPMScheduleRepository creates a schedule repository.
func NewPMScheduleRepository(db *sqlx.DB) *PMScheduleRepository {
	return &PMScheduleRepository{db: db}
}

// InsertBatch writes one week's generated assignments inside the caller's
// transaction. Rows start in Scheduled status.
func (r *PMScheduleRepository) InsertBatch(ctx context.Context, exec sqlx.ExtContext, rows []models.ScheduleEntry) error {
	const query = `INSERT INTO weekly_pm_schedules (id, bfm_equipment_no, pm_type, week_start_date, assigned_technician, status, reason, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if exec == nil {
		exec = r.db
	}
	now := time.Now().UTC()
	for i := range rows {
		if rows[i].ID == "" {
			rows[i].ID = uuid.NewString()
		}
		if rows[i].Status == "" {
			rows[i].Status = models.ScheduledPMStatusScheduled
		}
		rows[i].CreatedAt = now
		if _, err := exec.ExecContext(ctx, query,
			rows[i].ID, rows[i].BFMNo, rows[i].PMType, rows[i].WeekStart,
			rows[i].Technician, rows[i].Status, rows[i].Reason, rows[i].CreatedAt,
		); err != nil {
			return fmt.Errorf("insert schedule row: %w", err)
		}
	}
	return nil
}

// ListWeek returns the persisted schedule for one week, most urgent first.
func (r *PMScheduleRepository) ListWeek(ctx context.Context, weekStart time.Time) ([]models.ScheduleEntry, error) {
	const query = `SELECT id, bfm_equipment_no, pm_type, week_start_date, assigned_technician, status, reason, completed_at, created_at
FROM weekly_pm_schedules
WHERE week_start_date = $1
ORDER BY bfm_equipment_no, pm_type`
	var rows []models.ScheduleEntry
	if err := r.db.SelectContext(ctx, &rows, query, weekStart.Format("2006-01-02")); err != nil {
		return nil, fmt.Errorf("list week schedule: %w", err)
	}
	return rows, nil
}

// FindByID loads one schedule row.
func (r *PMScheduleRepository) FindByID(ctx context.Context, id string) (*models.ScheduleEntry, error) {
	const query = `SELECT id, bfm_equipment_no, pm_type, week_start_date, assigned_technician, status, reason, completed_at, created_at
FROM weekly_pm_schedules
WHERE id = $1`
	var row models.ScheduleEntry
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}
	return &row, nil
}

// MarkCompleted flips a Scheduled row to Completed inside the caller's
// transaction. It refuses rows already resolved.
func (r *PMScheduleRepository) MarkCompleted(ctx context.Context, exec sqlx.ExtContext, id string, completedAt time.Time) error {
	const query = `UPDATE weekly_pm_schedules SET status = $2, completed_at = $3 WHERE id = $1 AND status = $4`
	if exec == nil {
		exec = r.db
	}
	res, err := exec.ExecContext(ctx, query, id, models.ScheduledPMStatusCompleted, completedAt, models.ScheduledPMStatusScheduled)
	if err != nil {
		return fmt.Errorf("mark schedule completed: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("schedule %s is not open", id)
	}
	return nil
}

// ClearStale deletes an uncompleted prior-week row once a human has
// resolved the conflict it represents.
func (r *PMScheduleRepository) ClearStale(ctx context.Context, id string) error {
	const query = `DELETE FROM weekly_pm_schedules WHERE id = $1 AND status = $2`
	res, err := r.db.ExecContext(ctx, query, id, models.ScheduledPMStatusScheduled)
	if err != nil {
		return fmt.Errorf("clear stale schedule: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("schedule %s is not open", id)
	}
	return nil
}

// InsertCompletion records a performed PM inside the caller's transaction.
// Completion dates are stored canonically as YYYY-MM-DD.
func (r *PMScheduleRepository) InsertCompletion(ctx context.Context, exec sqlx.ExtContext, record models.CompletionRecord) error {
	const query = `INSERT INTO pm_completions (bfm_equipment_no, pm_type, completion_date, technician_name)
VALUES ($1, $2, $3, $4)`
	if exec == nil {
		exec = r.db
	}
	if _, err := exec.ExecContext(ctx, query,
		record.BFMNo, string(record.PMType), record.CompletionDate.Format("2006-01-02"), record.Technician,
	); err != nil {
		return fmt.Errorf("insert pm completion: %w", err)
	}
	return nil
}
