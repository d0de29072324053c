package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ait-ops/cmms-api/internal/models"
)

// KPIRepository computes schedule execution aggregates for the dashboard.
type KPIRepository struct {
	db *sqlx.DB
}

// NewKPIRepository creates a KPI repository.
func NewKPIRepository(db *sqlx.DB) *KPIRepository {
	return &KPIRepository{db: db}
}

// WeeklyCounts returns the scheduled and completed totals for one week.
func (r *KPIRepository) WeeklyCounts(ctx context.Context, weekStart time.Time) (scheduled, completed int, err error) {
	const query = `SELECT COUNT(*), COUNT(*) FILTER (WHERE status = $2)
FROM weekly_pm_schedules
WHERE week_start_date = $1`
	row := r.db.QueryRowContext(ctx, query, weekStart.Format("2006-01-02"), models.ScheduledPMStatusCompleted)
	if err := row.Scan(&scheduled, &completed); err != nil {
		return 0, 0, fmt.Errorf("weekly schedule counts: %w", err)
	}
	return scheduled, completed, nil
}

// StaleScheduleCount returns how many prior-week rows are still open.
func (r *KPIRepository) StaleScheduleCount(ctx context.Context, beforeWeek time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM weekly_pm_schedules WHERE week_start_date < $1 AND status = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, beforeWeek.Format("2006-01-02"), models.ScheduledPMStatusScheduled); err != nil {
		return 0, fmt.Errorf("stale schedule count: %w", err)
	}
	return count, nil
}
