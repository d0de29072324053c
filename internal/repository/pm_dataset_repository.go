package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ait-ops/cmms-api/internal/models"
	"github.com/ait-ops/cmms-api/pkg/flexdate"
)

// maxStaleSchedulesPerKey caps how many prior-week uncompleted rows are
// retained per (equipment, cadence) pair; only the oldest is surfaced in
// conflict reasons but a short tail helps operators see repeat offenders.
const maxStaleSchedulesPerKey = 5

// PMDatasetRepository assembles the immutable scheduling snapshot for one
// generation run. Everything is loaded up front in bulk; eligibility checks
// afterwards touch memory only.
type PMDatasetRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewPMDatasetRepository creates a dataset repository.
func NewPMDatasetRepository(db *sqlx.DB, logger *zap.Logger) *PMDatasetRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PMDatasetRepository{db: db, logger: logger}
}

// Load runs the five bulk queries and builds the dataset. Individual rows
// that fail to parse (bad dates, unknown PM type labels) are logged and
// skipped; only query failures abort the load.
func (r *PMDatasetRepository) Load(ctx context.Context, weekStart time.Time, windowDays int) (*models.SchedulingDataset, error) {
	if windowDays <= 0 {
		windowDays = 400
	}

	completions, err := r.loadCompletions(ctx, windowDays)
	if err != nil {
		return nil, err
	}
	scheduled, err := r.loadScheduled(ctx, weekStart)
	if err != nil {
		return nil, err
	}
	uncompleted, err := r.loadUncompleted(ctx, weekStart)
	if err != nil {
		return nil, err
	}
	nextAnnual, err := r.loadNextAnnual(ctx)
	if err != nil {
		return nil, err
	}
	templates, err := r.loadTemplates(ctx)
	if err != nil {
		return nil, err
	}

	dataset := models.NewSchedulingDataset(completions, scheduled, uncompleted, nextAnnual, templates)
	r.logger.Info("scheduling dataset loaded",
		zap.Int("equipment_with_completions", len(completions)),
		zap.Int("equipment_with_scheduled", len(scheduled)),
		zap.Int("equipment_with_stale_schedules", len(uncompleted)),
		zap.Int("next_annual_dates", len(nextAnnual)),
	)
	return dataset, nil
}

func (r *PMDatasetRepository) loadCompletions(ctx context.Context, windowDays int) (map[string][]models.CompletionRecord, error) {
	const query = `SELECT bfm_equipment_no, pm_type, completion_date, technician_name
FROM pm_completions
WHERE completion_date::DATE >= CURRENT_DATE - ($1 * INTERVAL '1 day')
ORDER BY bfm_equipment_no, completion_date DESC`

	rows, err := r.db.QueryContext(ctx, query, windowDays)
	if err != nil {
		return nil, fmt.Errorf("bulk load completions: %w", err)
	}
	defer rows.Close()

	completions := make(map[string][]models.CompletionRecord)
	for rows.Next() {
		var bfmNo, pmTypeRaw, dateRaw, technician string
		if err := rows.Scan(&bfmNo, &pmTypeRaw, &dateRaw, &technician); err != nil {
			return nil, fmt.Errorf("scan completion row: %w", err)
		}
		pmType, err := models.ParsePMType(pmTypeRaw)
		if err != nil {
			r.logger.Warn("skipping completion with unknown pm type",
				zap.String("bfm_no", bfmNo), zap.String("pm_type", pmTypeRaw))
			continue
		}
		completedAt, ok := flexdate.Parse(dateRaw)
		if !ok {
			r.logger.Warn("skipping completion with unparseable date",
				zap.String("bfm_no", bfmNo), zap.String("completion_date", dateRaw))
			continue
		}
		completions[bfmNo] = append(completions[bfmNo], models.CompletionRecord{
			BFMNo:          bfmNo,
			PMType:         pmType,
			CompletionDate: completedAt,
			Technician:     technician,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate completion rows: %w", err)
	}
	return completions, nil
}

func (r *PMDatasetRepository) loadScheduled(ctx context.Context, weekStart time.Time) (map[string][]models.ScheduledPM, error) {
	const query = `SELECT bfm_equipment_no, pm_type, assigned_technician, status
FROM weekly_pm_schedules
WHERE week_start_date = $1`

	rows, err := r.db.QueryContext(ctx, query, weekStart.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("bulk load scheduled pms: %w", err)
	}
	defer rows.Close()

	scheduled := make(map[string][]models.ScheduledPM)
	for rows.Next() {
		var item models.ScheduledPM
		if err := rows.Scan(&item.BFMNo, &item.PMType, &item.Technician, &item.Status); err != nil {
			return nil, fmt.Errorf("scan scheduled pm row: %w", err)
		}
		item.WeekStart = weekStart.Format("2006-01-02")
		scheduled[item.BFMNo] = append(scheduled[item.BFMNo], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scheduled pm rows: %w", err)
	}
	return scheduled, nil
}

func (r *PMDatasetRepository) loadUncompleted(ctx context.Context, beforeWeek time.Time) (map[string]map[models.PMType][]models.ScheduledPM, error) {
	const query = `SELECT bfm_equipment_no, pm_type, week_start_date, assigned_technician, status
FROM weekly_pm_schedules
WHERE week_start_date < $1
AND status = 'Scheduled'
ORDER BY bfm_equipment_no, pm_type, week_start_date DESC`

	rows, err := r.db.QueryContext(ctx, query, beforeWeek.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("bulk load uncompleted schedules: %w", err)
	}
	defer rows.Close()

	uncompleted := make(map[string]map[models.PMType][]models.ScheduledPM)
	for rows.Next() {
		var item models.ScheduledPM
		if err := rows.Scan(&item.BFMNo, &item.PMType, &item.WeekStart, &item.Technician, &item.Status); err != nil {
			return nil, fmt.Errorf("scan uncompleted schedule row: %w", err)
		}
		pmType, err := models.ParsePMType(item.PMType)
		if err != nil {
			r.logger.Warn("skipping stale schedule with unknown pm type",
				zap.String("bfm_no", item.BFMNo), zap.String("pm_type", item.PMType))
			continue
		}
		byType := uncompleted[item.BFMNo]
		if byType == nil {
			byType = make(map[models.PMType][]models.ScheduledPM)
			uncompleted[item.BFMNo] = byType
		}
		if len(byType[pmType]) < maxStaleSchedulesPerKey {
			byType[pmType] = append(byType[pmType], item)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate uncompleted schedule rows: %w", err)
	}
	return uncompleted, nil
}

func (r *PMDatasetRepository) loadNextAnnual(ctx context.Context) (map[string]string, error) {
	const query = `SELECT bfm_equipment_no, next_annual_pm
FROM equipment
WHERE next_annual_pm IS NOT NULL AND next_annual_pm != ''`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("bulk load next annual dates: %w", err)
	}
	defer rows.Close()

	nextAnnual := make(map[string]string)
	for rows.Next() {
		var bfmNo, dateRaw string
		if err := rows.Scan(&bfmNo, &dateRaw); err != nil {
			return nil, fmt.Errorf("scan next annual row: %w", err)
		}
		if dateRaw != "" {
			nextAnnual[bfmNo] = dateRaw
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate next annual rows: %w", err)
	}
	return nextAnnual, nil
}

func (r *PMDatasetRepository) loadTemplates(ctx context.Context) (map[string][]models.PMType, error) {
	const query = `SELECT bfm_equipment_no, pm_type FROM pm_templates`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("bulk load pm templates: %w", err)
	}
	defer rows.Close()

	templates := make(map[string][]models.PMType)
	for rows.Next() {
		var bfmNo, pmTypeRaw string
		if err := rows.Scan(&bfmNo, &pmTypeRaw); err != nil {
			return nil, fmt.Errorf("scan pm template row: %w", err)
		}
		pmType, err := models.ParsePMType(pmTypeRaw)
		if err != nil {
			r.logger.Warn("skipping pm template with unknown pm type",
				zap.String("bfm_no", bfmNo), zap.String("pm_type", pmTypeRaw))
			continue
		}
		templates[bfmNo] = append(templates[bfmNo], pmType)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pm template rows: %w", err)
	}
	return templates, nil
}
