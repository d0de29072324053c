package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ait-ops/cmms-api/internal/models"
)

// EquipmentRepository provides access to the equipment roster.
type EquipmentRepository struct {
	db *sqlx.DB
}

// NewEquipmentRepository creates a new equipment repository.
func NewEquipmentRepository(db *sqlx.DB) *EquipmentRepository {
	return &EquipmentRepository{db: db}
}

const schedulableQuery = `SELECT bfm_equipment_no, description, weekly_pm, monthly_pm, six_month_pm, annual_pm,
       last_weekly_pm, last_monthly_pm, last_six_month_pm, last_annual_pm, status
FROM equipment
WHERE (status = 'Active' OR status IS NULL)
AND status NOT IN ('Run to Failure', 'Missing')
AND bfm_equipment_no NOT IN (
    SELECT DISTINCT bfm_equipment_no FROM cannot_find_assets WHERE status = 'Missing'
)
AND bfm_equipment_no NOT IN (
    SELECT DISTINCT bfm_equipment_no FROM run_to_failure_assets
)
AND bfm_equipment_no NOT IN (
    SELECT DISTINCT bfm_equipment_no FROM deactivated_assets
)
AND (weekly_pm = TRUE OR monthly_pm = TRUE OR six_month_pm = TRUE OR annual_pm = TRUE)
ORDER BY bfm_equipment_no`

// ListSchedulable loads every asset that may receive a PM assignment. The
// exclusion of missing, run-to-failure and deactivated assets (including
// the override tables) happens here, not in eligibility logic: an excluded
// asset is never a candidate regardless of its due dates.
func (r *EquipmentRepository) ListSchedulable(ctx context.Context) ([]models.Equipment, error) {
	rows, err := r.db.QueryxContext(ctx, schedulableQuery)
	if err != nil {
		return nil, fmt.Errorf("list schedulable equipment: %w", err)
	}
	defer rows.Close()

	var list []models.Equipment
	for rows.Next() {
		var (
			eq       models.Equipment
			weekly   *bool
			monthly  *bool
			sixMonth *bool
			annual   *bool
			status   *string
		)
		if err := rows.Scan(
			&eq.BFMNo, &eq.Description, &weekly, &monthly, &sixMonth, &annual,
			&eq.LastWeeklyDate, &eq.LastMonthlyDate, &eq.LastSixMonthDate, &eq.LastAnnualDate,
			&status,
		); err != nil {
			return nil, fmt.Errorf("scan equipment row: %w", err)
		}
		eq.HasWeekly = weekly != nil && *weekly
		eq.HasMonthly = monthly != nil && *monthly
		eq.HasSixMonth = sixMonth != nil && *sixMonth
		eq.HasAnnual = annual != nil && *annual
		// NULL status stays empty. The generator only assigns to assets
		// whose status is exactly Active, so unset rows load but never
		// receive work until someone sets their status.
		if status != nil {
			eq.Status = *status
		}
		eq.Priority = models.DefaultPriority
		list = append(list, eq)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate equipment rows: %w", err)
	}
	return list, nil
}

// List returns equipment records with optional filtering and pagination.
func (r *EquipmentRepository) List(ctx context.Context, filter models.EquipmentFilter) ([]models.EquipmentRecord, int, error) {
	base := "FROM equipment WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(bfm_equipment_no ILIKE $%d OR description ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT bfm_equipment_no, description, weekly_pm, monthly_pm, six_month_pm, annual_pm, last_weekly_pm, last_monthly_pm, last_six_month_pm, last_annual_pm, status, location, created_at, updated_at %s ORDER BY bfm_equipment_no LIMIT %d OFFSET %d", base, size, offset)
	var records []models.EquipmentRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list equipment: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count equipment: %w", err)
	}

	return records, total, nil
}

// FindByBFM loads one equipment record.
func (r *EquipmentRepository) FindByBFM(ctx context.Context, bfmNo string) (*models.EquipmentRecord, error) {
	const query = `SELECT bfm_equipment_no, description, weekly_pm, monthly_pm, six_month_pm, annual_pm, last_weekly_pm, last_monthly_pm, last_six_month_pm, last_annual_pm, status, location, created_at, updated_at FROM equipment WHERE bfm_equipment_no = $1`
	var record models.EquipmentRecord
	if err := r.db.GetContext(ctx, &record, query, bfmNo); err != nil {
		return nil, err
	}
	return &record, nil
}

// Create inserts a new equipment row.
func (r *EquipmentRepository) Create(ctx context.Context, record *models.EquipmentRecord) error {
	const query = `INSERT INTO equipment (bfm_equipment_no, description, weekly_pm, monthly_pm, six_month_pm, annual_pm, status, location, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now
	if record.Status == "" {
		record.Status = models.EquipmentStatusActive
	}
	if _, err := r.db.ExecContext(ctx, query,
		record.BFMNo, record.Description,
		record.HasWeekly, record.HasMonthly, record.HasSixMonth, record.HasAnnual,
		record.Status, record.Location, record.CreatedAt, record.UpdatedAt,
	); err != nil {
		return fmt.Errorf("create equipment: %w", err)
	}
	return nil
}

// Update rewrites the mutable columns of an equipment row.
func (r *EquipmentRepository) Update(ctx context.Context, record *models.EquipmentRecord) error {
	const query = `UPDATE equipment SET description = $2, weekly_pm = $3, monthly_pm = $4, six_month_pm = $5, annual_pm = $6, status = $7, location = $8, updated_at = $9 WHERE bfm_equipment_no = $1`
	record.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, query,
		record.BFMNo, record.Description,
		record.HasWeekly, record.HasMonthly, record.HasSixMonth, record.HasAnnual,
		record.Status, record.Location, record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update equipment: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("update equipment %s: no rows affected", record.BFMNo)
	}
	return nil
}

// UpdateStatus moves an asset between lifecycle states.
func (r *EquipmentRepository) UpdateStatus(ctx context.Context, bfmNo, status string) error {
	const query = `UPDATE equipment SET status = $2, updated_at = $3 WHERE bfm_equipment_no = $1`
	res, err := r.db.ExecContext(ctx, query, bfmNo, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update equipment status: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("update equipment status %s: no rows affected", bfmNo)
	}
	return nil
}

// UpdateLastPMDate stamps the cadence's last-completion column on the
// equipment row. Dates are stored canonically as YYYY-MM-DD going forward;
// the flexible parser remains only for legacy values already in place.
func (r *EquipmentRepository) UpdateLastPMDate(ctx context.Context, exec sqlx.ExtContext, bfmNo string, pmType models.PMType, completed time.Time) error {
	var column string
	switch pmType {
	case models.PMTypeWeekly:
		column = "last_weekly_pm"
	case models.PMTypeMonthly:
		column = "last_monthly_pm"
	case models.PMTypeSixMonth:
		column = "last_six_month_pm"
	case models.PMTypeAnnual:
		column = "last_annual_pm"
	default:
		return fmt.Errorf("unknown pm type %q", pmType)
	}
	query := fmt.Sprintf("UPDATE equipment SET %s = $2, updated_at = $3 WHERE bfm_equipment_no = $1", column)
	if _, err := exec.ExecContext(ctx, query, bfmNo, completed.Format("2006-01-02"), time.Now().UTC()); err != nil {
		return fmt.Errorf("update %s: %w", column, err)
	}
	return nil
}
