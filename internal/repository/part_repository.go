package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ait-ops/cmms-api/internal/models"
)

// PartRepository persists MRO stock items.
type PartRepository struct {
	db *sqlx.DB
}

// NewPartRepository creates a part repository.
func NewPartRepository(db *sqlx.DB) *PartRepository {
	return &PartRepository{db: db}
}

const partColumns = "id, part_number, description, location, qty_on_hand, reorder_point, unit_cost, created_at, updated_at"

// List returns parts with optional filtering and pagination.
func (r *PartRepository) List(ctx context.Context, filter models.PartFilter) ([]models.Part, int, error) {
	base := "FROM mro_parts WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(part_number ILIKE $%d OR description ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.LowStock {
		conditions = append(conditions, "qty_on_hand <= reorder_point")
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY part_number LIMIT %d OFFSET %d", partColumns, base, size, offset)
	var parts []models.Part
	if err := r.db.SelectContext(ctx, &parts, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list parts: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count parts: %w", err)
	}
	return parts, total, nil
}

// FindByID loads one part.
func (r *PartRepository) FindByID(ctx context.Context, id string) (*models.Part, error) {
	query := fmt.Sprintf("SELECT %s FROM mro_parts WHERE id = $1", partColumns)
	var part models.Part
	if err := r.db.GetContext(ctx, &part, query, id); err != nil {
		return nil, err
	}
	return &part, nil
}

// Create inserts a new part.
func (r *PartRepository) Create(ctx context.Context, part *models.Part) error {
	const query = `INSERT INTO mro_parts (id, part_number, description, location, qty_on_hand, reorder_point, unit_cost, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	now := time.Now().UTC()
	if part.ID == "" {
		part.ID = uuid.NewString()
	}
	part.CreatedAt = now
	part.UpdatedAt = now
	if _, err := r.db.ExecContext(ctx, query,
		part.ID, part.PartNumber, part.Description, part.Location,
		part.QtyOnHand, part.ReorderPoint, part.UnitCost, part.CreatedAt, part.UpdatedAt,
	); err != nil {
		return fmt.Errorf("create part: %w", err)
	}
	return nil
}

// AdjustStock applies a signed quantity delta, refusing to go negative.
func (r *PartRepository) AdjustStock(ctx context.Context, id string, delta int) (int, error) {
	const query = `UPDATE mro_parts SET qty_on_hand = qty_on_hand + $2, updated_at = $3 WHERE id = $1 AND qty_on_hand + $2 >= 0 RETURNING qty_on_hand`
	var remaining int
	if err := r.db.GetContext(ctx, &remaining, query, id, delta, time.Now().UTC()); err != nil {
		return 0, err
	}
	return remaining, nil
}
