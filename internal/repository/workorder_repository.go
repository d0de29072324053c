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

// WorkOrderRepository persists corrective maintenance work orders.
type WorkOrderRepository struct {
	db *sqlx.DB
}

// NewWorkOrderRepository creates a work order repository.
func NewWorkOrderRepository(db *sqlx.DB) *WorkOrderRepository {
	return &WorkOrderRepository{db: db}
}

const workOrderColumns = "id, bfm_equipment_no, description, status, assigned_technician, root_cause, reported_at, closed_at, downtime_hours, created_at, updated_at"

// List returns work orders with optional filtering and pagination.
func (r *WorkOrderRepository) List(ctx context.Context, filter models.WorkOrderFilter) ([]models.WorkOrder, int, error) {
	base := "FROM corrective_work_orders WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.BFMNo != "" {
		conditions = append(conditions, fmt.Sprintf("bfm_equipment_no = $%d", len(args)+1))
		args = append(args, filter.BFMNo)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY reported_at DESC LIMIT %d OFFSET %d", workOrderColumns, base, size, offset)
	var orders []models.WorkOrder
	if err := r.db.SelectContext(ctx, &orders, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list work orders: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count work orders: %w", err)
	}
	return orders, total, nil
}

// FindByID loads one work order.
func (r *WorkOrderRepository) FindByID(ctx context.Context, id string) (*models.WorkOrder, error) {
	query := fmt.Sprintf("SELECT %s FROM corrective_work_orders WHERE id = $1", workOrderColumns)
	var order models.WorkOrder
	if err := r.db.GetContext(ctx, &order, query, id); err != nil {
		return nil, err
	}
	return &order, nil
}

// Create opens a new work order.
func (r *WorkOrderRepository) Create(ctx context.Context, order *models.WorkOrder) error {
	const query = `INSERT INTO corrective_work_orders (id, bfm_equipment_no, description, status, assigned_technician, reported_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	now := time.Now().UTC()
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if order.Status == "" {
		order.Status = models.WorkOrderStatusOpen
	}
	if order.ReportedAt.IsZero() {
		order.ReportedAt = now
	}
	order.CreatedAt = now
	order.UpdatedAt = now
	if _, err := r.db.ExecContext(ctx, query,
		order.ID, order.BFMNo, order.Description, order.Status,
		order.Technician, order.ReportedAt, order.CreatedAt, order.UpdatedAt,
	); err != nil {
		return fmt.Errorf("create work order: %w", err)
	}
	return nil
}

// UpdateStatus moves a work order through its lifecycle.
func (r *WorkOrderRepository) UpdateStatus(ctx context.Context, id string, status models.WorkOrderStatus, technician *string) error {
	const query = `UPDATE corrective_work_orders SET status = $2, assigned_technician = COALESCE($3, assigned_technician), updated_at = $4 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, status, technician, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update work order status: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("update work order %s: no rows affected", id)
	}
	return nil
}

// Close finalises a work order with its root cause and downtime.
func (r *WorkOrderRepository) Close(ctx context.Context, id, rootCause string, downtimeHours *float64, closedAt time.Time) error {
	const query = `UPDATE corrective_work_orders SET status = $2, root_cause = $3, downtime_hours = $4, closed_at = $5, updated_at = $6 WHERE id = $1 AND status != $2`
	res, err := r.db.ExecContext(ctx, query, id, models.WorkOrderStatusClosed, rootCause, downtimeHours, closedAt, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("close work order: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("work order %s is already closed or missing", id)
	}
	return nil
}

// CountOpen returns the number of unresolved work orders.
func (r *WorkOrderRepository) CountOpen(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM corrective_work_orders WHERE status != $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, models.WorkOrderStatusClosed); err != nil {
		return 0, fmt.Errorf("count open work orders: %w", err)
	}
	return count, nil
}
