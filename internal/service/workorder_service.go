package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ait-ops/cmms-api/internal/dto"
	"github.com/ait-ops/cmms-api/internal/models"
	appErrors "github.com/ait-ops/cmms-api/pkg/errors"
)

type workOrderRepository interface {
	List(ctx context.Context, filter models.WorkOrderFilter) ([]models.WorkOrder, int, error)
	FindByID(ctx context.Context, id string) (*models.WorkOrder, error)
	Create(ctx context.Context, order *models.WorkOrder) error
	UpdateStatus(ctx context.Context, id string, status models.WorkOrderStatus, technician *string) error
	Close(ctx context.Context, id, rootCause string, downtimeHours *float64, closedAt time.Time) error
}

type workOrderEquipmentReader interface {
	FindByBFM(ctx context.Context, bfmNo string) (*models.EquipmentRecord, error)
}

// WorkOrderService manages corrective maintenance work orders.
type WorkOrderService struct {
	repo      workOrderRepository
	equipment workOrderEquipmentReader
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewWorkOrderService constructs a WorkOrderService.
func NewWorkOrderService(repo workOrderRepository, equipment workOrderEquipmentReader, validate *validator.Validate, logger *zap.Logger) *WorkOrderService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkOrderService{repo: repo, equipment: equipment, validator: validate, logger: logger, now: time.Now}
}

// List returns the filtered work order page.
func (s *WorkOrderService) List(ctx context.Context, filter models.WorkOrderFilter) ([]models.WorkOrder, *models.Pagination, error) {
	orders, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list work orders")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return orders, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get loads one work order.
func (s *WorkOrderService) Get(ctx context.Context, id string) (*models.WorkOrder, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "work order not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load work order")
	}
	return order, nil
}

// Create opens a new work order against a known asset.
func (s *WorkOrderService) Create(ctx context.Context, req dto.CreateWorkOrderRequest) (*models.WorkOrder, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid work order payload")
	}
	if _, err := s.equipment.FindByBFM(ctx, req.BFMNo); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown equipment number")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify equipment")
	}
	order := &models.WorkOrder{
		BFMNo:       req.BFMNo,
		Description: req.Description,
		Technician:  req.Technician,
		Status:      models.WorkOrderStatusOpen,
		ReportedAt:  s.now().UTC(),
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create work order")
	}
	s.logger.Info("work order opened", zap.String("id", order.ID), zap.String("bfm_no", order.BFMNo))
	return order, nil
}

// UpdateStatus moves a work order between Open and In Progress.
func (s *WorkOrderService) UpdateStatus(ctx context.Context, id string, req dto.UpdateWorkOrderStatusRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	order, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if order.Status == models.WorkOrderStatusClosed {
		return appErrors.Clone(appErrors.ErrConflict, "work order is closed")
	}
	if err := s.repo.UpdateStatus(ctx, id, models.WorkOrderStatus(req.Status), req.Technician); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update work order")
	}
	return nil
}

// Close finalises a work order with root cause and downtime.
func (s *WorkOrderService) Close(ctx context.Context, id string, req dto.CloseWorkOrderRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid close payload")
	}
	if err := s.repo.Close(ctx, id, req.RootCause, req.DowntimeHours, s.now().UTC()); err != nil {
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "failed to close work order")
	}
	s.logger.Info("work order closed", zap.String("id", id))
	return nil
}
