package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ait-ops/cmms-api/internal/dto"
	"github.com/ait-ops/cmms-api/internal/models"
	appErrors "github.com/ait-ops/cmms-api/pkg/errors"
)

type equipmentRepository interface {
	List(ctx context.Context, filter models.EquipmentFilter) ([]models.EquipmentRecord, int, error)
	FindByBFM(ctx context.Context, bfmNo string) (*models.EquipmentRecord, error)
	Create(ctx context.Context, record *models.EquipmentRecord) error
	Update(ctx context.Context, record *models.EquipmentRecord) error
	UpdateStatus(ctx context.Context, bfmNo, status string) error
}

// EquipmentService manages the asset roster behind the scheduler.
type EquipmentService struct {
	repo      equipmentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEquipmentService constructs an EquipmentService.
func NewEquipmentService(repo equipmentRepository, validate *validator.Validate, logger *zap.Logger) *EquipmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EquipmentService{repo: repo, validator: validate, logger: logger}
}

// List returns the filtered roster page.
func (s *EquipmentService) List(ctx context.Context, filter models.EquipmentFilter) ([]models.EquipmentRecord, *models.Pagination, error) {
	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list equipment")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return records, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get loads one asset.
func (s *EquipmentService) Get(ctx context.Context, bfmNo string) (*models.EquipmentRecord, error) {
	record, err := s.repo.FindByBFM(ctx, bfmNo)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "equipment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load equipment")
	}
	return record, nil
}

// Create registers a new asset.
func (s *EquipmentService) Create(ctx context.Context, req dto.CreateEquipmentRequest) (*models.EquipmentRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid equipment payload")
	}
	if existing, err := s.repo.FindByBFM(ctx, req.BFMNo); err == nil && existing != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "equipment number already registered")
	}
	record := &models.EquipmentRecord{
		Equipment: models.Equipment{
			BFMNo:       req.BFMNo,
			Description: req.Description,
			HasWeekly:   req.HasWeekly,
			HasMonthly:  req.HasMonthly,
			HasSixMonth: req.HasSixMonth,
			HasAnnual:   req.HasAnnual,
			Status:      models.EquipmentStatusActive,
		},
		Location: req.Location,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create equipment")
	}
	s.logger.Info("equipment created", zap.String("bfm_no", record.BFMNo))
	return record, nil
}

// Update rewrites an asset's mutable fields.
func (s *EquipmentService) Update(ctx context.Context, bfmNo string, req dto.UpdateEquipmentRequest) (*models.EquipmentRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid equipment payload")
	}
	record, err := s.Get(ctx, bfmNo)
	if err != nil {
		return nil, err
	}
	record.Description = req.Description
	record.HasWeekly = req.HasWeekly
	record.HasMonthly = req.HasMonthly
	record.HasSixMonth = req.HasSixMonth
	record.HasAnnual = req.HasAnnual
	record.Status = req.Status
	record.Location = req.Location
	if err := s.repo.Update(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update equipment")
	}
	return record, nil
}

// UpdateStatus moves an asset between lifecycle states. Anything other than
// Active removes the asset from future generation runs.
func (s *EquipmentService) UpdateStatus(ctx context.Context, bfmNo string, req dto.UpdateEquipmentStatusRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	if _, err := s.Get(ctx, bfmNo); err != nil {
		return err
	}
	if err := s.repo.UpdateStatus(ctx, bfmNo, req.Status); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update equipment status")
	}
	s.logger.Info("equipment status changed", zap.String("bfm_no", bfmNo), zap.String("status", req.Status))
	return nil
}
