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

type partRepository interface {
	List(ctx context.Context, filter models.PartFilter) ([]models.Part, int, error)
	FindByID(ctx context.Context, id string) (*models.Part, error)
	Create(ctx context.Context, part *models.Part) error
	AdjustStock(ctx context.Context, id string, delta int) (int, error)
}

// PartService manages MRO stock.
type PartService struct {
	repo      partRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPartService constructs a PartService.
func NewPartService(repo partRepository, validate *validator.Validate, logger *zap.Logger) *PartService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PartService{repo: repo, validator: validate, logger: logger}
}

// List returns the filtered parts page.
func (s *PartService) List(ctx context.Context, filter models.PartFilter) ([]models.Part, *models.Pagination, error) {
	parts, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list parts")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return parts, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get loads one part.
func (s *PartService) Get(ctx context.Context, id string) (*models.Part, error) {
	part, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "part not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load part")
	}
	return part, nil
}

// Create registers a new part.
func (s *PartService) Create(ctx context.Context, req dto.CreatePartRequest) (*models.Part, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid part payload")
	}
	part := &models.Part{
		PartNumber:   req.PartNumber,
		Description:  req.Description,
		Location:     req.Location,
		QtyOnHand:    req.QtyOnHand,
		ReorderPoint: req.ReorderPoint,
		UnitCost:     req.UnitCost,
	}
	if err := s.repo.Create(ctx, part); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create part")
	}
	return part, nil
}

// AdjustStock applies a signed delta, refusing to drive stock negative.
func (s *PartService) AdjustStock(ctx context.Context, id string, req dto.AdjustStockRequest) (*dto.AdjustStockResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid stock adjustment")
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	remaining, err := s.repo.AdjustStock(ctx, id, req.Delta)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrStockExhausted, "adjustment would drive stock negative")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to adjust stock")
	}
	part, err := s.Get(ctx, id)
	if err == nil && part.BelowReorderPoint() {
		s.logger.Warn("part at or below reorder point",
			zap.String("part_number", part.PartNumber), zap.Int("qty_on_hand", remaining))
	}
	return &dto.AdjustStockResponse{PartID: id, QtyOnHand: remaining}, nil
}
