package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ait-ops/cmms-api/internal/models"
	appErrors "github.com/ait-ops/cmms-api/pkg/errors"
)

type kpiReader interface {
	WeeklyCounts(ctx context.Context, weekStart time.Time) (scheduled, completed int, err error)
	StaleScheduleCount(ctx context.Context, beforeWeek time.Time) (int, error)
}

type openWorkOrderCounter interface {
	CountOpen(ctx context.Context) (int, error)
}

type lowStockLister interface {
	List(ctx context.Context, filter models.PartFilter) ([]models.Part, int, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL time.Duration
}

// DashboardService composes the maintenance KPI payload. Results are
// cached per week; completion and schedule writes invalidate the keys.
type DashboardService struct {
	kpis       kpiReader
	workOrders openWorkOrderCounter
	parts      lowStockLister
	cache      *CacheService
	logger     *zap.Logger
	cfg        DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(kpis kpiReader, workOrders openWorkOrderCounter, parts lowStockLister, cache *CacheService, logger *zap.Logger, cfg DashboardServiceConfig) *DashboardService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		kpis:       kpis,
		workOrders: workOrders,
		parts:      parts,
		cache:      cache,
		logger:     logger,
		cfg:        cfg,
	}
}

// WeeklyKPI returns the KPI summary for one week and indicates whether the
// payload was served from cache.
func (s *DashboardService) WeeklyKPI(ctx context.Context, weekStart time.Time) (*models.WeeklyKPI, bool, error) {
	cacheKey := fmt.Sprintf("dash:kpi:%s", weekStart.Format("2006-01-02"))
	if s.cache != nil {
		var cached models.WeeklyKPI
		hit, err := s.cache.Get(ctx, cacheKey, &cached)
		if err != nil {
			return nil, false, err
		}
		if hit {
			return &cached, true, nil
		}
	}

	kpi, err := s.compose(ctx, weekStart)
	if err != nil {
		return nil, false, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, kpi, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return kpi, false, nil
}

// InvalidateWeek drops cached KPI payloads after schedule or completion
// writes touch the week.
func (s *DashboardService) InvalidateWeek(ctx context.Context, weekStart time.Time) {
	if s.cache == nil {
		return
	}
	pattern := fmt.Sprintf("dash:kpi:%s*", weekStart.Format("2006-01-02"))
	if err := s.cache.Invalidate(ctx, pattern); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}

func (s *DashboardService) compose(ctx context.Context, weekStart time.Time) (*models.WeeklyKPI, error) {
	scheduled, completed, err := s.kpis.WeeklyCounts(ctx, weekStart)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load weekly counts")
	}
	stale, err := s.kpis.StaleScheduleCount(ctx, weekStart)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count stale schedules")
	}

	kpi := &models.WeeklyKPI{
		WeekStart:          weekStart,
		ScheduledCount:     scheduled,
		CompletedCount:     completed,
		OverdueUncompleted: stale,
	}
	if scheduled > 0 {
		kpi.CompletionRate = float64(completed) / float64(scheduled) * 100
	}

	if s.workOrders != nil {
		open, err := s.workOrders.CountOpen(ctx)
		if err != nil {
			s.logger.Warn("open work order count failed", zap.Error(err))
		} else {
			kpi.OpenWorkOrders = open
		}
	}
	if s.parts != nil {
		_, total, err := s.parts.List(ctx, models.PartFilter{LowStock: true, Page: 1, PageSize: 1})
		if err != nil {
			s.logger.Warn("low stock count failed", zap.Error(err))
		} else {
			kpi.LowStockParts = total
		}
	}
	return kpi, nil
}
