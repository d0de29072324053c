package service

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ait-ops/cmms-api/internal/models"
	appErrors "github.com/ait-ops/cmms-api/pkg/errors"
)

// DefaultWeeklyCapacity is the assignment cap applied when a request does
// not supply one. It matches the crew's sustainable weekly throughput.
const DefaultWeeklyCapacity = 130

type equipmentRosterReader interface {
	ListSchedulable(ctx context.Context) ([]models.Equipment, error)
}

type schedulingDatasetLoader interface {
	Load(ctx context.Context, weekStart time.Time, windowDays int) (*models.SchedulingDataset, error)
}

// PMSchedulingService orchestrates one weekly generation run: load the
// snapshot, load the roster, apply priority tiers, generate assignments.
// Generation itself writes nothing; persisting a run is a separate call on
// PMScheduleService.
type PMSchedulingService struct {
	equipment  equipmentRosterReader
	datasets   schedulingDatasetLoader
	priorities models.PriorityOverrides
	metrics    *MetricsService
	logger     *zap.Logger
	windowDays int
	now        func() time.Time
}

// NewPMSchedulingService creates the scheduling orchestrator. windowDays
// bounds the completion-history load; zero selects the repository default.
func NewPMSchedulingService(
	equipment equipmentRosterReader,
	datasets schedulingDatasetLoader,
	priorities models.PriorityOverrides,
	windowDays int,
	metrics *MetricsService,
	logger *zap.Logger,
) *PMSchedulingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PMSchedulingService{
		equipment:  equipment,
		datasets:   datasets,
		priorities: priorities,
		metrics:    metrics,
		logger:     logger,
		windowDays: windowDays,
		now:        time.Now,
	}
}

// GenerateWeeklySchedule produces the ranked assignment list for the week
// starting at weekStart. maxPMs <= 0 selects DefaultWeeklyCapacity. The
// call is read-only and idempotent: rerunning it against unchanged data
// yields the identical list.
func (s *PMSchedulingService) GenerateWeeklySchedule(ctx context.Context, weekStart time.Time, maxPMs int) ([]models.PMAssignment, error) {
	if maxPMs <= 0 {
		maxPMs = DefaultWeeklyCapacity
	}
	started := s.now()

	dataset, err := s.datasets.Load(ctx, weekStart, s.windowDays)
	if err != nil {
		return nil, appErrors.Wrap(err, "SCHEDULING_DATA_UNAVAILABLE", http.StatusInternalServerError, "failed to load scheduling dataset")
	}

	roster, err := s.equipment.ListSchedulable(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, "EQUIPMENT_ROSTER_UNAVAILABLE", http.StatusInternalServerError, "failed to load schedulable equipment")
	}
	for i := range roster {
		roster[i].Priority = s.priorities.PriorityFor(roster[i].BFMNo)
	}

	checker := NewPMEligibilityChecker(dataset, s.logger)
	checker.now = s.now
	generator := NewPMAssignmentGenerator(checker, dataset, s.logger)

	assignments := generator.GenerateAssignments(roster, weekStart, maxPMs)
	s.metrics.ObserveGeneration(len(assignments), time.Since(started))

	s.logger.Info("weekly schedule generated",
		zap.String("week_start", weekStart.Format("2006-01-02")),
		zap.Int("roster_size", len(roster)),
		zap.Int("assignments", len(assignments)),
	)
	return assignments, nil
}
