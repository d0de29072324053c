package service

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/ait-ops/cmms-api/internal/models"
)

// PMAssignmentGenerator turns a schedulable roster into the ranked, capped
// list of PM assignments for one week.
type PMAssignmentGenerator struct {
	checker *PMEligibilityChecker
	dataset *models.SchedulingDataset
	logger  *zap.Logger
}

// NewPMAssignmentGenerator wires a generator over a loaded dataset and its
// eligibility checker.
func NewPMAssignmentGenerator(checker *PMEligibilityChecker, dataset *models.SchedulingDataset, logger *zap.Logger) *PMAssignmentGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PMAssignmentGenerator{checker: checker, dataset: dataset, logger: logger}
}

// GenerateAssignments evaluates every cadence of every active asset, keeps
// at most one assignment per asset (highest cadence wins), ranks the result
// and truncates to maxAssignments.
func (g *PMAssignmentGenerator) GenerateAssignments(equipment []models.Equipment, weekStart time.Time, maxAssignments int) []models.PMAssignment {
	assignments := make([]models.PMAssignment, 0, len(equipment))

	statusCounts := map[models.PMStatus]int{}
	for _, eq := range equipment {
		if eq.Status != models.EquipmentStatusActive {
			continue
		}
		for _, pmType := range models.PMTypesByCadence {
			if !eq.RequiresPM(pmType) {
				continue
			}
			result := g.checker.CheckEligibility(eq, pmType, weekStart)
			statusCounts[result.Status]++
			if result.Status != models.PMStatusDue {
				continue
			}
			assignments = append(assignments, models.PMAssignment{
				BFMNo:             eq.BFMNo,
				PMType:            pmType,
				Description:       eq.Description,
				Priority:          eq.Priority,
				PriorityScore:     result.PriorityScore,
				Reason:            result.Reason,
				HasCustomTemplate: g.dataset.HasCustomTemplate(eq.BFMNo, pmType),
			})
			// One PM per asset per week; shorter cadences are evaluated
			// first, so the first due cadence wins.
			break
		}
	}

	sortAssignments(assignments)

	g.logger.Info("generated pm assignments",
		zap.String("week_start", weekStart.Format("2006-01-02")),
		zap.Int("candidates", len(assignments)),
		zap.Int("max", maxAssignments),
		zap.Int("due", statusCounts[models.PMStatusDue]),
		zap.Int("conflicted", statusCounts[models.PMStatusConflicted]),
		zap.Int("recently_completed", statusCounts[models.PMStatusRecentlyCompleted]),
	)

	if maxAssignments < 0 {
		maxAssignments = 0
	}
	if len(assignments) > maxAssignments {
		assignments = assignments[:maxAssignments]
	}
	return assignments
}

// sortAssignments orders by custom template first, then the hand-maintained
// equipment priority tier ascending, then the computed score descending.
func sortAssignments(assignments []models.PMAssignment) {
	sort.SliceStable(assignments, func(i, j int) bool {
		a, b := assignments[i], assignments[j]
		if a.HasCustomTemplate != b.HasCustomTemplate {
			return a.HasCustomTemplate
		}
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		return a.PriorityScore > b.PriorityScore
	})
}
