package service

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ait-ops/cmms-api/internal/models"
	"github.com/ait-ops/cmms-api/pkg/flexdate"
)

// annualOverrideLeadDays and annualOverrideGraceDays bound the window in
// which an explicit next-annual-PM date forces the annual cadence due:
// from 7 days before the target date to 30 days past it.
const (
	annualOverrideLeadDays  = 7
	annualOverrideGraceDays = 30
)

// crossCadenceRule blocks one cadence when another was completed within
// the stated window. The table reproduces the long-standing production
// rules exactly: the entries are asymmetric and six-month carries none,
// participating only through the generic due-date calculation.
type crossCadenceRule struct {
	blocking   models.PMType
	withinDays int
}

var crossCadenceRules = map[models.PMType][]crossCadenceRule{
	models.PMTypeAnnual:  {{models.PMTypeWeekly, 7}, {models.PMTypeMonthly, 7}},
	models.PMTypeMonthly: {{models.PMTypeWeekly, 7}, {models.PMTypeAnnual, 30}},
	models.PMTypeWeekly:  {{models.PMTypeMonthly, 7}, {models.PMTypeAnnual, 7}},
}

// PMEligibilityChecker decides whether one (equipment, cadence) pair should
// be scheduled for a given week. All state it consults lives in the
// pre-loaded dataset; a check never touches the database.
type PMEligibilityChecker struct {
	dataset *models.SchedulingDataset
	logger  *zap.Logger
	now     func() time.Time
}

// NewPMEligibilityChecker wires a checker over a loaded dataset.
func NewPMEligibilityChecker(dataset *models.SchedulingDataset, logger *zap.Logger) *PMEligibilityChecker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PMEligibilityChecker{dataset: dataset, logger: logger, now: time.Now}
}

// CheckEligibility runs the gate sequence for one equipment and cadence.
// Each gate short-circuits; the ordering is part of the contract.
func (c *PMEligibilityChecker) CheckEligibility(eq models.Equipment, pmType models.PMType, weekStart time.Time) models.EligibilityResult {
	if !eq.RequiresPM(pmType) {
		return models.EligibilityResult{
			Status: models.PMStatusNotDue,
			Reason: fmt.Sprintf("Equipment doesn't require %s PM", pmType),
		}
	}

	// A prior-week row still marked Scheduled means the work was planned
	// and never done. Re-assigning would silently double-book, dropping it
	// would silently lose the miss, so it surfaces as a conflict for a
	// human to resolve.
	if stale := c.dataset.UncompletedSchedules(eq.BFMNo, pmType); len(stale) > 0 {
		oldest := stale[len(stale)-1]
		return models.EligibilityResult{
			Status: models.PMStatusConflicted,
			Reason: fmt.Sprintf("Already scheduled for week %s (uncompleted) - assigned to %s", oldest.WeekStart, oldest.Technician),
		}
	}

	if pmType == models.PMTypeAnnual {
		if result, ok := c.checkAnnualOverride(eq); ok {
			return result
		}
	}

	completions := c.dataset.RecentCompletions(eq.BFMNo)

	if latest, ok := latestOfType(completions, pmType); ok {
		daysSince := c.daysSince(latest.CompletionDate)
		if minInterval := pmType.MinimumInterval(); daysSince < minInterval {
			return models.EligibilityResult{
				Status: models.PMStatusRecentlyCompleted,
				Reason: fmt.Sprintf("%s PM completed %d days ago (min interval: %d)", pmType, daysSince, minInterval),
			}
		}
	}

	if result, conflicted := c.checkCrossCadence(completions, pmType); conflicted {
		return result
	}

	for _, scheduled := range c.dataset.ScheduledPMs(eq.BFMNo) {
		if scheduled.PMType == string(pmType) {
			return models.EligibilityResult{
				Status: models.PMStatusConflicted,
				Reason: "Already scheduled for this week",
			}
		}
	}

	return c.checkDueDate(eq, pmType, completions)
}

// checkAnnualOverride applies the explicit next-annual-PM date when one is
// recorded. It reports ok=false when the date is absent, unparseable, or
// more than the grace period in the past, in which case the generic
// interval calculation decides.
func (c *PMEligibilityChecker) checkAnnualOverride(eq models.Equipment) (models.EligibilityResult, bool) {
	raw := c.dataset.NextAnnualDate(eq.BFMNo)
	if raw == "" {
		return models.EligibilityResult{}, false
	}
	target, ok := flexdate.Parse(raw)
	if !ok {
		c.logger.Warn("unparseable next annual pm date",
			zap.String("bfm_no", eq.BFMNo), zap.String("next_annual_pm", raw))
		return models.EligibilityResult{}, false
	}

	daysUntil := c.daysUntil(target)
	switch {
	case daysUntil > annualOverrideLeadDays:
		return models.EligibilityResult{
			Status: models.PMStatusNotDue,
			Reason: fmt.Sprintf("Annual PM scheduled for %s (%d days from now)", target.Format("2006-01-02"), daysUntil),
		}, true
	case daysUntil >= -annualOverrideGraceDays:
		overdue := 0
		if daysUntil < 0 {
			overdue = -daysUntil
		}
		return models.EligibilityResult{
			Status:        models.PMStatusDue,
			Reason:        fmt.Sprintf("Annual PM due by Next Annual PM Date: %s", target.Format("2006-01-02")),
			PriorityScore: 500 + overdue*10,
			DaysOverdue:   overdue,
		}, true
	}
	return models.EligibilityResult{}, false
}

func (c *PMEligibilityChecker) checkCrossCadence(completions []models.CompletionRecord, pmType models.PMType) (models.EligibilityResult, bool) {
	for _, rule := range crossCadenceRules[pmType] {
		latest, ok := latestOfType(completions, rule.blocking)
		if !ok {
			continue
		}
		daysSince := c.daysSince(latest.CompletionDate)
		if daysSince < rule.withinDays {
			return models.EligibilityResult{
				Status: models.PMStatusConflicted,
				Reason: fmt.Sprintf("%s blocked - %s PM completed %d days ago", pmType, rule.blocking, daysSince),
			}, true
		}
	}
	return models.EligibilityResult{}, false
}

// checkDueDate is the default path: compare days since the last completion
// of this cadence (or the legacy equipment-table date) against the cadence
// window.
func (c *PMEligibilityChecker) checkDueDate(eq models.Equipment, pmType models.PMType, completions []models.CompletionRecord) models.EligibilityResult {
	var (
		lastCompleted time.Time
		haveDate      bool
		source        string
	)
	if latest, ok := latestOfType(completions, pmType); ok {
		lastCompleted = latest.CompletionDate
		haveDate = true
		source = "pm_completions_table"
	} else if parsed, ok := flexdate.Parse(eq.LastDate(pmType)); ok {
		lastCompleted = parsed
		haveDate = true
		source = "equipment_table"
	}

	// No recorded service anywhere: hardest priority band.
	if !haveDate {
		return models.EligibilityResult{
			Status:        models.PMStatusDue,
			Reason:        fmt.Sprintf("%s PM never completed - HIGH PRIORITY", pmType),
			PriorityScore: pmType.NeverCompletedScore(),
		}
	}

	daysSince := c.daysSince(lastCompleted)
	minDays, maxDays, ideal := pmType.CadenceWindow()
	lastStr := lastCompleted.Format("2006-01-02")

	if daysSince < minDays {
		return models.EligibilityResult{
			Status: models.PMStatusNotDue,
			Reason: fmt.Sprintf("%s PM not due for %d days (last: %s, source: %s)", pmType, minDays-daysSince, lastStr, source),
		}
	}

	overdue := daysSince - ideal
	switch {
	case overdue > 0:
		score := 500 + overdue*10
		if score > 999 {
			score = 999
		}
		return models.EligibilityResult{
			Status:        models.PMStatusDue,
			Reason:        fmt.Sprintf("%s PM OVERDUE by %d days (last: %s, source: %s)", pmType, overdue, lastStr, source),
			PriorityScore: score,
			DaysOverdue:   overdue,
		}
	case daysSince <= maxDays:
		diff := daysSince - ideal
		if diff < 0 {
			diff = -diff
		}
		return models.EligibilityResult{
			Status:        models.PMStatusDue,
			Reason:        fmt.Sprintf("%s PM due now (%d days since last, last: %s, source: %s)", pmType, daysSince, lastStr, source),
			PriorityScore: 300 - diff,
		}
	default:
		return models.EligibilityResult{
			Status:        models.PMStatusDue,
			Reason:        fmt.Sprintf("%s PM due (%d days since last, last: %s, source: %s)", pmType, daysSince, lastStr, source),
			PriorityScore: 200,
		}
	}
}

func (c *PMEligibilityChecker) daysSince(t time.Time) int {
	return int(c.now().Sub(t).Hours() / 24)
}

func (c *PMEligibilityChecker) daysUntil(t time.Time) int {
	return int(t.Sub(c.now()).Hours() / 24)
}

// latestOfType returns the most recent completion of the given cadence.
// Completion lists arrive newest-first from the dataset, but the scan does
// not rely on that ordering.
func latestOfType(completions []models.CompletionRecord, pmType models.PMType) (models.CompletionRecord, bool) {
	var latest models.CompletionRecord
	found := false
	for _, record := range completions {
		if record.PMType != pmType {
			continue
		}
		if !found || record.CompletionDate.After(latest.CompletionDate) {
			latest = record
			found = true
		}
	}
	return latest, found
}
