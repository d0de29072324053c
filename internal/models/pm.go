package models

import (
	"fmt"
	"time"
)

// PMType identifies one of the four preventive maintenance cadences.
type PMType string

const (
	PMTypeWeekly   PMType = "Weekly"
	PMTypeMonthly  PMType = "Monthly"
	PMTypeSixMonth PMType = "Six Month"
	PMTypeAnnual   PMType = "Annual"
)

// PMTypesByCadence lists the cadences from highest to lowest frequency.
// Assignment generation walks them in this order: once a higher-frequency
// cadence is picked for an asset, the lower ones are skipped for the week.
var PMTypesByCadence = []PMType{PMTypeWeekly, PMTypeMonthly, PMTypeSixMonth, PMTypeAnnual}

// ParsePMType maps a stored pm_type string onto the closed enum. Unknown
// values are an error: completion rows carrying a label outside the four
// cadences must be skipped by the caller, not reclassified.
func ParsePMType(value string) (PMType, error) {
	switch PMType(value) {
	case PMTypeWeekly, PMTypeMonthly, PMTypeSixMonth, PMTypeAnnual:
		return PMType(value), nil
	}
	return "", fmt.Errorf("unrecognized pm type %q", value)
}

// MinimumInterval returns the fewest days allowed between two completions
// of the same cadence before a new assignment is considered redundant.
func (t PMType) MinimumInterval() int {
	switch t {
	case PMTypeWeekly:
		return 7
	case PMTypeMonthly:
		return 30
	case PMTypeSixMonth:
		return 180
	default:
		return 365
	}
}

// CadenceWindow returns the due window for the cadence: the earliest day a
// PM becomes due, the last day of the on-time band, and the ideal spacing
// used for overdue math.
func (t PMType) CadenceWindow() (minDays, maxDays, ideal int) {
	switch t {
	case PMTypeWeekly:
		return 7, 10, 7
	case PMTypeMonthly:
		return 30, 35, 30
	case PMTypeSixMonth:
		return 180, 190, 180
	default:
		return 365, 370, 365
	}
}

// NeverCompletedScore is the priority band for equipment with no recorded
// completion of this cadence. Higher-frequency cadences outrank lower ones,
// and every band sits above the 999 cap applied to overdue scores.
func (t PMType) NeverCompletedScore() int {
	switch t {
	case PMTypeWeekly:
		return 1100
	case PMTypeMonthly:
		return 1000
	case PMTypeSixMonth:
		return 950
	default:
		return 900
	}
}

// PMStatus is the outcome of an eligibility check.
type PMStatus string

const (
	PMStatusDue               PMStatus = "due"
	PMStatusNotDue            PMStatus = "not_due"
	PMStatusRecentlyCompleted PMStatus = "recently_completed"
	PMStatusConflicted        PMStatus = "conflicted"
)

// CompletionRecord is one historical PM execution. Rows are immutable; the
// scheduler only reads them inside a trailing window wide enough to cover
// annual cadence lookups.
type CompletionRecord struct {
	BFMNo          string    `db:"bfm_equipment_no" json:"bfm_no"`
	PMType         PMType    `db:"pm_type" json:"pm_type"`
	CompletionDate time.Time `db:"completion_date" json:"completion_date"`
	Technician     string    `db:"technician_name" json:"technician"`
}

// ScheduledPM is a PM already placed on a specific week's schedule.
type ScheduledPM struct {
	BFMNo      string `db:"bfm_equipment_no" json:"bfm_no"`
	PMType     string `db:"pm_type" json:"pm_type"`
	WeekStart  string `db:"week_start_date" json:"week_start"`
	Technician string `db:"assigned_technician" json:"technician"`
	Status     string `db:"status" json:"status"`
}

// ScheduledPMStatus values observed on weekly_pm_schedules rows.
const (
	ScheduledPMStatusScheduled = "Scheduled"
	ScheduledPMStatusCompleted = "Completed"
)

// ScheduleEntry is one persisted weekly_pm_schedules row.
type ScheduleEntry struct {
	ID          string     `db:"id" json:"id"`
	BFMNo       string     `db:"bfm_equipment_no" json:"bfm_no"`
	PMType      string     `db:"pm_type" json:"pm_type"`
	WeekStart   string     `db:"week_start_date" json:"week_start"`
	Technician  string     `db:"assigned_technician" json:"technician"`
	Status      string     `db:"status" json:"status"`
	Reason      string     `db:"reason" json:"reason"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// EligibilityResult is the transient output of a single eligibility check.
// PriorityScore is only meaningful when Status is PMStatusDue.
type EligibilityResult struct {
	Status        PMStatus `json:"status"`
	Reason        string   `json:"reason"`
	PriorityScore int      `json:"priority_score"`
	DaysOverdue   int      `json:"days_overdue"`
}

// PMAssignment is one entry of the generated weekly assignment list.
// HasCustomTemplate is a sort tie-break only: assets with a bespoke PM
// procedure are worked first, but the flag carries no eligibility meaning.
type PMAssignment struct {
	BFMNo             string `json:"bfm_no"`
	PMType            PMType `json:"pm_type"`
	Description       string `json:"description"`
	Priority          int    `json:"priority"`
	PriorityScore     int    `json:"priority_score"`
	Reason            string `json:"reason"`
	HasCustomTemplate bool   `json:"has_custom_template"`
}
