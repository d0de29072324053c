package models

import "time"

// EquipmentStatus values stored on the equipment table.
const (
	EquipmentStatusActive       = "Active"
	EquipmentStatusRunToFailure = "Run to Failure"
	EquipmentStatusMissing      = "Missing"
	EquipmentStatusDeactivated  = "Deactivated"
)

// DefaultPriority is assigned to assets absent from every priority list.
const DefaultPriority = 99

// Equipment is one physical asset. The four Has* flags say which PM
// cadences apply; the Last* columns are free-text legacy dates that must go
// through flexdate before any day math.
type Equipment struct {
	BFMNo            string  `db:"bfm_equipment_no" json:"bfm_no"`
	Description      string  `db:"description" json:"description"`
	HasWeekly        bool    `db:"weekly_pm" json:"has_weekly"`
	HasMonthly       bool    `db:"monthly_pm" json:"has_monthly"`
	HasSixMonth      bool    `db:"six_month_pm" json:"has_six_month"`
	HasAnnual        bool    `db:"annual_pm" json:"has_annual"`
	LastWeeklyDate   *string `db:"last_weekly_pm" json:"last_weekly_date,omitempty"`
	LastMonthlyDate  *string `db:"last_monthly_pm" json:"last_monthly_date,omitempty"`
	LastSixMonthDate *string `db:"last_six_month_pm" json:"last_six_month_date,omitempty"`
	LastAnnualDate   *string `db:"last_annual_pm" json:"last_annual_date,omitempty"`
	Status           string  `db:"status" json:"status"`
	Priority         int     `db:"-" json:"priority"`
}

// RequiresPM reports whether the cadence flag for the given type is set.
func (e Equipment) RequiresPM(pmType PMType) bool {
	switch pmType {
	case PMTypeWeekly:
		return e.HasWeekly
	case PMTypeMonthly:
		return e.HasMonthly
	case PMTypeSixMonth:
		return e.HasSixMonth
	case PMTypeAnnual:
		return e.HasAnnual
	}
	return false
}

// LastDate returns the equipment-table fallback date string for a cadence.
// It is only consulted when no completion record exists.
func (e Equipment) LastDate(pmType PMType) string {
	var v *string
	switch pmType {
	case PMTypeWeekly:
		v = e.LastWeeklyDate
	case PMTypeMonthly:
		v = e.LastMonthlyDate
	case PMTypeSixMonth:
		v = e.LastSixMonthDate
	case PMTypeAnnual:
		v = e.LastAnnualDate
	}
	if v == nil {
		return ""
	}
	return *v
}

// EquipmentRecord is the full row shape used by the CRUD surface.
type EquipmentRecord struct {
	Equipment
	Location  *string   `db:"location" json:"location,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// EquipmentFilter captures list query options.
type EquipmentFilter struct {
	Search   string
	Status   string
	Page     int
	PageSize int
}
