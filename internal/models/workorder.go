package models

import "time"

// WorkOrderStatus tracks the corrective-maintenance lifecycle.
type WorkOrderStatus string

const (
	WorkOrderStatusOpen       WorkOrderStatus = "Open"
	WorkOrderStatusInProgress WorkOrderStatus = "In Progress"
	WorkOrderStatusClosed     WorkOrderStatus = "Closed"
)

// WorkOrder is an unscheduled repair triggered by a failure report, as
// opposed to the recurring PM work the scheduler plans.
type WorkOrder struct {
	ID           string          `db:"id" json:"id"`
	BFMNo        string          `db:"bfm_equipment_no" json:"bfm_no"`
	Description  string          `db:"description" json:"description"`
	Status       WorkOrderStatus `db:"status" json:"status"`
	Technician   *string         `db:"assigned_technician" json:"technician,omitempty"`
	RootCause    *string         `db:"root_cause" json:"root_cause,omitempty"`
	ReportedAt   time.Time       `db:"reported_at" json:"reported_at"`
	ClosedAt     *time.Time      `db:"closed_at" json:"closed_at,omitempty"`
	DowntimeHrs  *float64        `db:"downtime_hours" json:"downtime_hours,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// WorkOrderFilter captures list query options.
type WorkOrderFilter struct {
	BFMNo    string
	Status   string
	Page     int
	PageSize int
}
