package models

import "time"

// ReportType enumerates the exportable datasets.
type ReportType string

const (
	ReportTypeWeeklySchedule ReportType = "WEEKLY_SCHEDULE"
	ReportTypeEquipment      ReportType = "EQUIPMENT"
	ReportTypeWorkOrders     ReportType = "WORK_ORDERS"
	ReportTypeLowStock       ReportType = "LOW_STOCK"
)

// ReportFormat enumerates supported output encodings.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// ReportStatus tracks the async export lifecycle.
type ReportStatus string

const (
	ReportStatusQueued     ReportStatus = "QUEUED"
	ReportStatusProcessing ReportStatus = "PROCESSING"
	ReportStatusFinished   ReportStatus = "FINISHED"
	ReportStatusFailed     ReportStatus = "FAILED"
)

// ReportJobParams selects what a report covers. WeekStart applies to the
// weekly schedule report; Status filters the work order report.
type ReportJobParams struct {
	WeekStart string       `json:"week_start,omitempty"`
	Status    *string      `json:"status,omitempty"`
	Format    ReportFormat `json:"format"`
}

// ReportJob is one queued export request.
type ReportJob struct {
	ID           string          `db:"id" json:"id"`
	Type         ReportType      `db:"type" json:"type"`
	Params       ReportJobParams `db:"-" json:"params"`
	Status       ReportStatus    `db:"status" json:"status"`
	Progress     int             `db:"progress" json:"progress"`
	ResultURL    *string         `db:"result_url" json:"result_url,omitempty"`
	ErrorMessage *string         `db:"error_message" json:"error,omitempty"`
	CreatedBy    string          `db:"created_by" json:"created_by"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	FinishedAt   *time.Time      `db:"finished_at" json:"finished_at,omitempty"`
}
