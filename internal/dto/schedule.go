package dto

import "github.com/ait-ops/cmms-api/internal/models"

// GenerateScheduleRequest asks for a preview of the weekly PM assignment
// list without persisting anything.
type GenerateScheduleRequest struct {
	WeekStart string `json:"weekStart" validate:"required,datetime=2006-01-02"`
	MaxPMs    int    `json:"maxPms" validate:"omitempty,min=1,max=500"`
}

// GenerateScheduleResponse returns the ranked assignment list.
type GenerateScheduleResponse struct {
	WeekStart   string                `json:"weekStart"`
	Count       int                   `json:"count"`
	Assignments []models.PMAssignment `json:"assignments"`
}

// PersistScheduleRequest commits a generated run as the week's schedule.
type PersistScheduleRequest struct {
	WeekStart string `json:"weekStart" validate:"required,datetime=2006-01-02"`
	MaxPMs    int    `json:"maxPms" validate:"omitempty,min=1,max=500"`
}

// PersistScheduleResponse reports what was written.
type PersistScheduleResponse struct {
	WeekStart string                 `json:"weekStart"`
	Count     int                    `json:"count"`
	Entries   []models.ScheduleEntry `json:"entries"`
}

// CompleteScheduleRequest records one PM execution.
type CompleteScheduleRequest struct {
	Technician  string `json:"technician" validate:"omitempty,max=100"`
	CompletedAt string `json:"completedAt" validate:"omitempty,datetime=2006-01-02"`
}
