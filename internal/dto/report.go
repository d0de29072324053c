package dto

import "github.com/ait-ops/cmms-api/internal/models"

// ReportRequest queues an export job.
type ReportRequest struct {
	Type      models.ReportType   `json:"type" validate:"required"`
	Format    models.ReportFormat `json:"format" validate:"required,oneof=csv pdf"`
	WeekStart string              `json:"weekStart" validate:"omitempty,datetime=2006-01-02"`
	Status    *string             `json:"status" validate:"omitempty,max=32"`
}

// ReportJobResponse acknowledges a queued job.
type ReportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ReportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ReportStatusResponse exposes job progress and the download URL once the
// export has finished.
type ReportStatusResponse struct {
	ID        string              `json:"id"`
	Status    models.ReportStatus `json:"status"`
	Progress  int                 `json:"progress"`
	ResultURL *string             `json:"resultUrl,omitempty"`
	Error     *string             `json:"error,omitempty"`
}
