package handler

import (
	"context"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/ait-ops/cmms-api/internal/dto"
	"github.com/ait-ops/cmms-api/internal/models"
	appErrors "github.com/ait-ops/cmms-api/pkg/errors"
	"github.com/ait-ops/cmms-api/pkg/response"
)

type reportService interface {
	CreateJob(ctx context.Context, userID string, req dto.ReportRequest) (*dto.ReportJobResponse, error)
	GetStatus(ctx context.Context, jobID, userID string, role models.UserRole) (*dto.ReportStatusResponse, error)
	ResolveDownload(ctx context.Context, token string) (string, *models.ReportJob, error)
}

type exportFileOpener interface {
	Open(relPath string) (*os.File, error)
}

// ReportHandler exposes async export endpoints.
type ReportHandler struct {
	service reportService
	exports exportFileOpener
}

// NewReportHandler constructs the handler.
func NewReportHandler(service reportService, exports exportFileOpener) *ReportHandler {
	return &ReportHandler{service: service, exports: exports}
}

// Create godoc
// @Summary Queue a report export
// @Tags Reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.ReportRequest true "Report request"
// @Success 202 {object} response.Envelope
// @Router /reports [post]
func (h *ReportHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid report request"))
		return
	}
	job, err := h.service.CreateJob(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// Status godoc
// @Summary Report job status
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /reports/{id} [get]
func (h *ReportHandler) Status(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	status, err := h.service.GetStatus(c.Request.Context(), c.Param("id"), claims.UserID, claims.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// Download godoc
// @Summary Download a finished export
// @Tags Reports
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} binary
// @Router /export/{token} [get]
func (h *ReportHandler) Download(c *gin.Context) {
	relPath, job, err := h.service.ResolveDownload(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exports.Open(relPath)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "export file no longer available"))
		return
	}
	defer file.Close() //nolint:errcheck

	stat, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "failed to stat export file"))
		return
	}
	filename := filepath.Base(relPath)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	if job.Params.Format == models.ReportFormatPDF {
		c.Header("Content-Type", "application/pdf")
	} else {
		c.Header("Content-Type", "text/csv")
	}
	http.ServeContent(c.Writer, c.Request, filename, stat.ModTime(), file)
}
