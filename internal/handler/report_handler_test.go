package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ait-ops/cmms-api/internal/dto"
	"github.com/ait-ops/cmms-api/internal/middleware"
	"github.com/ait-ops/cmms-api/internal/models"
	appErrors "github.com/ait-ops/cmms-api/pkg/errors"
)

type fakeReportSrv struct {
	created   *dto.ReportJobResponse
	createErr error
	status    *dto.ReportStatusResponse
	statusErr error
	relPath   string
	job       *models.ReportJob
	gotUser   string
	gotRole   models.UserRole
}

func (f *fakeReportSrv) CreateJob(_ context.Context, userID string, _ dto.ReportRequest) (*dto.ReportJobResponse, error) {
	f.gotUser = userID
	return f.created, f.createErr
}

func (f *fakeReportSrv) GetStatus(_ context.Context, _, userID string, role models.UserRole) (*dto.ReportStatusResponse, error) {
	f.gotUser = userID
	f.gotRole = role
	return f.status, f.statusErr
}

func (f *fakeReportSrv) ResolveDownload(context.Context, string) (string, *models.ReportJob, error) {
	if f.relPath == "" {
		return "", nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	return f.relPath, f.job, nil
}

type fakeExportOpener struct {
	path string
}

func (f *fakeExportOpener) Open(string) (*os.File, error) {
	return os.Open(f.path)
}

func TestReportHandlerCreateRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewReportHandler(&fakeReportSrv{}, &fakeExportOpener{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/reports", bytes.NewBufferString(`{}`))

	handler.Create(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestReportHandlerCreateAccepted(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := &fakeReportSrv{created: &dto.ReportJobResponse{ID: "job-1", Status: models.ReportStatusQueued}}
	handler := NewReportHandler(service, &fakeExportOpener{})

	body, _ := json.Marshal(dto.ReportRequest{
		Type:      models.ReportTypeWeeklySchedule,
		Format:    models.ReportFormatCSV,
		WeekStart: "2026-03-02",
	})
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/reports", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-7", Role: models.RolePlanner})

	handler.Create(c)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "user-7", service.gotUser)
}

func TestReportHandlerStatusPassesRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := &fakeReportSrv{status: &dto.ReportStatusResponse{ID: "job-1", Status: models.ReportStatusProcessing}}
	handler := NewReportHandler(service, &fakeExportOpener{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/reports/job-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "job-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-9", Role: models.RoleTechnician})

	handler.Status(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.RoleTechnician, service.gotRole)
}

func TestReportHandlerDownloadStreamsFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	path := dir + "/weekly_schedule.csv"
	require.NoError(t, os.WriteFile(path, []byte("BFM No,PM Type\n10250,Weekly\n"), 0o644))

	service := &fakeReportSrv{
		relPath: "weekly_schedule.csv",
		job: &models.ReportJob{
			ID:     "job-1",
			Params: models.ReportJobParams{Format: models.ReportFormatCSV},
		},
	}
	handler := NewReportHandler(service, &fakeExportOpener{path: path})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/export/token-1", nil)
	c.Params = gin.Params{{Key: "token", Value: "token-1"}}

	handler.Download(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "weekly_schedule.csv")
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "10250,Weekly")
}

func TestReportHandlerDownloadInvalidToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewReportHandler(&fakeReportSrv{}, &fakeExportOpener{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/export/bad-token", nil)
	c.Params = gin.Params{{Key: "token", Value: "bad-token"}}

	handler.Download(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
