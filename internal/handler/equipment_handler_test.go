package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/ait-ops/cmms-api/internal/dto"
	"github.com/ait-ops/cmms-api/internal/models"
	appErrors "github.com/ait-ops/cmms-api/pkg/errors"
)

type fakeEquipmentSrv struct {
	records   []models.EquipmentRecord
	record    *models.EquipmentRecord
	createErr error
	gotFilter models.EquipmentFilter
	gotStatus string
}

func (f *fakeEquipmentSrv) List(_ context.Context, filter models.EquipmentFilter) ([]models.EquipmentRecord, *models.Pagination, error) {
	f.gotFilter = filter
	return f.records, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: len(f.records)}, nil
}

func (f *fakeEquipmentSrv) Get(context.Context, string) (*models.EquipmentRecord, error) {
	if f.record == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "equipment not found")
	}
	return f.record, nil
}

func (f *fakeEquipmentSrv) Create(_ context.Context, req dto.CreateEquipmentRequest) (*models.EquipmentRecord, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &models.EquipmentRecord{Equipment: models.Equipment{BFMNo: req.BFMNo, Description: req.Description}}, nil
}

func (f *fakeEquipmentSrv) Update(_ context.Context, bfmNo string, _ dto.UpdateEquipmentRequest) (*models.EquipmentRecord, error) {
	return &models.EquipmentRecord{Equipment: models.Equipment{BFMNo: bfmNo}}, nil
}

func (f *fakeEquipmentSrv) UpdateStatus(_ context.Context, _ string, req dto.UpdateEquipmentStatusRequest) error {
	f.gotStatus = req.Status
	return nil
}

func TestEquipmentHandlerListParsesQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := &fakeEquipmentSrv{records: []models.EquipmentRecord{
		{Equipment: models.Equipment{BFMNo: "10250", Status: models.EquipmentStatusActive}},
	}}
	handler := NewEquipmentHandler(service)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/equipment?search=compressor&status=Active&page=2&pageSize=50", nil)

	handler.List(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "compressor", service.gotFilter.Search)
	assert.Equal(t, "Active", service.gotFilter.Status)
	assert.Equal(t, 2, service.gotFilter.Page)
	assert.Equal(t, 50, service.gotFilter.PageSize)
}

func TestEquipmentHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewEquipmentHandler(&fakeEquipmentSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/equipment/10999", nil)
	c.Params = gin.Params{{Key: "bfmNo", Value: "10999"}}

	handler.Get(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEquipmentHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewEquipmentHandler(&fakeEquipmentSrv{})

	body, _ := json.Marshal(dto.CreateEquipmentRequest{
		BFMNo:       "10250",
		Description: "Air compressor",
		HasWeekly:   true,
	})
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/equipment", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Create(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestEquipmentHandlerCreateConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewEquipmentHandler(&fakeEquipmentSrv{
		createErr: appErrors.Clone(appErrors.ErrConflict, "equipment number already registered"),
	})

	body, _ := json.Marshal(dto.CreateEquipmentRequest{BFMNo: "10250", Description: "Air compressor"})
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/equipment", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Create(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestEquipmentHandlerUpdateStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := &fakeEquipmentSrv{}
	handler := NewEquipmentHandler(service)

	body, _ := json.Marshal(dto.UpdateEquipmentStatusRequest{Status: models.EquipmentStatusDeactivated})
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPatch, "/equipment/10250/status", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "bfmNo", Value: "10250"}}

	handler.UpdateStatus(c)
	// The handler only sets the status; flush it so the recorder sees it.
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, models.EquipmentStatusDeactivated, service.gotStatus)
}
