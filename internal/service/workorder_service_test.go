package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ait-ops/cmms-api/internal/dto"
	"github.com/ait-ops/cmms-api/internal/models"
	appErrors "github.com/ait-ops/cmms-api/pkg/errors"
)

type workOrderRepoStub struct {
	orders    map[string]*models.WorkOrder
	gotStatus models.WorkOrderStatus
	gotClose  struct {
		rootCause string
		closedAt  time.Time
	}
}

func newWorkOrderRepoStub(orders ...*models.WorkOrder) *workOrderRepoStub {
	stub := &workOrderRepoStub{orders: make(map[string]*models.WorkOrder)}
	for _, order := range orders {
		stub.orders[order.ID] = order
	}
	return stub
}

func (s *workOrderRepoStub) List(_ context.Context, _ models.WorkOrderFilter) ([]models.WorkOrder, int, error) {
	var out []models.WorkOrder
	for _, order := range s.orders {
		out = append(out, *order)
	}
	return out, len(out), nil
}

func (s *workOrderRepoStub) FindByID(_ context.Context, id string) (*models.WorkOrder, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *order
	return &copied, nil
}

func (s *workOrderRepoStub) Create(_ context.Context, order *models.WorkOrder) error {
	if order.ID == "" {
		order.ID = "wo-1"
	}
	s.orders[order.ID] = order
	return nil
}

func (s *workOrderRepoStub) UpdateStatus(_ context.Context, id string, status models.WorkOrderStatus, technician *string) error {
	s.gotStatus = status
	s.orders[id].Status = status
	s.orders[id].Technician = technician
	return nil
}

func (s *workOrderRepoStub) Close(_ context.Context, id, rootCause string, _ *float64, closedAt time.Time) error {
	order, ok := s.orders[id]
	if !ok || order.Status == models.WorkOrderStatusClosed {
		return sql.ErrNoRows
	}
	s.gotClose.rootCause = rootCause
	s.gotClose.closedAt = closedAt
	order.Status = models.WorkOrderStatusClosed
	return nil
}

type equipmentReaderStub struct {
	known map[string]bool
}

func (s *equipmentReaderStub) FindByBFM(_ context.Context, bfmNo string) (*models.EquipmentRecord, error) {
	if !s.known[bfmNo] {
		return nil, sql.ErrNoRows
	}
	return &models.EquipmentRecord{Equipment: models.Equipment{BFMNo: bfmNo}}, nil
}

func TestWorkOrderServiceCreate(t *testing.T) {
	repo := newWorkOrderRepoStub()
	service := NewWorkOrderService(repo, &equipmentReaderStub{known: map[string]bool{"10250": true}}, nil, nil)

	order, err := service.Create(context.Background(), dto.CreateWorkOrderRequest{
		BFMNo:       "10250",
		Description: "Hydraulic leak at main ram",
	})
	require.NoError(t, err)
	assert.Equal(t, models.WorkOrderStatusOpen, order.Status)
	assert.False(t, order.ReportedAt.IsZero())
}

func TestWorkOrderServiceCreateRejectsUnknownAsset(t *testing.T) {
	service := NewWorkOrderService(newWorkOrderRepoStub(), &equipmentReaderStub{}, nil, nil)

	_, err := service.Create(context.Background(), dto.CreateWorkOrderRequest{
		BFMNo:       "99999",
		Description: "Phantom asset",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, "unknown equipment number", appErr.Message)
}

func TestWorkOrderServiceUpdateStatusRefusesClosedOrder(t *testing.T) {
	repo := newWorkOrderRepoStub(&models.WorkOrder{ID: "wo-1", Status: models.WorkOrderStatusClosed})
	service := NewWorkOrderService(repo, &equipmentReaderStub{}, nil, nil)

	err := service.UpdateStatus(context.Background(), "wo-1", dto.UpdateWorkOrderStatusRequest{Status: "In Progress"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestWorkOrderServiceUpdateStatus(t *testing.T) {
	repo := newWorkOrderRepoStub(&models.WorkOrder{ID: "wo-1", Status: models.WorkOrderStatusOpen})
	service := NewWorkOrderService(repo, &equipmentReaderStub{}, nil, nil)

	tech := "J. Park"
	err := service.UpdateStatus(context.Background(), "wo-1", dto.UpdateWorkOrderStatusRequest{
		Status:     "In Progress",
		Technician: &tech,
	})
	require.NoError(t, err)
	assert.Equal(t, models.WorkOrderStatus("In Progress"), repo.gotStatus)
}

func TestWorkOrderServiceClose(t *testing.T) {
	repo := newWorkOrderRepoStub(&models.WorkOrder{ID: "wo-1", Status: models.WorkOrderStatusOpen})
	service := NewWorkOrderService(repo, &equipmentReaderStub{}, nil, nil)
	service.now = func() time.Time { return time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC) }

	hours := 4.5
	err := service.Close(context.Background(), "wo-1", dto.CloseWorkOrderRequest{
		RootCause:     "Worn seal",
		DowntimeHours: &hours,
	})
	require.NoError(t, err)
	assert.Equal(t, "Worn seal", repo.gotClose.rootCause)
	assert.Equal(t, time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC), repo.gotClose.closedAt)

	// A second close hits the already-closed row and conflicts.
	err = service.Close(context.Background(), "wo-1", dto.CloseWorkOrderRequest{RootCause: "again"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}
