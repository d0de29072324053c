package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ait-ops/cmms-api/internal/models"
)

type kpiReaderStub struct {
	scheduled int
	completed int
	stale     int
	countsErr error
}

func (s *kpiReaderStub) WeeklyCounts(_ context.Context, _ time.Time) (int, int, error) {
	if s.countsErr != nil {
		return 0, 0, s.countsErr
	}
	return s.scheduled, s.completed, nil
}

func (s *kpiReaderStub) StaleScheduleCount(_ context.Context, _ time.Time) (int, error) {
	return s.stale, nil
}

type workOrderCounterStub struct {
	open int
	err  error
}

func (s *workOrderCounterStub) CountOpen(_ context.Context) (int, error) {
	return s.open, s.err
}

type lowStockListerStub struct {
	total int
	err   error
}

func (s *lowStockListerStub) List(_ context.Context, _ models.PartFilter) ([]models.Part, int, error) {
	if s.err != nil {
		return nil, 0, s.err
	}
	return nil, s.total, nil
}

func TestWeeklyKPIComposesCounts(t *testing.T) {
	svc := NewDashboardService(
		&kpiReaderStub{scheduled: 120, completed: 90, stale: 4},
		&workOrderCounterStub{open: 7},
		&lowStockListerStub{total: 3},
		nil, zap.NewNop(), DashboardServiceConfig{},
	)

	kpi, fromCache, err := svc.WeeklyKPI(context.Background(), time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.False(t, fromCache)
	assert.Equal(t, 120, kpi.ScheduledCount)
	assert.Equal(t, 90, kpi.CompletedCount)
	assert.Equal(t, 4, kpi.OverdueUncompleted)
	assert.Equal(t, 7, kpi.OpenWorkOrders)
	assert.Equal(t, 3, kpi.LowStockParts)
	assert.InDelta(t, 75.0, kpi.CompletionRate, 0.001)
}

func TestWeeklyKPIZeroScheduledAvoidsDivideByZero(t *testing.T) {
	svc := NewDashboardService(&kpiReaderStub{}, nil, nil, nil, zap.NewNop(), DashboardServiceConfig{})

	kpi, _, err := svc.WeeklyKPI(context.Background(), time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Zero(t, kpi.CompletionRate)
}

func TestWeeklyKPICountsFailureIsFatal(t *testing.T) {
	svc := NewDashboardService(
		&kpiReaderStub{countsErr: fmt.Errorf("connection refused")},
		nil, nil, nil, zap.NewNop(), DashboardServiceConfig{},
	)

	_, _, err := svc.WeeklyKPI(context.Background(), time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)
}

func TestWeeklyKPISecondaryFailuresDegradeGracefully(t *testing.T) {
	svc := NewDashboardService(
		&kpiReaderStub{scheduled: 10, completed: 5},
		&workOrderCounterStub{err: fmt.Errorf("table locked")},
		&lowStockListerStub{err: fmt.Errorf("table locked")},
		nil, zap.NewNop(), DashboardServiceConfig{},
	)

	kpi, _, err := svc.WeeklyKPI(context.Background(), time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Zero(t, kpi.OpenWorkOrders)
	assert.Zero(t, kpi.LowStockParts)
	assert.Equal(t, 10, kpi.ScheduledCount)
}
