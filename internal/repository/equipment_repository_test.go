package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ait-ops/cmms-api/internal/models"
)

func newEquipmentRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestEquipmentRepositoryListSchedulable(t *testing.T) {
	db, mock, cleanup := newEquipmentRepoMock(t)
	defer cleanup()
	repo := NewEquipmentRepository(db)

	lastWeekly := "2026-02-23"
	rows := sqlmock.NewRows([]string{
		"bfm_equipment_no", "description", "weekly_pm", "monthly_pm", "six_month_pm", "annual_pm",
		"last_weekly_pm", "last_monthly_pm", "last_six_month_pm", "last_annual_pm", "status",
	}).
		AddRow("10250", "Air compressor", true, true, false, false, lastWeekly, nil, nil, nil, "Active").
		AddRow("10311", "Hydraulic press", false, nil, true, true, nil, nil, nil, nil, nil)
	mock.ExpectQuery("SELECT bfm_equipment_no, description, weekly_pm").WillReturnRows(rows)

	list, err := repo.ListSchedulable(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "10250", list[0].BFMNo)
	assert.True(t, list[0].HasWeekly)
	assert.True(t, list[0].HasMonthly)
	require.NotNil(t, list[0].LastWeeklyDate)
	assert.Equal(t, "2026-02-23", *list[0].LastWeeklyDate)

	// NULL cadence flags normalise to false. NULL status stays empty so
	// the generator's Active-only gate skips the asset.
	assert.False(t, list[1].HasMonthly)
	assert.True(t, list[1].HasSixMonth)
	assert.Empty(t, list[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEquipmentRepositoryListWithFilter(t *testing.T) {
	db, mock, cleanup := newEquipmentRepoMock(t)
	defer cleanup()
	repo := NewEquipmentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"bfm_equipment_no", "description", "weekly_pm", "monthly_pm", "six_month_pm", "annual_pm",
		"last_weekly_pm", "last_monthly_pm", "last_six_month_pm", "last_annual_pm", "status",
		"location", "created_at", "updated_at",
	}).AddRow("10250", "Air compressor", true, false, false, false, nil, nil, nil, nil, "Active", nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM equipment WHERE 1=1 AND status = $1 AND (bfm_equipment_no ILIKE $2 OR description ILIKE $2) ORDER BY bfm_equipment_no LIMIT 20 OFFSET 0")).
		WithArgs("Active", "%compressor%").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM equipment WHERE 1=1 AND status = $1")).
		WithArgs("Active", "%compressor%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.EquipmentFilter{Status: "Active", Search: "compressor"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEquipmentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newEquipmentRepoMock(t)
	defer cleanup()
	repo := NewEquipmentRepository(db)

	mock.ExpectExec("INSERT INTO equipment").
		WithArgs("10250", "Air compressor", true, false, false, false, "Active", nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	record := &models.EquipmentRecord{Equipment: models.Equipment{
		BFMNo:       "10250",
		Description: "Air compressor",
		HasWeekly:   true,
	}}
	require.NoError(t, repo.Create(context.Background(), record))
	assert.Equal(t, models.EquipmentStatusActive, record.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEquipmentRepositoryUpdateStatusNoRows(t *testing.T) {
	db, mock, cleanup := newEquipmentRepoMock(t)
	defer cleanup()
	repo := NewEquipmentRepository(db)

	mock.ExpectExec("UPDATE equipment SET status").
		WithArgs("10999", "Deactivated", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "10999", "Deactivated")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEquipmentRepositoryUpdateLastPMDate(t *testing.T) {
	db, mock, cleanup := newEquipmentRepoMock(t)
	defer cleanup()
	repo := NewEquipmentRepository(db)

	completed := time.Date(2026, 3, 4, 15, 30, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE equipment SET last_six_month_pm = $2")).
		WithArgs("10250", "2026-03-04", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.UpdateLastPMDate(context.Background(), db, "10250", models.PMTypeSixMonth, completed))

	err := repo.UpdateLastPMDate(context.Background(), db, "10250", models.PMType("Quarterly"), completed)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
