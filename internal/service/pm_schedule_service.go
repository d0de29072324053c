package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ait-ops/cmms-api/internal/models"
	appErrors "github.com/ait-ops/cmms-api/pkg/errors"
)

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type scheduleStore interface {
	InsertBatch(ctx context.Context, exec sqlx.ExtContext, rows []models.ScheduleEntry) error
	ListWeek(ctx context.Context, weekStart time.Time) ([]models.ScheduleEntry, error)
	FindByID(ctx context.Context, id string) (*models.ScheduleEntry, error)
	MarkCompleted(ctx context.Context, exec sqlx.ExtContext, id string, completedAt time.Time) error
	ClearStale(ctx context.Context, id string) error
	InsertCompletion(ctx context.Context, exec sqlx.ExtContext, record models.CompletionRecord) error
}

type lastPMDateWriter interface {
	UpdateLastPMDate(ctx context.Context, exec sqlx.ExtContext, bfmNo string, pmType models.PMType, completed time.Time) error
}

// PMScheduleService persists generated schedules and records completions.
type PMScheduleService struct {
	schedules   scheduleStore
	equipment   lastPMDateWriter
	tx          txProvider
	technicians []string
	logger      *zap.Logger
	now         func() time.Time
}

// NewPMScheduleService wires schedule persistence. technicians is the crew
// roster used for round-robin assignment when a run is persisted.
func NewPMScheduleService(
	schedules scheduleStore,
	equipment lastPMDateWriter,
	tx txProvider,
	technicians []string,
	logger *zap.Logger,
) *PMScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PMScheduleService{
		schedules:   schedules,
		equipment:   equipment,
		tx:          tx,
		technicians: technicians,
		logger:      logger,
		now:         time.Now,
	}
}

// PersistWeek writes a generated assignment list as the schedule for one
// week, spreading assignments across the crew in ranked order so the most
// urgent work is distributed evenly. Existing rows for the week are left in
// place; callers resolve conflicts before regenerating.
func (s *PMScheduleService) PersistWeek(ctx context.Context, weekStart time.Time, assignments []models.PMAssignment) ([]models.ScheduleEntry, error) {
	if len(assignments) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no assignments to persist")
	}
	if s.tx == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	week := weekStart.Format("2006-01-02")
	rows := make([]models.ScheduleEntry, 0, len(assignments))
	for i, assignment := range assignments {
		technician := ""
		if len(s.technicians) > 0 {
			technician = s.technicians[i%len(s.technicians)]
		}
		rows = append(rows, models.ScheduleEntry{
			BFMNo:      assignment.BFMNo,
			PMType:     string(assignment.PMType),
			WeekStart:  week,
			Technician: technician,
			Status:     models.ScheduledPMStatusScheduled,
			Reason:     assignment.Reason,
		})
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.schedules.InsertBatch(ctx, tx, rows); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist weekly schedule")
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit weekly schedule")
		return nil, err
	}

	s.logger.Info("weekly schedule persisted",
		zap.String("week_start", week),
		zap.Int("rows", len(rows)),
		zap.Int("technicians", len(s.technicians)),
	)
	return rows, nil
}

// ListWeek returns the persisted schedule for a week.
func (s *PMScheduleService) ListWeek(ctx context.Context, weekStart time.Time) ([]models.ScheduleEntry, error) {
	rows, err := s.schedules.ListWeek(ctx, weekStart)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list weekly schedule")
	}
	return rows, nil
}

// Complete marks one scheduled PM done. In a single transaction it flips
// the schedule row, appends the immutable completion record, and stamps the
// equipment table's last-PM column so the next generation run sees the work.
func (s *PMScheduleService) Complete(ctx context.Context, scheduleID, technician string, completedAt time.Time) (*models.ScheduleEntry, error) {
	if s.tx == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}
	if completedAt.IsZero() {
		completedAt = s.now()
	}

	entry, err := s.schedules.FindByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule entry not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule entry")
	}
	if entry.Status != models.ScheduledPMStatusScheduled {
		return nil, appErrors.Clone(appErrors.ErrConflict, "schedule entry is already resolved")
	}
	pmType, err := models.ParsePMType(entry.PMType)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "schedule entry carries unknown pm type")
	}
	if technician == "" {
		technician = entry.Technician
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.schedules.MarkCompleted(ctx, tx, scheduleID, completedAt); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "failed to mark schedule completed")
		return nil, err
	}
	record := models.CompletionRecord{
		BFMNo:          entry.BFMNo,
		PMType:         pmType,
		CompletionDate: completedAt,
		Technician:     technician,
	}
	if err = s.schedules.InsertCompletion(ctx, tx, record); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record pm completion")
		return nil, err
	}
	if err = s.equipment.UpdateLastPMDate(ctx, tx, entry.BFMNo, pmType, completedAt); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update equipment last pm date")
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit pm completion")
		return nil, err
	}

	entry.Status = models.ScheduledPMStatusCompleted
	entry.CompletedAt = &completedAt
	entry.Technician = technician

	s.logger.Info("pm completed",
		zap.String("schedule_id", scheduleID),
		zap.String("bfm_no", entry.BFMNo),
		zap.String("pm_type", entry.PMType),
		zap.String("technician", technician),
	)
	return entry, nil
}

// ClearStale removes one uncompleted prior-week row after a planner has
// resolved the conflict it raised.
func (s *PMScheduleService) ClearStale(ctx context.Context, scheduleID string) error {
	if err := s.schedules.ClearStale(ctx, scheduleID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "failed to clear stale schedule")
	}
	return nil
}
