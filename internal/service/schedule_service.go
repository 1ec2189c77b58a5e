package service

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/teachflow/teachflow-api/internal/dto"
	"github.com/teachflow/teachflow-api/internal/models"
	"github.com/teachflow/teachflow-api/internal/timetable"
	"github.com/teachflow/teachflow-api/pkg/config"
	appErrors "github.com/teachflow/teachflow-api/pkg/errors"
)

type scheduleRepository interface {
	Get(ctx context.Context, classID string) (*models.ClassSchedule, error)
	Upsert(ctx context.Context, classID string, grid types.JSONText) error
	Delete(ctx context.Context, classID string) (int64, error)
	ListOthers(ctx context.Context, classID string) ([]models.ClassSchedule, error)
}

type teacherRoster interface {
	ListActive(ctx context.Context) ([]models.Teacher, error)
}

// ScheduleService owns the stored-timetable lifecycle: load, wholesale save,
// explicit clear. Every grid leaving this service has passed Normalize, so
// handlers and clients always see five days of exactly seven cells.
type ScheduleService struct {
	repo      scheduleRepository
	classRepo classRepository
	roster    teacherRoster
	occupancy *timetable.Occupancy
	cfg       config.TimetableConfig
	logger    *zap.Logger
}

// NewScheduleService constructs ScheduleService.
func NewScheduleService(repo scheduleRepository, classRepo classRepository, roster teacherRoster, occupancy *timetable.Occupancy, cfg config.TimetableConfig, logger *zap.Logger) *ScheduleService {
	if occupancy == nil {
		occupancy = timetable.NewOccupancy()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{repo: repo, classRepo: classRepo, roster: roster, occupancy: occupancy, cfg: cfg, logger: logger}
}

// Occupancy exposes the shared reservation table for the auto-builder.
func (s *ScheduleService) Occupancy() *timetable.Occupancy {
	return s.occupancy
}

// Load returns the stored timetable for a class, or an empty grid when none
// was ever saved. The period headers are derived from the class name so the
// client can render the day's clock without recomputing it.
func (s *ScheduleService) Load(ctx context.Context, classID string) (*dto.ScheduleResponse, error) {
	class, err := s.classRepo.FindByID(ctx, classID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}

	grid := timetable.NewGrid()
	stored, err := s.repo.Get(ctx, classID)
	switch {
	case err == sql.ErrNoRows:
		// Never saved: the empty grid stands in.
	case err != nil:
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	default:
		var raw timetable.Grid
		if err := json.Unmarshal(stored.Grid, &raw); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "stored schedule is unreadable")
		}
		grid = timetable.Normalize(raw)
	}

	return s.buildResponse(classID, class.Name, grid), nil
}

// Save replaces a class's stored timetable wholesale. The write is a single
// upsert so a failed save leaves the previous document untouched; concurrent
// saves resolve to last writer wins.
func (s *ScheduleService) Save(ctx context.Context, classID string, req dto.SaveScheduleRequest) (*dto.ScheduleResponse, error) {
	class, err := s.classRepo.FindByID(ctx, classID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	if req.Schedule == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "schedule payload is required")
	}

	grid := timetable.Normalize(req.Schedule)
	payload, err := json.Marshal(grid)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode schedule")
	}

	if err := s.repo.Upsert(ctx, classID, types.JSONText(payload)); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save schedule")
	}

	s.syncOccupancy(ctx, classID, grid)

	return s.buildResponse(classID, class.Name, grid), nil
}

// Clear removes a class's stored timetable. Reached only through the
// explicit DELETE verb; a class that never saved reads as not found.
func (s *ScheduleService) Clear(ctx context.Context, classID string) error {
	affected, err := s.repo.Delete(ctx, classID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear schedule")
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "no schedule stored for class")
	}
	s.occupancy.ReleaseClass(classID)
	return nil
}

// syncOccupancy rebuilds the class's reservations from the grid it just
// saved, so subsequent auto-builds of other classes see the new placements.
// Sessions name teachers by display name; unresolvable names simply hold no
// reservation.
func (s *ScheduleService) syncOccupancy(ctx context.Context, classID string, grid timetable.Grid) {
	s.occupancy.ReleaseClass(classID)

	idByName, err := teacherIDsByName(ctx, s.roster)
	if err != nil {
		s.logger.Warn("occupancy sync skipped", zap.String("class_id", classID), zap.Error(err))
		return
	}

	grid.Sessions(func(day string, period int, session *timetable.Session) {
		if teacherID, ok := idByName[session.Teacher]; ok {
			s.occupancy.Reserve(teacherID, day, period, classID)
		}
	})
}

func (s *ScheduleService) buildResponse(classID, className string, grid timetable.Grid) *dto.ScheduleResponse {
	breakAfter := timetable.BreakAfterIndex(className)
	spans, _ := timetable.BuildPeriodSpans(s.cfg.DayStartHour, s.cfg.DayStartMinute, s.cfg.PeriodMinutes, breakAfter, s.cfg.BreakMinutes)

	headers := make([]dto.PeriodHeader, timetable.PeriodsPerDay)
	for i, span := range spans {
		headers[i] = dto.PeriodHeader{Index: i + 1, Start: span.Start, End: span.End}
	}

	return &dto.ScheduleResponse{
		ClassID:  classID,
		Schedule: grid,
		Periods:  headers,
		Break: dto.BreakPlacement{
			AfterPeriod: breakAfter,
			Start:       spans[breakAfter-1].End,
			Minutes:     s.cfg.BreakMinutes,
		},
	}
}

// teacherIDsByName indexes the active roster by display name.
func teacherIDsByName(ctx context.Context, roster teacherRoster) (map[string]string, error) {
	teachers, err := roster.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	index := make(map[string]string, len(teachers))
	for _, teacher := range teachers {
		index[teacher.FullName] = teacher.ID
	}
	return index, nil
}
