package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teachflow/teachflow-api/internal/dto"
	"github.com/teachflow/teachflow-api/internal/timetable"
	"github.com/teachflow/teachflow-api/pkg/config"
	appErrors "github.com/teachflow/teachflow-api/pkg/errors"
)

// AutoBuildService runs the seeded auto-assignment engine for one class at a
// time. It loads the class's subject plan, the qualification pools, every
// teacher's availability and every other class's saved grid, then hands the
// lot to the engine under the configured deadline. Unplaceable hours come
// back as data in the response meta, never as an error.
type AutoBuildService struct {
	classRepo    classRepository
	subjectRepo  subjectRepository
	teacherRepo  teacherRoster
	scheduleRepo scheduleRepository
	occupancy    *timetable.Occupancy
	metrics      *MetricsService
	cfg          config.TimetableConfig
	logger       *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewAutoBuildService constructs AutoBuildService sharing the schedule
// service's occupancy table.
func NewAutoBuildService(classRepo classRepository, subjectRepo subjectRepository, teacherRepo teacherRoster, scheduleRepo scheduleRepository, occupancy *timetable.Occupancy, metrics *MetricsService, cfg config.TimetableConfig, logger *zap.Logger) *AutoBuildService {
	if occupancy == nil {
		occupancy = timetable.NewOccupancy()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AutoBuildService{
		classRepo:    classRepo,
		subjectRepo:  subjectRepo,
		teacherRepo:  teacherRepo,
		scheduleRepo: scheduleRepo,
		occupancy:    occupancy,
		metrics:      metrics,
		cfg:          cfg,
		logger:       logger,
		locks:        make(map[string]*sync.Mutex),
	}
}

// classLock returns the mutex guarding builds for one class.
func (s *AutoBuildService) classLock(classID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[classID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[classID] = lock
	}
	return lock
}

// Build produces a fresh timetable proposal for the class. The result is
// returned, not persisted; the client reviews and saves it through the
// regular save endpoint.
func (s *AutoBuildService) Build(ctx context.Context, classID string, seed int64) (*dto.AutoBuildResponse, error) {
	lock := s.classLock(classID)
	lock.Lock()
	defer lock.Unlock()

	buildID := uuid.NewString()
	started := time.Now()

	class, err := s.classRepo.FindByID(ctx, classID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}

	subjects, err := s.subjectRepo.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class subjects")
	}
	if len(subjects) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "class has no subject plan to build from")
	}

	demands := make([]timetable.SubjectDemand, 0, len(subjects))
	pools := make(map[string][]string, len(subjects))
	for _, subject := range subjects {
		demands = append(demands, timetable.SubjectDemand{Name: subject.Name, WeeklyHours: subject.WeeklyHours})
		pools[subject.Name] = subject.QualifiedTeacherIDs
	}

	teachers, err := s.teacherRepo.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher roster")
	}
	availability := make(map[string]timetable.Week, len(teachers))
	nameByID := make(map[string]string, len(teachers))
	idByName := make(map[string]string, len(teachers))
	for _, teacher := range teachers {
		nameByID[teacher.ID] = teacher.FullName
		idByName[teacher.FullName] = teacher.ID
		if len(teacher.Availability) == 0 {
			continue
		}
		var week timetable.Week
		if err := json.Unmarshal(teacher.Availability, &week); err != nil {
			s.logger.Warn("unreadable availability ignored", zap.String("teacher_id", teacher.ID), zap.Error(err))
			continue
		}
		availability[teacher.ID] = week
	}

	if err := s.seedOccupancy(ctx, classID, idByName); err != nil {
		return nil, err
	}
	// The engine's claims for this class guard against concurrent builds of
	// other classes only while this one runs. The proposal is not persisted,
	// so an abandoned one must not keep blocking anybody; a save re-records
	// the slots from the stored grid.
	defer s.occupancy.ReleaseClass(classID)

	room := class.Room
	if room == "" {
		room = class.Name
	}

	policy := timetable.PolicyPermissive
	if s.cfg.StrictAvailability {
		policy = timetable.PolicyStrict
	}
	engine := timetable.NewEngine(s.occupancy, policy, timetable.EngineConfig{
		DayStartHour:   s.cfg.DayStartHour,
		DayStartMinute: s.cfg.DayStartMinute,
		PeriodMinutes:  s.cfg.PeriodMinutes,
		BreakMinutes:   s.cfg.BreakMinutes,
	})

	timeout := s.cfg.BuildTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	buildCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := engine.Build(buildCtx, timetable.BuildInput{
		ClassID:               classID,
		ClassName:             class.Name,
		Room:                  room,
		Subjects:              demands,
		PoolBySubject:         pools,
		AvailabilityByTeacher: availability,
		Seed:                  seed,
	})
	if err != nil {
		if errors.Is(err, timetable.ErrInvalidInput) {
			return nil, appErrors.Wrap(err, appErrors.ErrPreconditionFailed.Code, appErrors.ErrPreconditionFailed.Status, err.Error())
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "auto-build failed")
	}

	elapsed := time.Since(started)
	s.metrics.ObserveAutoBuild(elapsed, result.Unassigned)
	s.logger.Info("auto-build completed",
		zap.String("build_id", buildID),
		zap.String("class_id", classID),
		zap.Int64("seed", seed),
		zap.Int("placed", result.Grid.CountSessions()),
		zap.Int("leftover_unassigned", result.Unassigned),
		zap.Duration("elapsed", elapsed),
	)

	return &dto.AutoBuildResponse{
		Schedule: displayGrid(result.Grid, nameByID),
		Meta: dto.AutoBuildMeta{
			BuildID:            buildID,
			Seed:               seed,
			LeftoverUnassigned: result.Unassigned,
			PlacedBySubject:    result.PlacedBySubject,
			ElapsedMS:          elapsed.Milliseconds(),
		},
	}, nil
}

// seedOccupancy resets this class's reservations and replays every other
// class's saved grid into the shared table, so the engine cannot hand a
// teacher to two classes at once.
func (s *AutoBuildService) seedOccupancy(ctx context.Context, classID string, idByName map[string]string) error {
	s.occupancy.ReleaseClass(classID)

	others, err := s.scheduleRepo.ListOthers(ctx, classID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load peer schedules")
	}

	for _, other := range others {
		var raw timetable.Grid
		if err := json.Unmarshal(other.Grid, &raw); err != nil {
			s.logger.Warn("unreadable peer schedule ignored", zap.String("class_id", other.ClassID), zap.Error(err))
			continue
		}
		otherID := other.ClassID
		timetable.Normalize(raw).Sessions(func(day string, period int, session *timetable.Session) {
			if teacherID, ok := idByName[session.Teacher]; ok {
				s.occupancy.Reserve(teacherID, day, period, otherID)
			}
		})
	}
	return nil
}

// displayGrid swaps engine-internal teacher ids for display names, matching
// the stored-session contract.
func displayGrid(grid timetable.Grid, nameByID map[string]string) timetable.Grid {
	out := grid.Clone()
	out.Sessions(func(_ string, _ int, session *timetable.Session) {
		if name, ok := nameByID[session.Teacher]; ok {
			session.Teacher = name
		}
	})
	return out
}
