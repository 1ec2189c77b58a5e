package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/teachflow/teachflow-api/internal/dto"
	"github.com/teachflow/teachflow-api/internal/models"
	"github.com/teachflow/teachflow-api/internal/timetable"
	appErrors "github.com/teachflow/teachflow-api/pkg/errors"
)

type teacherRepository interface {
	List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error)
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	UpdateAvailability(ctx context.Context, id string, availability types.JSONText) (int64, error)
}

// TeacherService serves the teacher roster and availability updates.
type TeacherService struct {
	repo      teacherRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherService constructs TeacherService.
func NewTeacherService(repo teacherRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns teachers with pagination metadata. Unfiltered first pages are
// served from cache when available; availability writes invalidate them.
func (s *TeacherService) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, *models.Pagination, error) {
	type cached struct {
		Teachers   []models.Teacher   `json:"teachers"`
		Pagination *models.Pagination `json:"pagination"`
	}

	cacheable := filter.Search == "" && filter.Active == nil && filter.Page <= 1
	cacheKey := fmt.Sprintf("lookup:teachers:size:%d", filter.PageSize)
	if cacheable && s.cache.Enabled() {
		var hit cached
		if ok, _ := s.cache.Get(ctx, cacheKey, &hit); ok {
			return hit.Teachers, hit.Pagination, nil
		}
	}

	teachers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 50
	}
	pagination := models.NewPagination(page, size, total)

	if cacheable && s.cache.Enabled() {
		_ = s.cache.Set(ctx, cacheKey, cached{Teachers: teachers, Pagination: pagination}, 0)
	}
	return teachers, pagination, nil
}

// Get returns one teacher by id.
func (s *TeacherService) Get(ctx context.Context, id string) (*models.Teacher, error) {
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	return teacher, nil
}

// UpdateAvailability validates and replaces a teacher's weekly availability.
// The stored document is the validated week verbatim; omitted days stay
// omitted so the configured default policy keeps deciding them.
func (s *TeacherService) UpdateAvailability(ctx context.Context, id string, req dto.UpdateAvailabilityRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability payload")
	}

	week := make(timetable.Week, len(req.Availability))
	for day, payload := range req.Availability {
		windows := make([]timetable.Window, 0, len(payload.Slots))
		for _, slot := range payload.Slots {
			windows = append(windows, timetable.Window{Start: slot.Start, End: slot.End})
		}
		week[day] = timetable.DayAvailability{Enabled: payload.Enabled, Slots: windows}
	}
	if err := week.Validate(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	payload, err := json.Marshal(week)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode availability")
	}

	affected, err := s.repo.UpdateAvailability(ctx, id, types.JSONText(payload))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update availability")
	}
	if affected == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
	}

	if s.cache.Enabled() {
		_ = s.cache.Invalidate(ctx, "lookup:teachers:*")
	}

	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload teacher")
	}
	return teacher, nil
}
