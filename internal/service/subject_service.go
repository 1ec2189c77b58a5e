package service

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/teachflow/teachflow-api/internal/dto"
	"github.com/teachflow/teachflow-api/internal/models"
	appErrors "github.com/teachflow/teachflow-api/pkg/errors"
)

type subjectRepository interface {
	ListByClass(ctx context.Context, classID string) ([]models.ClassSubjectDetail, error)
}

// SubjectService serves a class's subject plan.
type SubjectService struct {
	repo      subjectRepository
	classRepo classRepository
	cache     *CacheService
	logger    *zap.Logger
}

// NewSubjectService constructs SubjectService.
func NewSubjectService(repo subjectRepository, classRepo classRepository, cache *CacheService, logger *zap.Logger) *SubjectService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubjectService{repo: repo, classRepo: classRepo, cache: cache, logger: logger}
}

// ListByClass returns the subject plan for one class, after confirming the
// class exists so a bad id reads as 404 rather than an empty plan. Plans are
// TTL-cached; nothing in this API mutates them.
func (s *SubjectService) ListByClass(ctx context.Context, classID string) ([]dto.ClassSubjectItem, error) {
	if _, err := s.classRepo.FindByID(ctx, classID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}

	cacheKey := fmt.Sprintf("lookup:subjects:class:%s", classID)
	if s.cache.Enabled() {
		var hit []dto.ClassSubjectItem
		if ok, _ := s.cache.Get(ctx, cacheKey, &hit); ok {
			return hit, nil
		}
	}

	subjects, err := s.repo.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class subjects")
	}

	items := make([]dto.ClassSubjectItem, 0, len(subjects))
	for _, subject := range subjects {
		items = append(items, dto.ClassSubjectItem{
			ID:                  subject.ID,
			Name:                subject.Name,
			WeeklyHours:         subject.WeeklyHours,
			TeacherID:           subject.TeacherID,
			TeacherName:         subject.TeacherName,
			QualifiedTeacherIDs: subject.QualifiedTeacherIDs,
		})
	}

	if s.cache.Enabled() {
		_ = s.cache.Set(ctx, cacheKey, items, 0)
	}
	return items, nil
}
