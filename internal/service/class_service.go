package service

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/teachflow/teachflow-api/internal/models"
	appErrors "github.com/teachflow/teachflow-api/pkg/errors"
)

type classRepository interface {
	List(ctx context.Context, filter models.ClassFilter) ([]models.Class, int, error)
	FindByID(ctx context.Context, id string) (*models.Class, error)
}

// ClassService serves the class lookup surface.
type ClassService struct {
	repo   classRepository
	cache  *CacheService
	logger *zap.Logger
}

// NewClassService constructs ClassService.
func NewClassService(repo classRepository, cache *CacheService, logger *zap.Logger) *ClassService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{repo: repo, cache: cache, logger: logger}
}

// List returns classes with pagination metadata. Unfiltered first pages are
// served from cache when available.
func (s *ClassService) List(ctx context.Context, filter models.ClassFilter) ([]models.Class, *models.Pagination, error) {
	type cached struct {
		Classes    []models.Class     `json:"classes"`
		Pagination *models.Pagination `json:"pagination"`
	}

	cacheable := filter.Search == "" && filter.Grade == "" && filter.Page <= 1
	cacheKey := fmt.Sprintf("lookup:classes:size:%d", filter.PageSize)
	if cacheable && s.cache.Enabled() {
		var hit cached
		if ok, _ := s.cache.Get(ctx, cacheKey, &hit); ok {
			return hit.Classes, hit.Pagination, nil
		}
	}

	classes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
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
		_ = s.cache.Set(ctx, cacheKey, cached{Classes: classes, Pagination: pagination}, 0)
	}
	return classes, pagination, nil
}

// Get returns one class by id.
func (s *ClassService) Get(ctx context.Context, id string) (*models.Class, error) {
	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	return class, nil
}
