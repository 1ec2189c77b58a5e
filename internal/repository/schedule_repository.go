package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/teachflow/teachflow-api/internal/models"
)

// ScheduleRepository persists one weekly timetable grid per class.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository constructs a ScheduleRepository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// Get fetches the stored timetable for a class. Callers treat sql.ErrNoRows
// as "never saved", not as a failure.
func (r *ScheduleRepository) Get(ctx context.Context, classID string) (*models.ClassSchedule, error) {
	const query = `SELECT class_id, grid, updated_at FROM class_schedules WHERE class_id = $1`
	var schedule models.ClassSchedule
	if err := r.db.GetContext(ctx, &schedule, query, classID); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// Upsert stores the timetable for a class, replacing any previous document
// wholesale.
func (r *ScheduleRepository) Upsert(ctx context.Context, classID string, grid types.JSONText) error {
	const query = `INSERT INTO class_schedules (class_id, grid, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (class_id) DO UPDATE SET grid = EXCLUDED.grid, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, classID, grid, time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert class schedule: %w", err)
	}
	return nil
}

// Delete removes a class's stored timetable. It reports the number of rows
// removed so callers can surface "nothing to clear".
func (r *ScheduleRepository) Delete(ctx context.Context, classID string) (int64, error) {
	const query = `DELETE FROM class_schedules WHERE class_id = $1`
	result, err := r.db.ExecContext(ctx, query, classID)
	if err != nil {
		return 0, fmt.Errorf("delete class schedule: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete class schedule rows: %w", err)
	}
	return affected, nil
}

// ListOthers fetches every stored timetable except classID's. The
// auto-builder seeds its occupancy table from these before placing anything.
func (r *ScheduleRepository) ListOthers(ctx context.Context, classID string) ([]models.ClassSchedule, error) {
	const query = `SELECT class_id, grid, updated_at FROM class_schedules WHERE class_id <> $1`
	var schedules []models.ClassSchedule
	if err := r.db.SelectContext(ctx, &schedules, query, classID); err != nil {
		return nil, fmt.Errorf("list other class schedules: %w", err)
	}
	return schedules, nil
}
