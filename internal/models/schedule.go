package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// ClassSchedule stores one weekly timetable grid per class. Grid holds the
// persisted JSON document keyed by day name, each day an array of exactly
// seven session cells or nulls.
type ClassSchedule struct {
	ClassID   string         `db:"class_id" json:"class_id"`
	Grid      types.JSONText `db:"grid" json:"grid"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}
