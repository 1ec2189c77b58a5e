package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Teacher represents an instructor record. Availability holds the weekly
// map keyed Mon|Tue|Wed|Thu|Sat; NULL means no record was ever captured.
type Teacher struct {
	ID           string         `db:"id" json:"id"`
	FullName     string         `db:"full_name" json:"full_name"`
	Email        string         `db:"email" json:"email"`
	Active       bool           `db:"active" json:"active"`
	Availability types.JSONText `db:"availability" json:"availability,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// TeacherFilter captures filtering options for listing teachers.
type TeacherFilter struct {
	Search    string
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
