package models

import "time"

// Class represents a teaching group (e.g. "Grade 9A").
type Class struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Grade     string    `db:"grade" json:"grade"`
	Section   string    `db:"section" json:"section"`
	Room      string    `db:"room" json:"room"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ClassFilter defines filter criteria for listing classes.
type ClassFilter struct {
	Grade     string
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
