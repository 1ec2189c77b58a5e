package timetable

import (
	"encoding/json"
	"fmt"
)

// Days are the five teaching days, in display order. Saturday replaces
// Friday in the school week this system serves.
var Days = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Saturday"}

var shortDayKeys = map[string]string{
	"Monday":    "Mon",
	"Tuesday":   "Tue",
	"Wednesday": "Wed",
	"Thursday":  "Thu",
	"Saturday":  "Sat",
}

// ShortDay maps a full day name to the availability map's short key.
func ShortDay(day string) string {
	return shortDayKeys[day]
}

// Session is one filled grid cell.
type Session struct {
	Subject string `json:"subject"`
	Teacher string `json:"teacher"`
	Room    string `json:"room"`
}

// Grid is one class's weekly timetable: each teaching day maps to exactly
// PeriodsPerDay cells, each a session or nil.
type Grid map[string][]*Session

// NewGrid returns an empty grid with every cell nil.
func NewGrid() Grid {
	g := make(Grid, len(Days))
	for _, day := range Days {
		g[day] = make([]*Session, PeriodsPerDay)
	}
	return g
}

// Normalize converts an externally sourced, possibly partial or malformed
// grid into a well-formed one: exactly the five teaching days, exactly
// PeriodsPerDay entries each, surplus entries truncated, gaps filled with
// nil. Normalize is idempotent and never aliases the input's slices.
func Normalize(raw Grid) Grid {
	out := NewGrid()
	if raw == nil {
		return out
	}
	for _, day := range Days {
		src := raw[day]
		for i := 0; i < len(src) && i < PeriodsPerDay; i++ {
			if src[i] == nil {
				continue
			}
			copied := *src[i]
			out[day][i] = &copied
		}
	}
	return out
}

// SetCell replaces one cell, leaving every other cell untouched. An unknown
// day or out-of-range period is a programmer error, not a recoverable
// condition.
func (g Grid) SetCell(day string, period int, s *Session) {
	row, ok := g[day]
	if !ok {
		panic(fmt.Sprintf("timetable: unknown day %q", day))
	}
	if period < 0 || period >= PeriodsPerDay {
		panic(fmt.Sprintf("timetable: period index %d out of range", period))
	}
	row[period] = s
}

// Cell returns the session at (day, period), nil when empty.
func (g Grid) Cell(day string, period int) *Session {
	row, ok := g[day]
	if !ok || period < 0 || period >= PeriodsPerDay {
		return nil
	}
	return row[period]
}

// Clone returns a deep copy of the grid.
func (g Grid) Clone() Grid {
	out := NewGrid()
	for _, day := range Days {
		for i, s := range g[day] {
			if s == nil {
				continue
			}
			copied := *s
			out[day][i] = &copied
		}
	}
	return out
}

// Filter returns a copy where sessions not matching the teacher and subject
// selections are blanked out. Empty selections match everything; this mirrors
// the client's dropdown filters.
func (g Grid) Filter(teacher, subject string) Grid {
	out := NewGrid()
	for _, day := range Days {
		for i, s := range g[day] {
			if s == nil {
				continue
			}
			if teacher != "" && s.Teacher != teacher {
				continue
			}
			if subject != "" && s.Subject != subject {
				continue
			}
			copied := *s
			out[day][i] = &copied
		}
	}
	return out
}

// UnmarshalJSON decodes a grid tolerantly: a day mapped to anything but an
// array reads as an empty day, and a cell that is not a session object reads
// as an empty cell. Storage payloads of any vintage therefore decode without
// error; only a document that is not a JSON object at all is rejected.
func (g *Grid) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Grid, len(raw))
	for day, rawRow := range raw {
		var cells []json.RawMessage
		if err := json.Unmarshal(rawRow, &cells); err != nil {
			out[day] = nil
			continue
		}
		row := make([]*Session, len(cells))
		for i, rawCell := range cells {
			var s Session
			if err := json.Unmarshal(rawCell, &s); err != nil || s == (Session{}) {
				continue
			}
			row[i] = &s
		}
		out[day] = row
	}
	*g = out
	return nil
}

// Sessions calls fn for every filled cell, day-major in display order.
func (g Grid) Sessions(fn func(day string, period int, s *Session)) {
	for _, day := range Days {
		for i, s := range g[day] {
			if s != nil {
				fn(day, i, s)
			}
		}
	}
}

// CountSessions returns the number of filled cells.
func (g Grid) CountSessions() int {
	total := 0
	g.Sessions(func(string, int, *Session) { total++ })
	return total
}
