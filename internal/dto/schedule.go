package dto

import "github.com/teachflow/teachflow-api/internal/timetable"

// ScheduleQuery selects the class whose timetable is being read or written.
type ScheduleQuery struct {
	ClassID string `form:"classId" json:"classId"`
}

// SaveScheduleRequest replaces a class's stored timetable wholesale.
type SaveScheduleRequest struct {
	Schedule timetable.Grid `json:"schedule" validate:"required"`
}

// AutoBuildQuery carries the auto-build knobs. A zero Seed means the server
// picks one, and the chosen value is echoed back in the response meta.
type AutoBuildQuery struct {
	ClassID string `form:"classId" json:"classId"`
	Seed    int64  `form:"seed" json:"seed"`
}

// AutoBuildMeta summarises one auto-build run.
type AutoBuildMeta struct {
	BuildID            string         `json:"buildId"`
	Seed               int64          `json:"seed"`
	LeftoverUnassigned int            `json:"leftover_unassigned"`
	PlacedBySubject    map[string]int `json:"placedBySubject"`
	ElapsedMS          int64          `json:"elapsedMs"`
}

// AutoBuildResponse returns the freshly built timetable plus its run stats.
type AutoBuildResponse struct {
	Schedule timetable.Grid `json:"schedule"`
	Meta     AutoBuildMeta  `json:"meta"`
}

// ScheduleResponse wraps a stored timetable with its period layout so a
// client can render headers without recomputing the day's clock.
type ScheduleResponse struct {
	ClassID  string         `json:"classId"`
	Schedule timetable.Grid `json:"schedule"`
	Periods  []PeriodHeader `json:"periods"`
	Break    BreakPlacement `json:"break"`
}

// PeriodHeader is one column header of the rendered grid.
type PeriodHeader struct {
	Index int    `json:"index"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// BreakPlacement locates the mid-day break within the period sequence.
type BreakPlacement struct {
	AfterPeriod int    `json:"afterPeriod"`
	Start       string `json:"start"`
	Minutes     int    `json:"minutes"`
}
