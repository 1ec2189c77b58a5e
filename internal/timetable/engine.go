package timetable

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
)

// ErrInvalidInput marks build inputs rejected before any placement attempt.
var ErrInvalidInput = errors.New("invalid build input")

// SubjectDemand is one subject's weekly requirement for a class.
type SubjectDemand struct {
	Name        string
	WeeklyHours int
}

// BuildInput carries everything one auto-build needs. Seed controls the
// placement order so repeated builds over identical inputs can differ while
// each stays reproducible under a fixed seed.
type BuildInput struct {
	ClassID               string
	ClassName             string
	Room                  string
	Subjects              []SubjectDemand
	PoolBySubject         map[string][]string
	AvailabilityByTeacher map[string]Week
	Seed                  int64
}

// BuildResult is the outcome of one auto-build. Unassigned counts the
// subject-hour units that no cell/teacher combination could host; it is a
// normal, reportable outcome rather than an error.
type BuildResult struct {
	Grid            Grid
	Unassigned      int
	PlacedBySubject map[string]int
}

// EngineConfig fixes the period layout the engine schedules against.
type EngineConfig struct {
	DayStartHour   int
	DayStartMinute int
	PeriodMinutes  int
	BreakMinutes   int
}

// Engine fills a class's empty timetable cells with subject-hour units while
// honouring teacher availability and the shared cross-class occupancy table.
type Engine struct {
	occupancy *Occupancy
	policy    Policy
	cfg       EngineConfig
}

// NewEngine wires the engine against a shared occupancy table.
func NewEngine(occupancy *Occupancy, policy Policy, cfg EngineConfig) *Engine {
	if occupancy == nil {
		occupancy = NewOccupancy()
	}
	if cfg.PeriodMinutes <= 0 {
		cfg.PeriodMinutes = 50
	}
	if cfg.BreakMinutes <= 0 {
		cfg.BreakMinutes = 25
	}
	if cfg.DayStartHour == 0 && cfg.DayStartMinute == 0 {
		cfg.DayStartHour = 8
	}
	return &Engine{occupancy: occupancy, policy: policy, cfg: cfg}
}

// Occupancy exposes the shared reservation table.
func (e *Engine) Occupancy() *Occupancy {
	return e.occupancy
}

type placementUnit struct {
	Subject string
}

type gridCell struct {
	Day    string
	Period int
}

// Build places every subject-hour unit it can and counts the rest. The only
// error condition is malformed input; infeasibility mid-run is counted, not
// thrown. A context deadline turns all not-yet-placed units into unassigned
// ones so pathological inputs cannot wedge a request.
func (e *Engine) Build(ctx context.Context, in BuildInput) (*BuildResult, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	spans, _ := BuildPeriodSpans(
		e.cfg.DayStartHour,
		e.cfg.DayStartMinute,
		e.cfg.PeriodMinutes,
		BreakAfterIndex(in.ClassName),
		e.cfg.BreakMinutes,
	)

	rng := rand.New(rand.NewSource(in.Seed))

	units := expandUnits(in.Subjects)
	rng.Shuffle(len(units), func(i, j int) {
		units[i], units[j] = units[j], units[i]
	})

	cells := candidateCells()
	rng.Shuffle(len(cells), func(i, j int) {
		cells[i], cells[j] = cells[j], cells[i]
	})

	result := &BuildResult{
		Grid:            NewGrid(),
		PlacedBySubject: make(map[string]int, len(in.Subjects)),
	}
	for _, subject := range in.Subjects {
		result.PlacedBySubject[subject.Name] = 0
	}

	// Placements already made for a subject, per teacher, so the pick below
	// can prefer whoever carries the least of that subject so far.
	placedByTeacher := make(map[string]map[string]int, len(in.Subjects))

	for idx, unit := range units {
		if ctx.Err() != nil {
			result.Unassigned += len(units) - idx
			break
		}

		placed := false
		for _, cell := range cells {
			if result.Grid.Cell(cell.Day, cell.Period) != nil {
				continue
			}
			span := spans[cell.Period]
			teacherID := e.pickTeacher(in, unit.Subject, cell, span, placedByTeacher[unit.Subject], rng)
			if teacherID == "" {
				continue
			}

			result.Grid.SetCell(cell.Day, cell.Period, &Session{
				Subject: unit.Subject,
				Teacher: teacherID,
				Room:    in.Room,
			})
			e.occupancy.Reserve(teacherID, cell.Day, cell.Period, in.ClassID)
			if placedByTeacher[unit.Subject] == nil {
				placedByTeacher[unit.Subject] = make(map[string]int)
			}
			placedByTeacher[unit.Subject][teacherID]++
			result.PlacedBySubject[unit.Subject]++
			placed = true
			break
		}

		if !placed {
			result.Unassigned++
		}
	}

	return result, nil
}

// pickTeacher returns the qualified teacher best suited for the cell, or ""
// when nobody fits. Candidates are tried in seeded-random order; among those
// who fit, the one with the fewest placements of this subject so far wins.
func (e *Engine) pickTeacher(in BuildInput, subject string, cell gridCell, span Span, placed map[string]int, rng *rand.Rand) string {
	pool := in.PoolBySubject[subject]
	order := make([]string, len(pool))
	copy(order, pool)
	rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	best := ""
	bestLoad := -1
	for _, teacherID := range order {
		if e.occupancy.Busy(teacherID, cell.Day, cell.Period, in.ClassID) {
			continue
		}
		week := in.AvailabilityByTeacher[teacherID]
		if !week.Allows(ShortDay(cell.Day), span.Start, span.End, e.policy) {
			continue
		}
		load := placed[teacherID]
		if best == "" || load < bestLoad {
			best = teacherID
			bestLoad = load
		}
	}
	return best
}

func validateInput(in BuildInput) error {
	if in.ClassID == "" {
		return fmt.Errorf("%w: class id is required", ErrInvalidInput)
	}
	for _, subject := range in.Subjects {
		if subject.Name == "" {
			return fmt.Errorf("%w: subject name is required", ErrInvalidInput)
		}
		if subject.WeeklyHours < 1 {
			return fmt.Errorf("%w: subject %s weekly hours must be at least 1", ErrInvalidInput, subject.Name)
		}
		if len(in.PoolBySubject[subject.Name]) == 0 {
			return fmt.Errorf("%w: subject %s has no qualified teachers", ErrInvalidInput, subject.Name)
		}
	}
	return nil
}

// expandUnits turns each subject into weeklyHours discrete one-period units.
func expandUnits(subjects []SubjectDemand) []placementUnit {
	var units []placementUnit
	for _, subject := range subjects {
		for i := 0; i < subject.WeeklyHours; i++ {
			units = append(units, placementUnit{Subject: subject.Name})
		}
	}
	return units
}

func candidateCells() []gridCell {
	cells := make([]gridCell, 0, len(Days)*PeriodsPerDay)
	for _, day := range Days {
		for period := 0; period < PeriodsPerDay; period++ {
			cells = append(cells, gridCell{Day: day, Period: period})
		}
	}
	return cells
}
