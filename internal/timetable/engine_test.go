package timetable

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullWeek() Week {
	week := Week{}
	for _, key := range AvailabilityDayKeys {
		week[key] = DayAvailability{
			Enabled: true,
			Slots:   []Window{{Start: "08:00", End: "15:00"}},
		}
	}
	return week
}

func buildInput(classID string, seed int64) BuildInput {
	return BuildInput{
		ClassID:   classID,
		ClassName: "Grade 9A",
		Room:      "9A",
		Subjects: []SubjectDemand{
			{Name: "Math", WeeklyHours: 5},
			{Name: "English", WeeklyHours: 4},
			{Name: "Science", WeeklyHours: 3},
		},
		PoolBySubject: map[string][]string{
			"Math":    {"t1", "t2"},
			"English": {"t2", "t3"},
			"Science": {"t1", "t3"},
		},
		AvailabilityByTeacher: map[string]Week{
			"t1": fullWeek(),
			"t2": fullWeek(),
			"t3": fullWeek(),
		},
		Seed: seed,
	}
}

func TestBuildValidatesInput(t *testing.T) {
	engine := NewEngine(NewOccupancy(), PolicyPermissive, EngineConfig{})

	cases := []struct {
		name   string
		mutate func(*BuildInput)
	}{
		{"missing class id", func(in *BuildInput) { in.ClassID = "" }},
		{"blank subject name", func(in *BuildInput) { in.Subjects[0].Name = "" }},
		{"zero weekly hours", func(in *BuildInput) { in.Subjects[1].WeeklyHours = 0 }},
		{"empty teacher pool", func(in *BuildInput) { delete(in.PoolBySubject, "Science") }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := buildInput("class-1", 1)
			tc.mutate(&in)

			result, err := engine.Build(context.Background(), in)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Nil(t, result)
		})
	}
}

func TestBuildConservation(t *testing.T) {
	engine := NewEngine(NewOccupancy(), PolicyPermissive, EngineConfig{})
	in := buildInput("class-1", 42)

	result, err := engine.Build(context.Background(), in)
	require.NoError(t, err)

	totalPlaced := 0
	for _, subject := range in.Subjects {
		totalPlaced += result.PlacedBySubject[subject.Name]
	}
	totalDemand := 0
	for _, subject := range in.Subjects {
		totalDemand += subject.WeeklyHours
	}
	assert.Equal(t, totalDemand, totalPlaced+result.Unassigned)
	assert.Equal(t, totalPlaced, result.Grid.CountSessions())

	// 12 units against 35 cells with three always-free teachers fit in full.
	assert.Zero(t, result.Unassigned)
	for _, subject := range in.Subjects {
		assert.Equal(t, subject.WeeklyHours, result.PlacedBySubject[subject.Name], subject.Name)
	}
}

func TestBuildSeedDeterminism(t *testing.T) {
	first, err := NewEngine(NewOccupancy(), PolicyPermissive, EngineConfig{}).
		Build(context.Background(), buildInput("class-1", 99))
	require.NoError(t, err)

	second, err := NewEngine(NewOccupancy(), PolicyPermissive, EngineConfig{}).
		Build(context.Background(), buildInput("class-1", 99))
	require.NoError(t, err)

	assert.Equal(t, first.Grid, second.Grid)
	assert.Equal(t, first.PlacedBySubject, second.PlacedBySubject)

	other, err := NewEngine(NewOccupancy(), PolicyPermissive, EngineConfig{}).
		Build(context.Background(), buildInput("class-1", 100))
	require.NoError(t, err)
	assert.NotEqual(t, first.Grid, other.Grid, "a different seed should change the layout")
}

func TestBuildNoDoubleBookingAcrossClasses(t *testing.T) {
	occ := NewOccupancy()
	engine := NewEngine(occ, PolicyPermissive, EngineConfig{})

	// Two classes drawing from the same single teacher per subject.
	shared := buildInput("class-a", 7)
	shared.PoolBySubject = map[string][]string{
		"Math":    {"t1"},
		"English": {"t1"},
		"Science": {"t1"},
	}
	shared.AvailabilityByTeacher = map[string]Week{"t1": fullWeek()}

	resultA, err := engine.Build(context.Background(), shared)
	require.NoError(t, err)

	sharedB := shared
	sharedB.ClassID = "class-b"
	sharedB.Seed = 8
	resultB, err := engine.Build(context.Background(), sharedB)
	require.NoError(t, err)

	for _, day := range Days {
		for period := 0; period < PeriodsPerDay; period++ {
			a, b := resultA.Grid.Cell(day, period), resultB.Grid.Cell(day, period)
			if a != nil && b != nil {
				assert.NotEqual(t, a.Teacher, b.Teacher,
					"teacher double-booked on %s period %d", day, period+1)
			}
		}
	}

	// 12 + 12 units for one teacher cannot exceed the 35 weekly slots.
	placed := resultA.Grid.CountSessions() + resultB.Grid.CountSessions()
	assert.LessOrEqual(t, placed, len(Days)*PeriodsPerDay)
	assert.Equal(t, placed, occ.Len())
}

func TestBuildRespectsAvailability(t *testing.T) {
	engine := NewEngine(NewOccupancy(), PolicyStrict, EngineConfig{})

	// Only Monday mornings: the first three periods (08:00 through 10:30).
	narrow := Week{
		"Mon": DayAvailability{Enabled: true, Slots: []Window{{Start: "08:00", End: "10:30"}}},
	}
	in := BuildInput{
		ClassID:   "class-1",
		ClassName: "Grade 9A",
		Room:      "9A",
		Subjects:  []SubjectDemand{{Name: "Math", WeeklyHours: 5}},
		PoolBySubject: map[string][]string{
			"Math": {"t1"},
		},
		AvailabilityByTeacher: map[string]Week{"t1": narrow},
		Seed:                  3,
	}

	result, err := engine.Build(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Grid.CountSessions())
	assert.Equal(t, 2, result.Unassigned)
	for _, day := range Days {
		for period := 0; period < PeriodsPerDay; period++ {
			if result.Grid.Cell(day, period) != nil {
				assert.Equal(t, "Monday", day)
				assert.Less(t, period, 3)
			}
		}
	}
}

func TestBuildInfeasibleDemandIsCountedNotFailed(t *testing.T) {
	engine := NewEngine(NewOccupancy(), PolicyStrict, EngineConfig{})

	// Five hours demanded, the lone teacher reachable for just two periods.
	in := BuildInput{
		ClassID:   "class-1",
		ClassName: "Grade 9A",
		Room:      "9A",
		Subjects:  []SubjectDemand{{Name: "Math", WeeklyHours: 5}},
		PoolBySubject: map[string][]string{
			"Math": {"t1"},
		},
		AvailabilityByTeacher: map[string]Week{
			"t1": {"Tue": DayAvailability{
				Enabled: true,
				Slots:   []Window{{Start: "08:00", End: "09:40"}},
			}},
		},
		Seed: 11,
	}

	result, err := engine.Build(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Grid.CountSessions())
	assert.GreaterOrEqual(t, result.Unassigned, 3)
}

func TestBuildEarlyGradeBreakShiftsAfternoon(t *testing.T) {
	engine := NewEngine(NewOccupancy(), PolicyStrict, EngineConfig{})

	// Under the early-grade layout the break lands after period 3, pushing
	// period 5 to 11:45-12:35 and period 6 to 12:35-13:25. This window
	// admits exactly those two.
	in := BuildInput{
		ClassID:   "class-kg",
		ClassName: "KG2",
		Room:      "KG2",
		Subjects:  []SubjectDemand{{Name: "Arts", WeeklyHours: 2}},
		PoolBySubject: map[string][]string{
			"Arts": {"t1"},
		},
		AvailabilityByTeacher: map[string]Week{
			"t1": {"Wed": DayAvailability{
				Enabled: true,
				Slots:   []Window{{Start: "11:30", End: "13:30"}},
			}},
		},
		Seed: 5,
	}

	result, err := engine.Build(context.Background(), in)
	require.NoError(t, err)

	require.Equal(t, 2, result.Grid.CountSessions())
	for period := 0; period < PeriodsPerDay; period++ {
		if result.Grid.Cell("Wednesday", period) != nil {
			assert.Contains(t, []int{4, 5}, period)
		}
	}
}

func TestBuildDeadlineCountsRemainderUnassigned(t *testing.T) {
	engine := NewEngine(NewOccupancy(), PolicyPermissive, EngineConfig{})
	in := buildInput("class-1", 17)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	result, err := engine.Build(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, 12, result.Unassigned)
	assert.Zero(t, result.Grid.CountSessions())
}

func TestBuildRebuildAfterReleaseReclaimsSlots(t *testing.T) {
	occ := NewOccupancy()
	engine := NewEngine(occ, PolicyPermissive, EngineConfig{})

	in := buildInput("class-1", 21)
	first, err := engine.Build(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, first.Grid.CountSessions(), occ.Len())

	// A rebuild of the same class starts from a clean slate for that class.
	occ.ReleaseClass("class-1")
	in.Seed = 22
	second, err := engine.Build(context.Background(), in)
	require.NoError(t, err)
	assert.Zero(t, second.Unassigned)
	assert.Equal(t, second.Grid.CountSessions(), occ.Len())
}
