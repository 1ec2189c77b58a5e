package service

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teachflow/teachflow-api/internal/models"
	"github.com/teachflow/teachflow-api/internal/timetable"
	"github.com/teachflow/teachflow-api/pkg/config"
	appErrors "github.com/teachflow/teachflow-api/pkg/errors"
)

type mockSubjectRepo struct {
	byClass map[string][]models.ClassSubjectDetail
	calls   int
}

func (m *mockSubjectRepo) ListByClass(ctx context.Context, classID string) ([]models.ClassSubjectDetail, error) {
	m.calls++
	return m.byClass[classID], nil
}

func subjectDetail(id, name string, hours int, pool ...string) models.ClassSubjectDetail {
	return models.ClassSubjectDetail{
		ClassSubject:        models.ClassSubject{ID: id, Name: name, WeeklyHours: hours},
		QualifiedTeacherIDs: pool,
	}
}

func autoBuildFixture() (*AutoBuildService, *mockScheduleRepo) {
	classes := &mockClassRepo{items: map[string]*models.Class{
		"class-1": {ID: "class-1", Name: "Grade 9A", Room: "9A"},
		"class-2": {ID: "class-2", Name: "Grade 9B", Room: "9B"},
	}}
	subjects := &mockSubjectRepo{byClass: map[string][]models.ClassSubjectDetail{
		"class-1": {
			subjectDetail("s1", "Math", 4, "t1"),
			subjectDetail("s2", "English", 3, "t2"),
		},
		"class-2": {
			subjectDetail("s3", "Math", 4, "t1"),
		},
	}}
	roster := &mockRoster{teachers: []models.Teacher{
		{ID: "t1", FullName: "Alice"},
		{ID: "t2", FullName: "Bob"},
	}}
	schedules := &mockScheduleRepo{}

	cfg := config.TimetableConfig{
		DayStartHour:  8,
		PeriodMinutes: 50,
		BreakMinutes:  25,
		BuildTimeout:  5 * time.Second,
	}
	svc := NewAutoBuildService(classes, subjects, roster, schedules, timetable.NewOccupancy(), nil, cfg, nil)
	return svc, schedules
}

func TestAutoBuildProducesNamedSessions(t *testing.T) {
	svc, _ := autoBuildFixture()

	resp, err := svc.Build(context.Background(), "class-1", 42)
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Meta.BuildID)
	assert.Equal(t, int64(42), resp.Meta.Seed)
	assert.Zero(t, resp.Meta.LeftoverUnassigned)
	assert.Equal(t, 7, resp.Schedule.CountSessions())
	assert.Equal(t, 4, resp.Meta.PlacedBySubject["Math"])
	assert.Equal(t, 3, resp.Meta.PlacedBySubject["English"])

	// Sessions carry display names and the class room, not internal ids.
	for _, day := range timetable.Days {
		for period := 0; period < timetable.PeriodsPerDay; period++ {
			if session := resp.Schedule.Cell(day, period); session != nil {
				assert.Contains(t, []string{"Alice", "Bob"}, session.Teacher)
				assert.Equal(t, "9A", session.Room)
			}
		}
	}
}

func TestAutoBuildSeedReproducible(t *testing.T) {
	svc, _ := autoBuildFixture()

	first, err := svc.Build(context.Background(), "class-1", 7)
	require.NoError(t, err)
	second, err := svc.Build(context.Background(), "class-1", 7)
	require.NoError(t, err)

	assert.Equal(t, first.Schedule, second.Schedule)
}

func TestAutoBuildHonoursPeerSchedules(t *testing.T) {
	svc, schedules := autoBuildFixture()

	// Class 2 already holds Alice on Monday periods 1-4.
	schedules.stored = map[string]types.JSONText{
		"class-2": types.JSONText(`{"Monday":[
			{"subject":"Math","teacher":"Alice","room":"9B"},
			{"subject":"Math","teacher":"Alice","room":"9B"},
			{"subject":"Math","teacher":"Alice","room":"9B"},
			{"subject":"Math","teacher":"Alice","room":"9B"},
			null,null,null]}`),
	}

	resp, err := svc.Build(context.Background(), "class-1", 13)
	require.NoError(t, err)

	for period := 0; period < 4; period++ {
		if session := resp.Schedule.Cell("Monday", period); session != nil {
			assert.NotEqual(t, "Alice", session.Teacher,
				"Alice is already booked for class-2 on Monday period %d", period+1)
		}
	}
}

func TestAutoBuildAbandonedProposalFreesSlots(t *testing.T) {
	svc, _ := autoBuildFixture()

	// Class 2 wants Alice for every period of the week; any stale claim
	// left behind by an unsaved class-1 proposal would show up as leftovers.
	svc.subjectRepo.(*mockSubjectRepo).byClass["class-2"] = []models.ClassSubjectDetail{
		subjectDetail("s3", "Math", 35, "t1"),
	}

	_, err := svc.Build(context.Background(), "class-1", 42)
	require.NoError(t, err)
	assert.Zero(t, svc.occupancy.Len())

	resp, err := svc.Build(context.Background(), "class-2", 42)
	require.NoError(t, err)
	assert.Zero(t, resp.Meta.LeftoverUnassigned)
	assert.Equal(t, 35, resp.Schedule.CountSessions())
}

func TestAutoBuildMissingClass(t *testing.T) {
	svc, _ := autoBuildFixture()

	_, err := svc.Build(context.Background(), "missing", 1)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAutoBuildEmptySubjectPlan(t *testing.T) {
	svc, _ := autoBuildFixture()

	svc.subjectRepo.(*mockSubjectRepo).byClass["class-1"] = nil
	_, err := svc.Build(context.Background(), "class-1", 1)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestAutoBuildEmptyPoolIsPrecondition(t *testing.T) {
	svc, _ := autoBuildFixture()

	svc.subjectRepo.(*mockSubjectRepo).byClass["class-1"] = []models.ClassSubjectDetail{
		subjectDetail("s1", "Math", 4),
	}
	_, err := svc.Build(context.Background(), "class-1", 1)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestAutoBuildInfeasibleReturnsLeftover(t *testing.T) {
	svc, _ := autoBuildFixture()

	// 40 demanded hours cannot fit in 35 cells; the surplus is data.
	svc.subjectRepo.(*mockSubjectRepo).byClass["class-1"] = []models.ClassSubjectDetail{
		subjectDetail("s1", "Math", 40, "t1", "t2"),
	}

	resp, err := svc.Build(context.Background(), "class-1", 3)
	require.NoError(t, err)
	assert.Equal(t, 35, resp.Schedule.CountSessions())
	assert.Equal(t, 5, resp.Meta.LeftoverUnassigned)
}
