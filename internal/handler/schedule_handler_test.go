package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teachflow/teachflow-api/internal/models"
	"github.com/teachflow/teachflow-api/internal/service"
	"github.com/teachflow/teachflow-api/internal/timetable"
	"github.com/teachflow/teachflow-api/pkg/config"
	"github.com/teachflow/teachflow-api/pkg/response"
)

type classRepoStub struct {
	items map[string]*models.Class
}

func (s *classRepoStub) List(ctx context.Context, filter models.ClassFilter) ([]models.Class, int, error) {
	var out []models.Class
	for _, class := range s.items {
		out = append(out, *class)
	}
	return out, len(out), nil
}

func (s *classRepoStub) FindByID(ctx context.Context, id string) (*models.Class, error) {
	if class, ok := s.items[id]; ok {
		cp := *class
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

type scheduleRepoStub struct {
	stored map[string]types.JSONText
}

func (s *scheduleRepoStub) Get(ctx context.Context, classID string) (*models.ClassSchedule, error) {
	if grid, ok := s.stored[classID]; ok {
		return &models.ClassSchedule{ClassID: classID, Grid: grid}, nil
	}
	return nil, sql.ErrNoRows
}

func (s *scheduleRepoStub) Upsert(ctx context.Context, classID string, grid types.JSONText) error {
	if s.stored == nil {
		s.stored = make(map[string]types.JSONText)
	}
	s.stored[classID] = grid
	return nil
}

func (s *scheduleRepoStub) Delete(ctx context.Context, classID string) (int64, error) {
	if _, ok := s.stored[classID]; !ok {
		return 0, nil
	}
	delete(s.stored, classID)
	return 1, nil
}

func (s *scheduleRepoStub) ListOthers(ctx context.Context, classID string) ([]models.ClassSchedule, error) {
	var others []models.ClassSchedule
	for id, grid := range s.stored {
		if id != classID {
			others = append(others, models.ClassSchedule{ClassID: id, Grid: grid})
		}
	}
	return others, nil
}

type rosterStub struct {
	teachers []models.Teacher
}

func (s *rosterStub) ListActive(ctx context.Context) ([]models.Teacher, error) {
	return s.teachers, nil
}

type subjectRepoStub struct {
	byClass map[string][]models.ClassSubjectDetail
}

func (s *subjectRepoStub) ListByClass(ctx context.Context, classID string) ([]models.ClassSubjectDetail, error) {
	return s.byClass[classID], nil
}

func newScheduleHandlerFixture() (*ScheduleHandler, *scheduleRepoStub) {
	classes := &classRepoStub{items: map[string]*models.Class{
		"class-1": {ID: "class-1", Name: "Grade 9A", Room: "9A"},
	}}
	schedules := &scheduleRepoStub{}
	roster := &rosterStub{teachers: []models.Teacher{{ID: "t1", FullName: "Alice"}}}
	subjects := &subjectRepoStub{byClass: map[string][]models.ClassSubjectDetail{
		"class-1": {{
			ClassSubject:        models.ClassSubject{ID: "s1", Name: "Math", WeeklyHours: 3},
			QualifiedTeacherIDs: []string{"t1"},
		}},
	}}

	cfg := config.TimetableConfig{
		DayStartHour:  8,
		PeriodMinutes: 50,
		BreakMinutes:  25,
		BuildTimeout:  5 * time.Second,
	}
	occupancy := timetable.NewOccupancy()
	scheduleSvc := service.NewScheduleService(schedules, classes, roster, occupancy, cfg, nil)
	buildSvc := service.NewAutoBuildService(classes, subjects, roster, schedules, occupancy, nil, cfg, nil)
	return NewScheduleHandler(scheduleSvc, buildSvc), schedules
}

func bytesReader(body []byte) *bytes.Reader {
	return bytes.NewReader(body)
}

func doRequest(handler gin.HandlerFunc, method, target string, body []byte) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, target, bytesReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	handler(c)
	// Outside an engine nothing flushes a status-only response, so a bare
	// c.Status would leave the recorder at its default 200.
	c.Writer.WriteHeaderNow()
	return w
}

func TestScheduleHandlerGetRequiresClassID(t *testing.T) {
	handler, _ := newScheduleHandlerFixture()
	w := doRequest(handler.Get, http.MethodGet, "/schedule", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScheduleHandlerGetEmpty(t *testing.T) {
	handler, _ := newScheduleHandlerFixture()
	w := doRequest(handler.Get, http.MethodGet, "/schedule?classId=class-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	payload, err := json.Marshal(envelope.Data)
	require.NoError(t, err)

	var resp struct {
		Schedule timetable.Grid `json:"schedule"`
		Periods  []struct {
			Start string `json:"start"`
			End   string `json:"end"`
		} `json:"periods"`
	}
	require.NoError(t, json.Unmarshal(payload, &resp))
	assert.Len(t, resp.Periods, timetable.PeriodsPerDay)
	assert.Equal(t, "08:00", resp.Periods[0].Start)
	for _, day := range timetable.Days {
		assert.Len(t, resp.Schedule[day], timetable.PeriodsPerDay)
	}
}

func TestScheduleHandlerGetUnknownClass(t *testing.T) {
	handler, _ := newScheduleHandlerFixture()
	w := doRequest(handler.Get, http.MethodGet, "/schedule?classId=nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestScheduleHandlerGetFiltersSessions(t *testing.T) {
	handler, schedules := newScheduleHandlerFixture()

	grid := timetable.NewGrid()
	grid.SetCell("Monday", 0, &timetable.Session{Subject: "Math", Teacher: "Alice", Room: "9A"})
	grid.SetCell("Monday", 1, &timetable.Session{Subject: "English", Teacher: "Bob", Room: "9A"})
	raw, _ := json.Marshal(grid)
	schedules.stored = map[string]types.JSONText{"class-1": types.JSONText(raw)}

	w := doRequest(handler.Get, http.MethodGet, "/schedule?classId=class-1&teacher=Alice", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	payload, err := json.Marshal(envelope.Data)
	require.NoError(t, err)

	var resp struct {
		Schedule timetable.Grid `json:"schedule"`
	}
	require.NoError(t, json.Unmarshal(payload, &resp))
	assert.Equal(t, 1, resp.Schedule.CountSessions())
	require.NotNil(t, resp.Schedule["Monday"][0])
	assert.Equal(t, "Alice", resp.Schedule["Monday"][0].Teacher)
	assert.Nil(t, resp.Schedule["Monday"][1])
}

func TestScheduleHandlerSaveRoundTrip(t *testing.T) {
	handler, schedules := newScheduleHandlerFixture()

	grid := timetable.NewGrid()
	grid.SetCell("Monday", 0, &timetable.Session{Subject: "Math", Teacher: "Alice", Room: "9A"})
	body, _ := json.Marshal(gin.H{"schedule": grid})

	w := doRequest(handler.Save, http.MethodPut, "/schedule?classId=class-1", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, schedules.stored, "class-1")
}

func TestScheduleHandlerSaveInvalidBody(t *testing.T) {
	handler, _ := newScheduleHandlerFixture()
	w := doRequest(handler.Save, http.MethodPut, "/schedule?classId=class-1", []byte(`not json`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScheduleHandlerClear(t *testing.T) {
	handler, schedules := newScheduleHandlerFixture()
	schedules.stored = map[string]types.JSONText{"class-1": types.JSONText(`{}`)}

	w := doRequest(handler.Clear, http.MethodDelete, "/schedule?classId=class-1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, schedules.stored)

	w = doRequest(handler.Clear, http.MethodDelete, "/schedule?classId=class-1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestScheduleHandlerClearNoContentThroughRouter(t *testing.T) {
	handler, schedules := newScheduleHandlerFixture()
	schedules.stored = map[string]types.JSONText{"class-1": types.JSONText(`{}`)}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.DELETE("/schedule", handler.Clear)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/schedule?classId=class-1", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, schedules.stored)
}

func TestScheduleHandlerAutoBuild(t *testing.T) {
	handler, _ := newScheduleHandlerFixture()

	w := doRequest(handler.AutoBuild, http.MethodPost, "/schedule/auto?classId=class-1&seed=42", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	payload, err := json.Marshal(envelope.Data)
	require.NoError(t, err)

	var resp struct {
		Schedule timetable.Grid `json:"schedule"`
		Meta     struct {
			Seed     int64 `json:"seed"`
			Leftover int   `json:"leftover_unassigned"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(payload, &resp))
	assert.Equal(t, int64(42), resp.Meta.Seed)
	assert.Zero(t, resp.Meta.Leftover)
	assert.Equal(t, 3, resp.Schedule.CountSessions())
}

func TestScheduleHandlerAutoBuildBadSeed(t *testing.T) {
	handler, _ := newScheduleHandlerFixture()
	w := doRequest(handler.AutoBuild, http.MethodPost, "/schedule/auto?classId=class-1&seed=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
