package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/teachflow/teachflow-api/internal/dto"
	"github.com/teachflow/teachflow-api/internal/service"
	appErrors "github.com/teachflow/teachflow-api/pkg/errors"
	"github.com/teachflow/teachflow-api/pkg/response"
)

// ScheduleHandler exposes the stored-timetable endpoints plus the
// auto-build trigger.
type ScheduleHandler struct {
	schedules *service.ScheduleService
	builder   *service.AutoBuildService
}

// NewScheduleHandler constructs a schedule handler.
func NewScheduleHandler(schedules *service.ScheduleService, builder *service.AutoBuildService) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules, builder: builder}
}

func classIDFromQuery(c *gin.Context) (string, bool) {
	classID := strings.TrimSpace(c.Query("classId"))
	if classID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "classId query parameter is required"))
		return "", false
	}
	return classID, true
}

// Get godoc
// @Summary Load a class's timetable
// @Tags Schedule
// @Produce json
// @Param classId query string true "Class ID"
// @Param teacher query string false "Only show this teacher's sessions"
// @Param subject query string false "Only show this subject's sessions"
// @Success 200 {object} response.Envelope
// @Router /schedule [get]
func (h *ScheduleHandler) Get(c *gin.Context) {
	classID, ok := classIDFromQuery(c)
	if !ok {
		return
	}
	resp, err := h.schedules.Load(c.Request.Context(), classID)
	if err != nil {
		response.Error(c, err)
		return
	}
	teacher := strings.TrimSpace(c.Query("teacher"))
	subject := strings.TrimSpace(c.Query("subject"))
	if teacher != "" || subject != "" {
		resp.Schedule = resp.Schedule.Filter(teacher, subject)
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// Save godoc
// @Summary Replace a class's timetable wholesale
// @Tags Schedule
// @Accept json
// @Produce json
// @Param classId query string true "Class ID"
// @Param payload body dto.SaveScheduleRequest true "Timetable payload"
// @Success 200 {object} response.Envelope
// @Router /schedule [put]
func (h *ScheduleHandler) Save(c *gin.Context) {
	classID, ok := classIDFromQuery(c)
	if !ok {
		return
	}
	var req dto.SaveScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	resp, err := h.schedules.Save(c.Request.Context(), classID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// Clear godoc
// @Summary Delete a class's stored timetable
// @Tags Schedule
// @Param classId query string true "Class ID"
// @Success 204
// @Router /schedule [delete]
func (h *ScheduleHandler) Clear(c *gin.Context) {
	classID, ok := classIDFromQuery(c)
	if !ok {
		return
	}
	if err := h.schedules.Clear(c.Request.Context(), classID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AutoBuild godoc
// @Summary Build a timetable proposal automatically
// @Tags Schedule
// @Produce json
// @Param classId query string true "Class ID"
// @Param seed query int false "Shuffle seed; omit for a fresh one"
// @Success 200 {object} response.Envelope
// @Router /schedule/auto [post]
func (h *ScheduleHandler) AutoBuild(c *gin.Context) {
	classID, ok := classIDFromQuery(c)
	if !ok {
		return
	}

	seed := time.Now().UnixNano()
	if raw := c.Query("seed"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "seed must be an integer"))
			return
		}
		seed = parsed
	}

	resp, err := h.builder.Build(c.Request.Context(), classID, seed)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}
