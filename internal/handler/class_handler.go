package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/teachflow/teachflow-api/internal/models"
	"github.com/teachflow/teachflow-api/internal/service"
	"github.com/teachflow/teachflow-api/pkg/response"
)

// ClassHandler exposes the class lookup endpoints.
type ClassHandler struct {
	classes  *service.ClassService
	subjects *service.SubjectService
}

// NewClassHandler constructs a class handler.
func NewClassHandler(classes *service.ClassService, subjects *service.SubjectService) *ClassHandler {
	return &ClassHandler{classes: classes, subjects: subjects}
}

// List godoc
// @Summary List classes
// @Tags Classes
// @Produce json
// @Param grade query string false "Filter by grade"
// @Param search query string false "Search keyword"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /classes [get]
func (h *ClassHandler) List(c *gin.Context) {
	var filter models.ClassFilter
	filter.Grade = c.Query("grade")
	filter.Search = strings.TrimSpace(c.Query("search"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	classes, pagination, err := h.classes.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes, pagination)
}

// Subjects godoc
// @Summary Subject plan for a class
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/subjects [get]
func (h *ClassHandler) Subjects(c *gin.Context) {
	items, err := h.subjects.ListByClass(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}
