package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "fertigation.io/farmwatch/internal/pkg/errors"
	"fertigation.io/farmwatch/internal/usecase"
)

// ListSchedules handles GET /schedules.
func (s *Server) ListSchedules(c *gin.Context) {
	var farmID *int64
	if !queryParam(c, "farm_id", &farmID) {
		return
	}
	limit, ok := limitParam(c)
	if !ok {
		return
	}
	schedules, err := s.store.Schedules.List(c.Request.Context(), farmID, limit)
	if err != nil {
		fail(c, apperrors.ReadFailed(err, "schedules"))
		return
	}
	list(c, schedules)
}

// CreateSchedule handles POST /schedules.
func (s *Server) CreateSchedule(c *gin.Context) {
	var req usecase.ScheduleInput
	if !bindJSON(c, &req) {
		return
	}
	schedule, err := s.forms.CreateSchedule(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, schedule)
}

// SubmitReport handles POST /reports. The author is the caller.
func (s *Server) SubmitReport(c *gin.Context) {
	var req usecase.ReportInput
	if !bindJSON(c, &req) {
		return
	}
	report, err := s.forms.SubmitReport(c.Request.Context(), actorFromCtx(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}

// SubmitContact handles POST /contact. It is public.
func (s *Server) SubmitContact(c *gin.Context) {
	var req usecase.ContactInput
	if !bindJSON(c, &req) {
		return
	}
	query, err := s.forms.SubmitContact(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, query)
}
