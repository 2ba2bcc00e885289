package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fertigation.io/farmwatch/internal/api/middleware"
	"fertigation.io/farmwatch/internal/domain"
	apperrors "fertigation.io/farmwatch/internal/pkg/errors"
	"fertigation.io/farmwatch/internal/usecase"
)

// ListAlerts handles GET /alerts.
func (s *Server) ListAlerts(c *gin.Context) {
	var (
		f        domain.AlertFilter
		severity *string
	)
	if !queryParam(c, "severity", &severity) ||
		!queryParam(c, "resolved", &f.Resolved) ||
		!queryParam(c, "farm_id", &f.FarmID) {
		return
	}
	if severity != nil {
		sev, err := domain.ParseSeverity(*severity)
		if err != nil {
			fail(c, apperrors.Validation(apperrors.FieldError{Field: "severity", Code: "enum", Message: err.Error()}))
			return
		}
		f.Severity = &sev
	}
	limit, ok := limitParam(c)
	if !ok {
		return
	}

	alerts, err := s.alertFeed.List(c.Request.Context(), f, limit)
	if err != nil {
		fail(c, err)
		return
	}
	list(c, alerts)
}

// CreateAlert handles POST /alerts.
func (s *Server) CreateAlert(c *gin.Context) {
	var req usecase.CreateAlertInput
	if !bindJSON(c, &req) {
		return
	}
	req.RaisedBy = actorFromCtx(c)
	req.Role = middleware.SessionFrom(c.Request.Context()).Role
	alert, err := s.alerts.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, alert)
}

// ResolveAlert handles POST /alerts/:alert_id/resolve.
func (s *Server) ResolveAlert(c *gin.Context) {
	id, ok := idParam(c, "alert_id")
	if !ok {
		return
	}
	alert, err := s.alerts.Resolve(c.Request.Context(), id, actorFromCtx(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, alert)
}

// DeleteAlert handles DELETE /alerts/:alert_id.
func (s *Server) DeleteAlert(c *gin.Context) {
	id, ok := idParam(c, "alert_id")
	if !ok {
		return
	}
	if err := s.alerts.Delete(c.Request.Context(), id, actorFromCtx(c)); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// StreamAlerts handles GET /alerts/stream, upgrading to a websocket that
// receives alert.created and alert.resolved events.
func (s *Server) StreamAlerts(c *gin.Context) {
	if s.hub == nil {
		fail(c, apperrors.NotFound(apperrors.CodeStreamDisabled, "alert stream is disabled"))
		return
	}
	s.hub.Serve(c.Writer, c.Request, actorFromCtx(c))
}
