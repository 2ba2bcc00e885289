package handlers

import (
	"github.com/gin-gonic/gin"

	apperrors "fertigation.io/farmwatch/internal/pkg/errors"
)

// AdminListProfiles handles GET /admin/profiles.
func (s *Server) AdminListProfiles(c *gin.Context) {
	profiles, err := s.store.Profiles.List(c.Request.Context())
	if err != nil {
		fail(c, apperrors.ReadFailed(err, "profiles"))
		return
	}
	list(c, profiles)
}

// AdminListReports handles GET /admin/reports.
func (s *Server) AdminListReports(c *gin.Context) {
	limit, ok := limitParam(c)
	if !ok {
		return
	}
	reports, err := s.store.Reports.List(c.Request.Context(), limit)
	if err != nil {
		fail(c, apperrors.ReadFailed(err, "reports"))
		return
	}
	list(c, reports)
}

// AdminListContactQueries handles GET /admin/contact-queries.
func (s *Server) AdminListContactQueries(c *gin.Context) {
	limit, ok := limitParam(c)
	if !ok {
		return
	}
	queries, err := s.store.ContactQueries.List(c.Request.Context(), limit)
	if err != nil {
		fail(c, apperrors.ReadFailed(err, "contact queries"))
		return
	}
	list(c, queries)
}

// AdminListAuditLogs handles GET /admin/audit-logs.
func (s *Server) AdminListAuditLogs(c *gin.Context) {
	limit, ok := limitParam(c)
	if !ok {
		return
	}
	entries, err := s.store.AuditLogs.List(c.Request.Context(), limit)
	if err != nil {
		fail(c, apperrors.ReadFailed(err, "audit logs"))
		return
	}
	list(c, entries)
}
