package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "fertigation.io/farmwatch/internal/pkg/errors"
	"fertigation.io/farmwatch/internal/repository"
	"fertigation.io/farmwatch/internal/service"
)

const csvContentType = "text/csv; charset=utf-8"

// GetAnalytics handles GET /analytics.
func (s *Server) GetAnalytics(c *gin.Context) {
	out, err := s.analytics.Compute(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// ExportReadingsCSV handles GET /analytics/export.csv. The file is built in
// memory first so a failure can still be reported as JSON.
func (s *Server) ExportReadingsCSV(c *gin.Context) {
	readings, err := s.analytics.RecentReadings(c.Request.Context(), repository.ReadingFilter{Limit: service.AnalyticsWindow})
	if err != nil {
		fail(c, err)
		return
	}

	var buf bytes.Buffer
	if err := service.WriteReadingsCSV(&buf, readings); err != nil {
		fail(c, apperrors.Wrap(err, apperrors.CodeExportFailed, "failed to render CSV export", http.StatusInternalServerError))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", service.ExportFilename(time.Now())))
	c.Data(http.StatusOK, csvContentType, buf.Bytes())
}
