package handlers

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fertigation.io/farmwatch/internal/pkg/logger"
)

const (
	healthOK       = "ok"
	healthDegraded = "degraded"
	healthError    = "error"
)

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// GetLiveness handles GET /health/live.
func (s *Server) GetLiveness(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{Status: healthOK})
}

// GetReadiness handles GET /health/ready. Every registered check must pass.
func (s *Server) GetReadiness(c *gin.Context) {
	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	checks := make(map[string]string, len(names))
	allHealthy := true
	for _, name := range names {
		if err := s.checks[name](c.Request.Context()); err != nil {
			logger.Warn("readiness check failed", zap.String("check", name), zap.Error(err))
			checks[name] = healthError
			allHealthy = false
			continue
		}
		checks[name] = healthOK
	}

	if !allHealthy {
		c.JSON(http.StatusServiceUnavailable, healthResponse{Status: healthDegraded, Checks: checks})
		return
	}
	c.JSON(http.StatusOK, healthResponse{Status: healthOK, Checks: checks})
}
