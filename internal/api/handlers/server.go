// Package handlers implements the HTTP API described by the embedded
// OpenAPI document.
//
// Handlers bind and shape requests, then delegate to use cases for writes
// and to the store or read services for listings. Errors are attached with
// c.Error and rendered by middleware.ErrorHandler.
//
// Import Path: fertigation.io/farmwatch/internal/api/handlers
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"fertigation.io/farmwatch/internal/api/middleware"
	"fertigation.io/farmwatch/internal/cache"
	"fertigation.io/farmwatch/internal/governance/audit"
	"fertigation.io/farmwatch/internal/notification"
	apperrors "fertigation.io/farmwatch/internal/pkg/errors"
	"fertigation.io/farmwatch/internal/repository"
	"fertigation.io/farmwatch/internal/service"
	"fertigation.io/farmwatch/internal/usecase"
)

// HealthCheck probes one dependency for the readiness endpoint.
type HealthCheck func(ctx context.Context) error

// Server implements all API handlers.
type Server struct {
	store       *repository.Store
	jwtCfg      middleware.JWTConfig
	revocations cache.Revocations
	audit       *audit.Logger
	checks      map[string]HealthCheck

	accounts  *usecase.AccountUseCase
	farms     *usecase.FarmUseCase
	readings  *usecase.SubmitReadingUseCase
	alerts    *usecase.AlertUseCase
	forms     *usecase.FormsUseCase
	analytics *service.AnalyticsService
	alertFeed *service.AlertFeed
	hub       *notification.Hub
}

// ServerDeps holds all dependencies for creating a Server.
type ServerDeps struct {
	Store        *repository.Store
	JWTCfg       middleware.JWTConfig
	Revocations  cache.Revocations
	Audit        *audit.Logger
	HealthChecks map[string]HealthCheck

	Accounts  *usecase.AccountUseCase
	Farms     *usecase.FarmUseCase
	Readings  *usecase.SubmitReadingUseCase
	Alerts    *usecase.AlertUseCase
	Forms     *usecase.FormsUseCase
	Analytics *service.AnalyticsService
	AlertFeed *service.AlertFeed
	Hub       *notification.Hub // Optional: nil disables GET /alerts/stream
}

// NewServer creates a new Server with all dependencies.
func NewServer(deps ServerDeps) *Server {
	revocations := deps.Revocations
	if revocations == nil {
		revocations = cache.NewMemoryRevocations()
	}
	return &Server{
		store:       deps.Store,
		jwtCfg:      deps.JWTCfg,
		revocations: revocations,
		audit:       deps.Audit,
		checks:      deps.HealthChecks,
		accounts:    deps.Accounts,
		farms:       deps.Farms,
		readings:    deps.Readings,
		alerts:      deps.Alerts,
		forms:       deps.Forms,
		analytics:   deps.Analytics,
		alertFeed:   deps.AlertFeed,
		hub:         deps.Hub,
	}
}

// actorFromCtx extracts the authenticated user ID from the request context.
func actorFromCtx(c *gin.Context) string {
	if uid := middleware.GetUserID(c.Request.Context()); uid != "" {
		return uid
	}
	return "anonymous"
}

// fail hands err to the error handler middleware.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
}

// bindJSON decodes the request body into dst. A malformed body is a 400.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		fail(c, apperrors.BadRequest(apperrors.CodeInvalidRequest, "invalid request body").
			WithParams(map[string]interface{}{"reason": err.Error()}))
		return false
	}
	return true
}

// itemList is the envelope every list endpoint returns.
type itemList[T any] struct {
	Items []T `json:"items"`
}

// list renders items as {"items": [...]}, never null.
func list[T any](c *gin.Context, items []T) {
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, itemList[T]{Items: items})
}
