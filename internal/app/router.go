package app

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"fertigation.io/farmwatch/internal/api/handlers"
	"fertigation.io/farmwatch/internal/api/middleware"
	"fertigation.io/farmwatch/internal/config"
)

const apiBasePath = "/api/v1"

// defaultAllowedOrigins serves the local dashboard when no origins are configured.
var defaultAllowedOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
}

func newRouter(cfg *config.Config, server *handlers.Server, jwtCfg middleware.JWTConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), cors.New(buildCORSConfig(cfg)), middleware.RequestID())

	// ErrorHandler sits inside the validator so rendered errors are
	// buffered and checked against the contract like any other response.
	api := router.Group(apiBasePath)
	api.Use(
		middleware.MustOpenAPIValidator(apiBasePath, middleware.OpenAPIOptions{
			StrictResponses: cfg.Server.StrictResponses,
		}),
		middleware.ErrorHandler(),
	)
	server.Register(api, middleware.JWTAuth(jwtCfg), middleware.OptionalJWTAuth(jwtCfg))
	return router
}

// buildCORSConfig never pairs a wildcard origin with credentials. "*" is
// honoured only with server.unsafe_allow_all_origins, which also turns
// credentials off.
func buildCORSConfig(cfg *config.Config) cors.Config {
	out := cors.Config{
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: cfg.Server.AllowCredentials,
		MaxAge:           12 * time.Hour,
	}
	if cfg.Server.UnsafeAllowAllOrigins {
		out.AllowAllOrigins = true
		out.AllowCredentials = false
		return out
	}

	for _, origin := range cfg.Server.AllowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin == "" || origin == "*" {
			continue
		}
		out.AllowOrigins = append(out.AllowOrigins, origin)
	}
	if len(out.AllowOrigins) == 0 {
		out.AllowOrigins = append([]string(nil), defaultAllowedOrigins...)
	}
	return out
}
