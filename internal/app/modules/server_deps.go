package modules

import (
	"context"
	"strings"

	"fertigation.io/farmwatch/internal/api/handlers"
	"fertigation.io/farmwatch/internal/api/middleware"
	"fertigation.io/farmwatch/internal/config"
)

// NewServerDeps builds base server deps then lets each module contribute explicit wiring.
func NewServerDeps(cfg *config.Config, infra *Infrastructure, mods []Module) handlers.ServerDeps {
	deps := handlers.ServerDeps{
		Store:        infra.Store,
		JWTCfg:       JWTConfig(cfg, infra.Revocations),
		Revocations:  infra.Revocations,
		Audit:        infra.AuditLogger,
		HealthChecks: healthChecks(infra),
	}
	for _, mod := range mods {
		if mod == nil {
			continue
		}
		contributor, ok := mod.(ServerDepsContributor)
		if !ok {
			continue
		}
		contributor.ContributeServerDeps(&deps)
	}
	return deps
}

// JWTConfig derives token settings from cfg. Retired keys listed in
// security.jwt_verification_keys still validate.
func JWTConfig(cfg *config.Config, revocations middleware.RevocationChecker) middleware.JWTConfig {
	verificationKeys := make([][]byte, 0, len(cfg.Security.JWTVerificationKeys))
	for _, key := range cfg.Security.JWTVerificationKeys {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		verificationKeys = append(verificationKeys, []byte(key))
	}
	return middleware.JWTConfig{
		SigningKey:        []byte(cfg.Security.SessionSecret),
		VerificationKeys:  verificationKeys,
		Issuer:            cfg.Session.Issuer,
		ExpiresIn:         cfg.Session.Lifetime,
		RevocationChecker: revocations,
	}
}

func healthChecks(infra *Infrastructure) map[string]handlers.HealthCheck {
	checks := map[string]handlers.HealthCheck{}
	if infra.DB != nil && infra.DB.Pool != nil {
		pool := infra.DB.Pool
		checks["database"] = func(ctx context.Context) error { return pool.Ping(ctx) }
	}
	if infra.Redis != nil {
		client := infra.Redis
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	}
	return checks
}
