package modules

import (
	"context"
	"testing"
	"time"

	"github.com/riverqueue/river"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fertigation.io/farmwatch/internal/api/handlers"
	"fertigation.io/farmwatch/internal/cache"
	"fertigation.io/farmwatch/internal/config"
	"fertigation.io/farmwatch/internal/governance/audit"
	"fertigation.io/farmwatch/internal/jobs"
	"fertigation.io/farmwatch/internal/notification"
	"fertigation.io/farmwatch/internal/pkg/logger"
	"fertigation.io/farmwatch/internal/testutil"
)

func init() {
	_ = logger.Init("error", "json")
}

// memInfra builds an Infrastructure over the in-memory store, without a
// database, Redis or worker pools.
func memInfra(retention time.Duration) *Infrastructure {
	store := testutil.NewMemStore().Store()
	hub := notification.NewHub(nil, false)
	cfg := &config.Config{
		Security: config.SecurityConfig{SessionSecret: "modules-test-secret-0123456789abcdef", BcryptCost: 4},
		Session:  config.SessionConfig{Lifetime: 2 * time.Hour, Issuer: "farmwatch"},
		Alerts:   config.AlertsConfig{ResolvedRetention: retention},
	}
	return &Infrastructure{
		Config:      cfg,
		Store:       store,
		Views:       cache.Nop{},
		Revocations: cache.NewMemoryRevocations(),
		AuditLogger: audit.NewLogger(store.AuditLogs),
		Hub:         hub,
		Notifier:    notification.NewTriggers(nil, hub),
	}
}

func TestNewServerDeps_EveryModuleContributes(t *testing.T) {
	infra := memInfra(time.Hour)
	mods := []Module{NewAccountsModule(infra), NewFarmModule(infra), NewStreamModule(infra)}

	deps := NewServerDeps(infra.Config, infra, mods)

	assert.NotNil(t, deps.Store)
	assert.NotNil(t, deps.Accounts)
	assert.NotNil(t, deps.Farms)
	assert.NotNil(t, deps.Readings)
	assert.NotNil(t, deps.Alerts)
	assert.NotNil(t, deps.Forms)
	assert.NotNil(t, deps.Analytics)
	assert.NotNil(t, deps.AlertFeed)
	assert.Same(t, infra.Hub, deps.Hub)
	assert.Empty(t, deps.HealthChecks, "no database or redis, no checks")
	assert.NotPanics(t, func() { handlers.NewServer(deps) })
}

func TestJWTConfig(t *testing.T) {
	infra := memInfra(0)
	infra.Config.Security.JWTVerificationKeys = []string{" old-key ", "", "older-key"}

	got := JWTConfig(infra.Config, infra.Revocations)
	assert.Equal(t, []byte(infra.Config.Security.SessionSecret), got.SigningKey)
	assert.Equal(t, [][]byte{[]byte("old-key"), []byte("older-key")}, got.VerificationKeys)
	assert.Equal(t, "farmwatch", got.Issuer)
	assert.Equal(t, 2*time.Hour, got.ExpiresIn)
	assert.NotNil(t, got.RevocationChecker)
}

func TestFarmModule_PeriodicJobs(t *testing.T) {
	assert.Len(t, NewFarmModule(memInfra(24*time.Hour)).PeriodicJobs(), 1)
	assert.Empty(t, NewFarmModule(memInfra(0)).PeriodicJobs(), "zero retention disables the schedule")
}

func TestFarmModule_RegistersRetentionWorker(t *testing.T) {
	workers := river.NewWorkers()
	NewFarmModule(memInfra(0)).RegisterWorkers(workers)
	err := river.AddWorkerSafely(workers, jobs.NewAlertRetentionWorker(nil, nil, 0))
	require.Error(t, err, "retention kind is already registered")
}

func TestStreamModule_ShutdownClosesHub(t *testing.T) {
	infra := memInfra(0)
	require.NoError(t, NewStreamModule(infra).Shutdown(context.Background()))
	assert.Equal(t, 0, infra.Hub.Count())
}

func TestInfrastructure_CloseNil(t *testing.T) {
	var infra *Infrastructure
	assert.NotPanics(t, infra.Close)
	assert.Error(t, infra.InitRiver(river.NewWorkers(), nil))
}
