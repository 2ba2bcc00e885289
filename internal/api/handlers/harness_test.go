package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"fertigation.io/farmwatch/internal/api/middleware"
	"fertigation.io/farmwatch/internal/cache"
	"fertigation.io/farmwatch/internal/domain"
	"fertigation.io/farmwatch/internal/governance/audit"
	"fertigation.io/farmwatch/internal/pkg/logger"
	"fertigation.io/farmwatch/internal/service"
	"fertigation.io/farmwatch/internal/testutil"
	"fertigation.io/farmwatch/internal/usecase"
)

func init() {
	_ = logger.Init("error", "json")
	gin.SetMode(gin.TestMode)
}

type harness struct {
	t       *testing.T
	mem     *testutil.MemStore
	router  *gin.Engine
	jwtCfg  middleware.JWTConfig
	checks  map[string]HealthCheck
	profile int
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	mem := testutil.NewMemStore()
	store := mem.Store()
	revocations := cache.NewMemoryRevocations()
	jwtCfg := middleware.JWTConfig{
		SigningKey:        []byte("handlers-test-signing-key-0123456789"),
		Issuer:            "farmwatch",
		ExpiresIn:         time.Hour,
		RevocationChecker: revocations,
	}
	auditLogger := audit.NewLogger(store.AuditLogs)

	h := &harness{
		t:      t,
		mem:    mem,
		jwtCfg: jwtCfg,
		checks: map[string]HealthCheck{"database": func(context.Context) error { return nil }},
	}
	srv := NewServer(ServerDeps{
		Store:        store,
		JWTCfg:       jwtCfg,
		Revocations:  revocations,
		Audit:        auditLogger,
		HealthChecks: h.checks,
		Accounts:     usecase.NewAccountUseCase(store.Profiles, bcrypt.MinCost).WithAuditLogger(auditLogger),
		Farms:        usecase.NewFarmUseCase(store, nil).WithAuditLogger(auditLogger),
		Readings:     usecase.NewSubmitReadingUseCase(store, nil, nil),
		Alerts:       usecase.NewAlertUseCase(store, nil, nil).WithAuditLogger(auditLogger),
		Forms:        usecase.NewFormsUseCase(store),
		Analytics:    service.NewAnalyticsService(store.Readings, nil),
		AlertFeed:    service.NewAlertFeed(store.Alerts, nil),
	})

	h.router = gin.New()
	h.router.Use(middleware.RequestID(), middleware.ErrorHandler())
	srv.Register(h.router.Group("/api/v1"), middleware.JWTAuth(jwtCfg), middleware.OptionalJWTAuth(jwtCfg))
	return h
}

// login stores a profile with role and returns a bearer token for it.
func (h *harness) login(role domain.Role) string {
	h.t.Helper()
	h.profile++
	profile, err := h.mem.Store().Profiles.Create(context.Background(), domain.NewProfile{
		ID:    fmt.Sprintf("user-%d", h.profile),
		Name:  string(role) + " user",
		Email: fmt.Sprintf("user%d@farm.example", h.profile),
		Role:  role,
	})
	require.NoError(h.t, err)
	token, _, err := middleware.GenerateToken(h.jwtCfg, profile)
	require.NoError(h.t, err)
	return token
}

func (h *harness) do(method, path, token string, body any) *httptest.ResponseRecorder {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, "/api/v1"+path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

// seedFarm stores a farm with one sensor.
func (h *harness) seedFarm(name, sensorID string) domain.Farm {
	h.t.Helper()
	store := h.mem.Store()
	farm, err := store.Farms.Create(context.Background(), domain.NewFarm{Name: name, Location: "Nakuru", CropType: "Maize"})
	require.NoError(h.t, err)
	require.NoError(h.t, store.Sensors.Upsert(context.Background(), domain.Sensor{ID: sensorID, FarmID: farm.ID, Type: "flow"}))
	return farm
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body=%s", w.Body.String())
	return out
}

type errorBody struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	FieldErrors []struct {
		Field string `json:"field"`
		Code  string `json:"code"`
	} `json:"field_errors"`
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
