package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fertigation.io/farmwatch/internal/domain"
	"fertigation.io/farmwatch/internal/service"
)

func TestFarms(t *testing.T) {
	h := newHarness(t)
	farmer := h.login(domain.RoleFarmer)

	w := h.do(http.MethodPost, "/farms", farmer, map[string]string{"name": "Farm C", "location": "Eldoret", "crop_type": "Wheat"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	farm := decode[domain.Farm](t, w)

	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodPost, "/farms", farmer, map[string]string{"name": "  "}).Code)

	list := decode[itemList[domain.Farm]](t, h.do(http.MethodGet, "/farms", farmer, nil))
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Farm C", list.Items[0].Name)

	path := "/farms/" + itoa(farm.ID)
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodDelete, path, farmer, nil).Code)
	admin := h.login(domain.RoleAdmin)
	assert.Equal(t, http.StatusNoContent, h.do(http.MethodDelete, path, admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodDelete, path, admin, nil).Code)
}

func TestListSensors(t *testing.T) {
	h := newHarness(t)
	farmA := h.seedFarm("Farm A", "S001")
	h.seedFarm("Farm B", "S002")
	token := h.login(domain.RoleOfficer)

	assert.Len(t, decode[itemList[domain.Sensor]](t, h.do(http.MethodGet, "/sensors", token, nil)).Items, 2)
	only := decode[itemList[domain.Sensor]](t, h.do(http.MethodGet, "/sensors?farm_id="+itoa(farmA.ID), token, nil))
	require.Len(t, only.Items, 1)
	assert.Equal(t, "S001", only.Items[0].ID)
}

func TestSchedules(t *testing.T) {
	h := newHarness(t)
	farm := h.seedFarm("Farm A", "S001")
	token := h.login(domain.RoleFarmer)

	w := h.do(http.MethodPost, "/schedules", token, map[string]any{
		"farm_id": farm.ID, "start_time": "2025-03-02T06:00:00+03:00", "duration": 45, "fertilizer_amount": 12.5,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	schedule := decode[domain.Schedule](t, w)
	assert.Equal(t, "2025-03-02T03:00:00Z", schedule.StartTime.Format("2006-01-02T15:04:05Z07:00"))

	w = h.do(http.MethodPost, "/schedules", token, map[string]any{"farm_id": farm.ID, "start_time": "tomorrow"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	list := decode[itemList[domain.Schedule]](t, h.do(http.MethodGet, "/schedules?farm_id="+itoa(farm.ID), token, nil))
	assert.Len(t, list.Items, 1)
}

func TestReportsAndAdminListings(t *testing.T) {
	h := newHarness(t)
	researcher := h.login(domain.RoleResearcher)

	w := h.do(http.MethodPost, "/reports", researcher, map[string]string{"title": "Drip uniformity", "description": "Season 1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "user-1", decode[domain.Report](t, w).UserID)

	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodPost, "/reports", researcher, map[string]string{"title": ""}).Code)

	for _, path := range []string{"/admin/profiles", "/admin/reports", "/admin/contact-queries", "/admin/audit-logs"} {
		assert.Equal(t, http.StatusForbidden, h.do(http.MethodGet, path, researcher, nil).Code, path)
	}

	admin := h.login(domain.RoleAdmin)
	reports := decode[itemList[domain.ReportView]](t, h.do(http.MethodGet, "/admin/reports", admin, nil))
	require.Len(t, reports.Items, 1)
	assert.Equal(t, "Drip uniformity", reports.Items[0].Title)

	profiles := decode[itemList[domain.Profile]](t, h.do(http.MethodGet, "/admin/profiles", admin, nil))
	assert.Len(t, profiles.Items, 2)

	w = h.do(http.MethodGet, "/admin/contact-queries", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[]}`, w.Body.String())
}

func TestContact_Public(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodPost, "/contact", "", map[string]string{"name": "Amina", "email": "amina@example.com", "message": "Do you ship sensors?"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Amina", decode[domain.ContactQuery](t, w).Name)

	w = h.do(http.MethodPost, "/contact", "", map[string]string{"name": "Amina", "email": "not-an-email", "message": "hi"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyticsAndExport(t *testing.T) {
	h := newHarness(t)
	h.seedFarm("Farm A", "S001")
	h.seedFarm("Green, Valley", "S002")
	token := h.login(domain.RoleFarmer)
	for _, r := range []map[string]any{
		{"sensor_id": "S001", "flow_rate": 12, "pressure": 10, "conductivity": 1},
		{"sensor_id": "S002", "flow_rate": 11, "pressure": 30, "conductivity": 1},
		{"sensor_id": "S001", "flow_rate": 13, "pressure": 20, "conductivity": 1},
	} {
		require.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/readings", token, r).Code)
	}

	w := h.do(http.MethodGet, "/analytics", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode[service.Analytics](t, w)
	assert.Equal(t, 3, got.Summary.TotalReadings)
	assert.Equal(t, "12.00", got.Summary.AvgFlowRate)
	assert.Equal(t, "20.00", got.Summary.AvgPressure)
	require.Len(t, got.PressureByFarm, 2)
	assert.Equal(t, service.FarmPressure{Farm: "Farm A", AvgPressure: "15.00", Readings: 2}, got.PressureByFarm[0])
	assert.Equal(t, "Day 1", got.FlowTrend[0].Label)
	assert.Equal(t, 12.0, got.FlowTrend[0].FlowRate)

	w = h.do(http.MethodGet, "/analytics/export.csv", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, csvContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "sensor-readings-")
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, strings.Join(service.CSVHeader, ","), lines[0])
	assert.Contains(t, lines[2], `"Green, Valley"`)
}

func TestHealth(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/health/live", "", nil).Code)

	w := h.do(http.MethodGet, "/health/ready", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","checks":{"database":"ok"}}`, w.Body.String())

	h.checks["redis"] = func(context.Context) error { return errors.New("dial tcp: connection refused") }
	w = h.do(http.MethodGet, "/health/ready", "", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"degraded","checks":{"database":"ok","redis":"error"}}`, w.Body.String())
}
