package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fertigation.io/farmwatch/internal/domain"
	apperrors "fertigation.io/farmwatch/internal/pkg/errors"
	"fertigation.io/farmwatch/internal/testutil"
)

func TestAlertFeed_ListFilters(t *testing.T) {
	mem := testutil.NewMemStore()
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	mem.PutAlert(domain.Alert{FarmID: 1, Severity: domain.SeverityHigh, CreatedAt: base})
	mem.PutAlert(domain.Alert{FarmID: 1, Severity: domain.SeverityLow, CreatedAt: base.Add(time.Minute)})
	newest := mem.PutAlert(domain.Alert{FarmID: 2, Severity: domain.SeverityHigh, CreatedAt: base.Add(2 * time.Minute)})

	feed := NewAlertFeed(mem.Store().Alerts, nil)
	high := domain.SeverityHigh
	got, err := feed.List(context.Background(), domain.AlertFilter{Severity: &high}, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, newest.ID, got[0].ID)
}

func TestAlertFeed_ReadFailure(t *testing.T) {
	mem := testutil.NewMemStore()
	mem.Fail["alerts.list"] = errors.New("timeout")

	_, err := NewAlertFeed(mem.Store().Alerts, nil).List(context.Background(), domain.AlertFilter{}, 10)
	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeReadFailed, appErr.Code)
}

func TestAlertsKey(t *testing.T) {
	resolved := false
	farm := int64(4)
	assert.Equal(t, "limit=20", alertsKey(domain.AlertFilter{}, 20))
	assert.Equal(t, "limit=5:resolved=false:farm=4", alertsKey(domain.AlertFilter{Resolved: &resolved, FarmID: &farm}, 5))
}
