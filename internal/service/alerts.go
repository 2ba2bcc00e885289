package service

import (
	"context"
	"fmt"

	"fertigation.io/farmwatch/internal/cache"
	"fertigation.io/farmwatch/internal/domain"
	apperrors "fertigation.io/farmwatch/internal/pkg/errors"
	"fertigation.io/farmwatch/internal/repository"
)

// AlertFeed serves alert listings through the view cache.
type AlertFeed struct {
	alerts repository.AlertRepository
	views  cache.Cache
}

// NewAlertFeed creates a new AlertFeed. A nil cache disables caching.
func NewAlertFeed(alerts repository.AlertRepository, views cache.Cache) *AlertFeed {
	if views == nil {
		views = cache.Nop{}
	}
	return &AlertFeed{alerts: alerts, views: views}
}

// List returns alerts matching f, newest first.
func (s *AlertFeed) List(ctx context.Context, f domain.AlertFilter, limit int) ([]domain.AlertView, error) {
	out, err := cache.Fetch(ctx, s.views, cache.NSAlerts, alertsKey(f, limit), func(ctx context.Context) ([]domain.AlertView, error) {
		return s.alerts.List(ctx, f, limit)
	})
	if err != nil {
		return nil, apperrors.ReadFailed(err, "alerts")
	}
	return out, nil
}

func alertsKey(f domain.AlertFilter, limit int) string {
	key := fmt.Sprintf("limit=%d", limit)
	if f.Severity != nil {
		key += ":severity=" + string(*f.Severity)
	}
	if f.Resolved != nil {
		key += fmt.Sprintf(":resolved=%t", *f.Resolved)
	}
	if f.FarmID != nil {
		key += fmt.Sprintf(":farm=%d", *f.FarmID)
	}
	return key
}
