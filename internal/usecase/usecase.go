// Package usecase holds the application's write paths.
//
// Use cases are shared by the HTTP handlers and the farmctl CLI. Each one
// performs its store writes, then invalidates cached views and hands events
// to the notifier. Neither side effect can fail the operation.
//
// Import Path: fertigation.io/farmwatch/internal/usecase
package usecase

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fertigation.io/farmwatch/internal/domain"
	"fertigation.io/farmwatch/internal/pkg/logger"
)

// AlertNotifier receives alert lifecycle events.
// Implementations must not block the caller.
type AlertNotifier interface {
	OnAlertCreated(ctx context.Context, alert domain.Alert)
	OnAlertResolved(ctx context.Context, alert domain.Alert)
}

// ViewInvalidator drops cached views after a mutation.
type ViewInvalidator interface {
	Invalidate(ctx context.Context, namespaces ...string) error
}

type nopNotifier struct{}

func (nopNotifier) OnAlertCreated(context.Context, domain.Alert)  {}
func (nopNotifier) OnAlertResolved(context.Context, domain.Alert) {}

type nopInvalidator struct{}

func (nopInvalidator) Invalidate(context.Context, ...string) error { return nil }

// effects bundles the post-write side effects every use case shares.
type effects struct {
	notifier AlertNotifier
	views    ViewInvalidator
}

func newEffects(n AlertNotifier, v ViewInvalidator) effects {
	if n == nil {
		n = nopNotifier{}
	}
	if v == nil {
		v = nopInvalidator{}
	}
	return effects{notifier: n, views: v}
}

func (e effects) invalidate(ctx context.Context, namespaces ...string) {
	if err := e.views.Invalidate(ctx, namespaces...); err != nil {
		logger.Warn("view invalidation failed",
			zap.Strings("namespaces", namespaces),
			zap.Error(err),
		)
	}
}

// generateID generates a unique UUID v7 (time-ordered, K-sortable).
func generateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
