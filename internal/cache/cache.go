// Package cache holds the read-through view cache for readings, alerts and
// analytics, and the bearer token revocation list.
//
// Both are backed by Redis when redis.addr is set. Without Redis the view
// cache is a no-op and revocations are kept in process memory.
//
// Import Path: fertigation.io/farmwatch/internal/cache
package cache

import (
	"context"

	"go.uber.org/zap"

	"fertigation.io/farmwatch/internal/pkg/logger"
)

// View namespaces. A mutation invalidates every cached entry in the
// namespaces it touches.
const (
	NSReadings  = "readings"
	NSAlerts    = "alerts"
	NSAnalytics = "analytics"
)

// Version identifies a generation of a namespace. Invalidate moves a
// namespace to a new version.
type Version int64

// Cache stores JSON-encoded views grouped by namespace.
type Cache interface {
	// GetJSON decodes the entry into dst and reports whether it was present,
	// along with the namespace version the lookup ran against.
	GetJSON(ctx context.Context, ns, key string, dst any) (Version, bool, error)
	// SetJSON stores v under version ver. A write for a version that has
	// since been invalidated is never visible to later reads.
	SetJSON(ctx context.Context, ns string, ver Version, key string, v any) error
	// Invalidate drops every entry in the given namespaces.
	Invalidate(ctx context.Context, namespaces ...string) error
}

// Nop is the disabled cache. Reads always miss.
type Nop struct{}

func (Nop) GetJSON(context.Context, string, string, any) (Version, bool, error) {
	return 0, false, nil
}
func (Nop) SetJSON(context.Context, string, Version, string, any) error { return nil }
func (Nop) Invalidate(context.Context, ...string) error                 { return nil }

// Fetch serves key from c, falling back to load on a miss or a cache error.
// Cache errors are logged and never returned. The loaded value is stored
// under the version seen before loading, so an Invalidate that lands while
// load runs discards it.
func Fetch[T any](ctx context.Context, c Cache, ns, key string, load func(context.Context) (T, error)) (T, error) {
	var cached T
	ver, hit, readErr := c.GetJSON(ctx, ns, key, &cached)
	if readErr != nil {
		logger.Warn("view cache read failed", zap.String("namespace", ns), zap.String("key", key), zap.Error(readErr))
	} else if hit {
		return cached, nil
	}

	v, err := load(ctx)
	if err != nil || readErr != nil {
		return v, err
	}
	if err := c.SetJSON(ctx, ns, ver, key, v); err != nil {
		logger.Warn("view cache write failed", zap.String("namespace", ns), zap.String("key", key), zap.Error(err))
	}
	return v, nil
}
