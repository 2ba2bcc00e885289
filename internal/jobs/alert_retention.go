// Package jobs defines River Queue job types for background maintenance.
//
// Jobs share the application's pgx pool. They carry no payload beyond what
// uniqueness needs; workers read current state from the store when they run.
//
// Import Path: fertigation.io/farmwatch/internal/jobs
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/riverqueue/river"
	"go.uber.org/zap"

	"fertigation.io/farmwatch/internal/cache"
	"fertigation.io/farmwatch/internal/governance/audit"
	"fertigation.io/farmwatch/internal/pkg/logger"
	"fertigation.io/farmwatch/internal/repository"
)

// DefaultResolvedAlertRetention is how long resolved alerts are kept when no
// retention is configured.
const DefaultResolvedAlertRetention = 90 * 24 * time.Hour

// AlertRetentionArgs is a periodic job that removes old resolved alerts.
// Unresolved alerts are never touched.
type AlertRetentionArgs struct{}

// Kind returns the job kind identifier.
func (AlertRetentionArgs) Kind() string { return "alert_retention" }

// InsertOpts ensures at most one retention job is enqueued within the same day.
func (AlertRetentionArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue:       river.QueueDefault,
		MaxAttempts: 1,
		UniqueOpts: river.UniqueOpts{
			ByPeriod: 24 * time.Hour,
			ByQueue:  true,
			ByArgs:   true,
		},
	}
}

// AlertRetentionWorker deletes alerts resolved longer ago than its
// retention. Age counts from resolved_at; rows resolved before that column
// existed fall back to created_at.
type AlertRetentionWorker struct {
	river.WorkerDefaults[AlertRetentionArgs]
	alerts      repository.AlertRepository
	views       cache.Cache
	auditLogger *audit.Logger
	retention   time.Duration
	now         func() time.Time
}

// NewAlertRetentionWorker creates a retention worker. Non-positive retention
// falls back to DefaultResolvedAlertRetention; a nil views cache is allowed.
func NewAlertRetentionWorker(alerts repository.AlertRepository, views cache.Cache, retention time.Duration) *AlertRetentionWorker {
	if retention <= 0 {
		retention = DefaultResolvedAlertRetention
	}
	if views == nil {
		views = cache.Nop{}
	}
	return &AlertRetentionWorker{
		alerts:    alerts,
		views:     views,
		retention: retention,
		now:       time.Now,
	}
}

// WithAuditLogger sets the audit logger (optional dependency).
func (w *AlertRetentionWorker) WithAuditLogger(al *audit.Logger) *AlertRetentionWorker {
	w.auditLogger = al
	return w
}

// Work removes expired resolved alerts.
func (w *AlertRetentionWorker) Work(ctx context.Context, _ *river.Job[AlertRetentionArgs]) error {
	if w == nil || w.alerts == nil {
		return fmt.Errorf("alert retention worker is not initialized")
	}

	cutoff := w.now().UTC().Add(-w.retention)
	deleted, err := w.alerts.DeleteResolvedBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("delete resolved alerts before %s: %w", cutoff.Format(time.RFC3339), err)
	}

	if deleted > 0 {
		if err := w.views.Invalidate(ctx, cache.NSAlerts); err != nil {
			logger.Warn("view invalidation failed", zap.String("namespace", cache.NSAlerts), zap.Error(err))
		}
		if w.auditLogger != nil {
			_ = w.auditLogger.LogAction(ctx, "alert.purge", "alert", "", "system", map[string]interface{}{
				"deleted_rows": deleted,
				"cutoff":       cutoff.Format(time.RFC3339),
			})
		}
	}

	logger.Info("alert retention completed",
		zap.Int64("deleted_rows", deleted),
		zap.String("cutoff", cutoff.Format(time.RFC3339)),
		zap.Duration("retention", w.retention),
	)
	return nil
}

// Register adds every worker in this package to workers.
func Register(workers *river.Workers, retention *AlertRetentionWorker) {
	river.AddWorker(workers, retention)
}

// PeriodicJobs returns the schedule for maintenance jobs. Retention runs
// daily and once on startup.
func PeriodicJobs() []*river.PeriodicJob {
	return []*river.PeriodicJob{
		river.NewPeriodicJob(
			river.PeriodicInterval(24*time.Hour),
			func() (river.JobArgs, *river.InsertOpts) {
				return AlertRetentionArgs{}, nil
			},
			&river.PeriodicJobOpts{RunOnStart: true},
		),
	}
}
