package notification

import (
	"context"
	"time"

	"go.uber.org/zap"

	"fertigation.io/farmwatch/internal/domain"
	"fertigation.io/farmwatch/internal/pkg/logger"
	"fertigation.io/farmwatch/internal/pkg/worker"
)

// sendTimeout bounds a single sink delivery.
const sendTimeout = 5 * time.Second

// Submitter schedules detached work. *worker.Pools implements it.
type Submitter interface {
	SubmitDetached(poolName string, task worker.Task) error
}

// Triggers turns alert mutations into events for every configured sink.
// It implements usecase.AlertNotifier.
type Triggers struct {
	sinks  []Sink
	submit Submitter
	now    func() time.Time
}

// NewTriggers creates a new notification trigger service. With a nil
// submitter, sends run inline on the caller's goroutine.
func NewTriggers(submit Submitter, sinks ...Sink) *Triggers {
	return &Triggers{sinks: sinks, submit: submit, now: time.Now}
}

// OnAlertCreated fires after an alert is stored, manual or derived from a
// low-flow reading.
func (t *Triggers) OnAlertCreated(ctx context.Context, alert domain.Alert) {
	t.dispatch(ctx, Event{Type: EventAlertCreated, Alert: alert, OccurredAt: t.now().UTC()})
}

// OnAlertResolved fires after an alert is marked resolved, including repeat
// resolutions.
func (t *Triggers) OnAlertResolved(ctx context.Context, alert domain.Alert) {
	t.dispatch(ctx, Event{Type: EventAlertResolved, Alert: alert, OccurredAt: t.now().UTC()})
}

func (t *Triggers) dispatch(ctx context.Context, e Event) {
	for _, sink := range t.sinks {
		sink := sink
		task := func(taskCtx context.Context) { deliver(taskCtx, sink, e) }

		if t.submit == nil {
			task(ctx)
			continue
		}
		if err := t.submit.SubmitDetached(worker.PoolNotify, task); err != nil {
			logger.Warn("notification dropped: notify pool unavailable",
				zap.String("sink", sink.Name()),
				zap.String("event", e.Type),
				zap.Int64("alert_id", e.Alert.ID),
				zap.Error(err),
			)
		}
	}
}

func deliver(ctx context.Context, sink Sink, e Event) {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	if err := sink.Send(ctx, e); err != nil {
		logger.Error("notification delivery failed",
			zap.String("sink", sink.Name()),
			zap.String("event", e.Type),
			zap.Int64("alert_id", e.Alert.ID),
			zap.Error(err),
		)
		return
	}
	logger.Debug("notification sent",
		zap.String("sink", sink.Name()),
		zap.String("event", e.Type),
		zap.Int64("alert_id", e.Alert.ID),
	)
}
