// Package worker provides goroutine pool management.
//
// Background work (alert fan-out, cache invalidation) goes through these
// pools rather than bare goroutines so shutdown can drain it.
//
// Import Path: fertigation.io/farmwatch/internal/pkg/worker
package worker

import (
	"context"
	"errors"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"fertigation.io/farmwatch/internal/pkg/logger"
)

// ErrPoolClosed is returned when submitting to a closed pool.
var ErrPoolClosed = errors.New("worker pool is closed")

// Pool names accepted by SubmitDetached.
const (
	PoolGeneral = "general"
	PoolNotify  = "notify"
)

// Task is a context-aware task function.
type Task func(ctx context.Context)

// Pool is one named ants pool.
type Pool struct {
	pool *ants.Pool
	name string
}

// Pools is the Worker pool collection.
type Pools struct {
	General *Pool
	// Notify runs alert fan-out to Kafka and websocket subscribers.
	Notify *Pool

	// serviceCtx is the service lifecycle context for detached tasks
	serviceCtx    context.Context
	serviceCancel context.CancelFunc
}

// PoolConfig contains Worker Pool configuration.
type PoolConfig struct {
	GeneralPoolSize int
	NotifyPoolSize  int
}

// DefaultPoolConfig returns default configuration.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		GeneralPoolSize: 100,
		NotifyPoolSize:  20,
	}
}

// NewPools creates Worker pool collection. Non-positive sizes take the
// DefaultPoolConfig value.
func NewPools(ctx context.Context, cfg PoolConfig) (*Pools, error) {
	def := DefaultPoolConfig()
	if cfg.GeneralPoolSize <= 0 {
		cfg.GeneralPoolSize = def.GeneralPoolSize
	}
	if cfg.NotifyPoolSize <= 0 {
		cfg.NotifyPoolSize = def.NotifyPoolSize
	}

	serviceCtx, serviceCancel := context.WithCancel(ctx)

	panicHandler := func(p interface{}) {
		logger.Error("Worker panic recovered",
			zap.Any("panic", p),
			zap.Stack("stack"),
		)
	}

	generalAnts, err := ants.NewPool(cfg.GeneralPoolSize,
		ants.WithPanicHandler(panicHandler),
		ants.WithNonblocking(false),
		ants.WithExpiryDuration(10*time.Second),
	)
	if err != nil {
		serviceCancel()
		return nil, err
	}

	notifyAnts, err := ants.NewPool(cfg.NotifyPoolSize,
		ants.WithPanicHandler(panicHandler),
		ants.WithNonblocking(false),
		ants.WithExpiryDuration(30*time.Second), // broker writes can stall on reconnect
	)
	if err != nil {
		generalAnts.Release()
		serviceCancel()
		return nil, err
	}

	return &Pools{
		General:       &Pool{pool: generalAnts, name: PoolGeneral},
		Notify:        &Pool{pool: notifyAnts, name: PoolNotify},
		serviceCtx:    serviceCtx,
		serviceCancel: serviceCancel,
	}, nil
}

// SubmitDetached submits a task bound to the service lifecycle context
// instead of a request context. The task outlives the request that queued it
// but stops at shutdown. Unknown pool names fall back to General. After
// Shutdown it returns ErrPoolClosed.
func (p *Pools) SubmitDetached(poolName string, task Task) error {
	var pool *Pool
	switch poolName {
	case PoolGeneral:
		pool = p.General
	case PoolNotify:
		pool = p.Notify
	default:
		pool = p.General
	}

	err := pool.pool.Submit(func() {
		select {
		case <-p.serviceCtx.Done():
			logger.Debug("Detached task skipped: service shutting down",
				zap.String("pool", pool.name),
			)
			return
		default:
		}
		task(p.serviceCtx)
	})
	if errors.Is(err, ants.ErrPoolClosed) {
		return ErrPoolClosed
	}
	return err
}

// Shutdown gracefully shuts down all pools with a timeout.
// Cancels service context first, then waits for running tasks (max 30s).
func (p *Pools) Shutdown() {
	p.serviceCancel()

	const shutdownTimeout = 30 * time.Second
	if err := p.General.pool.ReleaseTimeout(shutdownTimeout); err != nil {
		logger.Warn("General pool shutdown timeout", zap.Error(err))
	}
	if err := p.Notify.pool.ReleaseTimeout(shutdownTimeout); err != nil {
		logger.Warn("Notify pool shutdown timeout", zap.Error(err))
	}
}
