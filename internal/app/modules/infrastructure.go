package modules

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/riverqueue/river"
	"go.uber.org/zap"

	"fertigation.io/farmwatch/internal/cache"
	"fertigation.io/farmwatch/internal/config"
	"fertigation.io/farmwatch/internal/governance/audit"
	"fertigation.io/farmwatch/internal/infrastructure"
	"fertigation.io/farmwatch/internal/notification"
	"fertigation.io/farmwatch/internal/pkg/logger"
	"fertigation.io/farmwatch/internal/pkg/worker"
	"fertigation.io/farmwatch/internal/repository"
)

// Infrastructure holds shared cross-cutting dependencies for all modules.
// It is a provider, not a Module.
type Infrastructure struct {
	Config *config.Config
	DB     *infrastructure.DatabaseClients
	Store  *repository.Store
	Pools  *worker.Pools

	// Redis is nil when redis.addr is unset.
	Redis       *redis.Client
	Views       cache.Cache
	Revocations cache.Revocations

	AuditLogger *audit.Logger
	Hub         *notification.Hub
	// Kafka is nil when no brokers are configured.
	Kafka    *notification.KafkaSink
	Notifier *notification.Triggers
}

// NewInfrastructure connects the database and Redis, starts the worker
// pools and builds the alert notification fan-out.
func NewInfrastructure(ctx context.Context, cfg *config.Config) (*Infrastructure, error) {
	db, err := infrastructure.NewDatabaseClients(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("auto-migrate: %w", err)
		}
	}

	pools, err := worker.NewPools(ctx, worker.PoolConfig{
		GeneralPoolSize: cfg.Worker.GeneralPoolSize,
		NotifyPoolSize:  cfg.Worker.NotifyPoolSize,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init worker pools: %w", err)
	}

	infra := &Infrastructure{
		Config:      cfg,
		DB:          db,
		Store:       db.Store,
		Pools:       pools,
		Views:       cache.Nop{},
		Revocations: cache.NewMemoryRevocations(),
		AuditLogger: audit.NewLogger(db.Store.AuditLogs),
	}

	if cfg.Redis.Enabled() {
		client, err := cache.Connect(ctx, cfg.Redis)
		if err != nil {
			infra.Close()
			return nil, fmt.Errorf("init redis: %w", err)
		}
		infra.Redis = client
		infra.Views = cache.NewRedisCache(client, cfg.Redis.TTL)
		infra.Revocations = cache.NewRedisRevocations(client)
		logger.Info("Redis view cache enabled", zap.String("addr", cfg.Redis.Addr))
	} else {
		logger.Warn("redis.addr not set: views are uncached and token revocations are process-local")
	}

	infra.Hub = notification.NewHub(cfg.Server.AllowedOrigins, cfg.Server.UnsafeAllowAllOrigins)
	sinks := []notification.Sink{infra.Hub}
	if cfg.Kafka.Enabled() {
		infra.Kafka = notification.NewKafkaSink(cfg.Kafka)
		sinks = append(sinks, infra.Kafka)
		logger.Info("Kafka alert sink enabled",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic),
		)
	}
	infra.Notifier = notification.NewTriggers(pools, sinks...)

	if err := pools.SubmitDetached(worker.PoolGeneral, infra.Hub.Keepalive); err != nil {
		infra.Close()
		return nil, fmt.Errorf("start alert stream keepalive: %w", err)
	}

	return infra, nil
}

// InitRiver initializes River client on top of a prepared worker registry.
func (i *Infrastructure) InitRiver(workers *river.Workers, periodic []*river.PeriodicJob) error {
	if i == nil || i.DB == nil || i.Config == nil {
		return fmt.Errorf("infrastructure is not initialized")
	}
	if err := i.DB.InitRiverClient(workers, periodic, i.Config.River); err != nil {
		return fmt.Errorf("init river: %w", err)
	}
	return nil
}

// Close releases infra resources in reverse dependency order.
func (i *Infrastructure) Close() {
	if i == nil {
		return
	}
	if i.Hub != nil {
		i.Hub.Close()
	}
	if i.Pools != nil {
		i.Pools.Shutdown()
	}
	if i.Kafka != nil {
		if err := i.Kafka.Close(); err != nil {
			logger.Warn("failed to close kafka producer", zap.Error(err))
		}
	}
	if i.Redis != nil {
		if err := i.Redis.Close(); err != nil {
			logger.Warn("failed to close redis client", zap.Error(err))
		}
	}
	if i.DB != nil {
		i.DB.Close()
	}
}
