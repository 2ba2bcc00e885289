// Package app is the composition root. Bootstrap only orchestrates; each
// module owns its own wiring.
//
// Import Path: fertigation.io/farmwatch/internal/app
package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/riverqueue/river"

	"fertigation.io/farmwatch/internal/api/handlers"
	"fertigation.io/farmwatch/internal/app/modules"
	"fertigation.io/farmwatch/internal/config"
	"fertigation.io/farmwatch/internal/infrastructure"
	"fertigation.io/farmwatch/internal/pkg/worker"
)

// Application holds composed application dependencies.
type Application struct {
	Config  *config.Config
	Router  *gin.Engine
	DB      *infrastructure.DatabaseClients
	Pools   *worker.Pools
	Infra   *modules.Infrastructure
	Modules []modules.Module
}

// Bootstrap initializes all dependencies using module-oriented manual DI.
func Bootstrap(ctx context.Context, cfg *config.Config) (*Application, error) {
	infra, err := modules.NewInfrastructure(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init infrastructure: %w", err)
	}

	allModules := []modules.Module{
		modules.NewAccountsModule(infra),
		modules.NewFarmModule(infra),
		modules.NewStreamModule(infra),
	}

	workers := river.NewWorkers()
	var periodic []*river.PeriodicJob
	for _, mod := range allModules {
		mod.RegisterWorkers(workers)
		if p, ok := mod.(modules.PeriodicJobProvider); ok {
			periodic = append(periodic, p.PeriodicJobs()...)
		}
	}
	if err := infra.InitRiver(workers, periodic); err != nil {
		infra.Close()
		return nil, fmt.Errorf("init river workers: %w", err)
	}

	serverDeps := modules.NewServerDeps(cfg, infra, allModules)
	server := handlers.NewServer(serverDeps)

	return &Application{
		Config:  cfg,
		Router:  newRouter(cfg, server, serverDeps.JWTCfg),
		DB:      infra.DB,
		Pools:   infra.Pools,
		Infra:   infra,
		Modules: allModules,
	}, nil
}
