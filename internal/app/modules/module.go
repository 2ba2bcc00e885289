// Package modules groups the service's dependencies into modules that the
// composition root assembles.
//
// Import Path: fertigation.io/farmwatch/internal/app/modules
package modules

import (
	"context"

	"github.com/riverqueue/river"

	"fertigation.io/farmwatch/internal/api/handlers"
)

// Module represents a domain-specific dependency unit in the composition root.
type Module interface {
	// Name returns a stable module identifier for logging/debugging.
	Name() string

	// RegisterWorkers registers module workers into a shared River worker registry.
	RegisterWorkers(*river.Workers)

	// Shutdown performs module-local graceful cleanup.
	Shutdown(context.Context) error
}

// ServerDepsContributor is implemented by modules that own HTTP dependencies.
type ServerDepsContributor interface {
	ContributeServerDeps(*handlers.ServerDeps)
}

// PeriodicJobProvider is implemented by modules that schedule River jobs.
type PeriodicJobProvider interface {
	PeriodicJobs() []*river.PeriodicJob
}
