package modules

import (
	"context"

	"github.com/riverqueue/river"

	"fertigation.io/farmwatch/internal/api/handlers"
	"fertigation.io/farmwatch/internal/notification"
)

// StreamModule exposes the websocket alert stream.
type StreamModule struct {
	hub *notification.Hub
}

func NewStreamModule(infra *Infrastructure) *StreamModule {
	return &StreamModule{hub: infra.Hub}
}

func (m *StreamModule) Name() string { return "stream" }

func (m *StreamModule) ContributeServerDeps(deps *handlers.ServerDeps) {
	if deps == nil || m.hub == nil {
		return
	}
	deps.Hub = m.hub
}

func (m *StreamModule) RegisterWorkers(_ *river.Workers) {}

// Shutdown disconnects subscribers before the HTTP server drains.
func (m *StreamModule) Shutdown(context.Context) error {
	if m.hub != nil {
		m.hub.Close()
	}
	return nil
}
