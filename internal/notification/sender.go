// Package notification fans alert lifecycle events out to external sinks.
//
// Delivery is best effort. Each sink send runs on the notify worker pool
// under the service lifecycle context, so a slow broker or a stalled
// websocket never holds up the request that raised the alert. Failures are
// logged and dropped.
//
// Import Path: fertigation.io/farmwatch/internal/notification
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fertigation.io/farmwatch/internal/domain"
)

// Event types.
const (
	EventAlertCreated  = "alert.created"
	EventAlertResolved = "alert.resolved"
)

// Event is one alert lifecycle change.
type Event struct {
	Type       string       `json:"type"`
	Alert      domain.Alert `json:"alert"`
	OccurredAt time.Time    `json:"occurred_at"`
}

// Encode renders e as the JSON payload every sink carries.
func (e Event) Encode() ([]byte, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode %s event for alert %d: %w", e.Type, e.Alert.ID, err)
	}
	return b, nil
}

// Sink delivers events to one destination.
type Sink interface {
	// Name identifies the sink in logs.
	Name() string
	Send(ctx context.Context, e Event) error
}
