package domain

import (
	"fmt"
	"time"
)

// AlertType enumerates alert kinds (alert_type enum in the schema).
type AlertType string

const (
	AlertTypeClogging     AlertType = "Clogging"
	AlertTypePressureDrop AlertType = "Pressure Drop"
	AlertTypeLowFlow      AlertType = "Low Flow"
	AlertTypeSystemError  AlertType = "System Error"
)

// Severity enumerates alert severities (severity_level enum in the schema).
type Severity string

const (
	SeverityLow    Severity = "Low"
	SeverityMedium Severity = "Medium"
	SeverityHigh   Severity = "High"
)

// ParseAlertType validates s against the alert_type enum.
func ParseAlertType(s string) (AlertType, error) {
	switch t := AlertType(s); t {
	case AlertTypeClogging, AlertTypePressureDrop, AlertTypeLowFlow, AlertTypeSystemError:
		return t, nil
	}
	return "", fmt.Errorf("unknown alert type %q", s)
}

// ParseSeverity validates s against the severity_level enum.
func ParseSeverity(s string) (Severity, error) {
	switch sev := Severity(s); sev {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return sev, nil
	}
	return "", fmt.Errorf("unknown severity %q", s)
}

// Alert is a flagged condition on a farm. The only mutation is the
// resolved flag flipping from false to true; ResolvedAt records the first
// resolution and is kept on repeat resolutions.
type Alert struct {
	ID         int64      `json:"id" db:"id"`
	FarmID     int64      `json:"farm_id" db:"farm_id"`
	Type       AlertType  `json:"type" db:"type"`
	Severity   Severity   `json:"severity" db:"severity"`
	Message    string     `json:"message" db:"message"`
	Resolved   bool       `json:"resolved" db:"resolved"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty" db:"resolved_at"`
}

// NewAlert is the insert payload for an alert. Resolved always starts false.
type NewAlert struct {
	FarmID   int64
	Type     AlertType
	Severity Severity
	Message  string
}

// AlertView is an alert joined with its farm name.
type AlertView struct {
	Alert
	FarmName *string `json:"farm_name,omitempty" db:"farm_name"`
}

// AlertFilter narrows alert listings. Nil fields do not filter.
type AlertFilter struct {
	Severity *Severity
	Resolved *bool
	FarmID   *int64
}

// LowFlowAlert builds the alert derived from a low-flow reading.
func LowFlowAlert(farmID int64, flowRate float64) NewAlert {
	return NewAlert{
		FarmID:   farmID,
		Type:     AlertTypeLowFlow,
		Severity: SeverityHigh,
		Message:  fmt.Sprintf("Flow rate below threshold: %s L/min", FormatFlowRate(flowRate)),
	}
}
