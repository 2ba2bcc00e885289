package domain

import (
	"strconv"
	"time"
)

// LowFlowThreshold is the flow rate (L/min) below which a reading is
// flagged and a Low Flow alert is derived.
const LowFlowThreshold = 10.0

// Reading status values.
const (
	StatusNormal  = "Normal"
	StatusLowFlow = "Low Flow"
)

// Reading is a single sensor measurement. Readings are immutable once stored.
type Reading struct {
	ID           int64     `json:"id" db:"id"`
	SensorID     string    `json:"sensor_id" db:"sensor_id"`
	FlowRate     float64   `json:"flow_rate" db:"flow_rate"`
	Pressure     float64   `json:"pressure" db:"pressure"`
	Conductivity float64   `json:"conductivity" db:"conductivity"`
	Status       string    `json:"status" db:"status"`
	Timestamp    time.Time `json:"timestamp" db:"timestamp"`
}

// NewReading is the insert payload for a reading.
type NewReading struct {
	SensorID     string
	FlowRate     float64
	Pressure     float64
	Conductivity float64
	Status       string
}

// ReadingView is a reading joined with the farm that owns its sensor.
// FarmID and FarmName are nil when the sensor row is missing.
type ReadingView struct {
	Reading
	FarmID   *int64  `json:"farm_id,omitempty" db:"farm_id"`
	FarmName *string `json:"farm_name,omitempty" db:"farm_name"`
}

// ReadingStatus classifies a flow rate.
func ReadingStatus(flowRate float64) string {
	if IsLowFlow(flowRate) {
		return StatusLowFlow
	}
	return StatusNormal
}

// IsLowFlow reports whether flowRate is strictly below LowFlowThreshold.
func IsLowFlow(flowRate float64) bool {
	return flowRate < LowFlowThreshold
}

// FormatFlowRate renders a flow rate the shortest way that round-trips.
func FormatFlowRate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
