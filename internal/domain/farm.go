// Package domain holds the typed records stored by the fertigation service.
//
// Import Path: fertigation.io/farmwatch/internal/domain
package domain

import "time"

// Farm is a monitored farm.
type Farm struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Location  string    `json:"location" db:"location"`
	CropType  string    `json:"crop_type" db:"crop_type"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NewFarm is the insert payload for a farm.
type NewFarm struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	CropType string `json:"crop_type"`
}

// Sensor is a flow/pressure/conductivity probe installed on a farm.
// Sensors are provisioned out-of-band (seed or direct writes).
type Sensor struct {
	ID           string     `json:"id" db:"id"`
	FarmID       int64      `json:"farm_id" db:"farm_id"`
	Type         string     `json:"type" db:"type"`
	SerialNumber string     `json:"serial_number" db:"serial_number"`
	LastUpdate   *time.Time `json:"last_update,omitempty" db:"last_update"`
}

// Schedule is a planned fertigation run. Schedules are append-only.
type Schedule struct {
	ID               int64     `json:"id" db:"id"`
	FarmID           int64     `json:"farm_id" db:"farm_id"`
	StartTime        time.Time `json:"start_time" db:"start_time"`
	Duration         int32     `json:"duration" db:"duration"`
	FertilizerAmount float64   `json:"fertilizer_amount" db:"fertilizer_amount"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// NewSchedule is the insert payload for a schedule.
type NewSchedule struct {
	FarmID           int64
	StartTime        time.Time
	Duration         int32
	FertilizerAmount float64
}
