// Package repository declares the tabular store the service runs on.
//
// Implementations return errors wrapping apperrors.ErrNotFound for missing
// rows and apperrors.ErrAlreadyExists for unique violations; everything else
// is passed through wrapped with the failing operation.
//
// Import Path: fertigation.io/farmwatch/internal/repository
package repository

import (
	"context"
	"time"

	"fertigation.io/farmwatch/internal/domain"
)

// FarmRepository stores farms.
type FarmRepository interface {
	List(ctx context.Context) ([]domain.Farm, error)
	Get(ctx context.Context, id int64) (domain.Farm, error)
	Create(ctx context.Context, in domain.NewFarm) (domain.Farm, error)
	// Upsert inserts or replaces a farm by name. Used by fixtures.
	Upsert(ctx context.Context, in domain.NewFarm) (domain.Farm, error)
	Delete(ctx context.Context, id int64) error
}

// SensorRepository stores sensors.
type SensorRepository interface {
	Get(ctx context.Context, id string) (domain.Sensor, error)
	// List returns sensors, optionally limited to one farm.
	List(ctx context.Context, farmID *int64) ([]domain.Sensor, error)
	Upsert(ctx context.Context, s domain.Sensor) error
}

// ReadingFilter narrows reading listings. Nil fields do not filter.
type ReadingFilter struct {
	SensorID *string
	FarmID   *int64
	Limit    int
}

// ReadingRepository stores readings. Readings are never updated.
type ReadingRepository interface {
	Create(ctx context.Context, in domain.NewReading) (domain.Reading, error)
	// ListRecent returns readings newest first, joined with their farm.
	ListRecent(ctx context.Context, f ReadingFilter) ([]domain.ReadingView, error)
}

// AlertRepository stores alerts.
type AlertRepository interface {
	Create(ctx context.Context, in domain.NewAlert) (domain.Alert, error)
	Get(ctx context.Context, id int64) (domain.Alert, error)
	// List returns alerts newest first, joined with their farm name.
	List(ctx context.Context, f domain.AlertFilter, limit int) ([]domain.AlertView, error)
	// Resolve sets resolved=true and returns the updated row.
	Resolve(ctx context.Context, id int64) (domain.Alert, error)
	Delete(ctx context.Context, id int64) error
	// DeleteResolvedBefore removes resolved alerts created before cutoff.
	DeleteResolvedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// ScheduleRepository stores fertigation schedules.
type ScheduleRepository interface {
	Create(ctx context.Context, in domain.NewSchedule) (domain.Schedule, error)
	List(ctx context.Context, farmID *int64, limit int) ([]domain.Schedule, error)
}

// ReportRepository stores submitted reports.
type ReportRepository interface {
	Create(ctx context.Context, in domain.NewReport) (domain.Report, error)
	List(ctx context.Context, limit int) ([]domain.ReportView, error)
}

// ProfileRepository stores user profiles and their password hashes.
type ProfileRepository interface {
	Create(ctx context.Context, in domain.NewProfile) (domain.Profile, error)
	Get(ctx context.Context, id string) (domain.Profile, error)
	CredentialsByEmail(ctx context.Context, email string) (domain.Credentials, error)
	List(ctx context.Context) ([]domain.Profile, error)
}

// ContactQueryRepository stores public contact form messages.
type ContactQueryRepository interface {
	Create(ctx context.Context, in domain.NewContactQuery) (domain.ContactQuery, error)
	List(ctx context.Context, limit int) ([]domain.ContactQuery, error)
}

// AuditEntry is one append-only audit record.
type AuditEntry struct {
	ID           string         `json:"id" db:"id"`
	Action       string         `json:"action" db:"action"`
	ResourceType string         `json:"resource_type" db:"resource_type"`
	ResourceID   string         `json:"resource_id" db:"resource_id"`
	Actor        string         `json:"actor" db:"actor"`
	Details      map[string]any `json:"details,omitempty" db:"details"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
}

// AuditLogRepository appends audit records. There is no delete.
type AuditLogRepository interface {
	Append(ctx context.Context, e AuditEntry) error
	List(ctx context.Context, limit int) ([]AuditEntry, error)
}

// Store bundles every repository the service uses.
type Store struct {
	Farms          FarmRepository
	Sensors        SensorRepository
	Readings       ReadingRepository
	Alerts         AlertRepository
	Schedules      ScheduleRepository
	Reports        ReportRepository
	Profiles       ProfileRepository
	ContactQueries ContactQueryRepository
	AuditLogs      AuditLogRepository
}

// DefaultListLimit caps list endpoints that do not pass a limit.
const DefaultListLimit = 100

// ClampLimit returns limit when it is in (0, max], otherwise def.
func ClampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
