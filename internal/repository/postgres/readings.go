package postgres

import (
	"context"
	"time"

	"fertigation.io/farmwatch/internal/domain"
	"fertigation.io/farmwatch/internal/repository"
)

const readingColumns = `id, sensor_id, flow_rate, pressure, conductivity, status, "timestamp"`

// ReadingRepo implements repository.ReadingRepository.
type ReadingRepo struct{ db DBTX }

func (r *ReadingRepo) Create(ctx context.Context, in domain.NewReading) (domain.Reading, error) {
	return one[domain.Reading](ctx, r.db, "create reading",
		`INSERT INTO readings (sensor_id, flow_rate, pressure, conductivity, status)
		 VALUES ($1, $2, $3, $4, $5) RETURNING `+readingColumns,
		in.SensorID, in.FlowRate, in.Pressure, in.Conductivity, in.Status)
}

// ListRecent joins through sensors to farms; a reading whose sensor or farm
// is gone comes back with nil FarmID and FarmName.
func (r *ReadingRepo) ListRecent(ctx context.Context, f repository.ReadingFilter) ([]domain.ReadingView, error) {
	limit := repository.ClampLimit(f.Limit, repository.DefaultListLimit, 1000)
	return collect[domain.ReadingView](ctx, r.db, "list readings",
		`SELECT r.id, r.sensor_id, r.flow_rate, r.pressure, r.conductivity, r.status, r."timestamp",
		        f.id AS farm_id, f.name AS farm_name
		   FROM readings r
		   LEFT JOIN sensors s ON s.id = r.sensor_id
		   LEFT JOIN farms f ON f.id = s.farm_id
		  WHERE ($1::text IS NULL OR r.sensor_id = $1)
		    AND ($2::bigint IS NULL OR f.id = $2)
		  ORDER BY r."timestamp" DESC, r.id DESC
		  LIMIT $3`, f.SensorID, f.FarmID, limit)
}

const alertColumns = `id, farm_id, type, severity, message, resolved, created_at, resolved_at`

// AlertRepo implements repository.AlertRepository.
type AlertRepo struct{ db DBTX }

func (r *AlertRepo) Create(ctx context.Context, in domain.NewAlert) (domain.Alert, error) {
	return one[domain.Alert](ctx, r.db, "create alert",
		`INSERT INTO alerts (farm_id, type, severity, message, resolved)
		 VALUES ($1, $2, $3, $4, false) RETURNING `+alertColumns,
		in.FarmID, string(in.Type), string(in.Severity), in.Message)
}

func (r *AlertRepo) Get(ctx context.Context, id int64) (domain.Alert, error) {
	return one[domain.Alert](ctx, r.db, "get alert",
		`SELECT `+alertColumns+` FROM alerts WHERE id = $1`, id)
}

func (r *AlertRepo) List(ctx context.Context, f domain.AlertFilter, limit int) ([]domain.AlertView, error) {
	var severity *string
	if f.Severity != nil {
		s := string(*f.Severity)
		severity = &s
	}
	limit = repository.ClampLimit(limit, repository.DefaultListLimit, 1000)
	return collect[domain.AlertView](ctx, r.db, "list alerts",
		`SELECT a.id, a.farm_id, a.type, a.severity, a.message, a.resolved, a.created_at, a.resolved_at,
		        f.name AS farm_name
		   FROM alerts a
		   LEFT JOIN farms f ON f.id = a.farm_id
		  WHERE ($1::text IS NULL OR a.severity = $1)
		    AND ($2::boolean IS NULL OR a.resolved = $2)
		    AND ($3::bigint IS NULL OR a.farm_id = $3)
		  ORDER BY a.created_at DESC, a.id DESC
		  LIMIT $4`, severity, f.Resolved, f.FarmID, limit)
}

// Resolve is idempotent: resolving a resolved alert rewrites true and keeps
// the first resolved_at.
func (r *AlertRepo) Resolve(ctx context.Context, id int64) (domain.Alert, error) {
	return one[domain.Alert](ctx, r.db, "resolve alert",
		`UPDATE alerts SET resolved = true, resolved_at = COALESCE(resolved_at, now())
		  WHERE id = $1 RETURNING `+alertColumns, id)
}

func (r *AlertRepo) Delete(ctx context.Context, id int64) error {
	return execOne(ctx, r.db, "delete alert", `DELETE FROM alerts WHERE id = $1`, id)
}

func (r *AlertRepo) DeleteResolvedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM alerts WHERE resolved AND COALESCE(resolved_at, created_at) < $1`, cutoff)
	if err != nil {
		return 0, mapErr("delete resolved alerts", err)
	}
	return tag.RowsAffected(), nil
}
