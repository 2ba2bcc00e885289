package postgres

import (
	"context"

	"fertigation.io/farmwatch/internal/domain"
)

const farmColumns = `id, name, location, crop_type, created_at`

// FarmRepo implements repository.FarmRepository.
type FarmRepo struct{ db DBTX }

func (r *FarmRepo) List(ctx context.Context) ([]domain.Farm, error) {
	return collect[domain.Farm](ctx, r.db, "list farms",
		`SELECT `+farmColumns+` FROM farms ORDER BY name`)
}

func (r *FarmRepo) Get(ctx context.Context, id int64) (domain.Farm, error) {
	return one[domain.Farm](ctx, r.db, "get farm",
		`SELECT `+farmColumns+` FROM farms WHERE id = $1`, id)
}

func (r *FarmRepo) Create(ctx context.Context, in domain.NewFarm) (domain.Farm, error) {
	return one[domain.Farm](ctx, r.db, "create farm",
		`INSERT INTO farms (name, location, crop_type) VALUES ($1, $2, $3)
		 RETURNING `+farmColumns,
		in.Name, in.Location, in.CropType)
}

func (r *FarmRepo) Upsert(ctx context.Context, in domain.NewFarm) (domain.Farm, error) {
	return one[domain.Farm](ctx, r.db, "upsert farm",
		`INSERT INTO farms (name, location, crop_type) VALUES ($1, $2, $3)
		 ON CONFLICT (name) DO UPDATE SET location = EXCLUDED.location, crop_type = EXCLUDED.crop_type
		 RETURNING `+farmColumns,
		in.Name, in.Location, in.CropType)
}

func (r *FarmRepo) Delete(ctx context.Context, id int64) error {
	return execOne(ctx, r.db, "delete farm", `DELETE FROM farms WHERE id = $1`, id)
}

const sensorColumns = `id, farm_id, type, serial_number, last_update`

// SensorRepo implements repository.SensorRepository.
type SensorRepo struct{ db DBTX }

func (r *SensorRepo) Get(ctx context.Context, id string) (domain.Sensor, error) {
	return one[domain.Sensor](ctx, r.db, "get sensor",
		`SELECT `+sensorColumns+` FROM sensors WHERE id = $1`, id)
}

func (r *SensorRepo) List(ctx context.Context, farmID *int64) ([]domain.Sensor, error) {
	return collect[domain.Sensor](ctx, r.db, "list sensors",
		`SELECT `+sensorColumns+` FROM sensors
		 WHERE ($1::bigint IS NULL OR farm_id = $1)
		 ORDER BY id`, farmID)
}

func (r *SensorRepo) Upsert(ctx context.Context, s domain.Sensor) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO sensors (id, farm_id, type, serial_number, last_update)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET farm_id = EXCLUDED.farm_id, type = EXCLUDED.type,
		   serial_number = EXCLUDED.serial_number`,
		s.ID, s.FarmID, s.Type, s.SerialNumber, s.LastUpdate)
	return mapErr("upsert sensor", err)
}

const scheduleColumns = `id, farm_id, start_time, duration, fertilizer_amount, created_at`

// ScheduleRepo implements repository.ScheduleRepository.
type ScheduleRepo struct{ db DBTX }

func (r *ScheduleRepo) Create(ctx context.Context, in domain.NewSchedule) (domain.Schedule, error) {
	return one[domain.Schedule](ctx, r.db, "create schedule",
		`INSERT INTO schedules (farm_id, start_time, duration, fertilizer_amount)
		 VALUES ($1, $2, $3, $4) RETURNING `+scheduleColumns,
		in.FarmID, in.StartTime, in.Duration, in.FertilizerAmount)
}

func (r *ScheduleRepo) List(ctx context.Context, farmID *int64, limit int) ([]domain.Schedule, error) {
	return collect[domain.Schedule](ctx, r.db, "list schedules",
		`SELECT `+scheduleColumns+` FROM schedules
		 WHERE ($1::bigint IS NULL OR farm_id = $1)
		 ORDER BY start_time DESC LIMIT $2`, farmID, limit)
}
