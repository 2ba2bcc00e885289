// Package postgres implements the repository interfaces on PostgreSQL
// through pgx v5.
//
// Import Path: fertigation.io/farmwatch/internal/repository/postgres
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	apperrors "fertigation.io/farmwatch/internal/pkg/errors"
	"fertigation.io/farmwatch/internal/repository"
)

//go:embed schema.sql
var schemaSQL string

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Schema returns the embedded DDL.
func Schema() string { return schemaSQL }

// Migrate applies the embedded schema. Every statement is idempotent.
func Migrate(ctx context.Context, db DBTX) error {
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// NewStore wires every repository onto db.
func NewStore(db DBTX) *repository.Store {
	return &repository.Store{
		Farms:          &FarmRepo{db: db},
		Sensors:        &SensorRepo{db: db},
		Readings:       &ReadingRepo{db: db},
		Alerts:         &AlertRepo{db: db},
		Schedules:      &ScheduleRepo{db: db},
		Reports:        &ReportRepo{db: db},
		Profiles:       &ProfileRepo{db: db},
		ContactQueries: &ContactQueryRepo{db: db},
		AuditLogs:      &AuditLogRepo{db: db},
	}
}

const uniqueViolation = "23505"

// mapErr lifts driver errors onto the shared sentinels.
func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, apperrors.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w: %s", op, apperrors.ErrAlreadyExists, pgErr.ConstraintName)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// collect runs a query and scans every row into T by column name.
func collect[T any](ctx context.Context, db DBTX, op, sql string, args ...any) ([]T, error) {
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapErr(op, err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, mapErr(op, err)
	}
	return out, nil
}

// one runs a query expected to yield exactly one row.
func one[T any](ctx context.Context, db DBTX, op, sql string, args ...any) (T, error) {
	var zero T
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return zero, mapErr(op, err)
	}
	out, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[T])
	if err != nil {
		return zero, mapErr(op, err)
	}
	return out, nil
}

// execOne runs a statement that must touch exactly one row.
func execOne(ctx context.Context, db DBTX, op, sql string, args ...any) error {
	tag, err := db.Exec(ctx, sql, args...)
	if err != nil {
		return mapErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, apperrors.ErrNotFound)
	}
	return nil
}
