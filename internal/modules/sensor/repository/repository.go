package repository

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"

	"sensordash/internal/modules/sensor/types"
)

//go:embed sql/upsert-reading.sql
var upsertReadingSQL string

//go:embed sql/get-readings.sql
var getReadingsSQL string

//go:embed sql/get-readings-count.sql
var getReadingsCountSQL string

// ReadingRepository archives reconciled readings so the in-memory state can
// be warm-started across restarts. It is a side channel of the poll loop,
// never the source of truth for the dashboard.
type ReadingRepository interface {
	UpsertReadings(readings []types.Reading) error
	LoadReadings() ([]types.Reading, error)
	CountReadings() (int, error)
}

type repositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) ReadingRepository {
	return &repositoryImpl{db: db}
}

// UpsertReadings writes the batch in one transaction, keyed by (date,time) so
// re-archiving the same snapshot is idempotent.
func (r *repositoryImpl) UpsertReadings(readings []types.Reading) error {
	if len(readings) == 0 {
		return nil
	}
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.Prepare(upsertReadingSQL)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			slog.Error("close upsert statement", "error", err)
		}
	}()

	for _, rec := range readings {
		var loc any
		if rec.Location != "" {
			loc = rec.Location
		}
		if _, err := stmt.Exec(rec.Date, rec.Time, rec.Temperature, rec.Humidity, loc); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("upsert reading %s: %w", rec.Key(), err)
		}
	}
	return tx.Commit()
}

func (r *repositoryImpl) LoadReadings() ([]types.Reading, error) {
	rows, err := r.db.Query(getReadingsSQL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close readings rows", "error", err)
		}
	}()

	var out []types.Reading
	for rows.Next() {
		var rec types.Reading
		if err := rows.Scan(&rec.Date, &rec.Time, &rec.Temperature, &rec.Humidity, &rec.Location); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) CountReadings() (int, error) {
	var n int
	err := r.db.QueryRow(getReadingsCountSQL).Scan(&n)
	return n, err
}
