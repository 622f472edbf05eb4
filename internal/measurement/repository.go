package measurement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tmemler/roomsense/internal/infrastructure/database"
)

// Repository defines the persistence operations on measurements.
type Repository interface {
	// Insert persists a reading idempotently. The returned bool is true
	// when a row was written, false when the (sensor_id, time) pair
	// already existed.
	Insert(ctx context.Context, m Measurement) (bool, error)

	// LatestTime returns the most recent reading time for a sensor.
	// found is false when the sensor has no readings at all.
	LatestTime(ctx context.Context, sensorID string) (latest time.Time, found bool, err error)
}

// StoreRepository implements Repository against the relational store,
// acquiring its handle through the connection manager on every call.
type StoreRepository struct {
	mgr *database.Manager
}

// NewStoreRepository creates a measurement repository backed by the
// given connection manager.
func NewStoreRepository(mgr *database.Manager) *StoreRepository {
	return &StoreRepository{mgr: mgr}
}

// insertQuery relies on the unique (sensor_id, time) index: a colliding
// insert is silently dropped, never an error.
const insertQuery = `INSERT INTO measurements (time, sensor_id, t1, t2)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (sensor_id, time) DO NOTHING`

// Insert persists a reading idempotently.
//
// On a connectivity-class failure the handle is invalidated, rebuilt
// through the manager, and the insert retried exactly once. A second
// failure propagates to the caller; the pipeline absorbs it as a
// per-device skip.
func (r *StoreRepository) Insert(ctx context.Context, m Measurement) (bool, error) {
	inserted, err := r.insertOnce(ctx, m)
	if err == nil {
		return inserted, nil
	}
	if !database.IsConnectivity(err) {
		return false, err
	}

	r.mgr.Invalidate()

	inserted, retryErr := r.insertOnce(ctx, m)
	if retryErr != nil {
		return false, fmt.Errorf("inserting measurement after reconnect: %w", retryErr)
	}
	return inserted, nil
}

// insertOnce performs a single insert attempt through a fresh handle.
func (r *StoreRepository) insertOnce(ctx context.Context, m Measurement) (bool, error) {
	db, err := r.mgr.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquiring store handle: %w", err)
	}

	result, err := db.ExecContext(ctx, insertQuery, m.Time, m.SensorID, m.T1, nullFloat(m.T2))
	if err != nil {
		return false, fmt.Errorf("inserting measurement for %s: %w", m.SensorID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading insert result: %w", err)
	}
	return affected > 0, nil
}

// LatestTime returns the most recent reading time for a sensor.
//
// The query selects the raw column (rather than MAX) so the driver
// keeps the column's time type; it is served by the same index that
// enforces uniqueness.
func (r *StoreRepository) LatestTime(ctx context.Context, sensorID string) (time.Time, bool, error) {
	db, err := r.mgr.Acquire(ctx)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("acquiring store handle: %w", err)
	}

	const query = `SELECT time FROM measurements
		WHERE sensor_id = $1 ORDER BY time DESC LIMIT 1`

	var latest time.Time
	err = db.QueryRowContext(ctx, query, sensorID).Scan(&latest)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return time.Time{}, false, nil
	case err != nil:
		return time.Time{}, false, fmt.Errorf("querying latest reading for %s: %w", sensorID, err)
	}
	return latest, true, nil
}

// nullFloat converts a *float64 to sql.NullFloat64 for nullable columns.
func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
