package measurement

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/tmemler/roomsense/internal/infrastructure/database"
)

// setupRepo returns a repository backed by a file-based SQLite store
// with the measurements schema in place. File-backed so the store
// survives handle rebuilds, like a real server does.
func setupRepo(t *testing.T) (*StoreRepository, *database.Manager) {
	t.Helper()

	mgr := database.NewManager(database.Config{
		Driver:        "sqlite3",
		DSN:           filepath.Join(t.TempDir(), "store.db"),
		RetryInterval: 10 * time.Millisecond,
	}, nil)
	t.Cleanup(func() {
		mgr.Close() //nolint:errcheck // Test cleanup
	})

	db, err := mgr.Acquire(context.Background())
	if err != nil {
		t.Fatalf("acquiring store handle: %v", err)
	}

	schema := `
		CREATE TABLE measurements (
			time      TIMESTAMP NOT NULL,
			sensor_id TEXT      NOT NULL,
			t1        REAL      NOT NULL,
			t2        REAL      NULL
		);
		CREATE UNIQUE INDEX idx_measurements_sensor_time
			ON measurements (sensor_id, time);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("creating test schema: %v", err)
	}

	return NewStoreRepository(mgr), mgr
}

func countRows(t *testing.T, mgr *database.Manager) int {
	t.Helper()

	db, err := mgr.Acquire(context.Background())
	if err != nil {
		t.Fatalf("acquiring store handle: %v", err)
	}
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM measurements`).Scan(&count); err != nil {
		t.Fatalf("counting rows: %v", err)
	}
	return count
}

func TestInsert(t *testing.T) {
	repo, mgr := setupRepo(t)
	ctx := context.Background()

	t2 := 19.5
	m := Measurement{
		Time:     time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		SensorID: "0A1B2C",
		T1:       21.3,
		T2:       &t2,
	}

	inserted, err := repo.Insert(ctx, m)
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if !inserted {
		t.Error("Insert() = false for a new reading, want true")
	}
	if got := countRows(t, mgr); got != 1 {
		t.Errorf("row count = %d, want 1", got)
	}
}

func TestInsert_Idempotent(t *testing.T) {
	repo, mgr := setupRepo(t)
	ctx := context.Background()

	m := Measurement{
		Time:     time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		SensorID: "0A1B2C",
		T1:       21.3,
	}

	if _, err := repo.Insert(ctx, m); err != nil {
		t.Fatalf("first Insert() error = %v", err)
	}

	inserted, err := repo.Insert(ctx, m)
	if err != nil {
		t.Fatalf("second Insert() error = %v", err)
	}
	if inserted {
		t.Error("second Insert() = true for a duplicate reading, want false")
	}
	if got := countRows(t, mgr); got != 1 {
		t.Errorf("row count after duplicate insert = %d, want 1", got)
	}
}

func TestInsert_NilSecondChannel(t *testing.T) {
	repo, mgr := setupRepo(t)
	ctx := context.Background()

	m := Measurement{
		Time:     time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		SensorID: "single-channel",
		T1:       18.0,
	}

	if _, err := repo.Insert(ctx, m); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	db, err := mgr.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquiring store handle: %v", err)
	}
	var t2 *float64
	if err := db.QueryRow(`SELECT t2 FROM measurements WHERE sensor_id = 'single-channel'`).Scan(&t2); err != nil {
		t.Fatalf("querying t2: %v", err)
	}
	if t2 != nil {
		t.Errorf("t2 = %v, want NULL", *t2)
	}
}

func TestInsert_SurvivesClosedHandle(t *testing.T) {
	repo, mgr := setupRepo(t)
	ctx := context.Background()

	// Forcibly close the live handle. The insert must succeed anyway:
	// the manager detects the dead handle and rebuilds it.
	db, err := mgr.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquiring store handle: %v", err)
	}
	db.Close() //nolint:errcheck // Deliberate breakage

	m := Measurement{
		Time:     time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		SensorID: "0A1B2C",
		T1:       21.3,
	}

	inserted, err := repo.Insert(ctx, m)
	if err != nil {
		t.Fatalf("Insert() after forced close error = %v", err)
	}
	if !inserted {
		t.Error("Insert() = false after reconnect, want true")
	}
}

func TestLatestTime(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	older := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	newer := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	for _, ts := range []time.Time{older, newer} {
		if _, err := repo.Insert(ctx, Measurement{Time: ts, SensorID: "0A1B2C", T1: 20}); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	latest, found, err := repo.LatestTime(ctx, "0A1B2C")
	if err != nil {
		t.Fatalf("LatestTime() error = %v", err)
	}
	if !found {
		t.Fatal("LatestTime() found = false, want true")
	}
	if !latest.Equal(newer) {
		t.Errorf("LatestTime() = %v, want %v", latest, newer)
	}
}

func TestLatestTime_NeverSeen(t *testing.T) {
	repo, _ := setupRepo(t)

	_, found, err := repo.LatestTime(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("LatestTime() error = %v", err)
	}
	if found {
		t.Error("LatestTime() found = true for a sensor with no readings")
	}
}
