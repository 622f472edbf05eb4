package database

import (
	"context"
	"database/sql"
	"embed"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed testdata/*.sql
var testMigrationsFS embed.FS

// withTestMigrations points the package-level migration source at the
// testdata files for the duration of a test.
func withTestMigrations(t *testing.T) {
	t.Helper()

	origFS, origDir := MigrationsFS, MigrationsDir
	MigrationsFS = testMigrationsFS
	MigrationsDir = "testdata"
	t.Cleanup(func() {
		MigrationsFS, MigrationsDir = origFS, origDir
	})
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() {
		db.Close() //nolint:errcheck // Test cleanup
	})
	return db
}

func TestMigrate(t *testing.T) {
	withTestMigrations(t)
	db := openTestDB(t)
	ctx := context.Background()

	if err := Migrate(ctx, db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	// The migrated table must be usable.
	if _, err := db.ExecContext(ctx, `INSERT INTO widgets (id, name) VALUES ('w1', 'first')`); err != nil {
		t.Fatalf("inserting into migrated table: %v", err)
	}

	// Both migrations must be recorded.
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&count); err != nil {
		t.Fatalf("counting applied migrations: %v", err)
	}
	if count != 2 {
		t.Errorf("applied migrations = %d, want 2", count)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	withTestMigrations(t)
	db := openTestDB(t)
	ctx := context.Background()

	if err := Migrate(ctx, db); err != nil {
		t.Fatalf("first Migrate() error = %v", err)
	}
	if err := Migrate(ctx, db); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&count); err != nil {
		t.Fatalf("counting applied migrations: %v", err)
	}
	if count != 2 {
		t.Errorf("applied migrations after rerun = %d, want 2", count)
	}
}

func TestParseMigrationFilename(t *testing.T) {
	version, name, err := parseMigrationFilename("20250301_000000_create_widgets.up.sql")
	if err != nil {
		t.Fatalf("parseMigrationFilename() error = %v", err)
	}
	if version != "20250301_000000" {
		t.Errorf("version = %q, want 20250301_000000", version)
	}
	if name != "create_widgets" {
		t.Errorf("name = %q, want create_widgets", name)
	}

	if _, _, err := parseMigrationFilename("bogus.up.sql"); err == nil {
		t.Error("parseMigrationFilename() should reject a filename without a version")
	}
}
