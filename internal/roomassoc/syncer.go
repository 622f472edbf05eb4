package roomassoc

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tmemler/roomsense/internal/infrastructure/database"
	"github.com/tmemler/roomsense/internal/infrastructure/logging"
)

// insertPageSize bounds the number of rows per INSERT statement.
const insertPageSize = 100

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS room_assoc (
		sensor_id  TEXT NOT NULL,
		room_id    TEXT NOT NULL,
		start_date TIMESTAMPTZ NULL,
		end_date   TIMESTAMPTZ NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_room_assoc_sensor ON room_assoc (sensor_id)`,
	`CREATE INDEX IF NOT EXISTS idx_room_assoc_room ON room_assoc (room_id)`,
}

// Syncer replaces the room_assoc table with a document's contents.
type Syncer struct {
	mgr *database.Manager
	log *logging.Logger
}

// NewSyncer creates a syncer backed by the given connection manager.
func NewSyncer(mgr *database.Manager, log *logging.Logger) *Syncer {
	return &Syncer{mgr: mgr, log: log}
}

// Sync makes room_assoc match entries exactly.
//
// The document is authoritative: rows not in entries are removed, and
// an empty entries slice empties the table. Delete and insert run in
// one transaction, so a failure partway through leaves the previous
// associations untouched.
//
// Parameters:
//   - ctx: Context for cancellation
//   - entries: The complete desired table contents
//
// Returns:
//   - error: Connection, schema, or transaction failure
func (s *Syncer) Sync(ctx context.Context, entries []Association) error {
	db, err := s.mgr.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquiring store: %w", err)
	}

	s.log.Info("ensuring room_assoc table exists")
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensuring schema: %w", err)
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM room_assoc"); err != nil {
		return fmt.Errorf("clearing room_assoc: %w", err)
	}

	for start := 0; start < len(entries); start += insertPageSize {
		end := start + insertPageSize
		if end > len(entries) {
			end = len(entries)
		}
		if err := insertPage(ctx, tx, entries[start:end]); err != nil {
			return fmt.Errorf("inserting associations: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing sync: %w", err)
	}

	s.log.Info("room associations synced", "count", len(entries))
	return nil
}

// insertPage writes one batch of rows with a single multi-row INSERT.
func insertPage(ctx context.Context, tx *sql.Tx, entries []Association) error {
	var (
		values strings.Builder
		args   = make([]any, 0, len(entries)*4)
	)

	values.WriteString("INSERT INTO room_assoc (sensor_id, room_id, start_date, end_date) VALUES ")
	for i, e := range entries {
		if i > 0 {
			values.WriteString(", ")
		}
		n := i * 4
		fmt.Fprintf(&values, "($%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4)
		args = append(args, e.SensorID, e.RoomID, nullTime(e.StartDate), nullTime(e.EndDate))
	}

	_, err := tx.ExecContext(ctx, values.String(), args...)
	return err
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
