package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
)

// Connection management constants.
const (
	// defaultRetryInterval is the fixed delay between connection
	// attempts. Matches the deployment's healthcheck cadence.
	defaultRetryInterval = 5 * time.Second

	// connectTimeout bounds a single connection attempt (open + ping).
	connectTimeout = 5 * time.Second

	// usableTimeout bounds the liveness ping performed before a handle
	// is reused.
	usableTimeout = 2 * time.Second
)

// Logger is the minimal logging interface the manager needs.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// noopLogger discards all log output. Used when no logger is injected.
type noopLogger struct{}

func (noopLogger) Info(string, ...any) {}
func (noopLogger) Warn(string, ...any) {}

// Config contains connection manager settings.
type Config struct {
	// Driver is the database/sql driver name. Defaults to "pgx".
	// Tests inject "sqlite3" to run against an in-process store.
	Driver string

	// DSN is the driver-specific connection string.
	DSN string

	// RetryInterval is the fixed delay between failed connection
	// attempts. Defaults to 5 seconds.
	RetryInterval time.Duration

	// MaxAttempts limits connection attempts. 0 means unlimited —
	// Acquire blocks until the store is reachable or the context is
	// cancelled. One-shot processes set a small bound instead.
	MaxAttempts int
}

// Manager owns the single live connection handle to the store.
//
// It supplies a ready handle on demand (Acquire), retrying transient
// failures with a fixed delay, and discards handles believed broken
// (Invalidate) so the next Acquire rebuilds them. Authentication and
// configuration failures are never retried: they surface wrapped in
// ErrFatal and the process is expected to exit.
//
// Each process owns exactly one Manager; the handle is never shared
// across processes.
type Manager struct {
	cfg Config
	log Logger

	mu sync.Mutex
	db *sql.DB
}

// NewManager creates a connection manager. No connection is attempted
// until the first Acquire.
//
// Parameters:
//   - cfg: Connection settings (driver, DSN, retry policy)
//   - log: Logger for retry/rebuild events (nil for silent operation)
//
// Returns:
//   - *Manager: Manager ready for use
func NewManager(cfg Config, log Logger) *Manager {
	if cfg.Driver == "" {
		cfg.Driver = "pgx"
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = defaultRetryInterval
	}
	if log == nil {
		log = noopLogger{}
	}
	return &Manager{cfg: cfg, log: log}
}

// Acquire returns a usable connection handle, creating one if needed.
//
// Transient failures are retried with the configured fixed delay until
// a connection succeeds, MaxAttempts is exhausted, or ctx is
// cancelled. Fatal failures (bad credentials, unknown database) are
// returned immediately wrapped in ErrFatal.
//
// Parameters:
//   - ctx: Bounds the overall wait, including retry sleeps
//
// Returns:
//   - *sql.DB: Live handle, verified with a ping
//   - error: ctx.Err(), an ErrFatal-wrapped error, or the last
//     connection error once MaxAttempts is exhausted
func (m *Manager) Acquire(ctx context.Context) (*sql.DB, error) {
	attempts := 0
	for {
		m.mu.Lock()
		db := m.db
		m.mu.Unlock()

		if db != nil {
			if m.IsUsable(ctx, db) {
				return db, nil
			}
			m.log.Warn("connection handle no longer usable, rebuilding")
			m.Invalidate()
		}

		attempts++
		db, err := m.open(ctx)
		if err == nil {
			m.mu.Lock()
			m.db = db
			m.mu.Unlock()
			m.log.Info("connected to store", "driver", m.cfg.Driver, "attempts", attempts)
			return db, nil
		}

		if IsFatal(err) {
			return nil, fmt.Errorf("%w: %w", ErrFatal, err)
		}
		if m.cfg.MaxAttempts > 0 && attempts >= m.cfg.MaxAttempts {
			return nil, fmt.Errorf("connecting to store after %d attempts: %w", attempts, err)
		}

		m.log.Warn("store connection failed, retrying",
			"error", err,
			"attempt", attempts,
			"retry_in", m.cfg.RetryInterval,
		)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting to reconnect: %w", ctx.Err())
		case <-time.After(m.cfg.RetryInterval):
		}
	}
}

// open creates and verifies a new connection handle.
func (m *Manager) open(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open(m.cfg.Driver, m.cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening store connection: %w", err)
	}

	// One live connection per process: the pipeline is single-threaded
	// and the original system held exactly one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("verifying store connection: %w", err)
	}

	return db, nil
}

// IsUsable reports whether the handle responds to a liveness ping.
// Cheaper than a query round trip; used before reusing a cached handle.
func (m *Manager) IsUsable(ctx context.Context, db *sql.DB) bool {
	if db == nil {
		return false
	}
	pingCtx, cancel := context.WithTimeout(ctx, usableTimeout)
	defer cancel()
	return db.PingContext(pingCtx) == nil
}

// Invalidate discards the current handle. The next Acquire rebuilds it.
// Call after an operation fails with a connectivity-class error.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db != nil {
		m.db.Close() //nolint:errcheck // Handle is already considered broken
		m.db = nil
	}
}

// Close releases the connection handle. The manager can still be reused
// afterwards; the next Acquire reconnects.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db == nil {
		return nil
	}
	err := m.db.Close()
	m.db = nil
	if err != nil {
		return fmt.Errorf("closing store connection: %w", err)
	}
	return nil
}
