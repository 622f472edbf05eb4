// Package database provides the store connection manager and schema
// migrations for roomsense.
//
// # Connection Manager
//
// Manager owns the single live handle to TimescaleDB (via the pgx
// database/sql driver). Acquire blocks and retries transient failures
// with a fixed 5 second delay; Invalidate discards a handle believed
// broken so the next Acquire rebuilds it. Authentication and
// configuration failures are classified by PostgreSQL error code and
// surface wrapped in ErrFatal — retrying cannot fix them, so callers
// exit instead.
//
// # Error taxonomy
//
//	IsFatal(err)        configuration-class, abort the process
//	IsConnectivity(err) transient, invalidate the handle and retry
//	anything else       data-class, handled by the caller
//
// # Migrations
//
// Migrate applies embedded SQL migrations (registered by the top-level
// migrations package) in version order, each in its own transaction.
package database
