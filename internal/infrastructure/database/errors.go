package database

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrFatal marks connection errors that retrying cannot fix — bad
// credentials, unknown database. Processes exit non-zero on ErrFatal
// instead of retrying.
var ErrFatal = errors.New("database: fatal connection error")

// IsFatal reports whether err is a configuration-class failure.
//
// PostgreSQL error class 28 covers authorization failures (28000,
// 28P01) and 3D000 is an unknown database name. Both mean the
// deployment is misconfigured and retries are pointless.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrFatal) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if strings.HasPrefix(pgErr.Code, "28") || pgErr.Code == "3D000" {
			return true
		}
	}
	return false
}

// IsConnectivity reports whether err is a transient connectivity-class
// failure: the store is unreachable, the connection dropped, or the
// handle has been closed underneath us.
//
// This is the trigger for the rebuild-and-retry-once path on inserts
// and for Acquire's retry loop. Data errors (constraint violations,
// bad SQL) are deliberately excluded — retrying those cannot help.
func IsConnectivity(err error) bool {
	if err == nil || IsFatal(err) {
		return false
	}

	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 08: connection exceptions. 57P01-57P03: server
		// shutdown / crash / cannot connect now.
		if strings.HasPrefix(pgErr.Code, "08") ||
			pgErr.Code == "57P01" || pgErr.Code == "57P02" || pgErr.Code == "57P03" {
			return true
		}
	}

	// database/sql reports use of a closed handle with an unexported
	// error value; matching the message is the only option.
	if strings.Contains(err.Error(), "database is closed") {
		return true
	}

	return false
}
