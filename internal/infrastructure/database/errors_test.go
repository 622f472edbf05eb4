package database

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"syscall"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsFatal(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"wrapped ErrFatal", fmt.Errorf("acquire: %w", ErrFatal), true},
		{"invalid password", &pgconn.PgError{Code: "28P01"}, true},
		{"invalid authorization", &pgconn.PgError{Code: "28000"}, true},
		{"unknown database", &pgconn.PgError{Code: "3D000"}, true},
		{"connection refused class", &pgconn.PgError{Code: "08006"}, false},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"plain error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFatal(tt.err); got != tt.want {
				t.Errorf("IsFatal(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsConnectivity(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"bad conn", driver.ErrBadConn, true},
		{"wrapped bad conn", fmt.Errorf("insert: %w", driver.ErrBadConn), true},
		{"eof", io.EOF, true},
		{"connection refused", syscall.ECONNREFUSED, true},
		{"connection reset", syscall.ECONNRESET, true},
		{"pg connection failure", &pgconn.PgError{Code: "08006"}, true},
		{"pg admin shutdown", &pgconn.PgError{Code: "57P01"}, true},
		{"closed handle", errors.New("sql: database is closed"), true},
		{"auth failure is not transient", &pgconn.PgError{Code: "28P01"}, false},
		{"unique violation is not transient", &pgconn.PgError{Code: "23505"}, false},
		{"plain error", errors.New("syntax error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsConnectivity(tt.err); got != tt.want {
				t.Errorf("IsConnectivity(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
