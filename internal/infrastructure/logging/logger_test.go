package logging

import (
	"log/slog"
	"testing"

	"github.com/tmemler/roomsense/internal/infrastructure/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"nonsense", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	log := New(config.LoggingConfig{Level: "debug", Format: "text", Output: "stderr"}, "fetcher", "1.0.0")
	if log == nil || log.Logger == nil {
		t.Fatal("New() returned a logger without an underlying slog.Logger")
	}
}

func TestWith(t *testing.T) {
	log := Default("test")
	child := log.With("component", "ingest")
	if child == nil || child.Logger == nil {
		t.Fatal("With() returned a logger without an underlying slog.Logger")
	}
	if child == log {
		t.Error("With() should return a new Logger instance")
	}
}
