// Package logging provides structured logging for the roomsense
// processes.
//
// It wraps log/slog with configuration-driven level, format, and output
// selection, and stamps every record with service, process, and version
// attributes so the three processes can share one log pipeline.
package logging
