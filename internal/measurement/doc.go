// Package measurement defines the temperature reading type and its
// store repository.
//
// Inserts are idempotent: the measurements table carries a unique
// (sensor_id, time) index and the insert uses ON CONFLICT DO NOTHING,
// so a retried cycle never duplicates rows. Connectivity failures on
// insert trigger exactly one handle rebuild and retry through the
// connection manager; everything past that is the caller's problem.
package measurement
