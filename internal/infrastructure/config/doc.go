// Package config loads and validates configuration for the roomsense
// processes.
//
// Configuration is layered: hardcoded defaults, then an optional YAML
// file, then environment variables. The environment names are the
// deployment contract (DB_HOST, DB_PORT, DB_NAME, DB_USER, DB_PASSWORD,
// SENSOR_IDS, FETCH_INTERVAL_SECONDS, MEASUREMENT_API_URL,
// ROOM_ASSOC_CONFIG) and take precedence over everything else.
//
// Missing store credentials are reported through ErrMissingCredentials,
// which every process treats as fatal: connection retries cannot repair
// a configuration fault.
package config
