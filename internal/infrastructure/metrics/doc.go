// Package metrics exposes optional Prometheus counters for the fetch
// daemon.
//
// The endpoint is off by default; the exit-status and log contract of
// the processes does not depend on it.
package metrics
