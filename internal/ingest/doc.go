// Package ingest contains the fetch-insert pipeline and its polling
// scheduler.
//
// # Failure containment
//
// Failures are absorbed at the smallest possible granularity:
//
//   - a malformed or unpersistable device entry is skipped, its
//     siblings in the same cycle are unaffected
//   - a failed fetch aborts the cycle with zero counts; the next
//     scheduled cycle retries
//   - a panicking cycle is recovered and logged; the scheduler loop
//     continues
//
// Nothing short of context cancellation stops the daemon.
//
// # Cadence
//
// The scheduler compensates for cycle duration: it sleeps for
// max(0, interval - elapsed), so slow cycles shorten the following
// sleep down to zero rather than drifting the cadence.
package ingest
