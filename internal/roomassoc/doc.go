// Package roomassoc syncs sensor-to-room associations from a YAML
// document into the store.
//
// The document is the single source of truth: each sync atomically
// replaces the whole room_assoc table with the document's entries.
// There is no merging and no per-row reconciliation, which keeps the
// operator workflow down to "edit the file, rerun the sync".
package roomassoc
