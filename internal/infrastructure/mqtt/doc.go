// Package mqtt provides the optional live measurement publisher.
//
// The store is the system of record; MQTT is a best-effort side
// channel for dashboards and automations that want readings as they
// arrive instead of polling the database. Nothing in the ingestion
// path depends on a broker being reachable.
package mqtt
