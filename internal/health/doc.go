// Package health implements the staleness probe behind the container
// health check.
//
// The probe asks one question: is fresh data still arriving? It reads
// the latest stored timestamp for each configured sensor and passes as
// long as any one of them falls inside the freshness window. With no
// sensors configured the probe passes vacuously, so an idle deployment
// is never reported as broken.
package health
