package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server timeouts for the metrics endpoint.
const (
	readTimeout     = 5 * time.Second
	writeTimeout    = 10 * time.Second
	shutdownTimeout = 5 * time.Second
)

// Logger is the minimal logging interface the metrics server needs.
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// Ingest holds the fetch daemon's counters.
//
// All counters are monotonic; rates and ratios are derived in the
// scrape backend.
type Ingest struct {
	// Cycles counts completed poll cycles, failed or not.
	Cycles prometheus.Counter

	// CycleFailures counts cycles aborted before any device was
	// processed (network failure, bad payload).
	CycleFailures prometheus.Counter

	// Received counts device entries seen in API responses.
	Received prometheus.Counter

	// Inserted counts rows actually written to the store.
	Inserted prometheus.Counter

	// Deduplicated counts readings dropped by the idempotency
	// constraint.
	Deduplicated prometheus.Counter

	// Skipped counts device entries dropped for data-quality reasons.
	Skipped prometheus.Counter
}

// NewIngest creates and registers the ingest counters.
//
// Parameters:
//   - reg: Registry to register with (use prometheus.NewRegistry, not
//     the global default, so tests stay independent)
//
// Returns:
//   - *Ingest: Registered counter set
func NewIngest(reg prometheus.Registerer) *Ingest {
	factory := promauto.With(reg)
	return &Ingest{
		Cycles: factory.NewCounter(prometheus.CounterOpts{
			Name: "roomsense_cycles_total",
			Help: "Completed poll cycles.",
		}),
		CycleFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "roomsense_cycle_failures_total",
			Help: "Poll cycles aborted by fetch or payload failures.",
		}),
		Received: factory.NewCounter(prometheus.CounterOpts{
			Name: "roomsense_devices_received_total",
			Help: "Device entries received from the measurement API.",
		}),
		Inserted: factory.NewCounter(prometheus.CounterOpts{
			Name: "roomsense_measurements_inserted_total",
			Help: "Measurement rows written to the store.",
		}),
		Deduplicated: factory.NewCounter(prometheus.CounterOpts{
			Name: "roomsense_measurements_deduplicated_total",
			Help: "Readings dropped by the (sensor_id, time) constraint.",
		}),
		Skipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "roomsense_devices_skipped_total",
			Help: "Device entries skipped for data-quality reasons.",
		}),
	}
}

// Serve exposes the registry on /metrics until ctx is cancelled.
//
// Blocks; run it in its own goroutine. Serve errors other than a clean
// shutdown are returned.
func Serve(ctx context.Context, addr string, reg *prometheus.Registry, log Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.Info("metrics endpoint listening", "addr", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
