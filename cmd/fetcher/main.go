// RoomSense fetcher - temperature telemetry ingestion daemon.
//
// The fetcher polls the Mobile Alerts measurement API on a fixed
// cadence and writes each reading into TimescaleDB exactly once. It is
// designed to run unattended for months: the database connection is
// retried indefinitely, a failed poll waits for the next cycle, and a
// malformed device entry never takes down its siblings.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/tmemler/roomsense/migrations"

	"github.com/tmemler/roomsense/internal/health"
	"github.com/tmemler/roomsense/internal/infrastructure/config"
	"github.com/tmemler/roomsense/internal/infrastructure/database"
	"github.com/tmemler/roomsense/internal/infrastructure/logging"
	"github.com/tmemler/roomsense/internal/infrastructure/metrics"
	"github.com/tmemler/roomsense/internal/infrastructure/mqtt"
	"github.com/tmemler/roomsense/internal/ingest"
	"github.com/tmemler/roomsense/internal/measurement"
	"github.com/tmemler/roomsense/internal/mobilealerts"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual daemon logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	log := logging.Default("fetcher")
	log.Info("starting RoomSense fetcher",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	cfg, err := config.Load(os.Getenv("ROOMSENSE_CONFIG"))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.RequireStoreCredentials(); err != nil {
		return err
	}

	log = logging.New(cfg.Logging, "fetcher", version)
	log.Info("configuration loaded",
		"sensors", len(cfg.Sensors.IDs),
		"interval", cfg.FetchInterval(),
	)

	// The store connection is retried indefinitely: the daemon must
	// outlast database restarts without operator intervention.
	mgr := database.NewManager(database.Config{
		Driver: "pgx",
		DSN:    cfg.Database.DSN(),
	}, log)
	defer mgr.Close() //nolint:errcheck

	db, err := mgr.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquiring store: %w", err)
	}
	if err := database.Migrate(ctx, db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Info("database migrations complete")

	repo := measurement.NewStoreRepository(mgr)
	client := mobilealerts.NewClient(cfg.Fetch.APIURL, cfg.FetchTimeout())
	pipeline := ingest.NewPipeline(client, repo, log)

	if cfg.MQTT.Enabled {
		publisher, err := mqtt.Connect(cfg.MQTT)
		if err != nil {
			// Live fan-out is a side channel; ingestion proceeds
			// without it.
			log.Warn("mqtt connection failed, continuing without live publishing", "error", err)
		} else {
			defer publisher.Close()
			pipeline.SetPublisher(publisher)
			log.Info("mqtt publisher connected",
				"host", cfg.MQTT.Broker.Host,
				"port", cfg.MQTT.Broker.Port,
			)
		}
	}

	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		pipeline.SetMetrics(metrics.NewIngest(reg))
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Addr, reg, log); err != nil {
				log.Error("metrics endpoint failed", "error", err)
			}
		}()
		log.Info("metrics endpoint enabled", "addr", cfg.Metrics.Addr)
	}

	// An initial staleness report gives operators an immediate picture
	// when the daemon restarts after an outage.
	probe := health.NewProbe(repo, cfg.StalenessThreshold(), log)
	if report, probeErr := probe.Run(ctx, cfg.Sensors.IDs); probeErr == nil {
		log.Info("startup staleness report",
			"recent", report.Recent,
			"stale", report.Stale,
			"missing", report.Missing,
		)
	}

	scheduler := ingest.NewScheduler(cfg.FetchInterval(), cfg.Sensors.IDs, pipeline, log)
	return scheduler.Run(ctx)
}
