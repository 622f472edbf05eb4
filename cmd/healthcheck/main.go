// RoomSense healthcheck - container liveness probe for the fetcher.
//
// The probe exits 0 while fresh data is arriving and 1 otherwise, the
// contract Docker and systemd health checks expect. It checks the
// store, not the daemon process: a fetcher that runs but inserts
// nothing is exactly the failure mode worth catching.
package main

import (
	"context"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/tmemler/roomsense/internal/health"
	"github.com/tmemler/roomsense/internal/infrastructure/config"
	"github.com/tmemler/roomsense/internal/infrastructure/database"
	"github.com/tmemler/roomsense/internal/infrastructure/logging"
	"github.com/tmemler/roomsense/internal/measurement"
)

// probeTimeout bounds the whole check. A probe that cannot reach the
// store quickly is itself a failed probe; it must never hang the
// orchestrator's health loop.
const probeTimeout = 10 * time.Second

// Version information - set at build time via ldflags.
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	log := logging.Default("healthcheck")

	cfg, err := config.Load(os.Getenv("ROOMSENSE_CONFIG"))
	if err != nil {
		log.Error("loading config failed", "error", err)
		return 1
	}
	log = logging.New(cfg.Logging, "healthcheck", version)

	// No sensors means nothing can be stale; pass without touching the
	// store so an idle deployment stays healthy.
	if len(cfg.Sensors.IDs) == 0 {
		log.Info("no sensors configured, healthcheck passes")
		return 0
	}

	if err := cfg.RequireStoreCredentials(); err != nil {
		log.Error("healthcheck cannot reach the store", "error", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	// One attempt only. Unlike the fetcher, the probe must answer now;
	// a retry loop would just mask an unreachable store as a hang.
	mgr := database.NewManager(database.Config{
		Driver:      "pgx",
		DSN:         cfg.Database.DSN(),
		MaxAttempts: 1,
	}, log)
	defer mgr.Close() //nolint:errcheck

	probe := health.NewProbe(measurement.NewStoreRepository(mgr), cfg.StalenessThreshold(), log)
	report, err := probe.Run(ctx, cfg.Sensors.IDs)
	if err != nil {
		log.Error("healthcheck failed", "error", err)
		return 1
	}

	if !report.Healthy {
		log.Error("no sensor reported within the freshness window",
			"stale", report.Stale,
			"missing", report.Missing,
			"threshold", cfg.StalenessThreshold(),
		)
		return 1
	}

	log.Info("healthcheck passed",
		"recent", report.Recent,
		"stale", report.Stale,
		"missing", report.Missing,
	)
	return 0
}
