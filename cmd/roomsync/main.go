// RoomSense roomsync - one-shot sensor-to-room association sync.
//
// roomsync reads a YAML document and makes the room_assoc table match
// it exactly, then exits. It is meant to run as a short-lived container
// or cron job next to the fetcher.
//
// Exit codes:
//
//	0 - synced, or no document to sync
//	2 - database credentials missing from the environment
//	3 - the document failed to parse or validate
//	4 - the database sync failed
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/tmemler/roomsense/internal/infrastructure/config"
	"github.com/tmemler/roomsense/internal/infrastructure/database"
	"github.com/tmemler/roomsense/internal/infrastructure/logging"
	"github.com/tmemler/roomsense/internal/roomassoc"
)

// defaultDocumentPath is used when neither the positional argument nor
// ROOM_ASSOC_CONFIG names a document.
const defaultDocumentPath = "/config/room_assoc.yml"

// connectAttempts bounds the connection retry loop. A one-shot job
// should tolerate a store that is still starting up, but not wait
// forever the way the fetcher does.
const connectAttempts = 12

// Version information - set at build time via ldflags.
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	log := logging.Default("roomsync")

	flags := pflag.NewFlagSet("roomsync", pflag.ContinueOnError)
	flags.Usage = func() {
		os.Stderr.WriteString("Usage: roomsync [config-path]\n\nSync room associations to the database from a YAML file.\n") //nolint:errcheck
		flags.PrintDefaults()
	}
	if err := flags.Parse(os.Args[1:]); err != nil {
		return 2
	}

	path := flags.Arg(0)
	if path == "" {
		path = os.Getenv("ROOM_ASSOC_CONFIG")
	}
	if path == "" {
		path = defaultDocumentPath
	}

	cfg, err := config.Load(os.Getenv("ROOMSENSE_CONFIG"))
	if err != nil {
		log.Error("loading config failed", "error", err)
		return 3
	}
	log = logging.New(cfg.Logging, "roomsync", version)
	log.Info("starting room association sync", "version", version, "document", path)

	if err := cfg.RequireStoreCredentials(); err != nil {
		log.Error("cannot sync without store credentials", "error", err)
		return 2
	}

	// A missing document is a normal deployment state: associations are
	// optional until the operator creates the file.
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Warn("document not found, nothing to sync; create it to manage room associations", "path", path)
		return 0
	}

	entries, err := roomassoc.Load(path)
	if err != nil {
		log.Error("failed to parse document", "error", err)
		return 3
	}
	log.Info("document loaded", "associations", len(entries))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	mgr := database.NewManager(database.Config{
		Driver:      "pgx",
		DSN:         cfg.Database.DSN(),
		MaxAttempts: connectAttempts,
	}, log)
	defer mgr.Close() //nolint:errcheck

	if err := roomassoc.NewSyncer(mgr, log).Sync(ctx, entries); err != nil {
		log.Error("sync failed, previous associations are untouched", "error", err)
		return 4
	}

	log.Info("sync completed successfully")
	return 0
}
