// Package migrations embeds the SQL migration files into the binary,
// so the fetcher can bootstrap the measurement schema without the files
// being present on the filesystem.
package migrations

import (
	"embed"

	"github.com/tmemler/roomsense/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	// Register embedded migrations with the database package.
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "." // Files are at root of embedded FS
}
