// Package migrations embeds SQL migration files into the binary.
//
// The bridge runs its own migrations at startup, so the SQL files do not
// need to exist on the target filesystem - they're compiled into the
// executable.
package migrations

import (
	"embed"

	"github.com/nerrad567/gray-logic-nevoton/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	// Register embedded migrations with the database package.
	// The embed directive above captures all .sql files in this directory.
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "." // Files are at root of embedded FS
}
