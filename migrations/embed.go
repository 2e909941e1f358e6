// Package migrations embeds the SQL migrations of the element database and
// the persistence store.
package migrations

import (
	"embed"

	"github.com/nerrad567/gray-logic-audio/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "."
}
