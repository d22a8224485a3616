// Package migrations embeds the snapshot cache schema for each supported driver.
package migrations

import (
	"embed"
	"fmt"
)

//go:embed sqlite/*.sql
var sqliteMigrations embed.FS

//go:embed postgres/*.sql
var postgresMigrations embed.FS

// ForDriver returns the migration files and their directory for a
// database/sql driver name.
func ForDriver(driver string) (embed.FS, string, error) {
	switch driver {
	case "sqlite3":
		return sqliteMigrations, "sqlite", nil
	case "postgres":
		return postgresMigrations, "postgres", nil
	default:
		return embed.FS{}, "", fmt.Errorf("unsupported database driver: %s", driver)
	}
}
