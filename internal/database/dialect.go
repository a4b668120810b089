package database

import (
	"database/sql"
	"regexp"
	"strconv"
)

// Dialect abstracts the differences between the supported SQL backends
type Dialect interface {
	// DriverName returns the driver name for sql.Open
	DriverName() string

	// DSN builds the data source name from the dialect's config
	DSN(config DialectConfig) string

	// RewriteQuery converts ? placeholders to the backend's syntax
	RewriteQuery(query string) string

	// ConfigureConnection applies backend-specific connection settings
	ConfigureConnection(db *sql.DB) error

	// MigrationsSubdir names the per-backend migrations subdirectory
	MigrationsSubdir() string

	// CreateMigrationsTableQuery returns the SQL for the migration
	// tracking table
	CreateMigrationsTableQuery() string
}

// DialectConfig holds connection parameters. Path is used by SQLite,
// URL by PostgreSQL and MySQL.
type DialectConfig struct {
	Path string
	URL  string
}

var placeholderRegexp = regexp.MustCompile(`\?`)

// rewritePlaceholdersToNumbered converts ? placeholders to $1, $2, ...
func rewritePlaceholdersToNumbered(query string) string {
	counter := 0
	return placeholderRegexp.ReplaceAllStringFunc(query, func(string) string {
		counter++
		return "$" + strconv.Itoa(counter)
	})
}
