package database

import "testing"

func TestDialectSQLite(t *testing.T) {
	dialect := NewSQLiteDialect()

	t.Run("DriverName", func(t *testing.T) {
		if got := dialect.DriverName(); got != "sqlite3" {
			t.Errorf("DriverName() = %v, want sqlite3", got)
		}
	})

	t.Run("RewriteQuery keeps placeholders", func(t *testing.T) {
		query := "SELECT id FROM activities WHERE day_number = ? AND age_band = ?"
		if got := dialect.RewriteQuery(query); got != query {
			t.Errorf("RewriteQuery() changed the query: %v", got)
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		if got := dialect.MigrationsSubdir(); got != "sqlite" {
			t.Errorf("MigrationsSubdir() = %v, want sqlite", got)
		}
	})
}

func TestDialectPostgres(t *testing.T) {
	dialect := NewPostgresDialect()

	t.Run("DriverName", func(t *testing.T) {
		if got := dialect.DriverName(); got != "postgres" {
			t.Errorf("DriverName() = %v, want postgres", got)
		}
	})

	t.Run("RewriteQuery numbers placeholders", func(t *testing.T) {
		query := "SELECT id FROM activities WHERE day_number = ? AND age_band = ?"
		expected := "SELECT id FROM activities WHERE day_number = $1 AND age_band = $2"
		if got := dialect.RewriteQuery(query); got != expected {
			t.Errorf("RewriteQuery() = %v, want %v", got, expected)
		}
	})

	t.Run("RewriteQuery without placeholders", func(t *testing.T) {
		query := "SELECT COUNT(*) FROM activities"
		if got := dialect.RewriteQuery(query); got != query {
			t.Errorf("RewriteQuery() changed a placeholder-free query: %v", got)
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		if got := dialect.MigrationsSubdir(); got != "postgres" {
			t.Errorf("MigrationsSubdir() = %v, want postgres", got)
		}
	})
}

func TestDialectMySQL(t *testing.T) {
	dialect := NewMySQLDialect()

	t.Run("DriverName", func(t *testing.T) {
		if got := dialect.DriverName(); got != "mysql" {
			t.Errorf("DriverName() = %v, want mysql", got)
		}
	})

	t.Run("DSN appends connection params", func(t *testing.T) {
		got := dialect.DSN(DialectConfig{URL: "user:pass@tcp(localhost:3306)/dailycoach"})
		expected := "user:pass@tcp(localhost:3306)/dailycoach?parseTime=true&multiStatements=true"
		if got != expected {
			t.Errorf("DSN() = %v, want %v", got, expected)
		}
	})

	t.Run("DSN keeps existing params", func(t *testing.T) {
		url := "user:pass@tcp(localhost:3306)/dailycoach?parseTime=false&multiStatements=true"
		if got := dialect.DSN(DialectConfig{URL: url}); got != url {
			t.Errorf("DSN() = %v, want unchanged", got)
		}
	})

	t.Run("DSN appends to existing query string", func(t *testing.T) {
		got := dialect.DSN(DialectConfig{URL: "user:pass@tcp(localhost:3306)/dailycoach?charset=utf8mb4"})
		expected := "user:pass@tcp(localhost:3306)/dailycoach?charset=utf8mb4&parseTime=true&multiStatements=true"
		if got != expected {
			t.Errorf("DSN() = %v, want %v", got, expected)
		}
	})
}
