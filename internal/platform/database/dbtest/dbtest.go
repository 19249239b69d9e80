// Package dbtest opens throwaway SQLite databases with the production schema
// applied, for repository and HTTP tests.
package dbtest

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/payetonkawa/catalog-service/internal/platform/config"
	"github.com/payetonkawa/catalog-service/internal/platform/database"
)

// Config returns a SQLite configuration pointing at a fresh file under t.TempDir().
func Config(t testing.TB) config.DBConfig {
	t.Helper()
	return config.DBConfig{
		Driver:      config.DriverSQLite,
		DSN:         filepath.Join(t.TempDir(), "catalog_test.db"),
		AutoMigrate: true,
	}
}

// Open migrates a fresh SQLite database and returns a pool connected to it.
// The pool is closed when the test ends.
func Open(t testing.TB) *sql.DB {
	t.Helper()
	cfg := Config(t)
	require.NoError(t, database.Migrate(cfg))

	db, err := database.Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// Count returns the number of rows in table.
func Count(t testing.TB, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}
