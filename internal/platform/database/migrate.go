package database

import (
	"embed"
	"errors"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	// Register the database drivers used by golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/samber/oops"

	"github.com/payetonkawa/catalog-service/internal/platform/config"
	"github.com/payetonkawa/catalog-service/internal/platform/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies every pending embedded migration. It opens its own
// connection so that the application pool is left untouched.
func Migrate(cfg config.DBConfig) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return oops.Code("MIGRATION_SOURCE_FAILED").Wrap(err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, migrationURL(cfg))
	if err != nil {
		_ = source.Close()
		return oops.Code("MIGRATION_INIT_FAILED").With("driver", cfg.Driver).Wrap(err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			logger.Warn("Migrate: close failed", "source_error", srcErr, "db_error", dbErr)
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return oops.Code("MIGRATION_UP_FAILED").With("driver", cfg.Driver).Wrap(err)
	}

	version, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return oops.Code("MIGRATION_VERSION_FAILED").Wrap(err)
	}
	logger.Info("Database schema is up to date", "version", version)
	return nil
}

// migrationURL converts a driver DSN into the scheme golang-migrate expects.
func migrationURL(cfg config.DBConfig) string {
	if cfg.Driver == config.DriverSQLite {
		return "sqlite3://" + sqliteDSN(cfg.DSN)
	}
	if rest, found := strings.CutPrefix(cfg.DSN, "postgres://"); found {
		return "pgx5://" + rest
	}
	if rest, found := strings.CutPrefix(cfg.DSN, "postgresql://"); found {
		return "pgx5://" + rest
	}
	return cfg.DSN
}
