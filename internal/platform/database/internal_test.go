package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/payetonkawa/catalog-service/internal/platform/config"
)

func TestMigrationURL(t *testing.T) {
	tests := []struct {
		cfg  config.DBConfig
		want string
	}{
		{config.DBConfig{Driver: config.DriverPgx, DSN: "postgres://u:p@h:5432/db"}, "pgx5://u:p@h:5432/db"},
		{config.DBConfig{Driver: config.DriverPostgres, DSN: "postgresql://u:p@h/db"}, "pgx5://u:p@h/db"},
		{config.DBConfig{Driver: config.DriverSQLite, DSN: "/tmp/c.db"}, "sqlite3:///tmp/c.db?_foreign_keys=on&_busy_timeout=5000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, migrationURL(tt.cfg))
	}
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "file.db?_foreign_keys=on&_busy_timeout=5000", sqliteDSN("file.db"))
	assert.Equal(t, "file.db?mode=rwc&_foreign_keys=on&_busy_timeout=5000", sqliteDSN("file.db?mode=rwc"))
	assert.Equal(t, "file.db?_fk=1&_busy_timeout=10", sqliteDSN("file.db?_fk=1&_busy_timeout=10"))
}
