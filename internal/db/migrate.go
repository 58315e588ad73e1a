package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogofit/backend/migrations"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// ErrMigrateDialect is returned when SQL migrations are requested for a
// database other than postgres. Those databases use AutoMigrate instead.
var ErrMigrateDialect = errors.New("db: SQL migrations require a postgres DATABASE_URL")

// NewMigrator returns a migrate instance reading the embedded migrations.
// When schema is set the migrations run inside it.
func NewMigrator(dsn, schema string) (*migrate.Migrate, error) {
	if !strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") {
		return nil, ErrMigrateDialect
	}
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("db: load migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, withSearchPath(dsn, schema))
	if err != nil {
		return nil, fmt.Errorf("db: init migrator: %w", err)
	}
	return m, nil
}

func withSearchPath(dsn, schema string) string {
	if schema == "" {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "search_path=" + schema
}

// MigrateUp applies every pending migration. No change is not an error.
func MigrateUp(m *migrate.Migrate) error {
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
