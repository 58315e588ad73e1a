package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gogofit/backend/internal/config"
	"github.com/gogofit/backend/internal/logging"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

var ErrUnsupportedDSN = errors.New("db: DATABASE_URL must be a postgres URL or sqlite:<path>")

// Options tune the pool and naming of an opened connection.
type Options struct {
	Schema          string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Logger          gormlogger.Interface
}

// Dialector picks the gorm driver from the DSN.
func Dialector(dsn string) (gorm.Dialector, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"), strings.Contains(dsn, "host="):
		return postgres.Open(dsn), nil
	case strings.HasPrefix(dsn, "sqlite:"):
		path := strings.TrimPrefix(dsn, "sqlite:")
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return sqlite.Open(path + sep + "_foreign_keys=on"), nil
	}
	return nil, ErrUnsupportedDSN
}

// Open opens a connection for dsn.
func Open(dsn string, opts Options) (*gorm.DB, error) {
	dialector, err := Dialector(dsn)
	if err != nil {
		return nil, err
	}
	return OpenDialector(dialector, opts)
}

// OpenDialector opens a connection with an explicit driver.
func OpenDialector(dialector gorm.Dialector, opts Options) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		Logger:         opts.Logger,
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}
	if opts.Schema != "" {
		gcfg.NamingStrategy = schema.NamingStrategy{TablePrefix: opts.Schema + "."}
	}

	d, err := gorm.Open(dialector, gcfg)
	if err != nil {
		return nil, fmt.Errorf("db: open: %w", err)
	}

	if opts.Schema != "" {
		if err := EnsureSchema(d, opts.Schema); err != nil {
			return nil, fmt.Errorf("db: ensure schema %s: %w", opts.Schema, err)
		}
	}

	sqlDB, err := d.DB()
	if err != nil {
		return nil, fmt.Errorf("db: get sql.DB: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
	return d, nil
}

// Connect opens the configured database.
func Connect(cfg config.Config) (*gorm.DB, error) {
	d, err := Open(cfg.DatabaseURL, Options{
		Schema:          cfg.DBSchema,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		Logger:          logging.GormLogger(log.Logger),
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("dialect", d.Dialector.Name()).Msg("Connected to database")
	return d, nil
}

// Ping checks that the database answers.
func Ping(ctx context.Context, d *gorm.DB) error {
	sqlDB, err := d.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the pool behind d.
func Close(d *gorm.DB) error {
	sqlDB, err := d.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
