package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Config holds the runtime configuration for the API server and the CLIs.
type Config struct {
	Port string `env:"PORT,default=5050"`

	// DatabaseURL is either a postgres URL or "sqlite:<path>".
	DatabaseURL       string        `env:"DATABASE_URL,required"`
	DBSchema          string        `env:"DB_SCHEMA"`
	DBAutoMigrate     bool          `env:"DB_AUTO_MIGRATE,default=true"`
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS,default=20"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS,default=20"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME,default=30m"`

	AppURL      string `env:"APP_URL,default=http://localhost:5050"`
	AppTimezone string `env:"APP_TIMEZONE,default=UTC"`
	AppLocale   string `env:"APP_LOCALE,default=en"`

	// TokenTTL of zero means tokens live until they are revoked.
	TokenTTL              time.Duration `env:"TOKEN_TTL,default=0s"`
	PasswordResetExpire   time.Duration `env:"PASSWORD_RESET_EXPIRE,default=60m"`
	PasswordResetThrottle time.Duration `env:"PASSWORD_RESET_THROTTLE,default=60s"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS,default=http://localhost:5173;http://localhost:3000"`

	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogFormat string `env:"LOG_FORMAT,default=json"`

	FoodSeedFile string `env:"FOOD_SEED_FILE,default=data/foods.yaml"`
}

var (
	ErrInvalidTimezone = errors.New("config: APP_TIMEZONE is not a known location")
	ErrInvalidLogLevel = errors.New("config: LOG_LEVEL must be one of debug, info, warn, error")
)

// Load reads .env.local and .env (when present) and decodes the environment.
//
// Environment variables already set in the process win over the files.
func Load() (Config, error) {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("config: decode environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values that envdecode cannot check by itself.
func (c Config) Validate() error {
	if _, err := time.LoadLocation(c.AppTimezone); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTimezone, c.AppTimezone)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}
	return nil
}

// Location returns the application time zone. "Today" for food logs is
// computed in this location.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.AppTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
