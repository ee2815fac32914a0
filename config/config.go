package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/caarlos0/env/v11"

	"github.com/TomasJani/bookshelf/notification"
)

// Database drivers selectable with BOOKSHELF_DB_DRIVER.
const (
	DriverPGX      = "pgx"
	DriverPostgres = "postgres"
	DriverSQLX     = "sqlx"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

var drivers = []string{DriverPGX, DriverPostgres, DriverSQLX, DriverSQLite, DriverMemory}

var (
	// ErrParseEnv is joined with the parser error when the environment cannot be read.
	ErrParseEnv = errors.New("parse env")

	// ErrUnknownDriver is returned for a BOOKSHELF_DB_DRIVER outside the supported set.
	ErrUnknownDriver = errors.New("unknown database driver")
)

// Config is the runtime configuration of the bookshelf service.
type Config struct {
	DBDriver    string `env:"BOOKSHELF_DB_DRIVER" envDefault:"sqlite"`
	DatabaseDSN string `env:"BOOKSHELF_DATABASE_DSN" envDefault:"file:bookshelf.db"`

	EmailsEnabled bool   `env:"BOOKSHELF_EMAILS_ENABLED" envDefault:"false"`
	ProjectName   string `env:"BOOKSHELF_PROJECT_NAME" envDefault:"Bookshelf"`
	FrontendHost  string `env:"BOOKSHELF_FRONTEND_HOST" envDefault:"http://localhost:5173"`

	BcryptCost int        `env:"BOOKSHELF_BCRYPT_COST" envDefault:"10"`
	LogLevel   slog.Level `env:"BOOKSHELF_LOG_LEVEL" envDefault:"INFO"`

	ObservabilityEnabled bool   `env:"BOOKSHELF_OTEL_ENABLED" envDefault:"false"`
	OTLPEndpoint         string `env:"BOOKSHELF_OTEL_ENDPOINT" envDefault:"localhost:4317"`
	ServiceName          string `env:"BOOKSHELF_SERVICE_NAME" envDefault:"bookshelf"`
}

// Load reads the configuration from the environment, applying defaults for unset variables.
func Load() (Config, error) {
	var cfg Config

	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Join(ErrParseEnv, err)
	}

	if !slices.Contains(drivers, cfg.DBDriver) {
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.DBDriver)
	}

	return cfg, nil
}

// NotificationSettings returns the email settings for the notification handlers.
func (c Config) NotificationSettings() notification.Settings {
	return notification.Settings{
		EmailsEnabled: c.EmailsEnabled,
		ProjectName:   c.ProjectName,
		FrontendHost:  c.FrontendHost,
	}
}
