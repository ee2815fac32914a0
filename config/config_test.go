package config_test

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TomasJani/bookshelf/config"
)

func Test_Load_AppliesDefaults(t *testing.T) {
	// act
	cfg, err := config.Load()

	// assert
	require.NoError(t, err)
	assert.Equal(t, config.DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "Bookshelf", cfg.ProjectName)
	assert.False(t, cfg.EmailsEnabled)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, 10, cfg.BcryptCost)
}

func Test_Load_ReadsEnvironment(t *testing.T) {
	// arrange
	t.Setenv("BOOKSHELF_DB_DRIVER", config.DriverPGX)
	t.Setenv("BOOKSHELF_DATABASE_DSN", "postgres://app:app@db:5432/bookshelf")
	t.Setenv("BOOKSHELF_EMAILS_ENABLED", "true")
	t.Setenv("BOOKSHELF_PROJECT_NAME", "Library")
	t.Setenv("BOOKSHELF_LOG_LEVEL", "DEBUG")

	// act
	cfg, err := config.Load()

	// assert
	require.NoError(t, err)
	assert.Equal(t, config.DriverPGX, cfg.DBDriver)
	assert.Equal(t, "postgres://app:app@db:5432/bookshelf", cfg.DatabaseDSN)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)

	settings := cfg.NotificationSettings()
	assert.True(t, settings.EmailsEnabled)
	assert.Equal(t, "Library", settings.ProjectName)
}

func Test_Load_RejectsUnknownDriver(t *testing.T) {
	// arrange
	t.Setenv("BOOKSHELF_DB_DRIVER", "oracle")

	// act
	_, err := config.Load()

	// assert
	assert.ErrorIs(t, err, config.ErrUnknownDriver)
}

func Test_Load_RejectsMalformedValue(t *testing.T) {
	// arrange
	t.Setenv("BOOKSHELF_BCRYPT_COST", "twelve")

	// act
	_, err := config.Load()

	// assert
	assert.ErrorIs(t, err, config.ErrParseEnv)
}

func Test_SQLiteDB_EnforcesForeignKeys(t *testing.T) {
	// arrange
	dsn := "file:" + filepath.Join(t.TempDir(), "config.db")

	// act
	db, err := config.SQLiteDB(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	// assert
	var enabled int
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&enabled))
	assert.Equal(t, 1, enabled)
}

func Test_PostgresPGXPool_RejectsMalformedDSN(t *testing.T) {
	// act
	_, err := config.PostgresPGXPool(context.Background(), "postgres://%zz")

	// assert
	assert.Error(t, err)
}
