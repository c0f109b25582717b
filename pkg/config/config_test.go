package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Aleph-Alpha/interactpsql/pkg/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

func TestLoadFromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DB_NAME", "shop")
	t.Setenv("DB_USER", "alice")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("FILENAME", "users.csv")
	t.Setenv("ZAP_LOGGER_LEVEL", "debug")
	t.Setenv("METRICS_ADDRESS", ":9100")
	t.Setenv("TRACER_ENABLE_EXPORT", "true")
	t.Setenv("MINIO_ENDPOINT", "localhost:9000")
	t.Setenv("MINIO_BUCKET_NAME", "imports")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, postgres.Connection{
		Host:     "db.internal",
		Port:     "5432",
		User:     "alice",
		Password: "secret",
		DbName:   "shop",
		SSLMode:  "disable",
	}, cfg.Postgres.Connection)
	assert.Equal(t, "users.csv", cfg.Filename)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "interactpsql", cfg.Logger.ServiceName)
	assert.Equal(t, ":9100", cfg.Metrics.Address)
	assert.True(t, cfg.Metrics.EnableDefaultCollectors)
	assert.True(t, cfg.Tracer.EnableExport)
	assert.Equal(t, "local", cfg.Tracer.AppEnv)
	assert.True(t, cfg.Minio.Enabled())
	assert.Equal(t, "imports", cfg.Minio.Connection.BucketName)
}

func TestLoadEnvFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DB_USER", "from-env")
	// Variables set by t.Setenv are restored afterwards; godotenv sets the rest.
	t.Setenv("DB_NAME", "")
	t.Setenv("DB_PORT", "")
	require.NoError(t, os.Unsetenv("DB_NAME"))
	require.NoError(t, os.Unsetenv("DB_PORT"))

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("DB_NAME=fromfile\nDB_PORT=6543\nDB_USER=ignored\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "fromfile", cfg.Postgres.Connection.DbName)
	assert.Equal(t, "6543", cfg.Postgres.Connection.Port)
	assert.Equal(t, "from-env", cfg.Postgres.Connection.User)
}

func TestLoadErrors(t *testing.T) {
	t.Run("MissingExplicitFile", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
		assert.Error(t, err)
	})

	t.Run("MissingDefaultFileIsFine", func(t *testing.T) {
		t.Chdir(t.TempDir())
		_, err := Load()
		assert.NoError(t, err)
	})

	t.Run("InvalidBool", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("TRACER_ENABLE_EXPORT", "maybe")
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestFXModuleProvidesSections(t *testing.T) {
	cfg := Config{}
	cfg.Postgres.Connection.DbName = "shop"

	var pgCfg postgres.Config
	app := fxtest.New(t,
		fx.Supply(cfg),
		FXModule,
		fx.Populate(&pgCfg),
	)
	app.RequireStart()
	defer app.RequireStop()

	assert.Equal(t, "shop", pgCfg.Connection.DbName)
}
