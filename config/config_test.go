package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/owners2/property-engine/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err, "explicit .env path must exist")

	cfg, err = config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 10, cfg.Server.ShutdownWait)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "property-engine.db", cfg.Store.SQLitePath)
	assert.False(t, cfg.Kafka.Enabled)
	assert.False(t, cfg.Debug)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9090")
	t.Setenv("CORS_ORIGINS", "https://app.example.com, https://admin.example.com")
	t.Setenv("SHUTDOWN_WAIT_SECONDS", "30")
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("POSTGRES_DSN", "postgres://engine@localhost/engine")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092,broker-2:9092")
	t.Setenv("DEBUG", "true")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 30, cfg.Server.ShutdownWait)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Debug)
}

func TestLoad_ValidationErrors(t *testing.T) {
	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "oracle")
		_, err := config.Load()
		assert.ErrorContains(t, err, "STORE_DRIVER")
	})

	t.Run("postgres without dsn", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "postgres")
		t.Setenv("POSTGRES_DSN", "")
		_, err := config.Load()
		assert.ErrorContains(t, err, "POSTGRES_DSN")
	})

	t.Run("bad shutdown wait", func(t *testing.T) {
		t.Setenv("SHUTDOWN_WAIT_SECONDS", "soon")
		_, err := config.Load()
		assert.ErrorContains(t, err, "SHUTDOWN_WAIT_SECONDS")
	})
}

func TestLoadRules_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"eligible_sources:\n  - private\n  - booking.com\n"), 0o600))

	rules, err := config.LoadRules(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"private", "booking.com"}, rules.EligibleSources)
}

func TestLoadRules_ViaEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("eligible_sources: [airbnb]\n"), 0o600))
	t.Setenv("RULES_PATH", path)

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"airbnb"}, cfg.Rules.EligibleSources)
}

func TestLoadRules_MissingFile(t *testing.T) {
	_, err := config.LoadRules(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
