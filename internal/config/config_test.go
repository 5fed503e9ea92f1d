package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/remora/internal/config"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SESSION_SECRET", "test-secret")
	t.Setenv("SURREAL_URL", "ws://localhost:8000/rpc")
	t.Setenv("SURREAL_NS", "remora")
	t.Setenv("SURREAL_DB", "remora")
}

func TestNew(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("REMORA_ADDR", "")
		t.Setenv("APP_BASE_URL", "")
		t.Setenv("DB_QUERY_TIMEOUT", "")
		t.Setenv("DB_EXECUTE_TIMEOUT", "")
		t.Setenv("MODULES_MANIFEST", "")
		t.Setenv("TRACING_ENABLED", "")

		cfg, err := config.New()
		require.NoError(t, err)

		assert.Equal(t, ":8080", cfg.GetAppAddr())
		assert.Equal(t, "http://localhost:8080", cfg.GetAppBaseURL())
		assert.Equal(t, 5*time.Second, cfg.GetDBQueryTimeout())
		assert.Equal(t, 10*time.Second, cfg.GetDBExecuteTimeout())
		assert.Equal(t, "remora.yaml", cfg.GetManifestPath())
		assert.False(t, cfg.GetTracingEnabled())
	})

	t.Run("reads overrides from the environment", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("REMORA_ADDR", ":9999")
		t.Setenv("DB_QUERY_TIMEOUT", "250ms")
		t.Setenv("MODULES_MANIFEST", "testdata/modules.yaml")
		t.Setenv("TRACING_ENABLED", "true")

		cfg, err := config.New()
		require.NoError(t, err)

		assert.Equal(t, ":9999", cfg.GetAppAddr())
		assert.Equal(t, 250*time.Millisecond, cfg.GetDBQueryTimeout())
		assert.Equal(t, "testdata/modules.yaml", cfg.GetManifestPath())
		assert.True(t, cfg.GetTracingEnabled())
	})

	t.Run("rejects a missing session secret", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("SESSION_SECRET", "")

		_, err := config.New()
		assert.Error(t, err)
	})

	t.Run("rejects a malformed database URL", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("SURREAL_URL", "not a url")

		_, err := config.New()
		assert.Error(t, err)
	})

	t.Run("rejects an unparseable timeout", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("DB_QUERY_TIMEOUT", "five seconds")

		_, err := config.New()
		assert.Error(t, err)
	})
}
