package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyang/robot-roster/internal/config"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("STORE", "memory")
	t.Setenv("PORT", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("DEFAULT_COOLDOWN", "")
	t.Setenv("IDEMPOTENCY_TTL_SECONDS", "")
	t.Setenv("JANITOR_INTERVAL_SECONDS", "")

	cfg, err := config.FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, config.StoreMemory, cfg.Store)
	assert.Equal(t, 3, cfg.DefaultCooldown)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	assert.Equal(t, 10*time.Minute, cfg.JanitorInterval)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("STORE", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/roster")
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DEFAULT_COOLDOWN", "5")
	t.Setenv("IDEMPOTENCY_TTL_SECONDS", "60")
	t.Setenv("JANITOR_INTERVAL_SECONDS", "not-a-number")

	cfg, err := config.FromEnv()
	require.NoError(t, err)
	assert.Equal(t, config.StorePostgres, cfg.Store)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 5, cfg.DefaultCooldown)
	assert.Equal(t, time.Minute, cfg.IdempotencyTTL)
	assert.Equal(t, 10*time.Minute, cfg.JanitorInterval)
}

func TestFromEnv_Errors(t *testing.T) {
	t.Run("postgres without url", func(t *testing.T) {
		t.Setenv("STORE", "postgres")
		t.Setenv("DATABASE_URL", "")
		_, err := config.FromEnv()
		assert.ErrorContains(t, err, "DATABASE_URL")
	})
	t.Run("negative default cooldown", func(t *testing.T) {
		t.Setenv("STORE", "memory")
		t.Setenv("DEFAULT_COOLDOWN", "-2")
		_, err := config.FromEnv()
		assert.ErrorContains(t, err, "DEFAULT_COOLDOWN")
	})
	t.Run("unknown store", func(t *testing.T) {
		t.Setenv("STORE", "redis")
		_, err := config.FromEnv()
		assert.ErrorContains(t, err, "unknown STORE")
	})
}

func writeSeeds(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seeds.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadSeeds(t *testing.T) {
	path := writeSeeds(t, `
pools:
  - name: line-a
    cooldown: 2
    quotas:
      101: 2
      202: 1
  - name: line-b
`)
	seeds, err := config.LoadSeeds(path)
	require.NoError(t, err)
	require.Len(t, seeds.Pools, 2)

	a := seeds.Pools[0]
	assert.Equal(t, "line-a", a.Name)
	assert.Equal(t, 2, a.CooldownOr(3))
	assert.Equal(t, map[int64]int64{101: 2, 202: 1}, a.Quotas)

	b := seeds.Pools[1]
	assert.Equal(t, 7, b.CooldownOr(7))
	assert.Empty(t, b.Quotas)
}

func TestLoadSeeds_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "missing name", body: "pools:\n  - cooldown: 1\n", want: "name cannot be empty"},
		{name: "duplicate", body: "pools:\n  - name: a\n  - name: a\n", want: "duplicate name"},
		{name: "negative cooldown", body: "pools:\n  - name: a\n    cooldown: -1\n", want: "must not be negative"},
		{name: "not yaml", body: "pools: [", want: "parsing seed file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.LoadSeeds(writeSeeds(t, tt.body))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestLoadSeeds_MissingFile(t *testing.T) {
	_, err := config.LoadSeeds(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "reading seed file")
}
