package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"APP_NAME", "APP_ENV", "PORT", "LOG_LEVEL", "STORE_BACKEND", "DATABASE_URL", "REDIS_URL",
	"JWT_SECRET", "SESSION_TTL", "SESSION_TTL_SECONDS", "LATENCY_SCALE",
	"SHUTDOWN_TIMEOUT", "SHUTDOWN_TIMEOUT_SECONDS", "IDEMPOTENCY_TTL", "IDEMPOTENCY_TTL_SECONDS",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "Moneyfer", cfg.AppName)
	assert.Equal(t, BackendMemory, cfg.StoreBackend)
	assert.Equal(t, 7*24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 1.0, cfg.LatencyScale)
	assert.Equal(t, 10*time.Second, cfg.ShutdownPeriod)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	assert.Equal(t, ":8080", cfg.Address())
}

func TestOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", ":9090")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("STORE_BACKEND", "redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "3")
	t.Setenv("LATENCY_SCALE", "0")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Address())
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, BackendRedis, cfg.StoreBackend)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, 3*time.Second, cfg.ShutdownPeriod)
	assert.Zero(t, cfg.LatencyScale)
}

func TestInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"redis without url":    {"STORE_BACKEND": "redis"},
		"postgres without url": {"STORE_BACKEND": "postgres"},
		"unknown backend":      {"STORE_BACKEND": "sqlite"},
		"bad duration":         {"SESSION_TTL": "soon"},
		"bad seconds":          {"IDEMPOTENCY_TTL_SECONDS": "x"},
		"negative scale":       {"LATENCY_SCALE": "-1"},
		"default secret prod":  {"APP_ENV": "production"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("APP_NAME")
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("APP_NAME=FromFile\n"), 0o600))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "FromFile", cfg.AppName)
	os.Unsetenv("APP_NAME")
}
