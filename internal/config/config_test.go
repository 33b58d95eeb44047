package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/tutor_admin_bot/internal/schedule"
)

func envOf(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func requiredEnv() map[string]string {
	return map[string]string{
		"TELEGRAM_TOKEN":   "123:abc",
		"DB_DSN":           "postgres://localhost/tutor",
		"BACKEND_BASE_URL": "https://api.example.com",
	}
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(envOf(requiredEnv()))
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 10*time.Second, cfg.BackendTimeout)
	assert.Equal(t, 30*time.Minute, cfg.DraftTTL)
	assert.Equal(t, "Europe/Moscow", cfg.Location.String())
	assert.Equal(t, schedule.LocaleRU, cfg.Locale)
	assert.Equal(t, 60, cfg.SessionDuration)
	assert.Equal(t, "migrations", cfg.MigrationsDir)
}

func TestFromEnvOverrides(t *testing.T) {
	env := requiredEnv()
	env["ENV"] = "production"
	env["BACKEND_TIMEOUT"] = "3s"
	env["DRAFT_TTL"] = "1h"
	env["TIMEZONE"] = "UTC"
	env["LOCALE"] = "EN"
	env["SESSION_DURATION_MINUTES"] = "90"

	cfg, err := FromEnv(envOf(env))
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, 3*time.Second, cfg.BackendTimeout)
	assert.Equal(t, time.Hour, cfg.DraftTTL)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, schedule.LocaleEN, cfg.Locale)
	assert.Equal(t, 90, cfg.SessionDuration)
}

func TestFromEnvReportsAllProblems(t *testing.T) {
	cfg, err := FromEnv(envOf(map[string]string{
		"SESSION_DURATION_MINUTES": "0",
		"LOCALE":                   "de",
		"DRAFT_TTL":                "soon",
	}))

	require.Error(t, err)
	assert.Nil(t, cfg)
	for _, want := range []string{"TELEGRAM_TOKEN", "DB_DSN", "BACKEND_BASE_URL", "SESSION_DURATION_MINUTES", "LOCALE", "DRAFT_TTL"} {
		assert.Contains(t, err.Error(), want)
	}
}
