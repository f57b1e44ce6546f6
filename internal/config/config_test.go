package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadExpandsEnvAndDefaults(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "sekret")
	path := writeConfig(t, `
database:
  host: localhost
  name: campuspulse
  user: campuspulse
  password: ${TEST_DB_PASSWORD}
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sekret", cfg.Database.Password)
	assert.Equal(t, "Europe/Berlin", cfg.Timezone)
	assert.Equal(t, "https://v6.bvg.transport.rest", cfg.Transit.BaseURL)
	assert.Equal(t, "Campus Jungfernsee", cfg.Notify.CampusLocation)
	assert.Equal(t, 7, cfg.DailyHour())
	assert.Equal(t, 0, cfg.DailyMinute())
	assert.Equal(t, 5*time.Minute, cfg.ReturnInterval())
	assert.Equal(t, 8090, cfg.OpsPort())
	assert.Contains(t, cfg.DSN(), "password=sekret")
	assert.Contains(t, cfg.DSN(), "port=5432")
}

func TestLoadExplicitValues(t *testing.T) {
	path := writeConfig(t, `
timezone: Europe/Berlin
notify:
  campus_location: Campus Mitte
  daily_hour: 6
  daily_minute: 30
  return_interval_minutes: 2
redis:
  address: localhost:6379
  cache_ttl_seconds: 60
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Campus Mitte", cfg.Notify.CampusLocation)
	assert.Equal(t, 6, cfg.DailyHour())
	assert.Equal(t, 30, cfg.DailyMinute())
	assert.Equal(t, 2*time.Minute, cfg.ReturnInterval())
	assert.Equal(t, time.Minute, cfg.CacheTTL())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
