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
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Port)
	assert.True(t, cfg.IsDev())
	assert.Equal(t, time.Hour, cfg.SessionTTL())
	assert.Equal(t, 24*time.Hour, cfg.CacheMaxAge())
	assert.Equal(t, 72*time.Hour, cfg.JobMaxAge())
	assert.Equal(t, 30*time.Minute, cfg.SweepInterval())
	assert.Equal(t, 120*time.Second, cfg.CollaboratorTimeout())
	assert.Equal(t, "gpt-4o-mini-tts", cfg.AI.TTSModel)
	assert.Equal(t, "whisper-1", cfg.AI.TranscriptionModel)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
port: 9090
env: production
session_ttl_seconds: 600
allowed_origins:
  - example.com
  - "*.example.org"
cache:
  max_age_hours: 6
  job_max_age_hours: 12
  sweep_interval_minutes: 5
collaborator:
  timeout_seconds: 30
ai:
  tts_voice: nova
  providers:
    - id: main
      name: OpenAI
      type: OpenAI
      api_key: sk-test
      default_model: gpt-4o-mini
      enabled: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.False(t, cfg.IsDev())
	assert.Equal(t, 10*time.Minute, cfg.SessionTTL())
	assert.Equal(t, []string{"example.com", "*.example.org"}, cfg.AllowedOrigins)
	assert.Equal(t, 6*time.Hour, cfg.CacheMaxAge())
	assert.Equal(t, 12*time.Hour, cfg.JobMaxAge())
	assert.Equal(t, 5*time.Minute, cfg.SweepInterval())
	assert.Equal(t, 30*time.Second, cfg.CollaboratorTimeout())
	assert.Equal(t, "nova", cfg.AI.TTSVoice)
	require.Len(t, cfg.AI.Providers, 1)
	assert.Equal(t, "main", cfg.AI.Providers[0].ID)
	assert.True(t, cfg.AI.Providers[0].Enabled)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "port: 8000\nbogus_key: true\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsInvalidPort(t *testing.T) {
	path := writeConfig(t, "port: 99999\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsInvalidTTL(t *testing.T) {
	path := writeConfig(t, "session_ttl_seconds: -5\n")
	_, err := Load(path)
	assert.Error(t, err)
}
