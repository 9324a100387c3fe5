package model_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackit/stackit-tui/internal/model"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := model.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3000", cfg.API.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.API.Timeout())
	assert.Equal(t, 10*time.Second, cfg.API.RetryMaxElapsed())
	assert.Equal(t, model.SessionBackendStore, cfg.Session.Backend)
	assert.Equal(t, 300*time.Millisecond, cfg.Session.PollInterval())
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api:
  base_url: https://stackit.example.com
session:
  poll_interval_ms: 1000
`), 0o600))
	t.Setenv("STACKIT_LOG_LEVEL", "debug")

	cfg, err := model.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://stackit.example.com", cfg.API.BaseURL)
	assert.Equal(t, time.Second, cfg.Session.PollInterval())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 5, cfg.API.BreakerMaxFailures)
}

func TestLoadConfig_UnknownBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("session:\n  backend: cookie\n"), 0o600))

	_, err := model.LoadConfig(path)
	assert.ErrorContains(t, err, "cookie")
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := model.LoadConfig(path)
	require.NoError(t, err)
	cfg.API.BaseURL = "https://saved.example.com"
	cfg.Session.Backend = model.SessionBackendKeyring

	require.NoError(t, model.SaveConfig(path, cfg))

	loaded, err := model.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://saved.example.com", loaded.API.BaseURL)
	assert.Equal(t, model.SessionBackendKeyring, loaded.Session.Backend)
	assert.Equal(t, cfg.Store.Path, loaded.Store.Path)
}
