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
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	dataDir := t.TempDir()

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), dataDir)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000/api/", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, BackendFile, cfg.Session.Backend)
	assert.Equal(t, "dark", cfg.MarkdownStyle())
	assert.Equal(t, filepath.Join(dataDir, "session.json"), cfg.SessionFile())
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
api:
  base_url: https://shop.example.com/api/
  timeout: 10s
  trusted_hosts:
    - shop.example.com
    - "*.cdn.example.com"
session:
  backend: redis
  redis:
    addr: redis:6379
    db: 2
display:
  markdown: false
`)

	cfg, err := Load(path, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "https://shop.example.com/api/", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, []string{"shop.example.com", "*.cdn.example.com"}, cfg.API.TrustedHosts)
	assert.Equal(t, BackendRedis, cfg.Session.Backend)
	assert.Equal(t, "redis:6379", cfg.Session.Redis.Addr)
	assert.Equal(t, 2, cfg.Session.Redis.DB)
	assert.Empty(t, cfg.MarkdownStyle())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
api:
  base_url: https://shop.example.com/api/
`)
	t.Setenv(EnvAPIURL, "http://127.0.0.1:9000/api/")
	t.Setenv(EnvSessionBackend, "MEMORY")

	cfg, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9000/api/", cfg.API.BaseURL)
	assert.Equal(t, BackendMemory, cfg.Session.Backend)
}

func TestLoad_InvalidFile(t *testing.T) {
	path := writeConfig(t, "api: [")
	_, err := Load(path, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")

	path = writeConfig(t, "session:\n  backend: carrier-pigeon\n")
	_, err = Load(path, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}
