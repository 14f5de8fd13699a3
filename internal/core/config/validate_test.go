package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns a Config with all required fields set for testing.
func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	return &cfg
}

func TestValidate_Defaults(t *testing.T) {
	cfg := validConfig(t)
	assert.NoError(t, cfg.Validate())
	assert.NoError(t, cfg.ValidateDeep(""))
	assert.Empty(t, cfg.Warnings())
}

func TestValidate_BaseURL(t *testing.T) {
	for _, raw := range []string{"localhost:8000", "ftp://example.com/api/", "/api/"} {
		cfg := validConfig(t)
		cfg.API.BaseURL = raw

		var fieldErrs criterio.FieldErrors
		require.ErrorAs(t, cfg.Validate(), &fieldErrs, raw)
		require.Len(t, fieldErrs, 1)
		assert.Equal(t, "api.base_url", fieldErrs[0].Field)
	}
}

func TestValidate_SessionBackend(t *testing.T) {
	cfg := validConfig(t)
	cfg.Session.Backend = "sqlite"

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, cfg.Validate(), &fieldErrs)
	assert.Equal(t, "session.backend", fieldErrs[0].Field)
	assert.Contains(t, fieldErrs[0].Err.Error(), "unknown backend")

	cfg.Session.Backend = BackendRedis
	cfg.Session.Redis.Addr = ""
	require.ErrorAs(t, cfg.Validate(), &fieldErrs)
	assert.Equal(t, "session.redis.addr", fieldErrs[0].Field)

	cfg.Session.Backend = BackendFile
	cfg.DataDir = ""
	require.ErrorAs(t, cfg.Validate(), &fieldErrs)
	assert.Equal(t, "data_dir", fieldErrs[0].Field)

	cfg.Session.Backend = BackendMemory
	assert.NoError(t, cfg.Validate())
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := validConfig(t)
	cfg.API.BaseURL = "nope"
	cfg.API.Timeout = -time.Second
	cfg.API.TrustedHosts = []string{"[bad"}
	cfg.Display.MarkdownStyle = "sparkly"

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, cfg.Validate(), &fieldErrs)
	assert.Len(t, fieldErrs, 4)
}

func TestValidateDeep_ConfigPathIsDirectory(t *testing.T) {
	cfg := validConfig(t)

	err := cfg.ValidateDeep(t.TempDir())

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	require.Len(t, fieldErrs, 1)
	assert.Equal(t, "config", fieldErrs[0].Field)
	assert.Contains(t, fieldErrs[0].Err.Error(), "is a directory")
}

func TestValidateDeep_DataDirIsFile(t *testing.T) {
	cfg := validConfig(t)
	file := filepath.Join(cfg.DataDir, "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))
	cfg.DataDir = file

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, cfg.ValidateDeep(""), &fieldErrs)
	assert.Equal(t, "data_dir", fieldErrs[0].Field)
}

func TestWarnings(t *testing.T) {
	cfg := validConfig(t)
	cfg.API.BaseURL = "http://shop.example.com/api/"
	cfg.API.TrustedHosts = []string{"**"}
	cfg.Session.Backend = BackendMemory

	warnings := cfg.Warnings()
	require.Len(t, warnings, 3)
	assert.Equal(t, "base_url", warnings[0].Item)
	assert.Equal(t, "trusted_hosts", warnings[1].Item)
	assert.Equal(t, "backend", warnings[2].Item)

	cfg.API.BaseURL = "http://127.0.0.1:8000/api/"
	cfg.API.TrustedHosts = nil
	cfg.Session.Backend = BackendFile
	assert.Empty(t, cfg.Warnings())
}
