package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.Backend.BaseURL)
	assert.Equal(t, 600, cfg.Backend.TimeoutSecs)
	assert.InDelta(t, 0, cfg.Backend.RateLimit, 0.001)
	assert.Equal(t, 20, cfg.Search.MaxRecords)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 600, cfg.Server.AutoRefreshSecs)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Empty(t, cfg.Notify.WebhookURL)
	assert.InDelta(t, 3, cfg.Notion.RateLimit, 0.001)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
backend:
  base_url: http://plouf.example:8000
  timeout_secs: 120
search:
  max_records: 50
log:
  level: debug
  format: console
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://plouf.example:8000", cfg.Backend.BaseURL)
	assert.Equal(t, 120, cfg.Backend.TimeoutSecs)
	assert.Equal(t, 50, cfg.Search.MaxRecords)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Defaults still apply for unset values
	assert.Equal(t, 600, cfg.Server.AutoRefreshSecs)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
backend:
  base_url: http://from-file:8000
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("PROSPECT_BACKEND_BASE_URL", "http://from-env:8000")
	t.Setenv("PROSPECT_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "http://from-env:8000", cfg.Backend.BaseURL)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("PROSPECT_SEARCH_MAX_RECORDS", "5")
	t.Setenv("PROSPECT_NOTION_TOKEN", "ntn_secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Search.MaxRecords)
	assert.Equal(t, "ntn_secret", cfg.Notion.Token)
}

func TestLoadRejectsInvalidMaxRecords(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("PROSPECT_SEARCH_MAX_RECORDS", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search.max_records")
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("backend: [unclosed"), 0644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Backend.BaseURL = "http://localhost:8000"
	cfg.Backend.TimeoutSecs = 600
	cfg.Search.MaxRecords = 20
	cfg.Server.Port = 8080
	return cfg
}

func TestValidate_Base(t *testing.T) {
	assert.NoError(t, validDefaults().Validate(""))
}

func TestValidate_MissingBaseURL(t *testing.T) {
	cfg := validDefaults()
	cfg.Backend.BaseURL = "  "
	cfg.Search.MaxRecords = -1

	err := cfg.Validate("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend.base_url is required")
	assert.Contains(t, err.Error(), "search.max_records must be positive")
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
}

func TestValidateServe_ValidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 9090

	assert.NoError(t, cfg.Validate("serve"))
}

func TestValidatePush_MissingNotion(t *testing.T) {
	err := validDefaults().Validate("push")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notion.token is required")
	assert.Contains(t, err.Error(), "notion.lead_db is required")
}

func TestValidatePush_AllPresent(t *testing.T) {
	cfg := validDefaults()
	cfg.Notion.Token = "ntn_token"
	cfg.Notion.LeadDB = "lead-db-id"

	assert.NoError(t, cfg.Validate("push"))
}
