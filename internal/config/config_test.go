package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvConfig, EnvAPIURL, EnvAPITimeout, EnvStorage, EnvLocale, EnvLogLevel} {
		t.Setenv(key, "")
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 3, cfg.PageSize("beneficiary"))
	assert.Equal(t, 5, cfg.PageSize("budget"))
	assert.Equal(t, DefaultPageSize, cfg.PageSize("unknown"))
	require.NoError(t, cfg.Validate())
}

func TestLoadFileOverDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `
api:
  base_url: https://comedor.example.org/api/
  timeout: 15s
ui:
  page_sizes:
    beneficiary: 10
logging:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://comedor.example.org/api/", cfg.API.BaseURL)
	assert.Equal(t, 10, cfg.PageSize("beneficiary"))
	assert.Equal(t, 5, cfg.PageSize("note"))
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "es", cfg.UI.Locale)

	timeout, err := cfg.APITimeout()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, timeout)
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAPIURL, "http://backend:9000/")
	t.Setenv(EnvAPITimeout, "2s")
	t.Setenv(EnvStorage, "/tmp/session.json")
	t.Setenv(EnvLocale, "en")
	t.Setenv(EnvLogLevel, "WARN")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://backend:9000/", cfg.API.BaseURL)
	assert.Equal(t, "2s", cfg.API.Timeout)
	assert.Equal(t, "/tmp/session.json", cfg.StoragePath())
	assert.Equal(t, "en", cfg.UI.Locale)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api: [unclosed"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"relative base url": func(c *Config) { c.API.BaseURL = "localhost:8084" },
		"bad timeout":       func(c *Config) { c.API.Timeout = "soon" },
		"negative timeout":  func(c *Config) { c.API.Timeout = "-1s" },
		"no storage":        func(c *Config) { c.Session.StoragePath = " " },
		"zero page size":    func(c *Config) { c.UI.PageSizes["task"] = 0 },
		"unknown level":     func(c *Config) { c.Logging.Level = "verbose" },
		"unknown format":    func(c *Config) { c.Logging.Format = "text" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestResolvePathAndExpandHome(t *testing.T) {
	clearEnv(t)
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, "/etc/micomedor.yaml", ResolvePath(" /etc/micomedor.yaml "))
	assert.Equal(t, filepath.Join(home, ".micomedor", "config.yaml"), ResolvePath(""))

	t.Setenv(EnvConfig, "/srv/comedor.yaml")
	assert.Equal(t, "/srv/comedor.yaml", ResolvePath(""))

	assert.Equal(t, home, ExpandHome("~"))
	assert.Equal(t, "relative/~/path", ExpandHome("relative/~/path"))
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.UI.Locale = "es-AR"
	cfg.Reports.TemplateDir = "/opt/templates"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
