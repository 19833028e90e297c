// Package config loads the console configuration from YAML with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables read by Load.
const (
	EnvConfig     = "MICOMEDOR_CONFIG"
	EnvAPIURL     = "MICOMEDOR_API_URL"
	EnvAPITimeout = "MICOMEDOR_API_TIMEOUT"
	EnvStorage    = "MICOMEDOR_STORAGE"
	EnvLocale     = "MICOMEDOR_LOCALE"
	EnvLogLevel   = "MICOMEDOR_LOG_LEVEL"
)

// DefaultPath is used when neither a flag nor EnvConfig names a file.
const DefaultPath = "~/.micomedor/config.yaml"

// DefaultPageSize applies to entities without a configured page size.
const DefaultPageSize = 5

// ValidLogLevels lists the accepted logging levels.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// ValidLogFormats lists the accepted logging encodings.
var ValidLogFormats = []string{"json", "console"}

// Config is the root configuration document.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Session SessionConfig `yaml:"session"`
	UI      UIConfig      `yaml:"ui"`
	Reports ReportsConfig `yaml:"reports"`
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig locates the backend.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"` // Go duration, "0s" for none
	// Contract optionally replaces the embedded OpenAPI document.
	Contract string `yaml:"contract"`
}

// SessionConfig locates the session file.
type SessionConfig struct {
	StoragePath string `yaml:"storage_path"`
}

// UIConfig configures the console.
type UIConfig struct {
	Locale    string         `yaml:"locale"`
	PageSizes map[string]int `yaml:"page_sizes"`
}

// ReportsConfig configures report rendering.
type ReportsConfig struct {
	// TemplateDir holds templates overriding the embedded ones.
	TemplateDir string `yaml:"template_dir"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
	File   string `yaml:"file"`   // empty logs to stderr
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:8084/",
			Timeout: "0s",
		},
		Session: SessionConfig{
			StoragePath: "~/.micomedor/storage.json",
		},
		UI: UIConfig{
			Locale: "es",
			PageSizes: map[string]int{
				"beneficiary": 3,
				"budget":      5,
				"task":        5,
				"product":     5,
				"ration":      5,
				"note":        5,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// ResolvePath picks the config file: the explicit path, then EnvConfig, then
// DefaultPath. The result has "~" expanded.
func ResolvePath(explicit string) string {
	path := strings.TrimSpace(explicit)
	if path == "" {
		path = strings.TrimSpace(os.Getenv(EnvConfig))
	}
	if path == "" {
		path = DefaultPath
	}
	return ExpandHome(path)
}

// Load reads path over the defaults. A missing file yields the defaults.
// Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(ExpandHome(path))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	path = ExpandHome(path)
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("config: create dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		c.API.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAPITimeout)); v != "" {
		c.API.Timeout = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvStorage)); v != "" {
		c.Session.StoragePath = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLocale)); v != "" {
		c.UI.Locale = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
}

// Validate rejects configurations the console cannot start with.
func (c *Config) Validate() error {
	base, err := url.Parse(strings.TrimSpace(c.API.BaseURL))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return fmt.Errorf("config: api.base_url %q must be an absolute URL", c.API.BaseURL)
	}
	if _, err := c.APITimeout(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Session.StoragePath) == "" {
		return errors.New("config: session.storage_path is required")
	}
	for entity, size := range c.UI.PageSizes {
		if size <= 0 {
			return fmt.Errorf("config: ui.page_sizes.%s must be positive, got %d", entity, size)
		}
	}
	if !contains(ValidLogLevels, c.Logging.Level) {
		return fmt.Errorf("config: invalid logging.level %q (valid: %v)", c.Logging.Level, ValidLogLevels)
	}
	if !contains(ValidLogFormats, c.Logging.Format) {
		return fmt.Errorf("config: invalid logging.format %q (valid: %v)", c.Logging.Format, ValidLogFormats)
	}
	return nil
}

// APITimeout parses API.Timeout. Empty means no timeout.
func (c *Config) APITimeout() (time.Duration, error) {
	raw := strings.TrimSpace(c.API.Timeout)
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: api.timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("config: api.timeout must not be negative, got %s", d)
	}
	return d, nil
}

// PageSize returns the list page size of entity.
func (c *Config) PageSize(entity string) int {
	if size, ok := c.UI.PageSizes[entity]; ok && size > 0 {
		return size
	}
	return DefaultPageSize
}

// StoragePath returns the session file with "~" expanded.
func (c *Config) StoragePath() string {
	return ExpandHome(c.Session.StoragePath)
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	path = strings.TrimSpace(path)
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
