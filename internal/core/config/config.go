// Package config handles configuration loading and validation for shop.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hay-kot/criterio"
	"gopkg.in/yaml.v3"
)

// Session backends.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Environment variables that override file values.
const (
	EnvAPIURL         = "SHOP_API_URL"
	EnvSessionBackend = "SHOP_SESSION_BACKEND"
	EnvRedisAddr      = "SHOP_REDIS_ADDR"
)

// Config holds the application configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Session SessionConfig `yaml:"session"`
	Display DisplayConfig `yaml:"display"`
	DataDir string        `yaml:"-"` // set by caller, not from config file
}

// APIConfig configures the backend connection.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
	// TrustedHosts are globs (host or host:port) the bearer credential may be
	// sent to. Empty means the base URL's host only.
	TrustedHosts []string `yaml:"trusted_hosts"`
	// MediaURL overrides where product images are served from.
	MediaURL string `yaml:"media_url"`
}

// SessionConfig selects where credentials are kept.
type SessionConfig struct {
	Backend string      `yaml:"backend"`
	Redis   RedisConfig `yaml:"redis"`
}

// RedisConfig configures the redis session backend.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// DisplayConfig controls rendering.
type DisplayConfig struct {
	Markdown      bool   `yaml:"markdown"`
	MarkdownStyle string `yaml:"markdown_style"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL: "http://localhost:8000/api/",
			Timeout: 5 * time.Second,
		},
		Session: SessionConfig{
			Backend: BackendFile,
			Redis: RedisConfig{
				Addr: "localhost:6379",
			},
		},
		Display: DisplayConfig{
			Markdown:      true,
			MarkdownStyle: "dark",
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
// Environment variables override file values.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	// Apply defaults for zero values
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvAPIURL); ok && v != "" {
		c.API.BaseURL = v
	}
	if v, ok := lookup(EnvSessionBackend); ok && v != "" {
		c.Session.Backend = strings.ToLower(v)
	}
	if v, ok := lookup(EnvRedisAddr); ok && v != "" {
		c.Session.Redis.Addr = v
	}
	if v, ok := lookup("SHOP_REDIS_DB"); ok && v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SHOP_REDIS_DB: %w", err)
		}
		c.Session.Redis.DB = db
	}
	return nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.API.BaseURL == "" {
		c.API.BaseURL = defaults.API.BaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = defaults.API.Timeout
	}
	if c.Session.Backend == "" {
		c.Session.Backend = defaults.Session.Backend
	}
	if c.Display.MarkdownStyle == "" {
		c.Display.MarkdownStyle = defaults.Display.MarkdownStyle
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if u, err := url.Parse(c.API.BaseURL); err != nil {
		errs = errs.Append("api.base_url", fmt.Errorf("invalid url: %w", err))
	} else if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = errs.Append("api.base_url", errors.New("must be an absolute http(s) url"))
	}

	if c.API.Timeout < 0 {
		errs = errs.Append("api.timeout", errors.New("must not be negative"))
	}

	for i, p := range c.API.TrustedHosts {
		if !doublestar.ValidatePattern(p) {
			errs = errs.Append(fmt.Sprintf("api.trusted_hosts[%d]", i), fmt.Errorf("invalid glob %q", p))
		}
	}

	if c.API.MediaURL != "" {
		if u, err := url.Parse(c.API.MediaURL); err != nil || u.Host == "" {
			errs = errs.Append("api.media_url", errors.New("must be an absolute url"))
		}
	}

	switch c.Session.Backend {
	case BackendFile:
		if c.DataDir == "" {
			errs = errs.Append("data_dir", errors.New("cannot be empty when session.backend is file"))
		}
	case BackendRedis:
		if c.Session.Redis.Addr == "" {
			errs = errs.Append("session.redis.addr", errors.New("is required when session.backend is redis"))
		}
		if c.Session.Redis.DB < 0 {
			errs = errs.Append("session.redis.db", errors.New("must not be negative"))
		}
	case BackendMemory:
	default:
		errs = errs.Append("session.backend", fmt.Errorf("unknown backend %q (file, redis, memory)", c.Session.Backend))
	}

	switch c.Display.MarkdownStyle {
	case "dark", "light", "notty", "ascii", "dracula", "tokyo-night", "pink":
	default:
		errs = errs.Append("display.markdown_style", fmt.Errorf("unknown style %q", c.Display.MarkdownStyle))
	}

	return errs.ToError()
}

// SessionFile returns the path to the session JSON file.
func (c *Config) SessionFile() string {
	return filepath.Join(c.DataDir, "session.json")
}

// MarkdownStyle returns the glamour style to render with, or "" when markdown
// rendering is off.
func (c *Config) MarkdownStyle() string {
	if !c.Display.Markdown {
		return ""
	}
	return c.Display.MarkdownStyle
}
