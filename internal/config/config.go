// Package config loads removeddit settings from defaults, an optional TOML
// file and REMOVEDDIT_ environment variables, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix marks environment overrides. A double underscore separates
// nesting levels: REMOVEDDIT_LIVE__CLIENT_ID sets live.client_id.
const EnvPrefix = "REMOVEDDIT_"

// Config is the full application configuration.
type Config struct {
	DBPath string `koanf:"db_path"`

	Log struct {
		Level  string `koanf:"level"`
		Format string `koanf:"format"`
	} `koanf:"log"`

	Archive struct {
		BaseURL           string        `koanf:"base_url"`
		PageSize          int           `koanf:"page_size"`
		Timeout           time.Duration `koanf:"timeout"`
		RequestsPerSecond float64       `koanf:"requests_per_second"`
		HelpURL           string        `koanf:"help_url"`
	} `koanf:"archive"`

	Live struct {
		BaseURL           string        `koanf:"base_url"`
		TokenURL          string        `koanf:"token_url"`
		ClientID          string        `koanf:"client_id"`
		UserAgent         string        `koanf:"user_agent"`
		BatchSize         int           `koanf:"batch_size"`
		Timeout           time.Duration `koanf:"timeout"`
		RequestsPerSecond float64       `koanf:"requests_per_second"`
		HelpURL           string        `koanf:"help_url"`
	} `koanf:"live"`

	Reconcile struct {
		DispatchThreshold float64 `koanf:"dispatch_threshold"`
		MaxInFlight       int     `koanf:"max_in_flight"`
		PageBuffer        int     `koanf:"page_buffer"`
		DefaultComments   int     `koanf:"default_comments"`
		MaxComments       int     `koanf:"max_comments"`
	} `koanf:"reconcile"`
}

// Defaults returns the built-in settings.
func Defaults() map[string]any {
	return map[string]any{
		"db_path":                      defaultDBPath(),
		"log.level":                    "info",
		"log.format":                   "console",
		"archive.base_url":             "https://api.pushshift.io",
		"archive.page_size":            100,
		"archive.timeout":              "30s",
		"archive.requests_per_second":  1.0,
		"archive.help_url":             "https://github.com/pushshift/api",
		"live.base_url":                "https://oauth.reddit.com",
		"live.token_url":               "https://www.reddit.com/api/v1/access_token",
		"live.client_id":               "",
		"live.user_agent":              "removeddit/1.0",
		"live.batch_size":              100,
		"live.timeout":                 "30s",
		"live.requests_per_second":     1.0,
		"live.help_url":                "https://github.com/reddit-archive/reddit/wiki/API",
		"reconcile.dispatch_threshold": 0.9,
		"reconcile.max_in_flight":      4,
		"reconcile.page_buffer":        4,
		"reconcile.default_comments":   1500,
		"reconcile.max_comments":       20000,
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "removeddit.db"
	}
	return filepath.Join(home, ".removeddit", "removeddit.db")
}

// Load reads the configuration. An empty path tries ./removeddit.toml and
// then ~/.removeddit/config.toml, skipping any that do not exist; an
// explicit path must exist.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	} else {
		for _, p := range defaultPaths() {
			if _, err := os.Stat(p); err != nil {
				continue
			}
			if err := k.Load(file.Provider(p), toml.Parser()); err != nil {
				return nil, fmt.Errorf("load config %s: %w", p, err)
			}
			break
		}
	}

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func defaultPaths() []string {
	paths := []string{"removeddit.toml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".removeddit", "config.toml"))
	}
	return paths
}

// Validate rejects settings the reconciler cannot run with.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	if c.Archive.PageSize <= 0 {
		return fmt.Errorf("archive.page_size must be > 0, got %d", c.Archive.PageSize)
	}
	if c.Live.BatchSize <= 0 {
		return fmt.Errorf("live.batch_size must be > 0, got %d", c.Live.BatchSize)
	}
	if t := c.Reconcile.DispatchThreshold; t <= 0 || t > 1 {
		return fmt.Errorf("reconcile.dispatch_threshold must be in (0, 1], got %g", t)
	}
	if c.Reconcile.MaxInFlight <= 0 {
		return fmt.Errorf("reconcile.max_in_flight must be > 0, got %d", c.Reconcile.MaxInFlight)
	}
	if c.Reconcile.PageBuffer < 0 {
		return fmt.Errorf("reconcile.page_buffer must be >= 0, got %d", c.Reconcile.PageBuffer)
	}
	if c.Reconcile.MaxComments <= 0 {
		return fmt.Errorf("reconcile.max_comments must be > 0, got %d", c.Reconcile.MaxComments)
	}
	if c.Reconcile.DefaultComments <= 0 || c.Reconcile.DefaultComments > c.Reconcile.MaxComments {
		return fmt.Errorf("reconcile.default_comments must be in [1, %d], got %d",
			c.Reconcile.MaxComments, c.Reconcile.DefaultComments)
	}
	return nil
}

// ConstrainCount clamps a requested comment count to [1, max_comments].
// Non-positive requests get default_comments.
func (c *Config) ConstrainCount(n int) int {
	if n <= 0 {
		return c.Reconcile.DefaultComments
	}
	return min(n, c.Reconcile.MaxComments)
}
