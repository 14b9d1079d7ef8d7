package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestLoad_Defaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, filepath.Join(home, ".removeddit", "removeddit.db"), cfg.DBPath)
	assert.Equal(t, 100, cfg.Live.BatchSize)
	assert.Equal(t, 0.9, cfg.Reconcile.DispatchThreshold)
	assert.Equal(t, 30*time.Second, cfg.Archive.Timeout)
	assert.Equal(t, 1500, cfg.Reconcile.DefaultComments)
	assert.Equal(t, 20000, cfg.Reconcile.MaxComments)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "https://github.com/pushshift/api", cfg.Archive.HelpURL)
	assert.NotEqual(t, cfg.Live.HelpURL, cfg.Archive.HelpURL)
}

func TestLoad_FileThenEnv(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "removeddit.toml")
	err := os.WriteFile(path, []byte(`
db_path = "/tmp/r.db"

[live]
client_id = "from-file"
batch_size = 50
timeout = "5s"

[reconcile]
max_in_flight = 2
`), 0o644)
	require.NoError(t, err)

	t.Setenv("REMOVEDDIT_LIVE__CLIENT_ID", "from-env")
	t.Setenv("REMOVEDDIT_RECONCILE__DISPATCH_THRESHOLD", "0.5")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/r.db", cfg.DBPath)
	assert.Equal(t, "from-env", cfg.Live.ClientID)
	assert.Equal(t, 50, cfg.Live.BatchSize)
	assert.Equal(t, 5*time.Second, cfg.Live.Timeout)
	assert.Equal(t, 2, cfg.Reconcile.MaxInFlight)
	assert.Equal(t, 0.5, cfg.Reconcile.DispatchThreshold)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	isolate(t)
	base, err := Load("")
	require.NoError(t, err)

	cases := map[string]func(*Config){
		"batch size":  func(c *Config) { c.Live.BatchSize = 0 },
		"page size":   func(c *Config) { c.Archive.PageSize = -1 },
		"threshold":   func(c *Config) { c.Reconcile.DispatchThreshold = 1.2 },
		"in flight":   func(c *Config) { c.Reconcile.MaxInFlight = 0 },
		"default max": func(c *Config) { c.Reconcile.DefaultComments = c.Reconcile.MaxComments + 1 },
		"db path":     func(c *Config) { c.DBPath = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := *base
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConstrainCount(t *testing.T) {
	isolate(t)
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 1500, cfg.ConstrainCount(0))
	assert.Equal(t, 1500, cfg.ConstrainCount(-3))
	assert.Equal(t, 1, cfg.ConstrainCount(1))
	assert.Equal(t, 20000, cfg.ConstrainCount(50000))
}
