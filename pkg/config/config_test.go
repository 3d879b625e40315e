package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 1280, cfg.Browser.ViewportWidth)
	assert.Equal(t, 720, cfg.Browser.ViewportHeight)
	assert.Equal(t, 50, cfg.Scraper.MaxScrollLoops)
	assert.Equal(t, 5, cfg.Session.MaxSessions)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scribe.yaml")
	content := `
server:
  addr: ":9090"
browser:
  headless: false
scraper:
  max_scroll_loops: 10
  scroll_delay: 250ms
session:
  max_sessions: 2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, 10, cfg.Scraper.MaxScrollLoops)
	assert.Equal(t, 250*time.Millisecond, cfg.Scraper.ScrollDelay)
	assert.Equal(t, 2, cfg.Session.MaxSessions)

	// Untouched fields keep defaults
	assert.Equal(t, 30*time.Second, cfg.Scraper.PageLoadTimeout)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SCRIBE_ADDR", ":7001")
	t.Setenv("SCRIBE_HEADLESS", "false")
	t.Setenv("SCRIBE_MAX_SESSIONS", "3")
	t.Setenv("SCRIBE_PAGE_LOAD_TIMEOUT", "45s")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":7001", cfg.Server.Addr)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, 3, cfg.Session.MaxSessions)
	assert.Equal(t, 45*time.Second, cfg.Scraper.PageLoadTimeout)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty addr", func(c *Config) { c.Server.Addr = "" }},
		{"tiny viewport", func(c *Config) { c.Browser.ViewportWidth = 10 }},
		{"zero page load timeout", func(c *Config) { c.Scraper.PageLoadTimeout = 0 }},
		{"zero scroll loops", func(c *Config) { c.Scraper.MaxScrollLoops = 0 }},
		{"negative settle wait", func(c *Config) { c.Scraper.InitialWait = -time.Second }},
		{"zero idle timeout", func(c *Config) { c.Session.IdleTimeout = 0 }},
		{"zero max sessions", func(c *Config) { c.Session.MaxSessions = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSnapshotExposesOperationalSettings(t *testing.T) {
	snap := DefaultConfig().Snapshot()

	assert.Equal(t, 5, snap["max_sessions"])
	assert.Equal(t, "30m0s", snap["session_timeout"])
	assert.Equal(t, 50, snap["max_scroll_loops"])
}
