// Package config holds the scribe service configuration.
//
// Configuration is loaded from an optional YAML file, then overridden by
// environment variables (a .env file is honoured when present). Defaults are
// suitable for local development against a headless Chromium.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the full service configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server" json:"server"`
	Browser BrowserConfig `yaml:"browser" json:"browser"`
	Scraper ScraperConfig `yaml:"scraper" json:"scraper"`
	Session SessionConfig `yaml:"session" json:"session"`
}

// ServerConfig defines the HTTP listener.
type ServerConfig struct {
	Addr         string        `yaml:"addr" json:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" json:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" json:"idle_timeout"`
}

// BrowserConfig defines how browser instances are launched.
type BrowserConfig struct {
	Headless       bool          `yaml:"headless" json:"headless"`
	SlowMo         time.Duration `yaml:"slow_mo" json:"slow_mo"`
	Devtools       bool          `yaml:"devtools" json:"devtools"`
	UserAgent      string        `yaml:"user_agent" json:"user_agent"`
	ViewportWidth  int           `yaml:"viewport_width" json:"viewport_width"`
	ViewportHeight int           `yaml:"viewport_height" json:"viewport_height"`
}

// ScraperConfig bounds every page operation the scraper performs.
type ScraperConfig struct {
	PageLoadTimeout    time.Duration `yaml:"page_load_timeout" json:"page_load_timeout"`
	ElementWaitTimeout time.Duration `yaml:"element_wait_timeout" json:"element_wait_timeout"`
	NavigationTimeout  time.Duration `yaml:"navigation_timeout" json:"navigation_timeout"`
	InitialWait        time.Duration `yaml:"initial_wait" json:"initial_wait"`
	ScrollDelay        time.Duration `yaml:"scroll_delay" json:"scroll_delay"`
	MaxScrollLoops     int           `yaml:"max_scroll_loops" json:"max_scroll_loops"`
}

// SessionConfig bounds session lifetime and concurrency.
type SessionConfig struct {
	IdleTimeout   time.Duration `yaml:"idle_timeout" json:"idle_timeout"`
	SweepInterval time.Duration `yaml:"sweep_interval" json:"sweep_interval"`
	MaxSessions   int           `yaml:"max_sessions" json:"max_sessions"`
}

// DefaultConfig returns a configuration suitable for most deployments.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":8002",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 5 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
		Browser: BrowserConfig{
			Headless:       true,
			SlowMo:         0,
			Devtools:       false,
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			ViewportWidth:  1280,
			ViewportHeight: 720,
		},
		Scraper: ScraperConfig{
			PageLoadTimeout:    30 * time.Second,
			ElementWaitTimeout: 5 * time.Second,
			NavigationTimeout:  30 * time.Second,
			InitialWait:        2 * time.Second,
			ScrollDelay:        time.Second,
			MaxScrollLoops:     50,
		},
		Session: SessionConfig{
			IdleTimeout:   30 * time.Minute,
			SweepInterval: time.Minute,
			MaxSessions:   5,
		},
	}
}

// UnmarshalYAML decodes duration fields from strings like "15s" while leaving
// fields absent from the document untouched.
func (s *ServerConfig) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Addr         *string `yaml:"addr"`
		ReadTimeout  *string `yaml:"read_timeout"`
		WriteTimeout *string `yaml:"write_timeout"`
		IdleTimeout  *string `yaml:"idle_timeout"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw.Addr != nil {
		s.Addr = *raw.Addr
	}
	if err := setDuration(&s.ReadTimeout, raw.ReadTimeout); err != nil {
		return err
	}
	if err := setDuration(&s.WriteTimeout, raw.WriteTimeout); err != nil {
		return err
	}
	return setDuration(&s.IdleTimeout, raw.IdleTimeout)
}

func (b *BrowserConfig) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Headless       *bool   `yaml:"headless"`
		SlowMo         *string `yaml:"slow_mo"`
		Devtools       *bool   `yaml:"devtools"`
		UserAgent      *string `yaml:"user_agent"`
		ViewportWidth  *int    `yaml:"viewport_width"`
		ViewportHeight *int    `yaml:"viewport_height"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw.Headless != nil {
		b.Headless = *raw.Headless
	}
	if raw.Devtools != nil {
		b.Devtools = *raw.Devtools
	}
	if raw.UserAgent != nil {
		b.UserAgent = *raw.UserAgent
	}
	if raw.ViewportWidth != nil {
		b.ViewportWidth = *raw.ViewportWidth
	}
	if raw.ViewportHeight != nil {
		b.ViewportHeight = *raw.ViewportHeight
	}
	return setDuration(&b.SlowMo, raw.SlowMo)
}

func (s *ScraperConfig) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		PageLoadTimeout    *string `yaml:"page_load_timeout"`
		ElementWaitTimeout *string `yaml:"element_wait_timeout"`
		NavigationTimeout  *string `yaml:"navigation_timeout"`
		InitialWait        *string `yaml:"initial_wait"`
		ScrollDelay        *string `yaml:"scroll_delay"`
		MaxScrollLoops     *int    `yaml:"max_scroll_loops"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw.MaxScrollLoops != nil {
		s.MaxScrollLoops = *raw.MaxScrollLoops
	}
	for _, pair := range []struct {
		dst *time.Duration
		src *string
	}{
		{&s.PageLoadTimeout, raw.PageLoadTimeout},
		{&s.ElementWaitTimeout, raw.ElementWaitTimeout},
		{&s.NavigationTimeout, raw.NavigationTimeout},
		{&s.InitialWait, raw.InitialWait},
		{&s.ScrollDelay, raw.ScrollDelay},
	} {
		if err := setDuration(pair.dst, pair.src); err != nil {
			return err
		}
	}
	return nil
}

func (s *SessionConfig) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		IdleTimeout   *string `yaml:"idle_timeout"`
		SweepInterval *string `yaml:"sweep_interval"`
		MaxSessions   *int    `yaml:"max_sessions"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw.MaxSessions != nil {
		s.MaxSessions = *raw.MaxSessions
	}
	if err := setDuration(&s.IdleTimeout, raw.IdleTimeout); err != nil {
		return err
	}
	return setDuration(&s.SweepInterval, raw.SweepInterval)
}

func setDuration(dst *time.Duration, src *string) error {
	if src == nil {
		return nil
	}
	d, err := time.ParseDuration(*src)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", *src, err)
	}
	*dst = d
	return nil
}

// Load builds the configuration from defaults, an optional YAML file, and
// environment overrides, in that order. An empty path skips the file step; a
// named file that cannot be read is an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	// .env is optional; real environment variables win either way
	_ = godotenv.Load()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("SCRIBE_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("SCRIBE_HEADLESS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Browser.Headless = b
		}
	}
	if v := os.Getenv("SCRIBE_DEVTOOLS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Browser.Devtools = b
		}
	}
	if v := os.Getenv("SCRIBE_SLOW_MO"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Browser.SlowMo = d
		}
	}
	if v := os.Getenv("SCRIBE_USER_AGENT"); v != "" {
		c.Browser.UserAgent = v
	}
	if v := os.Getenv("SCRIBE_PAGE_LOAD_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Scraper.PageLoadTimeout = d
		}
	}
	if v := os.Getenv("SCRIBE_NAVIGATION_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Scraper.NavigationTimeout = d
		}
	}
	if v := os.Getenv("SCRIBE_SESSION_IDLE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Session.IdleTimeout = d
		}
	}
	if v := os.Getenv("SCRIBE_MAX_SESSIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Session.MaxSessions = n
		}
	}
	if v := os.Getenv("SCRIBE_MAX_SCROLL_LOOPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Scraper.MaxScrollLoops = n
		}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server address is required")
	}
	if c.Browser.ViewportWidth < 100 || c.Browser.ViewportWidth > 5000 {
		return fmt.Errorf("viewport width must be between 100 and 5000 pixels")
	}
	if c.Browser.ViewportHeight < 100 || c.Browser.ViewportHeight > 5000 {
		return fmt.Errorf("viewport height must be between 100 and 5000 pixels")
	}
	if c.Scraper.PageLoadTimeout <= 0 {
		return fmt.Errorf("page_load_timeout must be positive")
	}
	if c.Scraper.ElementWaitTimeout <= 0 {
		return fmt.Errorf("element_wait_timeout must be positive")
	}
	if c.Scraper.NavigationTimeout <= 0 {
		return fmt.Errorf("navigation_timeout must be positive")
	}
	if c.Scraper.MaxScrollLoops <= 0 {
		return fmt.Errorf("max_scroll_loops must be positive")
	}
	if c.Scraper.InitialWait < 0 || c.Scraper.ScrollDelay < 0 {
		return fmt.Errorf("wait durations cannot be negative")
	}
	if c.Session.IdleTimeout <= 0 {
		return fmt.Errorf("session idle_timeout must be positive")
	}
	if c.Session.SweepInterval <= 0 {
		return fmt.Errorf("session sweep_interval must be positive")
	}
	if c.Session.MaxSessions <= 0 {
		return fmt.Errorf("max_sessions must be positive")
	}
	return nil
}

// Snapshot returns the operational settings exposed on the diagnostic surface.
func (c *Config) Snapshot() map[string]interface{} {
	return map[string]interface{}{
		"max_sessions":      c.Session.MaxSessions,
		"session_timeout":   c.Session.IdleTimeout.String(),
		"sweep_interval":    c.Session.SweepInterval.String(),
		"page_load_timeout": c.Scraper.PageLoadTimeout.String(),
		"max_scroll_loops":  c.Scraper.MaxScrollLoops,
		"headless":          c.Browser.Headless,
	}
}
