// Package config loads the YAML configuration shared by the commands.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"pinecone/pkg/engine"
	"pinecone/pkg/layout"
)

// Config is the top-level configuration file.
type Config struct {
	Viewport ViewportConfig `yaml:"viewport"`
	Fetch    FetchConfig    `yaml:"fetch"`
	Log      LogConfig      `yaml:"log"`
	Font     FontConfig     `yaml:"font"`
	Server   ServerConfig   `yaml:"server"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Viewer   ViewerConfig   `yaml:"viewer"`
	Scripts  ScriptsConfig  `yaml:"scripts"`
}

type ViewportConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// FetchConfig bounds image loading.
type FetchConfig struct {
	Timeout time.Duration `yaml:"timeout"`
	BaseURL string        `yaml:"base_url"`
	BaseDir string        `yaml:"base_dir"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // json | console
}

// FontConfig scales the glyph metrics table.
type FontConfig struct {
	Scale float64 `yaml:"scale"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// SnapshotConfig locates the stored snapshot and the browser that captures it.
type SnapshotConfig struct {
	Path           string        `yaml:"path"`
	BrowserURL     string        `yaml:"browser_url"`
	CaptureTimeout time.Duration `yaml:"capture_timeout"`
}

// ViewerConfig controls the desktop viewer.
type ViewerConfig struct {
	ServerURL    string        `yaml:"server_url"`
	PollInterval time.Duration `yaml:"poll_interval"`
	Scripts      bool          `yaml:"scripts"`
}

// ScriptsConfig bounds document script execution.
type ScriptsConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadFile reads a YAML configuration file. An empty path yields Default().
func LoadFile(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration text.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Viewport.Width <= 0 {
		c.Viewport.Width = 800
	}
	if c.Viewport.Height <= 0 {
		c.Viewport.Height = 600
	}
	if c.Fetch.Timeout <= 0 {
		c.Fetch.Timeout = 2 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Font.Scale <= 0 {
		c.Font.Scale = 1
	}
	if c.Server.Addr == "" {
		c.Server.Addr = "127.0.0.1:8714"
	}
	if c.Snapshot.Path == "" {
		c.Snapshot.Path = "snapshot.pcs"
	}
	if c.Snapshot.CaptureTimeout <= 0 {
		c.Snapshot.CaptureTimeout = 30 * time.Second
	}
	if c.Viewer.ServerURL == "" {
		c.Viewer.ServerURL = "http://" + c.Server.Addr
	}
	if c.Viewer.PollInterval <= 0 {
		c.Viewer.PollInterval = 2 * time.Second
	}
	if c.Scripts.Timeout <= 0 {
		c.Scripts.Timeout = 5 * time.Second
	}
}

// Engine converts the file's settings into an engine configuration.
func (c *Config) Engine() engine.Config {
	return engine.Config{
		Viewport:     layout.Size{Width: float64(c.Viewport.Width), Height: float64(c.Viewport.Height)},
		FetchTimeout: c.Fetch.Timeout,
		MetricsScale: c.Font.Scale,
		BaseURL:      c.Fetch.BaseURL,
		BaseDir:      c.Fetch.BaseDir,
		LogLevel:     c.Log.Level,
		LogFormat:    c.Log.Format,
	}
}
