// Package config provides configuration management for the kgadmin CLI.
package config

import "time"

// UIConfig holds configuration for the workbench server.
type UIConfig struct {
	Port          int    `koanf:"port"`
	SessionSecret string `koanf:"session_secret"`
	Demo          bool   `koanf:"demo"`
	AutoOpen      bool   `koanf:"auto_open"`
	// Watch is a graph file re-imported into the session whenever it changes.
	Watch string `koanf:"watch"`
}

// DefaultUIConfig returns a UIConfig with default values.
func DefaultUIConfig() *UIConfig {
	return &UIConfig{
		Port:     DefaultUIPort,
		AutoOpen: false,
	}
}

// GetUIConfig returns the UI config with defaults applied for any unset values.
func (c *Config) GetUIConfig() *UIConfig {
	if c.UI == nil {
		return DefaultUIConfig()
	}
	ui := *c.UI
	if ui.Port == 0 {
		ui.Port = DefaultUIPort
	}
	return &ui
}

// Config holds all CLI configuration options.
type Config struct {
	BaseURL      string               `koanf:"base_url"`
	Token        string               `koanf:"token"`
	Timeout      time.Duration        `koanf:"timeout"`
	PageSize     int                  `koanf:"page_size"`
	Environment  string               `koanf:"environment"`
	Verbose      bool                 `koanf:"verbose"`
	LogLevel     string               `koanf:"log_level"`
	OutputFormat string               `koanf:"output"`
	UI           *UIConfig            `koanf:"ui"`
	Journal      string               `koanf:"journal"` // SQLite operation journal; empty disables it
	Environments map[string]EnvConfig `koanf:"environments"`
}

// EnvConfig holds environment-specific backend overrides.
type EnvConfig struct {
	BaseURL string        `koanf:"base_url"`
	Token   string        `koanf:"token"`
	Timeout time.Duration `koanf:"timeout"`
}

// Default configuration values.
const (
	DefaultBaseURL  = "http://localhost:8080"
	DefaultTimeout  = 30 * time.Second
	DefaultEnv      = "dev"
	DefaultOutput   = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultLogLevel = "warn"
	DefaultUIPort   = 8765
)

// configFileNames are searched in order.
var configFileNames = []string{"kgadmin.yaml", "kgadmin.yml"}
