// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for
// operator-tui.
//
// Configuration sources, in order of precedence:
//   - environment variables (OPERATOR_HOST, RADIENT_API_KEY, ...)
//   - ~/.operator-tui/config.toml
//   - built-in defaults
package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/operator-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete operator-tui configuration.
type Config struct {
	// Server is the Local Operator backend connection.
	Server ServerConfig `toml:"server"`

	// Radient is the cloud service account.
	Radient RadientConfig `toml:"radient"`

	// Chat holds the defaults applied to every send.
	Chat ChatConfig `toml:"chat"`

	// UI holds presentation settings.
	UI UIConfig `toml:"ui"`
}

// ServerConfig contains Local Operator backend configuration.
type ServerConfig struct {
	// BaseURL of the backend (default http://127.0.0.1:1111)
	BaseURL string `toml:"base_url"`
	// TimeoutSecs per request
	TimeoutSecs int `toml:"timeout_secs"`
	// PollIntervalSecs between job status requests
	PollIntervalSecs int `toml:"poll_interval_secs"`
	// PerPage is the conversation history page size
	PerPage int `toml:"per_page"`
	// RequestsPerSec caps the client-side request rate
	RequestsPerSec float64 `toml:"requests_per_sec"`
}

// RadientConfig contains Radient cloud configuration.
type RadientConfig struct {
	// APIKey authenticates against Radient. Never logged in full.
	APIKey string `toml:"api_key"`
	// BaseURL overrides the Radient API endpoint (empty = production)
	BaseURL string `toml:"base_url"`
}

// ChatConfig contains chat defaults.
type ChatConfig struct {
	// Hosting selects where agent models run (e.g. "radient", "openai")
	Hosting string `toml:"hosting"`
	// Model is the default model identifier
	Model string `toml:"model"`
	// Temperature for generation (0 = backend default)
	Temperature float64 `toml:"temperature"`
	// MaxTokens per reply (0 = backend default)
	MaxTokens int `toml:"max_tokens"`
}

// UIConfig contains presentation settings.
type UIConfig struct {
	// Theme is "dark", "light", or "auto"
	Theme string `toml:"theme"`
	// Markdown toggles rendered markdown in transcripts
	Markdown bool `toml:"markdown"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL:          "http://127.0.0.1:1111",
			TimeoutSecs:      30,
			PollIntervalSecs: 2,
			PerPage:          20,
			RequestsPerSec:   10,
		},
		Chat: ChatConfig{
			Hosting: "radient",
			Model:   "auto",
		},
		UI: UIConfig{
			Theme:    "auto",
			Markdown: true,
		},
	}
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = defaults.Server.BaseURL
	}
	if cfg.Server.TimeoutSecs == 0 {
		cfg.Server.TimeoutSecs = defaults.Server.TimeoutSecs
	}
	if cfg.Server.PollIntervalSecs == 0 {
		cfg.Server.PollIntervalSecs = defaults.Server.PollIntervalSecs
	}
	if cfg.Server.PerPage == 0 {
		cfg.Server.PerPage = defaults.Server.PerPage
	}
	if cfg.Server.RequestsPerSec == 0 {
		cfg.Server.RequestsPerSec = defaults.Server.RequestsPerSec
	}
	if cfg.Chat.Hosting == "" {
		cfg.Chat.Hosting = defaults.Chat.Hosting
	}
	if cfg.Chat.Model == "" {
		cfg.Chat.Model = defaults.Chat.Model
	}
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the operator-tui configuration directory.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".operator-tui"), nil
}

// ConfigPath returns the path of the TOML configuration file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir creates the configuration directory if needed.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o700)
}

// =============================================================================
// LOADING
// =============================================================================

// Load loads configuration from the default path, applying environment
// overrides and validation. A missing file is not an error; defaults
// apply.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(path); statErr != nil {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		return cfg, cfg.Validate()
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific TOML file.
func LoadFromPath(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}
	fillDefaults(cfg)
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnvOverrides applies environment variable overrides. Environment
// wins over file values.
func (c *Config) ApplyEnvOverrides() {
	if host := os.Getenv("OPERATOR_HOST"); host != "" {
		c.Server.BaseURL = host
	}
	if key := os.Getenv("RADIENT_API_KEY"); key != "" {
		c.Radient.APIKey = key
	}
	if model := os.Getenv("OPERATOR_TUI_MODEL"); model != "" {
		c.Chat.Model = model
	}
	if hosting := os.Getenv("OPERATOR_TUI_HOSTING"); hosting != "" {
		c.Chat.Hosting = hosting
	}
	if theme := os.Getenv("OPERATOR_TUI_THEME"); theme != "" {
		c.UI.Theme = theme
	}
	if interval := os.Getenv("OPERATOR_TUI_POLL_INTERVAL"); interval != "" {
		if secs, err := strconv.Atoi(interval); err == nil && secs > 0 {
			c.Server.PollIntervalSecs = secs
		}
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if _, err := url.Parse(c.Server.BaseURL); err != nil {
		return fmt.Errorf("server.base_url is not a valid URL: %w", err)
	}
	if c.Server.PollIntervalSecs < 1 {
		return fmt.Errorf("server.poll_interval_secs must be at least 1, got %d", c.Server.PollIntervalSecs)
	}
	if c.Server.PerPage < 1 || c.Server.PerPage > 100 {
		return fmt.Errorf("server.per_page must be in 1..100, got %d", c.Server.PerPage)
	}
	if c.Chat.Temperature < 0 || c.Chat.Temperature > 2 {
		return fmt.Errorf("chat.temperature must be in 0..2, got %g", c.Chat.Temperature)
	}
	switch c.UI.Theme {
	case "dark", "light", "auto":
	default:
		return fmt.Errorf("ui.theme must be dark, light or auto, got %q", c.UI.Theme)
	}
	return nil
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes the configuration to the default TOML file atomically.
func Save(cfg *Config) error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveToPath(cfg, path)
}

// SaveToPath writes the configuration to a TOML file atomically. The file
// is created 0600: it can hold the Radient API key.
func SaveToPath(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# operator-tui configuration\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
