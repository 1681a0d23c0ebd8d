// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.BaseURL != "http://127.0.0.1:1111" {
		t.Errorf("default base URL = %q", cfg.Server.BaseURL)
	}
	if cfg.Server.PollIntervalSecs != 2 {
		t.Errorf("default poll interval = %d, want 2", cfg.Server.PollIntervalSecs)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.Server.BaseURL = "http://127.0.0.1:2222"
	cfg.Radient.APIKey = "key-abc"
	cfg.Chat.Model = "gpt-4o"
	cfg.Chat.Temperature = 0.7
	cfg.UI.Theme = "dark"

	if err := SaveToPath(cfg, path); err != nil {
		t.Fatalf("SaveToPath() error: %v", err)
	}

	// API keys must not be world readable.
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config file mode = %o, want 600", perm)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if loaded.Server.BaseURL != cfg.Server.BaseURL {
		t.Errorf("base URL = %q, want %q", loaded.Server.BaseURL, cfg.Server.BaseURL)
	}
	if loaded.Radient.APIKey != "key-abc" {
		t.Errorf("api key not round-tripped")
	}
	if loaded.Chat.Temperature != 0.7 {
		t.Errorf("temperature = %g", loaded.Chat.Temperature)
	}
}

func TestLoadFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	partial := `
[chat]
model = "custom"
`
	if err := os.WriteFile(path, []byte(partial), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if cfg.Chat.Model != "custom" {
		t.Errorf("model = %q, want custom", cfg.Chat.Model)
	}
	if cfg.Server.BaseURL == "" || cfg.Server.PerPage == 0 {
		t.Error("missing sections must be backfilled with defaults")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("OPERATOR_HOST", "http://10.0.0.5:1111")
	t.Setenv("RADIENT_API_KEY", "env-key")
	t.Setenv("OPERATOR_TUI_POLL_INTERVAL", "5")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Server.BaseURL != "http://10.0.0.5:1111" {
		t.Errorf("OPERATOR_HOST not applied: %q", cfg.Server.BaseURL)
	}
	if cfg.Radient.APIKey != "env-key" {
		t.Errorf("RADIENT_API_KEY not applied")
	}
	if cfg.Server.PollIntervalSecs != 5 {
		t.Errorf("poll interval = %d, want 5", cfg.Server.PollIntervalSecs)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero poll interval", func(c *Config) { c.Server.PollIntervalSecs = 0 }},
		{"per page too big", func(c *Config) { c.Server.PerPage = 500 }},
		{"temperature out of range", func(c *Config) { c.Chat.Temperature = 3 }},
		{"unknown theme", func(c *Config) { c.UI.Theme = "solarized" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
