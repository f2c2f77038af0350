// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.DefaultModel != "gemini-1.5-flash" {
		t.Errorf("DefaultModel = %q", cfg.DefaultModel)
	}
	if cfg.Server.BaseURL != "http://127.0.0.1:8000" {
		t.Errorf("Server.BaseURL = %q", cfg.Server.BaseURL)
	}
	if cfg.Server.RequestsPerMinute != 15 {
		t.Errorf("Server.RequestsPerMinute = %d", cfg.Server.RequestsPerMinute)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config fails validation: %v", err)
	}
}

func TestLoadFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
default_model = "gemini-1.5-pro"

[server]
base_url = "http://planning.internal:9000"
max_retries = 5

[ui]
theme = "light"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}

	if cfg.DefaultModel != "gemini-1.5-pro" {
		t.Errorf("DefaultModel = %q", cfg.DefaultModel)
	}
	if cfg.Server.BaseURL != "http://planning.internal:9000" {
		t.Errorf("Server.BaseURL = %q", cfg.Server.BaseURL)
	}
	if cfg.Server.MaxRetries != 5 {
		t.Errorf("Server.MaxRetries = %d", cfg.Server.MaxRetries)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("UI.Theme = %q", cfg.UI.Theme)
	}

	// Unset fields fall back to defaults.
	if cfg.Server.TimeoutSecs != 60 {
		t.Errorf("Server.TimeoutSecs = %d, want default 60", cfg.Server.TimeoutSecs)
	}
}

func TestLoadFromPathFixesPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`default_model = "gemini-1.5-flash"`), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := LoadFromPath(path); err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("permissions after load = %o, want 0600", perm)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "bad URL",
			mutate:  func(c *Config) { c.Server.BaseURL = "not a url" },
			wantErr: "server.base_url",
		},
		{
			name:    "retries out of range",
			mutate:  func(c *Config) { c.Server.MaxRetries = 0 },
			wantErr: "server.max_retries",
		},
		{
			name:    "temperature out of range",
			mutate:  func(c *Config) { c.Generation.Temperature = 3.5 },
			wantErr: "generation.temperature",
		},
		{
			name:    "negative max tokens",
			mutate:  func(c *Config) { c.Generation.MaxTokens = -1 },
			wantErr: "generation.max_tokens",
		},
		{
			name:    "encrypt without passphrase",
			mutate:  func(c *Config) { c.Storage.Encrypt = true },
			wantErr: "storage.passphrase",
		},
		{
			name:    "bad theme",
			mutate:  func(c *Config) { c.UI.Theme = "solarized" },
			wantErr: "ui.theme",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %q, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("EVENTPLAN_MODEL", "gemini-2.0-flash")
	t.Setenv("EVENTPLAN_SERVER_URL", "http://10.0.0.5:8000")
	t.Setenv("EVENTPLAN_ENCRYPT", "true")
	t.Setenv("EVENTPLAN_PASSPHRASE", "s3cret")
	t.Setenv("EVENTPLAN_THEME", "auto")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.DefaultModel != "gemini-2.0-flash" {
		t.Errorf("DefaultModel = %q", cfg.DefaultModel)
	}
	if cfg.Server.BaseURL != "http://10.0.0.5:8000" {
		t.Errorf("Server.BaseURL = %q", cfg.Server.BaseURL)
	}
	if !cfg.Storage.Encrypt {
		t.Error("Storage.Encrypt not set")
	}
	if cfg.Storage.Passphrase != "s3cret" {
		t.Errorf("Storage.Passphrase = %q", cfg.Storage.Passphrase)
	}
	if cfg.UI.Theme != "auto" {
		t.Errorf("UI.Theme = %q", cfg.UI.Theme)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.DefaultModel = "gemini-1.5-pro"
	cfg.UI.CompactMode = true

	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("saved permissions = %o, want 0600", perm)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if loaded.DefaultModel != "gemini-1.5-pro" {
		t.Errorf("DefaultModel after round trip = %q", loaded.DefaultModel)
	}
	if !loaded.UI.CompactMode {
		t.Error("UI.CompactMode lost in round trip")
	}
}

func TestStringRedactsPassphrase(t *testing.T) {
	cfg := Default()
	cfg.Storage.Passphrase = "super-secret"

	s := cfg.String()
	if strings.Contains(s, "super-secret") {
		t.Error("String() leaks passphrase")
	}
	if !strings.Contains(s, "[REDACTED]") {
		t.Error("String() missing redaction marker")
	}
}
