// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete eventplan configuration.
type Config struct {
	// DefaultModel is the model requested when none is selected explicitly.
	DefaultModel string `toml:"default_model" json:"default_model"`

	// Server configuration for the planning backend.
	Server ServerConfig `toml:"server" json:"server"`

	// Generation parameters sent with each request.
	Generation GenerationConfig `toml:"generation" json:"generation"`

	// Storage configuration for conversation persistence.
	Storage StorageConfig `toml:"storage" json:"storage"`

	// UI configuration.
	UI UIConfig `toml:"ui" json:"ui"`
}

// ServerConfig contains planning backend connection settings.
type ServerConfig struct {
	// BaseURL is the URL of the event planning server
	BaseURL string `toml:"base_url" json:"base_url"`
	// TimeoutSecs is the non-streaming request timeout in seconds
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// MaxRetries is the number of attempts for retryable failures
	MaxRetries int `toml:"max_retries" json:"max_retries"`
	// RequestsPerMinute matches the server-side rate limit
	RequestsPerMinute int `toml:"requests_per_minute" json:"requests_per_minute"`
}

// GenerationConfig contains model generation parameters.
type GenerationConfig struct {
	// Temperature controls sampling randomness (0.0-2.0, 0 = server default)
	Temperature float64 `toml:"temperature" json:"temperature"`
	// MaxTokens limits response length (0 = server default)
	MaxTokens int `toml:"max_tokens" json:"max_tokens"`
}

// StorageConfig contains conversation persistence settings.
type StorageConfig struct {
	// DBPath is the SQLite database path (empty = ~/.eventplan/state.db)
	DBPath string `toml:"db_path" json:"db_path"`
	// Encrypt enables AES-256-GCM encryption of stored values
	Encrypt bool `toml:"encrypt" json:"encrypt"`
	// Passphrase is the encryption passphrase.
	// Prefer the EVENTPLAN_PASSPHRASE env var over storing it here.
	Passphrase string `toml:"passphrase" json:"passphrase"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme" json:"theme"`
	// ShowTokens displays token estimates in the UI
	ShowTokens bool `toml:"show_tokens" json:"show_tokens"`
	// CompactMode uses a more compact UI layout
	CompactMode bool `toml:"compact_mode" json:"compact_mode"`
	// Markdown enables markdown rendering of planner replies
	Markdown bool `toml:"markdown" json:"markdown"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		DefaultModel: "gemini-1.5-flash",

		Server: ServerConfig{
			BaseURL:           "http://127.0.0.1:8000",
			TimeoutSecs:       60,
			MaxRetries:        3,
			RequestsPerMinute: 15, // matches the server-side limit
		},

		Generation: GenerationConfig{
			Temperature: 0,
			MaxTokens:   0,
		},

		Storage: StorageConfig{
			DBPath:  "",
			Encrypt: false,
		},

		UI: UIConfig{
			Theme:       "dark",
			ShowTokens:  true,
			CompactMode: false,
			Markdown:    true,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the eventplan configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".eventplan"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// ensureSecurePermissions checks and fixes permissions on config files.
// Config files should be 0600 (owner read/write only) because they may
// hold a storage passphrase.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	mode := info.Mode().Perm()
	if mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}

	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file, falling back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()
	var loadErr error

	path, err := ConfigPath()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := LoadTOML(cfg, path); err != nil {
				loadErr = fmt.Errorf("failed to load config: %w", err)
			} else {
				cfg.ApplyEnvOverrides()
				cfg.SetDefaults()
				if err := cfg.Validate(); err != nil {
					return nil, fmt.Errorf("invalid config: %w", err)
				}
				return cfg, nil
			}
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, loadErr
}

// LoadTOML loads configuration from a TOML file.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		// Permissions might not be fixable on all systems.
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadFromPath loads configuration from a specific file path with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := LoadTOML(cfg, path); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	// Ensure permissions are correct even if the file already existed.
	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	fmt.Fprintln(file, "# eventplan configuration file")
	fmt.Fprintln(file, "# Generated by eventplan - edit with care")
	fmt.Fprintln(file, "")

	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.Server.BaseURL != "" {
		u, err := url.Parse(c.Server.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, ValidationError{
				Field:   "server.base_url",
				Message: fmt.Sprintf("invalid URL '%s'", c.Server.BaseURL),
			})
		}
	}

	if c.Server.TimeoutSecs < 0 {
		errs = append(errs, ValidationError{
			Field:   "server.timeout_secs",
			Message: "must be non-negative",
		})
	}

	if c.Server.MaxRetries < 1 || c.Server.MaxRetries > 10 {
		errs = append(errs, ValidationError{
			Field:   "server.max_retries",
			Message: fmt.Sprintf("must be 1-10, got %d", c.Server.MaxRetries),
		})
	}

	if c.Server.RequestsPerMinute < 0 {
		errs = append(errs, ValidationError{
			Field:   "server.requests_per_minute",
			Message: "must be non-negative (0 disables client-side limiting)",
		})
	}

	if c.Generation.Temperature < 0 || c.Generation.Temperature > 2 {
		errs = append(errs, ValidationError{
			Field:   "generation.temperature",
			Message: fmt.Sprintf("must be 0.0-2.0, got %g", c.Generation.Temperature),
		})
	}

	if c.Generation.MaxTokens < 0 {
		errs = append(errs, ValidationError{
			Field:   "generation.max_tokens",
			Message: "must be non-negative",
		})
	}

	if c.Storage.Encrypt && c.Storage.Passphrase == "" {
		errs = append(errs, ValidationError{
			Field:   "storage.passphrase",
			Message: "required when storage.encrypt is true (set EVENTPLAN_PASSPHRASE)",
		})
	}

	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults sets default values for any missing or zero-value fields.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.DefaultModel == "" {
		c.DefaultModel = defaults.DefaultModel
	}

	if c.Server.BaseURL == "" {
		c.Server.BaseURL = defaults.Server.BaseURL
	}
	if c.Server.TimeoutSecs == 0 {
		c.Server.TimeoutSecs = defaults.Server.TimeoutSecs
	}
	if c.Server.MaxRetries == 0 {
		c.Server.MaxRetries = defaults.Server.MaxRetries
	}
	if c.Server.RequestsPerMinute == 0 {
		c.Server.RequestsPerMinute = defaults.Server.RequestsPerMinute
	}

	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - EVENTPLAN_MODEL: overrides default_model
//   - EVENTPLAN_SERVER_URL: overrides server.base_url
//   - EVENTPLAN_DB_PATH: overrides storage.db_path
//   - EVENTPLAN_ENCRYPT: set to "1" or "true" to enable storage encryption
//   - EVENTPLAN_PASSPHRASE: overrides storage.passphrase
//   - EVENTPLAN_THEME: overrides ui.theme
func (c *Config) ApplyEnvOverrides() {
	if model := os.Getenv("EVENTPLAN_MODEL"); model != "" {
		c.DefaultModel = model
	}

	if serverURL := os.Getenv("EVENTPLAN_SERVER_URL"); serverURL != "" {
		c.Server.BaseURL = serverURL
	}

	if dbPath := os.Getenv("EVENTPLAN_DB_PATH"); dbPath != "" {
		c.Storage.DBPath = dbPath
	}

	if encrypt := os.Getenv("EVENTPLAN_ENCRYPT"); encrypt != "" {
		c.Storage.Encrypt = encrypt == "1" || strings.ToLower(encrypt) == "true"
	}

	if passphrase := os.Getenv("EVENTPLAN_PASSPHRASE"); passphrase != "" {
		c.Storage.Passphrase = passphrase
	}

	if theme := os.Getenv("EVENTPLAN_THEME"); theme != "" {
		c.UI.Theme = theme
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// Clone creates a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns a string representation of the config for debugging.
// The storage passphrase is redacted so it cannot leak into logs.
func (c *Config) String() string {
	safe := c.Clone()
	if safe.Storage.Passphrase != "" {
		safe.Storage.Passphrase = "[REDACTED]"
	}
	data, _ := json.MarshalIndent(safe, "", "  ")
	return string(data)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		}
		globalConfig = cfg
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
