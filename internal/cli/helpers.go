// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// helpers.go - Shared construction helpers for eventplan CLI handlers.
package cli

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/jeranaias/eventplan-tui/internal/api"
	"github.com/jeranaias/eventplan-tui/internal/config"
	"github.com/jeranaias/eventplan-tui/internal/model"
	"github.com/jeranaias/eventplan-tui/internal/storage"
)

// =============================================================================
// CLIENT CONSTRUCTION
// =============================================================================

// NewPlannerClient builds a planner API client from the loaded config.
func NewPlannerClient(cfg *config.Config) *api.Client {
	clientCfg := api.DefaultConfig()
	if cfg.Server.BaseURL != "" {
		clientCfg.BaseURL = cfg.Server.BaseURL
	}
	if cfg.Server.TimeoutSecs > 0 {
		clientCfg.Timeout = time.Duration(cfg.Server.TimeoutSecs) * time.Second
	}
	if cfg.Server.MaxRetries > 0 {
		clientCfg.MaxRetries = cfg.Server.MaxRetries
	}
	clientCfg.RequestsPerMinute = cfg.Server.RequestsPerMinute
	return api.NewClientWithConfig(clientCfg)
}

// ResolveModel picks the planner model from CLI args, then config, then
// the registry default.
func ResolveModel(cfg *config.Config, args Args) (string, error) {
	id := args.Model
	if id == "" {
		id = cfg.DefaultModel
	}
	if id == "" {
		return model.DefaultModel, nil
	}
	if !model.ValidModel(id) {
		return "", fmt.Errorf("unknown model %q (available: %s)", id, strings.Join(model.ModelIDs(), ", "))
	}
	return id, nil
}

// =============================================================================
// STORAGE CONSTRUCTION
// =============================================================================

// OpenStore opens the persistent conversation store described by the
// config, wrapping it with encryption when enabled.
func OpenStore(cfg *config.Config) (storage.KV, error) {
	path := cfg.Storage.DBPath
	if path == "" {
		var err error
		path, err = storage.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve state path: %w", err)
		}
	}

	kv, err := storage.OpenSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}

	if cfg.Storage.Encrypt {
		passphrase := cfg.Storage.Passphrase
		if env := os.Getenv("EVENTPLAN_PASSPHRASE"); env != "" {
			passphrase = env
		}
		if passphrase == "" {
			kv.Close()
			return nil, fmt.Errorf("storage encryption enabled but no passphrase configured")
		}
		return storage.NewEncryptedKV(kv, passphrase), nil
	}

	return kv, nil
}

// =============================================================================
// LOGGING
// =============================================================================

// NewCLILogger returns a logger for controller diagnostics. Quiet mode
// discards everything; verbose mode writes to stderr with timestamps.
func NewCLILogger(args Args) *log.Logger {
	if args.Verbose {
		return log.New(os.Stderr, "eventplan: ", log.LstdFlags)
	}
	return log.New(io.Discard, "", 0)
}
