// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for eventplan.
//
// Supports TOML configuration with sensible defaults, environment variable
// overrides, and validation.
//
// Configuration file location (in order of precedence):
//   - ~/.eventplan/config.toml
//   - Built-in defaults
//
// A Watcher can reload the file on change so a running session picks up
// edits without a restart.
package config
