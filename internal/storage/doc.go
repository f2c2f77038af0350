// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the key-value persistence layer for the
// conversation controller.
//
// The controller treats persistence as a plain string-valued get/set
// surface (the KV interface), so the core stays testable against the
// in-memory implementation. The production backend is a single-table
// SQLite database under ~/.eventplan/, and an optional wrapper adds
// AES-256-GCM encryption at rest with PBKDF2-SHA-256 key derivation.
package storage
