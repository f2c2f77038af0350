// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server provides a mock planning server for development and
// testing.
//
// The mock speaks the same wire protocol as the real planning backend:
//
//   - POST /plan-event - Generate an event plan (streaming or not)
//   - GET  /health     - Health check
//   - GET  /models     - List accepted models
//
// Streamed responses are chunked UTF-8 text with no framing, exactly
// like the production service, so the full client stack (retry, rate
// limiting, the stream decoder) can be exercised without network access
// or API keys. Run it with `eventplan serve`.
package server
