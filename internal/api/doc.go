// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the Game Event Planner API.
//
// The client speaks the /plan-event contract: a POST with the full
// message history, the model identifier, and generation options. With
// stream=true the response body is chunked UTF-8 text terminated by end
// of stream; with stream=false it is a single JSON document carrying the
// finished answer and token usage.
//
// Failure responses are either JSON with a "detail" field or plain text;
// DecodeErrorBody derives a human-readable description in that order,
// falling back to the HTTP status.
//
// The client rate-limits itself to stay under the server's per-minute
// quota and retries transient failures with exponential backoff before
// any stream content has been delivered. It never retries mid-stream.
package api
