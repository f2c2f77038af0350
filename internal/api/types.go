// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the Game Event Planner API.
package api

import "github.com/jeranaias/eventplan-tui/internal/model"

// =============================================================================
// REQUEST / RESPONSE TYPES
// =============================================================================

// PlanRequest is the body POSTed to /plan-event.
type PlanRequest struct {
	Messages    []model.WireMessage `json:"messages"`
	Model       string              `json:"model"`
	Temperature *float64            `json:"temperature,omitempty"`
	MaxTokens   *int                `json:"max_tokens,omitempty"`
	Stream      bool                `json:"stream"`
}

// UsageInfo holds token usage reported by a non-streaming response.
type UsageInfo struct {
	PromptTokens            int  `json:"prompt_tokens"`
	CompletionTokens        int  `json:"completion_tokens,omitempty"`
	TotalTokens             int  `json:"total_tokens"`
	CachedContentTokenCount *int `json:"cached_content_token_count,omitempty"`
}

// PlanResponse is the body of a non-streaming success response.
type PlanResponse struct {
	Message model.WireMessage `json:"message"`
	Model   string            `json:"model"`
	Usage   UsageInfo         `json:"usage"`
}

// errorBody is the FastAPI failure shape: {"detail": "..."}.
type errorBody struct {
	Detail string `json:"detail"`
}

// =============================================================================
// STREAM HANDLER
// =============================================================================

// StreamHandler receives streaming events in arrival order.
//
// OnStart fires once, after the response status has been validated and
// before any content arrives; this is the point where callers append
// their streaming placeholder. OnChunk fires once per decoded text
// segment. Both callbacks run on the goroutine driving the stream.
type StreamHandler struct {
	OnStart func()
	OnChunk func(text string)
}

func (h StreamHandler) start() {
	if h.OnStart != nil {
		h.OnStart()
	}
}

func (h StreamHandler) chunk(text string) {
	if h.OnChunk != nil {
		h.OnChunk(text)
	}
}
