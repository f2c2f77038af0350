// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	// RoleUser is a prompt typed by the user.
	RoleUser Role = "user"
	// RoleModel is an answer generated by the planner API.
	RoleModel Role = "model"
	// RoleError is a local entry describing a failed submission.
	// Error messages are never sent over the wire.
	RoleError Role = "error"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleModel:
		return "Planner"
	case RoleError:
		return "Error"
	default:
		return string(r)
	}
}

// Valid reports whether the role is one the conversation accepts.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleModel || r == RoleError
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a conversation.
//
// Every message carries a stable ID assigned at construction so callers
// mutate the streaming placeholder by ID rather than by positional index,
// which would drift if other mutations interleave.
type Message struct {
	// Identity
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`

	// Content
	Content string `json:"content"`

	// IsStreaming marks the in-progress assistant placeholder. It is
	// never persisted; a restored message is always final.
	IsStreaming bool `json:"-"`
}

// NewMessage creates a new message with a generated ID.
func NewMessage(role Role, content string) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) *Message {
	return NewMessage(RoleUser, content)
}

// NewModelMessage creates the empty streaming placeholder for an answer.
func NewModelMessage() *Message {
	m := NewMessage(RoleModel, "")
	m.IsStreaming = true
	return m
}

// NewErrorMessage creates a local error entry.
func NewErrorMessage(description string) *Message {
	return NewMessage(RoleError, description)
}

// =============================================================================
// MESSAGE METHODS
// =============================================================================

// SetStreamContent overwrites the content of a streaming placeholder with
// the full accumulated text so far. Overwriting (rather than appending)
// means readers always observe the complete current answer regardless of
// how chunks were batched. Finalized messages are not modified.
func (m *Message) SetStreamContent(full string) {
	if m.IsStreaming {
		m.Content = full
	}
}

// Finalize marks a streaming placeholder as complete and immutable.
func (m *Message) Finalize() {
	m.IsStreaming = false
}

// IsEmpty returns true if the message has no content.
func (m *Message) IsEmpty() bool {
	return len(m.Content) == 0
}

// Preview returns a truncated preview of the message content.
// Uses rune-based truncation to handle Unicode correctly.
func (m *Message) Preview(maxLen int) string {
	runes := []rune(m.Content)
	if len(runes) <= maxLen {
		return m.Content
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// EstimateTokens gives a rough estimate of token count.
// Uses the approximation of ~4 characters per token.
func (m *Message) EstimateTokens() int {
	return (len(m.Content) + 3) / 4
}
