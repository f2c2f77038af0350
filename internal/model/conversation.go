// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"encoding/json"
	"time"
)

// MaxMessages is the maximum number of messages to keep in conversation
// history. When exceeded, the oldest messages are pruned to prevent
// unbounded memory growth.
const MaxMessages = 1000

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation holds the ordered message history plus derived state.
//
// Invariants maintained by the mutation methods:
//   - At most one message is streaming at any time.
//   - An error message is always immediately preceded by the user message
//     whose submission produced it (this is what makes resend possible).
type Conversation struct {
	Messages []*Message

	// Title is the event title extracted from the streamed plan. Set once
	// matched, overwritten by later matches, cleared only by Reset.
	Title string

	// Model is the planner model identifier used for submissions.
	Model string

	// Pending is true exactly while a submission is outstanding.
	Pending bool

	// LastError holds the description of the most recent failure, cleared
	// on the next submission attempt.
	LastError string
}

// NewConversation creates an empty conversation using the default model.
func NewConversation() *Conversation {
	return &Conversation{
		Messages: make([]*Message, 0),
		Model:    DefaultModel,
	}
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// Append adds a message to the end of the conversation.
func (c *Conversation) Append(msg *Message) {
	c.Messages = append(c.Messages, msg)
	c.pruneOldMessages()
}

// ByID returns the message with the given ID, or nil.
func (c *Conversation) ByID(id string) *Message {
	for _, msg := range c.Messages {
		if msg.ID == id {
			return msg
		}
	}
	return nil
}

// IndexOf returns the position of the message with the given ID, or -1.
func (c *Conversation) IndexOf(id string) int {
	for i, msg := range c.Messages {
		if msg.ID == id {
			return i
		}
	}
	return -1
}

// Remove deletes the message with the given ID. Returns true if found.
func (c *Conversation) Remove(id string) bool {
	for i, msg := range c.Messages {
		if msg.ID == id {
			c.Messages = append(c.Messages[:i], c.Messages[i+1:]...)
			return true
		}
	}
	return false
}

// TruncateAt drops the message at index i and everything after it.
func (c *Conversation) TruncateAt(i int) {
	if i < 0 || i >= len(c.Messages) {
		return
	}
	c.Messages = c.Messages[:i]
}

// Last returns the most recent message, or nil if empty.
func (c *Conversation) Last() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

// StreamingMessage returns the single in-progress placeholder, or nil.
func (c *Conversation) StreamingMessage() *Message {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].IsStreaming {
			return c.Messages[i]
		}
	}
	return nil
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	return len(c.Messages)
}

// IsEmpty returns true if there are no messages.
func (c *Conversation) IsEmpty() bool {
	return len(c.Messages) == 0
}

// Reset clears all messages, the title, and the error state. The model
// selection survives a reset.
func (c *Conversation) Reset() {
	c.Messages = make([]*Message, 0)
	c.Title = ""
	c.Pending = false
	c.LastError = ""
}

// pruneOldMessages drops the oldest messages once the history exceeds
// MaxMessages.
func (c *Conversation) pruneOldMessages() {
	if len(c.Messages) <= MaxMessages {
		return
	}
	c.Messages = c.Messages[len(c.Messages)-MaxMessages:]
}

// =============================================================================
// WIRE CONVERSION
// =============================================================================

// WireMessage is the message shape the planner API accepts: only the
// user/model roles and the text content travel over the wire.
type WireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ToWireMessages converts the history to the planner API format. Local
// error entries and empty messages are skipped.
func (c *Conversation) ToWireMessages() []WireMessage {
	out := make([]WireMessage, 0, len(c.Messages))
	for _, msg := range c.Messages {
		if msg.Role == RoleError || msg.Content == "" {
			continue
		}
		out = append(out, WireMessage{
			Role:    msg.Role.String(),
			Content: msg.Content,
		})
	}
	return out
}

// =============================================================================
// TOKEN TRACKING
// =============================================================================

// EstimateTokens estimates the total token count of the conversation,
// with a small per-message overhead for the request structure.
func (c *Conversation) EstimateTokens() int {
	total := 0
	for _, msg := range c.Messages {
		if msg.Role == RoleError {
			continue
		}
		total += msg.EstimateTokens() + 4
	}
	return total
}

// =============================================================================
// SERIALIZATION
// =============================================================================

// storedMessage is the persisted message shape.
type storedMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// EncodeMessages serializes the message list to JSON for persistence.
// A streaming placeholder is persisted with whatever content it has at
// the time of the write; restored messages are always final.
func EncodeMessages(msgs []*Message) (string, error) {
	stored := make([]storedMessage, 0, len(msgs))
	for _, m := range msgs {
		stored = append(stored, storedMessage{
			ID:        m.ID,
			Role:      m.Role.String(),
			Content:   m.Content,
			Timestamp: m.Timestamp,
		})
	}
	data, err := json.Marshal(stored)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeMessages parses a persisted message list. Any malformed payload
// or invalid role yields an error; callers fall back to an empty
// conversation rather than surfacing it.
func DecodeMessages(data string) ([]*Message, error) {
	var stored []storedMessage
	if err := json.Unmarshal([]byte(data), &stored); err != nil {
		return nil, err
	}
	msgs := make([]*Message, 0, len(stored))
	for _, s := range stored {
		role := Role(s.Role)
		if !role.Valid() {
			return nil, &InvalidRoleError{Role: s.Role}
		}
		id := s.ID
		if id == "" {
			// Older persisted state predates stable IDs.
			id = NewMessage(role, "").ID
		}
		msgs = append(msgs, &Message{
			ID:        id,
			Role:      role,
			Content:   s.Content,
			Timestamp: s.Timestamp,
		})
	}
	return msgs, nil
}

// InvalidRoleError reports a persisted message with an unknown role.
type InvalidRoleError struct {
	Role string
}

func (e *InvalidRoleError) Error() string {
	return "invalid message role: " + e.Role
}
