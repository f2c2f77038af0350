// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"strings"
	"testing"
)

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestMessage_StableIDs(t *testing.T) {
	a := NewUserMessage("hello")
	b := NewUserMessage("hello")
	if a.ID == "" || b.ID == "" {
		t.Fatal("messages should get generated IDs")
	}
	if a.ID == b.ID {
		t.Error("two messages should never share an ID")
	}
}

func TestMessage_SetStreamContent(t *testing.T) {
	m := NewModelMessage()
	if !m.IsStreaming {
		t.Fatal("placeholder should start streaming")
	}

	m.SetStreamContent("partial")
	m.SetStreamContent("partial answer")
	if m.Content != "partial answer" {
		t.Errorf("Content = %q, want full overwrite", m.Content)
	}

	m.Finalize()
	m.SetStreamContent("late chunk")
	if m.Content != "partial answer" {
		t.Error("finalized message must be immutable")
	}
}

func TestMessage_Preview(t *testing.T) {
	tests := []struct {
		name    string
		content string
		maxLen  int
		want    string
	}{
		{"short", "hi", 10, "hi"},
		{"exact", "12345", 5, "12345"},
		{"truncated", "0123456789", 8, "01234..."},
		{"unicode", strings.Repeat("é", 10), 8, strings.Repeat("é", 5) + "..."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := NewUserMessage(tc.content)
			if got := m.Preview(tc.maxLen); got != tc.want {
				t.Errorf("Preview(%d) = %q, want %q", tc.maxLen, got, tc.want)
			}
		})
	}
}

// =============================================================================
// CONVERSATION TESTS
// =============================================================================

func TestConversation_AppendRemove(t *testing.T) {
	c := NewConversation()
	u := NewUserMessage("plan a party")
	p := NewModelMessage()
	c.Append(u)
	c.Append(p)

	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	if c.StreamingMessage() != p {
		t.Error("StreamingMessage should find the placeholder")
	}
	if !c.Remove(p.ID) {
		t.Fatal("Remove should find the placeholder by ID")
	}
	if c.StreamingMessage() != nil {
		t.Error("no streaming message should remain after removal")
	}
	if c.Last() != u {
		t.Error("user message should be last after placeholder removal")
	}
}

func TestConversation_Reset(t *testing.T) {
	c := NewConversation()
	c.Model = "gemini-2.0-flash"
	c.Append(NewUserMessage("hi"))
	c.Title = "LAN Party"
	c.LastError = "boom"

	c.Reset()

	if !c.IsEmpty() || c.Title != "" || c.LastError != "" {
		t.Error("Reset should clear messages, title, and error state")
	}
	if c.Model != "gemini-2.0-flash" {
		t.Error("model selection should survive a reset")
	}
}

func TestConversation_ToWireMessages(t *testing.T) {
	c := NewConversation()
	c.Append(NewUserMessage("plan a party"))
	c.Append(NewErrorMessage("service unavailable"))
	c.Append(NewUserMessage("plan a quiz night"))
	answer := NewModelMessage()
	answer.SetStreamContent("## Event: Quiz Night")
	answer.Finalize()
	c.Append(answer)

	wire := c.ToWireMessages()
	if len(wire) != 3 {
		t.Fatalf("len(wire) = %d, want 3 (error entry skipped)", len(wire))
	}
	for _, m := range wire {
		if m.Role != "user" && m.Role != "model" {
			t.Errorf("wire role %q should never leave the client", m.Role)
		}
	}
}

func TestConversation_EncodeDecodeRoundTrip(t *testing.T) {
	c := NewConversation()
	c.Append(NewUserMessage("plan a party"))
	c.Append(NewErrorMessage("timeout"))

	encoded, err := EncodeMessages(c.Messages)
	if err != nil {
		t.Fatalf("EncodeMessages: %v", err)
	}

	decoded, err := DecodeMessages(encoded)
	if err != nil {
		t.Fatalf("DecodeMessages: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("len(decoded) = %d, want 2", len(decoded))
	}
	if decoded[0].ID != c.Messages[0].ID {
		t.Error("IDs should survive the round trip")
	}
	if decoded[1].Role != RoleError || decoded[1].Content != "timeout" {
		t.Error("error entries should survive the round trip")
	}
	if decoded[0].IsStreaming {
		t.Error("restored messages are always final")
	}
}

func TestDecodeMessages_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"garbage", "{not json"},
		{"wrong shape", `{"role":"user"}`},
		{"invalid role", `[{"role":"wizard","content":"hi"}]`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := DecodeMessages(tc.data); err == nil {
				t.Error("DecodeMessages should reject malformed input")
			}
		})
	}
}

func TestConversation_PruneOldMessages(t *testing.T) {
	c := NewConversation()
	for i := 0; i < MaxMessages+10; i++ {
		c.Append(NewUserMessage("x"))
	}
	if c.Len() != MaxMessages {
		t.Errorf("Len() = %d, want %d after pruning", c.Len(), MaxMessages)
	}
}

// =============================================================================
// MODEL REGISTRY TESTS
// =============================================================================

func TestModels_Registry(t *testing.T) {
	for _, id := range []string{"gemini-1.5-pro", "gemini-1.5-flash", "gemini-2.0-flash"} {
		if !ValidModel(id) {
			t.Errorf("model %q missing from registry", id)
		}
	}
	if ValidModel("gpt-4o") {
		t.Error("unknown models must be rejected")
	}
	if !ValidModel(DefaultModel) {
		t.Error("DefaultModel must be registered")
	}
}

func TestModels_NextModelWraps(t *testing.T) {
	ids := ModelIDs()
	seen := map[string]bool{}
	cur := DefaultModel
	for range ids {
		cur = NextModel(cur)
		seen[cur] = true
	}
	if len(seen) != len(ids) {
		t.Errorf("cycling visited %d models, want %d", len(seen), len(ids))
	}
}
