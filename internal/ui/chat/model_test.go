// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import "testing"

func TestExportFilename(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"", "event-plan.md"},
		{"Goblin Feast", "goblin-feast.md"},
		{"Game Night 2024!", "game-night-2024.md"},
		{"???", "event-plan.md"},
		{"  Trimmed  ", "trimmed.md"},
	}

	for _, tt := range tests {
		if got := ExportFilename(tt.title); got != tt.want {
			t.Errorf("ExportFilename(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestMarkdownRendererFallback(t *testing.T) {
	m := newMarkdownRenderer(40)

	// Whatever the terminal, rendering must never lose the content.
	out := m.render("## Event: Picnic\n\n- sandwiches\n- frisbee")
	if out == "" {
		t.Error("render returned empty output")
	}

	// Width changes rebuild the renderer without error.
	m.setWidth(120)
	if out := m.render("plain text"); out == "" {
		t.Error("render after resize returned empty output")
	}
}
