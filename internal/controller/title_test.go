// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import "testing"

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name        string
		buffer      string
		current     string
		wantTitle   string
		wantChanged bool
	}{
		{
			name:        "full heading",
			buffer:      "## Event: Goblin Feast\n\nA night of games.",
			wantTitle:   "Goblin Feast",
			wantChanged: true,
		},
		{
			name:        "no heading marker",
			buffer:      "Event: Foo Bar",
			wantTitle:   "Foo Bar",
			wantChanged: true,
		},
		{
			name:        "event name variant case insensitive",
			buffer:      "# EVENT NAME: Mystic Gala",
			wantTitle:   "Mystic Gala",
			wantChanged: true,
		},
		{
			name:        "whitespace instead of colon",
			buffer:      "## Event Dragon Hunt",
			wantTitle:   "Dragon Hunt",
			wantChanged: true,
		},
		{
			name:        "emphasis stripped",
			buffer:      "## Event: **Bold Night**",
			wantTitle:   "Bold Night",
			wantChanged: true,
		},
		{
			name:        "no match leaves current",
			buffer:      "Here is your plan.",
			current:     "Old Title",
			wantTitle:   "Old Title",
			wantChanged: false,
		},
		{
			name:        "partial heading with no text yet",
			buffer:      "## Event: ",
			current:     "",
			wantTitle:   "",
			wantChanged: false,
		},
		{
			name:        "same title is not a change",
			buffer:      "## Event: Foo Bar",
			current:     "Foo Bar",
			wantTitle:   "Foo Bar",
			wantChanged: false,
		},
		{
			name:        "heading not at start of buffer",
			buffer:      "Sure, here you go:\n## Event: Picnic Quest\nDetails follow.",
			wantTitle:   "Picnic Quest",
			wantChanged: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := ExtractTitle(tt.buffer, tt.current)
			if got != tt.wantTitle || changed != tt.wantChanged {
				t.Errorf("ExtractTitle(%q, %q) = (%q, %v), want (%q, %v)",
					tt.buffer, tt.current, got, changed, tt.wantTitle, tt.wantChanged)
			}
		})
	}
}

// The matcher is re-run over the whole buffer on every chunk, so a title
// split across chunk boundaries converges on the complete text.
func TestExtractTitleGrowingBuffer(t *testing.T) {
	title := ""

	title, changed := ExtractTitle("## Event: Fo", title)
	if !changed || title != "Fo" {
		t.Fatalf("first scan = (%q, %v), want (\"Fo\", true)", title, changed)
	}

	title, changed = ExtractTitle("## Event: Foo Bar", title)
	if !changed || title != "Foo Bar" {
		t.Fatalf("second scan = (%q, %v), want (\"Foo Bar\", true)", title, changed)
	}
}
