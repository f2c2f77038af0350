// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// markdownRenderer wraps a glamour renderer rebuilt on resize so wraps
// track the viewport width.
type markdownRenderer struct {
	renderer *glamour.TermRenderer
	width    int
}

func newMarkdownRenderer(width int) *markdownRenderer {
	m := &markdownRenderer{}
	m.setWidth(width)
	return m
}

// setWidth rebuilds the underlying renderer for a new wrap width.
func (m *markdownRenderer) setWidth(width int) {
	if width < 20 {
		width = 20
	}
	if m.renderer != nil && m.width == width {
		return
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		// Plain text fallback when the renderer cannot initialize.
		m.renderer = nil
		return
	}
	m.renderer = r
	m.width = width
}

// render renders markdown for terminal display. Returns the original
// content unchanged if rendering fails.
func (m *markdownRenderer) render(content string) string {
	if m.renderer == nil {
		return content
	}
	rendered, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(rendered, "\n")
}
