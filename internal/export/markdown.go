// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter writes the plan as it was generated, prepending a
// title heading when the plan body does not start with one.
type MarkdownExporter struct{}

// Export converts a document to markdown.
func (e *MarkdownExporter) Export(doc *Document) ([]byte, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	var sb strings.Builder

	if doc.Title != "" && !strings.HasPrefix(strings.TrimSpace(doc.Plan), "#") {
		fmt.Fprintf(&sb, "# %s\n\n", doc.Title)
	}
	sb.WriteString(doc.Plan)
	if !strings.HasSuffix(doc.Plan, "\n") {
		sb.WriteString("\n")
	}

	if doc.Model != "" || !doc.GeneratedAt.IsZero() {
		sb.WriteString("\n---\n\n")
		if doc.Model != "" {
			fmt.Fprintf(&sb, "*Generated by %s", doc.Model)
			if !doc.GeneratedAt.IsZero() {
				fmt.Fprintf(&sb, " on %s", doc.GeneratedAt.Format("2006-01-02 15:04"))
			}
			sb.WriteString("*\n")
		} else {
			fmt.Fprintf(&sb, "*Generated on %s*\n", doc.GeneratedAt.Format("2006-01-02 15:04"))
		}
	}

	return []byte(sb.String()), nil
}

// FileExtension returns the extension including the dot.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}
