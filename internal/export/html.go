// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"strings"
	"time"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter renders the plan as a standalone page with embedded CSS,
// suitable for sharing with people who will never open a terminal.
type HTMLExporter struct{}

// Export converts a document to HTML.
func (e *HTMLExporter) Export(doc *Document) ([]byte, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	var sb strings.Builder

	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"en\">\n<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", html.EscapeString(doc.DisplayTitle()))
	sb.WriteString("    <meta name=\"generator\" content=\"eventplan-tui\">\n")
	if !doc.GeneratedAt.IsZero() {
		fmt.Fprintf(&sb, "    <meta name=\"date\" content=\"%s\">\n", doc.GeneratedAt.Format(time.RFC3339))
	}
	sb.WriteString(pageCSS)
	sb.WriteString("</head>\n<body>\n")

	fmt.Fprintf(&sb, "<header>\n    <h1>%s</h1>\n", html.EscapeString(doc.DisplayTitle()))
	if doc.Model != "" {
		fmt.Fprintf(&sb, "    <p class=\"meta\">Generated by %s", html.EscapeString(doc.Model))
		if !doc.GeneratedAt.IsZero() {
			fmt.Fprintf(&sb, " on %s", doc.GeneratedAt.Format("January 2, 2006"))
		}
		sb.WriteString("</p>\n")
	}
	sb.WriteString("</header>\n<main>\n")
	sb.WriteString(renderPlanBody(doc.Plan))
	sb.WriteString("</main>\n</body>\n</html>\n")

	return []byte(sb.String()), nil
}

// FileExtension returns the extension including the dot.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

// renderPlanBody applies a minimal markdown-to-HTML translation: enough
// for the structures plans actually contain (headings, lists, tables,
// paragraphs) without pulling a browser-grade renderer into an export
// path.
func renderPlanBody(plan string) string {
	var sb strings.Builder

	inList := false
	inTable := false
	var paragraph []string

	flushParagraph := func() {
		if len(paragraph) > 0 {
			fmt.Fprintf(&sb, "<p>%s</p>\n", html.EscapeString(strings.Join(paragraph, " ")))
			paragraph = nil
		}
	}
	closeList := func() {
		if inList {
			sb.WriteString("</ul>\n")
			inList = false
		}
	}
	closeTable := func() {
		if inTable {
			sb.WriteString("</table>\n")
			inTable = false
		}
	}

	for _, line := range strings.Split(plan, "\n") {
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			flushParagraph()
			closeList()
			closeTable()

		case strings.HasPrefix(trimmed, "#"):
			flushParagraph()
			closeList()
			closeTable()
			level := 0
			for level < len(trimmed) && trimmed[level] == '#' && level < 6 {
				level++
			}
			text := strings.TrimSpace(trimmed[level:])
			fmt.Fprintf(&sb, "<h%d>%s</h%d>\n", level, html.EscapeString(text), level)

		case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* "):
			flushParagraph()
			closeTable()
			if !inList {
				sb.WriteString("<ul>\n")
				inList = true
			}
			fmt.Fprintf(&sb, "    <li>%s</li>\n", html.EscapeString(trimmed[2:]))

		case strings.HasPrefix(trimmed, "|"):
			flushParagraph()
			closeList()
			cells := splitTableRow(trimmed)
			if isTableSeparator(cells) {
				continue
			}
			if !inTable {
				sb.WriteString("<table>\n")
				inTable = true
			}
			sb.WriteString("    <tr>")
			for _, cell := range cells {
				fmt.Fprintf(&sb, "<td>%s</td>", html.EscapeString(cell))
			}
			sb.WriteString("</tr>\n")

		default:
			closeList()
			closeTable()
			paragraph = append(paragraph, trimmed)
		}
	}

	flushParagraph()
	closeList()
	closeTable()

	return sb.String()
}

func splitTableRow(line string) []string {
	line = strings.Trim(line, "|")
	parts := strings.Split(line, "|")
	cells := make([]string, 0, len(parts))
	for _, p := range parts {
		cells = append(cells, strings.TrimSpace(p))
	}
	return cells
}

// isTableSeparator reports whether the row is the |---|---| divider.
func isTableSeparator(cells []string) bool {
	for _, cell := range cells {
		if strings.Trim(cell, "-: ") != "" {
			return false
		}
	}
	return len(cells) > 0
}

const pageCSS = `    <style>
        body {
            font-family: -apple-system, "Segoe UI", Roboto, sans-serif;
            max-width: 720px;
            margin: 0 auto;
            padding: 2rem 1rem;
            color: #1f2937;
            line-height: 1.6;
        }
        header { border-bottom: 2px solid #7c3aed; margin-bottom: 1.5rem; }
        h1 { color: #7c3aed; margin-bottom: 0.25rem; }
        .meta { color: #6b7280; font-size: 0.875rem; }
        h2, h3 { color: #5b21b6; margin-top: 1.5rem; }
        table { border-collapse: collapse; width: 100%; margin: 1rem 0; }
        td { border: 1px solid #e5e7eb; padding: 0.5rem 0.75rem; }
        tr:first-child td { background: #f5f3ff; font-weight: 600; }
        ul { padding-left: 1.5rem; }
    </style>
`
