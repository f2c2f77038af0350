// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// export.go - Document model and format selection for plan export.
package export

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/eventplan-tui/internal/util"
)

// =============================================================================
// DOCUMENT
// =============================================================================

// Document is a finished event plan prepared for export.
type Document struct {
	// Title is the extracted event title. May be empty.
	Title string
	// Model is the planner model that generated the plan.
	Model string
	// GeneratedAt is when the plan finished streaming.
	GeneratedAt time.Time
	// Plan is the plan body as markdown.
	Plan string
}

// Validate reports whether the document can be exported.
func (d *Document) Validate() error {
	if d == nil {
		return fmt.Errorf("document is nil")
	}
	if strings.TrimSpace(d.Plan) == "" {
		return fmt.Errorf("document has no plan content")
	}
	return nil
}

// DisplayTitle returns the title, or a placeholder when none was
// extracted.
func (d *Document) DisplayTitle() string {
	if d.Title != "" {
		return d.Title
	}
	return "Event Plan"
}

// =============================================================================
// EXPORTER
// =============================================================================

// Exporter converts a document to one output format.
type Exporter interface {
	Export(doc *Document) ([]byte, error)
	FileExtension() string
	MimeType() string
}

// ForPath picks the exporter for a target path by extension. Unknown
// extensions get markdown, matching the plan's native format.
func ForPath(path string) Exporter {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return &HTMLExporter{}
	case ".json":
		return &JSONExporter{}
	default:
		return &MarkdownExporter{}
	}
}

// WriteFile exports doc to path atomically, choosing the format from
// the extension.
func WriteFile(path string, doc *Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	data, err := ForPath(path).Export(doc)
	if err != nil {
		return err
	}
	return util.AtomicWriteFile(path, data, 0o644)
}
