// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"time"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter writes the document as a structured JSON file for
// downstream tooling.
type JSONExporter struct{}

type jsonDocument struct {
	Title       string    `json:"title,omitempty"`
	Model       string    `json:"model,omitempty"`
	GeneratedAt time.Time `json:"generated_at,omitempty"`
	Plan        string    `json:"plan"`
}

// Export converts a document to indented JSON.
func (e *JSONExporter) Export(doc *Document) ([]byte, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(jsonDocument{
		Title:       doc.Title,
		Model:       doc.Model,
		GeneratedAt: doc.GeneratedAt,
		Plan:        doc.Plan,
	}, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// FileExtension returns the extension including the dot.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}
