// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import "sort"

// =============================================================================
// MODEL REGISTRY
// =============================================================================

// ModelInfo describes a Gemini model the planner API accepts.
type ModelInfo struct {
	// ID is the identifier sent in requests (e.g. "gemini-1.5-flash").
	ID string
	// Name is a human-readable display name.
	Name string
	// InputLimit is the approximate input token limit.
	InputLimit int
	// SupportsCaching reports whether the backend can cache the system
	// prompt for this model.
	SupportsCaching bool
}

// DefaultModel is used when no model is configured or selected.
const DefaultModel = "gemini-1.5-flash"

// Models is the registry of models the planner API accepts. The set is
// fixed; requests naming anything else are rejected by the server with
// a 400 before any generation happens.
var Models = map[string]ModelInfo{
	"gemini-1.5-pro": {
		ID:         "gemini-1.5-pro",
		Name:       "Gemini 1.5 Pro",
		InputLimit: 1_000_000,
	},
	"gemini-1.5-flash": {
		ID:              "gemini-1.5-flash",
		Name:            "Gemini 1.5 Flash",
		InputLimit:      1_000_000,
		SupportsCaching: true,
	},
	"gemini-2.0-flash": {
		ID:              "gemini-2.0-flash",
		Name:            "Gemini 2.0 Flash",
		InputLimit:      1_000_000,
		SupportsCaching: true,
	},
}

// ValidModel reports whether id names a registered model.
func ValidModel(id string) bool {
	_, ok := Models[id]
	return ok
}

// ModelIDs returns the registered model identifiers in sorted order.
func ModelIDs() []string {
	ids := make([]string, 0, len(Models))
	for id := range Models {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// NextModel returns the registered model after id in sorted order,
// wrapping around. Used by the UI model picker.
func NextModel(id string) string {
	ids := ModelIDs()
	for i, candidate := range ids {
		if candidate == id {
			return ids[(i+1)%len(ids)]
		}
	}
	return DefaultModel
}
