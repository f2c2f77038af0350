// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"regexp"
	"strings"
)

// =============================================================================
// TITLE EXTRACTION
// =============================================================================

// The planner is instructed to open every reply with a heading of the
// form "## Event: <name>". Models drift, so the matcher is lenient: the
// heading markers are optional, case is ignored, "Event Name" is
// accepted alongside "Event", and the colon may degrade to plain
// whitespace.
var titlePattern = regexp.MustCompile(`(?mi)^\s*(?:#+\s*)?event(?:\s+name)?\s*[:\s]\s*(.+)$`)

// ExtractTitle scans the partial reply buffer for an event title. It
// returns the updated title and whether it differs from current. The
// first matching line wins; rescanning a grown buffer keeps updating
// the same line as it streams in, so a title that arrives split across
// chunks converges on the full text.
func ExtractTitle(buffer, current string) (string, bool) {
	m := titlePattern.FindStringSubmatch(buffer)
	if m == nil {
		return current, false
	}

	title := cleanTitle(m[1])
	if title == "" || title == current {
		return current, false
	}
	return title, true
}

// cleanTitle strips markdown emphasis and surrounding noise from a
// matched title.
func cleanTitle(raw string) string {
	s := strings.ReplaceAll(raw, "*", "")
	s = strings.Trim(s, " \t")
	// Drop a trailing run of closing heading markers ("## Event: X ##").
	s = strings.TrimRight(s, "#")
	return strings.TrimSpace(s)
}
