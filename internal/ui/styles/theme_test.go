// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "testing"

func TestNewTheme(t *testing.T) {
	theme := NewTheme()
	if theme == nil {
		t.Fatal("NewTheme returned nil")
	}

	// Every style must render without panicking.
	checks := map[string]string{
		"header":  theme.Header.Render("eventplan"),
		"user":    theme.UserBubble.Render("Plan a party"),
		"planner": theme.PlannerBubble.Render("## Event: Party"),
		"error":   theme.ErrorEntry.Render("planner service is unreachable"),
		"status":  theme.StatusBar.Render("gemini-1.5-flash"),
	}
	for name, rendered := range checks {
		if rendered == "" {
			t.Errorf("%s style rendered empty output", name)
		}
	}
}
