// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jeranaias/eventplan-tui/internal/config"
	"github.com/jeranaias/eventplan-tui/internal/model"
	"github.com/jeranaias/eventplan-tui/internal/server"
)

// Non-streaming asks go through the single round-trip endpoint and
// still pick up the event title and the -o export.
func TestAskNonStreaming(t *testing.T) {
	ts := httptest.NewServer(server.New(server.Options{}).Handler())
	defer ts.Close()

	cfg := config.Default()
	cfg.Server.BaseURL = ts.URL
	cfg.Server.MaxRetries = 0
	cfg.Server.RequestsPerMinute = 0

	outPath := filepath.Join(t.TempDir(), "plan.md")
	args := Args{Quiet: true, NoStream: true, Output: outPath}
	client := NewPlannerClient(cfg)

	err := askNonStreaming(cfg, args, client, model.DefaultModel, false, "plan a board game night")
	if err != nil {
		t.Fatalf("askNonStreaming: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("reading exported plan: %v", err)
	}
	if !strings.Contains(string(data), "## Event: Plan A Board Game Night") {
		t.Errorf("exported plan missing the event heading:\n%s", data)
	}
}

func TestAskNonStreamingSurfacesClientError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail": "unknown model"}`))
	}))
	defer ts.Close()

	cfg := config.Default()
	cfg.Server.BaseURL = ts.URL

	client := NewPlannerClient(cfg)
	err := askNonStreaming(cfg, Args{Quiet: true}, client, model.DefaultModel, false, "plan a party")
	if err == nil {
		t.Error("expected an error when the server rejects the request")
	}
}
