// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"testing"

	"github.com/jeranaias/eventplan-tui/internal/config"
	"github.com/jeranaias/eventplan-tui/internal/model"
)

// =============================================================================
// PARSE TESTS
// =============================================================================

func TestParse_Commands(t *testing.T) {
	tests := []struct {
		name     string
		argv     []string
		wantCmd  Command
		validate func(*testing.T, Args)
	}{
		{
			name:    "no args defaults to TUI",
			argv:    nil,
			wantCmd: CmdTUI,
		},
		{
			name:    "explicit tui",
			argv:    []string{"tui"},
			wantCmd: CmdTUI,
		},
		{
			name:    "ask with prompt",
			argv:    []string{"ask", "plan", "a", "party"},
			wantCmd: CmdAsk,
			validate: func(t *testing.T, args Args) {
				if args.Query != "plan a party" {
					t.Errorf("Query = %q, want %q", args.Query, "plan a party")
				}
			},
		},
		{
			name:    "ask alias",
			argv:    []string{"a", "plan a party"},
			wantCmd: CmdAsk,
		},
		{
			name:    "unknown word becomes ask prompt",
			argv:    []string{"plan", "a", "raid", "night"},
			wantCmd: CmdAsk,
			validate: func(t *testing.T, args Args) {
				if args.Query != "plan a raid night" {
					t.Errorf("Query = %q, want %q", args.Query, "plan a raid night")
				}
			},
		},
		{
			name:    "chat command",
			argv:    []string{"chat"},
			wantCmd: CmdChat,
		},
		{
			name:    "config with subcommand",
			argv:    []string{"config", "path"},
			wantCmd: CmdConfig,
			validate: func(t *testing.T, args Args) {
				if args.Subcommand != "path" {
					t.Errorf("Subcommand = %q, want %q", args.Subcommand, "path")
				}
			},
		},
		{
			name:    "clear command",
			argv:    []string{"clear"},
			wantCmd: CmdClear,
		},
		{
			name:    "serve with addr",
			argv:    []string{"serve", ":9000"},
			wantCmd: CmdServe,
			validate: func(t *testing.T, args Args) {
				if args.Subcommand != ":9000" {
					t.Errorf("Subcommand = %q, want :9000", args.Subcommand)
				}
			},
		},
		{
			name:    "version flag",
			argv:    []string{"--version"},
			wantCmd: CmdVersion,
		},
		{
			name:    "help flag",
			argv:    []string{"-h"},
			wantCmd: CmdHelp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args := parse(tt.argv)
			if cmd != tt.wantCmd {
				t.Fatalf("parse(%v) command = %d, want %d", tt.argv, cmd, tt.wantCmd)
			}
			if tt.validate != nil {
				tt.validate(t, args)
			}
		})
	}
}

func TestParse_GlobalFlags(t *testing.T) {
	cmd, args := parse([]string{"-q", "--model", "gemini-1.5-pro", "--config", "/tmp/cfg.toml", "chat"})
	if cmd != CmdChat {
		t.Fatalf("command = %d, want CmdChat", cmd)
	}
	if !args.Quiet {
		t.Error("Quiet should be set")
	}
	if args.Model != "gemini-1.5-pro" {
		t.Errorf("Model = %q, want gemini-1.5-pro", args.Model)
	}
	if args.ConfigPath != "/tmp/cfg.toml" {
		t.Errorf("ConfigPath = %q, want /tmp/cfg.toml", args.ConfigPath)
	}
}

func TestParse_GlobalFlagsEqualsForm(t *testing.T) {
	cmd, args := parse([]string{"--model=gemini-2.0-flash", "--config=/tmp/c.toml"})
	if cmd != CmdTUI {
		t.Fatalf("command = %d, want CmdTUI", cmd)
	}
	if args.Model != "gemini-2.0-flash" {
		t.Errorf("Model = %q, want gemini-2.0-flash", args.Model)
	}
	if args.ConfigPath != "/tmp/c.toml" {
		t.Errorf("ConfigPath = %q, want /tmp/c.toml", args.ConfigPath)
	}
}

func TestParse_AskFlags(t *testing.T) {
	cmd, args := parse([]string{"ask", "-o", "plan.md", "--no-markdown", "--no-stream", "plan", "a", "dinner"})
	if cmd != CmdAsk {
		t.Fatalf("command = %d, want CmdAsk", cmd)
	}
	if args.Output != "plan.md" {
		t.Errorf("Output = %q, want plan.md", args.Output)
	}
	if !args.NoMarkdown {
		t.Error("NoMarkdown should be set")
	}
	if !args.NoStream {
		t.Error("NoStream should be set")
	}
	if args.Query != "plan a dinner" {
		t.Errorf("Query = %q, want %q", args.Query, "plan a dinner")
	}
}

func TestParse_AskModelAfterCommand(t *testing.T) {
	_, args := parse([]string{"ask", "--model=gemini-1.5-pro", "plan something"})
	if args.Model != "gemini-1.5-pro" {
		t.Errorf("Model = %q, want gemini-1.5-pro", args.Model)
	}
}

// =============================================================================
// HELPER TESTS
// =============================================================================

func TestResolveModel(t *testing.T) {
	cfg := config.Default()

	id, err := ResolveModel(cfg, Args{})
	if err != nil {
		t.Fatalf("ResolveModel default: %v", err)
	}
	if !model.ValidModel(id) {
		t.Errorf("default resolution produced unknown model %q", id)
	}

	id, err = ResolveModel(cfg, Args{Model: "gemini-1.5-pro"})
	if err != nil {
		t.Fatalf("ResolveModel with flag: %v", err)
	}
	if id != "gemini-1.5-pro" {
		t.Errorf("resolved %q, want gemini-1.5-pro", id)
	}

	if _, err := ResolveModel(cfg, Args{Model: "gpt-9"}); err == nil {
		t.Error("expected error for unknown model")
	}
}

func TestNewPlannerClientUsesConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Server.BaseURL = "http://planner.local:9000"

	client := NewPlannerClient(cfg)
	if client == nil {
		t.Fatal("NewPlannerClient returned nil")
	}
}
