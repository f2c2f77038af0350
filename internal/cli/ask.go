// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - Single prompt command handler for eventplan CLI.
//
// Handles the "eventplan ask" command which sends one prompt to the
// planner API and writes the generated plan to stdout.
//
// Command: ask [prompt]
// Short:   Generate a single event plan
//
// Examples:
//   eventplan ask "plan a launch party for 40 people"
//   eventplan ask -m gemini-1.5-pro "plan a guild raid night"
//   eventplan ask -o party.md "plan a birthday dinner"
//   cat brief.txt | eventplan ask
//
// Flags:
//   -m, --model NAME    Use specific model (overrides config)
//   -o, --output FILE   Write the plan to FILE as well as stdout
//   --no-markdown       Disable markdown rendering
//   --no-stream         Wait for the complete plan in one response
//   -q, --quiet         Suppress the title and summary lines
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/eventplan-tui/internal/api"
	"github.com/jeranaias/eventplan-tui/internal/config"
	"github.com/jeranaias/eventplan-tui/internal/controller"
	"github.com/jeranaias/eventplan-tui/internal/export"
	"github.com/jeranaias/eventplan-tui/internal/model"
	"github.com/jeranaias/eventplan-tui/internal/storage"
	"github.com/jeranaias/eventplan-tui/internal/ui/styles"
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// markdownRenderer is the glamour renderer for one-shot output. Nil when
// initialization fails, in which case plans print as raw markdown.
var markdownRenderer *glamour.TermRenderer

func init() {
	var err error
	markdownRenderer, err = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		markdownRenderer = nil
	}
}

// renderMarkdown renders markdown content for terminal display. Returns
// the original content if rendering fails or the renderer is unavailable.
func renderMarkdown(content string) string {
	if markdownRenderer == nil {
		return content
	}
	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// =============================================================================
// STYLES
// =============================================================================

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(styles.Purple).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose)

	separatorStyle = lipgloss.NewStyle().
			Foreground(styles.Overlay)

	summaryLabelStyle = lipgloss.NewStyle().
				Foreground(styles.TextSecondary)

	summaryValueStyle = lipgloss.NewStyle().
				Foreground(styles.Emerald)
)

// =============================================================================
// ASK HANDLER
// =============================================================================

// HandleAskCommand handles the "ask" command: a one-shot submission that
// streams the plan to stdout without touching the persistent conversation.
func HandleAskCommand(cfg *config.Config, args Args) error {
	prompt := strings.TrimSpace(args.Query)

	// Fall back to piped stdin when no prompt was given on the command
	// line, so `cat brief.txt | eventplan ask` works.
	if prompt == "" && !IsTTY() {
		reader := bufio.NewReader(os.Stdin)
		data, err := io.ReadAll(reader)
		if err == nil {
			prompt = strings.TrimSpace(string(data))
		}
	}

	if prompt == "" {
		return fmt.Errorf("no prompt provided. Usage: eventplan ask \"describe your event\"")
	}

	modelID, err := ResolveModel(cfg, args)
	if err != nil {
		return err
	}

	client := NewPlannerClient(cfg)

	// Render at the end only when stdout is a TTY and markdown is on;
	// piped output always gets the raw stream so it stays greppable.
	useMarkdown := IsStdoutTTY() && !args.NoMarkdown && cfg.UI.Markdown

	if args.NoStream {
		return askNonStreaming(cfg, args, client, modelID, useMarkdown, prompt)
	}

	// One-shot asks use an in-memory store. The persistent conversation
	// belongs to the TUI and chat commands.
	var ctrl *controller.Controller
	printed := 0
	ctrl = controller.New(client, storage.NewMemory(), controller.Options{
		Model:       modelID,
		Temperature: cfg.Generation.Temperature,
		MaxTokens:   cfg.Generation.MaxTokens,
		Logger:      NewCLILogger(args),
		OnUpdate: func() {
			if useMarkdown {
				return
			}
			// Print only the delta so the plan streams as it arrives.
			snap := ctrl.Snapshot()
			for i := range snap.Messages {
				msg := &snap.Messages[i]
				if msg.Role != model.RoleModel {
					continue
				}
				if len(msg.Content) > printed {
					fmt.Print(msg.Content[printed:])
					printed = len(msg.Content)
				}
			}
		},
	})

	startTime := time.Now()
	if err := ctrl.Submit(context.Background(), prompt); err != nil {
		return err
	}
	duration := time.Since(startTime)

	snap := ctrl.Snapshot()

	// Transport failures surface as an error entry, not a Submit error.
	if len(snap.Messages) > 0 {
		last := snap.Messages[len(snap.Messages)-1]
		if last.Role == model.RoleError {
			fmt.Fprintf(os.Stderr, "%s %s\n", errorStyle.Render("[Error]"), last.Content)
			return fmt.Errorf("plan generation failed")
		}
	}

	plan := ""
	for i := range snap.Messages {
		if snap.Messages[i].Role == model.RoleModel {
			plan = snap.Messages[i].Content
		}
	}

	if useMarkdown {
		if !args.Quiet && snap.Title != "" {
			fmt.Fprintf(os.Stderr, "%s %s\n\n",
				titleStyle.Render("Event:"),
				snap.Title)
		}
		fmt.Print(renderMarkdown(plan))
	}
	fmt.Println()

	if err := exportAskPlan(args, modelID, snap.Title, plan); err != nil {
		return err
	}

	if !args.Quiet {
		displayAskSummary(modelID, plan, duration)
	}

	return nil
}

// askNonStreaming requests the complete plan in one round trip instead
// of consuming a stream. Useful for scripting, where partial output on
// a mid-stream failure is worse than waiting.
func askNonStreaming(cfg *config.Config, args Args, client *api.Client, modelID string, useMarkdown bool, prompt string) error {
	req := api.PlanRequest{
		Messages: []model.WireMessage{{Role: model.RoleUser.String(), Content: prompt}},
		Model:    modelID,
	}
	if cfg.Generation.Temperature != 0 {
		t := cfg.Generation.Temperature
		req.Temperature = &t
	}
	if cfg.Generation.MaxTokens != 0 {
		n := cfg.Generation.MaxTokens
		req.MaxTokens = &n
	}

	startTime := time.Now()
	resp, err := client.PlanEvent(context.Background(), req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %s\n", errorStyle.Render("[Error]"), err)
		return fmt.Errorf("plan generation failed")
	}
	duration := time.Since(startTime)

	plan := resp.Message.Content
	title, _ := controller.ExtractTitle(plan, "")

	if useMarkdown {
		if !args.Quiet && title != "" {
			fmt.Fprintf(os.Stderr, "%s %s\n\n",
				titleStyle.Render("Event:"),
				title)
		}
		fmt.Print(renderMarkdown(plan))
	} else {
		fmt.Print(plan)
	}
	fmt.Println()

	if err := exportAskPlan(args, modelID, title, plan); err != nil {
		return err
	}

	if !args.Quiet {
		displayAskSummary(modelID, plan, duration)
	}

	return nil
}

// exportAskPlan writes the plan to the -o target, when one was given.
func exportAskPlan(args Args, modelID, title, plan string) error {
	if args.Output == "" {
		return nil
	}
	doc := &export.Document{
		Title:       title,
		Model:       modelID,
		GeneratedAt: time.Now(),
		Plan:        plan,
	}
	if err := export.WriteFile(args.Output, doc); err != nil {
		return fmt.Errorf("failed to write plan: %w", err)
	}
	if !args.Quiet {
		fmt.Fprintf(os.Stderr, "%s %s\n",
			summaryLabelStyle.Render("Saved:"),
			summaryValueStyle.Render(args.Output))
	}
	return nil
}

// displayAskSummary shows model and timing after the plan.
func displayAskSummary(modelID, plan string, duration time.Duration) {
	separator := strings.Repeat("─", 45)
	fmt.Fprintln(os.Stderr, separatorStyle.Render(separator))
	fmt.Fprintf(os.Stderr, "%s %s | %s %s | %s %v\n",
		summaryLabelStyle.Render("Model:"),
		summaryValueStyle.Render(modelID),
		summaryLabelStyle.Render("Size:"),
		summaryValueStyle.Render(fmt.Sprintf("%d chars", len(plan))),
		summaryLabelStyle.Render("Time:"),
		duration.Round(time.Millisecond))
}
