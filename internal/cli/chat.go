// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat command handler for eventplan CLI.
//
// Handles the "eventplan chat" command: a terminal REPL over the same
// persistent conversation the TUI uses, for terminals where a
// full-screen interface is unwanted (ssh sessions, scripting around a
// conversation).
//
// Command: chat
// Short:   Start an interactive planning session
//
// Interactive Commands (during chat):
//   /help, /h           Show available commands
//   /clear, /c          Clear the conversation
//   /model [name]       Show or switch planner model
//   /title              Show the extracted event title
//   /resend, /r         Retry the last failed submission
//   /save [file]        Save the latest plan to a markdown file
//   /quit, /q           Exit chat
//   Ctrl+D              Exit chat
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/jeranaias/eventplan-tui/internal/config"
	"github.com/jeranaias/eventplan-tui/internal/controller"
	"github.com/jeranaias/eventplan-tui/internal/export"
	"github.com/jeranaias/eventplan-tui/internal/model"
	"github.com/jeranaias/eventplan-tui/internal/ui/chat"
	"github.com/jeranaias/eventplan-tui/internal/ui/styles"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)

	welcomeStyle = lipgloss.NewStyle().
			Foreground(styles.Purple).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	commandStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald)
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// chatInput provides line editing and input history for the chat REPL.
type chatInput struct {
	line        *liner.State
	historyFile string
}

func newChatInput() *chatInput {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}

	in := &chatInput{
		line:        line,
		historyFile: filepath.Join(configDir, "history"),
	}
	in.loadHistory()
	return in
}

func (c *chatInput) loadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// readInput reads a line with history navigation. Non-empty input is
// appended to the session history.
func (c *chatInput) readInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

func (c *chatInput) saveHistory() {
	if err := config.EnsureConfigDir(); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and restores the terminal.
func (c *chatInput) Close() {
	c.saveHistory()
	c.line.Close()
}

// =============================================================================
// STREAM PRINTER
// =============================================================================

// streamPrinter writes the incremental content of the in-flight plan to
// a terminal. It tracks how many bytes have been printed so each update
// emits only the delta; reset must be called before every submission,
// including retries, or the start of the new stream is swallowed.
// Submissions run on the REPL goroutine, so no locking is needed.
type streamPrinter struct {
	w       io.Writer
	printed int
}

func (p *streamPrinter) reset() {
	p.printed = 0
}

func (p *streamPrinter) onUpdate(snap controller.Snapshot) {
	for i := range snap.Messages {
		msg := &snap.Messages[i]
		if !msg.IsStreaming {
			continue
		}
		if len(msg.Content) > p.printed {
			fmt.Fprint(p.w, msg.Content[p.printed:])
			p.printed = len(msg.Content)
		}
	}
}

// =============================================================================
// CHAT HANDLER
// =============================================================================

// HandleChatCommand runs the interactive REPL against the persistent
// conversation store, streaming plan chunks to stdout as they arrive.
func HandleChatCommand(cfg *config.Config, args Args) error {
	modelID, err := ResolveModel(cfg, args)
	if err != nil {
		return err
	}

	store, err := OpenStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	client := NewPlannerClient(cfg)

	printer := &streamPrinter{w: os.Stdout}
	var ctrl *controller.Controller
	ctrl = controller.New(client, store, controller.Options{
		Model:       modelID,
		Temperature: cfg.Generation.Temperature,
		MaxTokens:   cfg.Generation.MaxTokens,
		Logger:      NewCLILogger(args),
		OnUpdate: func() {
			printer.onUpdate(ctrl.Snapshot())
		},
	})
	ctrl.Load()

	input := newChatInput()
	defer input.Close()

	if !args.Quiet {
		printChatWelcome(ctrl)
	}

	for {
		line, err := input.readInput(promptStyle.Render("eventplan> "))
		if err != nil {
			// liner.ErrPromptAborted is Ctrl+C; anything else is EOF.
			fmt.Println()
			return nil
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			keepGoing, err := handleSlashCommand(ctrl, printer, line)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
			}
			if !keepGoing {
				return nil
			}
			continue
		}

		if strings.EqualFold(line, "exit") || strings.EqualFold(line, "quit") {
			return nil
		}

		printer.reset()
		if err := ctrl.Submit(context.Background(), line); err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
			continue
		}
		finishChatTurn(ctrl)
	}
}

// finishChatTurn prints the trailing error entry, if the submission
// failed, and a newline to separate turns.
func finishChatTurn(ctrl *controller.Controller) {
	snap := ctrl.Snapshot()
	if len(snap.Messages) > 0 {
		last := snap.Messages[len(snap.Messages)-1]
		if last.Role == model.RoleError {
			fmt.Fprintf(os.Stderr, "%s %s (use /resend to retry)\n",
				errorStyle.Render("[Error]"), last.Content)
			return
		}
	}
	fmt.Println()
	fmt.Println()
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand dispatches a /command. Returns false when the REPL
// should exit.
func handleSlashCommand(ctrl *controller.Controller, printer *streamPrinter, input string) (bool, error) {
	fields := strings.Fields(input)
	command := strings.ToLower(fields[0])
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	switch command {
	case "/help", "/h":
		printChatHelp()
		return true, nil

	case "/clear", "/c":
		if err := ctrl.Clear(); err != nil {
			return true, err
		}
		fmt.Println(infoStyle.Render("Conversation cleared."))
		return true, nil

	case "/model", "/m":
		if arg == "" {
			fmt.Printf("%s %s\n", infoStyle.Render("Model:"), ctrl.Model())
			fmt.Printf("%s %s\n", infoStyle.Render("Available:"), strings.Join(model.ModelIDs(), ", "))
			return true, nil
		}
		if err := ctrl.SetModel(arg); err != nil {
			return true, fmt.Errorf("unknown model %q", arg)
		}
		fmt.Printf("%s %s\n", infoStyle.Render("Switched to"), commandStyle.Render(arg))
		return true, nil

	case "/title", "/t":
		snap := ctrl.Snapshot()
		if snap.Title == "" {
			fmt.Println(infoStyle.Render("No event title extracted yet."))
		} else {
			fmt.Printf("%s %s\n", infoStyle.Render("Event:"), titleStyle.Render(snap.Title))
		}
		return true, nil

	case "/resend", "/r":
		return true, resendLastError(ctrl, printer)

	case "/save", "/s":
		return true, saveLatestPlan(ctrl, arg)

	case "/quit", "/q", "/exit":
		return false, nil

	default:
		return true, fmt.Errorf("unknown command %s (try /help)", command)
	}
}

// resendLastError retries the trailing failed submission.
func resendLastError(ctrl *controller.Controller, printer *streamPrinter) error {
	snap := ctrl.Snapshot()
	if len(snap.Messages) == 0 {
		return fmt.Errorf("nothing to resend")
	}
	last := snap.Messages[len(snap.Messages)-1]
	if last.Role != model.RoleError {
		return fmt.Errorf("last submission did not fail")
	}
	printer.reset()
	if err := ctrl.Resend(context.Background(), last.ID); err != nil {
		return err
	}
	finishChatTurn(ctrl)
	return nil
}

// saveLatestPlan writes the most recent finished plan to a markdown
// file, defaulting to a title-derived name under ~/.eventplan/plans.
func saveLatestPlan(ctrl *controller.Controller, path string) error {
	snap := ctrl.Snapshot()

	plan := ""
	for i := range snap.Messages {
		msg := &snap.Messages[i]
		if msg.Role == model.RoleModel && !msg.IsStreaming {
			plan = msg.Content
		}
	}
	if plan == "" {
		return fmt.Errorf("no finished plan to save")
	}

	if path == "" {
		dir := chat.ExportDirDefault()
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
		path = filepath.Join(dir, chat.ExportFilename(snap.Title))
	}

	doc := &export.Document{
		Title:       snap.Title,
		Model:       snap.Model,
		GeneratedAt: time.Now(),
		Plan:        plan,
	}
	if err := export.WriteFile(path, doc); err != nil {
		return err
	}
	fmt.Printf("%s %s\n", infoStyle.Render("Saved:"), commandStyle.Render(path))
	return nil
}

// =============================================================================
// DISPLAY
// =============================================================================

func printChatWelcome(ctrl *controller.Controller) {
	snap := ctrl.Snapshot()

	fmt.Println(welcomeStyle.Render("eventplan chat"))
	fmt.Printf("%s %s\n", infoStyle.Render("Model:"), snap.Model)
	if snap.Title != "" {
		fmt.Printf("%s %s\n", infoStyle.Render("Event:"), snap.Title)
	}
	if n := len(snap.Messages); n > 0 {
		fmt.Printf("%s %d messages restored\n", infoStyle.Render("History:"), n)
	}
	fmt.Println(infoStyle.Render("Type /help for commands, Ctrl+D to exit."))
	fmt.Println()
}

func printChatHelp() {
	help := [][2]string{
		{"/help, /h", "Show this help"},
		{"/clear, /c", "Clear the conversation"},
		{"/model [name]", "Show or switch planner model"},
		{"/title", "Show the extracted event title"},
		{"/resend, /r", "Retry the last failed submission"},
		{"/save [file]", "Save the latest plan to a markdown file"},
		{"/quit, /q", "Exit chat"},
	}
	for _, entry := range help {
		fmt.Printf("  %s  %s\n",
			commandStyle.Render(fmt.Sprintf("%-14s", entry[0])),
			infoStyle.Render(entry[1]))
	}
}
