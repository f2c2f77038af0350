// eventplan TUI - A terminal interface for AI-assisted game event planning.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/eventplan-tui/internal/cli"
	"github.com/jeranaias/eventplan-tui/internal/config"
	"github.com/jeranaias/eventplan-tui/internal/controller"
	"github.com/jeranaias/eventplan-tui/internal/server"
	"github.com/jeranaias/eventplan-tui/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	cfg, err := loadConfig(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	config.SetGlobal(cfg)

	switch cmd {
	case cli.CmdTUI:
		err = runTUI(cfg, args)
	case cli.CmdAsk:
		err = cli.HandleAskCommand(cfg, args)
	case cli.CmdChat:
		err = cli.HandleChatCommand(cfg, args)
	case cli.CmdConfig:
		err = handleConfig(cfg, args)
	case cli.CmdClear:
		err = handleClear(cfg, args)
	case cli.CmdServe:
		err = handleServe(args)
	case cli.CmdVersion:
		cli.PrintVersion()
	case cli.CmdHelp:
		cli.PrintUsage()
	default:
		cli.PrintUsage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads the config file named by --config, or the default
// location, applying environment overrides either way.
func loadConfig(args cli.Args) (*config.Config, error) {
	if args.ConfigPath != "" {
		return config.LoadFromPath(args.ConfigPath)
	}
	return config.Load()
}

// =============================================================================
// TUI
// =============================================================================

func runTUI(cfg *config.Config, args cli.Args) error {
	store, err := cli.OpenStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	client := cli.NewPlannerClient(cfg)

	modelID, err := cli.ResolveModel(cfg, args)
	if err != nil {
		return err
	}

	// Buffered so a burst of stream chunks never blocks the controller;
	// the view reads a full snapshot per wakeup, so coalescing is safe.
	updates := make(chan struct{}, 64)

	ctrl := controller.New(client, store, controller.Options{
		Model:       modelID,
		Temperature: cfg.Generation.Temperature,
		MaxTokens:   cfg.Generation.MaxTokens,
		Logger:      newFileLogger(args),
		OnUpdate: func() {
			select {
			case updates <- struct{}{}:
			default:
			}
		},
	})
	ctrl.Load()

	exportDir := chat.ExportDirDefault()
	if err := os.MkdirAll(exportDir, 0o700); err != nil {
		exportDir = "."
	}

	view := chat.New(ctrl, updates, chat.Opts{
		ShowTokens:  cfg.UI.ShowTokens,
		CompactMode: cfg.UI.CompactMode,
		Markdown:    cfg.UI.Markdown && !args.NoMarkdown,
		ExportDir:   exportDir,
	})

	program := tea.NewProgram(view, tea.WithAltScreen(), tea.WithMouseCellMotion())

	// Reload config edits live while the TUI runs. Watch failures are
	// not fatal; the session just keeps the startup config.
	if cfgPath, err := config.ConfigPath(); err == nil {
		watcher, err := config.NewWatcher(cfgPath,
			func(next *config.Config) {
				config.SetGlobal(next)
			},
			nil)
		if err == nil {
			if err := watcher.Watch(); err == nil {
				defer watcher.Close()
			}
		}
	}

	_, err = program.Run()
	return err
}

// newFileLogger sends controller diagnostics to ~/.eventplan/eventplan.log
// so they never corrupt the alternate screen. Verbose mode is handled by
// the CLI handlers; the TUI always logs to the file.
func newFileLogger(args cli.Args) *log.Logger {
	dir, err := config.ConfigDir()
	if err != nil {
		return cli.NewCLILogger(args)
	}
	f, err := os.OpenFile(filepath.Join(dir, "eventplan.log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return cli.NewCLILogger(args)
	}
	return log.New(f, "", log.LstdFlags)
}

// =============================================================================
// CONFIG & CLEAR COMMANDS
// =============================================================================

func handleConfig(cfg *config.Config, args cli.Args) error {
	switch args.Subcommand {
	case "", "show":
		fmt.Println(cfg.String())
		return nil
	case "path":
		path, err := config.ConfigPath()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	case "init":
		if err := config.EnsureConfigDir(); err != nil {
			return err
		}
		path, err := config.ConfigPath()
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists at %s", path)
		}
		if err := config.SaveTOML(config.Default(), path); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	default:
		return fmt.Errorf("unknown config subcommand %q (try show, path, init)", args.Subcommand)
	}
}

// handleServe runs the mock planning server, so the TUI and CLI can be
// exercised without the real backend.
func handleServe(args cli.Args) error {
	addr := args.Subcommand
	if addr == "" {
		addr = fmt.Sprintf(":%d", server.DefaultPort)
	}

	var logger *log.Logger
	if !args.Quiet {
		logger = log.New(os.Stderr, "", log.LstdFlags)
		logger.Printf("mock planning server listening on %s", addr)
	}

	srv := server.New(server.Options{
		ChunkDelay:        40 * time.Millisecond,
		Logger:            logger,
		RequestsPerMinute: 60,
	})
	return srv.ListenAndServe(addr)
}

func handleClear(cfg *config.Config, args cli.Args) error {
	store, err := cli.OpenStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctrl := controller.New(cli.NewPlannerClient(cfg), store, controller.Options{
		Logger: cli.NewCLILogger(args),
	})
	ctrl.Load()
	if err := ctrl.Clear(); err != nil {
		return err
	}
	if !args.Quiet {
		fmt.Println("Conversation cleared.")
	}
	return nil
}
