// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line interface parsing and execution for
// eventplan.
//
// # Key Types
//
//   - Command: Enumeration of available CLI commands
//   - Args: Parsed command-line arguments with global and command-specific flags
//
// # Usage
//
// Parse and dispatch commands:
//
//	cmd, args := cli.Parse()
//	switch cmd {
//	case cli.CmdAsk:
//	    return cli.HandleAskCommand(cfg, args)
//	case cli.CmdChat:
//	    return cli.HandleChatCommand(cfg, args)
//	// ... other commands
//	}
//
// # Commands Overview
//
//   - (default): Launch the full-screen TUI
//   - ask: Generate a single event plan and print it
//   - chat: Interactive planning REPL with input history
//   - config: Show the active configuration
//   - clear: Clear the persisted conversation
//   - version: Show version information
//
// A bare argument that is not a known command is treated as an ask
// prompt, so `eventplan "plan a party"` works without the subcommand.
package cli
