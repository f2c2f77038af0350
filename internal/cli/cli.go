// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command dispatch for eventplan.
package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdConfig
	CmdClear
	CmdServe
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet      bool
	Verbose    bool
	Model      string
	ConfigPath string
	NoMarkdown bool

	// Command-specific
	Query      string
	Output     string
	NoStream   bool
	Subcommand string

	// Raw args remaining after flag parsing
	Raw []string
}

const usageText = `eventplan - AI-powered game event planner for the terminal

Eventplan talks to an event planning server and streams a structured
event plan back to you. Conversations and the extracted event title are
persisted locally so a restart picks up where you left off.

Usage:
  eventplan                   Start TUI (default)
  eventplan ask "prompt"      Ask for a single plan
  eventplan chat              Interactive chat session
  eventplan config [show|path]  Configuration
  eventplan clear             Delete the saved conversation
  eventplan serve [addr]      Run a mock planning server (default :8000)
  eventplan version           Show version
  eventplan help              Show this help

Ask Command:
  eventplan ask "Plan a board game night for 8 people"
    -m, --model NAME          Planner model (gemini-1.5-pro, gemini-1.5-flash, gemini-2.0-flash)
    -o, --output FILE         Also write the plan to FILE
    --no-markdown             Print the raw plan without terminal rendering
    --no-stream               Wait for the full plan instead of streaming

Chat Commands (during chat):
  /help                       Show available commands
  /clear                      Clear conversation history
  /model [name]               Show or switch model
  /title                      Show the extracted event title
  /resend                     Retry the last failed submission
  /save [file]                Export the latest plan to a file
  /quit                       Exit chat (also Ctrl+D)

Global Flags:
  -m, --model NAME            Planner model (overrides config)
  --config FILE               Use a specific config file
  -q, --quiet                 Minimal output
  -v, --verbose               Verbose output

Environment:
  EVENTPLAN_SERVER_URL        Planning server base URL
  EVENTPLAN_MODEL             Default model
  EVENTPLAN_DB_PATH           Conversation database path
  EVENTPLAN_PASSPHRASE        Storage encryption passphrase
`

// Parse parses os.Args into a command and its arguments.
func Parse() (Command, Args) {
	return parse(os.Args[1:])
}

func parse(argv []string) (Command, Args) {
	remaining, parsedArgs := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdTUI, parsedArgs
	}

	cmd := remaining[0]
	remaining = remaining[1:]

	switch cmd {
	case "ask", "a":
		parseAskArgs(&parsedArgs, remaining)
		return CmdAsk, parsedArgs

	case "chat", "c":
		parsedArgs.Raw = remaining
		return CmdChat, parsedArgs

	case "config":
		if len(remaining) > 0 {
			parsedArgs.Subcommand = remaining[0]
		}
		return CmdConfig, parsedArgs

	case "clear":
		return CmdClear, parsedArgs

	case "serve":
		if len(remaining) > 0 {
			parsedArgs.Subcommand = remaining[0]
		}
		return CmdServe, parsedArgs

	case "tui":
		return CmdTUI, parsedArgs

	case "version", "-V", "--version":
		return CmdVersion, parsedArgs

	case "help", "-h", "--help":
		return CmdHelp, parsedArgs

	default:
		// Unknown word: treat the whole tail as an ask prompt, so
		// `eventplan Plan a party` just works.
		parseAskArgs(&parsedArgs, append([]string{cmd}, remaining...))
		return CmdAsk, parsedArgs
	}
}

// parseGlobalFlags extracts global flags and returns the remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsedArgs Args

	i := 0
	for i < len(args) {
		arg := args[i]

		switch arg {
		case "-q", "--quiet":
			parsedArgs.Quiet = true
		case "-v", "--verbose":
			parsedArgs.Verbose = true
		case "--no-markdown":
			parsedArgs.NoMarkdown = true
		case "-m", "--model":
			if i+1 < len(args) {
				i++
				parsedArgs.Model = args[i]
			}
		case "--config":
			if i+1 < len(args) {
				i++
				parsedArgs.ConfigPath = args[i]
			}
		default:
			switch {
			case strings.HasPrefix(arg, "--model="):
				parsedArgs.Model = strings.TrimPrefix(arg, "--model=")
			case strings.HasPrefix(arg, "--config="):
				parsedArgs.ConfigPath = strings.TrimPrefix(arg, "--config=")
			default:
				remaining = append(remaining, arg)
			}
		}
		i++
	}

	return remaining, parsedArgs
}

// parseAskArgs parses ask command specific arguments; everything that
// is not a flag joins the query.
func parseAskArgs(args *Args, remaining []string) {
	var query []string

	i := 0
	for i < len(remaining) {
		arg := remaining[i]

		switch arg {
		case "-m", "--model":
			if i+1 < len(remaining) {
				i++
				args.Model = remaining[i]
			}
		case "-o", "--output":
			if i+1 < len(remaining) {
				i++
				args.Output = remaining[i]
			}
		case "--no-markdown":
			args.NoMarkdown = true
		case "--no-stream":
			args.NoStream = true
		default:
			switch {
			case strings.HasPrefix(arg, "--model="):
				args.Model = strings.TrimPrefix(arg, "--model=")
			case strings.HasPrefix(arg, "--output="):
				args.Output = strings.TrimPrefix(arg, "--output=")
			default:
				query = append(query, arg)
			}
		}
		i++
	}

	args.Query = strings.Join(query, " ")
}

// PrintUsage prints the full usage text.
func PrintUsage() {
	fmt.Print(usageText)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("eventplan %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
}
