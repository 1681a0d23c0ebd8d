// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command dispatch for operator-tui.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
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
	CmdAgents
	CmdSessions
	CmdStatus
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Host    string // Backend base URL override
	Model   string
	Hosting string
	Agent   string // Agent name or ID to talk to
	Quiet   bool
	Verbose bool
	JSON    bool

	// Command-specific
	Query      string
	Subcommand string
	ConfigKey  string
	ConfigVal  string

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `operator-tui - terminal client for the Local Operator backend

Operator-tui is a chat client for locally running AI agents.

It provides:
  - A full-screen TUI chat view (default)
  - One-shot and interactive REPL modes
  - Conversation history with offline cache
  - Radient cloud account status (models, credits)

Usage:
  operator-tui                     Start TUI (default)
  operator-tui ask "question"      Ask a single question and exit
  operator-tui chat                Interactive chat REPL
  operator-tui agents [subcommand] Agent management
  operator-tui sessions [subcommand] Saved conversation transcripts
  operator-tui status, s           Backend and cloud account status
  operator-tui config [show|set|path] Configuration
  operator-tui version             Show version
  operator-tui help                Show this help

Agent Commands:
  operator-tui agents list         List agents on the backend
  operator-tui agents create NAME  Create a new agent
    --hosting NAME                 Hosting provider (default from config)
    --model NAME                   Model identifier (default from config)

Session Commands:
  operator-tui sessions list       List saved transcripts
  operator-tui sessions show ID    Print a transcript
  operator-tui sessions export ID  Export a transcript
    --format md|json               Export format (default: md)
  operator-tui sessions search TEXT Search transcripts
  operator-tui sessions delete ID  Delete a transcript

Config Commands:
  operator-tui config show         Show current configuration
  operator-tui config path         Print the config file path
  operator-tui config set KEY VAL  Set a value (host, model, hosting, theme,
                                   radient_api_key)

Global Flags:
  --host URL      Backend base URL (default http://127.0.0.1:1111)
  --model NAME    Override default model
  --hosting NAME  Override hosting provider
  --agent NAME    Agent to talk to (name or ID)
  -q, --quiet     Minimal output
  -v, --verbose   Debug output
  --json          Output in JSON format

Environment:
  OPERATOR_HOST        Backend base URL
  RADIENT_API_KEY      Radient cloud API key

Examples:
  operator-tui                              Start TUI interface
  operator-tui ask "What is a goroutine?"   Ask a single question
  operator-tui ask --agent research "..."   Ask a specific agent
  operator-tui chat --model gpt-4o          REPL with a specific model
  operator-tui agents create research       Create an agent
  operator-tui sessions export abc --format md > chat.md
  operator-tui status --json                Status for scripts

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("operator-tui version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// Parse parses command-line arguments and returns the command and args.
// It also pins the lipgloss color profile so NO_COLOR and piped output
// stay plain.
func Parse() (Command, Args) {
	lipgloss.SetColorProfile(GetColorProfile())
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses the given argument list. Split out from Parse for tests.
func ParseArgs(args []string) (Command, Args) {
	remaining, parsedArgs := parseGlobalFlags(args)

	if len(remaining) == 0 {
		return CmdTUI, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, parsedArgs

	case "ask":
		parseAskArgs(&parsedArgs, remaining)
		return CmdAsk, parsedArgs

	case "chat":
		return CmdChat, parsedArgs

	case "agents", "agent":
		parseSubcommand(&parsedArgs, remaining)
		return CmdAgents, parsedArgs

	case "sessions", "session":
		parseSubcommand(&parsedArgs, remaining)
		return CmdSessions, parsedArgs

	case "status", "s":
		return CmdStatus, parsedArgs

	case "config":
		parseConfigArgs(&parsedArgs, remaining)
		return CmdConfig, parsedArgs

	case "version", "-v", "--version":
		return CmdVersion, parsedArgs

	case "help", "-h", "--help":
		return CmdHelp, parsedArgs

	default:
		// Unknown command: treat the whole line as a one-shot question.
		parsedArgs.Raw = append([]string{cmd}, remaining...)
		parseAskArgs(&parsedArgs, parsedArgs.Raw)
		return CmdAsk, parsedArgs
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
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
		case "--json":
			parsedArgs.JSON = true
		case "--host":
			if i+1 < len(args) {
				i++
				parsedArgs.Host = args[i]
			}
		case "--model":
			if i+1 < len(args) {
				i++
				parsedArgs.Model = args[i]
			}
		case "--hosting":
			if i+1 < len(args) {
				i++
				parsedArgs.Hosting = args[i]
			}
		case "--agent":
			if i+1 < len(args) {
				i++
				parsedArgs.Agent = args[i]
			}
		default:
			switch {
			case strings.HasPrefix(arg, "--host="):
				parsedArgs.Host = strings.TrimPrefix(arg, "--host=")
			case strings.HasPrefix(arg, "--model="):
				parsedArgs.Model = strings.TrimPrefix(arg, "--model=")
			case strings.HasPrefix(arg, "--hosting="):
				parsedArgs.Hosting = strings.TrimPrefix(arg, "--hosting=")
			case strings.HasPrefix(arg, "--agent="):
				parsedArgs.Agent = strings.TrimPrefix(arg, "--agent=")
			default:
				remaining = append(remaining, arg)
			}
		}
		i++
	}

	return remaining, parsedArgs
}

// parseAskArgs joins the positional arguments into the query.
func parseAskArgs(args *Args, remaining []string) {
	var query []string
	for _, arg := range remaining {
		if !strings.HasPrefix(arg, "-") {
			query = append(query, arg)
		}
	}
	args.Query = strings.Join(query, " ")
}

// parseSubcommand captures the first positional argument as the subcommand.
func parseSubcommand(args *Args, remaining []string) {
	if len(remaining) > 0 {
		args.Subcommand = remaining[0]
		args.Raw = remaining[1:]
	}
}

// parseConfigArgs parses config command specific arguments.
func parseConfigArgs(args *Args, remaining []string) {
	if len(remaining) > 0 {
		args.Subcommand = remaining[0]
		if len(remaining) > 1 {
			args.ConfigKey = remaining[1]
		}
		if len(remaining) > 2 {
			args.ConfigVal = remaining[2]
		}
	}
}
