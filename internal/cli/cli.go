// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and top-level handlers for ollamachat.
package cli

import (
	"fmt"
	"io"
	"runtime"
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
	CmdMenu Command = iota
	CmdChat
	CmdAsk
	CmdModels
	CmdConfig
	CmdVersion
	CmdHelp
)

// String returns the command name as typed on the command line.
func (c Command) String() string {
	switch c {
	case CmdMenu:
		return "menu"
	case CmdChat:
		return "chat"
	case CmdAsk:
		return "ask"
	case CmdModels:
		return "models"
	case CmdConfig:
		return "config"
	case CmdVersion:
		return "version"
	case CmdHelp:
		return "help"
	default:
		return "unknown"
	}
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Verbose    bool
	Sim        bool
	URL        string
	ConfigPath string
	Model      string
	JSON       bool // Output in JSON format

	// Command-specific
	NoThinking bool
	Force      bool
	Query      string
	Subcommand string
	ConfigKey  string
	ConfigVal  string

	// Unknown is set when the first word is not a command.
	Unknown string

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `ollamachat - terminal chat client for a local Ollama server

Streams replies from Ollama's generate endpoint, showing the model's
<think> reasoning separately from its final answer.

Usage:
  ollamachat                       Pick a model from the menu, then chat (default)
  ollamachat chat [-m MODEL]       Chat directly (menu only if no model is known)
  ollamachat ask [flags] PROMPT    Ask a single question and stream the reply
  ollamachat models                List available models
  ollamachat config [subcommand]   Configuration
  ollamachat version               Show version information
  ollamachat help                  Show this help

Ask Flags:
  -m, --model NAME    Model to use (default: config default_model, else first listed)
  --no-thinking       Hide reasoning fragments
  --json              Emit one {"text","thinking"} object per fragment (NDJSON)
  PROMPT may also be piped on stdin.

Config Subcommands:
  ollamachat config show           Show effective configuration (default)
  ollamachat config path           Show configuration file path
  ollamachat config init [--force] Write a default configuration file
  ollamachat config keys           List configuration keys
  ollamachat config get KEY        Show one value (e.g. ui.show_thinking)
  ollamachat config set KEY VALUE  Change one value in the configuration file

Chat Commands:
  exit, /quit, /q     Leave the chat (back to the menu)
  clear, /clear       Clear the screen
  /model [name]       Show or switch model
  /thinking           Toggle display of reasoning
  /stats              Show session statistics
  /help               Show chat commands
  Ctrl+C              Cancel the current reply
  Ctrl+D              Quit

Global Flags:
  --url URL           Ollama API root (default: http://localhost:11435/api)
  --sim               Use the built-in simulator instead of a server
  --config PATH       Configuration file (TOML, or JSON by extension)
  -m, --model NAME    Model to use
  -v, --verbose       Write debug logs to stderr
  --json              Output in JSON format (models, config, version)

Environment:
  OLLAMACHAT_URL, OLLAMACHAT_MODEL, OLLAMACHAT_SIM, OLLAMACHAT_LOG_LEVEL

Examples:
  ollamachat --sim                       Try the UI without a server
  ollamachat ask "Why is the sky blue?"  One-shot question
  echo "hello" | ollamachat ask --json   Machine-readable fragments
  ollamachat config set ui.markdown true Render answers as markdown

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage(w io.Writer) {
	fmt.Fprintf(w, usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "ollamachat version %s\n", Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
	fmt.Fprintf(w, "  Go version: %s\n", runtime.Version())
}

// Parse parses command-line arguments (without the program name) and
// returns the command and args.
func Parse(argv []string) (Command, Args) {
	// Parse global flags first
	remaining, parsedArgs := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdMenu, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "chat":
		parseChatArgs(&parsedArgs, remaining)
		return CmdChat, parsedArgs

	case "ask":
		parseAskArgs(&parsedArgs, remaining)
		return CmdAsk, parsedArgs

	case "models", "list", "ls":
		return CmdModels, parsedArgs

	case "config":
		parseConfigArgs(&parsedArgs, remaining)
		return CmdConfig, parsedArgs

	case "version", "--version":
		return CmdVersion, parsedArgs

	case "help", "-h", "--help":
		return CmdHelp, parsedArgs

	default:
		parsedArgs.Unknown = cmd
		return CmdHelp, parsedArgs
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
// Global flags may appear anywhere on the line.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsedArgs Args

	i := 0
	for i < len(args) {
		arg := args[i]

		switch arg {
		case "-v", "--verbose":
			parsedArgs.Verbose = true
		case "--sim":
			parsedArgs.Sim = true
		case "--json":
			parsedArgs.JSON = true
		case "--url":
			if i+1 < len(args) {
				i++
				parsedArgs.URL = args[i]
			}
		case "--config":
			if i+1 < len(args) {
				i++
				parsedArgs.ConfigPath = args[i]
			}
		case "-m", "--model":
			if i+1 < len(args) {
				i++
				parsedArgs.Model = args[i]
			}
		default:
			switch {
			case strings.HasPrefix(arg, "--url="):
				parsedArgs.URL = strings.TrimPrefix(arg, "--url=")
			case strings.HasPrefix(arg, "--config="):
				parsedArgs.ConfigPath = strings.TrimPrefix(arg, "--config=")
			case strings.HasPrefix(arg, "--model="):
				parsedArgs.Model = strings.TrimPrefix(arg, "--model=")
			default:
				remaining = append(remaining, arg)
			}
		}
		i++
	}

	return remaining, parsedArgs
}

// parseAskArgs parses ask command specific arguments.
func parseAskArgs(args *Args, remaining []string) {
	p := NewArgParser(remaining, "no-thinking")
	if p.BoolFlag("no-thinking") {
		args.NoThinking = true
	}
	args.Query = JoinPositionalArgs(p, 0)
}

// parseChatArgs parses chat command specific arguments. The model flag is
// global, so a bare positional is accepted as the model name too.
func parseChatArgs(args *Args, remaining []string) {
	p := NewArgParser(remaining)
	if args.Model == "" {
		args.Model = p.Positional(0)
	}
}

// parseConfigArgs parses config command specific arguments.
func parseConfigArgs(args *Args, remaining []string) {
	p := NewArgParser(remaining, "force")
	args.Subcommand = p.Subcommand()
	args.ConfigKey = p.Positional(1)
	args.ConfigVal = JoinPositionalArgs(p, 2)
	args.Force = p.BoolFlag("force")
}

// HandleVersion handles the "version" command.
func HandleVersion(w io.Writer, jsonMode bool) error {
	return OutputJSON(w, jsonMode, "version", func() (interface{}, error) {
		if !jsonMode {
			PrintVersion(w)
		}
		return VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
		}, nil
	})
}

// HandleHelp prints usage. An unrecognized command is reported as a usage
// error after the help text.
func HandleHelp(w io.Writer, args Args) error {
	PrintUsage(w)
	if args.Unknown == "" {
		return nil
	}
	return &UsageError{
		Message:    fmt.Sprintf("unknown command: %s", args.Unknown),
		Suggestion: SuggestCommand(args.Unknown),
	}
}
