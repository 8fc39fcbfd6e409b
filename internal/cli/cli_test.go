// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line interface parsing and execution.
//
// This test file covers argument parsing, command suggestion and exit codes.
package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jeranaias/ollamachat/internal/config"
	"github.com/jeranaias/ollamachat/internal/ollama"
)

// =============================================================================
// ARG PARSER TESTS (args.go)
// =============================================================================

func TestArgParser_BasicParsing(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		boolNames []string
		wantSub   string
		validate  func(*testing.T, *ArgParser)
	}{
		{
			name:    "simple subcommand",
			args:    []string{"show"},
			wantSub: "show",
		},
		{
			name:    "subcommand with flag",
			args:    []string{"show", "--width", "50"},
			wantSub: "show",
			validate: func(t *testing.T, p *ArgParser) {
				if p.Flag("width") != "50" {
					t.Errorf("Flag(width) = %q, want %q", p.Flag("width"), "50")
				}
			},
		},
		{
			name:    "flag with equals",
			args:    []string{"show", "--format=json"},
			wantSub: "show",
			validate: func(t *testing.T, p *ArgParser) {
				if p.Flag("format") != "json" {
					t.Errorf("Flag(format) = %q, want %q", p.Flag("format"), "json")
				}
			},
		},
		{
			name:    "trailing boolean flag",
			args:    []string{"init", "--force"},
			wantSub: "init",
			validate: func(t *testing.T, p *ArgParser) {
				if !p.BoolFlag("force") {
					t.Error("BoolFlag(force) should be true")
				}
			},
		},
		{
			name:      "named boolean flag does not take a value",
			args:      []string{"--no-thinking", "why", "is", "the", "sky", "blue"},
			boolNames: []string{"no-thinking"},
			wantSub:   "why",
			validate: func(t *testing.T, p *ArgParser) {
				if !p.BoolFlag("no-thinking") {
					t.Error("BoolFlag(no-thinking) should be true")
				}
				if got := JoinPositionalArgs(p, 0); got != "why is the sky blue" {
					t.Errorf("JoinPositionalArgs = %q", got)
				}
			},
		},
		{
			name:    "explicit bool value",
			args:    []string{"init", "--force=false"},
			wantSub: "init",
			validate: func(t *testing.T, p *ArgParser) {
				if p.BoolFlag("force") {
					t.Error("BoolFlag(force) should be false")
				}
				if !p.HasFlag("force") {
					t.Error("HasFlag(force) should be true")
				}
			},
		},
		{
			name:    "double dash ends flags",
			args:    []string{"--", "--not-a-flag", "text"},
			wantSub: "--not-a-flag",
			validate: func(t *testing.T, p *ArgParser) {
				if p.PositionalCount() != 2 {
					t.Errorf("PositionalCount() = %d, want 2", p.PositionalCount())
				}
			},
		},
		{
			name:    "lone dash is positional",
			args:    []string{"-"},
			wantSub: "-",
		},
		{
			name:    "multiple positional args",
			args:    []string{"set", "default_model", "llama3"},
			wantSub: "set",
			validate: func(t *testing.T, p *ArgParser) {
				if p.PositionalCount() != 3 {
					t.Errorf("PositionalCount() = %d, want 3", p.PositionalCount())
				}
				joined := strings.Join(p.PositionalFrom(1), " ")
				if joined != "default_model llama3" {
					t.Errorf("PositionalFrom(1) joined = %q", joined)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewArgParser(tt.args, tt.boolNames...)
			if parser.Subcommand() != tt.wantSub {
				t.Errorf("Subcommand() = %q, want %q", parser.Subcommand(), tt.wantSub)
			}
			if tt.validate != nil {
				tt.validate(t, parser)
			}
		})
	}
}

func TestArgParser_EmptyArgs(t *testing.T) {
	parser := NewArgParser(nil)

	if parser.Subcommand() != "" {
		t.Errorf("Subcommand() = %q, want empty", parser.Subcommand())
	}
	if parser.Positional(0) != "" || parser.Positional(-1) != "" {
		t.Error("Positional out of range should be empty")
	}
	if len(parser.PositionalFrom(3)) != 0 {
		t.Error("PositionalFrom out of range should be empty")
	}
}

func TestArgParser_FlagOrDefault(t *testing.T) {
	parser := NewArgParser([]string{"cmd", "--width", "72"})

	if got := parser.FlagOrDefault("width", "80"); got != "72" {
		t.Errorf("FlagOrDefault(width) = %q, want 72", got)
	}
	if got := parser.FlagOrDefault("missing", "80"); got != "80" {
		t.Errorf("FlagOrDefault(missing) = %q, want 80", got)
	}
}

// =============================================================================
// PARSE BOOL STRING TESTS
// =============================================================================

func TestParseBoolString(t *testing.T) {
	trueValues := []string{"true", "TRUE", "yes", "y", "1", "on", " On "}
	falseValues := []string{"false", "FALSE", "no", "n", "0", "off"}

	for _, v := range trueValues {
		got, err := ParseBoolString(v)
		if err != nil || !got {
			t.Errorf("ParseBoolString(%q) = %v, %v; want true", v, got, err)
		}
	}
	for _, v := range falseValues {
		got, err := ParseBoolString(v)
		if err != nil || got {
			t.Errorf("ParseBoolString(%q) = %v, %v; want false", v, got, err)
		}
	}
	if _, err := ParseBoolString("maybe"); err == nil {
		t.Error("ParseBoolString(maybe) should error")
	}
}

// =============================================================================
// PARSE TESTS (cli.go)
// =============================================================================

func TestParse_Integration(t *testing.T) {
	tests := []struct {
		name     string
		argv     []string
		wantCmd  Command
		validate func(*testing.T, Args)
	}{
		{
			name:    "no args opens the menu",
			argv:    nil,
			wantCmd: CmdMenu,
		},
		{
			name:    "global flags only opens the menu",
			argv:    []string{"--sim", "-v"},
			wantCmd: CmdMenu,
			validate: func(t *testing.T, a Args) {
				if !a.Sim || !a.Verbose {
					t.Errorf("Sim=%v Verbose=%v, want both true", a.Sim, a.Verbose)
				}
			},
		},
		{
			name:    "chat with model flag",
			argv:    []string{"chat", "-m", "llama3"},
			wantCmd: CmdChat,
			validate: func(t *testing.T, a Args) {
				if a.Model != "llama3" {
					t.Errorf("Model = %q, want llama3", a.Model)
				}
			},
		},
		{
			name:    "chat with positional model",
			argv:    []string{"chat", "qwen3:8b"},
			wantCmd: CmdChat,
			validate: func(t *testing.T, a Args) {
				if a.Model != "qwen3:8b" {
					t.Errorf("Model = %q, want qwen3:8b", a.Model)
				}
			},
		},
		{
			name:    "ask joins the query",
			argv:    []string{"ask", "--model=llama3", "--no-thinking", "what", "is", "go"},
			wantCmd: CmdAsk,
			validate: func(t *testing.T, a Args) {
				if a.Query != "what is go" {
					t.Errorf("Query = %q", a.Query)
				}
				if a.Model != "llama3" || !a.NoThinking {
					t.Errorf("Model=%q NoThinking=%v", a.Model, a.NoThinking)
				}
			},
		},
		{
			name:    "global flags after the command",
			argv:    []string{"ask", "hi", "--json", "--url", "http://gpu:11434"},
			wantCmd: CmdAsk,
			validate: func(t *testing.T, a Args) {
				if !a.JSON || a.URL != "http://gpu:11434" || a.Query != "hi" {
					t.Errorf("JSON=%v URL=%q Query=%q", a.JSON, a.URL, a.Query)
				}
			},
		},
		{
			name:    "models alias",
			argv:    []string{"ls"},
			wantCmd: CmdModels,
		},
		{
			name:    "config set",
			argv:    []string{"config", "set", "ui.show_thinking", "false"},
			wantCmd: CmdConfig,
			validate: func(t *testing.T, a Args) {
				if a.Subcommand != "set" || a.ConfigKey != "ui.show_thinking" || a.ConfigVal != "false" {
					t.Errorf("Subcommand=%q Key=%q Val=%q", a.Subcommand, a.ConfigKey, a.ConfigVal)
				}
			},
		},
		{
			name:    "config init force",
			argv:    []string{"--config", "dev.toml", "config", "init", "--force"},
			wantCmd: CmdConfig,
			validate: func(t *testing.T, a Args) {
				if a.Subcommand != "init" || !a.Force || a.ConfigPath != "dev.toml" {
					t.Errorf("Subcommand=%q Force=%v ConfigPath=%q", a.Subcommand, a.Force, a.ConfigPath)
				}
			},
		},
		{
			name:    "version flag",
			argv:    []string{"--version"},
			wantCmd: CmdVersion,
		},
		{
			name:    "unknown command becomes help",
			argv:    []string{"chta"},
			wantCmd: CmdHelp,
			validate: func(t *testing.T, a Args) {
				if a.Unknown != "chta" {
					t.Errorf("Unknown = %q, want chta", a.Unknown)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args := Parse(tt.argv)
			if cmd != tt.wantCmd {
				t.Errorf("Parse(%v) cmd = %v, want %v", tt.argv, cmd, tt.wantCmd)
			}
			if tt.validate != nil {
				tt.validate(t, args)
			}
		})
	}
}

func TestCommand_String(t *testing.T) {
	if CmdAsk.String() != "ask" {
		t.Errorf("CmdAsk.String() = %q", CmdAsk.String())
	}
	if CmdModels.String() != "models" {
		t.Errorf("CmdModels.String() = %q", CmdModels.String())
	}
}

// =============================================================================
// SUGGESTION TESTS (suggest.go)
// =============================================================================

func TestSuggestCommand(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"chta", "chat"},
		{"hepl", "help"},
		{"modles", "models"},
		{"confg", "config"},
		{"chat", ""},
		{"x", ""},
		{"zzzzzzzz", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := SuggestCommand(tt.input); got != tt.want {
				t.Errorf("SuggestCommand(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "abc", 3},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"ask", "ask", 0},
	}
	for _, tt := range tests {
		if got := levenshteinDistance(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshteinDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

// =============================================================================
// EXIT CODE TESTS (errors.go)
// =============================================================================

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"cancelled", ErrCancelled, ExitCancelled},
		{"context cancelled", fmt.Errorf("wrapped: %w", context.Canceled), ExitCancelled},
		{"usage", &UsageError{Message: "bad"}, ExitUsageError},
		{"validation", config.ValidateErrors{{Field: "base_url", Message: "bad"}}, ExitConfigError},
		{"config file", &configError{errors.New("parse failed")}, ExitConfigError},
		{"model not found", ollama.NewUpstreamError("generate", 404, `{"error":"model not found"}`), ExitNotFoundError},
		{"server error", ollama.NewUpstreamError("generate", 500, "boom"), ExitGeneralError},
		{"plain", errors.New("boom"), ExitGeneralError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetExitCode(tt.err); got != tt.want {
				t.Errorf("GetExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestUsageError_Suggestion(t *testing.T) {
	err := &UsageError{Message: "unknown command: chta", Suggestion: "chat"}
	if !strings.Contains(err.Error(), `did you mean "chat"?`) {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestFriendlyError_Upstream(t *testing.T) {
	got := FriendlyError(ollama.NewUpstreamError("generate", 404, "model 'x' not found"))
	want := "Ollama returned 404 Not Found: model 'x' not found"
	if got != want {
		t.Errorf("FriendlyError() = %q, want %q", got, want)
	}
}
