// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// args.go - Argument parsing shared by the subcommands.

package cli

import (
	"fmt"
	"strings"
)

// =============================================================================
// ARG PARSER
// =============================================================================

// ArgParser provides argument parsing for subcommands.
// It handles multiple flag formats consistently:
//   - Long flags: --flag value or --flag=value
//   - Short flags: -f value
//   - Boolean flags: --flag (no value needed)
//   - Positional arguments: arguments without flags
//   - Subcommands: first positional argument
type ArgParser struct {
	subcommand string            // First positional arg (e.g., "show", "set")
	flags      map[string]string // String flags (--key=value)
	boolFlags  map[string]bool   // Boolean flags (--force)
	positional []string          // All positional arguments including subcommand
	raw        []string          // Original raw arguments
}

// NewArgParser creates a new argument parser from raw arguments.
//
// Flags named in boolNames never take a value, so "--no-thinking hello"
// keeps "hello" as a positional. Any other flag followed by a non-flag
// word takes that word as its value.
//
// Supported flag formats:
//
//	--flag value     Long flag with space-separated value
//	--flag=value     Long flag with equals sign
//	-f value         Short flag with space-separated value
//	--flag           Boolean flag (no value)
//	--               End of flags; everything after is positional
//
// Example:
//
//	args := NewArgParser([]string{"set", "ui.markdown", "true", "--force"}, "force")
//	args.Subcommand()        // "set"
//	args.Positional(1)       // "ui.markdown"
//	args.BoolFlag("force")   // true
func NewArgParser(raw []string, boolNames ...string) *ArgParser {
	parser := &ArgParser{
		flags:      make(map[string]string),
		boolFlags:  make(map[string]bool),
		positional: make([]string, 0),
		raw:        raw,
	}

	knownBool := make(map[string]bool, len(boolNames))
	for _, name := range boolNames {
		knownBool[strings.TrimLeft(name, "-")] = true
	}

	i := 0
	for i < len(raw) {
		arg := raw[i]

		if arg == "--" {
			parser.positional = append(parser.positional, raw[i+1:]...)
			break
		}

		// A lone "-" is a positional (conventionally stdin)
		if strings.HasPrefix(arg, "-") && arg != "-" {
			// Handle --flag=value format
			if strings.Contains(arg, "=") {
				parts := strings.SplitN(arg, "=", 2)
				flagName := strings.TrimLeft(parts[0], "-")
				flagValue := parts[1]

				if knownBool[flagName] || flagValue == "true" || flagValue == "false" {
					b, err := ParseBoolString(flagValue)
					parser.boolFlags[flagName] = err == nil && b
				} else {
					parser.flags[flagName] = flagValue
				}
				i++
				continue
			}

			flagName := strings.TrimLeft(arg, "-")

			if !knownBool[flagName] && i+1 < len(raw) && !strings.HasPrefix(raw[i+1], "-") {
				parser.flags[flagName] = raw[i+1]
				i += 2
			} else {
				parser.boolFlags[flagName] = true
				i++
			}
		} else {
			parser.positional = append(parser.positional, arg)
			i++
		}
	}

	// First positional is the subcommand
	if len(parser.positional) > 0 {
		parser.subcommand = parser.positional[0]
	}

	return parser
}

// Subcommand returns the first positional argument (subcommand).
// Returns empty string if no positional arguments.
func (p *ArgParser) Subcommand() string {
	return p.subcommand
}

// Flag returns the value of a string flag.
// Returns empty string if flag not found.
func (p *ArgParser) Flag(name string) string {
	return p.flags[strings.TrimLeft(name, "-")]
}

// FlagOrDefault returns the flag value or a default if not found.
func (p *ArgParser) FlagOrDefault(name, defaultValue string) string {
	if val := p.Flag(name); val != "" {
		return val
	}
	return defaultValue
}

// BoolFlag returns the value of a boolean flag.
// Returns false if flag not found.
func (p *ArgParser) BoolFlag(name string) bool {
	return p.boolFlags[strings.TrimLeft(name, "-")]
}

// Positional returns the positional argument at the given index.
// Returns empty string if index out of bounds.
// Index 0 is the subcommand.
func (p *ArgParser) Positional(index int) string {
	if index < 0 || index >= len(p.positional) {
		return ""
	}
	return p.positional[index]
}

// PositionalFrom returns all positional arguments starting from index.
func (p *ArgParser) PositionalFrom(index int) []string {
	if index < 0 || index >= len(p.positional) {
		return []string{}
	}
	return p.positional[index:]
}

// PositionalCount returns the number of positional arguments.
func (p *ArgParser) PositionalCount() int {
	return len(p.positional)
}

// HasFlag returns true if the flag exists (either as string or bool flag).
func (p *ArgParser) HasFlag(name string) bool {
	name = strings.TrimLeft(name, "-")
	_, hasString := p.flags[name]
	_, hasBool := p.boolFlags[name]
	return hasString || hasBool
}

// Raw returns the original raw arguments.
func (p *ArgParser) Raw() []string {
	return p.raw
}

// =============================================================================
// HELPER FUNCTIONS FOR COMMON ARG PATTERNS
// =============================================================================

// ParseBoolString parses a boolean from various string representations.
// Accepts: true/false, yes/no, y/n, 1/0, on/off (case-insensitive)
func ParseBoolString(s string) (bool, error) {
	s = strings.ToLower(strings.TrimSpace(s))

	switch s {
	case "true", "yes", "y", "1", "on":
		return true, nil
	case "false", "no", "n", "0", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean value: %s", s)
	}
}

// JoinPositionalArgs joins positional arguments from the given index into a single string.
// This is useful for commands that accept multi-word prompts.
func JoinPositionalArgs(parser *ArgParser, startIndex int) string {
	return strings.Join(parser.PositionalFrom(startIndex), " ")
}
