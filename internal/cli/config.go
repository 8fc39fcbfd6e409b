// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - Config command implementation.
//
// Command: config [subcommand]
// Short:   View and modify configuration
//
// Subcommands:
//   show (default)      Display effective configuration
//   path                Show configuration file path
//   init [--force]      Write a default configuration file
//   keys                List configuration keys
//   get <key>           Show one value
//   set <key> <value>   Change one value in the configuration file
//
// Examples:
//   ollamachat config                          Show current config
//   ollamachat config show --json              Config in JSON format
//   ollamachat config set default_model llama3
//   ollamachat config set ui.show_thinking false
//   ollamachat config set sim.enabled true     Always use the simulator
//   ollamachat --config ./dev.toml config init
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ollamachat/internal/config"
)

var (
	configKeyStyle   = lipgloss.NewStyle().Width(30)
	configValueStyle = lipgloss.NewStyle()
)

// HandleConfig handles the "config" command. It works from the file alone
// where it writes, so environment overrides never leak into the file.
func HandleConfig(app *App, args Args) error {
	switch args.Subcommand {
	case "", "show":
		return OutputJSON(app.Out, args.JSON, "config", func() (interface{}, error) {
			if !args.JSON {
				handleConfigShow(app.Out, app.Config, app.ConfigPath)
			}
			return ConfigData{Config: app.Config, Path: app.ConfigPath}, nil
		})

	case "path":
		return OutputJSON(app.Out, args.JSON, "config", func() (interface{}, error) {
			if !args.JSON {
				handleConfigPath(app.Out, app.Err, app.ConfigPath)
			}
			return ConfigData{Path: app.ConfigPath}, nil
		})

	case "init":
		return handleConfigInit(app, args)

	case "keys":
		for _, key := range config.GetAllKeys() {
			fmt.Fprintln(app.Out, key)
		}
		return nil

	case "get":
		return OutputJSON(app.Out, args.JSON, "config", func() (interface{}, error) {
			value, err := handleConfigGet(app.Config, args.ConfigKey)
			if err != nil {
				return nil, err
			}
			if !args.JSON {
				fmt.Fprintln(app.Out, value)
			}
			return ConfigValueData{Key: args.ConfigKey, Value: value}, nil
		})

	case "set":
		return handleConfigSet(app.Out, app.ConfigPath, args.ConfigKey, args.ConfigVal)

	default:
		return &UsageError{
			Message:    fmt.Sprintf("unknown config subcommand: %s", args.Subcommand),
			Suggestion: suggestFrom(args.Subcommand, configSubcommands),
		}
	}
}

var configSubcommands = []string{"show", "path", "init", "keys", "get", "set"}

// handleConfigShow prints every key with its effective value.
func handleConfigShow(w io.Writer, cfg *config.Config, path string) {
	theme := Theme()
	fmt.Fprintln(w, theme.Title.Render("ollamachat configuration"))
	fmt.Fprintln(w, RenderSeparator(41))

	for _, key := range config.GetAllKeys() {
		value, err := cfg.Get(key)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "  %s%s\n",
			configKeyStyle.Inherit(theme.Subtitle).Render(key),
			configValueStyle.Inherit(theme.Answer).Render(formatConfigValue(value)))
	}

	fmt.Fprintln(w, RenderSeparator(41))
	fmt.Fprintf(w, "Config file: %s\n", theme.Hint.Render(path))
}

// handleConfigPath shows the config file path.
func handleConfigPath(w, errOut io.Writer, path string) {
	fmt.Fprintln(w, path)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintln(errOut, hintStyle().Render("(file does not exist - create it with `ollamachat config init`)"))
	}
}

// handleConfigInit writes the defaults to the config path, asking before
// an existing file is replaced.
func handleConfigInit(app *App, args Args) error {
	path := app.ConfigPath
	if path == "" {
		return &configError{fmt.Errorf("no configuration path available")}
	}
	if _, err := os.Stat(path); err == nil {
		ok, err := RequireConfirmation(app.In, app.Out, "Overwrite "+path, ConfirmationOptions{
			Force:       args.Force,
			JSONMode:    args.JSON,
			Interactive: app.In == os.Stdin && IsTTY(),
		})
		if err != nil {
			return err
		}
		if !ok {
			ShowCancellationMessage(app.Out)
			return nil
		}
	}
	if err := saveConfigFile(config.Default(), path); err != nil {
		return err
	}
	fmt.Fprintf(app.Out, "%s wrote defaults to %s\n", successStyle().Render("[OK]"), path)
	return nil
}

func handleConfigGet(cfg *config.Config, key string) (string, error) {
	if key == "" {
		return "", ErrMissingArgument("key", "ollamachat config get <key>")
	}
	value, err := cfg.Get(normalizeConfigKey(key))
	if err != nil {
		return "", unknownKeyError(key, err)
	}
	return formatConfigValue(value), nil
}

// handleConfigSet changes one key in the file at path, creating it from the
// defaults when missing.
func handleConfigSet(w io.Writer, path, key, value string) error {
	if key == "" {
		return ErrMissingArgument("key", "ollamachat config set <key> <value>")
	}
	if value == "" {
		return ErrMissingArgument("value", fmt.Sprintf("ollamachat config set %s <value>", key))
	}
	key = normalizeConfigKey(key)

	cfg, err := loadConfigFile(path)
	if err != nil {
		return err
	}

	current, err := cfg.Get(key)
	if err != nil {
		return unknownKeyError(key, err)
	}
	var newValue interface{} = value
	if _, isBool := current.(bool); isBool {
		b, err := ParseBoolString(value)
		if err != nil {
			return &UsageError{Message: fmt.Sprintf("%s expects a boolean: %v", key, err)}
		}
		newValue = b
	}
	if err := cfg.Set(key, newValue); err != nil {
		return &UsageError{Message: fmt.Sprintf("cannot set %s: %v", key, err)}
	}

	if err := cfg.Validate(); err != nil {
		return NewCommandError("config", "set", "invalid configuration value", err)
	}
	if err := saveConfigFile(cfg, path); err != nil {
		return err
	}

	fmt.Fprintf(w, "%s %s = %v\n", successStyle().Render("[OK]"), key, newValue)
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

// loadConfigFile reads path over the defaults without environment overrides.
func loadConfigFile(path string) (*config.Config, error) {
	cfg := config.Default()
	if path == "" {
		return nil, &configError{fmt.Errorf("no configuration path available")}
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	var err error
	if strings.HasSuffix(path, ".json") {
		err = config.LoadJSON(cfg, path)
	} else {
		err = config.LoadTOML(cfg, path)
	}
	if err != nil {
		return nil, &configError{err}
	}
	return cfg, nil
}

func saveConfigFile(cfg *config.Config, path string) error {
	var err error
	if strings.HasSuffix(path, ".json") {
		err = config.SaveJSON(cfg, path)
	} else {
		err = config.SaveTOML(cfg, path)
	}
	if err != nil {
		return &configError{err}
	}
	return nil
}

// normalizeConfigKey accepts "UI.Show-Thinking" style spellings.
func normalizeConfigKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), "-", "_")
}

func unknownKeyError(key string, cause error) error {
	return &UsageError{
		Message:    fmt.Sprintf("unknown config key %s (%v); see `ollamachat config keys`", key, cause),
		Suggestion: suggestFrom(key, config.GetAllKeys()),
	}
}

func formatConfigValue(v interface{}) string {
	if s, ok := v.(string); ok && s == "" {
		return "(not set)"
	}
	return fmt.Sprint(v)
}
