// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for ollamachat.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - --config PATH
//   - ~/.ollamachat/config.toml
//   - ~/.ollamachat/config.json
//   - Built-in defaults
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/jeranaias/ollamachat/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete ollamachat configuration.
type Config struct {
	// BaseURL is the API root the client talks to.
	BaseURL string `toml:"base_url" json:"base_url"`

	// DefaultModel skips the selection menu when set.
	DefaultModel string `toml:"default_model" json:"default_model"`

	Client ClientConfig `toml:"client" json:"client"`
	UI     UIConfig     `toml:"ui" json:"ui"`
	Log    LogConfig    `toml:"log" json:"log"`
	Sim    SimConfig    `toml:"sim" json:"sim"`
}

// ClientConfig contains HTTP client settings.
type ClientConfig struct {
	// TimeoutSecs bounds unary calls such as the model listing.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// ConnectTimeoutSecs bounds the wait for a stream's response headers (0 = none).
	ConnectTimeoutSecs int `toml:"connect_timeout_secs" json:"connect_timeout_secs"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// ShowThinking prints reasoning fragments; when false they are hidden.
	ShowThinking bool `toml:"show_thinking" json:"show_thinking"`
	// Markdown renders the final answer with glamour once the turn completes.
	Markdown bool `toml:"markdown" json:"markdown"`
	// ShowStats prints a [Stats] line after each turn.
	ShowStats bool `toml:"show_stats" json:"show_stats"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	// Level is one of: debug, info, warn, error
	Level string `toml:"level" json:"level"`
	// File is where logs are written; empty means the default location.
	File string `toml:"file" json:"file"`
	// Format is "text" or "json".
	Format string `toml:"format" json:"format"`
}

// SimConfig configures the offline simulator backend.
type SimConfig struct {
	Enabled bool `toml:"enabled" json:"enabled"`
	// Seed makes simulated output reproducible; 0 seeds from the clock.
	Seed       uint64 `toml:"seed" json:"seed"`
	MinDelayMs int    `toml:"min_delay_ms" json:"min_delay_ms"`
	MaxDelayMs int    `toml:"max_delay_ms" json:"max_delay_ms"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// DefaultBaseURL is the address of a local Ollama install.
const DefaultBaseURL = "http://localhost:11435/api"

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		BaseURL:      DefaultBaseURL,
		DefaultModel: "",

		Client: ClientConfig{
			TimeoutSecs:        30,
			ConnectTimeoutSecs: 0,
		},

		UI: UIConfig{
			ShowThinking: true,
			Markdown:     false,
			ShowStats:    true,
		},

		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},

		Sim: SimConfig{
			Enabled:    false,
			MinDelayMs: 300,
			MaxDelayMs: 700,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the ollamachat configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".ollamachat"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// HistoryPath returns the path of the chat prompt history file.
func HistoryPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "chat_history"), nil
}

// LogPath returns the effective log file path.
func (c *Config) LogPath() (string, error) {
	if c.Log.File != "" {
		return c.Log.File, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "ollamachat.log"), nil
}

// ensureSecurePermissions checks and fixes permissions on config files.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	mode := info.Mode().Perm()
	if mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}

	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the default config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	for _, pathFn := range []func() (string, error){ConfigPathTOML, ConfigPathJSON} {
		path, err := pathFn()
		if err != nil {
			continue
		}
		if _, statErr := os.Stat(path); statErr == nil {
			return LoadFromPath(path)
		}
	}

	cfg := Default()
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file over cfg. Keys absent from the file keep
// their current values.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		fmt.Fprintf(os.Stderr, "Warning: unknown config keys in %s: %s\n", path, strings.Join(keys, ", "))
	}
	return fillDefaults(cfg)
}

// LoadJSON decodes a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return fillDefaults(cfg)
}

// LoadFromPath loads configuration from a specific file path with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// fillDefaults fills in values that a file set to empty.
func fillDefaults(cfg *Config) error {
	defaults := Default()

	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaults.BaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if cfg.Client.TimeoutSecs == 0 {
		cfg.Client.TimeoutSecs = defaults.Client.TimeoutSecs
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = defaults.Log.Format
	}

	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "# ollamachat configuration file")
	fmt.Fprintln(&buf, "# Generated by ollamachat - edit with care")
	fmt.Fprintln(&buf, "")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFileWithDir(path, buf.Bytes(), 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON saves the configuration to a JSON file with 0600 permissions.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFileWithDir(path, data, 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.BaseURL == "" {
		errs = append(errs, ValidationError{Field: "base_url", Message: "must not be empty"})
	} else {
		u, err := url.Parse(c.BaseURL)
		switch {
		case err != nil:
			errs = append(errs, ValidationError{Field: "base_url", Message: fmt.Sprintf("invalid URL: %v", err)})
		case u.Scheme != "http" && u.Scheme != "https":
			errs = append(errs, ValidationError{
				Field:   "base_url",
				Message: fmt.Sprintf("invalid scheme '%s', must be http or https", u.Scheme),
			})
		case u.Host == "":
			errs = append(errs, ValidationError{Field: "base_url", Message: "missing host"})
		}
	}

	if c.Client.TimeoutSecs < 0 {
		errs = append(errs, ValidationError{Field: "client.timeout_secs", Message: "must not be negative"})
	}
	if c.Client.ConnectTimeoutSecs < 0 {
		errs = append(errs, ValidationError{Field: "client.connect_timeout_secs", Message: "must not be negative"})
	}

	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level),
		})
	}
	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" {
		errs = append(errs, ValidationError{
			Field:   "log.format",
			Message: fmt.Sprintf("invalid format '%s', must be text or json", c.Log.Format),
		})
	}

	if c.Sim.MinDelayMs < 0 {
		errs = append(errs, ValidationError{Field: "sim.min_delay_ms", Message: "must not be negative"})
	}
	if c.Sim.MaxDelayMs < 0 {
		errs = append(errs, ValidationError{Field: "sim.max_delay_ms", Message: "must not be negative"})
	}
	if c.Sim.MinDelayMs > c.Sim.MaxDelayMs {
		errs = append(errs, ValidationError{
			Field:   "sim.min_delay_ms",
			Message: fmt.Sprintf("must not exceed sim.max_delay_ms (%d > %d)", c.Sim.MinDelayMs, c.Sim.MaxDelayMs),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - OLLAMACHAT_URL: overrides base_url
//   - OLLAMACHAT_MODEL: overrides default_model
//   - OLLAMACHAT_SIM: overrides sim.enabled
//   - OLLAMACHAT_LOG_LEVEL: overrides log.level
func (c *Config) ApplyEnvOverrides() {
	if u := os.Getenv("OLLAMACHAT_URL"); u != "" {
		c.BaseURL = strings.TrimRight(u, "/")
	}

	if model := os.Getenv("OLLAMACHAT_MODEL"); model != "" {
		c.DefaultModel = model
	}

	if sim := os.Getenv("OLLAMACHAT_SIM"); sim != "" {
		c.Sim.Enabled = parseBool(sim)
	}

	if level := os.Getenv("OLLAMACHAT_LOG_LEVEL"); level != "" {
		c.Log.Level = strings.ToLower(level)
	}
}

func parseBool(s string) bool {
	s = strings.ToLower(s)
	return s == "1" || s == "true" || s == "yes"
}

// =============================================================================
// DURATIONS
// =============================================================================

// Timeout returns the unary request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Client.TimeoutSecs) * time.Second
}

// ConnectTimeout returns the stream header timeout; zero means none.
func (c *Config) ConnectTimeout() time.Duration {
	return time.Duration(c.Client.ConnectTimeoutSecs) * time.Second
}

// SimDelays returns the simulator's per-line delay bounds.
func (c *Config) SimDelays() (min, max time.Duration) {
	return time.Duration(c.Sim.MinDelayMs) * time.Millisecond,
		time.Duration(c.Sim.MaxDelayMs) * time.Millisecond
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "ui.show_stats").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation. String values are
// converted to the field's type.
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if strings.TrimSpace(key) == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}

		if i == len(parts)-1 {
			if field.Kind() == reflect.Struct {
				return reflect.Value{}, fmt.Errorf("'%s' is a section, not a value", key)
			}
			return field, nil
		}

		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}

	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field
// equivalent. "base_url" becomes "BaseUrl", matched case-insensitively
// against BaseURL.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}

	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Uint64:
			uintVal, err := strconv.ParseUint(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid unsigned value: %v", err)
			}
			field.SetUint(uintVal)
			return nil
		case reflect.Bool:
			field.SetBool(parseBool(strVal))
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return fmt.Errorf("cannot assign nil to %s", field.Type())
	}
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}

	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"base_url",
		"default_model",
		"client.timeout_secs",
		"client.connect_timeout_secs",
		"ui.show_thinking",
		"ui.markdown",
		"ui.show_stats",
		"log.level",
		"log.file",
		"log.format",
		"sim.enabled",
		"sim.seed",
		"sim.min_delay_ms",
		"sim.max_delay_ms",
	}
}

// Clone creates a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns the configuration as TOML.
func (c *Config) String() string {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Sprintf("<config: %v>", err)
	}
	return buf.String()
}
