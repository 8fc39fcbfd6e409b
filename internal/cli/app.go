// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// app.go - Builds the shared environment every command runs in.

package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jeranaias/ollamachat/internal/config"
	"github.com/jeranaias/ollamachat/internal/logging"
	"github.com/jeranaias/ollamachat/internal/ollama"
	"github.com/jeranaias/ollamachat/internal/sim"
)

// App holds what a command needs: effective configuration, a logger, the
// backend and the standard streams.
type App struct {
	Config     *config.Config
	ConfigPath string

	Backend ollama.Backend
	// Client is the live HTTP client; nil when the simulator is in use.
	Client *ollama.Client
	Logger *slog.Logger

	In  io.Reader
	Out io.Writer
	Err io.Writer

	closers []io.Closer
}

// NewApp loads configuration, applies command-line overrides, opens the log
// and selects the backend.
func NewApp(args Args) (*App, error) {
	cfg, path, err := LoadConfig(args)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:     cfg,
		ConfigPath: path,
		In:         os.Stdin,
		Out:        os.Stdout,
		Err:        os.Stderr,
	}

	logger, closer, err := newLogger(cfg, args.Verbose, app.Err)
	if err != nil {
		// The log is diagnostic only; never refuse to start because of it.
		fmt.Fprintf(app.Err, "%s %v\n", warningStyle().Render("[Warning]"), err)
		logger = logging.Discard()
	}
	if closer != nil {
		app.closers = append(app.closers, closer)
	}
	app.Logger = logger

	app.Backend, app.Client = newBackend(cfg, logger)
	logger.Debug("app started",
		"version", Version,
		"backend", app.BackendName(),
		"config", path)
	return app, nil
}

// NewConfigApp is NewApp for the config command. A broken or missing file
// must not stop "config init" or "config set" from repairing it, so load
// errors are reported as warnings and the defaults are shown instead.
func NewConfigApp(args Args) *App {
	cfg, path, err := LoadConfig(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", warningStyle().Render("[Warning]"), err)
		cfg = config.Default()
	}
	if path == "" {
		path = args.ConfigPath
	}
	return &App{
		Config:     cfg,
		ConfigPath: path,
		Logger:     logging.Discard(),
		In:         os.Stdin,
		Out:        os.Stdout,
		Err:        os.Stderr,
	}
}

// NewTestApp builds an App around an existing backend and buffers. It does
// not touch the file system.
func NewTestApp(cfg *config.Config, backend ollama.Backend, in io.Reader, out, errOut io.Writer) *App {
	if cfg == nil {
		cfg = config.Default()
	}
	return &App{
		Config:  cfg,
		Backend: backend,
		Logger:  logging.Discard(),
		In:      in,
		Out:     out,
		Err:     errOut,
	}
}

// Close releases the log file.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// BackendName describes the backend for logs and JSON output.
func (a *App) BackendName() string {
	if a.Client == nil {
		return "sim"
	}
	return a.Client.GetConfig().BaseURL
}

// =============================================================================
// CONSTRUCTION HELPERS
// =============================================================================

// LoadConfig loads the configuration named by --config, or the default file,
// and applies command-line overrides. It returns the path the configuration
// belongs to, even when that file does not exist yet.
func LoadConfig(args Args) (*config.Config, string, error) {
	var (
		cfg  *config.Config
		path string
		err  error
	)
	if args.ConfigPath != "" {
		path = args.ConfigPath
		if _, statErr := os.Stat(path); statErr != nil {
			return nil, path, &configError{fmt.Errorf("config file %s: %w", path, statErr)}
		}
		cfg, err = config.LoadFromPath(path)
	} else {
		path, _ = defaultConfigPath()
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, path, &configError{err}
	}

	applyFlagOverrides(cfg, args)
	if err := cfg.Validate(); err != nil {
		return nil, path, fmt.Errorf("invalid command-line override: %w", err)
	}
	return cfg, path, nil
}

// defaultConfigPath returns the existing default config file, preferring
// TOML, or the TOML path when neither exists.
func defaultConfigPath() (string, error) {
	tomlPath, err := config.ConfigPathTOML()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(tomlPath); err == nil {
		return tomlPath, nil
	}
	if jsonPath, err := config.ConfigPathJSON(); err == nil {
		if _, err := os.Stat(jsonPath); err == nil {
			return jsonPath, nil
		}
	}
	return tomlPath, nil
}

// applyFlagOverrides applies the global flags, which win over both the file
// and the environment.
func applyFlagOverrides(cfg *config.Config, args Args) {
	if args.URL != "" {
		cfg.BaseURL = strings.TrimRight(args.URL, "/")
	}
	if args.Sim {
		cfg.Sim.Enabled = true
	}
	if args.Model != "" {
		cfg.DefaultModel = args.Model
	}
}

func newLogger(cfg *config.Config, verbose bool, stderr io.Writer) (*slog.Logger, io.Closer, error) {
	if verbose {
		logger, err := logging.New(logging.Options{
			Level:  "debug",
			Format: cfg.Log.Format,
			Output: stderr,
		})
		return logger, nil, err
	}

	path, err := cfg.LogPath()
	if err != nil {
		return nil, nil, err
	}
	return logging.Open(path, cfg.Log.Level, cfg.Log.Format)
}

// newBackend returns the simulator when enabled, otherwise a live client.
func newBackend(cfg *config.Config, logger *slog.Logger) (ollama.Backend, *ollama.Client) {
	if cfg.Sim.Enabled {
		minDelay, maxDelay := cfg.SimDelays()
		return sim.New(sim.Options{
			Seed:     cfg.Sim.Seed,
			MinDelay: minDelay,
			MaxDelay: maxDelay,
			Logger:   logger,
		}), nil
	}

	client := ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL:       cfg.BaseURL,
		Timeout:       cfg.Timeout(),
		HeaderTimeout: cfg.ConnectTimeout(),
		Logger:        logger,
	})
	return client, client
}
