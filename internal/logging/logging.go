// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the structured loggers used across ollamachat.
//
// The terminal belongs to the chat UI, so logs normally go to a file;
// --verbose redirects them to stderr instead. Packages accept a
// *slog.Logger and treat nil as "discard".
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Log file rotation limits.
const (
	maxLogSizeMB  = 10
	maxLogBackups = 3
	maxLogAgeDays = 28
)

// Options configures New.
type Options struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level string
	// Format is "text" or "json". Empty means text.
	Format string
	// Output receives log records. Nil discards.
	Output io.Writer
	// AddSource includes file:line in each record.
	AddSource bool
}

// ParseLevel maps a config level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// New creates a logger from opts.
func New(opts Options) (*slog.Logger, error) {
	if opts.Output == nil {
		return Discard(), nil
	}
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	hopts := &slog.HandlerOptions{Level: level, AddSource: opts.AddSource}
	var handler slog.Handler
	switch strings.ToLower(opts.Format) {
	case "", "text":
		handler = slog.NewTextHandler(opts.Output, hopts)
	case "json":
		handler = slog.NewJSONHandler(opts.Output, hopts)
	default:
		return nil, fmt.Errorf("unknown log format %q", opts.Format)
	}
	return slog.New(handler), nil
}

// Open creates a logger appending to the file at path, creating parent
// directories as needed. The file is rotated once it grows past
// maxLogSizeMB. The returned closer releases the file.
func Open(path, level, format string) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	// lumberjack opens lazily; surface permission problems now.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	f.Close()

	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxLogSizeMB,
		MaxBackups: maxLogBackups,
		MaxAge:     maxLogAgeDays,
		LocalTime:  true,
	}
	logger, err := New(Options{Level: level, Format: format, Output: w})
	if err != nil {
		w.Close()
		return nil, nil, err
	}
	return logger, w, nil
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
