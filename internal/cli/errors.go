// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Error handling shared by all CLI commands.
//
// Handlers always return errors; main decides how to display them and which
// exit code to use.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jeranaias/ollamachat/internal/config"
	"github.com/jeranaias/ollamachat/internal/ollama"
)

// =============================================================================
// EXIT CODES - Specific codes for different error categories
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitNetworkError indicates the server could not be reached or dropped the stream
	ExitNetworkError = 5
	// ExitNotFoundError indicates a model was not found
	ExitNotFoundError = 7
	// ExitTimeoutError indicates an operation timed out
	ExitTimeoutError = 8
	// ExitCancelled is the conventional status for an interrupted command
	ExitCancelled = 130
)

// ErrCancelled is returned when the user interrupts a one-shot command.
var ErrCancelled = errors.New("cancelled")

// =============================================================================
// ERROR TYPES FOR STRUCTURED ERROR HANDLING
// =============================================================================

// CommandError represents a CLI command error with context.
type CommandError struct {
	Command string // Command that failed (e.g., "config", "ask")
	Action  string // Action being performed (e.g., "set", "stream")
	Reason  string // Human-readable reason
	Err     error  // Underlying error (if any)
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s: %v", e.Command, e.Action, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Command, e.Action, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// UsageError represents invalid command-line usage.
type UsageError struct {
	Message    string
	Suggestion string // Optional "did you mean" hint
}

func (e *UsageError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (did you mean %q?)", e.Message, e.Suggestion)
	}
	return e.Message
}

// NewCommandError creates a new command error.
func NewCommandError(command, action, reason string, err error) error {
	return &CommandError{
		Command: command,
		Action:  action,
		Reason:  reason,
		Err:     err,
	}
}

// ErrMissingArgument creates an error for missing required arguments.
func ErrMissingArgument(argName, usage string) error {
	return &UsageError{Message: fmt.Sprintf("missing %s; usage: %s", argName, usage)}
}

// =============================================================================
// ERROR DISPLAY
// =============================================================================

// DisplayError writes err in the "[Error] ..." form used across the CLI.
func DisplayError(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(w, "%s %s\n", errorStyle().Render("[Error]"), FriendlyError(err))
}

// FriendlyError rewrites client errors into a sentence a user can act on.
func FriendlyError(err error) string {
	switch {
	case ollama.IsNotRunning(err):
		return "Ollama is not running (is `ollama serve` started, and is --url correct?)"
	case ollama.IsTimeout(err):
		return "the request to Ollama timed out"
	}
	if code, body, ok := ollama.UpstreamStatus(err); ok {
		if body != "" {
			return fmt.Sprintf("Ollama returned %d %s: %s", code, http.StatusText(code), body)
		}
		return fmt.Sprintf("Ollama returned %d %s", code, http.StatusText(code))
	}
	return err.Error()
}

// GetExitCode determines the appropriate exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled) {
		return ExitCancelled
	}

	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		return ExitUsageError
	}
	var ttyErr *TTYRequiredError
	if errors.As(err, &ttyErr) {
		return ExitUsageError
	}

	var validateErrs config.ValidateErrors
	if errors.As(err, &validateErrs) {
		return ExitConfigError
	}
	var configErr *configError
	if errors.As(err, &configErr) {
		return ExitConfigError
	}

	if code, _, ok := ollama.UpstreamStatus(err); ok && code == http.StatusNotFound {
		return ExitNotFoundError
	}

	switch {
	case ollama.IsTimeout(err):
		return ExitTimeoutError
	case ollama.IsNotRunning(err), ollama.IsTransport(err):
		return ExitNetworkError
	}

	return ExitGeneralError
}

// configError marks failures to load or save configuration.
type configError struct {
	err error
}

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }
