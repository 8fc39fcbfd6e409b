// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// confirm.go - Confirmation handling for commands that overwrite files.
//
// The pattern:
//  1. If --force is present, proceed without prompting
//  2. If --json mode, require --force (no interactive prompts in JSON mode)
//  3. If stdin is not a TTY, require --force (can't prompt)
//  4. Otherwise, ask on the terminal
package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ConfirmationOptions controls RequireConfirmation.
type ConfirmationOptions struct {
	// Force indicates --force was passed (skip the prompt)
	Force bool
	// JSONMode indicates --json was passed
	JSONMode bool
	// Interactive is false when stdin cannot be prompted
	Interactive bool
}

// RequireConfirmation asks before a destructive action. It returns false
// without an error when the user declines, and an error when a prompt is
// needed but not possible.
func RequireConfirmation(in io.Reader, out io.Writer, action string, opts ConfirmationOptions) (bool, error) {
	if opts.Force {
		return true, nil
	}
	if opts.JSONMode || !opts.Interactive {
		return false, &UsageError{Message: fmt.Sprintf("%s requires --force", action)}
	}
	return PromptYesNo(in, out, fmt.Sprintf("%s?", action)), nil
}

// PromptYesNo prompts the user with a yes/no question. Anything other than
// y or yes, including EOF, is a no.
func PromptYesNo(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", question)

	reader := bufio.NewReader(in)
	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		return false
	}

	response := strings.ToLower(strings.TrimSpace(input))
	return response == "y" || response == "yes"
}

// ShowCancellationMessage displays a standard cancellation message.
func ShowCancellationMessage(w io.Writer) {
	fmt.Fprintln(w, hintStyle().Render("Cancelled."))
}
