// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package menu

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/ollamachat/internal/ollama"
	"github.com/jeranaias/ollamachat/internal/ui/styles"
)

// Run shows the menu on the terminal until the user picks a model or Exit.
// Cancelling ctx closes the menu and returns ctx's error.
func Run(ctx context.Context, backend ollama.Backend) (Result, error) {
	p := tea.NewProgram(New(ctx, backend, styles.NewTheme()), tea.WithContext(ctx))

	final, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return Result{Exit: true}, ctx.Err()
		}
		return Result{}, fmt.Errorf("model menu: %w", err)
	}

	m, ok := final.(Model)
	if !ok || !m.Done() {
		return Result{Exit: true}, nil
	}
	return m.Result(), nil
}
