// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// models.go - Model catalog command.
//
// Command: models
// Short:   List available models
// Aliases: list, ls
//
// Examples:
//   ollamachat models            One name per line
//   ollamachat models --json     JSON envelope
//   ollamachat --sim models      Simulated catalog
package cli

import (
	"context"
	"fmt"

	"github.com/jeranaias/ollamachat/internal/ollama"
)

// HandleModels handles the "models" command.
func HandleModels(ctx context.Context, app *App, args Args) error {
	return OutputJSON(app.Out, args.JSON, "models", func() (interface{}, error) {
		models, err := app.Backend.ListModels(ctx)
		if err != nil {
			return nil, err
		}
		names := ollama.Names(models)
		if !args.JSON {
			if len(names) == 0 {
				fmt.Fprintln(app.Err, hintStyle().Render("No models found. Pull one with `ollama pull <name>`."))
			}
			for _, name := range names {
				fmt.Fprintln(app.Out, name)
			}
		}
		return ModelsData{Models: names, Backend: app.BackendName()}, nil
	})
}
