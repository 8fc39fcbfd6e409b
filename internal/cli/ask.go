// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot question command.
//
// Command: ask
// Short:   Ask a single question and stream the reply
//
// Examples:
//   ollamachat ask "What is Go?"                 Stream the reply
//   ollamachat ask -m llama3 "Explain channels"  Use a specific model
//   ollamachat ask --no-thinking "Be brief"      Hide reasoning
//   ollamachat ask --json "hi" | jq -r .text     NDJSON fragments
//   git diff | ollamachat ask                    Prompt from stdin
//
// Flags:
//   -m, --model NAME    Model to use
//   --no-thinking       Hide reasoning fragments
//   --json              One {"text","thinking"} object per line
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jeranaias/ollamachat/internal/ollama"
	"github.com/jeranaias/ollamachat/internal/ui/styles"
)

// maxPipedPrompt caps how much of stdin is read as a prompt.
const maxPipedPrompt = 1 << 20

// HandleAsk handles the "ask" command.
func HandleAsk(ctx context.Context, app *App, args Args) error {
	prompt := args.Query
	if prompt == "" {
		piped, err := readPipedPrompt(app.In)
		if err != nil {
			return NewCommandError("ask", "read", "stdin could not be read", err)
		}
		prompt = piped
	}
	if strings.TrimSpace(prompt) == "" {
		return ErrMissingArgument("prompt", `ollamachat ask "your question"`)
	}

	model, err := resolveModel(ctx, app)
	if err != nil {
		return askFailed(ctx, app, err)
	}
	app.Logger.Debug("ask", "model", model, "prompt_bytes", len(prompt))

	stream, err := app.Backend.StreamGeneration(ctx, model, prompt)
	if err != nil {
		return askFailed(ctx, app, err)
	}
	defer stream.Close()

	if args.JSON {
		err = streamJSON(app.Out, stream, !args.NoThinking)
	} else {
		renderer := NewFragmentRenderer(app.Out, Theme(), RenderOptions{
			ShowThinking: app.Config.UI.ShowThinking && !args.NoThinking,
			Markdown:     app.Config.UI.Markdown && isTerminalWriter(app.Out),
			Width:        GetTerminalWidth(),
		})
		err = streamRendered(renderer, stream)
	}
	if err != nil {
		return err
	}

	if ctx.Err() != nil {
		return reportCancelled(app)
	}

	stats := stream.Stats()
	if app.Config.UI.ShowStats && stats.Done && !args.JSON {
		printStats(app.Err, stats)
	}
	if n := stream.Dropped(); n > 0 {
		app.Logger.Info("malformed lines skipped", "count", n, "stream_id", stream.ID())
	}
	return nil
}

// askFailed reports a request that was interrupted by Ctrl+C as a
// cancellation rather than a server fault.
func askFailed(ctx context.Context, app *App, err error) error {
	if ctx.Err() != nil {
		return reportCancelled(app)
	}
	return err
}

func reportCancelled(app *App) error {
	fmt.Fprintln(app.Err, warningStyle().Render(styles.StatusIndicators.Cancelled))
	return ErrCancelled
}

// streamRendered drains stream into renderer.
func streamRendered(renderer *FragmentRenderer, stream *ollama.FragmentStream) error {
	for frag, err := range stream.All() {
		if err != nil {
			renderer.Finish()
			return err
		}
		if err := renderer.Write(frag); err != nil {
			return err
		}
	}
	return renderer.Finish()
}

// streamJSON writes one JSON object per fragment.
func streamJSON(w io.Writer, stream *ollama.FragmentStream, showThinking bool) error {
	enc := json.NewEncoder(w)
	for frag, err := range stream.All() {
		if err != nil {
			return err
		}
		if frag.IsThinking && !showThinking {
			continue
		}
		if err := enc.Encode(frag); err != nil {
			return err
		}
	}
	return nil
}

// resolveModel picks the configured model, or the first one the backend
// lists.
func resolveModel(ctx context.Context, app *App) (string, error) {
	if app.Config.DefaultModel != "" {
		return app.Config.DefaultModel, nil
	}
	models, err := app.Backend.ListModels(ctx)
	if err != nil {
		return "", err
	}
	if len(models) == 0 {
		return "", errors.New("no models available; pull one with `ollama pull <name>` or pass --model")
	}
	app.Logger.Info("no model configured, using first listed", "model", models[0].Name)
	return models[0].Name, nil
}

// readPipedPrompt reads stdin when it is a pipe or file. A terminal yields
// an empty prompt rather than blocking.
func readPipedPrompt(in io.Reader) (string, error) {
	if in == nil {
		return "", nil
	}
	if f, ok := in.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil || stat.Mode()&os.ModeCharDevice != 0 {
			return "", nil
		}
	}
	data, err := io.ReadAll(io.LimitReader(in, maxPipedPrompt))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
