// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sim provides an offline stand-in for an Ollama server.
//
// The simulator does not fabricate fragments directly. It writes the same
// NDJSON wire format Ollama produces and feeds it through
// ollama.NewFragmentStream, so everything downstream of the HTTP body
// behaves exactly as it does against a real server.
package sim

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/ollamachat/internal/ollama"
)

// Models is the fixed catalog the simulator serves.
var Models = []ollama.ModelDescriptor{
	{Name: "SimModel-1"},
	{Name: "SimModel-2"},
}

var thinkingPool = []string{
	"Processing your request",
	"...almost there",
	"Just a bit more",
	"Analyzing data",
	"Crunching numbers",
	"Formulating response",
	"Checking details",
	"Loading context",
	"Verifying input",
	"Thinking...",
}

// finalPool entries take the prompt as their only argument.
var finalPool = []string{
	"Here is the final response based on your input: %q.",
	"Done! Your input %q has been processed successfully!",
	"All set! Result for %q: success.",
	"Your request %q is now complete.",
	"Finished processing %q!",
	"Result ready: %q has been handled.",
	"Successfully generated response for %q.",
	"Output ready for %q!",
	"Completed: %q was processed correctly.",
	"Final response for %q is now available.",
}

// Options configures a simulated backend.
type Options struct {
	// Seed makes output reproducible. Zero seeds from the clock.
	Seed uint64
	// MinDelay and MaxDelay bound the pause before each wire line.
	MinDelay time.Duration
	MaxDelay time.Duration
	// Logger receives stream diagnostics. Nil discards.
	Logger *slog.Logger
}

// Backend implements ollama.Backend without a network. It is safe for
// concurrent use.
type Backend struct {
	opts   Options
	logger *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

var _ ollama.Backend = (*Backend)(nil)

// New creates a simulated backend.
func New(opts Options) *Backend {
	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	if opts.MaxDelay < opts.MinDelay {
		opts.MaxDelay = opts.MinDelay
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Backend{
		opts:   opts,
		logger: logger.With("component", "sim"),
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// ListModels returns the simulated catalog.
func (b *Backend) ListModels(ctx context.Context) ([]ollama.ModelDescriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	models := make([]ollama.ModelDescriptor, len(Models))
	copy(models, Models)
	return models, nil
}

// StreamGeneration fabricates a reply to prompt. The reply opens with a
// thinking block of 1-5 phrases followed by 1-5 final phrases quoting the
// prompt. An unknown model fails the way a real server does, with a 404.
func (b *Backend) StreamGeneration(ctx context.Context, model, prompt string) (*ollama.FragmentStream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !knownModel(model) {
		body := fmt.Sprintf("model '%s' not found", model)
		b.logger.Warn("generate failed", "model", model, "status", 404)
		return nil, ollama.NewUpstreamError("generate", 404, body)
	}

	b.mu.Lock()
	lines, delays := b.script(model, prompt)
	b.mu.Unlock()

	body := newPacedBody(ctx, lines, delays)
	return ollama.NewFragmentStream(ctx, body, b.logger.With("model", model)), nil
}

func knownModel(name string) bool {
	for _, m := range Models {
		if m.Name == name {
			return true
		}
	}
	return false
}

// script builds the wire lines of one reply and the pause before each.
// Callers hold b.mu.
func (b *Backend) script(model, prompt string) ([]string, []time.Duration) {
	thinking := b.pick(thinkingPool)
	final := b.pick(finalPool)

	var texts []string
	texts = append(texts, ollama.ThinkOpenTag)
	for _, t := range thinking {
		texts = append(texts, t+" ")
	}
	texts = append(texts, ollama.ThinkCloseTag)
	for _, f := range final {
		texts = append(texts, fmt.Sprintf(f, prompt)+" ")
	}

	lines := make([]string, 0, len(texts)+1)
	delays := make([]time.Duration, 0, len(texts)+1)
	var total time.Duration
	for _, text := range texts {
		d := b.delay()
		total += d
		delays = append(delays, d)
		lines = append(lines, encodeLine(ollama.GenerationIncrement{
			Model:     model,
			CreatedAt: time.Now().UTC(),
			Response:  text,
		}))
	}

	delays = append(delays, 0)
	lines = append(lines, encodeLine(ollama.GenerationIncrement{
		Model:           model,
		CreatedAt:       time.Now().UTC(),
		Done:            true,
		DoneReason:      "stop",
		PromptEvalCount: len(strings.Fields(prompt)),
		EvalCount:       len(texts),
		TotalDuration:   int64(total),
		EvalDuration:    int64(total),
	}))
	return lines, delays
}

// pick returns a shuffled subset of 1 to len(pool)/2 entries.
func (b *Backend) pick(pool []string) []string {
	n := b.rng.IntN(len(pool)/2) + 1
	shuffled := make([]string, len(pool))
	copy(shuffled, pool)
	b.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:n]
}

func (b *Backend) delay() time.Duration {
	span := b.opts.MaxDelay - b.opts.MinDelay
	if span <= 0 {
		return b.opts.MinDelay
	}
	return b.opts.MinDelay + time.Duration(b.rng.Int64N(int64(span)+1))
}

func encodeLine(inc ollama.GenerationIncrement) string {
	data, err := json.Marshal(inc)
	if err != nil {
		// GenerationIncrement has no unencodable fields.
		panic(err)
	}
	return string(data) + "\n"
}
