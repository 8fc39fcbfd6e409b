// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// render.go - Writes a stream of fragments to the terminal.

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ollamachat/internal/ollama"
	"github.com/jeranaias/ollamachat/internal/ui/styles"
)

// RenderOptions controls how fragments are shown.
type RenderOptions struct {
	// ShowThinking prints reasoning fragments; otherwise they are dropped.
	ShowThinking bool

	// Markdown holds back the final answer and renders it with glamour once
	// the stream ends. Reasoning is still streamed as it arrives.
	Markdown bool

	// Width is the word-wrap width for markdown output.
	Width int
}

// FragmentRenderer prints fragments as they arrive, switching style at every
// thinking/final boundary.
type FragmentRenderer struct {
	w     io.Writer
	theme *styles.Theme
	opts  RenderOptions

	wrote    bool
	thinking bool // class of the last fragment written
	atEOL    bool // last write ended a line
	answer   strings.Builder
}

// NewFragmentRenderer creates a renderer writing to w.
func NewFragmentRenderer(w io.Writer, theme *styles.Theme, opts RenderOptions) *FragmentRenderer {
	if theme == nil {
		theme = Theme()
	}
	return &FragmentRenderer{w: w, theme: theme, opts: opts}
}

// Write renders one fragment.
func (r *FragmentRenderer) Write(frag ollama.Fragment) error {
	if !frag.IsThinking {
		r.answer.WriteString(frag.Text)
	}
	if frag.IsThinking && !r.opts.ShowThinking {
		return nil
	}
	if !frag.IsThinking && r.opts.Markdown {
		return nil
	}

	var b strings.Builder
	if r.wrote && r.thinking != frag.IsThinking && !r.atEOL {
		// Boundary: start the new block on its own line.
		b.WriteString("\n")
	}
	style := r.theme.Answer
	if frag.IsThinking {
		style = r.theme.Thinking
	}
	b.WriteString(renderLines(style, frag.Text))

	r.wrote = true
	r.thinking = frag.IsThinking
	r.atEOL = strings.HasSuffix(frag.Text, "\n")
	_, err := io.WriteString(r.w, b.String())
	return err
}

// Finish completes the output of one reply. With markdown enabled the held
// back answer is rendered now.
func (r *FragmentRenderer) Finish() error {
	if r.opts.Markdown && r.answer.Len() > 0 {
		if r.wrote && !r.atEOL {
			if _, err := io.WriteString(r.w, "\n"); err != nil {
				return err
			}
		}
		_, err := io.WriteString(r.w, renderMarkdown(r.answer.String(), r.opts.Width))
		return err
	}
	if r.wrote && !r.atEOL {
		_, err := io.WriteString(r.w, "\n")
		return err
	}
	return nil
}

// Answer returns the final (non-thinking) text received so far.
func (r *FragmentRenderer) Answer() string {
	return r.answer.String()
}

// Wrote reports whether anything has been printed.
func (r *FragmentRenderer) Wrote() bool {
	return r.wrote
}

// renderLines styles each line separately so that multi-line fragments are
// not padded into a block.
func renderLines(style lipgloss.Style, text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = style.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// renderMarkdown renders markdown content for terminal display.
// Returns the original content if rendering fails.
func renderMarkdown(content string, width int) string {
	if width <= 0 {
		width = DefaultTerminalWidth
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}

	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// printStats writes the "[Stats] ..." line for a finished stream.
func printStats(w io.Writer, stats *ollama.StreamStats) {
	fmt.Fprintf(w, "%s %s\n",
		Theme().Stats.Render(styles.StatusIndicators.Stats),
		Theme().Stats.Render(stats.Format()))
}
