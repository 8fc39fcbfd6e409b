// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"bufio"
	"context"
	"io"
	"strings"
)

const (
	// DoneSentinel ends a stream regardless of any JSON "done" flag.
	DoneSentinel = "[DONE]"

	// ssePrefix is the Server-Sent-Events framing prefix, matched case-insensitively.
	ssePrefix = "data:"
)

// =============================================================================
// LINE FRAMER
// =============================================================================

// LineFramer turns a byte stream into logical lines. Blank lines are skipped,
// an SSE "data:" prefix is stripped, and a DoneSentinel line ends the sequence.
// A framer is single-pass.
type LineFramer struct {
	reader *bufio.Reader

	done bool
	// pending holds io.EOF when the input ended on an unterminated line; it
	// is returned on the call after that line.
	pending error
}

// NewLineFramer creates a framer over r.
func NewLineFramer(r io.Reader) *LineFramer {
	return &LineFramer{reader: bufio.NewReader(r)}
}

// Next returns the next non-blank logical line.
//
// It returns io.EOF at end of input or after the sentinel, ctx.Err() when the
// context is done, and any other read error unchanged. An unterminated last
// line is only returned when the input ended cleanly; bytes read before a
// failure or cancellation are discarded.
func (f *LineFramer) Next(ctx context.Context) (string, error) {
	for {
		if f.done {
			return "", io.EOF
		}
		if f.pending != nil {
			err := f.pending
			f.pending = nil
			f.done = true
			return "", err
		}
		if err := ctx.Err(); err != nil {
			f.done = true
			return "", err
		}

		raw, err := f.reader.ReadString('\n')
		if ctxErr := ctx.Err(); ctxErr != nil {
			f.done = true
			return "", ctxErr
		}
		if err != nil {
			if err != io.EOF || len(raw) == 0 {
				f.done = true
				return "", err
			}
			f.pending = io.EOF
		}

		line, ok := frameLine(raw)
		if !ok {
			continue
		}
		if line == DoneSentinel {
			f.done = true
			f.pending = nil
			return "", io.EOF
		}
		return line, nil
	}
}

// frameLine strips the terminator and any SSE prefix from raw. It reports
// false for lines that carry no content.
func frameLine(raw string) (string, bool) {
	line := strings.TrimSpace(raw)
	if len(line) >= len(ssePrefix) && strings.EqualFold(line[:len(ssePrefix)], ssePrefix) {
		line = strings.TrimSpace(line[len(ssePrefix):])
	}
	if line == "" {
		return "", false
	}
	return line, true
}
