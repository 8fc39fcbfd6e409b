// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// FRAGMENT STREAM
// =============================================================================

// FragmentStream is the pull-based sequence returned by StreamGeneration.
// Each call to Next reads just enough of the body to produce one fragment.
//
// A FragmentStream is single-pass and not safe for concurrent use. The body
// is closed when the stream ends for any reason, or by Close.
type FragmentStream struct {
	ctx     context.Context
	id      string
	body    io.ReadCloser
	framer  *LineFramer
	decoder chunkDecoder
	state   StreamState
	stats   *StreamStats
	logger  *slog.Logger

	// err is the terminal result; once set Next keeps returning it.
	err    error
	closed bool
}

// NewFragmentStream wires framer, decoder and think-tag state machine over
// body. Cancelling ctx ends the stream cleanly at the next line boundary.
func NewFragmentStream(ctx context.Context, body io.ReadCloser, logger *slog.Logger) *FragmentStream {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	id := uuid.NewString()
	s := &FragmentStream{
		ctx:    ctx,
		id:     id,
		body:   body,
		framer: NewLineFramer(body),
		stats:  NewStreamStats(),
		logger: logger.With("stream_id", id),
	}
	s.decoder = chunkDecoder{logger: s.logger, observe: s.stats.observe}
	s.logger.Debug("stream opened")
	return s
}

// Next returns the next fragment.
//
// It returns io.EOF when the stream ends cleanly: the [DONE] sentinel, end
// of the body, or cancellation of the stream's context. A connection failure
// mid-stream is returned as an ErrTypeTransport ClientError.
func (s *FragmentStream) Next() (Fragment, error) {
	if s.err != nil {
		return Fragment{}, s.err
	}
	for {
		line, err := s.framer.Next(s.ctx)
		if err != nil {
			return Fragment{}, s.finish(err)
		}

		inc, ok := s.decoder.decode(line)
		if !ok {
			continue
		}

		var (
			frag Fragment
			emit bool
		)
		s.state, frag, emit = Step(s.state, inc.Response)
		if !emit {
			continue
		}
		s.stats.recordFragment()
		return frag, nil
	}
}

func (s *FragmentStream) finish(err error) error {
	switch {
	case errors.Is(err, io.EOF):
		s.err = io.EOF
	case s.ctx.Err() != nil:
		s.logger.Debug("stream cancelled", "cause", s.ctx.Err())
		s.err = io.EOF
	default:
		s.logger.Warn("stream interrupted", "error", err)
		s.err = &ClientError{Type: ErrTypeTransport, Message: "stream interrupted", Cause: err}
	}
	s.Close()
	return s.err
}

// Close releases the connection. It is safe to call more than once and
// after the stream has ended.
func (s *FragmentStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.err == nil {
		s.err = io.EOF
	}
	s.stats.EndTime = time.Now()
	s.logger.Debug("stream closed",
		"fragments", s.stats.Fragments,
		"dropped", s.decoder.dropped,
		"thinking_open", s.state.InsideThinking)
	return s.body.Close()
}

// ID returns the identifier used to correlate this stream's log lines.
func (s *FragmentStream) ID() string {
	return s.id
}

// State returns the current think-tag state.
func (s *FragmentStream) State() StreamState {
	return s.state
}

// Stats returns the statistics collected so far.
func (s *FragmentStream) Stats() *StreamStats {
	return s.stats
}

// Dropped returns the number of malformed lines skipped so far.
func (s *FragmentStream) Dropped() int {
	return s.decoder.dropped
}

// All adapts the stream for range-over-func. Iteration stops after a
// terminal error, which is yielded once; the stream is closed on exit.
//
//	for frag, err := range stream.All() {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Print(frag.Text)
//	}
func (s *FragmentStream) All() iter.Seq2[Fragment, error] {
	return func(yield func(Fragment, error) bool) {
		defer s.Close()
		for {
			frag, err := s.Next()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(Fragment{}, err)
				return
			}
			if !yield(frag, nil) {
				return
			}
		}
	}
}

// Collect drains the stream. Fragments received before a terminal error
// are returned together with it.
func (s *FragmentStream) Collect() ([]Fragment, error) {
	var frags []Fragment
	for frag, err := range s.All() {
		if err != nil {
			return frags, err
		}
		frags = append(frags, frag)
	}
	return frags, nil
}

// =============================================================================
// STREAM STATISTICS
// =============================================================================

// StreamStats holds statistics collected during streaming.
type StreamStats struct {
	// Timing
	StartTime      time.Time
	FirstTokenTime time.Time
	EndTime        time.Time

	// Pass-through metadata, populated from the final done record
	Model            string
	Done             bool
	DoneReason       string
	TotalDuration    time.Duration
	LoadDuration     time.Duration
	EvalDuration     time.Duration
	PromptTokens     int
	CompletionTokens int

	// Computed
	Fragments       int
	TTFT            time.Duration // Time to first fragment
	TokensPerSecond float64
}

// NewStreamStats creates a new StreamStats with start time set.
func NewStreamStats() *StreamStats {
	return &StreamStats{
		StartTime: time.Now(),
	}
}

func (s *StreamStats) recordFragment() {
	s.Fragments++
	if s.FirstTokenTime.IsZero() {
		s.FirstTokenTime = time.Now()
		s.TTFT = s.FirstTokenTime.Sub(s.StartTime)
	}
}

func (s *StreamStats) observe(inc GenerationIncrement) {
	if inc.Model != "" {
		s.Model = inc.Model
	}
	if !inc.Done {
		return
	}
	s.Done = true
	s.DoneReason = inc.DoneReason
	s.TotalDuration = time.Duration(inc.TotalDuration)
	s.LoadDuration = time.Duration(inc.LoadDuration)
	s.EvalDuration = time.Duration(inc.EvalDuration)
	s.PromptTokens = inc.PromptEvalCount
	s.CompletionTokens = inc.EvalCount
	if s.EvalDuration > 0 {
		s.TokensPerSecond = float64(s.CompletionTokens) / s.EvalDuration.Seconds()
	}
}

// Format returns a one-line summary such as
// "2.4s | 120 tokens | 48.3 tok/s | TTFT 310ms".
func (s *StreamStats) Format() string {
	total := s.TotalDuration
	if total == 0 && !s.EndTime.IsZero() {
		total = s.EndTime.Sub(s.StartTime)
	}
	return fmt.Sprintf("%s | %d tokens | %.1f tok/s | TTFT %dms",
		formatStatsDuration(total),
		s.CompletionTokens,
		s.TokensPerSecond,
		s.TTFT.Milliseconds())
}

func formatStatsDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
