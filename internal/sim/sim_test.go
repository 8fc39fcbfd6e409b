// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package sim

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/ollamachat/internal/ollama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListModels(t *testing.T) {
	b := New(Options{Seed: 1})

	models, err := b.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"SimModel-1", "SimModel-2"}, ollama.Names(models))

	models[0].Name = "mutated"
	again, _ := b.ListModels(context.Background())
	assert.Equal(t, "SimModel-1", again[0].Name)
}

func TestStreamGeneration_Shape(t *testing.T) {
	b := New(Options{Seed: 42})

	stream, err := b.StreamGeneration(context.Background(), "SimModel-1", "hello sim")
	require.NoError(t, err)

	frags, err := stream.Collect()
	require.NoError(t, err)
	require.NotEmpty(t, frags)

	for _, f := range frags {
		assert.NotEmpty(t, strings.TrimSpace(f.Text))
		assert.NotContains(t, f.Text, "<think>")
		assert.NotContains(t, f.Text, "</think>")
	}

	merged := ollama.MergeFragments(frags)
	require.Len(t, merged, 2, "expected one thinking run then one final run")
	assert.True(t, merged[0].IsThinking)
	assert.False(t, merged[1].IsThinking)
	assert.Contains(t, merged[1].Text, `"hello sim"`)

	thinking, final := 0, 0
	for _, f := range frags {
		if f.IsThinking {
			thinking++
		} else {
			final++
		}
	}
	assert.True(t, thinking >= 1 && thinking <= 5, "thinking count %d", thinking)
	assert.True(t, final >= 1 && final <= 5, "final count %d", final)

	stats := stream.Stats()
	assert.True(t, stats.Done)
	assert.Equal(t, "SimModel-1", stats.Model)
	assert.Equal(t, 2, stats.PromptTokens)
	assert.Equal(t, len(frags)+2, stats.CompletionTokens)
	assert.Zero(t, stream.Dropped())
}

func TestStreamGeneration_Deterministic(t *testing.T) {
	run := func() []ollama.Fragment {
		stream, err := New(Options{Seed: 7}).StreamGeneration(context.Background(), "SimModel-2", "same")
		require.NoError(t, err)
		frags, err := stream.Collect()
		require.NoError(t, err)
		return frags
	}
	assert.Equal(t, run(), run())
}

func TestStreamGeneration_UnknownModel(t *testing.T) {
	b := New(Options{Seed: 1})

	_, err := b.StreamGeneration(context.Background(), "gpt-oss", "hi")
	require.Error(t, err)
	code, body, ok := ollama.UpstreamStatus(err)
	require.True(t, ok)
	assert.Equal(t, 404, code)
	assert.Contains(t, body, "gpt-oss")
}

func TestStreamGeneration_Cancelled(t *testing.T) {
	b := New(Options{Seed: 3, MinDelay: 20 * time.Millisecond, MaxDelay: 20 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream, err := b.StreamGeneration(ctx, "SimModel-1", "slow")
	require.NoError(t, err)

	first, err := stream.Next()
	require.NoError(t, err)
	assert.True(t, first.IsThinking)

	cancel()
	start := time.Now()
	_, err = stream.Next()
	assert.Equal(t, io.EOF, err)
	assert.Less(t, time.Since(start), time.Second)

	_, err = b.StreamGeneration(ctx, "SimModel-1", "again")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStreamGeneration_DeadlineEndsCleanly(t *testing.T) {
	b := New(Options{Seed: 3, MinDelay: 200 * time.Millisecond, MaxDelay: 200 * time.Millisecond})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	stream, err := b.StreamGeneration(ctx, "SimModel-1", "x")
	require.NoError(t, err)

	frags, err := stream.Collect()
	assert.NoError(t, err)
	assert.Empty(t, frags)
}

func TestPacedBody(t *testing.T) {
	lines := []string{"a\n", "bb\n", "ccc\n"}
	delay := 30 * time.Millisecond
	body := newPacedBody(context.Background(), lines, []time.Duration{delay, delay, delay})

	start := time.Now()
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "a\nbb\nccc\n", string(data))
	assert.GreaterOrEqual(t, time.Since(start), 2*delay)

	require.NoError(t, body.Close())
	_, err = body.Read(make([]byte, 1))
	assert.Error(t, err)
}

func TestPacedBody_OneLinePerRead(t *testing.T) {
	body := newPacedBody(context.Background(), []string{"first\n", "second\n"}, []time.Duration{0, 0})

	buf := make([]byte, 64)
	n, err := body.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "first\n", string(buf[:n]))

	n, err = body.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "second\n", string(buf[:n]))

	_, err = body.Read(buf)
	assert.Equal(t, io.EOF, err)
}

func TestDelayBounds(t *testing.T) {
	b := New(Options{Seed: 9, MinDelay: 10 * time.Millisecond, MaxDelay: 20 * time.Millisecond})
	for i := 0; i < 200; i++ {
		d := b.delay()
		if d < 10*time.Millisecond || d > 20*time.Millisecond {
			t.Fatalf("delay %v outside [10ms, 20ms]", d)
		}
	}

	fixed := New(Options{Seed: 9, MinDelay: 5 * time.Millisecond, MaxDelay: time.Millisecond})
	assert.Equal(t, 5*time.Millisecond, fixed.delay())
}
