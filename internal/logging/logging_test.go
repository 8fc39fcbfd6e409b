// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"trace", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestNew_TextFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "warn", Output: &buf})
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "stream_id", "abc")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
	assert.Contains(t, out, "stream_id=abc")
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "debug", Format: "json", Output: &buf})
	require.NoError(t, err)

	logger.Debug("dropped malformed line", "line", "{bad")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "dropped malformed line", rec["msg"])
	assert.Equal(t, "{bad", rec["line"])
	assert.Equal(t, "DEBUG", rec["level"])
}

func TestNew_Errors(t *testing.T) {
	_, err := New(Options{Level: "loud", Output: &bytes.Buffer{}})
	assert.Error(t, err)

	_, err = New(Options{Format: "xml", Output: &bytes.Buffer{}})
	assert.Error(t, err)

	logger, err := New(Options{})
	require.NoError(t, err)
	logger.Error("goes nowhere")
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "ollamachat.log")

	logger, closer, err := Open(path, "info", "text")
	require.NoError(t, err)
	logger.Info("stream opened", "model", "llama3")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "model=llama3"))
}
