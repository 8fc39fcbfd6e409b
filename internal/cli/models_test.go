// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/ollamachat/internal/ollama"
	"github.com/jeranaias/ollamachat/internal/sim"
)

func TestHandleModels_Text(t *testing.T) {
	app, out, _ := newTestApp(sim.New(sim.Options{Seed: 1}))

	require.NoError(t, HandleModels(context.Background(), app, Args{}))
	assert.Equal(t, "SimModel-1\nSimModel-2\n", out.String())
}

func TestHandleModels_Empty(t *testing.T) {
	app, out, errOut := newTestApp(&scriptedBackend{})

	require.NoError(t, HandleModels(context.Background(), app, Args{}))
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "No models found")
}

func TestHandleModels_JSON(t *testing.T) {
	app, out, _ := newTestApp(sim.New(sim.Options{Seed: 1}))

	require.NoError(t, HandleModels(context.Background(), app, Args{JSON: true}))

	var resp struct {
		Success bool       `json:"success"`
		Data    ModelsData `json:"data"`
		Command string     `json:"command"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "models", resp.Command)
	assert.Equal(t, []string{"SimModel-1", "SimModel-2"}, resp.Data.Models)
	assert.Equal(t, "sim", resp.Data.Backend)
}

func TestHandleModels_JSONError(t *testing.T) {
	backend := &scriptedBackend{listErr: ollama.NewUpstreamError("list models", 500, "boom")}
	app, out, _ := newTestApp(backend)

	err := HandleModels(context.Background(), app, Args{JSON: true})
	require.Error(t, err)

	var resp JSONResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "Ollama returned 500 Internal Server Error: boom", *resp.Error)
}

func TestHandleVersion_JSON(t *testing.T) {
	app, out, _ := newTestApp(&scriptedBackend{})

	require.NoError(t, HandleVersion(app.Out, true))

	var resp struct {
		Data VersionData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, Version, resp.Data.Version)
	assert.NotEmpty(t, resp.Data.GoVersion)
}

func TestHandleHelp_Unknown(t *testing.T) {
	app, out, _ := newTestApp(&scriptedBackend{})

	err := HandleHelp(app.Out, Args{Unknown: "modles"})
	var usageErr *UsageError
	require.True(t, errors.As(err, &usageErr))
	assert.Equal(t, "models", usageErr.Suggestion)
	assert.Contains(t, out.String(), "Usage")
}
