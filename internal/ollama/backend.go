// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import "context"

// Backend is the capability the chat front end needs from a model server.
// *Client is the live implementation; internal/sim provides an offline one.
// Both hand back a FragmentStream, so fragment guarantees are identical.
type Backend interface {
	ListModels(ctx context.Context) ([]ModelDescriptor, error)
	StreamGeneration(ctx context.Context, model, prompt string) (*FragmentStream, error)
}

var _ Backend = (*Client)(nil)
