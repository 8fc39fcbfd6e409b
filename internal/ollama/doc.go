// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for the Ollama generate API and
// the streaming decoder behind it.
//
// A streaming reply is decoded in three stages, each usable on its own:
//
//   - LineFramer: splits the body into logical lines, skipping blanks,
//     stripping an SSE "data:" prefix and stopping at the [DONE] sentinel.
//   - DecodeIncrement: parses one line into a GenerationIncrement. Inside a
//     stream, malformed lines are logged and dropped.
//   - Step: the think-tag state machine that classifies each increment's
//     text as reasoning or final answer.
//
// FragmentStream ties the stages together behind a pull-based Next.
//
// # Usage
//
//	client := ollama.NewClientWithConfig(&ollama.ClientConfig{
//	    BaseURL: "http://localhost:11435/api",
//	})
//	stream, err := client.StreamGeneration(ctx, "qwen2.5:7b", "Hello")
//	if err != nil {
//	    return err
//	}
//	for frag, err := range stream.All() {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Print(frag.Text)
//	}
//
// Cancelling ctx ends the stream cleanly; Next returns io.EOF and the
// caller can tell cancellation from completion by checking ctx.Err().
package ollama
