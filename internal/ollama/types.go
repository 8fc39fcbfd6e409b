// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import "time"

// =============================================================================
// REQUEST TYPES
// =============================================================================

// GenerateRequest is the request body for the /generate endpoint.
type GenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// GenerationIncrement is one decoded line of a streaming /generate response.
// Only Response and Done drive the stream; everything else is metadata the
// caller may read through StreamStats.
type GenerationIncrement struct {
	Model           string    `json:"model,omitempty"`
	CreatedAt       time.Time `json:"created_at,omitempty"`
	Response        string    `json:"response,omitempty"`
	Done            bool      `json:"done"`
	DoneReason      string    `json:"done_reason,omitempty"`
	PromptEvalCount int       `json:"prompt_eval_count,omitempty"` // tokens in prompt
	EvalCount       int       `json:"eval_count,omitempty"`        // tokens generated
	TotalDuration   int64     `json:"total_duration,omitempty"`    // nanoseconds
	LoadDuration    int64     `json:"load_duration,omitempty"`     // nanoseconds
	EvalDuration    int64     `json:"eval_duration,omitempty"`     // nanoseconds
}

// ModelDescriptor identifies a selectable generation model.
type ModelDescriptor struct {
	Name string `json:"name"`
}

// ListModelsResponse is the response from the /tags endpoint.
type ListModelsResponse struct {
	Models []ModelDescriptor `json:"models"`
}

// OllamaError is the error body some Ollama builds return on failure.
type OllamaError struct {
	Error string `json:"error"`
}

// =============================================================================
// CONSUMER TYPES
// =============================================================================

// Fragment is the unit handed to the consumer: a run of text that is either
// reasoning ("thinking") or part of the final answer. Text is never empty or
// whitespace-only.
type Fragment struct {
	Text       string `json:"text"`
	IsThinking bool   `json:"thinking"`
}

// MergeFragments coalesces adjacent fragments of the same class.
// The input is not modified.
func MergeFragments(frags []Fragment) []Fragment {
	if len(frags) == 0 {
		return nil
	}
	merged := make([]Fragment, 0, len(frags))
	cur := frags[0]
	for _, f := range frags[1:] {
		if f.IsThinking == cur.IsThinking {
			cur.Text += f.Text
			continue
		}
		merged = append(merged, cur)
		cur = f
	}
	return append(merged, cur)
}

// Names returns the model names in catalog order.
func Names(models []ModelDescriptor) []string {
	names := make([]string, len(models))
	for i, m := range models {
		names[i] = m.Name
	}
	return names
}
