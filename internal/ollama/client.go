// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// maxErrorBody caps how much of a failed response is kept in an error.
const maxErrorBody = 64 * 1024

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the Ollama client.
type ClientConfig struct {
	// BaseURL is the API root; endpoints are BaseURL+"/generate" and
	// BaseURL+"/tags" (default: http://localhost:11435/api)
	BaseURL string

	// Timeout for non-streaming requests (default: 30s)
	Timeout time.Duration

	// HeaderTimeout bounds the wait for a streaming response's headers.
	// Zero means no limit; the body itself is never timed out.
	HeaderTimeout time.Duration

	// Logger receives debug output. Nil discards.
	Logger *slog.Logger
}

// DefaultBaseURL is where the client looks for Ollama unless configured.
const DefaultBaseURL = "http://localhost:11435/api"

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL: DefaultBaseURL,
		Timeout: 30 * time.Second,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the Ollama HTTP API. It holds no per-call state and is
// safe for concurrent use; every StreamGeneration call owns its own
// connection and think-tag state.
type Client struct {
	config       *ClientConfig
	httpClient   *http.Client
	streamClient *http.Client
	logger       *slog.Logger
}

// NewClient creates a new Ollama client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new Ollama client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	// Streams run as long as the model generates, so only the header wait
	// is bounded; cancellation comes from the caller's context.
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = config.HeaderTimeout

	return &Client{
		config:       config,
		httpClient:   &http.Client{Timeout: config.Timeout},
		streamClient: &http.Client{Transport: transport},
		logger:       logger.With("component", "ollama"),
	}
}

// GetConfig returns the client configuration.
func (c *Client) GetConfig() *ClientConfig {
	return c.config
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// CheckRunning verifies that the server is reachable. Any HTTP response
// counts as running; the API root itself may answer 404.
func (c *Client) CheckRunning(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/version", nil)
	if err != nil {
		return &ClientError{Type: ErrTypeNotRunning, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyRequestError(err)
	}
	drainAndClose(resp.Body)
	return nil
}

// =============================================================================
// MODEL CATALOG
// =============================================================================

// ListModels retrieves the available models in server order. A response
// without models yields an empty, non-nil slice.
func (c *Client) ListModels(ctx context.Context) ([]ModelDescriptor, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/tags", nil)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeNotRunning, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyRequestError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		uerr := NewUpstreamError("list models", resp.StatusCode, readErrorBody(resp.Body))
		c.logger.Warn("list models failed", "status", resp.StatusCode)
		return nil, uerr
	}

	var result ListModelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode model list", Cause: err}
	}
	if result.Models == nil {
		return []ModelDescriptor{}, nil
	}
	return result.Models, nil
}

// =============================================================================
// STREAMING GENERATION
// =============================================================================

// StreamGeneration posts prompt to the generate endpoint and returns the
// reply as a FragmentStream. A non-success status is returned as an
// ErrTypeUpstream error before any fragment is produced.
//
// The caller must drain or Close the stream. Cancelling ctx ends the stream
// cleanly at the next line boundary.
func (c *Client) StreamGeneration(ctx context.Context, model, prompt string) (*FragmentStream, error) {
	body, err := json.Marshal(GenerateRequest{
		Model:  model,
		Prompt: prompt,
		Stream: true,
	})
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeNotRunning, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/x-ndjson, text/event-stream")

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return nil, classifyRequestError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		uerr := NewUpstreamError("generate", resp.StatusCode, readErrorBody(resp.Body))
		c.logger.Warn("generate failed", "model", model, "status", resp.StatusCode)
		return nil, uerr
	}

	return NewFragmentStream(ctx, resp.Body, c.logger.With("model", model)), nil
}

// =============================================================================
// HELPERS
// =============================================================================

// classifyRequestError maps a failed Do call onto the error taxonomy.
// Cancellation is returned as is; it is not a fault.
func classifyRequestError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &ClientError{Type: ErrTypeTimeout, Message: ErrTimeout.Message, Cause: err}
	}
	var netTimeout interface{ Timeout() bool }
	if errors.As(err, &netTimeout) && netTimeout.Timeout() {
		return &ClientError{Type: ErrTypeTimeout, Message: ErrTimeout.Message, Cause: err}
	}
	return &ClientError{Type: ErrTypeNotRunning, Message: ErrNotRunning.Message, Cause: err}
}

// readErrorBody returns the response text, preferring an {"error": "..."}
// message when the server sends one.
func readErrorBody(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	var ollamaErr OllamaError
	if err := json.Unmarshal(data, &ollamaErr); err == nil && ollamaErr.Error != "" {
		return ollamaErr.Error
	}
	return strings.TrimSpace(string(data))
}

// Helper to drain response body
func drainAndClose(r io.ReadCloser) {
	io.Copy(io.Discard, io.LimitReader(r, maxErrorBody))
	r.Close()
}
