// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"errors"
	"strconv"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the Ollama client.
type ClientError struct {
	Type    ErrorType
	Message string

	// StatusCode and Body are set for ErrTypeUpstream.
	StatusCode int
	Body       string

	Cause error
}

func (e *ClientError) Error() string {
	msg := e.Message
	if e.Type == ErrTypeUpstream && e.Body != "" {
		msg += ": " + e.Body
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	// ErrTypeNotRunning: the server could not be reached at all.
	ErrTypeNotRunning
	// ErrTypeTimeout: the request deadline passed before a response arrived.
	ErrTypeTimeout
	// ErrTypeUpstream: the server answered with a non-success status.
	ErrTypeUpstream
	// ErrTypeTransport: the connection failed after streaming began.
	ErrTypeTransport
	// ErrTypeDecode: a line was not a valid increment. Never escapes a stream.
	ErrTypeDecode
	// ErrTypeInvalidResponse: a unary response body could not be decoded.
	ErrTypeInvalidResponse
)

// String returns a short name for the error type.
func (t ErrorType) String() string {
	switch t {
	case ErrTypeNotRunning:
		return "not_running"
	case ErrTypeTimeout:
		return "timeout"
	case ErrTypeUpstream:
		return "upstream"
	case ErrTypeTransport:
		return "transport"
	case ErrTypeDecode:
		return "decode"
	case ErrTypeInvalidResponse:
		return "invalid_response"
	default:
		return "unknown"
	}
}

// Sentinel errors for easy checking.
var (
	ErrNotRunning = &ClientError{Type: ErrTypeNotRunning, Message: "Ollama is not running"}
	ErrTimeout    = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
)

// NewUpstreamError builds the error for a non-success answer to an initial request.
func NewUpstreamError(op string, code int, body string) *ClientError {
	return &ClientError{
		Type:       ErrTypeUpstream,
		Message:    op + " failed with status " + strconv.Itoa(code),
		StatusCode: code,
		Body:       body,
	}
}

// =============================================================================
// PREDICATES
// =============================================================================

func errorTypeOf(err error) (ErrorType, bool) {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type, true
	}
	return ErrTypeUnknown, false
}

// IsUpstream reports whether err is a non-success response to the initial request.
func IsUpstream(err error) bool {
	t, ok := errorTypeOf(err)
	return ok && t == ErrTypeUpstream
}

// IsTransport reports whether err is a mid-stream connection failure.
func IsTransport(err error) bool {
	t, ok := errorTypeOf(err)
	return ok && t == ErrTypeTransport
}

// IsNotRunning checks if an error indicates Ollama is not running.
func IsNotRunning(err error) bool {
	t, ok := errorTypeOf(err)
	return ok && t == ErrTypeNotRunning
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	t, ok := errorTypeOf(err)
	return ok && t == ErrTypeTimeout
}

// UpstreamStatus extracts the status code and body of an upstream error.
func UpstreamStatus(err error) (code int, body string, ok bool) {
	var clientErr *ClientError
	if errors.As(err, &clientErr) && clientErr.Type == ErrTypeUpstream {
		return clientErr.StatusCode, clientErr.Body, true
	}
	return 0, "", false
}
