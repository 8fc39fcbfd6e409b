// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// json_output.go - JSON output support for scripting.
//
// Provides a standardized JSON envelope for the models, config and version
// commands. ask --json streams bare fragments instead (see ask.go).
package cli

import (
	"encoding/json"
	"io"
	"time"
)

// JSONResponse is the standardized response format for --json output.
type JSONResponse struct {
	// Success indicates whether the command completed successfully
	Success bool `json:"success"`

	// Data contains the command-specific response data
	Data interface{} `json:"data"`

	// Error contains the error message if Success is false, null otherwise
	Error *string `json:"error"`

	// Timestamp is the RFC 3339 time when the response was generated
	Timestamp string `json:"timestamp"`

	// Command is the command that was executed
	Command string `json:"command,omitempty"`
}

// NewJSONResponse creates a new successful JSON response.
func NewJSONResponse(command string, data interface{}) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates a new error JSON response.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	errStr := FriendlyError(err)
	return &JSONResponse{
		Success:   false,
		Error:     &errStr,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Print writes the response, indented, to w.
func (r *JSONResponse) Print(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// OutputJSON runs handler and, in JSON mode, wraps its result or error in a
// JSONResponse written to w. The handler's error is always returned.
func OutputJSON(w io.Writer, jsonMode bool, command string, handler func() (interface{}, error)) error {
	data, err := handler()
	if !jsonMode {
		return err
	}
	if err != nil {
		NewJSONErrorResponse(command, err).Print(w)
		return err
	}
	return NewJSONResponse(command, data).Print(w)
}

// =============================================================================
// COMMAND-SPECIFIC DATA STRUCTURES
// =============================================================================

// ModelsData represents the data returned by the models command.
type ModelsData struct {
	Models  []string `json:"models"`
	Backend string   `json:"backend"`
}

// ConfigData represents the data returned by the config show command.
type ConfigData struct {
	Config interface{} `json:"config"`
	Path   string      `json:"config_path"`
}

// ConfigValueData represents the data returned by config get/set.
type ConfigValueData struct {
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
}

// VersionData represents the data returned by the version command.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version,omitempty"`
}
