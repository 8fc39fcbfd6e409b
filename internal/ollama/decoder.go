// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"encoding/json"
	"log/slog"
)

// =============================================================================
// CHUNK DECODER
// =============================================================================

// DecodeIncrement parses one framed line. A line that is not a JSON object
// of the increment shape yields an ErrTypeDecode error.
func DecodeIncrement(line string) (GenerationIncrement, error) {
	var inc GenerationIncrement
	if err := json.Unmarshal([]byte(line), &inc); err != nil {
		return GenerationIncrement{}, &ClientError{
			Type:    ErrTypeDecode,
			Message: "malformed increment",
			Cause:   err,
		}
	}
	return inc, nil
}

// chunkDecoder filters framed lines down to increments that carry text.
// Malformed lines are logged and counted, never returned as errors.
type chunkDecoder struct {
	logger  *slog.Logger
	dropped int

	// observe, when set, sees every well-formed increment including
	// metadata-only ones such as the final done record.
	observe func(GenerationIncrement)
}

// decode reports whether line produced an increment worth forwarding.
func (d *chunkDecoder) decode(line string) (GenerationIncrement, bool) {
	inc, err := DecodeIncrement(line)
	if err != nil {
		d.dropped++
		d.logger.Debug("dropped malformed line", "line", truncateForLog(line), "error", err)
		return GenerationIncrement{}, false
	}
	if d.observe != nil {
		d.observe(inc)
	}
	if inc.Response == "" {
		return GenerationIncrement{}, false
	}
	return inc, true
}

func truncateForLog(s string) string {
	const max = 200
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
