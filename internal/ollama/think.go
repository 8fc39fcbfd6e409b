// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import "strings"

// Reasoning delimiters, matched ASCII case-insensitively.
const (
	ThinkOpenTag  = "<think>"
	ThinkCloseTag = "</think>"
)

// =============================================================================
// THINK-TAG STATE MACHINE
// =============================================================================

// StreamState is the only mutable state of a streaming call. Each call owns
// its own value; it starts zeroed (outside any thinking block).
type StreamState struct {
	InsideThinking bool
}

// Step classifies one increment of text.
//
// An opening tag switches the state to thinking and discards everything up
// to and including the tag. A closing tag switches the state back and
// discards everything from the tag onward, so text following a closing tag
// in the same increment is lost. Text before a closing tag is classified as
// thinking when the block was open. Stray tags are stripped.
//
// Step returns the new state and, when visible text remains, the fragment
// to emit.
func Step(state StreamState, text string) (StreamState, Fragment, bool) {
	if i := indexFold(text, ThinkOpenTag); i >= 0 {
		state.InsideThinking = true
		text = text[i+len(ThinkOpenTag):]
	}

	thinking := state.InsideThinking

	if i := indexFold(text, ThinkCloseTag); i >= 0 {
		state.InsideThinking = false
		text = text[:i]
	}

	text = removeFold(text, ThinkOpenTag)
	text = removeFold(text, ThinkCloseTag)

	if strings.TrimSpace(text) == "" {
		return state, Fragment{}, false
	}
	return state, Fragment{Text: text, IsThinking: thinking}, true
}

// indexFold is strings.Index with ASCII case folding. Non-ASCII bytes only
// ever match themselves, which keeps byte offsets valid for UTF-8 input.
func indexFold(s, substr string) int {
	n := len(substr)
	for i := 0; i+n <= len(s); i++ {
		if equalFoldASCII(s[i:i+n], substr) {
			return i
		}
	}
	return -1
}

func removeFold(s, substr string) string {
	i := indexFold(s, substr)
	if i < 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i >= 0 {
		b.WriteString(s[:i])
		s = s[i+len(substr):]
		i = indexFold(s, substr)
	}
	b.WriteString(s)
	return b.String()
}

func equalFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		if lowerASCII(a[i]) != lowerASCII(b[i]) {
			return false
		}
	}
	return true
}

func lowerASCII(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}
