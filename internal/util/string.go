// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Display-width helpers. Widths are terminal columns, so CJK and other wide
// characters count as 2.

const ellipsis = "..."

// StringWidth returns the display width of s.
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}

// TruncateWidth shortens s to at most maxWidth columns, ending in "..." when
// anything was cut and there is room for it.
func TruncateWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= len(ellipsis) {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, ellipsis)
}

// PadRight pads s with spaces to width columns. Wider strings are returned
// unchanged.
func PadRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// Rule returns a horizontal line of ch spanning width columns.
func Rule(ch string, width int) string {
	w := runewidth.StringWidth(ch)
	if width <= 0 || w == 0 {
		return ""
	}
	return strings.Repeat(ch, width/w)
}

// FirstLine returns the first line of s, for one-line summaries.
func FirstLine(s string) string {
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		return s[:i]
	}
	return s
}
