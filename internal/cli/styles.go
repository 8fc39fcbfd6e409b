// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// styles.go - Styling for the CLI commands.
//
// Colors are disabled for non-TTY output and when NO_COLOR is set. Every
// style comes from the shared ui/styles theme so the menu and the chat
// look the same.

package cli

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/ollamachat/internal/ui/styles"
	"github.com/jeranaias/ollamachat/internal/util"
)

// init configures lipgloss color profile based on terminal capabilities.
func init() {
	lipgloss.SetColorProfile(GetColorProfile())
}

var (
	themeOnce sync.Once
	cliTheme  *styles.Theme
)

// Theme returns the theme shared by all commands.
func Theme() *styles.Theme {
	themeOnce.Do(func() {
		profile := GetColorProfile()
		dark := true
		if profile != termenv.Ascii {
			dark = termenv.HasDarkBackground()
		}
		cliTheme = styles.NewThemeWithProfile(profile, dark)
	})
	return cliTheme
}

func errorStyle() lipgloss.Style   { return Theme().ErrorStyle }
func warningStyle() lipgloss.Style { return Theme().WarningStyle }
func successStyle() lipgloss.Style { return Theme().SuccessStyle }
func hintStyle() lipgloss.Style    { return Theme().Hint }

// =============================================================================
// HELPER FUNCTIONS FOR COMMON PATTERNS
// =============================================================================

// RenderSeparator renders a horizontal rule of the given width.
func RenderSeparator(width int) string {
	if width <= 0 {
		width = DefaultTerminalWidth
	}
	return Theme().Separator.Render(util.Rule("-", width))
}

// RenderConditional renders text with style if colors are enabled,
// otherwise returns the text unmodified.
func RenderConditional(style lipgloss.Style, text string) string {
	if !ColorsEnabled() {
		return text
	}
	return style.Render(text)
}
