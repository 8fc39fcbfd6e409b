// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for ollamachat.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styled components shared by the menu and the chat REPL.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Hint     lipgloss.Style

	// ==========================================================================
	// MENU STYLES
	// ==========================================================================

	MenuItem         lipgloss.Style
	MenuItemSelected lipgloss.Style
	MenuExit         lipgloss.Style
	Spinner          lipgloss.Style

	// ==========================================================================
	// CONVERSATION STYLES
	// ==========================================================================

	UserPrompt     lipgloss.Style
	AssistantLabel lipgloss.Style
	Thinking       lipgloss.Style
	Answer         lipgloss.Style
	Separator      lipgloss.Style
	Stats          lipgloss.Style

	// ==========================================================================
	// STATUS STYLES
	// ==========================================================================

	SuccessStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
	WarningStyle lipgloss.Style
}

// NewTheme creates a new theme for the detected terminal.
func NewTheme() *Theme {
	return NewThemeWithProfile(termenv.ColorProfile(), termenv.HasDarkBackground())
}

// NewThemeWithProfile creates a theme for an explicit color profile. With
// termenv.Ascii every style still applies bold/italic attributes but no
// colors, which keeps output readable under NO_COLOR.
func NewThemeWithProfile(profile termenv.Profile, isDark bool) *Theme {
	t := &Theme{
		IsDark:       isDark,
		ColorProfile: profile,
	}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.Title = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.Subtitle = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.Hint = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.MenuItem = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.MenuItemSelected = lipgloss.NewStyle().
		Foreground(Purple).
		Background(SelectionBg).
		Bold(true)

	t.MenuExit = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.Spinner = lipgloss.NewStyle().
		Foreground(Purple)

	t.UserPrompt = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.AssistantLabel = lipgloss.NewStyle().
		Foreground(Purple).
		Bold(true)

	t.Thinking = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.Answer = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.Separator = lipgloss.NewStyle().
		Foreground(Overlay)

	t.Stats = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.SuccessStyle = lipgloss.NewStyle().
		Foreground(Emerald).
		Bold(true)

	t.ErrorStyle = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	t.WarningStyle = lipgloss.NewStyle().
		Foreground(Amber)
}

// Plain reports whether the theme renders without color.
func (t *Theme) Plain() bool {
	return t.ColorProfile == termenv.Ascii
}
