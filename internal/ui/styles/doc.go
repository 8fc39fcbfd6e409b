// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for ollamachat.

All colors use Lip Gloss AdaptiveColor for automatic light/dark terminal
detection.

# Color System (colors.go)

  - Purple - assistant label and menu selection
  - Cyan - titles and the user prompt
  - Emerald - success states
  - Amber - warnings and cancelled turns
  - Rose - errors
  - TextMuted - reasoning ("thinking") text and hints

StatusIndicators carry the ASCII markers printed next to colored text
([Error], [Cancelled], [x], ...), so meaning never depends on color alone.

# Theme System (theme.go)

	theme := styles.NewTheme()
	fmt.Println(theme.Title.Render("OLLAMA CHAT"))
	fmt.Print(theme.Thinking.Render(fragment.Text))

NewThemeWithProfile builds a theme for a fixed termenv profile, which tests
use to get deterministic output.
*/
package styles
