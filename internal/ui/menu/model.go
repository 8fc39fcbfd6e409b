// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package menu provides the model selection screen shown before a chat.
//
// The menu fetches the model catalog, lists one row per model plus a
// trailing Exit row, and reports what the user picked. An empty catalog or
// a failed fetch can be retried with any key.
package menu

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ollamachat/internal/ollama"
	"github.com/jeranaias/ollamachat/internal/ui/styles"
	"github.com/jeranaias/ollamachat/internal/util"
)

// loadTimeout bounds one catalog fetch.
const loadTimeout = 10 * time.Second

const (
	titleText    = "OLLAMA CHAT"
	subtitleText = "Select model to chat with:"
	exitText     = "Exit"
	emptyText    = "No models found. Make sure Ollama is running."
	retryText    = "Press any key to retry..."
)

// Result is what the user chose.
type Result struct {
	Model string
	Exit  bool
}

type phase int

const (
	phaseLoading phase = iota
	phaseReady
	phaseEmpty
	phaseError
)

// modelsLoadedMsg carries the outcome of a catalog fetch.
type modelsLoadedMsg struct {
	names []string
	err   error
}

// Model is the Bubble Tea model for the menu.
type Model struct {
	ctx     context.Context
	backend ollama.Backend
	theme   *styles.Theme
	keys    KeyMap
	spinner spinner.Model

	phase  phase
	models []string
	err    error

	// cursor indexes models; len(models) is the Exit row
	cursor int
	width  int

	result Result
	done   bool
}

// New creates a menu over backend.
func New(ctx context.Context, backend ollama.Backend, theme *styles.Theme) Model {
	if theme == nil {
		theme = styles.NewTheme()
	}
	s := spinner.New()
	s.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}
	s.Style = theme.Spinner

	return Model{
		ctx:     ctx,
		backend: backend,
		theme:   theme,
		keys:    DefaultKeyMap(),
		spinner: s,
		phase:   phaseLoading,
	}
}

// Result returns the user's choice. It is meaningful once Done reports true.
func (m Model) Result() Result {
	return m.result
}

// Done reports whether the user has chosen.
func (m Model) Done() bool {
	return m.done
}

// Init starts the spinner and the first catalog fetch.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadModels())
}

func (m Model) loadModels() tea.Cmd {
	ctx, backend := m.ctx, m.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, loadTimeout)
		defer cancel()
		models, err := backend.ListModels(ctx)
		return modelsLoadedMsg{names: ollama.Names(models), err: err}
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case modelsLoadedMsg:
		m.models = msg.names
		m.err = msg.err
		m.cursor = 0
		switch {
		case msg.err != nil:
			m.phase = phaseError
		case len(msg.names) == 0:
			m.phase = phaseEmpty
		default:
			m.phase = phaseReady
		}
		return m, nil

	case spinner.TickMsg:
		if m.phase != phaseLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m.finish(Result{Exit: true})
	}

	switch m.phase {
	case phaseLoading:
		return m, nil

	case phaseEmpty, phaseError:
		m.phase = phaseLoading
		m.err = nil
		return m, tea.Batch(m.spinner.Tick, m.loadModels())
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.models) {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Select):
		if m.cursor == len(m.models) {
			return m.finish(Result{Exit: true})
		}
		return m.finish(Result{Model: m.models[m.cursor]})
	}
	return m, nil
}

func (m Model) finish(r Result) (tea.Model, tea.Cmd) {
	m.result = r
	m.done = true
	return m, tea.Quit
}

// View renders the menu.
func (m Model) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.theme.Title.Render(titleText))
	b.WriteString("\n")
	b.WriteString(m.theme.Subtitle.Render(subtitleText))
	b.WriteString("\n\n")

	switch m.phase {
	case phaseLoading:
		b.WriteString(m.spinner.View() + " " + m.theme.Hint.Render("Loading models..."))
		b.WriteString("\n")

	case phaseEmpty:
		b.WriteString(m.theme.WarningStyle.Render(emptyText))
		b.WriteString("\n\n")
		b.WriteString(m.theme.Hint.Render(retryText))
		b.WriteString("\n")

	case phaseError:
		b.WriteString(m.theme.ErrorStyle.Render(fmt.Sprintf("%s %v", styles.StatusIndicators.Error, m.err)))
		b.WriteString("\n\n")
		b.WriteString(m.theme.Hint.Render(retryText))
		b.WriteString("\n")

	case phaseReady:
		for i, name := range m.models {
			b.WriteString(m.renderRow(i, name, m.theme.MenuItem))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(m.renderRow(len(m.models), exitText, m.theme.MenuExit))
		b.WriteString("\n\n")
		b.WriteString(m.theme.Hint.Render("up/down: move  enter: select  q: quit"))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderRow(i int, label string, style lipgloss.Style) string {
	marker := styles.StatusIndicators.Unselected
	if i == m.cursor {
		marker = styles.StatusIndicators.Selected
		style = m.theme.MenuItemSelected
	}
	if m.width > 0 {
		label = util.TruncateWidth(label, m.width-len(marker)-1)
	}
	return marker + " " + style.Render(label)
}
