// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat command handler.
//
// Command: chat
// Short:   Start an interactive chat session
//
// Examples:
//   ollamachat                      Pick a model, then chat
//   ollamachat chat -m llama3       Chat with a specific model
//   ollamachat --sim chat           Chat with the simulator
//
// Interactive Commands (during chat):
//   exit, /quit, /q     Leave the chat (back to the menu)
//   clear, /clear       Clear the screen
//   /model [name]       Show or switch model
//   /thinking           Toggle display of reasoning
//   /stats              Show session statistics
//   /help               Show available commands
//   Ctrl+C              Cancel current reply
//   Ctrl+D              Quit
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/peterh/liner"

	"github.com/jeranaias/ollamachat/internal/config"
	"github.com/jeranaias/ollamachat/internal/ollama"
	"github.com/jeranaias/ollamachat/internal/ui/menu"
	"github.com/jeranaias/ollamachat/internal/ui/styles"
	"github.com/jeranaias/ollamachat/internal/util"
)

const (
	userPrompt     = "You: "
	assistantLabel = "Ollama:"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for interactive chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
	logger      *slog.Logger
}

// NewChatCLI creates a new ChatCLI with input history support.
func NewChatCLI(logger *slog.Logger) *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	historyFile, err := config.HistoryPath()
	if err != nil {
		historyFile = filepath.Join(os.TempDir(), "ollamachat_history")
	}

	cli := &ChatCLI{
		line:        line,
		historyFile: historyFile,
		logger:      logger,
	}
	cli.LoadHistory()
	return cli
}

// LoadHistory loads command history from file.
func (c *ChatCLI) LoadHistory() {
	f, err := os.Open(c.historyFile)
	if err != nil {
		return
	}
	defer f.Close()
	if _, err := c.line.ReadHistory(f); err != nil {
		c.logger.Debug("history not loaded", "path", c.historyFile, "error", err)
	}
}

// ReadInput reads a line of input with the given prompt.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists command history to file with secure permissions.
func (c *ChatCLI) SaveHistory() {
	if err := os.MkdirAll(filepath.Dir(c.historyFile), 0700); err != nil {
		c.logger.Debug("history not saved", "error", err)
		return
	}

	// 0600 - owner read/write only
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		c.logger.Debug("history not saved", "error", err)
		return
	}
	defer f.Close()

	if _, err := c.line.WriteHistory(f); err != nil {
		c.logger.Debug("history not saved", "error", err)
	}
}

// Close saves history and closes the liner.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// SESSION STATE
// =============================================================================

// ChatOutcome tells the caller what to do after a chat session ends.
type ChatOutcome int

const (
	// ChatBackToMenu returns to model selection.
	ChatBackToMenu ChatOutcome = iota
	// ChatQuit ends the program.
	ChatQuit
)

// ChatSession holds the state for an interactive chat session.
type ChatSession struct {
	ID    string
	Model string
	App   *App

	ShowThinking bool
	ShowStats    bool
	Markdown     bool

	// Tracking
	StartTime time.Time
	Turns     int
	Cancelled int
	Failed    int
	Fragments int
	Tokens    int
	Dropped   int

	// Input history handler; created by Run when nil
	InputCLI *ChatCLI

	logger *slog.Logger
}

// NewChatSession creates a new chat session.
func NewChatSession(app *App, model string) *ChatSession {
	id := uuid.NewString()
	return &ChatSession{
		ID:           id,
		Model:        model,
		App:          app,
		ShowThinking: app.Config.UI.ShowThinking,
		ShowStats:    app.Config.UI.ShowStats,
		Markdown:     app.Config.UI.Markdown && isTerminalWriter(app.Out),
		StartTime:    time.Now(),
		logger:       app.Logger.With("session_id", id),
	}
}

// =============================================================================
// CHAT HANDLER
// =============================================================================

// RunInteractive runs model selection and chat. With loop set, leaving a
// chat returns to the menu until the user picks Exit; otherwise the first
// chat to end finishes the command.
func RunInteractive(ctx context.Context, app *App, loop bool) error {
	model := app.Config.DefaultModel
	for {
		if model == "" {
			if err := RequiresTTY("choose a model"); err != nil {
				return err
			}
			res, err := menu.Run(ctx, app.Backend)
			if err != nil {
				return err
			}
			if res.Exit {
				return nil
			}
			model = res.Model
		}

		outcome, err := NewChatSession(app, model).Run(ctx)
		if err != nil {
			return err
		}
		if outcome == ChatQuit || !loop {
			return nil
		}
		model = ""
	}
}

// Run reads and answers prompts until the user leaves.
func (s *ChatSession) Run(ctx context.Context) (ChatOutcome, error) {
	if s.InputCLI == nil {
		s.InputCLI = NewChatCLI(s.logger)
	}
	defer s.InputCLI.Close()

	s.logger.Info("chat started", "model", s.Model)
	defer func() {
		s.logger.Info("chat ended",
			"turns", s.Turns,
			"cancelled", s.Cancelled,
			"failed", s.Failed,
			"duration", time.Since(s.StartTime).Round(time.Millisecond))
	}()

	s.printHeader()
	if s.App.Client != nil {
		if err := s.App.Client.CheckRunning(ctx); err != nil {
			DisplayError(s.App.Out, err)
		}
	}

	for {
		if ctx.Err() != nil {
			return ChatQuit, nil
		}

		input, err := s.InputCLI.ReadInput(userPrompt)
		if err != nil {
			fmt.Fprintln(s.App.Out)
			if errors.Is(err, liner.ErrPromptAborted) {
				// Ctrl+C at an empty prompt leaves the chat
				return ChatBackToMenu, nil
			}
			// EOF (Ctrl+D) or a closed input
			return ChatQuit, nil
		}

		if outcome, done := s.Dispatch(ctx, input); done {
			return outcome, nil
		}
	}
}

// Dispatch handles one line of input. It reports true when the session
// should end.
func (s *ChatSession) Dispatch(ctx context.Context, input string) (ChatOutcome, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return ChatBackToMenu, false
	}

	switch strings.ToLower(input) {
	case "exit", "quit", "/quit", "/q", "/exit":
		return ChatBackToMenu, true
	case "clear", "/clear":
		clearScreen(s.App.Out)
		s.printHeader()
		return ChatBackToMenu, false
	}

	if strings.HasPrefix(input, "/") {
		if err := s.handleSlashCommand(ctx, input); err != nil {
			DisplayError(s.App.Out, err)
		}
		return ChatBackToMenu, false
	}

	// Ctrl+C while a reply streams cancels that reply only.
	turnCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	err := s.RunTurn(turnCtx, input)
	stop()
	if err != nil {
		DisplayError(s.App.Out, err)
	}
	fmt.Fprintln(s.App.Out, RenderSeparator(GetTerminalWidth()))
	return ChatBackToMenu, false
}

// =============================================================================
// MESSAGE PROCESSING
// =============================================================================

// RunTurn sends prompt and streams the reply to the session's output.
// Cancelling ctx ends the reply early without an error.
func (s *ChatSession) RunTurn(ctx context.Context, prompt string) error {
	theme := Theme()
	out := s.App.Out
	s.Turns++

	fmt.Fprintln(out)
	fmt.Fprintln(out, theme.AssistantLabel.Render(assistantLabel))

	stream, err := s.App.Backend.StreamGeneration(ctx, s.Model, prompt)
	if err != nil {
		if ctx.Err() != nil {
			s.Cancelled++
			fmt.Fprintln(out, warningStyle().Render(styles.StatusIndicators.Cancelled))
			return nil
		}
		s.Failed++
		s.logger.Warn("turn failed", "model", s.Model, "error", err)
		return err
	}
	defer stream.Close()

	renderer := NewFragmentRenderer(out, theme, RenderOptions{
		ShowThinking: s.ShowThinking,
		Markdown:     s.Markdown,
		Width:        GetTerminalWidth(),
	})
	err = streamRendered(renderer, stream)

	stats := stream.Stats()
	s.Fragments += stats.Fragments
	s.Tokens += stats.CompletionTokens
	s.Dropped += stream.Dropped()

	if err != nil {
		s.Failed++
		s.logger.Warn("turn failed", "model", s.Model, "stream_id", stream.ID(), "error", err)
		return err
	}

	if ctx.Err() != nil {
		s.Cancelled++
		fmt.Fprintln(out, warningStyle().Render(styles.StatusIndicators.Cancelled))
		s.logger.Info("turn cancelled", "stream_id", stream.ID(), "fragments", stats.Fragments)
		return nil
	}

	if !renderer.Wrote() && renderer.Answer() == "" {
		fmt.Fprintln(out, hintStyle().Render("(no response)"))
	}
	if s.ShowStats && stats.Done {
		printStats(out, stats)
	}
	s.logger.Info("turn complete",
		"model", s.Model,
		"stream_id", stream.ID(),
		"fragments", stats.Fragments,
		"tokens", stats.CompletionTokens,
		"dropped", stream.Dropped(),
		"thinking_open", stream.State().InsideThinking)
	return nil
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

var chatCommands = []string{"/help", "/model", "/thinking", "/stats", "/clear", "/quit"}

// handleSlashCommand processes slash commands other than exit and clear.
func (s *ChatSession) handleSlashCommand(ctx context.Context, cmd string) error {
	parts := strings.Fields(cmd)
	command := strings.ToLower(parts[0])
	args := parts[1:]

	switch command {
	case "/help", "/h", "/?", "/":
		printChatHelp(s.App.Out)
		return nil

	case "/model", "/m":
		return s.handleModelCommand(ctx, args)

	case "/thinking", "/think":
		s.ShowThinking = !s.ShowThinking
		state := "hidden"
		if s.ShowThinking {
			state = "shown"
		}
		fmt.Fprintf(s.App.Out, "%s Reasoning is now %s\n", successStyle().Render("[OK]"), state)
		return nil

	case "/stats", "/status", "/s":
		s.printStats(s.App.Out)
		return nil

	default:
		return &UsageError{
			Message:    fmt.Sprintf("unknown command: %s (type /help for commands)", command),
			Suggestion: suggestFrom(command, chatCommands),
		}
	}
}

// handleModelCommand handles the /model command.
func (s *ChatSession) handleModelCommand(ctx context.Context, args []string) error {
	out := s.App.Out
	if len(args) == 0 {
		fmt.Fprintf(out, "%s Current model: %s\n",
			hintStyle().Render("[Model]"),
			Theme().AssistantLabel.Render(s.Model))
		return nil
	}

	newModel := args[0]

	listCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	models, err := s.App.Backend.ListModels(listCtx)
	if err == nil && !slices.Contains(ollama.Names(models), newModel) {
		// Just warn; the server may still load it
		fmt.Fprintf(out, "%s Model '%s' is not in the catalog, will attempt to use anyway\n",
			warningStyle().Render("[Warning]"),
			newModel)
	}

	s.logger.Info("model switched", "from", s.Model, "to", newModel)
	s.Model = newModel
	fmt.Fprintf(out, "%s Switched to model: %s\n", successStyle().Render("[OK]"), newModel)
	return nil
}

// =============================================================================
// DISPLAY FUNCTIONS
// =============================================================================

// printHeader prints the chat banner.
func (s *ChatSession) printHeader() {
	theme := Theme()
	out := s.App.Out
	fmt.Fprintln(out, theme.Title.Render("OLLAMA CHAT - Model: "+s.Model))
	fmt.Fprintln(out, theme.Hint.Render("Type 'exit' to return to model selection."))
	fmt.Fprintln(out, theme.Hint.Render("Type 'clear' to clear the chat."))
	fmt.Fprintln(out, theme.Hint.Render("Type /help for more commands."))
	fmt.Fprintln(out, RenderSeparator(GetTerminalWidth()))
}

// printChatHelp prints available commands.
func printChatHelp(w io.Writer) {
	theme := Theme()
	fmt.Fprintln(w)
	fmt.Fprintln(w, theme.Title.Render("Available Commands"))
	fmt.Fprintln(w, RenderSeparator(20))

	commands := []struct {
		cmd  string
		desc string
	}{
		{"exit, /quit, /q", "Return to model selection"},
		{"clear, /clear", "Clear the screen"},
		{"/model [name]", "Show or switch model"},
		{"/thinking", "Show or hide reasoning"},
		{"/stats", "Show session statistics"},
		{"/help", "Show this help"},
	}
	for _, c := range commands {
		fmt.Fprintf(w, "  %s  %s\n",
			theme.UserPrompt.Render(util.PadRight(c.cmd, 18)),
			theme.Hint.Render(c.desc))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, theme.Hint.Render("Tip: Ctrl+C cancels the current reply, Ctrl+D quits"))
	fmt.Fprintln(w)
}

// printStats prints session statistics.
func (s *ChatSession) printStats(w io.Writer) {
	theme := Theme()
	label := func(name string) string {
		return theme.Subtitle.Render(util.PadRight(name, 14))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, theme.Title.Render("Session Statistics"))
	fmt.Fprintln(w, RenderSeparator(20))
	fmt.Fprintf(w, "  %s%s\n", label("Session:"), s.ID)
	fmt.Fprintf(w, "  %s%s\n", label("Model:"), s.Model)
	fmt.Fprintf(w, "  %s%s\n", label("Duration:"), formatDurationShort(time.Since(s.StartTime)))
	fmt.Fprintf(w, "  %s%d (%d cancelled, %d failed)\n", label("Turns:"), s.Turns, s.Cancelled, s.Failed)
	fmt.Fprintf(w, "  %s%d\n", label("Fragments:"), s.Fragments)
	fmt.Fprintf(w, "  %s%d\n", label("Tokens:"), s.Tokens)
	if s.Dropped > 0 {
		fmt.Fprintf(w, "  %s%d\n", label("Bad lines:"), s.Dropped)
	}
	fmt.Fprintln(w)
}

// formatDurationShort formats a short duration string.
func formatDurationShort(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		m := int(d.Minutes())
		sec := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, sec)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}
