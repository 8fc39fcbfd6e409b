// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the command handlers for
// ollamachat.
//
// # Key Types
//
//   - Command: Enumeration of the available commands
//   - Args: Parsed global and command-specific flags
//   - App: Configuration, logger, backend and streams shared by handlers
//   - FragmentRenderer: Styles thinking and final fragments as they stream
//   - ChatSession: Interactive chat state and the per-turn loop
//
// # Usage
//
//	cmd, args := cli.Parse(os.Args[1:])
//	app, err := cli.NewApp(args)
//	...
//	switch cmd {
//	case cli.CmdAsk:
//	    err = cli.HandleAsk(ctx, app, args)
//	case cli.CmdMenu:
//	    err = cli.RunInteractive(ctx, app, true)
//	}
//
// # Commands Overview
//
//   - (none): Pick a model from a menu, then chat
//   - chat: Interactive chat session
//   - ask: Single question, streamed
//   - models: List installed models
//   - config: Show and edit configuration
//   - version: Version information
//
// models, config and version accept --json for scripting; ask --json emits
// one fragment object per line.
package cli
