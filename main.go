// ollamachat - A terminal chat client for a local Ollama server.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/jeranaias/ollamachat/internal/cli"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes one command and returns the process exit code.
func run(argv []string) int {
	cmd, args := cli.Parse(argv)

	err := dispatch(cmd, args)
	if err == nil {
		return cli.ExitSuccess
	}
	if !errors.Is(err, cli.ErrCancelled) {
		cli.DisplayError(os.Stderr, err)
	}
	return cli.GetExitCode(err)
}

func dispatch(cmd cli.Command, args cli.Args) error {
	// Commands that need no backend
	switch cmd {
	case cli.CmdHelp:
		return cli.HandleHelp(os.Stdout, args)
	case cli.CmdVersion:
		return cli.HandleVersion(os.Stdout, args.JSON)
	case cli.CmdConfig:
		return cli.HandleConfig(cli.NewConfigApp(args), args)
	}

	app, err := cli.NewApp(args)
	if err != nil {
		return err
	}
	defer app.Close()

	switch cmd {
	case cli.CmdAsk, cli.CmdModels:
		// Ctrl+C ends the reply cleanly; the handler reports it.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if cmd == cli.CmdAsk {
			return cli.HandleAsk(ctx, app, args)
		}
		return cli.HandleModels(ctx, app, args)

	default:
		// The chat loop owns Ctrl+C per turn; only SIGTERM ends the session.
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
		defer stop()
		return cli.RunInteractive(ctx, app, cmd == cli.CmdMenu)
	}
}
