// parley - A terminal client for realtime chat.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/jeranaias/parley-tui/internal/cli"
	"github.com/jeranaias/parley-tui/internal/client"
	"github.com/jeranaias/parley-tui/internal/logging"
	"github.com/jeranaias/parley-tui/internal/ui/chat"
	"github.com/jeranaias/parley-tui/internal/ui/styles"
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
	cmd, args := cli.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch cmd {
	case cli.CmdTUI:
		err = runTUI(ctx, args)
	case cli.CmdSend:
		err = cli.HandleSend(ctx, args)
	case cli.CmdConfig:
		err = cli.HandleConfig(args)
	case cli.CmdLogin:
		err = cli.HandleLogin(ctx, args)
	case cli.CmdSignup:
		err = cli.HandleSignup(ctx, args)
	case cli.CmdLogout:
		err = cli.HandleLogout(args)
	case cli.CmdWhoami:
		err = cli.HandleWhoami(ctx, args)
	case cli.CmdVersion:
		cli.PrintVersion()
	default:
		cli.PrintUsage()
	}

	if err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runTUI starts the interactive chat view.
func runTUI(ctx context.Context, args cli.Args) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("the chat view needs a terminal; use 'parley send' for scripts")
	}

	cfg, err := cli.LoadConfig(args)
	if err != nil {
		return err
	}

	// The view owns the terminal, so logs go to the file only.
	log, closeLog, err := logging.New(cfg.LogOptions())
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer func() { _ = closeLog() }()

	theme := styles.NewTheme(cfg.UI.Theme)
	c, err := client.New(client.Options{
		Config:     cfg,
		Logger:     log,
		Presenters: chat.Presenters(theme, cfg.UI.ShowTimestamps),
	})
	if err != nil {
		return err
	}
	defer c.Close()

	m := chat.New(c, theme)
	if err := c.Start(ctx); err != nil {
		return err
	}
	log.Info("parley started",
		zap.String("version", Version),
		zap.String("server", cfg.Server.URL),
		zap.Int("channel", cfg.UI.DefaultChannel))

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("run chat view: %w", err)
	}
	return nil
}
