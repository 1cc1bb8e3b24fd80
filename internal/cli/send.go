// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// send.go - One-shot message sending.
//
// Command: send [--channel N] TEXT
// Short:   Connect, join a channel, send one message and exit
//
// Examples:
//   parley send --channel 2 "deploy finished"
//   echo done | xargs parley send -c 1
//   parley send -- -1 is not a channel id

package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/parley-tui/internal/client"
	"github.com/jeranaias/parley-tui/internal/config"
	"github.com/jeranaias/parley-tui/internal/logging"
	"github.com/jeranaias/parley-tui/internal/transport"
)

// HandleSend handles the "send" command.
func HandleSend(ctx context.Context, args Args) error {
	if strings.TrimSpace(args.Text) == "" {
		return errors.New("usage: parley send [--channel N] TEXT")
	}
	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}

	// One-shot commands own no screen, so logs go to stderr, quietly.
	opts := cfg.LogOptions()
	opts.File = logging.Stderr
	if !args.Verbose {
		opts.Level = "warn"
	}
	log, closeLog, err := logging.New(opts)
	if err != nil {
		return err
	}
	defer closeLog()

	return sendOnce(ctx, cfg, log, nil, args.Text)
}

// readyTimeout bounds how long a one-shot send waits for the handshake.
func readyTimeout(cfg *config.Config) time.Duration {
	d := time.Duration(cfg.Server.HandshakeTimeoutSecs+cfg.Server.HelloTimeoutSecs) * time.Second
	if d <= 0 {
		d = 20 * time.Second
	}
	return d
}

// sendOnce connects, waits for the handshake, sends text to the configured
// channel and disconnects. dialer may be nil for the real transport.
func sendOnce(ctx context.Context, cfg *config.Config, log *zap.Logger, dialer transport.Dialer, text string) error {
	if cfg.UI.DefaultChannel < 1 {
		return errors.New("no channel selected (use --channel N)")
	}

	c, err := client.New(client.Options{Config: cfg, Logger: log, Dialer: dialer})
	if err != nil {
		return err
	}
	defer c.Close()

	done := make(chan transport.Status, 1)
	c.OnChange(func() {
		st := c.Status()
		if c.Ready() || st.State == transport.StateFailed {
			select {
			case done <- st:
			default:
			}
		}
	})

	ctx, cancel := context.WithTimeout(ctx, readyTimeout(cfg))
	defer cancel()
	if err := c.Start(ctx); err != nil {
		return err
	}

	select {
	case st := <-done:
		if st.State == transport.StateFailed {
			return fmt.Errorf("could not connect to %s: %v", cfg.Server.URL, st.Err)
		}
	case <-ctx.Done():
		return fmt.Errorf("timed out connecting to %s", cfg.Server.URL)
	}

	if err := c.SendChat(text); err != nil {
		if errors.Is(err, client.ErrMuted) {
			return fmt.Errorf("not sent: %w", err)
		}
		return err
	}
	return nil
}
