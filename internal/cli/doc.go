// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the non-interactive
// commands for parley.
//
// # Key Types
//
//   - Command: Enumeration of the available commands
//   - Args: Parsed command-line arguments with global and command flags
//   - ArgParser: Flag and positional splitting for subcommands
//
// # Usage
//
//	cmd, args := cli.Parse()
//	switch cmd {
//	case cli.CmdSend:
//	    err = cli.HandleSend(ctx, args)
//	case cli.CmdConfig:
//	    err = cli.HandleConfig(args)
//	}
//
// The TUI itself lives in internal/ui/chat; main starts it for CmdTUI.
package cli
