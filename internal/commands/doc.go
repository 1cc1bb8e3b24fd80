// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands turns slash commands typed in the composer into
// outbound protocol payloads.
//
// # Key Types
//
//   - Registry: the fixed set of supported commands, looked up by name or
//     alias without regard to case
//   - Parser: splits "/name arg arg..." on whitespace
//   - Interpreter: parses, validates and builds the payload for a command
//   - Completer: tab completion for command names and arguments
//
// # Commands
//
//	/kick <target> [reason...]
//	/mute <target> [seconds] [reason...]
//	/unmute <target>
//	/join <channel_id>
//	/leave [channel_id]
//	/help, /quit
//
// The argument right after a mute target is taken as the duration only when
// it is an integer; every remaining word is the reason. Commands never write
// to the message log: whatever the server broadcasts back is what shows up.
//
// # Usage
//
//	interp := commands.NewInterpreter(commands.NewRegistry())
//	res, err := interp.Interpret("/mute bob 30 being rude", commands.Context{Channel: 1})
//	if err != nil {
//	    // *CommandError or *ValidationError: show it locally, send nothing
//	}
//	manager.Send(res.Payload)
package commands
