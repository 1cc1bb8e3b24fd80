// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"strconv"
	"strings"

	"github.com/jeranaias/parley-tui/internal/protocol"
)

// =============================================================================
// MODERATION
// =============================================================================

func buildKick(ctx Context, args []string) (protocol.Payload, error) {
	return protocol.ChatKick{Moderation: protocol.Moderation{
		ChannelID: ctx.Channel,
		Target:    args[0],
		Reason:    strings.Join(args[1:], " "),
	}}, nil
}

func buildMute(ctx Context, args []string) (protocol.Payload, error) {
	m := protocol.Moderation{ChannelID: ctx.Channel, Target: args[0]}
	rest := args[1:]
	if len(rest) > 0 {
		if secs, err := strconv.Atoi(rest[0]); err == nil {
			if secs <= 0 {
				return nil, &CommandError{
					Command: "/mute",
					Message: "duration must be a positive number of seconds",
					Usage:   "/mute <target> [seconds] [reason...]",
				}
			}
			m.Duration = &secs
			rest = rest[1:]
		}
	}
	m.Reason = strings.Join(rest, " ")
	return protocol.ChatMute{Moderation: m}, nil
}

func buildUnmute(ctx Context, args []string) (protocol.Payload, error) {
	return protocol.ChatUnmute{Moderation: protocol.Moderation{
		ChannelID: ctx.Channel,
		Target:    args[0],
	}}, nil
}

// =============================================================================
// CHANNELS
// =============================================================================

func buildJoin(_ Context, args []string) (protocol.Payload, error) {
	id, err := ParseChannelID("/join", args[0])
	if err != nil {
		return nil, err
	}
	return protocol.ChannelJoin{ChannelRef: protocol.ChannelRef{ChannelID: id}}, nil
}

func buildLeave(ctx Context, args []string) (protocol.Payload, error) {
	id := ctx.Channel
	if len(args) > 0 {
		var err error
		if id, err = ParseChannelID("/leave", args[0]); err != nil {
			return nil, err
		}
	}
	return protocol.ChannelLeave{ChannelRef: protocol.ChannelRef{ChannelID: id}}, nil
}

// ParseChannelID validates a channel id typed by the user.
func ParseChannelID(command, raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, &ValidationError{
			Command:  command,
			Arg:      "channel_id",
			Message:  "invalid channel id",
			Got:      raw,
			Expected: "a positive integer",
		}
	}
	return id, nil
}
