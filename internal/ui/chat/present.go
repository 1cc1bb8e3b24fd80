// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/jeranaias/parley-tui/internal/protocol"
	"github.com/jeranaias/parley-tui/internal/registry"
	"github.com/jeranaias/parley-tui/internal/ui/styles"
	"github.com/jeranaias/parley-tui/internal/util"
)

// TimestampFormat is the wall-clock layout of the log gutter.
const TimestampFormat = "15:04:05"

// unknownUser stands in for a missing user reference.
const unknownUser = "someone"

// Presenters returns the render functions for every logged message type.
func Presenters(theme *styles.Theme, showTimestamps bool) map[protocol.Type]registry.PresentFunc {
	p := presenter{theme: theme, timestamps: showTimestamps}
	return map[protocol.Type]registry.PresentFunc{
		protocol.TypeChatSend:     p.chat,
		protocol.TypeChannelJoin:  p.join,
		protocol.TypeChannelLeave: p.leave,
		protocol.TypeChatKick:     p.kick,
		protocol.TypeChatMute:     p.mute,
		protocol.TypeChatUnmute:   p.unmute,
		protocol.TypeError:        p.failure,
	}
}

type presenter struct {
	theme      *styles.Theme
	timestamps bool
}

func (p presenter) gutter(env *protocol.Envelope) string {
	if !p.timestamps || env.Timestamp.IsZero() {
		return ""
	}
	return p.theme.Timestamp.Render(env.Timestamp.Local().Format(TimestampFormat)) + " "
}

func (p presenter) nick(ref *protocol.UserRef) string {
	name := ref.Name()
	if name == "" {
		return p.theme.Notice.Render(unknownUser)
	}
	return p.theme.Nick(util.SanitizeLine(name))
}

func (p presenter) chat(env *protocol.Envelope) string {
	msg, ok := env.Payload.(protocol.ChatSend)
	if !ok {
		return ""
	}
	return p.gutter(env) + p.nick(msg.Sender) + " " +
		p.theme.Content.Render(util.SanitizeLine(msg.Content))
}

func (p presenter) join(env *protocol.Envelope) string {
	msg, ok := env.Payload.(protocol.ChannelJoin)
	if !ok {
		return ""
	}
	return p.gutter(env) + "-> " + p.nick(msg.User) +
		p.theme.Notice.Render(fmt.Sprintf(" joined #%d", msg.ChannelID))
}

func (p presenter) leave(env *protocol.Envelope) string {
	msg, ok := env.Payload.(protocol.ChannelLeave)
	if !ok {
		return ""
	}
	return p.gutter(env) + "<- " + p.nick(msg.User) +
		p.theme.Notice.Render(fmt.Sprintf(" left #%d", msg.ChannelID))
}

func (p presenter) kick(env *protocol.Envelope) string {
	msg, ok := env.Payload.(protocol.ChatKick)
	if !ok {
		return ""
	}
	return p.moderation(env, msg.Moderation, "was kicked")
}

func (p presenter) mute(env *protocol.Envelope) string {
	msg, ok := env.Payload.(protocol.ChatMute)
	if !ok {
		return ""
	}
	verb := "was muted indefinitely"
	if d := msg.Duration; d != nil && *d > 0 {
		verb = "was muted for " + FormatSeconds(*d)
	}
	return p.moderation(env, msg.Moderation, verb)
}

func (p presenter) unmute(env *protocol.Envelope) string {
	msg, ok := env.Payload.(protocol.ChatUnmute)
	if !ok {
		return ""
	}
	return p.moderation(env, msg.Moderation, "was unmuted")
}

func (p presenter) moderation(env *protocol.Envelope, m protocol.Moderation, verb string) string {
	var b strings.Builder
	b.WriteString(util.SanitizeLine(m.Target))
	b.WriteString(" ")
	b.WriteString(verb)
	if m.Reason != "" {
		b.WriteString(" (")
		b.WriteString(util.SanitizeLine(m.Reason))
		b.WriteString(")")
	}
	return p.gutter(env) + "** " + p.theme.Moderation.Render(b.String())
}

func (p presenter) failure(env *protocol.Envelope) string {
	msg, ok := env.Payload.(protocol.Error)
	if !ok {
		return ""
	}
	return p.gutter(env) + p.theme.Error.Render("error: "+util.SanitizeLine(msg.Detail))
}

// FormatSeconds renders a duration in seconds as 45s, 3m05s or 1h02m.
func FormatSeconds(secs int) string {
	switch {
	case secs < 60:
		return fmt.Sprintf("%ds", secs)
	case secs < 3600:
		return fmt.Sprintf("%dm%02ds", secs/60, secs%60)
	default:
		return fmt.Sprintf("%dh%02dm", secs/3600, (secs%3600)/60)
	}
}
