// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"sort"

	"github.com/jeranaias/parley-tui/internal/protocol"
)

// View is a snapshot of one channel. It shares no memory with the State.
type View struct {
	Channel  int
	Joined   bool
	Messages []*protocol.Envelope
	Members  []protocol.Member
	Typing   []string
	Mute     MuteStatus
	// Reactions holds tallies for the messages in Messages, keyed by id.
	Reactions map[string]map[string]int
}

// visibleIn reports whether env belongs in the log of channel. Errors are
// shown everywhere; the other logged kinds only in their own channel.
func visibleIn(env *protocol.Envelope, channel int) bool {
	switch env.Type {
	case protocol.TypeError:
		return true
	case protocol.TypeChatSend, protocol.TypeChannelJoin, protocol.TypeChannelLeave,
		protocol.TypeChatKick, protocol.TypeChatMute, protocol.TypeChatUnmute:
		id, ok := env.ChannelID()
		return ok && id == channel
	default:
		return false
	}
}

// Messages returns the log entries visible in channel, oldest first.
func (s *State) Messages(channel int) []*protocol.Envelope {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.messagesLocked(channel)
}

func (s *State) messagesLocked(channel int) []*protocol.Envelope {
	var out []*protocol.Envelope
	for _, env := range s.entries {
		if visibleIn(env, channel) {
			out = append(out, env)
		}
	}
	return out
}

// View returns a snapshot of channel.
func (s *State) View(channel int) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := s.messagesLocked(channel)
	v := View{
		Channel:   channel,
		Joined:    s.joined[channel],
		Messages:  msgs,
		Members:   append([]protocol.Member(nil), s.members[channel]...),
		Typing:    s.typingLocked(channel),
		Mute:      s.muteStatusLocked(),
		Reactions: make(map[string]map[string]int),
	}
	for _, env := range msgs {
		if tally, ok := s.reactions[env.ID]; ok && env.ID != "" {
			v.Reactions[env.ID] = copyTally(tally)
		}
	}
	return v
}

func copyTally(src map[string]int) map[string]int {
	if src == nil {
		return nil
	}
	out := make(map[string]int, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func sortedInts(set map[int]bool) []int {
	out := make([]int, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
