// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"sort"
	"time"
)

type typingKey struct {
	channel int
	user    string
}

type typingEntry struct {
	since time.Time
	timer *time.Timer
}

// refreshTypingLocked (re)starts the expiry timer for key. The previous
// timer, if any, is stopped first so it cannot clear the fresher entry.
func (s *State) refreshTypingLocked(key typingKey) {
	if old, ok := s.typing[key]; ok {
		old.timer.Stop()
	}
	e := &typingEntry{since: s.now()}
	e.timer = time.AfterFunc(s.cfg.TypingTimeout, func() { s.expireTyping(key, e) })
	s.typing[key] = e
}

func (s *State) clearTypingLocked(key typingKey) {
	if e, ok := s.typing[key]; ok {
		e.timer.Stop()
		delete(s.typing, key)
	}
}

func (s *State) expireTyping(key typingKey, e *typingEntry) {
	s.mu.Lock()
	if s.typing[key] != e {
		// Superseded or already cleared.
		s.mu.Unlock()
		return
	}
	delete(s.typing, key)
	s.mu.Unlock()
	s.changed()
}

// Typing returns the users currently typing in channel, sorted by name.
func (s *State) Typing(channel int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.typingLocked(channel)
}

func (s *State) typingLocked(channel int) []string {
	var users []string
	for key := range s.typing {
		if key.channel == channel {
			users = append(users, key.user)
		}
	}
	sort.Strings(users)
	return users
}
