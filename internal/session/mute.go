// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"time"

	"go.uber.org/zap"
)

// muteState is the local user's mute window. The zero value is not muted.
type muteState struct {
	active     bool
	indefinite bool
	until      time.Time
	// shown is the last whole-second remainder reported to observers.
	shown int
}

// MuteStatus is the read model of the local mute window.
type MuteStatus struct {
	Muted      bool
	Indefinite bool
	// Remaining is whole seconds left on a timed mute, rounded up.
	Remaining int
}

// setMuteLocked applies a mute of duration seconds. A nil or non-positive
// duration mutes indefinitely.
func (s *State) setMuteLocked(duration *int) {
	s.stopMuteTickLocked()
	if duration == nil || *duration <= 0 {
		s.mute = muteState{active: true, indefinite: true}
		s.log.Info("muted indefinitely")
		return
	}
	d := time.Duration(*duration) * time.Second
	s.mute = muteState{active: true, until: s.now().Add(d)}
	s.mute.shown = s.remainingLocked()
	s.log.Info("muted", zap.Duration("duration", d))
	s.startMuteTickLocked()
}

func (s *State) clearMuteLocked() {
	s.stopMuteTickLocked()
	if s.mute.active {
		s.log.Info("unmuted")
	}
	s.mute = muteState{}
}

func (s *State) startMuteTickLocked() {
	stop := make(chan struct{})
	s.muteStop = stop
	ticker := time.NewTicker(s.cfg.MuteTick)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if !s.muteTick(stop) {
					return
				}
			}
		}
	}()
}

func (s *State) stopMuteTickLocked() {
	if s.muteStop != nil {
		close(s.muteStop)
		s.muteStop = nil
	}
}

// muteTick advances the countdown. It reports whether the ticker should keep
// running.
func (s *State) muteTick(stop chan struct{}) bool {
	s.mu.Lock()
	if s.muteStop != stop || !s.mute.active || s.mute.indefinite {
		s.mu.Unlock()
		return false
	}
	if !s.now().Before(s.mute.until) {
		s.muteStop = nil
		s.mute = muteState{}
		s.mu.Unlock()
		s.log.Info("mute expired")
		s.changed()
		return false
	}
	remaining := s.remainingLocked()
	moved := remaining != s.mute.shown
	s.mute.shown = remaining
	s.mu.Unlock()

	if moved {
		s.changed()
	}
	return true
}

func (s *State) remainingLocked() int {
	if !s.mute.active || s.mute.indefinite {
		return 0
	}
	left := s.mute.until.Sub(s.now())
	if left <= 0 {
		return 0
	}
	return int((left + time.Second - 1) / time.Second)
}

// Mute returns the current mute status.
func (s *State) Mute() MuteStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.muteStatusLocked()
}

func (s *State) muteStatusLocked() MuteStatus {
	if !s.mute.active {
		return MuteStatus{}
	}
	if s.mute.indefinite {
		return MuteStatus{Muted: true, Indefinite: true}
	}
	// A mute past its deadline counts as lifted even if the tick has not
	// fired yet.
	remaining := s.remainingLocked()
	if remaining == 0 {
		return MuteStatus{}
	}
	return MuteStatus{Muted: true, Remaining: remaining}
}

// IsMuted reports whether the local user may not send.
func (s *State) IsMuted() bool {
	return s.Mute().Muted
}
