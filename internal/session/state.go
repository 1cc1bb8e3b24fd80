// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/parley-tui/internal/logging"
	"github.com/jeranaias/parley-tui/internal/protocol"
)

// =============================================================================
// CONFIGURATION
// =============================================================================

// Config holds reducer settings.
type Config struct {
	// TypingTimeout is how long a typing indicator lives without a refresh.
	TypingTimeout time.Duration

	// TypingThrottle is the minimum gap between outbound typing signals
	// for one channel.
	TypingThrottle time.Duration

	// MuteTick is the countdown interval while a timed mute is active.
	MuteTick time.Duration

	// DedupCapacity bounds the number of remembered envelope identities.
	DedupCapacity int

	// MaxLogEntries bounds the message log. Zero keeps everything.
	MaxLogEntries int
}

// DefaultConfig returns the default reducer configuration.
func DefaultConfig() Config {
	return Config{
		TypingTimeout:  10 * time.Second,
		TypingThrottle: 8 * time.Second,
		MuteTick:       100 * time.Millisecond,
		DedupCapacity:  4096,
		MaxLogEntries:  1000,
	}
}

// Identity answers whether a username refers to the local user.
type Identity interface {
	IsSelf(username string) bool
}

// =============================================================================
// STATE
// =============================================================================

// State is the session reducer. It is safe for concurrent use.
type State struct {
	cfg   Config
	ident Identity
	log   *zap.Logger
	now   func() time.Time

	mu        sync.Mutex
	ledger    *ledger
	joined    map[int]bool
	members   map[int][]protocol.Member
	typing    map[typingKey]*typingEntry
	reactions map[string]map[string]int
	mute      muteState
	muteStop  chan struct{}
	entries   []*protocol.Envelope
	onChange  func()
	closed    bool
}

// Option customizes a State.
type Option func(*State)

// WithClock overrides the time source used for typing and mute bookkeeping.
func WithClock(now func() time.Time) Option {
	return func(s *State) { s.now = now }
}

// New creates an empty reducer. ident may be nil, in which case no envelope
// is treated as addressed to the local user.
func New(cfg Config, ident Identity, log *zap.Logger, opts ...Option) (*State, error) {
	def := DefaultConfig()
	if cfg.TypingTimeout <= 0 {
		cfg.TypingTimeout = def.TypingTimeout
	}
	if cfg.MuteTick <= 0 {
		cfg.MuteTick = def.MuteTick
	}
	if cfg.DedupCapacity <= 0 {
		cfg.DedupCapacity = def.DedupCapacity
	}
	l, err := newLedger(cfg.DedupCapacity)
	if err != nil {
		return nil, err
	}
	s := &State{
		cfg:       cfg,
		ident:     ident,
		log:       logging.OrNop(log).Named("session"),
		now:       time.Now,
		ledger:    l,
		joined:    make(map[int]bool),
		members:   make(map[int][]protocol.Member),
		typing:    make(map[typingKey]*typingEntry),
		reactions: make(map[string]map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// OnChange sets the callback invoked after every state change. It is called
// without the State lock held.
func (s *State) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

func (s *State) changed() {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Close stops every timer. The State must not be used afterwards.
func (s *State) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for key, e := range s.typing {
		e.timer.Stop()
		delete(s.typing, key)
	}
	s.stopMuteTickLocked()
}

func (s *State) isSelf(username string) bool {
	return username != "" && s.ident != nil && s.ident.IsSelf(username)
}

// =============================================================================
// REDUCER
// =============================================================================

// Apply folds env into the state. It returns false when env was already
// processed.
func (s *State) Apply(env *protocol.Envelope) bool {
	if env == nil || env.Payload == nil {
		return false
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	if !s.ledger.observe(env) {
		s.mu.Unlock()
		s.log.Debug("duplicate envelope ignored", zap.String("type", string(env.Type)), zap.String("id", env.ID))
		return false
	}
	s.reduceLocked(env)
	s.mu.Unlock()

	s.changed()
	return true
}

func (s *State) reduceLocked(env *protocol.Envelope) {
	switch p := env.Payload.(type) {
	case protocol.ChannelMembers:
		members := make([]protocol.Member, len(p.Members))
		copy(members, p.Members)
		s.members[p.ChannelID] = members

	case protocol.ChatSend:
		if name := p.Sender.Name(); name != "" {
			s.clearTypingLocked(typingKey{channel: p.ChannelID, user: name})
		}
		s.appendLocked(env)

	case protocol.ReactAdd:
		s.reactLocked(p.Reaction, +1)

	case protocol.ReactRemove:
		s.reactLocked(p.Reaction, -1)

	case protocol.ChatTyping:
		name := p.User.Name()
		if name == "" || s.isSelf(name) {
			return
		}
		s.refreshTypingLocked(typingKey{channel: p.ChannelID, user: name})

	case protocol.ChannelJoin:
		if s.isSelf(p.User.Name()) {
			s.joined[p.ChannelID] = true
		}
		s.appendLocked(env)

	case protocol.ChannelLeave:
		if s.isSelf(p.User.Name()) {
			s.leaveLocked(p.ChannelID)
		}
		s.appendLocked(env)

	case protocol.ChatKick:
		if s.isSelf(p.Target) {
			s.leaveLocked(p.ChannelID)
			delete(s.members, p.ChannelID)
		}
		s.appendLocked(env)

	case protocol.ChatMute:
		if s.isSelf(p.Target) {
			s.setMuteLocked(p.Duration)
		}
		s.appendLocked(env)

	case protocol.ChatUnmute:
		if s.isSelf(p.Target) {
			s.clearMuteLocked()
		}
		s.appendLocked(env)

	case protocol.Error:
		s.log.Warn("server error", zap.String("detail", p.Detail))
		s.appendLocked(env)

	case protocol.Hello, protocol.ChannelJoinRequest:
		// Handshake and join requests carry no view state.
	}
}

func (s *State) appendLocked(env *protocol.Envelope) {
	s.entries = append(s.entries, env)
	if max := s.cfg.MaxLogEntries; max > 0 && len(s.entries) > max {
		drop := len(s.entries) - max
		for _, old := range s.entries[:drop] {
			if old.ID != "" {
				delete(s.reactions, old.ID)
			}
		}
		s.entries = append([]*protocol.Envelope(nil), s.entries[drop:]...)
	}
}

func (s *State) reactLocked(r protocol.Reaction, delta int) {
	if r.MessageID == "" || r.Emote == "" {
		return
	}
	tally := s.reactions[r.MessageID]
	if tally == nil {
		if delta < 0 {
			return
		}
		tally = make(map[string]int)
		s.reactions[r.MessageID] = tally
	}
	n := tally[r.Emote] + delta
	if n <= 0 {
		delete(tally, r.Emote)
		if len(tally) == 0 {
			delete(s.reactions, r.MessageID)
		}
		return
	}
	tally[r.Emote] = n
}

func (s *State) leaveLocked(channel int) {
	delete(s.joined, channel)
	for key, e := range s.typing {
		if key.channel == channel {
			e.timer.Stop()
			delete(s.typing, key)
		}
	}
}

// =============================================================================
// LOCAL CHANNEL TRACKING
// =============================================================================

// MarkJoined records that the local user entered channel.
func (s *State) MarkJoined(channel int) {
	s.mu.Lock()
	s.joined[channel] = true
	s.mu.Unlock()
	s.changed()
}

// MarkLeft records that the local user left channel.
func (s *State) MarkLeft(channel int) {
	s.mu.Lock()
	s.leaveLocked(channel)
	s.mu.Unlock()
	s.changed()
}

// Joined reports whether the local user is in channel.
func (s *State) Joined(channel int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.joined[channel]
}

// JoinedChannels returns the joined channel ids in ascending order.
func (s *State) JoinedChannels() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedInts(s.joined)
}

// Members returns a copy of the roster for channel.
func (s *State) Members(channel int) []protocol.Member {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]protocol.Member, len(s.members[channel]))
	copy(out, s.members[channel])
	return out
}

// Reactions returns a copy of the tally for a message id.
func (s *State) Reactions(messageID string) map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyTally(s.reactions[messageID])
}

// Stats summarizes the reducer as log fields.
func (s *State) Stats() []zap.Field {
	s.mu.Lock()
	defer s.mu.Unlock()
	return []zap.Field{
		zap.Int("entries", len(s.entries)),
		zap.Int("seen", s.ledger.len()),
		zap.Int("typing", len(s.typing)),
		zap.Int("channels", len(s.joined)),
	}
}
