// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// TypingThrottle decides when composer activity should produce an outbound
// typing signal: at most once per window per channel, and only for
// non-empty text that is not a slash command.
type TypingThrottle struct {
	window time.Duration
	now    func() time.Time

	mu       sync.Mutex
	limiters map[int]*rate.Limiter
}

// NewTypingThrottle creates a throttle with the given window. now may be nil.
func NewTypingThrottle(window time.Duration, now func() time.Time) *TypingThrottle {
	if window <= 0 {
		window = DefaultConfig().TypingThrottle
	}
	if now == nil {
		now = time.Now
	}
	return &TypingThrottle{
		window:   window,
		now:      now,
		limiters: make(map[int]*rate.Limiter),
	}
}

// Allow reports whether a typing signal should be sent for channel given the
// current composer text. A true result consumes the channel's window.
func (t *TypingThrottle) Allow(channel int, composer string) bool {
	text := strings.TrimSpace(composer)
	if text == "" || strings.HasPrefix(text, "/") {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	lim, ok := t.limiters[channel]
	if !ok {
		lim = rate.NewLimiter(rate.Every(t.window), 1)
		t.limiters[channel] = lim
	}
	return lim.AllowN(t.now(), 1)
}
