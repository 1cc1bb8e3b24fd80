// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTypingThrottle_Allow(t *testing.T) {
	tests := []struct {
		name     string
		composer string
		want     bool
	}{
		{"plain text", "hello", true},
		{"empty", "", false},
		{"whitespace", "   ", false},
		{"slash command", "/kick bob", false},
		{"slash after space", "  /mute bob", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := NewTypingThrottle(8*time.Second, nil)
			assert.Equal(t, tt.want, th.Allow(1, tt.composer))
		})
	}
}

func TestTypingThrottle_WindowPerChannel(t *testing.T) {
	clock := newFakeClock()
	th := NewTypingThrottle(8*time.Second, clock.Now)

	assert.True(t, th.Allow(1, "h"))
	assert.False(t, th.Allow(1, "he"))
	assert.True(t, th.Allow(2, "h"), "channels are throttled independently")

	clock.Advance(7 * time.Second)
	assert.False(t, th.Allow(1, "hel"))

	clock.Advance(time.Second)
	assert.True(t, th.Allow(1, "hell"))
	assert.False(t, th.Allow(1, "hello"))
}
