// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func values(cs []Completion) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Value
	}
	return out
}

func TestComplete_CommandNames(t *testing.T) {
	c := NewCompleter(NewRegistry())

	got := values(c.Complete("/mu", 3))
	assert.Equal(t, []string{"/mute"}, got)

	got = values(c.Complete("/U", 2))
	assert.Contains(t, got, "/unmute")
	assert.Contains(t, got, "/um")

	all := c.Complete("/", 1)
	assert.GreaterOrEqual(t, len(all), 7)

	assert.Nil(t, c.Complete("hello", 5))
}

func TestComplete_FilteredByArity(t *testing.T) {
	c := NewCompleter(NewRegistry())

	got := values(c.CommandsFor("/", 2))
	assert.Contains(t, got, "/kick")
	assert.Contains(t, got, "/mute")
	assert.NotContains(t, got, "/unmute")
	assert.NotContains(t, got, "/join")
	assert.NotContains(t, got, "/quit")
}

func TestComplete_MemberArgument(t *testing.T) {
	c := NewCompleter(NewRegistry())
	c.MembersFn = func() []string { return []string{"alice", "albert", "bob"} }

	got := values(c.Complete("/kick al", 8))
	assert.ElementsMatch(t, []string{"alice", "albert"}, got)

	got = values(c.Complete("/mute ", 6))
	assert.ElementsMatch(t, []string{"alice", "albert", "bob"}, got)

	// unmute takes one argument; nothing to offer for a second.
	assert.Nil(t, c.Complete("/unmute bob ", 12))
}

func TestComplete_ChannelArgument(t *testing.T) {
	c := NewCompleter(NewRegistry())
	c.ChannelsFn = func() []int { return []int{1, 12, 3} }

	got := values(c.Complete("/leave 1", 8))
	assert.ElementsMatch(t, []string{"1", "12"}, got)
}

func TestComplete_CursorInMiddle(t *testing.T) {
	c := NewCompleter(NewRegistry())
	got := values(c.Complete("/kic bob", 4))
	assert.Equal(t, []string{"/kick"}, got)
}

func TestCompletionState_Navigation(t *testing.T) {
	cs := NewCompletionState()
	require.Nil(t, cs.GetSelected())

	cs.Update("/kick al", []Completion{{Value: "alice"}, {Value: "albert"}})
	assert.True(t, cs.Visible)
	assert.Equal(t, "/kick alice ", cs.Accept())

	cs.Next()
	assert.Equal(t, "/kick albert ", cs.Accept())
	cs.Next()
	assert.Equal(t, "alice", cs.GetSelected().Value)
	cs.Prev()
	assert.Equal(t, "albert", cs.GetSelected().Value)

	cs.Update("/mu", []Completion{{Value: "/mute"}})
	assert.Equal(t, "/mute ", cs.Accept())

	cs.Clear()
	assert.False(t, cs.Visible)
	assert.Equal(t, "", cs.Accept())
}
