// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/parley-tui/internal/client"
	"github.com/jeranaias/parley-tui/internal/commands"
)

// =============================================================================
// MESSAGES
// =============================================================================

// ChangedMsg reports that the client's session, status or identity changed.
type ChangedMsg struct{}

// SubmitResultMsg carries the outcome of a submitted composer line.
type SubmitResultMsg struct {
	Input  string
	Result commands.Result
	Err    error
}

// composedMsg is returned once a typing signal has been considered.
type composedMsg struct{}

// =============================================================================
// COMMANDS
// =============================================================================

// waitForChange blocks until the client signals a change.
func waitForChange(changes <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-changes
		return ChangedMsg{}
	}
}

// submitCmd sends a composer line off the update loop.
func submitCmd(c *client.Client, input string) tea.Cmd {
	return func() tea.Msg {
		res, err := c.Submit(input)
		return SubmitResultMsg{Input: input, Result: res, Err: err}
	}
}

// composeCmd lets the client decide whether a typing signal is due.
func composeCmd(c *client.Client, text string) tea.Cmd {
	return func() tea.Msg {
		c.Compose(text)
		return composedMsg{}
	}
}
