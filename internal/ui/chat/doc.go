// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the Bubble Tea chat view for parley.
//
// The Model renders a client.View: a status header, the message log of the
// active channel with reaction tallies, an optional member list, the typing
// line, a mute countdown and the composer. Every change reported by the
// client arrives as a ChangedMsg, so the view never polls.
//
// # Key Types
//
//   - Model: the tea.Model driving the terminal
//   - KeyMap: key bindings, built by DefaultKeyMap
//
// # Presenters
//
// Presenters returns the per-type render functions registered with the
// client's message registry. They must be handed to client.New because the
// registry is sealed once the client exists.
package chat
