// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session folds the inbound envelope stream into the derived state a
// chat view needs.
//
// # Key Types
//
//   - State: the reducer. Apply is called once per inbound envelope, in
//     delivery order, and returns false for envelopes already seen.
//   - View: an immutable snapshot of one channel for rendering.
//   - TypingThrottle: rate limits outbound typing signals per channel.
//
// # Derived State
//
// The reducer tracks the joined-channel set, per-channel rosters, typing
// indicators with expiry, reaction tallies, the local mute window and a
// bounded message log. Typing entries and the mute countdown are driven by
// timers; every mutation, timer-driven or not, happens under the State
// mutex and is followed by the OnChange callback.
//
// # Usage
//
//	st, err := session.New(session.DefaultConfig(), ident, log)
//	st.OnChange(func() { program.Send(refreshMsg{}) })
//	st.Apply(env)
//	v := st.View(channelID)
package session
