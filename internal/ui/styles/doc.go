// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling for the parley TUI.
//
// All colors are Lip Gloss AdaptiveColors, resolved against the terminal
// background or the theme named in the config. Usernames get a stable
// color from NickPalette, and connection status always carries an ASCII
// indicator next to its color.
package styles
