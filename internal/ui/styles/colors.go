// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"hash/fnv"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// ACCENT COLORS
// =============================================================================

// Purple - Channel names, selections
var Purple = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}

// Cyan - Brand color, commands, own messages
var Cyan = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}

// Emerald - Connected and ready
var Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

// =============================================================================
// SEMANTIC COLORS
// =============================================================================

// Rose - Errors, kicks, failed connection
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// Amber - Connecting, mutes, warnings
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// =============================================================================
// SURFACE AND TEXT COLORS
// =============================================================================

// SurfaceDim - Header and footer background
var SurfaceDim = lipgloss.AdaptiveColor{Light: "#F5F5F5", Dark: "#181825"}

// Overlay - Borders, separators
var Overlay = lipgloss.AdaptiveColor{Light: "#E5E5E5", Dark: "#313244"}

// TextPrimary - Message text
var TextPrimary = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"}

// TextSecondary - Labels, join/leave notices
var TextSecondary = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#A6ADC8"}

// TextMuted - Timestamps, typing line, hints
var TextMuted = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6C7086"}

// TextInverse - Text on colored backgrounds
var TextInverse = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}

// =============================================================================
// NICK COLORS
// =============================================================================

// NickPalette colors usernames. A name always maps to the same entry.
var NickPalette = []lipgloss.AdaptiveColor{
	{Light: "#1E66F5", Dark: "#89B4FA"}, // Blue
	{Light: "#40A02B", Dark: "#A6E3A1"}, // Green
	{Light: "#FE640B", Dark: "#FAB387"}, // Peach
	{Light: "#8839EF", Dark: "#CBA6F7"}, // Mauve
	{Light: "#DF8E1D", Dark: "#F9E2AF"}, // Yellow
	{Light: "#04A5E5", Dark: "#89DCEB"}, // Sky
	{Light: "#EA76CB", Dark: "#F5C2E7"}, // Pink
	{Light: "#D20F39", Dark: "#F38BA8"}, // Red
}

// NickColor returns the palette entry for username.
func NickColor(username string) lipgloss.AdaptiveColor {
	h := fnv.New32a()
	_, _ = h.Write([]byte(username))
	return NickPalette[h.Sum32()%uint32(len(NickPalette))]
}

// =============================================================================
// ACCESSIBILITY
// =============================================================================

// StatusIndicatorSet contains text indicators for connection states, so
// status never relies on color alone.
type StatusIndicatorSet struct {
	Online     string
	Connecting string
	Offline    string
	Failed     string
	Muted      string
}

// StatusIndicators are ASCII-only for maximum terminal compatibility.
var StatusIndicators = StatusIndicatorSet{
	Online:     "[*]",
	Connecting: "[~]",
	Offline:    "[ ]",
	Failed:     "[X]",
	Muted:      "[!]",
}
