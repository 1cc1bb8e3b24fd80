// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme holds the pre-built styles of the chat view.
type Theme struct {
	Width  int
	Height int

	// Header
	Header       lipgloss.Style
	Channel      lipgloss.Style
	StatusOnline lipgloss.Style
	StatusBusy   lipgloss.Style
	StatusDown   lipgloss.Style
	Self         lipgloss.Style

	// Message log
	Timestamp  lipgloss.Style
	Content    lipgloss.Style
	Notice     lipgloss.Style
	Moderation lipgloss.Style
	Error      lipgloss.Style
	Reaction   lipgloss.Style

	// Footer
	Typing     lipgloss.Style
	MuteBanner lipgloss.Style
	Prompt     lipgloss.Style
	Hint       lipgloss.Style
	Completion lipgloss.Style
	Selected   lipgloss.Style
	Members    lipgloss.Style
	Separator  lipgloss.Style
}

// NewTheme builds the theme. name is "dark" or "light"; anything else
// leaves background detection to lipgloss.
func NewTheme(name string) *Theme {
	switch strings.ToLower(name) {
	case "dark":
		lipgloss.SetHasDarkBackground(true)
	case "light":
		lipgloss.SetHasDarkBackground(false)
	}
	t := &Theme{}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextPrimary).
		Padding(0, 1)
	t.Channel = lipgloss.NewStyle().Foreground(Purple).Bold(true)
	t.StatusOnline = lipgloss.NewStyle().Foreground(Emerald)
	t.StatusBusy = lipgloss.NewStyle().Foreground(Amber)
	t.StatusDown = lipgloss.NewStyle().Foreground(Rose).Bold(true)
	t.Self = lipgloss.NewStyle().Foreground(Cyan)

	t.Timestamp = lipgloss.NewStyle().Foreground(TextMuted)
	t.Content = lipgloss.NewStyle().Foreground(TextPrimary)
	t.Notice = lipgloss.NewStyle().Foreground(TextSecondary).Italic(true)
	t.Moderation = lipgloss.NewStyle().Foreground(Amber)
	t.Error = lipgloss.NewStyle().Foreground(Rose).Bold(true)
	t.Reaction = lipgloss.NewStyle().Foreground(TextSecondary)

	t.Typing = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)
	t.MuteBanner = lipgloss.NewStyle().
		Background(Amber).
		Foreground(TextInverse).
		Bold(true).
		Padding(0, 1)
	t.Prompt = lipgloss.NewStyle().Foreground(Cyan).Bold(true)
	t.Hint = lipgloss.NewStyle().Foreground(TextMuted)
	t.Completion = lipgloss.NewStyle().Foreground(TextSecondary)
	t.Selected = lipgloss.NewStyle().Foreground(TextInverse).Background(Cyan)
	t.Members = lipgloss.NewStyle().
		Foreground(TextSecondary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(Overlay).
		PaddingLeft(1)
	t.Separator = lipgloss.NewStyle().Foreground(Overlay)
}

// Nick renders a username in its palette color.
func (t *Theme) Nick(username string) string {
	return lipgloss.NewStyle().Foreground(NickColor(username)).Bold(true).Render(username)
}

// SetSize records the terminal size.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// LayoutMode selects how much chrome fits on screen.
type LayoutMode int

const (
	// LayoutCompact hides the member list.
	LayoutCompact LayoutMode = iota
	// LayoutFull shows the member list beside the log.
	LayoutFull
)

// FullLayoutMinWidth is the narrowest terminal that shows the member list.
const FullLayoutMinWidth = 90

// GetLayoutMode returns the layout for the current width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width >= FullLayoutMinWidth {
		return LayoutFull
	}
	return LayoutCompact
}
