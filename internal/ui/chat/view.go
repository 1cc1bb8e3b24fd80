// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/parley-tui/internal/transport"
	"github.com/jeranaias/parley-tui/internal/ui/styles"
	"github.com/jeranaias/parley-tui/internal/util"
)

// View renders the chat view.
func (m Model) View() string {
	if m.width == 0 {
		return "Starting parley..."
	}

	var body string
	if m.showHelp {
		body = lipgloss.NewStyle().
			Width(m.width).
			Height(m.viewport.Height).
			Render(m.renderHelp())
	} else {
		body = m.viewport.View()
		if m.showMembers() {
			body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.renderMembers())
		}
	}

	parts := []string{m.renderHeader(), body}
	parts = append(parts, m.footerLines()...)
	parts = append(parts, m.input.View())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// =============================================================================
// HEADER
// =============================================================================

func (m Model) renderHeader() string {
	v := m.view
	var parts []string

	channel := "no channel"
	if v.Channel > 0 {
		channel = fmt.Sprintf("#%d", v.Channel)
	}
	parts = append(parts, m.theme.Channel.Render(channel))
	if v.Channel > 0 && !v.Joined {
		parts = append(parts, m.theme.Hint.Render("(not joined)"))
	}

	parts = append(parts, m.renderStatus(v.Status))
	if v.Status.QueueLen > 0 {
		parts = append(parts, m.theme.Hint.Render(fmt.Sprintf("%d queued", v.Status.QueueLen)))
	}

	if name := v.Identity.Username; name != "" {
		who := "as " + util.SanitizeLine(name)
		if v.Identity.IsGuest {
			who += " (guest)"
		}
		parts = append(parts, m.theme.Self.Render(who))
	}

	return m.theme.Header.Width(m.width).Render(strings.Join(parts, "  "))
}

// StatusText is the plain-text connection label.
func StatusText(st transport.Status) string {
	switch st.State {
	case transport.StateReady:
		return styles.StatusIndicators.Online + " online"
	case transport.StateConnecting, transport.StateOpen:
		return styles.StatusIndicators.Connecting + " connecting"
	case transport.StateReconnecting:
		return fmt.Sprintf("%s reconnecting (attempt %d)", styles.StatusIndicators.Connecting, st.Attempt)
	case transport.StateFailed:
		text := styles.StatusIndicators.Failed + " connection failed"
		if st.Err != nil {
			text += ": " + util.SanitizeLine(st.Err.Error())
		}
		return text
	default:
		return styles.StatusIndicators.Offline + " offline"
	}
}

func (m Model) renderStatus(st transport.Status) string {
	text := StatusText(st)
	switch st.State {
	case transport.StateReady:
		return m.theme.StatusOnline.Render(text)
	case transport.StateFailed, transport.StateDisconnected:
		return m.theme.StatusDown.Render(text)
	default:
		return m.theme.StatusBusy.Render(text)
	}
}

// =============================================================================
// LOG
// =============================================================================

func (m Model) renderLog(width int) string {
	v := m.view
	if len(v.Messages) == 0 {
		if v.Channel > 0 && !v.Joined {
			return m.theme.Hint.Render(fmt.Sprintf("Not in #%d. Use /join %d.", v.Channel, v.Channel))
		}
		return m.theme.Hint.Render("No messages yet.")
	}

	wrap := lipgloss.NewStyle().Width(width)
	lines := make([]string, 0, len(v.Messages))
	for _, env := range v.Messages {
		line, ok := m.client.Registry().Present(env)
		if !ok || line == "" {
			line = m.theme.Hint.Render("[" + string(env.Type) + "]")
		}
		if tally := FormatReactions(v.Reactions[env.ID]); tally != "" {
			line += "\n    " + m.theme.Reaction.Render(tally)
		}
		lines = append(lines, wrap.Render(line))
	}
	return strings.Join(lines, "\n")
}

// FormatReactions renders a tally as "emote count" pairs in emote order,
// skipping zero counts.
func FormatReactions(tally map[string]int) string {
	if len(tally) == 0 {
		return ""
	}
	emotes := make([]string, 0, len(tally))
	for e, n := range tally {
		if n > 0 {
			emotes = append(emotes, e)
		}
	}
	sort.Strings(emotes)
	parts := make([]string, len(emotes))
	for i, e := range emotes {
		parts[i] = fmt.Sprintf("%s %d", util.SanitizeLine(e), tally[e])
	}
	return strings.Join(parts, "  ")
}

// =============================================================================
// MEMBERS
// =============================================================================

func (m Model) renderMembers() string {
	inner := membersWidth - 2
	lines := []string{fmt.Sprintf("Members (%d)", len(m.view.Members))}
	for _, member := range m.view.Members {
		name := util.SanitizeLine(member.Username)
		if member.IsGuest {
			name = "~" + name
		}
		lines = append(lines, util.TruncateWidth(name, inner))
	}
	if limit := m.viewport.Height; len(lines) > limit {
		lines = lines[:limit]
	}
	return m.theme.Members.
		Width(inner).
		Height(m.viewport.Height).
		Render(strings.Join(lines, "\n"))
}

// =============================================================================
// FOOTER
// =============================================================================

// TypingText describes who is composing.
func TypingText(names []string) string {
	clean := make([]string, len(names))
	for i, n := range names {
		clean[i] = util.SanitizeLine(n)
	}
	switch n := len(clean); {
	case n == 0:
		return ""
	case n == 1:
		return clean[0] + " is typing..."
	case n <= 3:
		return strings.Join(clean[:n-1], ", ") + " and " + clean[n-1] + " are typing..."
	default:
		return fmt.Sprintf("%d people are typing...", n)
	}
}

// MuteText is the banner for the local mute window, or "" when not muted.
func MuteText(muted, indefinite bool, remaining int) string {
	switch {
	case !muted:
		return ""
	case indefinite:
		return styles.StatusIndicators.Muted + " You are muted"
	default:
		return fmt.Sprintf("%s You are muted for %s", styles.StatusIndicators.Muted, FormatSeconds(remaining))
	}
}

// footerLines are the rows between the log and the composer.
func (m Model) footerLines() []string {
	var lines []string
	mute := m.view.Mute
	if text := MuteText(mute.Muted, mute.Indefinite, mute.Remaining); text != "" {
		lines = append(lines, m.theme.MuteBanner.Render(text))
	}
	lines = append(lines, m.theme.Typing.Render(util.TruncateWidth(TypingText(m.view.Typing), m.width)))
	if m.notice != "" {
		style := m.theme.Hint
		if m.noticeErr {
			style = m.theme.Error
		}
		lines = append(lines, style.Render(util.TruncateWidth(util.SanitizeLine(m.notice), m.width)))
	}
	if m.completion.Visible {
		lines = append(lines, m.renderCompletions())
	}
	return lines
}

func (m Model) footerHeight() int {
	// composer row plus the rows above it
	return len(m.footerLines()) + 1
}

func (m Model) renderCompletions() string {
	var b strings.Builder
	used := 0
	for i, c := range m.completion.Completions {
		label := c.Display
		if label == "" {
			label = c.Value
		}
		w := util.StringWidth(label) + 2
		if used+w > m.width {
			break
		}
		used += w
		if i == m.completion.Selected {
			b.WriteString(m.theme.Selected.Render(" " + label + " "))
		} else {
			b.WriteString(m.theme.Completion.Render(" " + label + " "))
		}
	}
	return b.String()
}

// =============================================================================
// HELP
// =============================================================================

func (m Model) renderHelp() string {
	var b strings.Builder
	b.WriteString(m.theme.Channel.Render("Keys"))
	b.WriteString("\n")
	for _, group := range m.keys.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			fmt.Fprintf(&b, "  %-12s %s\n", h.Key, h.Desc)
		}
	}

	byCategory := m.client.Commands().ByCategory()
	categories := make([]string, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	for _, cat := range categories {
		b.WriteString("\n")
		b.WriteString(m.theme.Channel.Render(cat))
		b.WriteString("\n")
		for _, cmd := range byCategory[cat] {
			fmt.Fprintf(&b, "  %-32s %s\n", cmd.Usage, cmd.Description)
		}
	}
	b.WriteString("\n")
	b.WriteString(m.theme.Hint.Render("Esc or F1 to close"))
	return b.String()
}
