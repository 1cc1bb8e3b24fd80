// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/parley-tui/internal/client"
	"github.com/jeranaias/parley-tui/internal/commands"
	"github.com/jeranaias/parley-tui/internal/ui/styles"
)

// MaxInputLength caps a composer line.
const MaxInputLength = 2000

// membersWidth is the width of the member list column, border included.
const membersWidth = 24

// =============================================================================
// MODEL
// =============================================================================

// Model is the chat view.
type Model struct {
	client *client.Client
	theme  *styles.Theme
	keys   KeyMap

	input    textinput.Model
	viewport viewport.Model

	// changes is fed by the client's change callback.
	changes chan struct{}

	completion *commands.CompletionState
	view       client.View

	showHelp  bool
	notice    string
	noticeErr bool

	width  int
	height int
}

// New creates a chat view over c and subscribes to its changes. c must not
// have another change subscriber.
func New(c *client.Client, theme *styles.Theme) Model {
	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = "Type a message or /help"
	input.CharLimit = MaxInputLength
	input.PromptStyle = theme.Prompt
	input.Focus()

	changes := make(chan struct{}, 1)
	c.OnChange(func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	})

	return Model{
		client:     c,
		theme:      theme,
		keys:       DefaultKeyMap(),
		input:      input,
		viewport:   viewport.New(0, 0),
		changes:    changes,
		completion: commands.NewCompletionState(),
		view:       c.View(),
	}
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init starts the cursor blink and the change subscription.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForChange(m.changes))
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.theme.SetSize(msg.Width, msg.Height)
		m.refresh()
		return m, nil

	case ChangedMsg:
		m.refresh()
		return m, waitForChange(m.changes)

	case SubmitResultMsg:
		return m.handleSubmitResult(msg)

	case composedMsg:
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil

	case key.Matches(msg, m.keys.Cancel):
		switch {
		case m.showHelp:
			m.showHelp = false
		case m.completion.Visible:
			m.completion.Clear()
		default:
			m.setNotice("", false)
		}
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.Complete):
		m.complete(true)
		return m, nil

	case key.Matches(msg, m.keys.CompletePrev):
		m.complete(false)
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		if m.completion.Visible {
			m.acceptCompletion()
			return m, nil
		}
		return m.submit()

	case key.Matches(msg, m.keys.NextChannel):
		m.cycleChannel(1)
		return m, nil

	case key.Matches(msg, m.keys.PrevChannel):
		m.cycleChannel(-1)
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.viewport.LineUp(1)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.viewport.LineDown(1)
		return m, nil
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
		return m, nil
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
		return m, nil
	case key.Matches(msg, m.keys.Home):
		m.viewport.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.End):
		m.viewport.GotoBottom()
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	after := m.input.Value()
	if after == before {
		return m, cmd
	}
	if m.completion.Visible {
		m.completion.Clear()
		m.refresh()
	}
	if after == "" || commands.IsCommand(after) {
		return m, cmd
	}
	return m, tea.Batch(cmd, composeCmd(m.client, after))
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	text := m.input.Value()
	if text == "" {
		return m, nil
	}
	m.input.Reset()
	m.setNotice("", false)
	return m, submitCmd(m.client, text)
}

func (m Model) handleSubmitResult(msg SubmitResultMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		// Give the line back so it can be fixed.
		if m.input.Value() == "" {
			m.input.SetValue(msg.Input)
			m.input.CursorEnd()
		}
		m.setNotice(msg.Err.Error(), true)
		m.refresh()
		return m, nil
	}
	switch msg.Result.Action {
	case commands.ActionQuit:
		return m, tea.Quit
	case commands.ActionHelp:
		m.showHelp = true
	}
	m.refresh()
	return m, nil
}

// =============================================================================
// COMPLETION
// =============================================================================

func (m *Model) complete(forward bool) {
	if m.completion.Visible {
		if forward {
			m.completion.Next()
		} else {
			m.completion.Prev()
		}
		return
	}
	input := m.input.Value()
	candidates := m.client.Completer().Complete(input, m.input.Position())
	if len(candidates) == 0 {
		return
	}
	m.completion.Update(input, candidates)
	if len(candidates) == 1 {
		m.acceptCompletion()
		return
	}
	m.refresh()
}

func (m *Model) acceptCompletion() {
	m.input.SetValue(m.completion.Accept())
	m.input.CursorEnd()
	m.completion.Clear()
	m.refresh()
}

// =============================================================================
// CHANNELS
// =============================================================================

// cycleChannel moves the active channel through the joined set.
func (m *Model) cycleChannel(step int) {
	joined := m.client.Session().JoinedChannels()
	if len(joined) == 0 {
		return
	}
	current := m.client.Channel()
	idx := -1
	for i, id := range joined {
		if id == current {
			idx = i
			break
		}
	}
	next := 0
	if idx >= 0 {
		next = (idx + step + len(joined)) % len(joined)
	}
	if err := m.client.SetChannel(joined[next]); err != nil {
		m.setNotice(err.Error(), true)
	}
	m.refresh()
}

// =============================================================================
// STATE
// =============================================================================

func (m *Model) setNotice(text string, isErr bool) {
	m.notice = text
	m.noticeErr = isErr
}

// refresh pulls a new snapshot from the client and re-lays the view.
// The log stays pinned to the bottom unless the user scrolled away.
func (m *Model) refresh() {
	m.view = m.client.View()
	if m.width == 0 {
		return
	}

	follow := m.viewport.AtBottom() || m.viewport.TotalLineCount() == 0
	logWidth := m.width
	if m.showMembers() {
		logWidth -= membersWidth
	}
	height := m.height - 1 - m.footerHeight()
	if height < 1 {
		height = 1
	}
	m.viewport.Width = logWidth
	m.viewport.Height = height
	m.viewport.SetContent(m.renderLog(logWidth))
	if follow {
		m.viewport.GotoBottom()
	}
	m.input.Width = m.width - len(m.input.Prompt) - 1
}

func (m Model) showMembers() bool {
	return m.theme.GetLayoutMode() == styles.LayoutFull
}

// Notice returns the current status line text.
func (m Model) Notice() string {
	return m.notice
}

// HelpVisible reports whether the help overlay is open.
func (m Model) HelpVisible() bool {
	return m.showHelp
}

// Input returns the composer contents.
func (m Model) Input() string {
	return m.input.Value()
}
