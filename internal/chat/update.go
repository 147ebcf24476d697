package chat

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"huddle/internal/types"
)

const actionTimeout = 30 * time.Second

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.FocusMsg:
		m.engine.SetFocused(true)
		return m, nil

	case tea.BlurMsg:
		m.engine.SetFocused(false)
		return m, nil

	case stateChangedMsg:
		m.refresh()
		return m, nil

	case clockTickMsg:
		m.refreshViewport()
		return m, clockTick()

	case actionDoneMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit

	case "enter":
		content := m.input.Value()
		if strings.TrimSpace(content) == "" {
			return m, nil
		}
		m.input.Reset()
		return m, m.sendCmd(content)

	case "ctrl+n":
		return m, m.cycleChannelCmd(1)

	case "ctrl+p":
		return m, m.cycleChannelCmd(-1)

	case "ctrl+y":
		m.copyLastMessage()
		return m, nil

	case "ctrl+r":
		return m, m.markAllReadCmd()

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) sendCmd(content string) tea.Cmd {
	engine := m.engine
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return actionDoneMsg{err: engine.SendMessage(ctx, content, nil)}
	}
}

func (m *Model) cycleChannelCmd(delta int) tea.Cmd {
	snap := m.snap
	if len(snap.Channels) == 0 {
		return nil
	}
	index := 0
	if snap.Active != nil {
		for i, ch := range snap.Channels {
			if ch.ID == snap.Active.ID {
				index = i
				break
			}
		}
	}
	next := snap.Channels[((index+delta)%len(snap.Channels)+len(snap.Channels))%len(snap.Channels)]
	engine := m.engine
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return actionDoneMsg{err: engine.SelectChannel(ctx, next)}
	}
}

func (m *Model) markAllReadCmd() tea.Cmd {
	if m.dispatcher == nil {
		return nil
	}
	dispatcher := m.dispatcher
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return actionDoneMsg{err: dispatcher.MarkAllAsRead(ctx)}
	}
}

func (m *Model) copyLastMessage() {
	var last *types.Message
	for i := len(m.snap.Messages) - 1; i >= 0; i-- {
		if !types.IsTempID(m.snap.Messages[i].ID) {
			last = &m.snap.Messages[i]
			break
		}
	}
	if last == nil {
		m.status = "nothing to copy"
		return
	}
	if err := copyToClipboard(last.Content); err != nil {
		m.status = err.Error()
		return
	}
	m.status = "copied last message"
}

func (m *Model) refresh() {
	m.snap = m.engine.Snapshot()
	if m.snap.Err != "" {
		m.status = m.snap.Err
	}
	m.refreshViewport()
}

func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderMessages())
	if atBottom {
		m.viewport.GotoBottom()
	}
}

func (m *Model) layout() {
	contentHeight := m.height - inputHeight - statusHeight
	if contentHeight < 1 {
		contentHeight = 1
	}
	contentWidth := m.width - sidebarWidth
	if contentWidth < 1 {
		contentWidth = 1
	}
	if !m.ready {
		m.viewport = viewport.New(contentWidth, contentHeight)
		m.ready = true
	} else {
		m.viewport.Width = contentWidth
		m.viewport.Height = contentHeight
	}
	m.input.Width = m.width - len(m.input.Prompt) - 1
	m.refreshViewport()
	m.viewport.GotoBottom()
}
