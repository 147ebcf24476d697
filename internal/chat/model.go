// Package chat implements the terminal UI: a channel sidebar, a message
// viewport, and an input line, rendered from engine snapshots.
package chat

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"huddle/internal/chatsync"
	"huddle/internal/notify"
)

// Options configure the chat UI.
type Options struct {
	Engine     *chatsync.Engine
	Dispatcher *notify.Dispatcher
}

// Run starts the chat UI and blocks until it exits. The engine's poll loop
// is expected to already be running; the UI only renders snapshots and
// forwards user actions.
func Run(ctx context.Context, opts Options) error {
	model := NewModel(opts)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithReportFocus(), tea.WithContext(ctx))

	// Repaint whenever either store changes underneath the UI.
	opts.Engine.Subscribe(func() {
		program.Send(stateChangedMsg{})
	})
	if opts.Dispatcher != nil {
		opts.Dispatcher.Subscribe(func() {
			program.Send(stateChangedMsg{})
		})
	}

	_, err := program.Run()
	return err
}

type stateChangedMsg struct{}

type actionDoneMsg struct{ err error }

type clockTickMsg time.Time

// Model implements the chat UI.
type Model struct {
	engine     *chatsync.Engine
	dispatcher *notify.Dispatcher
	viewport   viewport.Model
	input      textinput.Model
	width      int
	height     int
	ready      bool
	status     string
	snap       chatsync.Snapshot
}

// NewModel constructs the UI model.
func NewModel(opts Options) *Model {
	input := textinput.New()
	input.Placeholder = "message"
	input.Prompt = "> "
	input.Focus()

	return &Model{
		engine:     opts.Engine,
		dispatcher: opts.Dispatcher,
		input:      input,
		snap:       opts.Engine.Snapshot(),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, clockTick())
}

// clockTick keeps relative timestamps fresh even when nothing changes.
func clockTick() tea.Cmd {
	return tea.Tick(30*time.Second, func(t time.Time) tea.Msg {
		return clockTickMsg(t)
	})
}

var authorPalette = []lipgloss.Color{
	lipgloss.Color("111"),
	lipgloss.Color("157"),
	lipgloss.Color("216"),
	lipgloss.Color("36"),
	lipgloss.Color("183"),
	lipgloss.Color("230"),
}

func authorColor(name string) lipgloss.Color {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	return authorPalette[int(h.Sum32())%len(authorPalette)]
}
