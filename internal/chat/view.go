package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	humanize "github.com/dustin/go-humanize"

	"huddle/internal/types"
)

const (
	sidebarWidth = 22
	inputHeight  = 1
	statusHeight = 1
)

var (
	sidebarStyle = lipgloss.NewStyle().
			Width(sidebarWidth - 2).
			PaddingRight(1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true).
			BorderForeground(lipgloss.Color("240"))
	activeChannelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	channelStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	privateMarkStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("178"))
	timeStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	editedStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("242")).Italic(true)
	pendingStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true)
	statusStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("110"))
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

// View implements tea.Model.
func (m *Model) View() string {
	if !m.ready {
		return "loading…"
	}
	main := lipgloss.JoinVertical(lipgloss.Left,
		m.viewport.View(),
		m.input.View(),
		m.statusLine(),
	)
	return lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), main)
}

func (m *Model) renderSidebar() string {
	var b strings.Builder
	b.WriteString(channelStyle.Render("channels"))
	b.WriteString("\n\n")
	for _, ch := range m.snap.Channels {
		label := channelLabel(ch)
		if m.snap.Active != nil && ch.ID == m.snap.Active.ID {
			b.WriteString(activeChannelStyle.Render(label))
		} else {
			b.WriteString(channelStyle.Render(label))
		}
		b.WriteString("\n")
	}
	if m.dispatcher != nil {
		if unread := m.dispatcher.UnreadCount(); unread > 0 {
			b.WriteString("\n")
			b.WriteString(statusStyle.Render(fmt.Sprintf("%d unread", unread)))
		}
	}
	return sidebarStyle.Height(m.height).Render(b.String())
}

func (m *Model) renderMessages() string {
	if m.snap.Loading {
		return pendingStyle.Render("loading messages…")
	}
	if len(m.snap.Messages) == 0 {
		return pendingStyle.Render("no messages yet")
	}
	return strings.Join(messageLines(m.snap.Messages, m.snap.LastRead, time.Now()), "\n")
}

var unreadDivider = timeStyle.Render("─── new ───")

// messageLines renders the history, inserting a divider before the first
// message newer than the read watermark carried over from the previous
// session. No watermark, no divider.
func messageLines(messages []types.Message, lastRead, now time.Time) []string {
	lines := make([]string, 0, len(messages)+1)
	divided := lastRead.IsZero()
	for _, msg := range messages {
		if !divided && msg.CreatedAt.After(lastRead) {
			lines = append(lines, unreadDivider)
			divided = true
		}
		lines = append(lines, formatMessage(msg, now))
	}
	return lines
}

func (m *Model) statusLine() string {
	if m.status != "" {
		return errorStyle.Render(truncateLine(m.status, m.width))
	}
	active := "no channel"
	if m.snap.Active != nil {
		active = "#" + m.snap.Active.Name
	}
	help := "enter send · ctrl+n/p channels · ctrl+y copy · ctrl+r read all · ctrl+c quit"
	return statusStyle.Render(truncateLine(active+" · "+help, m.width))
}

// channelLabel renders a sidebar entry, marking private channels and
// showing the member count.
func channelLabel(ch types.Channel) string {
	mark := ""
	if ch.IsPrivate {
		mark = privateMarkStyle.Render("*")
	}
	return fmt.Sprintf("#%s%s (%d)", ch.Name, mark, ch.MemberCount)
}

func formatMessage(msg types.Message, now time.Time) string {
	author := lipgloss.NewStyle().Bold(true).Foreground(authorColor(msg.Author.Name)).Render(msg.Author.Name)
	when := timeStyle.Render(relativeTime(msg.CreatedAt, now))

	body := msg.Content
	if msg.MessageType == types.MessageTypeImage {
		if body != "" {
			body += " "
		}
		body += "[image: " + msg.ImageURL + "]"
	}

	line := fmt.Sprintf("%s %s  %s", author, when, body)
	if msg.IsEdited {
		line += " " + editedStyle.Render("(edited)")
	}
	if types.IsTempID(msg.ID) {
		line += " " + pendingStyle.Render("(sending…)")
	}
	return line
}

func relativeTime(t, now time.Time) string {
	if now.Sub(t) < time.Minute {
		return "just now"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

func truncateLine(s string, width int) string {
	runes := []rune(s)
	if width <= 1 || len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}
