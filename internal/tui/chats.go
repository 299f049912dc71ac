package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tbourn/go-chat-client/internal/domain"
	"github.com/tbourn/go-chat-client/internal/guard"
)

// chatsModel renders the chat list and, once a chat is opened, its message
// history with a compose field. All data is read through the query cache on
// every render; the cache decides when a network fetch is due.
type chatsModel struct {
	stack *Stack

	// open is the chat whose messages are shown; nil means the list screen.
	open *domain.Chat

	cursor    int
	filterOn  bool
	filter    textinput.Model
	compose   textinput.Model
	sendBusy  bool
	sendError string

	width  int
	height int
}

// sendDoneMsg carries the outcome of a message send.
type sendDoneMsg struct{ err error }

func newChatsModel(stack *Stack) *chatsModel {
	filter := textinput.New()
	filter.Placeholder = "filter chats"
	filter.CharLimit = 64

	compose := textinput.New()
	compose.Placeholder = "write a message"
	compose.CharLimit = 4000

	return &chatsModel{
		stack:   stack,
		filter:  filter,
		compose: compose,
		width:   80,
		height:  24,
	}
}

func (m *chatsModel) setSize(w, h int) {
	m.width = w
	m.height = h
	m.compose.Width = max(20, w-8)
	m.filter.Width = max(20, w-8)
}

// refresh resets transient state when the screen is (re)entered.
func (m *chatsModel) refresh() tea.Cmd {
	m.sendError = ""
	return nil
}

// visibleChats applies the fuzzy filter to the cached chat list.
func (m *chatsModel) visibleChats() ([]domain.Chat, bool, error) {
	res := m.stack.Reader.Chats(context.Background())
	chats := res.Chats
	if q := strings.TrimSpace(m.filter.Value()); q != "" {
		filtered := chats[:0:0]
		for _, c := range chats {
			if fuzzyMatch(q, c.Name) {
				filtered = append(filtered, c)
			}
		}
		chats = filtered
	}
	return chats, res.Loading, res.Err
}

func (m *chatsModel) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.open != nil {
			return m.updateOpenChat(msg)
		}
		return m.updateList(msg)

	case sendDoneMsg:
		m.sendBusy = false
		if msg.err != nil {
			m.sendError = msg.err.Error()
			return nil
		}
		m.sendError = ""
		m.compose.Reset()
		return nil
	}

	var cmd tea.Cmd
	if m.filterOn {
		m.filter, cmd = m.filter.Update(msg)
	} else if m.open != nil {
		m.compose, cmd = m.compose.Update(msg)
	}
	return cmd
}

func (m *chatsModel) updateList(msg tea.KeyMsg) tea.Cmd {
	if m.filterOn {
		switch msg.String() {
		case "enter", "esc":
			m.filterOn = false
			m.filter.Blur()
			if msg.String() == "esc" {
				m.filter.Reset()
			}
			m.cursor = 0
			return nil
		}
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		return cmd
	}

	switch msg.String() {
	case "q":
		return tea.Quit
	case "/":
		m.filterOn = true
		m.filter.Focus()
		return textinput.Blink
	case "p":
		return navigateTo(guard.ProfilePath)
	case "ctrl+l":
		m.stack.Coordinator.Logout()
		return navigateTo(guard.LoginPath)
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		chats, _, _ := m.visibleChats()
		if m.cursor < len(chats)-1 {
			m.cursor++
		}
	case "enter":
		chats, _, _ := m.visibleChats()
		if m.cursor < len(chats) {
			c := chats[m.cursor]
			m.open = &c
			m.compose.Focus()
			return textinput.Blink
		}
	}
	return nil
}

func (m *chatsModel) updateOpenChat(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.open = nil
		m.compose.Blur()
		m.sendError = ""
		return nil
	case "ctrl+l":
		m.stack.Coordinator.Logout()
		return navigateTo(guard.LoginPath)
	case "enter":
		if m.sendBusy || m.open == nil {
			return nil
		}
		text := m.compose.Value()
		chatID := m.open.ID
		m.sendBusy = true
		m.sendError = ""
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return sendDoneMsg{err: m.stack.Coordinator.SendMessage(ctx, chatID, text)}
		}
	}

	var cmd tea.Cmd
	m.compose, cmd = m.compose.Update(msg)
	return cmd
}

func (m *chatsModel) view() string {
	if m.open != nil {
		return m.viewOpenChat()
	}
	return m.viewList()
}

func (m *chatsModel) viewList() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Chats"))
	b.WriteString("\n")

	chats, loading, err := m.visibleChats()
	if m.filterOn || m.filter.Value() != "" {
		b.WriteString(inputStyle.Render(m.filter.View()))
		b.WriteString("\n")
	}

	switch {
	case len(chats) == 0 && loading:
		b.WriteString(mutedStyle.Render("Loading chats…"))
		b.WriteString("\n")
	case len(chats) == 0:
		b.WriteString(mutedStyle.Render("No chats."))
		b.WriteString("\n")
	}

	for i, c := range chats {
		line := fmt.Sprintf("  %s", c.Name)
		if i == m.cursor && !m.filterOn {
			line = selectedStyle.Render(fmt.Sprintf("> %s", c.Name))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	// A failed refresh keeps the previous list on screen.
	if err != nil {
		b.WriteString(errorStyle.Render(err.Error()))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("enter: open • /: filter • p: profile • ctrl+l: sign out • q: quit"))
	return b.String()
}

func (m *chatsModel) viewOpenChat() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.open.Name))
	b.WriteString("\n")

	res := m.stack.Reader.Messages(context.Background(), m.open.ID)
	switch {
	case len(res.Messages) == 0 && res.Loading:
		b.WriteString(mutedStyle.Render("Loading messages…"))
		b.WriteString("\n")
	case len(res.Messages) == 0:
		b.WriteString(mutedStyle.Render("No messages yet."))
		b.WriteString("\n")
	}

	// Show the most recent messages that fit the window, in backend order.
	msgs := res.Messages
	if limit := max(1, m.height-8); len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	for _, msg := range msgs {
		author := msg.UserID
		if msg.User != nil {
			author = msg.User.Username
		}
		b.WriteString(authorStyle.Render(author))
		b.WriteString(mutedStyle.Render(" " + msg.CreatedAt.Local().Format("15:04")))
		b.WriteString("  ")
		b.WriteString(msg.Text)
		b.WriteString("\n")
	}

	if res.Err != nil {
		b.WriteString(errorStyle.Render(res.Err.Error()))
		b.WriteString("\n")
	}
	if m.sendError != "" {
		b.WriteString(errorStyle.Render(m.sendError))
		b.WriteString("\n")
	}

	b.WriteString(inputStyle.Render(m.compose.View()))
	b.WriteString("\n")
	if m.sendBusy {
		b.WriteString(mutedStyle.Render("Sending…"))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("enter: send • esc: back • ctrl+l: sign out"))
	return b.String()
}

// fuzzyMatch reports whether every rune of needle appears in hay in order,
// case-insensitively.
func fuzzyMatch(needle, hay string) bool {
	want := []rune(strings.ToLower(needle))
	i := 0
	for _, r := range strings.ToLower(hay) {
		if i < len(want) && want[i] == r {
			i++
		}
	}
	return i == len(want)
}
