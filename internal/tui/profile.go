package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tbourn/go-chat-client/internal/guard"
	"github.com/tbourn/go-chat-client/internal/services"
)

// profileModel shows the current user and lets them edit username and email.
type profileModel struct {
	stack *Stack

	editing  bool
	username textinput.Model
	email    textinput.Model
	focus    int

	busy    bool
	errText string
	notice  string
}

// profileSavedMsg carries the outcome of a profile update.
type profileSavedMsg struct{ err error }

func newProfileModel(stack *Stack) *profileModel {
	username := textinput.New()
	username.Placeholder = "username"
	username.CharLimit = 64

	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 255

	return &profileModel{stack: stack, username: username, email: email}
}

func (m *profileModel) startEditing() tea.Cmd {
	res := m.stack.Profile.CurrentUser(context.Background())
	if res.User != nil {
		m.username.SetValue(res.User.Username)
		m.email.SetValue(res.User.Email)
	}
	m.editing = true
	m.focus = 0
	m.username.Focus()
	m.email.Blur()
	return textinput.Blink
}

func (m *profileModel) stopEditing() {
	m.editing = false
	m.username.Blur()
	m.email.Blur()
}

func (m *profileModel) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if !m.editing {
			switch msg.String() {
			case "q", "esc":
				return navigateTo(guard.ChatsPath)
			case "e":
				m.errText = ""
				m.notice = ""
				return m.startEditing()
			case "ctrl+l":
				m.stack.Coordinator.Logout()
				return navigateTo(guard.LoginPath)
			}
			return nil
		}

		switch msg.String() {
		case "esc":
			m.stopEditing()
			return nil
		case "tab", "down", "shift+tab", "up":
			m.focus = 1 - m.focus
			if m.focus == 0 {
				m.username.Focus()
				m.email.Blur()
			} else {
				m.email.Focus()
				m.username.Blur()
			}
			return nil
		case "enter":
			if m.busy {
				return nil
			}
			up := services.ProfileUpdate{
				Username: m.username.Value(),
				Email:    m.email.Value(),
			}
			m.busy = true
			m.errText = ""
			return func() tea.Msg {
				ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
				defer cancel()
				return profileSavedMsg{err: m.stack.Coordinator.UpdateProfile(ctx, up)}
			}
		}

	case profileSavedMsg:
		m.busy = false
		if msg.err != nil {
			m.errText = msg.err.Error()
			return nil
		}
		m.stopEditing()
		m.notice = "Profile updated."
		return nil
	}

	var cmds []tea.Cmd
	if m.editing {
		var cmd tea.Cmd
		m.username, cmd = m.username.Update(msg)
		cmds = append(cmds, cmd)
		m.email, cmd = m.email.Update(msg)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (m *profileModel) view() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Profile"))
	b.WriteString("\n\n")

	res := m.stack.Profile.CurrentUser(context.Background())
	switch {
	case res.User == nil && res.Loading:
		b.WriteString(mutedStyle.Render("Loading profile…"))
		b.WriteString("\n")
	case res.User != nil:
		b.WriteString(authorStyle.Render(res.User.Username))
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render(res.User.Email))
		b.WriteString("\n")
	}
	if res.Err != nil {
		b.WriteString(errorStyle.Render(res.Err.Error()))
		b.WriteString("\n")
	}

	if m.editing {
		b.WriteString("\n")
		b.WriteString(inputStyle.Render(m.username.View()))
		b.WriteString("\n")
		b.WriteString(inputStyle.Render(m.email.View()))
		b.WriteString("\n")
		if m.busy {
			b.WriteString(mutedStyle.Render("Saving…"))
			b.WriteString("\n")
		}
		if m.errText != "" {
			b.WriteString(errorStyle.Render(m.errText))
			b.WriteString("\n")
		}
		b.WriteString(helpStyle.Render("enter: save • tab: next field • esc: cancel"))
		return b.String()
	}

	if m.errText != "" {
		b.WriteString(errorStyle.Render(m.errText))
		b.WriteString("\n")
	}
	if m.notice != "" {
		b.WriteString(mutedStyle.Render(m.notice))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("e: edit • esc: back • ctrl+l: sign out"))
	return b.String()
}
