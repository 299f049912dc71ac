package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tbourn/go-chat-client/internal/guard"
)

// loginModel renders both credential screens: the login form and the
// registration form. Which one is active follows the route.
type loginModel struct {
	stack *Stack

	username textinput.Model
	email    textinput.Model
	password textinput.Model

	focus   int
	busy    bool
	errText string
	notice  string
}

// loginDoneMsg carries the outcome of a credential exchange.
type loginDoneMsg struct{ err error }

// registerDoneMsg carries the outcome of an account creation.
type registerDoneMsg struct{ err error }

func newLoginModel(stack *Stack) *loginModel {
	username := textinput.New()
	username.Placeholder = "username"
	username.CharLimit = 64
	username.Focus()

	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 255

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 128
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return &loginModel{
		stack:    stack,
		username: username,
		email:    email,
		password: password,
	}
}

func (m *loginModel) Init() tea.Cmd {
	return textinput.Blink
}

// fields returns the focusable inputs for the active screen.
func (m *loginModel) fields(route string) []*textinput.Model {
	if route == guard.RegistrationPath {
		return []*textinput.Model{&m.username, &m.email, &m.password}
	}
	return []*textinput.Model{&m.username, &m.password}
}

func (m *loginModel) setFocus(route string, idx int) {
	fields := m.fields(route)
	m.focus = (idx + len(fields)) % len(fields)
	for i, f := range fields {
		if i == m.focus {
			f.Focus()
		} else {
			f.Blur()
		}
	}
}

func (m *loginModel) update(msg tea.Msg, route string) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "down":
			m.setFocus(route, m.focus+1)
			return nil
		case "shift+tab", "up":
			m.setFocus(route, m.focus-1)
			return nil
		case "ctrl+r":
			m.errText = ""
			m.notice = ""
			m.setFocus(route, 0)
			if route == guard.LoginPath {
				return navigateTo(guard.RegistrationPath)
			}
			return navigateTo(guard.LoginPath)
		case "enter":
			if m.busy {
				return nil
			}
			if route == guard.RegistrationPath {
				return m.submitRegistration()
			}
			return m.submitLogin()
		}

	case loginDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.errText = msg.err.Error()
			return nil
		}
		m.errText = ""
		m.password.Reset()
		return navigateTo(guard.ChatsPath)

	case registerDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.errText = msg.err.Error()
			return nil
		}
		m.errText = ""
		m.notice = "Account created. Sign in to continue."
		m.password.Reset()
		return navigateTo(guard.LoginPath)
	}

	var cmds []tea.Cmd
	for _, f := range m.fields(route) {
		var cmd tea.Cmd
		*f, cmd = f.Update(msg)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (m *loginModel) submitLogin() tea.Cmd {
	username := m.username.Value()
	password := m.password.Value()
	m.busy = true
	m.errText = ""
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return loginDoneMsg{err: m.stack.Coordinator.Login(ctx, username, password)}
	}
}

func (m *loginModel) submitRegistration() tea.Cmd {
	username := m.username.Value()
	email := m.email.Value()
	password := m.password.Value()
	m.busy = true
	m.errText = ""
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return registerDoneMsg{err: m.stack.Coordinator.Register(ctx, username, email, password)}
	}
}

func (m *loginModel) view(route string) string {
	var b strings.Builder

	if route == guard.RegistrationPath {
		b.WriteString(titleStyle.Render("Create account"))
	} else {
		b.WriteString(titleStyle.Render("Sign in"))
	}
	b.WriteString("\n\n")

	for _, f := range m.fields(route) {
		b.WriteString(inputStyle.Render(f.View()))
		b.WriteString("\n")
	}

	if m.busy {
		b.WriteString(mutedStyle.Render("Working…"))
		b.WriteString("\n")
	}
	if m.errText != "" {
		b.WriteString(errorStyle.Render(m.errText))
		b.WriteString("\n")
	}
	if m.notice != "" {
		b.WriteString(mutedStyle.Render(m.notice))
		b.WriteString("\n")
	}

	if route == guard.RegistrationPath {
		b.WriteString(helpStyle.Render("enter: create • ctrl+r: back to sign in • ctrl+c: quit"))
	} else {
		b.WriteString(helpStyle.Render("enter: sign in • ctrl+r: create account • ctrl+c: quit"))
	}
	return b.String()
}
