// Package tui renders the terminal chat client. The App model owns the route
// state and delegates each screen to a sub-model; every navigation and every
// session transition is re-evaluated through the access guard, so a forced
// logout lands on the login screen without screen-level cooperation.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/tbourn/go-chat-client/internal/cache"
	"github.com/tbourn/go-chat-client/internal/guard"
	"github.com/tbourn/go-chat-client/internal/profile"
	"github.com/tbourn/go-chat-client/internal/services"
	"github.com/tbourn/go-chat-client/internal/session"
)

// Stack bundles the client collaborators the screens operate on.
type Stack struct {
	Sessions    *session.Store
	Queries     *cache.Store
	Reader      *services.Reader
	Coordinator *services.Coordinator
	Profile     *profile.Cache
	Log         zerolog.Logger
}

// dataChangedMsg signals that a cache entry or the session transitioned, so
// the current screen should re-read and the route be re-evaluated.
type dataChangedMsg struct{}

// App is the root bubbletea model.
type App struct {
	stack *Stack
	route string

	login   *loginModel
	chats   *chatsModel
	account *profileModel

	updates chan struct{}
	cancel  []func()

	width  int
	height int
}

// NewApp builds the root model and wires the cache and session notifications
// into the bubbletea message loop.
func NewApp(stack *Stack) *App {
	a := &App{
		stack:   stack,
		login:   newLoginModel(stack),
		chats:   newChatsModel(stack),
		account: newProfileModel(stack),
		updates: make(chan struct{}, 1),
		width:   80,
		height:  24,
	}

	ping := func() {
		select {
		case a.updates <- struct{}{}:
		default:
		}
	}
	a.cancel = append(a.cancel,
		stack.Queries.Subscribe(func(cache.Key) { ping() }),
		stack.Sessions.Subscribe(ping),
	)

	a.route = a.resolve(guard.ChatsPath)
	return a
}

// resolve runs path through the access guard and returns the destination to
// render. Unknown paths fall back to the current route.
func (a *App) resolve(path string) string {
	switch d := guard.RouteFor(a.stack.Sessions.IsLoggedIn(), path); d.Outcome {
	case guard.Allow:
		return path
	case guard.Redirect:
		return d.Target
	default:
		return a.route
	}
}

// navigate switches to the guard-approved destination for path.
func (a *App) navigate(path string) {
	a.route = a.resolve(path)
}

// waitForUpdate blocks on the notification channel and re-arms after every
// delivery.
func (a *App) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		<-a.updates
		return dataChangedMsg{}
	}
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.waitForUpdate(), a.login.Init())
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.chats.setSize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			a.shutdown()
			return a, tea.Quit
		}

	case dataChangedMsg:
		// The session may have been torn down underneath the current screen.
		a.route = a.resolve(a.route)
		return a, a.waitForUpdate()

	case navigateMsg:
		a.navigate(string(msg))
		if a.route == guard.ChatsPath {
			return a, a.chats.refresh()
		}
		return a, nil
	}

	var cmd tea.Cmd
	switch a.route {
	case guard.LoginPath, guard.RegistrationPath:
		cmd = a.login.update(msg, a.route)
	case guard.ProfilePath:
		cmd = a.account.update(msg)
	default:
		cmd = a.chats.update(msg)
	}
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	switch a.route {
	case guard.LoginPath, guard.RegistrationPath:
		return a.login.view(a.route)
	case guard.ProfilePath:
		return a.account.view()
	default:
		return a.chats.view()
	}
}

// shutdown cancels the store subscriptions.
func (a *App) shutdown() {
	for _, c := range a.cancel {
		c()
	}
}

// navigateMsg asks the root model to route to the carried path.
type navigateMsg string

// navigateTo emits a navigateMsg from a screen.
func navigateTo(path string) tea.Cmd {
	return func() tea.Msg { return navigateMsg(path) }
}
