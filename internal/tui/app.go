// Package tui is the interactive terminal front end: login, register,
// dashboard, project list, project creation and project detail screens.
package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Makepad-fr/dod/internal/api"
	"github.com/Makepad-fr/dod/internal/app"
	"github.com/Makepad-fr/dod/internal/ui"
)

// screen is one routed view.
type screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (screen, tea.Cmd)
	View() string
}

// navigateMsg asks the root model to switch routes.
type navigateMsg struct{ route string }

func navigate(route string) tea.Cmd {
	return func() tea.Msg { return navigateMsg{route: route} }
}

// Model is the root bubbletea model. It owns routing; screens own their state.
type Model struct {
	app    *app.App
	ctx    context.Context
	route  string
	screen screen
	notice string
	width  int
	height int
}

// New builds the root model, starting at the guarded dashboard route.
func New(a *app.App) *Model {
	m := &Model{app: a, ctx: context.Background(), width: 80, height: 24}
	m.switchTo(app.RouteDashboard)
	return m
}

// Route is the active route.
func (m *Model) Route() string { return m.route }

// Run starts the program. A 401 from any request moves it to the login screen.
func Run(a *app.App) error {
	m := New(a)
	p := tea.NewProgram(m, tea.WithAltScreen())
	a.SetNavigator(app.NavigatorFunc(func(route string) {
		// called from request goroutines, never from the event loop
		go p.Send(navigateMsg{route: route})
	}))
	_, err := p.Run()
	return err
}

func (m *Model) switchTo(route string) tea.Cmd {
	was := m.route
	to := app.Guard(route, m.app.Session.IsAuthenticated())
	if to == was && app.IsPublic(to) {
		// a failed login answers 401 and navigates here again; keep the error on screen
		return nil
	}
	if to == app.RouteLogin && was != "" && !app.IsPublic(was) {
		m.notice = "Session expired, please log in again"
	} else if to != app.RouteLogin {
		m.notice = ""
	}
	m.route = to

	switch {
	case to == app.RouteLogin:
		m.screen = newLoginScreen(m.app, m.ctx, m.notice)
	case to == app.RouteRegister:
		m.screen = newRegisterScreen(m.app, m.ctx)
	case to == app.RouteProjects:
		m.screen = newProjectsScreen(m.app, m.ctx, m.width, m.height)
	case to == app.RouteNewProject:
		m.screen = newCreateProjectScreen(m.app, m.ctx)
	default:
		if id, ok := app.ParseProjectRoute(to); ok {
			m.screen = newDetailScreen(m.app, m.ctx, id)
		} else {
			m.route = app.RouteDashboard
			m.screen = newDashboardScreen(m.app, m.ctx)
		}
	}
	return m.screen.Init()
}

func (m *Model) Init() tea.Cmd { return m.screen.Init() }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case navigateMsg:
		return m, m.switchTo(msg.route)
	case logoutMsg:
		m.app.Session.Logout()
		m.route = ""
		return m, m.switchTo(app.RouteLogin)
	}
	var cmd tea.Cmd
	m.screen, cmd = m.screen.Update(msg)
	return m, cmd
}

func (m *Model) View() string {
	t := ui.Current()
	header := t.Title.Render("DoD Manager")
	if u := m.app.Session.User(); u != nil {
		header += "  " + t.Muted.Render(u.Username+" <"+u.Email+">")
	}
	nav := ""
	if !app.IsPublic(m.route) {
		nav = t.Help.Render("d dashboard • p projects • n new project • L logout • ctrl+c quit")
	}
	body := lipgloss.JoinVertical(lipgloss.Left, header, nav, "", m.screen.View())
	return ui.Box(body)
}

type logoutMsg struct{}

func logout() tea.Msg { return logoutMsg{} }

// globalKeys handles the navigation bar keys shared by protected screens.
func globalKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "d":
		return navigate(app.RouteDashboard)
	case "p":
		return navigate(app.RouteProjects)
	case "n":
		return navigate(app.RouteNewProject)
	case "L":
		return logout
	case "q":
		return tea.Quit
	}
	return nil
}

// failure converts a request error to the line shown to the user.
// A 401 returns "" because the session teardown already moved the user away.
func failure(err error, fallback string) string {
	if err == nil || isUnauthorized(err) {
		return ""
	}
	return fallback
}

func isUnauthorized(err error) bool { return errors.Is(err, api.ErrUnauthorized) }
