package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/dod/internal/app"
	"github.com/Makepad-fr/dod/internal/model"
	"github.com/Makepad-fr/dod/internal/ui"
)

const dashboardRecent = 6

type dashboardLoadedMsg struct {
	projects []model.Project
	err      error
}

type dashboardScreen struct {
	app      *app.App
	ctx      context.Context
	spin     spinner.Model
	loading  bool
	projects []model.Project
	cursor   int
	err      string
}

func newDashboardScreen(a *app.App, ctx context.Context) *dashboardScreen {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return &dashboardScreen{app: a, ctx: ctx, spin: sp, loading: true}
}

func (s *dashboardScreen) Init() tea.Cmd {
	return tea.Batch(s.spin.Tick, s.fetch())
}

func (s *dashboardScreen) fetch() tea.Cmd {
	client, ctx := s.app.Client, s.ctx
	return func() tea.Msg {
		ps, err := client.Projects.List(ctx)
		return dashboardLoadedMsg{projects: ps, err: err}
	}
}

func (s *dashboardScreen) recent() []model.Project {
	if len(s.projects) > dashboardRecent {
		return s.projects[:dashboardRecent]
	}
	return s.projects
}

func (s *dashboardScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardLoadedMsg:
		s.loading = false
		if msg.err != nil {
			s.err = failure(msg.err, "Failed to fetch projects")
			return s, nil
		}
		s.err = ""
		s.projects = msg.projects
		if s.cursor >= len(s.recent()) {
			s.cursor = 0
		}
		return s, nil

	case spinner.TickMsg:
		if !s.loading {
			return s, nil
		}
		var cmd tea.Cmd
		s.spin, cmd = s.spin.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
		case "down", "j":
			if s.cursor < len(s.recent())-1 {
				s.cursor++
			}
		case "enter":
			if r := s.recent(); s.cursor < len(r) {
				return s, navigate(app.ProjectRoute(r[s.cursor].ID))
			}
		case "r":
			s.loading = true
			return s, tea.Batch(s.spin.Tick, s.fetch())
		default:
			return s, globalKeys(msg)
		}
	}
	return s, nil
}

func (s *dashboardScreen) View() string {
	t := ui.Current()
	user := s.app.Session.User()
	out := t.Title.Render(fmt.Sprintf("Welcome back, %s!", user.DisplayName())) + "\n\n"

	if s.loading {
		return out + s.spin.View() + " Loading projects..."
	}
	if s.err != "" {
		out += t.Error.Render(s.err) + "\n\n"
	}

	out += t.Accent.Render("Recent projects") + "\n"
	if len(s.projects) == 0 {
		out += t.Muted.Render("No projects yet. Press n to create your first project.") + "\n"
	}
	for i, p := range s.recent() {
		tag := t.Muted.Render("Member")
		if p.OwnedBy(user) {
			tag = t.Success.Render("Owner")
		}
		line := fmt.Sprintf("%-32s %s", ui.Truncate(p.Name, 32), tag)
		if i == s.cursor {
			line = t.Selected.Render("> ") + line
		} else {
			line = "  " + line
		}
		out += line + "\n"
		if p.Description != "" {
			out += "    " + t.Muted.Render(ui.Truncate(p.Description, 60)) + "\n"
		}
	}

	total, owned := len(s.projects), model.OwnedCount(s.projects, user)
	out += "\n" + t.Accent.Render("Quick stats") + "\n"
	out += fmt.Sprintf("Total projects  %d\n", total)
	out += fmt.Sprintf("Owned           %d  %s\n", owned, ui.ProgressBar(owned, total, 20))
	out += "\n" + t.Help.Render("↑/↓ select • enter open • r refresh")
	return out
}
