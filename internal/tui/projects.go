package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/dod/internal/app"
	"github.com/Makepad-fr/dod/internal/model"
	"github.com/Makepad-fr/dod/internal/ui"
)

type projectsLoadedMsg struct {
	projects []model.Project
	err      error
}

type projectItem struct {
	p     model.Project
	owned bool
}

func (i projectItem) Title() string {
	if i.owned {
		return i.p.Name + "  (Owner)"
	}
	return i.p.Name + "  (Member)"
}

func (i projectItem) Description() string {
	if i.p.Description == "" {
		return "No description"
	}
	return i.p.Description
}

func (i projectItem) FilterValue() string { return i.p.Name }

type projectsScreen struct {
	app      *app.App
	ctx      context.Context
	list     list.Model
	projects []model.Project
	loading  bool
	err      string
}

func newProjectsScreen(a *app.App, ctx context.Context, width, height int) *projectsScreen {
	s := &projectsScreen{app: a, ctx: ctx, loading: true}
	l := list.New(nil, list.NewDefaultDelegate(), listWidth(width), listHeight(height))
	l.Title = "Projects"
	l.SetShowStatusBar(false)
	l.DisableQuitKeybindings()
	l.Filter = s.filter
	l.SetStatusBarItemName("project", "projects")
	s.list = l
	return s
}

func listWidth(w int) int {
	if w -= 6; w < 20 {
		return 20
	}
	return w
}

func listHeight(h int) int {
	if h -= 10; h < 6 {
		return 6
	}
	return h
}

// filter matches against name and description, same as the web search box.
func (s *projectsScreen) filter(term string, targets []string) []list.Rank {
	var ranks []list.Rank
	for i := range targets {
		if i < len(s.projects) && s.projects[i].Matches(term) {
			ranks = append(ranks, list.Rank{Index: i})
		}
	}
	return ranks
}

func (s *projectsScreen) Init() tea.Cmd {
	client, ctx := s.app.Client, s.ctx
	return func() tea.Msg {
		ps, err := client.Projects.List(ctx)
		return projectsLoadedMsg{projects: ps, err: err}
	}
}

func (s *projectsScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case projectsLoadedMsg:
		s.loading = false
		if msg.err != nil {
			s.err = failure(msg.err, "Failed to fetch projects")
			return s, nil
		}
		s.projects = msg.projects
		user := s.app.Session.User()
		items := make([]list.Item, len(msg.projects))
		for i, p := range msg.projects {
			items[i] = projectItem{p: p, owned: p.OwnedBy(user)}
		}
		return s, s.list.SetItems(items)

	case tea.WindowSizeMsg:
		s.list.SetSize(listWidth(msg.Width), listHeight(msg.Height))
		return s, nil

	case tea.KeyMsg:
		if s.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "enter":
			if it, ok := s.list.SelectedItem().(projectItem); ok {
				return s, navigate(app.ProjectRoute(it.p.ID))
			}
			return s, nil
		case "r":
			s.loading = true
			return s, s.Init()
		}
		if cmd := globalKeys(msg); cmd != nil {
			return s, cmd
		}
	}
	var cmd tea.Cmd
	s.list, cmd = s.list.Update(msg)
	return s, cmd
}

func (s *projectsScreen) View() string {
	t := ui.Current()
	if s.loading {
		return t.Muted.Render("Loading projects...")
	}
	var b strings.Builder
	if s.err != "" {
		b.WriteString(t.Error.Render(s.err) + "\n\n")
	}
	switch {
	case len(s.projects) == 0:
		b.WriteString(t.Title.Render("Projects") + "\n\n")
		b.WriteString(t.Muted.Render("No projects yet. Press n to create one.") + "\n")
		return b.String()
	case len(s.list.VisibleItems()) == 0:
		b.WriteString(s.list.View() + "\n")
		b.WriteString(t.Muted.Render("No projects found. Try a different search.") + "\n")
	default:
		b.WriteString(s.list.View() + "\n")
	}
	n := len(s.list.VisibleItems())
	b.WriteString(t.Muted.Render(fmt.Sprintf("%d project%s found", n, plural(n))) + "\n")
	b.WriteString(t.Help.Render("/ search • enter open • r refresh"))
	return b.String()
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
