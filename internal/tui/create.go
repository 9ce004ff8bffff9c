package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/dod/internal/api"
	"github.com/Makepad-fr/dod/internal/app"
	"github.com/Makepad-fr/dod/internal/form"
	"github.com/Makepad-fr/dod/internal/model"
	"github.com/Makepad-fr/dod/internal/ui"
)

type projectCreatedMsg struct {
	project *model.Project
	err     error
}

type createProjectScreen struct {
	app        *app.App
	ctx        context.Context
	fields     fieldSet
	submitting bool
	err        string
}

func newCreateProjectScreen(a *app.App, ctx context.Context) *createProjectScreen {
	return &createProjectScreen{
		app: a,
		ctx: ctx,
		fields: newFieldSet(
			textField("name", "Project name", "Website redesign", 100),
			textField("description", "Description (optional)", "What is this project about?", 500),
		),
	}
}

func (s *createProjectScreen) Init() tea.Cmd { return nil }

func (s *createProjectScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case projectCreatedMsg:
		s.submitting = false
		if msg.err != nil {
			if !isUnauthorized(msg.err) {
				s.err = api.Message(msg.err, "Failed to create project")
			}
			return s, nil
		}
		return s, navigate(app.ProjectRoute(msg.project.ID))

	case tea.KeyMsg:
		if s.submitting {
			return s, nil
		}
		if msg.String() == "esc" {
			return s, navigate(app.RouteProjects)
		}
		cmd, submit := s.fields.handleKey(msg)
		if submit {
			return s, s.submit()
		}
		return s, cmd
	}
	return s, nil
}

func (s *createProjectScreen) submit() tea.Cmd {
	f := form.ProjectForm{
		Name:        strings.TrimSpace(s.fields.get("name").value()),
		Description: strings.TrimSpace(s.fields.get("description").value()),
	}
	if err := form.Validate(f); err != nil {
		fe, _ := form.AsErrors(err)
		s.fields.setErrors(fe)
		return nil
	}
	s.fields.setErrors(nil)
	s.err = ""
	s.submitting = true

	client, ctx := s.app.Client, s.ctx
	return func() tea.Msg {
		p, err := client.Projects.Create(ctx, f.Name, f.Description)
		return projectCreatedMsg{project: p, err: err}
	}
}

func (s *createProjectScreen) View() string {
	t := ui.Current()
	out := t.Title.Render("Create new project") + "\n\n"
	if s.err != "" {
		out += t.Error.Render(s.err) + "\n\n"
	}
	out += s.fields.view() + "\n\n"
	if s.submitting {
		return out + t.Muted.Render("Creating...")
	}
	return out + t.Help.Render("tab next field • ctrl+s create project • esc cancel")
}
