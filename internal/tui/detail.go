package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/dod/internal/api"
	"github.com/Makepad-fr/dod/internal/app"
	"github.com/Makepad-fr/dod/internal/form"
	"github.com/Makepad-fr/dod/internal/model"
	"github.com/Makepad-fr/dod/internal/ui"
)

type detailTab int

const (
	tabDoD detailTab = iota
	tabParticipants
)

type dialogKind int

const (
	dialogNone dialogKind = iota
	dialogDoD
	dialogItem
	dialogParticipant
)

type detailLoadedMsg struct {
	id      uint
	project *model.Project
	dods    []model.DoD
	err     error
}

// mutationMsg reports the result of a dialog submit. fallback is the line
// shown when it failed.
type mutationMsg struct {
	participant *model.Participant
	fallback    string
	err         error
}

type detailScreen struct {
	app *app.App
	ctx context.Context
	id  uint

	project      *model.Project
	dods         []model.DoD
	participants []model.Participant
	loading      bool
	err          string

	tab    detailTab
	cursor int

	dialog     dialogKind
	dialogDoD  uint
	fields     fieldSet
	submitting bool
}

func newDetailScreen(a *app.App, ctx context.Context, id uint) *detailScreen {
	return &detailScreen{app: a, ctx: ctx, id: id, loading: true}
}

func (s *detailScreen) Init() tea.Cmd { return s.fetch() }

func (s *detailScreen) fetch() tea.Cmd {
	client, ctx, id := s.app.Client, s.ctx, s.id
	return func() tea.Msg {
		dods, err := client.Projects.ListDoDs(ctx, id)
		if err != nil {
			return detailLoadedMsg{id: id, err: err}
		}
		// the project header is best effort; the list endpoint is the only source
		var project *model.Project
		if ps, err := client.Projects.List(ctx); err == nil {
			for i := range ps {
				if ps[i].ID == id {
					project = &ps[i]
					break
				}
			}
		}
		return detailLoadedMsg{id: id, project: project, dods: dods}
	}
}

func (s *detailScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case detailLoadedMsg:
		if msg.id != s.id {
			return s, nil
		}
		s.loading = false
		if msg.err != nil {
			s.err = failure(msg.err, "Failed to fetch project data")
			return s, nil
		}
		if msg.project != nil {
			s.project = msg.project
		}
		s.dods = msg.dods
		if s.cursor >= len(s.dods) {
			s.cursor = 0
		}
		return s, nil

	case mutationMsg:
		s.submitting = false
		if msg.err != nil {
			s.err = failure(msg.err, msg.fallback)
			return s, nil
		}
		s.err = ""
		s.dialog = dialogNone
		if msg.participant != nil {
			s.participants = append(s.participants, *msg.participant)
		}
		return s, s.fetch()

	case tea.KeyMsg:
		if s.dialog != dialogNone {
			return s, s.updateDialog(msg)
		}
		return s, s.updateKeys(msg)
	}
	return s, nil
}

func (s *detailScreen) updateKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "tab", "right", "left":
		if s.tab == tabDoD {
			s.tab = tabParticipants
		} else {
			s.tab = tabDoD
		}
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(s.dods)-1 {
			s.cursor++
		}
	case "c":
		if s.tab == tabDoD {
			s.open(dialogDoD)
		}
	case "i":
		if s.tab == tabDoD && s.cursor < len(s.dods) {
			s.dialogDoD = s.dods[s.cursor].ID
			s.open(dialogItem)
		}
	case "a":
		if s.tab == tabParticipants {
			s.open(dialogParticipant)
		}
	case "r":
		s.loading = true
		return s.fetch()
	case "esc":
		return navigate(app.RouteProjects)
	default:
		return globalKeys(msg)
	}
	return nil
}

func (s *detailScreen) open(kind dialogKind) {
	s.dialog = kind
	s.err = ""
	switch kind {
	case dialogDoD:
		s.fields = newFieldSet(
			textField("title", "Title", "Release checklist", 200),
			textField("description", "Description", "", 500),
		)
	case dialogItem:
		s.fields = newFieldSet(
			textField("title", "Item title", "Unit tests pass", 200),
			textField("description", "Description", "", 500),
			numberField("order", "Order", 0),
			toggleField("is_required", "Required", true),
		)
	case dialogParticipant:
		s.fields = newFieldSet(
			textField("email", "Email", "teammate@example.com", 254),
			choiceField("role", "Role", string(model.RoleEditor), string(model.RoleViewer)),
		)
	}
}

func (s *detailScreen) updateDialog(msg tea.KeyMsg) tea.Cmd {
	if s.submitting {
		return nil
	}
	if msg.String() == "esc" {
		s.dialog = dialogNone
		return nil
	}
	cmd, submit := s.fields.handleKey(msg)
	if !submit {
		return cmd
	}
	return s.submit()
}

func (s *detailScreen) submit() tea.Cmd {
	client, ctx, projectID := s.app.Client, s.ctx, s.id
	title := strings.TrimSpace(s.fields.get("title").value())
	description := strings.TrimSpace(s.fields.get("description").value())

	var (
		f   form.Form
		run func() mutationMsg
	)
	switch s.dialog {
	case dialogDoD:
		f = form.DoDForm{Title: title, Description: description}
		run = func() mutationMsg {
			_, err := client.DoDs.Create(ctx, title, description, projectID)
			return mutationMsg{fallback: "Failed to create DoD", err: err}
		}
	case dialogItem:
		order := s.fields.get("order").intValue()
		required := s.fields.get("is_required").on
		dodID := s.dialogDoD
		f = form.ItemForm{Title: title, Description: description, Order: order, IsRequired: required}
		run = func() mutationMsg {
			_, err := client.DoDs.AddItem(ctx, dodID, api.NewItem{
				Title:       title,
				Description: description,
				IsRequired:  &required,
				Order:       &order,
			})
			return mutationMsg{fallback: "Failed to add DoD item", err: err}
		}
	case dialogParticipant:
		email := strings.TrimSpace(s.fields.get("email").value())
		role := s.fields.get("role").value()
		f = form.ParticipantForm{Email: email, Role: role}
		run = func() mutationMsg {
			r, err := model.ParseRole(role)
			if err != nil {
				return mutationMsg{fallback: "Failed to add participant", err: err}
			}
			p, err := client.Projects.AddParticipant(ctx, projectID, email, r)
			return mutationMsg{participant: p, fallback: "Failed to add participant", err: err}
		}
	default:
		return nil
	}

	if err := form.Validate(f); err != nil {
		fe, _ := form.AsErrors(err)
		s.fields.setErrors(fe)
		return nil
	}
	s.fields.setErrors(nil)
	s.submitting = true
	return func() tea.Msg { return run() }
}

func (s *detailScreen) View() string {
	t := ui.Current()
	var b strings.Builder

	name := fmt.Sprintf("Project #%d", s.id)
	if s.project != nil {
		name = s.project.Name
	}
	b.WriteString(t.Title.Render(name) + "\n")
	if s.project != nil && s.project.Description != "" {
		b.WriteString(t.Muted.Render(s.project.Description) + "\n")
	} else {
		b.WriteString(t.Muted.Render("Manage Definition of Done for this project") + "\n")
	}
	b.WriteString("\n" + s.tabsView() + "\n\n")

	if s.err != "" {
		b.WriteString(t.Error.Render(s.err) + "\n\n")
	}
	if s.dialog != dialogNone {
		b.WriteString(s.dialogView())
		return b.String()
	}
	if s.loading {
		b.WriteString(t.Muted.Render("Loading..."))
		return b.String()
	}
	if s.tab == tabDoD {
		b.WriteString(s.dodView())
	} else {
		b.WriteString(s.participantsView())
	}
	return b.String()
}

func (s *detailScreen) tabsView() string {
	t := ui.Current()
	labels := []string{"Definition of Done", "Participants"}
	parts := make([]string, len(labels))
	for i, l := range labels {
		if detailTab(i) == s.tab {
			parts[i] = t.Selected.Render(" " + l + " ")
		} else {
			parts[i] = t.Muted.Render(" " + l + " ")
		}
	}
	return strings.Join(parts, " ")
}

func (s *detailScreen) dodView() string {
	t := ui.Current()
	if len(s.dods) == 0 {
		return t.Muted.Render("No Definition of Done yet") + "\n" +
			t.Muted.Render("Create your first DoD to define completion criteria for this project.") + "\n\n" +
			t.Help.Render("c create DoD • tab participants • esc back")
	}

	var b strings.Builder
	for i, d := range s.dods {
		pointer := "  "
		if i == s.cursor {
			pointer = t.Selected.Render("> ")
		}
		status := t.Muted.Render(d.Status())
		if d.IsActive {
			status = t.Success.Render(d.Status())
		}
		b.WriteString(pointer + t.Accent.Render(d.Title) + "  " + status + "\n")
		if d.Description != "" {
			b.WriteString("    " + d.Description + "\n")
		}
		items := model.SortItems(d.Items)
		if len(items) == 0 {
			b.WriteString("    " + t.Muted.Render("No items yet") + "\n")
		}
		for _, it := range items {
			sym := t.SymOptional
			if it.IsRequired {
				sym = t.SymRequired
			}
			line := fmt.Sprintf("    %s %s", sym, it.Title)
			if it.Description != "" {
				line += t.Muted.Render(" - " + it.Description)
			}
			b.WriteString(line + "\n")
		}
		if len(items) > 0 {
			b.WriteString("    " + t.Muted.Render(fmt.Sprintf("%d of %d required", model.RequiredCount(items), len(items))) + "\n")
		}
		b.WriteString("    " + t.Muted.Render("Created by: "+d.Creator.DisplayName()) + "\n\n")
	}
	b.WriteString(t.Help.Render("↑/↓ select • c create DoD • i add item • tab participants • r refresh • esc back"))
	return b.String()
}

func (s *detailScreen) participantsView() string {
	t := ui.Current()
	var b strings.Builder
	if s.project != nil && s.project.Owner != nil {
		b.WriteString(fmt.Sprintf("%s  %s\n", s.project.Owner.DisplayName(), t.Success.Render("owner")))
	}
	for _, p := range s.participants {
		who := p.User.DisplayName()
		if p.User != nil && p.User.Email != "" {
			who += " <" + p.User.Email + ">"
		}
		b.WriteString(fmt.Sprintf("%s  %s\n", who, t.Muted.Render(string(p.Role))))
	}
	if b.Len() == 0 {
		b.WriteString(t.Muted.Render("No participants listed") + "\n")
	}
	b.WriteString("\n" + t.Help.Render("a add participant • tab definition of done • esc back"))
	return b.String()
}

func (s *detailScreen) dialogView() string {
	t := ui.Current()
	title := map[dialogKind]string{
		dialogDoD:         "Create Definition of Done",
		dialogItem:        "Add DoD Item",
		dialogParticipant: "Add Participant",
	}[s.dialog]
	out := t.Accent.Render(title) + "\n\n" + s.fields.view() + "\n\n"
	if s.submitting {
		return out + t.Muted.Render("Saving...")
	}
	return out + t.Help.Render("tab next field • ctrl+s save • esc cancel")
}
