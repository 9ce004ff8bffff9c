package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/dod/internal/app"
	"github.com/Makepad-fr/dod/internal/form"
	"github.com/Makepad-fr/dod/internal/session"
	"github.com/Makepad-fr/dod/internal/ui"
)

type authDoneMsg struct{ res session.Result }

// authScreen is shared by login and register; only the fields and the
// session call differ.
type authScreen struct {
	app        *app.App
	ctx        context.Context
	register   bool
	fields     fieldSet
	notice     string
	err        string
	submitting bool
}

func newLoginScreen(a *app.App, ctx context.Context, notice string) *authScreen {
	return &authScreen{
		app:    a,
		ctx:    ctx,
		notice: notice,
		fields: newFieldSet(
			textField("email", "Email", "you@example.com", 254),
			passwordField("password", "Password"),
		),
	}
}

func newRegisterScreen(a *app.App, ctx context.Context) *authScreen {
	return &authScreen{
		app:      a,
		ctx:      ctx,
		register: true,
		fields: newFieldSet(
			textField("username", "Username", "jane", 64),
			textField("email", "Email", "you@example.com", 254),
			passwordField("password", "Password"),
		),
	}
}

func (s *authScreen) Init() tea.Cmd { return nil }

func (s *authScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case authDoneMsg:
		s.submitting = false
		if !msg.res.Success {
			s.err = msg.res.Error
			return s, nil
		}
		return s, navigate(app.RouteDashboard)

	case tea.KeyMsg:
		if s.submitting {
			return s, nil
		}
		switch msg.String() {
		case "ctrl+r":
			if s.register {
				return s, navigate(app.RouteLogin)
			}
			return s, navigate(app.RouteRegister)
		case "esc":
			return s, tea.Quit
		}
		cmd, submit := s.fields.handleKey(msg)
		if submit {
			return s, s.submit()
		}
		return s, cmd
	}
	return s, nil
}

func (s *authScreen) submit() tea.Cmd {
	email := strings.TrimSpace(s.fields.get("email").value())
	password := s.fields.get("password").value()
	username := strings.TrimSpace(s.fields.get("username").value())

	var f form.Form = form.LoginForm{Email: email, Password: password}
	if s.register {
		f = form.RegisterForm{Username: username, Email: email, Password: password}
	}
	if err := form.Validate(f); err != nil {
		fe, _ := form.AsErrors(err)
		s.fields.setErrors(fe)
		return nil
	}
	s.fields.setErrors(nil)
	s.err = ""
	s.notice = ""
	s.submitting = true

	sess, ctx, register := s.app.Session, s.ctx, s.register
	return func() tea.Msg {
		if register {
			return authDoneMsg{res: sess.Register(ctx, username, email, password)}
		}
		return authDoneMsg{res: sess.Login(ctx, email, password)}
	}
}

func (s *authScreen) View() string {
	t := ui.Current()
	title, hint := "Sign in", "ctrl+r create an account"
	if s.register {
		title, hint = "Create account", "ctrl+r back to sign in"
	}
	out := t.Title.Render(title) + "\n\n"
	if s.notice != "" {
		out += t.Pending.Render(s.notice) + "\n\n"
	}
	if s.err != "" {
		out += t.Error.Render(s.err) + "\n\n"
	}
	out += s.fields.view() + "\n\n"
	if s.submitting {
		out += t.Muted.Render("Signing in...")
	} else {
		out += t.Help.Render("tab next field • enter submit • " + hint + " • esc quit")
	}
	return out
}
