package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/dod/internal/form"
	"github.com/Makepad-fr/dod/internal/session"
	"github.com/Makepad-fr/dod/internal/ui"
)

// prompt reads one line from in after writing label to out.
func prompt(in io.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.ToLower(label), ": "), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func passwordFrom(cmd *cobra.Command, flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	return prompt(cmd.InOrStdin(), cmd.ErrOrStderr(), "Password: ")
}

func newCmdLogin(s *state) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Long: `Sign in with email and password. The token and user are written to the
credentials file and reused by every later command.

The password is read from stdin when --password is not given.`,
		Args: exactArgs(0, "dod login --email <email> [--password <password>]"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := passwordFrom(cmd, password)
			if err != nil {
				return err
			}
			f := form.LoginForm{Email: strings.TrimSpace(email), Password: pw}
			if err := form.Validate(f); err != nil {
				return err
			}
			res := s.app.Session.Login(cmd.Context(), f.Email, f.Password)
			if !res.Success {
				return errors.New(res.Error)
			}
			u := s.app.Session.User()
			ui.OK(cmd.OutOrStdout(), fmt.Sprintf("logged in as %s <%s>", u.DisplayName(), u.Email))
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (prompted when empty)")
	return cmd
}

func newCmdRegister(s *state) *cobra.Command {
	var username, email, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  exactArgs(0, "dod register --username <name> --email <email> [--password <password>]"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := passwordFrom(cmd, password)
			if err != nil {
				return err
			}
			f := form.RegisterForm{
				Username: strings.TrimSpace(username),
				Email:    strings.TrimSpace(email),
				Password: pw,
			}
			if err := form.Validate(f); err != nil {
				return err
			}
			res := s.app.Session.Register(cmd.Context(), f.Username, f.Email, f.Password)
			if !res.Success {
				return errors.New(res.Error)
			}
			ui.OK(cmd.OutOrStdout(), "account created, logged in as "+s.app.Session.User().DisplayName())
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "user name (at least 3 characters)")
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password, at least 6 characters (prompted when empty)")
	return cmd
}

func newCmdLogout(s *state) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  exactArgs(0, "dod logout"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			s.app.Session.Logout()
			ui.OK(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

func newCmdWhoami(s *state) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the signed-in user",
		Args:  exactArgs(0, "dod whoami"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := s.requireLogin(); err != nil {
				return err
			}
			u := s.app.Session.User()
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", u.DisplayName(), u.Email)
			return nil
		},
	}
}

func newCmdStatus(s *state) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored session and token expiry",
		Long: `Show who is signed in, which server is used and when the token expires.

The token is decoded locally; only the server can tell whether it is still accepted.`,
		Args: exactArgs(0, "dod status"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			t := ui.Current()
			st := s.app.Session.State()
			if !st.Authenticated || st.User == nil {
				return errNotLoggedIn
			}
			u := st.User
			lines := []string{
				t.Title.Render("Session"),
				fmt.Sprintf("user     %s <%s>", u.DisplayName(), u.Email),
				fmt.Sprintf("server   %s", s.app.Client.BaseURL()),
			}
			lines = append(lines, "token    "+tokenStatus(s.app.Session, time.Now()))
			fmt.Fprintln(out, ui.Panel(lines))
			return nil
		},
	}
}

func tokenStatus(sess *session.Store, now time.Time) string {
	t := ui.Current()
	c, err := sess.Claims()
	if err != nil {
		return t.Muted.Render("expiry unknown")
	}
	exp, ok := c.Expiry()
	if !ok {
		return t.Muted.Render("no expiry")
	}
	if c.Expired(now) {
		return t.Error.Render("expired " + exp.Local().Format(time.RFC1123) + ", run: dod login")
	}
	left := exp.Sub(now).Round(time.Minute)
	return t.Success.Render(fmt.Sprintf("valid until %s (%s left)", exp.Local().Format(time.RFC1123), left))
}
