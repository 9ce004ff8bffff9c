// Package cli is the dod command tree.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/dod/internal/api"
	"github.com/Makepad-fr/dod/internal/app"
	"github.com/Makepad-fr/dod/internal/config"
	"github.com/Makepad-fr/dod/internal/store/credstore"
	"github.com/Makepad-fr/dod/internal/ui"
)

var errNotLoggedIn = errors.New("not logged in, run: dod login")

// usageError exits with status 2. An empty msg prints nothing.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// state is shared by every command of one invocation.
type state struct {
	appOpts []app.Option

	theme     string
	debug     bool
	apiURL    string
	ephemeral bool

	app *app.App
}

// Execute runs dod with the process arguments and returns the exit code:
// 0 ok, 1 error, 2 usage.
func Execute() int {
	return run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

func run(args []string, in io.Reader, out, errOut io.Writer, opts ...app.Option) int {
	root := newRootCmd(opts...)
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.Execute()
	if err == nil {
		return 0
	}
	if errors.Is(err, api.ErrUnauthorized) {
		ui.Fail(errOut, "session expired, run: dod login")
		return 1
	}
	var ue *usageError
	if errors.As(err, &ue) {
		if ue.msg != "" {
			ui.Fail(errOut, ue.msg)
		}
		return 2
	}
	ui.Fail(errOut, err.Error())
	return 1
}

func newRootCmd(opts ...app.Option) *cobra.Command {
	s := &state{appOpts: opts}

	cmd := &cobra.Command{
		Use:   "dod",
		Short: "Manage Definition of Done checklists from the terminal",
		Long: `dod talks to a DoD Manager server: sign in once, then list and create
projects, attach Definition of Done checklists and add their items.

Run "dod tui" for the interactive interface.`,
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return s.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usagef("unknown command %q", args[0])
			}
			_ = cmd.Help()
			return &usageError{}
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{msg: err.Error()}
	})

	f := cmd.PersistentFlags()
	f.StringVar(&s.theme, "theme", "", "color theme: classic, neon or mono (default $DOD_THEME)")
	f.BoolVar(&s.debug, "debug", false, "log requests to stderr")
	f.StringVar(&s.apiURL, "api-url", "", "API base URL (default $DOD_API_URL)")
	f.BoolVar(&s.ephemeral, "ephemeral", false, "keep the session in memory only, nothing is written to disk")

	cmd.AddCommand(
		newCmdLogin(s),
		newCmdRegister(s),
		newCmdLogout(s),
		newCmdStatus(s),
		newCmdWhoami(s),
		newCmdProjects(s),
		newCmdDoD(s),
		newCmdTUI(s),
	)
	return cmd
}

// setup loads the configuration, applies root flags and restores the session.
func (s *state) setup(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	flags := cmd.Flags()
	if flags.Changed("theme") {
		cfg.Theme = s.theme
	}
	if flags.Changed("debug") {
		cfg.Debug = s.debug
	}
	if flags.Changed("api-url") {
		cfg.APIURL = s.apiURL
	}
	ui.SetTheme(cfg.Theme)

	opts := s.appOpts
	if s.ephemeral {
		opts = append([]app.Option{app.WithStorage(credstore.NewMemoryStorage())}, opts...)
	}
	a, err := app.New(cfg, opts...)
	if err != nil {
		return err
	}
	a.Init()
	a.Log.WithField("api", cfg.APIURL).Debug("session restored")
	s.app = a
	return nil
}

func (s *state) requireLogin() error {
	if !s.app.Session.IsAuthenticated() {
		return errNotLoggedIn
	}
	return nil
}

// exactArgs is cobra.ExactArgs reporting a usage error.
func exactArgs(n int, usage string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) != n {
			return usagef("usage: %s", usage)
		}
		return nil
	}
}
