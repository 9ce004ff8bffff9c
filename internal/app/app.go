// Package app wires storage, session and API client together.
package app

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/Makepad-fr/dod/internal/api"
	"github.com/Makepad-fr/dod/internal/config"
	"github.com/Makepad-fr/dod/internal/session"
	"github.com/Makepad-fr/dod/internal/store/credstore"
)

// Version is set at build time with -ldflags "-X github.com/Makepad-fr/dod/internal/app.Version=...".
var Version = "dev"

// App is the single session context shared by every screen and command.
type App struct {
	Config  *config.Config
	Storage credstore.Storage
	Session *session.Store
	Client  *api.Client
	Log     *logrus.Logger

	mu  sync.RWMutex
	nav Navigator
}

type Option func(a *App)

// WithStorage replaces the credentials file, e.g. with memory storage.
func WithStorage(s credstore.Storage) Option {
	return func(a *App) { a.Storage = s }
}

func WithNavigator(n Navigator) Option {
	return func(a *App) { a.nav = n }
}

func WithLogOutput(w io.Writer) Option {
	return func(a *App) { a.Log.SetOutput(w) }
}

// New builds the app. The client reads the persisted token on every request
// and any 401 expires the session and navigates to the login route.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	a := &App{Config: cfg, Log: newLogger(cfg.Debug)}
	for _, o := range opts {
		o(a)
	}
	if a.Storage == nil {
		path := cfg.Credentials
		if path == "" {
			p, err := credstore.DefaultPath()
			if err != nil {
				return nil, fmt.Errorf("credentials path: %w", err)
			}
			path = p
		}
		a.Storage = credstore.NewFileStorage(path)
	}

	var sess *session.Store
	a.Client = api.New(cfg.APIURL,
		api.WithTimeout(cfg.Timeout),
		api.WithUserAgent("dod/"+Version),
		api.WithLogger(a.Log.WithField("component", "api")),
		api.WithTokenSource(func() string { return sess.PersistedToken() }),
		api.WithUnauthorizedHandler(a.invalidate),
	)
	sess = session.New(a.Storage, a.Client.Auth,
		session.WithLogger(a.Log.WithField("component", "session")),
	)
	a.Session = sess
	return a, nil
}

func newLogger(debug bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: !debug})
	l.SetLevel(logrus.WarnLevel)
	if debug {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}

// Init restores the persisted session. It never calls the server.
func (a *App) Init() { a.Session.Init() }

// SetNavigator replaces the navigation target, for shells built after the app.
func (a *App) SetNavigator(n Navigator) {
	a.mu.Lock()
	a.nav = n
	a.mu.Unlock()
}

// Navigate sends the shell to route after applying the route guards,
// and returns the route actually taken.
func (a *App) Navigate(route string) string {
	to := Guard(route, a.Session.IsAuthenticated())
	a.mu.RLock()
	nav := a.nav
	a.mu.RUnlock()
	if nav != nil {
		nav.Navigate(to)
	}
	return to
}

func (a *App) invalidate() {
	a.Session.Expire()
	a.Navigate(RouteLogin)
}
