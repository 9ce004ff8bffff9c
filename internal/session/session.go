// Package session owns the login state: the bearer token and the user it
// belongs to. It is the only writer of the persisted credential.
package session

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/Makepad-fr/dod/internal/api"
	"github.com/Makepad-fr/dod/internal/model"
	"github.com/Makepad-fr/dod/internal/store/credstore"
)

const (
	loginFallback    = "Login failed"
	registerFallback = "Registration failed"
)

// Authenticator exchanges credentials for a token and user.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*api.AuthResponse, error)
	Register(ctx context.Context, username, email, password string) (*api.AuthResponse, error)
}

// Result is what Login and Register hand back to the UI.
type Result struct {
	Success bool
	Error   string
}

// State is a point-in-time copy of the session.
type State struct {
	Token         string
	User          *model.User
	Loading       bool
	Authenticated bool
}

type Store struct {
	storage credstore.Storage
	auth    Authenticator
	log     logrus.FieldLogger

	initOnce sync.Once

	mu      sync.RWMutex
	token   string
	user    *model.User
	loading bool
}

type Option func(s *Store)

func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Store) { s.log = l }
}

// New returns a store in the loading state. Call Init once at startup.
func New(storage credstore.Storage, auth Authenticator, opts ...Option) *Store {
	s := &Store{storage: storage, auth: auth, loading: true}
	for _, o := range opts {
		o(s)
	}
	if s.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		s.log = l
	}
	return s
}

// Init restores a persisted token and user without asking the server
// whether the token is still valid. Loading ends after the first call.
func (s *Store) Init() {
	s.initOnce.Do(func() {
		token, user := s.readPersisted()

		s.mu.Lock()
		defer s.mu.Unlock()
		if token != "" && user != nil {
			s.token = token
			s.user = user
			s.log.WithField("user", user.Username).Debug("session restored")
		}
		s.loading = false
	})
}

func (s *Store) readPersisted() (string, *model.User) {
	token, okTok, err := s.storage.Get(credstore.KeyToken)
	if err != nil {
		s.log.WithError(err).Warn("read persisted token")
		return "", nil
	}
	raw, okUser, err := s.storage.Get(credstore.KeyUser)
	if err != nil {
		s.log.WithError(err).Warn("read persisted user")
		return "", nil
	}
	if !okTok && !okUser {
		return "", nil
	}
	if !okTok || !okUser || strings.TrimSpace(token) == "" {
		s.log.Warn("persisted session is incomplete, clearing credentials")
		s.clearPersisted()
		return "", nil
	}
	var u model.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		s.log.WithError(err).Warn("persisted user is corrupt, clearing credentials")
		s.clearPersisted()
		return "", nil
	}
	return token, &u
}

func (s *Store) Login(ctx context.Context, email, password string) Result {
	resp, err := s.auth.Login(ctx, email, password)
	if err != nil {
		s.log.WithError(err).Debug("login failed")
		return Result{Error: api.Message(err, loginFallback)}
	}
	return s.establish(resp, loginFallback)
}

// Register creates an account; the returned token logs the user in.
func (s *Store) Register(ctx context.Context, username, email, password string) Result {
	resp, err := s.auth.Register(ctx, username, email, password)
	if err != nil {
		s.log.WithError(err).Debug("register failed")
		return Result{Error: api.Message(err, registerFallback)}
	}
	return s.establish(resp, registerFallback)
}

func (s *Store) establish(resp *api.AuthResponse, fallback string) Result {
	if resp == nil || strings.TrimSpace(resp.Token) == "" {
		return Result{Error: fallback}
	}
	b, err := json.Marshal(resp.User)
	if err != nil {
		return Result{Error: fallback}
	}
	if err := s.storage.SetMany(map[string]string{
		credstore.KeyToken: resp.Token,
		credstore.KeyUser:  string(b),
	}); err != nil {
		s.log.WithError(err).Error("persist credentials")
		return Result{Error: fallback}
	}

	u := resp.User
	s.mu.Lock()
	s.token = resp.Token
	s.user = &u
	s.mu.Unlock()
	s.log.WithField("user", u.Username).Debug("session established")
	return Result{Success: true}
}

// Logout forgets the credential everywhere. It cannot fail.
func (s *Store) Logout() {
	s.clearPersisted()
	s.clearMemory()
	s.log.Debug("logged out")
}

// Expire is the teardown run when the server rejects the token.
func (s *Store) Expire() {
	s.clearPersisted()
	s.clearMemory()
	s.log.Info("session expired")
}

func (s *Store) clearPersisted() {
	if err := s.storage.RemoveMany(credstore.KeyToken, credstore.KeyUser); err != nil {
		s.log.WithError(err).Error("clear persisted credentials")
	}
}

func (s *Store) clearMemory() {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// User returns a copy of the logged-in user, or nil.
func (s *Store) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// PersistedToken re-reads the token from storage. It is the token source
// handed to the API client so each request sees the stored value.
func (s *Store) PersistedToken() string {
	tok, ok, err := s.storage.Get(credstore.KeyToken)
	if err != nil || !ok {
		return ""
	}
	return tok
}

// State returns a consistent snapshot taken under a single lock.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := State{Token: s.token, Loading: s.loading, Authenticated: s.token != ""}
	if s.user != nil {
		u := *s.user
		st.User = &u
	}
	return st
}
