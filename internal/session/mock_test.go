package session

import (
	"context"

	"github.com/Makepad-fr/dod/internal/api"
)

// mockAuthenticator is a func-field Authenticator for tests.
type mockAuthenticator struct {
	LoginFunc    func(ctx context.Context, email, password string) (*api.AuthResponse, error)
	RegisterFunc func(ctx context.Context, username, email, password string) (*api.AuthResponse, error)
	calls        int
}

func (m *mockAuthenticator) Login(ctx context.Context, email, password string) (*api.AuthResponse, error) {
	m.calls++
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return nil, &api.Error{Status: 500}
}

func (m *mockAuthenticator) Register(ctx context.Context, username, email, password string) (*api.AuthResponse, error) {
	m.calls++
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, username, email, password)
	}
	return nil, &api.Error{Status: 500}
}
