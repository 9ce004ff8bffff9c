package api

import (
	"context"
	"net/http"

	"github.com/Makepad-fr/dod/internal/model"
)

// AuthResponse is what login and register both return.
type AuthResponse struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

type AuthService struct{ c *Client }

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	in := map[string]string{"email": email, "password": password}
	var out AuthResponse
	if err := s.c.Do(ctx, http.MethodPost, "/auth/login", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *AuthService) Register(ctx context.Context, username, email, password string) (*AuthResponse, error) {
	in := map[string]string{"username": username, "email": email, "password": password}
	var out AuthResponse
	if err := s.c.Do(ctx, http.MethodPost, "/auth/register", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
