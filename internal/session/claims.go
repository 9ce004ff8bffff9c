package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNotAuthenticated = errors.New("not logged in")
	// ErrOpaqueToken means the token is not a JWT and cannot be introspected locally.
	ErrOpaqueToken = errors.New("opaque token")
)

// Claims is the payload the DoD backend puts in its tokens.
type Claims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// Expiry returns the expiry, if the token carries one.
func (c *Claims) Expiry() (time.Time, bool) {
	if c.ExpiresAt == nil {
		return time.Time{}, false
	}
	return c.ExpiresAt.Time, true
}

// Expired reports whether the token's exp is before now.
func (c *Claims) Expired(now time.Time) bool {
	exp, ok := c.Expiry()
	return ok && exp.Before(now)
}

// Claims decodes the current token without verifying its signature.
// Only the server can say whether the token is valid.
func (s *Store) Claims() (*Claims, error) {
	tok := s.Token()
	if tok == "" {
		return nil, ErrNotAuthenticated
	}
	return ParseClaims(tok)
}

func ParseClaims(token string) (*Claims, error) {
	var c Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpaqueToken, err)
	}
	return &c, nil
}
