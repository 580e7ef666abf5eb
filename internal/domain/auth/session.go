package auth

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrTokenRequired  = errors.New("auth: token is required")
	ErrTokenInvalid   = errors.New("auth: token is invalid")
	ErrSessionExpired = errors.New("auth: session expired")
	ErrUnauthorized   = errors.New("auth: session required")
	ErrForbidden      = errors.New("auth: insufficient permissions")
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Session is what the hosted auth service vouches for on each request.
type Session struct {
	UserID    string
	Email     string
	FullName  string
	Role      Role
	ExpiresAt time.Time
}

// NormalizeRole maps the free-form metadata role to a known role; anything
// unrecognised is a plain user.
func NormalizeRole(raw string) Role {
	if Role(strings.ToLower(strings.TrimSpace(raw))) == RoleAdmin {
		return RoleAdmin
	}
	return RoleUser
}

func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

func (s Session) Expired(at time.Time) bool {
	if s.ExpiresAt.IsZero() {
		return false
	}
	return !s.ExpiresAt.After(at)
}

// Verifier resolves a bearer token into a session.
type Verifier interface {
	Verify(ctx context.Context, token string) (Session, error)
}

type ctxKey struct{}

func ContextWithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok
}
