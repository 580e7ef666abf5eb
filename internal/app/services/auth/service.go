package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	domainauth "tripdesk/internal/domain/auth"
)

var ErrMalformedHeader = errors.New("auth: authorization header must use the Bearer scheme")

// Service turns the Authorization header of a request into a session. Tokens
// are issued by the hosted identity provider; this service only checks them.
type Service struct {
	Verifier domainauth.Verifier
	Now      func() time.Time
	Logger   *slog.Logger
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", domainauth.ErrTokenRequired
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrMalformedHeader
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", domainauth.ErrTokenRequired
	}
	return token, nil
}

// Authenticate verifies the header and rejects expired sessions.
func (s *Service) Authenticate(ctx context.Context, header string) (domainauth.Session, error) {
	if s.Verifier == nil {
		return domainauth.Session{}, errors.New("auth: verifier required")
	}
	token, err := BearerToken(header)
	if err != nil {
		return domainauth.Session{}, err
	}
	session, err := s.Verifier.Verify(ctx, token)
	if err != nil {
		if s.Logger != nil {
			s.Logger.DebugContext(ctx, "token rejected", "error", err)
		}
		return domainauth.Session{}, err
	}
	if session.Expired(s.now()) {
		return domainauth.Session{}, domainauth.ErrSessionExpired
	}
	return session, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
