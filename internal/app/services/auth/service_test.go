package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "tripdesk/internal/domain/auth"
)

type stubVerifier struct {
	session domainauth.Session
	err     error
	token   string
}

func (v *stubVerifier) Verify(_ context.Context, token string) (domainauth.Session, error) {
	v.token = token
	return v.session, v.err
}

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		token  string
		err    error
	}{
		{"Bearer abc", "abc", nil},
		{"bearer   abc  ", "abc", nil},
		{"", "", domainauth.ErrTokenRequired},
		{"Bearer ", "", domainauth.ErrTokenRequired},
		{"Basic dXNlcg==", "", ErrMalformedHeader},
		{"abc", "", ErrMalformedHeader},
	}
	for _, tc := range cases {
		token, err := BearerToken(tc.header)
		if tc.err != nil {
			assert.ErrorIs(t, err, tc.err, tc.header)
			continue
		}
		require.NoError(t, err, tc.header)
		assert.Equal(t, tc.token, token)
	}
}

func TestAuthenticateRejectsExpiredSessions(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	verifier := &stubVerifier{session: domainauth.Session{UserID: "u1", ExpiresAt: now.Add(-time.Minute)}}
	svc := &Service{Verifier: verifier, Now: func() time.Time { return now }}

	_, err := svc.Authenticate(context.Background(), "Bearer tok")
	assert.ErrorIs(t, err, domainauth.ErrSessionExpired)
	assert.Equal(t, "tok", verifier.token)

	verifier.session.ExpiresAt = now.Add(time.Hour)
	session, err := svc.Authenticate(context.Background(), "Bearer tok")
	require.NoError(t, err)
	assert.Equal(t, "u1", session.UserID)
}

func TestAuthenticatePropagatesVerifierErrors(t *testing.T) {
	svc := &Service{Verifier: &stubVerifier{err: domainauth.ErrTokenInvalid}}
	_, err := svc.Authenticate(context.Background(), "Bearer tok")
	assert.ErrorIs(t, err, domainauth.ErrTokenInvalid)

	_, err = (&Service{}).Authenticate(context.Background(), "Bearer tok")
	assert.Error(t, err)
}
