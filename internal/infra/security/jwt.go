package security

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"

	domainauth "tripdesk/internal/domain/auth"
)

var ErrSecretRequired = errors.New("security: jwt secret is required")

// Claims mirrors the access tokens of the hosted identity provider: the user
// id is the subject, profile data travels in user_metadata and
// server-assigned attributes in app_metadata.
type Claims struct {
	Email        string       `json:"email,omitempty"`
	UserMetadata UserMetadata `json:"user_metadata"`
	AppMetadata  AppMetadata  `json:"app_metadata"`
	jwt.RegisteredClaims
}

// UserMetadata is editable by the signed-in user through the provider's
// client API, so nothing in it is trusted for authorization by default.
type UserMetadata struct {
	FullName string `json:"full_name,omitempty"`
	Role     string `json:"role,omitempty"`
}

// AppMetadata can only be written with the provider's service key.
type AppMetadata struct {
	Role string `json:"role,omitempty"`
}

// JWTVerifier checks HS256 tokens signed with a shared secret.
type JWTVerifier struct {
	secret        []byte
	audience      string
	parser        *jwt.Parser
	userRoleClaim bool
}

type VerifierOption func(*JWTVerifier)

// WithUserMetadataRole falls back to user_metadata.role when app_metadata
// carries no role. Only for deployments where user_metadata is locked down
// at the provider.
func WithUserMetadataRole() VerifierOption {
	return func(v *JWTVerifier) { v.userRoleClaim = true }
}

func NewJWTVerifier(secret, audience string, opts ...VerifierOption) (*JWTVerifier, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrSecretRequired
	}
	v := &JWTVerifier{
		secret:   []byte(secret),
		audience: audience,
		parser:   jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

func (v *JWTVerifier) Verify(_ context.Context, token string) (domainauth.Session, error) {
	if strings.TrimSpace(token) == "" {
		return domainauth.Session{}, domainauth.ErrTokenRequired
	}
	var claims Claims
	_, err := v.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domainauth.Session{}, domainauth.ErrSessionExpired
		}
		return domainauth.Session{}, fmt.Errorf("%w: %v", domainauth.ErrTokenInvalid, err)
	}
	if v.audience != "" && !claims.VerifyAudience(v.audience, true) {
		return domainauth.Session{}, fmt.Errorf("%w: audience mismatch", domainauth.ErrTokenInvalid)
	}
	if claims.Subject == "" {
		return domainauth.Session{}, fmt.Errorf("%w: missing subject", domainauth.ErrTokenInvalid)
	}
	session := domainauth.Session{
		UserID:   claims.Subject,
		Email:    claims.Email,
		FullName: claims.UserMetadata.FullName,
		Role:     v.role(claims),
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}

func (v *JWTVerifier) role(claims Claims) domainauth.Role {
	if claims.AppMetadata.Role != "" {
		return domainauth.NormalizeRole(claims.AppMetadata.Role)
	}
	if v.userRoleClaim {
		return domainauth.NormalizeRole(claims.UserMetadata.Role)
	}
	return domainauth.RoleUser
}

// Issue signs a token for session. Used by local tooling and tests; production
// tokens come from the identity provider.
func (v *JWTVerifier) Issue(session domainauth.Session, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email:        session.Email,
		UserMetadata: UserMetadata{FullName: session.FullName},
		AppMetadata:  AppMetadata{Role: string(session.Role)},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if v.audience != "" {
		claims.Audience = jwt.ClaimStrings{v.audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

var _ domainauth.Verifier = (*JWTVerifier)(nil)
