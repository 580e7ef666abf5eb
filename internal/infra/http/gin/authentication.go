package ginserver

import (
	"log/slog"
	"strings"

	gin "github.com/gin-gonic/gin"

	"tripdesk/internal/app/services/auth"
	domainauth "tripdesk/internal/domain/auth"
)

// AuthMiddleware resolves the bearer token, when one is sent, into a session
// on the request context. Requests without a token continue anonymously and
// the command bus decides whether that is enough.
type AuthMiddleware struct {
	Service *auth.Service
	Logger  *slog.Logger
}

func (m AuthMiddleware) Handle(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if strings.TrimSpace(header) == "" || m.Service == nil {
		c.Next()
		return
	}
	session, err := m.Service.Authenticate(c.Request.Context(), header)
	if err != nil {
		respondError(c, m.Logger, err)
		return
	}
	c.Request = c.Request.WithContext(domainauth.ContextWithSession(c.Request.Context(), session))
	c.Next()
}

func currentSession(c *gin.Context) (domainauth.Session, bool) {
	return domainauth.FromContext(c.Request.Context())
}

// requireSession answers 401 when the request is anonymous.
func requireSession(c *gin.Context) (domainauth.Session, bool) {
	session, ok := currentSession(c)
	if !ok {
		respondError(c, nil, domainauth.ErrUnauthorized)
		return domainauth.Session{}, false
	}
	return session, true
}
