package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"
)

type AuthHTTP interface {
	Session(c *gin.Context)
}

// AuthHandler reports who the hosted identity provider says the caller is.
type AuthHandler struct{}

type sessionResponse struct {
	UserID    string     `json:"user_id"`
	Email     string     `json:"email,omitempty"`
	FullName  string     `json:"full_name,omitempty"`
	Role      string     `json:"role"`
	IsAdmin   bool       `json:"is_admin"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func (AuthHandler) Session(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	resp := sessionResponse{
		UserID:   session.UserID,
		Email:    session.Email,
		FullName: session.FullName,
		Role:     string(session.Role),
		IsAdmin:  session.IsAdmin(),
	}
	if !session.ExpiresAt.IsZero() {
		exp := session.ExpiresAt.UTC()
		resp.ExpiresAt = &exp
	}
	c.JSON(http.StatusOK, resp)
}

var _ AuthHTTP = AuthHandler{}
