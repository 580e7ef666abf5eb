package middleware

import (
	"context"

	domainauth "tripdesk/internal/domain/auth"
)

type Authorizer interface {
	Authorize(ctx context.Context, message any) error
}

// Access is the caller level a message requires.
type Access int

const (
	AccessPublic Access = iota
	AccessSession
	AccessAdmin
)

// Guarded is implemented by messages that need more than anonymous access.
type Guarded interface {
	RequiredAccess() Access
}

// RoleAuthorizer checks the session stored in the context against the
// message's required access.
type RoleAuthorizer struct{}

func (RoleAuthorizer) Authorize(ctx context.Context, message any) error {
	guarded, ok := message.(Guarded)
	if !ok || guarded.RequiredAccess() == AccessPublic {
		return nil
	}
	session, ok := domainauth.FromContext(ctx)
	if !ok {
		return domainauth.ErrUnauthorized
	}
	if guarded.RequiredAccess() == AccessAdmin && !session.IsAdmin() {
		return domainauth.ErrForbidden
	}
	return nil
}

func Authorization(a Authorizer) CommandMiddleware {
	if a == nil {
		panic("middleware: authorizer required")
	}
	return guardCommand(a.Authorize)
}

func QueryAuthorization(a Authorizer) QueryMiddleware {
	if a == nil {
		panic("middleware: authorizer required")
	}
	return guardQuery(a.Authorize)
}
