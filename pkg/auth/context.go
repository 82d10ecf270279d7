package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// contextKey is an unexported type to prevent key collisions in context.
type contextKey string

const principalKey contextKey = "principal"

// ErrNoPrincipal is returned when no Principal exists in the request context.
// Handlers should return 401 when this error occurs.
var ErrNoPrincipal = errors.New("no principal in context")

// Principal identifies the authenticated caller for every core call.
// It replaces any notion of a global "currently logged in user": handlers
// extract it once from the request context and pass it explicitly into
// application services.
type Principal struct {
	UserID uuid.UUID
	OrgID  uuid.UUID // tenant scope — every query is filtered by this
	Role   Role
}

// PrincipalFromCtx extracts the authenticated principal from the request
// context. Returns ErrNoPrincipal if the request is unauthenticated.
func PrincipalFromCtx(ctx context.Context) (Principal, error) {
	p, ok := ctx.Value(principalKey).(Principal)
	if !ok || p.OrgID == uuid.Nil {
		return Principal{}, ErrNoPrincipal
	}
	return p, nil
}

// WithPrincipal returns a new context with the given principal attached.
// Used by the authentication middleware after validating the session.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}
