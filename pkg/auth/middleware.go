package auth

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/ghuser/stockline/pkg/httpx"
	"github.com/ghuser/stockline/pkg/logger"
)

const sessionName = "stockline_session"

const (
	sessionUserIDKey = "user_id"
	sessionOrgIDKey  = "org_id"
	sessionRoleKey   = "role"
)

// RequireAuth is a chi middleware that enforces authentication via session cookies.
// It reads the session cookie, builds the request Principal, and injects it into
// the request context. Returns 401 Unauthorized if the session is missing,
// invalid, or lacks a valid org_id/user_id/role triple.
//
// After this middleware, handlers can safely call auth.PrincipalFromCtx(r.Context()).
func RequireAuth(store sessions.Store, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := store.Get(r, sessionName)
			if err != nil {
				log.WarnContext(r.Context(), "invalid session cookie", "error", err)
				httpx.JSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
				return
			}

			p, ok := principalFromSession(session.Values)
			if !ok {
				log.WarnContext(r.Context(), "session missing principal data")
				httpx.JSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
				return
			}

			ctx := WithPrincipal(r.Context(), p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func principalFromSession(values map[any]any) (Principal, bool) {
	userIDStr, ok := values[sessionUserIDKey].(string)
	if !ok || userIDStr == "" {
		return Principal{}, false
	}
	orgIDStr, ok := values[sessionOrgIDKey].(string)
	if !ok || orgIDStr == "" {
		return Principal{}, false
	}
	roleStr, ok := values[sessionRoleKey].(string)
	if !ok {
		return Principal{}, false
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return Principal{}, false
	}
	orgID, err := uuid.Parse(orgIDStr)
	if err != nil {
		return Principal{}, false
	}
	role, ok := ParseRole(roleStr)
	if !ok {
		return Principal{}, false
	}

	return Principal{UserID: userID, OrgID: orgID, Role: role}, true
}
