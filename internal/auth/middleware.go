package auth

import (
	"context"
	"net/http"

	"github.com/billcraft/billcraft/internal/platform/httpx"
)

type contextKey struct{}

// ContextWithUser attaches the authenticated user to the context.
func ContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) *User {
	user, _ := ctx.Value(contextKey{}).(*User)
	return user
}

// Middleware guards routes behind a valid session.
type Middleware struct {
	Sessions *SessionManager
	Service  *Service
}

// RequireUser rejects requests without a live session.
func (m Middleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := m.Sessions.UserID(r.Context(), r)
		if !ok {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		user, ok := m.Service.UserByID(userID)
		if !ok {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
	})
}
