// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/urna/auth"
	"github.com/danielhkuo/urna/models"
	"github.com/danielhkuo/urna/store"
)

// SessionHeader carries the token issued at login.
const SessionHeader = "X-Session-Token"

type ctxKey string

const userCtxKey = ctxKey("user")

// UserLoader fetches the user a session token names.
type UserLoader interface {
	GetUser(ctx context.Context, id string) (models.User, error)
}

// Sessions authenticates requests by their session token.
type Sessions struct {
	Salt  string
	Users UserLoader
	Now   func() time.Time
}

// Require rejects requests without a valid session with 401 and passes the
// session's user to next through the request context. The user is reloaded
// on every request so ha_votado and role changes apply immediately.
func (s *Sessions) Require(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get(SessionHeader)
		if token == "" {
			ErrorResponse(w, http.StatusUnauthorized, "session token required")
			return
		}

		now := time.Now
		if s.Now != nil {
			now = s.Now
		}
		userID, err := auth.ParseSession(token, s.Salt, now())
		if err != nil {
			ErrorResponse(w, http.StatusUnauthorized, err.Error())
			return
		}

		user, err := s.Users.GetUser(r.Context(), userID)
		if errors.Is(err, store.ErrNotFound) {
			ErrorResponse(w, http.StatusUnauthorized, "session user no longer exists")
			return
		}
		if err != nil {
			slog.Error("failed to load session user", "error", err, "user_id", userID)
			ErrorResponse(w, http.StatusServiceUnavailable, "failed to load session")
			return
		}

		next(w, r.WithContext(WithUser(r.Context(), user)))
	}
}

// WithUser stores the authenticated user in ctx.
func WithUser(ctx context.Context, u models.User) context.Context {
	return context.WithValue(ctx, userCtxKey, u)
}

// UserFromContext returns the user stored by Require.
func UserFromContext(ctx context.Context) (models.User, bool) {
	u, ok := ctx.Value(userCtxKey).(models.User)
	return u, ok
}
