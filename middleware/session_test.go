// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/urna/auth"
	"github.com/danielhkuo/urna/models"
	"github.com/danielhkuo/urna/store"
)

type fakeUsers map[string]models.User

func (f fakeUsers) GetUser(_ context.Context, id string) (models.User, error) {
	if id == "broken" {
		return models.User{}, errors.New("connection reset")
	}
	u, ok := f[id]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	return u, nil
}

func TestSessionsRequire(t *testing.T) {
	now := time.Date(2025, 5, 2, 9, 0, 0, 0, time.UTC)
	users := fakeUsers{
		"u1": {ID: "u1", Codigo: "A001", Rol: models.RoleStudent},
	}
	s := &Sessions{Salt: "salt", Users: users, Now: func() time.Time { return now }}

	var seen models.User
	handler := s.Require(func(w http.ResponseWriter, r *http.Request) {
		u, ok := UserFromContext(r.Context())
		if !ok {
			t.Error("Expected user in context")
		}
		seen = u
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{"valid", auth.IssueSession("u1", "salt", now), http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"bad signature", auth.IssueSession("u1", "other", now), http.StatusUnauthorized},
		{"expired", auth.IssueSession("u1", "salt", now.Add(-2*auth.SessionTTL)), http.StatusUnauthorized},
		{"deleted user", auth.IssueSession("gone", "salt", now), http.StatusUnauthorized},
		{"store failure", auth.IssueSession("broken", "salt", now), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = models.User{}
			req := httptest.NewRequest("GET", "/api/me", nil)
			if tt.token != "" {
				req.Header.Set(SessionHeader, tt.token)
			}
			w := httptest.NewRecorder()

			handler(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantStatus == http.StatusOK && seen.ID != "u1" {
				t.Errorf("Expected user u1 in context, got %q", seen.ID)
			}
		})
	}
}

func TestUserFromContext_Empty(t *testing.T) {
	if _, ok := UserFromContext(context.Background()); ok {
		t.Error("Expected no user in empty context")
	}
}
