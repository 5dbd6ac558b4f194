// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/urna/auth"
	"github.com/danielhkuo/urna/cliparse"
	"github.com/danielhkuo/urna/middleware"
	"github.com/danielhkuo/urna/models"
	"github.com/danielhkuo/urna/store"
	"github.com/danielhkuo/urna/store/sqlstore"
)

type SessionHandler struct {
	store *sqlstore.Store
	cfg   cliparse.Config
}

func NewSessionHandler(st *sqlstore.Store, cfg cliparse.Config) *SessionHandler {
	return &SessionHandler{store: st, cfg: cfg}
}

// SuperAdminLogin handles POST /superadmin/login
func (h *SessionHandler) SuperAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req models.SuperAdminLoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.store.FindSuperAdminByEmail(r.Context(), req.Email)
	if errors.Is(err, store.ErrNotFound) {
		h.loginFailed(w, r, "", req.Email)
		return
	}
	if err != nil {
		respondError(w, err, "log in")
		return
	}

	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		h.loginFailed(w, r, "", req.Email)
		return
	}

	h.issue(w, user)
}

// Login handles POST /organizations/{slug}/login. Students log in with their
// code alone; administrators also need their password.
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	org, ok := loadOrg(w, r, h.store)
	if !ok {
		return
	}

	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if strings.TrimSpace(req.Codigo) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "codigo is required")
		return
	}

	user, err := h.store.FindUserByCode(r.Context(), org.ID, req.Codigo)
	if errors.Is(err, store.ErrNotFound) {
		h.loginFailed(w, r, org.Slug, req.Codigo)
		return
	}
	if err != nil {
		respondError(w, err, "log in")
		return
	}

	if user.Rol.RequiresPassword() {
		if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
			h.loginFailed(w, r, org.Slug, req.Codigo)
			return
		}
	}

	h.issue(w, user)
}

func (h *SessionHandler) loginFailed(w http.ResponseWriter, r *http.Request, slug, who string) {
	slog.Warn("login failed", "organization", slug, "login", who, "ip", middleware.GetClientIP(r))
	middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid credentials")
}

func (h *SessionHandler) issue(w http.ResponseWriter, user models.User) {
	token := auth.IssueSession(user.ID, h.cfg.SessionSalt, time.Now())

	slog.Info("session issued", "user_id", user.ID, "rol", user.Rol)

	middleware.JSONResponse(w, http.StatusOK, models.LoginResponse{
		SessionToken: token,
		User:         user,
	})
}

// Me handles GET /me
func (h *SessionHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, user)
}

// ChangePassword handles PUT /me/password
func (h *SessionHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	if !user.Rol.RequiresPassword() {
		middleware.ErrorResponse(w, http.StatusForbidden, "this account has no password")
		return
	}

	var req models.ChangePasswordRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	newHash, err := auth.HashPassword(req.NewPassword)
	if errors.Is(err, auth.ErrWeakPassword) {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to change password")
		return
	}

	err = h.store.ChangePassword(r.Context(), user.ID, func(current string) error {
		return auth.CheckPassword(current, req.CurrentPassword)
	}, newHash)
	if errors.Is(err, auth.ErrInvalidPassword) {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "current password is incorrect")
		return
	}
	if err != nil {
		respondError(w, err, "change password")
		return
	}

	slog.Info("password changed", "user_id", user.ID)

	w.WriteHeader(http.StatusNoContent)
}
