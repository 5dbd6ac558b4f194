// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/danielhkuo/urna/auth"
	"github.com/danielhkuo/urna/middleware"
	"github.com/danielhkuo/urna/models"
	"github.com/danielhkuo/urna/store"
	"github.com/danielhkuo/urna/store/sqlstore"
)

const defaultPrimaryColor = "#1d4ed8"

type OrganizationHandler struct {
	store *sqlstore.Store
}

func NewOrganizationHandler(st *sqlstore.Store) *OrganizationHandler {
	return &OrganizationHandler{store: st}
}

// Slugify lowercases name, drops accents, turns spaces into '-' and strips
// anything outside [a-z0-9-].
func Slugify(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, name)
	if err != nil {
		plain = name
	}

	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(plain)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune('-')
		}
	}
	return b.String()
}

func requireSuperAdmin(w http.ResponseWriter, r *http.Request) bool {
	user, ok := currentUser(w, r)
	if !ok {
		return false
	}
	if user.Rol != models.RoleSuperAdmin {
		middleware.ErrorResponse(w, http.StatusForbidden, "super admin role required")
		return false
	}
	return true
}

// List handles GET /organizations
func (h *OrganizationHandler) List(w http.ResponseWriter, r *http.Request) {
	if !requireSuperAdmin(w, r) {
		return
	}

	orgs, err := h.store.ListOrganizations(r.Context())
	if err != nil {
		respondError(w, err, "list organizations")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, orgs)
}

// Create handles POST /organizations. The organization and its first admin
// are created together or not at all.
func (h *OrganizationHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !requireSuperAdmin(w, r) {
		return
	}

	var req models.CreateOrganizationRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}
	slug := req.Slug
	if strings.TrimSpace(slug) == "" {
		slug = req.Name
	}
	slug = Slugify(slug)
	if slug == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "slug must contain letters or digits")
		return
	}
	if strings.TrimSpace(req.Admin.Codigo) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "admin.codigo is required")
		return
	}

	hash, err := auth.HashPassword(req.Admin.Password)
	if errors.Is(err, auth.ErrWeakPassword) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "admin.password: "+err.Error())
		return
	}
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create organization")
		return
	}

	color := req.PrimaryColor
	if color == "" {
		color = defaultPrimaryColor
	}

	admin := models.User{
		Codigo:          req.Admin.Codigo,
		PrimerNombre:    req.Admin.PrimerNombre,
		SegundoNombre:   req.Admin.SegundoNombre,
		PrimerApellido:  req.Admin.PrimerApellido,
		SegundoApellido: req.Admin.SegundoApellido,
		PasswordHash:    hash,
	}
	if email := strings.TrimSpace(req.Admin.Email); email != "" {
		admin.Email = &email
	}

	org, admin, err := h.store.CreateOrganization(r.Context(), models.Organization{
		Name:         req.Name,
		Slug:         slug,
		PrimaryColor: color,
		LogoURL:      req.LogoURL,
		Plan:         req.Plan,
	}, admin)
	if errors.Is(err, store.ErrConflict) {
		middleware.ErrorResponse(w, http.StatusConflict, "slug or admin email already in use")
		return
	}
	if err != nil {
		respondError(w, err, "create organization")
		return
	}

	slog.Info("organization created", "organization_id", org.ID, "slug", org.Slug, "admin_id", admin.ID)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateOrganizationResponse{
		Organization: org,
		Admin:        admin,
	})
}

// Get handles GET /organizations/{slug}. Branding is public so the login
// page can render it.
func (h *OrganizationHandler) Get(w http.ResponseWriter, r *http.Request) {
	org, ok := loadOrg(w, r, h.store)
	if !ok {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, org)
}

// Update handles PUT /organizations/{slug}
func (h *OrganizationHandler) Update(w http.ResponseWriter, r *http.Request) {
	org, _, ok := memberScope(w, r, h.store, true)
	if !ok {
		return
	}

	var req models.UpdateOrganizationRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}

	org.Name = strings.TrimSpace(req.Name)
	if req.PrimaryColor != "" {
		org.PrimaryColor = req.PrimaryColor
	}
	org.LogoURL = req.LogoURL
	org.Plan = req.Plan

	if err := h.store.UpdateOrganization(r.Context(), org); err != nil {
		respondError(w, err, "update organization")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, org)
}

// Delete handles DELETE /organizations/{slug}, removing everything the
// organization owns.
func (h *OrganizationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !requireSuperAdmin(w, r) {
		return
	}
	org, ok := loadOrg(w, r, h.store)
	if !ok {
		return
	}

	if err := h.store.DeleteOrganization(r.Context(), org.ID); err != nil {
		respondError(w, err, "delete organization")
		return
	}

	slog.Info("organization deleted", "organization_id", org.ID, "slug", org.Slug)

	w.WriteHeader(http.StatusNoContent)
}
