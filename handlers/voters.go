// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/urna/auth"
	"github.com/danielhkuo/urna/middleware"
	"github.com/danielhkuo/urna/models"
	"github.com/danielhkuo/urna/store"
	"github.com/danielhkuo/urna/store/sqlstore"
)

type VoterHandler struct {
	store *sqlstore.Store
}

func NewVoterHandler(st *sqlstore.Store) *VoterHandler {
	return &VoterHandler{store: st}
}

// voterFromRequest builds the user a create or update request describes.
// It returns a client error message when the request is invalid. The
// password is hashed only when one is given.
func voterFromRequest(req models.VoterRequest, orgID string, creating bool) (models.User, string) {
	role := models.RoleStudent
	if req.Rol != nil {
		role = *req.Rol
	}

	switch {
	case strings.TrimSpace(req.Codigo) == "":
		return models.User{}, "codigo is required"
	case role == models.RoleSuperAdmin:
		return models.User{}, "super admins cannot belong to an organization"
	case creating && role.RequiresPassword() && req.Password == "":
		return models.User{}, "password is required for this role"
	}

	u := models.User{
		OrganizationID:  &orgID,
		Codigo:          strings.TrimSpace(req.Codigo),
		Rol:             role,
		PrimerNombre:    strings.TrimSpace(req.PrimerNombre),
		SegundoNombre:   strings.TrimSpace(req.SegundoNombre),
		PrimerApellido:  strings.TrimSpace(req.PrimerApellido),
		SegundoApellido: strings.TrimSpace(req.SegundoApellido),
		Curso:           strings.TrimSpace(req.Curso),
		Paralelo:        strings.TrimSpace(req.Paralelo),
		Email:           req.Email,
	}

	if req.Password != "" && role.RequiresPassword() {
		hash, err := auth.HashPassword(req.Password)
		if errors.Is(err, auth.ErrWeakPassword) {
			return models.User{}, err.Error()
		}
		if err != nil {
			slog.Error("failed to hash password", "error", err)
			return models.User{}, "password could not be stored"
		}
		u.PasswordHash = hash
	}
	return u, ""
}

// List handles GET /organizations/{slug}/voters
func (h *VoterHandler) List(w http.ResponseWriter, r *http.Request) {
	org, _, ok := memberScope(w, r, h.store, true)
	if !ok {
		return
	}

	users, err := h.store.ListUsers(r.Context(), org.ID)
	if err != nil {
		respondError(w, err, "list voters")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, users)
}

// Create handles POST /organizations/{slug}/voters
func (h *VoterHandler) Create(w http.ResponseWriter, r *http.Request) {
	org, _, ok := memberScope(w, r, h.store, true)
	if !ok {
		return
	}

	var req models.VoterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	u, msg := voterFromRequest(req, org.ID, true)
	if msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	u, err := h.store.CreateUser(r.Context(), u)
	if errors.Is(err, store.ErrConflict) {
		middleware.ErrorResponse(w, http.StatusConflict, "codigo already exists in this organization")
		return
	}
	if err != nil {
		respondError(w, err, "create voter")
		return
	}

	slog.Info("user created", "user_id", u.ID, "organization_id", org.ID, "rol", u.Rol)

	middleware.JSONResponse(w, http.StatusCreated, u)
}

// Update handles PUT /organizations/{slug}/voters/{id}
func (h *VoterHandler) Update(w http.ResponseWriter, r *http.Request) {
	org, _, ok := memberScope(w, r, h.store, true)
	if !ok {
		return
	}

	var req models.VoterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	u, msg := voterFromRequest(req, org.ID, false)
	if msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}
	u.ID = r.PathValue("id")

	err := h.store.UpdateUser(r.Context(), u)
	if errors.Is(err, store.ErrConflict) {
		middleware.ErrorResponse(w, http.StatusConflict, "codigo already exists in this organization")
		return
	}
	if err != nil {
		respondError(w, err, "update voter")
		return
	}

	updated, err := h.store.GetUser(r.Context(), u.ID)
	if err != nil {
		respondError(w, err, "load voter")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, updated)
}

// Delete handles DELETE /organizations/{slug}/voters/{id}. Users who have
// voted are kept.
func (h *VoterHandler) Delete(w http.ResponseWriter, r *http.Request) {
	org, user, ok := memberScope(w, r, h.store, true)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if id == user.ID {
		middleware.ErrorResponse(w, http.StatusConflict, "cannot delete your own account")
		return
	}

	err := h.store.DeleteUser(r.Context(), org.ID, id)
	if errors.Is(err, store.ErrConflict) {
		middleware.CodedErrorResponse(w, http.StatusConflict, "voter_has_votes",
			"voter has already voted and cannot be deleted")
		return
	}
	if err != nil {
		respondError(w, err, "delete voter")
		return
	}

	slog.Info("user deleted", "user_id", id, "organization_id", org.ID)

	w.WriteHeader(http.StatusNoContent)
}

// Import handles POST /organizations/{slug}/voters/import. Rows carry the
// voter CSV columns; codes already present, or repeated in the batch, are
// skipped and reported.
func (h *VoterHandler) Import(w http.ResponseWriter, r *http.Request) {
	org, _, ok := memberScope(w, r, h.store, true)
	if !ok {
		return
	}

	var req models.ImportVotersRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if len(req.Voters) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "voters must not be empty")
		return
	}

	rows := make([]models.User, 0, len(req.Voters))
	for _, v := range req.Voters {
		rows = append(rows, models.User{
			Codigo:          v.Codigo,
			PrimerNombre:    strings.TrimSpace(v.PrimerNombre),
			SegundoNombre:   strings.TrimSpace(v.SegundoNombre),
			PrimerApellido:  strings.TrimSpace(v.PrimerApellido),
			SegundoApellido: strings.TrimSpace(v.SegundoApellido),
			Curso:           strings.TrimSpace(v.Curso),
			Paralelo:        strings.TrimSpace(v.Paralelo),
		})
	}

	imported, skipped, err := h.store.ImportVoters(r.Context(), org.ID, rows)
	if err != nil {
		respondError(w, err, "import voters")
		return
	}

	slog.Info("voters imported",
		"organization_id", org.ID,
		"imported", humanize.Comma(int64(len(imported))),
		"skipped", humanize.Comma(int64(len(skipped))))

	middleware.JSONResponse(w, http.StatusOK, models.ImportVotersResponse{
		Imported: imported,
		Skipped:  skipped,
	})
}
