// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/urna/middleware"
	"github.com/danielhkuo/urna/models"
	"github.com/danielhkuo/urna/store"
)

func validateCandidate(req models.CandidateRequest) string {
	if strings.TrimSpace(req.Nombres) == "" {
		return "nombres is required"
	}
	if strings.TrimSpace(req.Cargo) == "" {
		return "cargo is required"
	}
	return ""
}

func applyCandidate(c *models.Candidate, req models.CandidateRequest) {
	c.Nombres = strings.TrimSpace(req.Nombres)
	c.Apellido = strings.TrimSpace(req.Apellido)
	c.PartidoPolitico = strings.TrimSpace(req.PartidoPolitico)
	c.Cargo = strings.TrimSpace(req.Cargo)
	c.FotoURL = req.FotoURL
	c.Descripcion = req.Descripcion
	c.ListColor = req.ListColor
	c.ListLogoURL = req.ListLogoURL
}

// ListCandidates handles GET /organizations/{slug}/elections/{id}/candidates
func (h *ElectionHandler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	org, _, ok := memberScope(w, r, h.store, false)
	if !ok {
		return
	}
	e, ok := h.electionInOrg(w, r, org)
	if !ok {
		return
	}

	candidates, err := h.store.ListCandidates(r.Context(), e.ID)
	if err != nil {
		respondError(w, err, "list candidates")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, candidates)
}

// CreateCandidate handles POST /organizations/{slug}/elections/{id}/candidates
func (h *ElectionHandler) CreateCandidate(w http.ResponseWriter, r *http.Request) {
	org, _, ok := memberScope(w, r, h.store, true)
	if !ok {
		return
	}
	e, ok := h.electionInOrg(w, r, org)
	if !ok {
		return
	}

	var req models.CandidateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if msg := validateCandidate(req); msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	c := models.Candidate{EleccionID: e.ID}
	applyCandidate(&c, req)

	c, err := h.store.CreateCandidate(r.Context(), c)
	if err != nil {
		respondError(w, err, "create candidate")
		return
	}

	slog.Info("candidate added", "candidate_id", c.ID, "election_id", e.ID)

	middleware.JSONResponse(w, http.StatusCreated, c)
}

// candidateInOrg loads {id} and checks its election belongs to org.
func (h *ElectionHandler) candidateInOrg(w http.ResponseWriter, r *http.Request, org models.Organization) (models.Candidate, bool) {
	c, err := h.store.GetCandidate(r.Context(), r.PathValue("id"))
	if err == nil {
		var e models.Election
		e, err = h.store.GetElection(r.Context(), c.EleccionID)
		if err == nil && e.OrganizationID != org.ID {
			err = store.ErrNotFound
		}
	}
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrElectionNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Candidate not found")
		return models.Candidate{}, false
	}
	if err != nil {
		respondError(w, err, "load candidate")
		return models.Candidate{}, false
	}
	return c, true
}

// UpdateCandidate handles PUT /organizations/{slug}/candidates/{id}
func (h *ElectionHandler) UpdateCandidate(w http.ResponseWriter, r *http.Request) {
	org, _, ok := memberScope(w, r, h.store, true)
	if !ok {
		return
	}
	c, ok := h.candidateInOrg(w, r, org)
	if !ok {
		return
	}

	var req models.CandidateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if msg := validateCandidate(req); msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	applyCandidate(&c, req)
	if err := h.store.UpdateCandidate(r.Context(), c); err != nil {
		respondError(w, err, "update candidate")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, c)
}

// DeleteCandidate handles DELETE /organizations/{slug}/candidates/{id}.
// Candidates that already received votes cannot be deleted.
func (h *ElectionHandler) DeleteCandidate(w http.ResponseWriter, r *http.Request) {
	org, _, ok := memberScope(w, r, h.store, true)
	if !ok {
		return
	}
	c, ok := h.candidateInOrg(w, r, org)
	if !ok {
		return
	}

	err := h.store.DeleteCandidate(r.Context(), c.ID)
	if errors.Is(err, store.ErrConflict) {
		middleware.CodedErrorResponse(w, http.StatusConflict, "candidate_has_votes",
			"candidate already has votes and cannot be deleted")
		return
	}
	if err != nil {
		respondError(w, err, "delete candidate")
		return
	}

	slog.Info("candidate deleted", "candidate_id", c.ID, "election_id", c.EleccionID)

	w.WriteHeader(http.StatusNoContent)
}
