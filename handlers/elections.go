// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/urna/lifecycle"
	"github.com/danielhkuo/urna/middleware"
	"github.com/danielhkuo/urna/models"
	"github.com/danielhkuo/urna/store"
	"github.com/danielhkuo/urna/store/sqlstore"
	"github.com/danielhkuo/urna/voting"
)

type ElectionHandler struct {
	store   *sqlstore.Store
	service *voting.Service
}

func NewElectionHandler(st *sqlstore.Store, service *voting.Service) *ElectionHandler {
	return &ElectionHandler{store: st, service: service}
}

func (h *ElectionHandler) evaluate(e models.Election) models.Election {
	return lifecycle.Apply(e, h.service.Now(), h.service.Location())
}

// electionInOrg loads {id} and checks it belongs to org.
func (h *ElectionHandler) electionInOrg(w http.ResponseWriter, r *http.Request, org models.Organization) (models.Election, bool) {
	e, err := h.store.GetElection(r.Context(), r.PathValue("id"))
	if err == nil && e.OrganizationID != org.ID {
		err = store.ErrElectionNotFound
	}
	if err != nil {
		respondError(w, err, "load election")
		return models.Election{}, false
	}
	return h.evaluate(e), true
}

func validateElection(req models.ElectionRequest) string {
	switch {
	case strings.TrimSpace(req.Nombre) == "":
		return "nombre is required"
	case !lifecycle.ValidRange(req.FechaInicio, req.FechaFin):
		return "fecha_inicio and fecha_fin must be YYYY-MM-DD with fecha_fin not before fecha_inicio"
	}
	return ""
}

// List handles GET /organizations/{slug}/elections
func (h *ElectionHandler) List(w http.ResponseWriter, r *http.Request) {
	org, _, ok := memberScope(w, r, h.store, false)
	if !ok {
		return
	}

	elections, err := h.store.ListElections(r.Context(), org.ID)
	if err != nil {
		respondError(w, err, "list elections")
		return
	}
	middleware.JSONResponse(w, http.StatusOK,
		lifecycle.ApplyAll(elections, h.service.Now(), h.service.Location()))
}

// Create handles POST /organizations/{slug}/elections
func (h *ElectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	org, _, ok := memberScope(w, r, h.store, true)
	if !ok {
		return
	}

	var req models.ElectionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if msg := validateElection(req); msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	e := h.evaluate(models.Election{
		OrganizationID:     org.ID,
		Nombre:             strings.TrimSpace(req.Nombre),
		Descripcion:        req.Descripcion,
		FechaInicio:        req.FechaInicio,
		FechaFin:           req.FechaFin,
		ResultadosPublicos: req.ResultadosPublicos,
		Options:            req.Options,
	})

	e, err := h.store.CreateElection(r.Context(), e)
	if err != nil {
		respondError(w, err, "create election")
		return
	}

	slog.Info("election created", "election_id", e.ID, "organization_id", org.ID, "estado", e.Estado)

	middleware.JSONResponse(w, http.StatusCreated, e)
}

// Get handles GET /organizations/{slug}/elections/{id}
func (h *ElectionHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	middleware.JSONResponse(w, http.StatusOK, models.ElectionWithCandidates{
		Election:   e,
		Candidates: candidates,
	})
}

// Update handles PUT /organizations/{slug}/elections/{id}
func (h *ElectionHandler) Update(w http.ResponseWriter, r *http.Request) {
	org, _, ok := memberScope(w, r, h.store, true)
	if !ok {
		return
	}
	e, ok := h.electionInOrg(w, r, org)
	if !ok {
		return
	}

	var req models.ElectionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if msg := validateElection(req); msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	e.Nombre = strings.TrimSpace(req.Nombre)
	e.Descripcion = req.Descripcion
	e.FechaInicio = req.FechaInicio
	e.FechaFin = req.FechaFin
	e.ResultadosPublicos = req.ResultadosPublicos
	e.Options = req.Options
	e = h.evaluate(e)

	if err := h.store.UpdateElection(r.Context(), e); err != nil {
		respondError(w, err, "update election")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, e)
}

// Delete handles DELETE /organizations/{slug}/elections/{id}
func (h *ElectionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	org, _, ok := memberScope(w, r, h.store, true)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if err := h.store.DeleteElection(r.Context(), org.ID, id); err != nil {
		respondError(w, err, "delete election")
		return
	}

	slog.Info("election deleted", "election_id", id, "organization_id", org.ID)

	w.WriteHeader(http.StatusNoContent)
}
