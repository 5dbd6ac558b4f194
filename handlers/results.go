// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/urna/middleware"
	"github.com/danielhkuo/urna/models"
	"github.com/danielhkuo/urna/receipt"
	"github.com/danielhkuo/urna/store"
	"github.com/danielhkuo/urna/store/sqlstore"
	"github.com/danielhkuo/urna/tally"
	"github.com/danielhkuo/urna/voting"
)

const (
	defaultAuditLimit = 200
	maxAuditLimit     = 1000
)

type ResultsHandler struct {
	store   *sqlstore.Store
	service *voting.Service
}

func NewResultsHandler(st *sqlstore.Store, service *voting.Service) *ResultsHandler {
	return &ResultsHandler{store: st, service: service}
}

// GetResults handles GET /organizations/{slug}/elections/{id}/results.
// Admins always see the tally; other members only once the election is
// closed and its results are public.
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	org, user, ok := memberScope(w, r, h.store, false)
	if !ok {
		return
	}

	election, t, err := h.service.Results(r.Context(), org.ID, r.PathValue("id"))
	if err != nil {
		respondError(w, err, "compute results")
		return
	}

	if !isAdmin(user, org) {
		if election.Estado != models.StatusClosed {
			middleware.ErrorResponse(w, http.StatusForbidden, "results are available once the election closes")
			return
		}
		if !election.ResultadosPublicos {
			middleware.ErrorResponse(w, http.StatusForbidden, "results of this election are not public")
			return
		}
	}

	middleware.JSONResponse(w, http.StatusOK, models.ResultsResponse{
		Election: election,
		Tally:    t,
	})
}

// GetParticipation handles GET /organizations/{slug}/participation
func (h *ResultsHandler) GetParticipation(w http.ResponseWriter, r *http.Request) {
	org, _, ok := memberScope(w, r, h.store, true)
	if !ok {
		return
	}

	users, err := h.store.ListUsers(r.Context(), org.ID)
	if err != nil {
		respondError(w, err, "list voters")
		return
	}
	elections, err := h.store.ListElections(r.Context(), org.ID)
	if err != nil {
		respondError(w, err, "list elections")
		return
	}

	middleware.JSONResponse(w, http.StatusOK,
		tally.Participation(users, elections, h.service.Now(), h.service.Location()))
}

// GetAudit handles GET /organizations/{slug}/audit. Query parameters:
// election filters by election id, q searches receipts, limit caps the rows.
// The ballot choice is never included.
func (h *ResultsHandler) GetAudit(w http.ResponseWriter, r *http.Request) {
	org, _, ok := memberScope(w, r, h.store, true)
	if !ok {
		return
	}

	limit := defaultAuditLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxAuditLimit)
	}

	votes, err := h.store.ListAudit(r.Context(), org.ID, sqlstore.AuditFilter{
		ElectionID:    r.URL.Query().Get("election"),
		ReceiptSearch: r.URL.Query().Get("q"),
		Limit:         limit,
	})
	if err != nil {
		respondError(w, err, "list audit")
		return
	}

	now := h.service.Now()
	entries := make([]models.AuditEntry, 0, len(votes))
	for _, v := range votes {
		entries = append(entries, models.AuditEntry{
			VoteID:     v.ID,
			ElectionID: v.ElectionID,
			Receipt:    v.Receipt,
			CastAt:     v.CastAt,
			CastAgo:    humanize.RelTime(v.CastAt, now, "ago", "from now"),
		})
	}

	middleware.JSONResponse(w, http.StatusOK, entries)
}

// VerifyReceipt handles GET /organizations/{slug}/receipts/{receipt}. It
// confirms the receipt was recorded and when, without revealing the choice
// or the voter.
func (h *ResultsHandler) VerifyReceipt(w http.ResponseWriter, r *http.Request) {
	org, ok := loadOrg(w, r, h.store)
	if !ok {
		return
	}

	code := r.PathValue("receipt")
	if !receipt.Valid(code) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "malformed receipt")
		return
	}

	v, err := h.store.FindReceipt(r.Context(), org.ID, code)
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Receipt not found")
		return
	}
	if err != nil {
		respondError(w, err, "verify receipt")
		return
	}

	e, err := h.store.GetElection(r.Context(), v.ElectionID)
	if err != nil {
		respondError(w, err, "load election")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ReceiptResponse{
		Receipt:    v.Receipt,
		ElectionID: e.ID,
		Election:   e.Nombre,
		CastAt:     v.CastAt,
	})
}
