// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/urna/middleware"
	"github.com/danielhkuo/urna/models"
	"github.com/danielhkuo/urna/store/sqlstore"
	"github.com/danielhkuo/urna/voting"
)

type VotingHandler struct {
	store   *sqlstore.Store
	service *voting.Service
}

func NewVotingHandler(st *sqlstore.Store, service *voting.Service) *VotingHandler {
	return &VotingHandler{store: st, service: service}
}

// CastVote handles POST /organizations/{slug}/elections/{id}/votes.
// The response carries the vote with its receipt and the voter's updated
// ha_votado, which the client should use in place of its cached copy.
func (h *VotingHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	org, user, ok := memberScope(w, r, h.store, false)
	if !ok {
		return
	}

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	result, err := h.service.CastVote(r.Context(), user.ID, org.ID, r.PathValue("id"), req.Ballot)
	if err != nil {
		respondError(w, err, "cast vote")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, result)
}
