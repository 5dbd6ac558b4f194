// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/urna/ballot"
	"github.com/danielhkuo/urna/middleware"
	"github.com/danielhkuo/urna/models"
	"github.com/danielhkuo/urna/store"
	"github.com/danielhkuo/urna/voting"
)

// retryAfter is sent with 503 responses, in seconds.
const retryAfter = "2"

type errorMapping struct {
	err    error
	status int
	code   string
}

// Checked in order. store.ErrAlreadyVoted and ballot.ErrAlreadyVoted are
// the same value.
var errorMappings = []errorMapping{
	{ballot.ErrElectionNotActive, http.StatusConflict, "election_not_active"},
	{store.ErrAlreadyVoted, http.StatusConflict, "already_voted"},
	{ballot.ErrOptionDisabled, http.StatusUnprocessableEntity, "option_disabled"},
	{ballot.ErrInvalidCandidate, http.StatusUnprocessableEntity, "invalid_candidate"},
	{ballot.ErrEmptyWriteIn, http.StatusUnprocessableEntity, "empty_write_in"},
	{ballot.ErrUnknownBallotKind, http.StatusBadRequest, "unknown_ballot_kind"},
	{voting.ErrNotEligible, http.StatusForbidden, "not_eligible"},
	{store.ErrVoterNotFound, http.StatusNotFound, "voter_not_found"},
	{store.ErrElectionNotFound, http.StatusNotFound, "election_not_found"},
	{store.ErrNotFound, http.StatusNotFound, "not_found"},
	{store.ErrConflict, http.StatusConflict, "conflict"},
}

// respondError writes the response for an error coming out of the store or
// the voting service. what names the operation in the server log.
func respondError(w http.ResponseWriter, err error, what string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			middleware.CodedErrorResponse(w, m.status, m.code, err.Error())
			return
		}
	}

	switch {
	case store.IsTimeout(err):
		middleware.CodedErrorResponse(w, http.StatusGatewayTimeout, "outcome_unknown",
			"outcome unknown, re-check before retrying")
	case store.IsTransient(err):
		slog.Warn("store unavailable", "operation", what, "error", err)
		w.Header().Set("Retry-After", retryAfter)
		middleware.CodedErrorResponse(w, http.StatusServiceUnavailable, "store_unavailable",
			"temporarily unavailable, retry shortly")
	default:
		slog.Error("request failed", "operation", what, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to "+what)
	}
}

// currentUser returns the session user placed in the context by
// middleware.Sessions.Require.
func currentUser(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "session token required")
	}
	return u, ok
}

// isMember reports whether u may read the organization's data.
func isMember(u models.User, org models.Organization) bool {
	return u.Rol == models.RoleSuperAdmin || u.InOrganization(org.ID)
}

// isAdmin reports whether u may manage the organization.
func isAdmin(u models.User, org models.Organization) bool {
	if u.Rol == models.RoleSuperAdmin {
		return true
	}
	return u.Rol.CanAdminister() && u.InOrganization(org.ID)
}

// orgLoader is the lookup every organization-scoped handler starts with.
type orgLoader interface {
	GetOrganizationBySlug(ctx context.Context, slug string) (models.Organization, error)
}

// loadOrg resolves the {slug} path value. It writes the error response and
// returns false when the organization cannot be loaded.
func loadOrg(w http.ResponseWriter, r *http.Request, st orgLoader) (models.Organization, bool) {
	slug := r.PathValue("slug")
	if slug == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "organization slug is required")
		return models.Organization{}, false
	}

	org, err := st.GetOrganizationBySlug(r.Context(), slug)
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Organization not found")
		return models.Organization{}, false
	}
	if err != nil {
		respondError(w, err, "load organization")
		return models.Organization{}, false
	}
	return org, true
}

// memberScope loads the organization and checks the session user belongs to
// it. admin additionally requires management rights.
func memberScope(w http.ResponseWriter, r *http.Request, st orgLoader, admin bool) (models.Organization, models.User, bool) {
	user, ok := currentUser(w, r)
	if !ok {
		return models.Organization{}, models.User{}, false
	}
	org, ok := loadOrg(w, r, st)
	if !ok {
		return models.Organization{}, models.User{}, false
	}

	if !isMember(user, org) {
		middleware.ErrorResponse(w, http.StatusForbidden, "not a member of this organization")
		return models.Organization{}, models.User{}, false
	}
	if admin && !isAdmin(user, org) {
		middleware.ErrorResponse(w, http.StatusForbidden, "admin role required")
		return models.Organization{}, models.User{}, false
	}
	return org, user, true
}
