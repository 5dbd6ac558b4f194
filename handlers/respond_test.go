// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/urna/ballot"
	"github.com/danielhkuo/urna/models"
	"github.com/danielhkuo/urna/store"
	"github.com/danielhkuo/urna/testutil"
	"github.com/danielhkuo/urna/voting"
)

func TestRespondError(t *testing.T) {
	testCases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not active", ballot.ErrElectionNotActive, http.StatusConflict, "election_not_active"},
		{"already voted", fmt.Errorf("cast: %w", store.ErrAlreadyVoted), http.StatusConflict, "already_voted"},
		{"option disabled", ballot.ErrOptionDisabled, http.StatusUnprocessableEntity, "option_disabled"},
		{"invalid candidate", ballot.ErrInvalidCandidate, http.StatusUnprocessableEntity, "invalid_candidate"},
		{"empty write-in", ballot.ErrEmptyWriteIn, http.StatusUnprocessableEntity, "empty_write_in"},
		{"unknown kind", ballot.ErrUnknownBallotKind, http.StatusBadRequest, "unknown_ballot_kind"},
		{"not eligible", voting.ErrNotEligible, http.StatusForbidden, "not_eligible"},
		{"voter not found", store.ErrVoterNotFound, http.StatusNotFound, "voter_not_found"},
		{"election not found", store.ErrElectionNotFound, http.StatusNotFound, "election_not_found"},
		{"not found", store.ErrNotFound, http.StatusNotFound, "not_found"},
		{"conflict", store.ErrConflict, http.StatusConflict, "conflict"},
		{"unavailable", fmt.Errorf("commit: %w", store.ErrStoreUnavailable), http.StatusServiceUnavailable, "store_unavailable"},
		{"deadline", fmt.Errorf("cast: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, "outcome_unknown"},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			respondError(w, tc.err, "cast vote")

			testutil.AssertStatus(t, w, tc.wantStatus)

			var resp models.ErrorResponse
			testutil.AssertJSON(t, w, &resp)
			if resp.Code != tc.wantCode {
				t.Errorf("Expected code %q, got %q", tc.wantCode, resp.Code)
			}

			retry := w.Header().Get("Retry-After")
			if tc.wantStatus == http.StatusServiceUnavailable && retry != retryAfter {
				t.Errorf("Expected Retry-After %s, got %q", retryAfter, retry)
			}
			if tc.wantStatus != http.StatusServiceUnavailable && retry != "" {
				t.Errorf("Unexpected Retry-After %q", retry)
			}
		})
	}
}

// TestRespondError_HidesInternals checks that unexpected errors are not
// echoed to the client.
func TestRespondError_HidesInternals(t *testing.T) {
	w := httptest.NewRecorder()
	respondError(w, errors.New("pq: password authentication failed"), "list voters")

	var resp models.ErrorResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Message != "Failed to list voters" {
		t.Errorf("Expected generic message, got %q", resp.Message)
	}
}

type brokenOrgs struct{ err error }

func (b brokenOrgs) GetOrganizationBySlug(context.Context, string) (models.Organization, error) {
	return models.Organization{}, b.err
}

func TestLoadOrg(t *testing.T) {
	testCases := []struct {
		name       string
		slug       string
		err        error
		wantStatus int
	}{
		{"missing slug", "", nil, http.StatusBadRequest},
		{"not found", "nope", store.ErrNotFound, http.StatusNotFound},
		{"store down", "san-jose", store.ErrStoreUnavailable, http.StatusServiceUnavailable},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := withPath(testutil.MakeRequest("GET", "/organizations/x", nil, nil), "slug", tc.slug)
			w := httptest.NewRecorder()

			if _, ok := loadOrg(w, req, brokenOrgs{err: tc.err}); ok {
				t.Fatal("Expected loadOrg to fail")
			}
			testutil.AssertStatus(t, w, tc.wantStatus)
		})
	}
}

func TestIsAdmin(t *testing.T) {
	orgID := "org-1"
	otherID := "org-2"
	org := models.Organization{ID: orgID}

	testCases := []struct {
		name string
		user models.User
		want bool
	}{
		{"admin of the organization", models.User{Rol: models.RoleAdmin, OrganizationID: &orgID}, true},
		{"admin of another organization", models.User{Rol: models.RoleAdmin, OrganizationID: &otherID}, false},
		{"student of the organization", models.User{Rol: models.RoleStudent, OrganizationID: &orgID}, false},
		{"super admin", models.User{Rol: models.RoleSuperAdmin}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isAdmin(tc.user, org); got != tc.want {
				t.Errorf("isAdmin() = %v, want %v", got, tc.want)
			}
		})
	}
}
