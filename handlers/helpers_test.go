// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/urna/auth"
	"github.com/danielhkuo/urna/cliparse"
	"github.com/danielhkuo/urna/middleware"
	"github.com/danielhkuo/urna/models"
	"github.com/danielhkuo/urna/store/sqlstore"
	"github.com/danielhkuo/urna/testutil"
	"github.com/danielhkuo/urna/voting"
)

// testEnv is a sqlite-backed store with one organization and its admin.
type testEnv struct {
	store   *sqlstore.Store
	service *voting.Service
	cfg     cliparse.Config
	org     models.Organization
	admin   models.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st := testutil.SetupTestStore(t)
	cfg := testutil.GetTestConfig()
	org, admin := testutil.CreateTestOrganization(t, st, "san-jose")

	return &testEnv{
		store:   st,
		service: testutil.NewTestService(st, cfg),
		cfg:     cfg,
		org:     org,
		admin:   admin,
	}
}

// superAdmin seeds and returns the platform super admin.
func (e *testEnv) superAdmin(t *testing.T) models.User {
	t.Helper()

	hash, err := auth.HashPassword(testutil.TestPassword)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	if _, err := e.store.EnsureSuperAdmin(context.Background(), "root@urna.test", hash); err != nil {
		t.Fatalf("Failed to seed super admin: %v", err)
	}
	u, err := e.store.FindSuperAdminByEmail(context.Background(), "root@urna.test")
	if err != nil {
		t.Fatalf("Failed to load super admin: %v", err)
	}
	return u
}

// activeElection creates an open election with two candidates.
func (e *testEnv) activeElection(t *testing.T, opts models.VotingOptions) (models.Election, models.Candidate, models.Candidate) {
	t.Helper()

	start, end := testutil.ActiveRange()
	el := testutil.CreateTestElection(t, e.store, e.org.ID, start, end, opts)
	c1 := testutil.AddTestCandidate(t, e.store, el.ID, "Lucia")
	c2 := testutil.AddTestCandidate(t, e.store, el.ID, "Mateo")
	return el, c1, c2
}

// cast records a vote through the voting service.
func (e *testEnv) cast(t *testing.T, voter models.User, electionID string, b models.Ballot) models.CastResult {
	t.Helper()

	res, err := e.service.CastVote(context.Background(), voter.ID, e.org.ID, electionID, b)
	if err != nil {
		t.Fatalf("Failed to cast vote: %v", err)
	}
	return res
}

// as attaches u to the request the way middleware.Sessions.Require does.
func as(req *http.Request, u models.User) *http.Request {
	return req.WithContext(middleware.WithUser(req.Context(), u))
}

// withPath sets the path values the mux would extract.
func withPath(req *http.Request, kv ...string) *http.Request {
	for i := 0; i+1 < len(kv); i += 2 {
		req.SetPathValue(kv[i], kv[i+1])
	}
	return req
}

func serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h(w, req)
	return w
}
