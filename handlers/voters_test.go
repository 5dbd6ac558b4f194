// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"testing"

	"github.com/danielhkuo/urna/models"
	"github.com/danielhkuo/urna/testutil"
)

func votersRequest(e *testEnv, method, path string, body any, u models.User, kv ...string) *http.Request {
	req := testutil.MakeRequest(method, "/organizations/"+e.org.Slug+"/voters"+path, body, nil)
	return as(withPath(req, append([]string{"slug", e.org.Slug}, kv...)...), u)
}

func TestCreateVoter(t *testing.T) {
	e := newTestEnv(t)
	h := NewVoterHandler(e.store)
	admin := models.RoleAdmin

	testCases := []struct {
		name       string
		body       models.VoterRequest
		wantStatus int
		wantRole   models.Role
	}{
		{"student by default", models.VoterRequest{Codigo: "A001", PrimerNombre: "Lucia"}, http.StatusCreated, models.RoleStudent},
		{"admin with password", models.VoterRequest{Codigo: "P001", Rol: &admin, Password: "second-admin-pass"}, http.StatusCreated, models.RoleAdmin},
		{"admin without password", models.VoterRequest{Codigo: "P002", Rol: &admin}, http.StatusBadRequest, 0},
		{"duplicate code", models.VoterRequest{Codigo: "a001"}, http.StatusConflict, 0},
		{"missing code", models.VoterRequest{PrimerNombre: "Nadie"}, http.StatusBadRequest, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(h.Create, votersRequest(e, "POST", "", tc.body, e.admin))
			testutil.AssertStatus(t, w, tc.wantStatus)
			if tc.wantStatus != http.StatusCreated {
				return
			}

			var u models.User
			testutil.AssertJSON(t, w, &u)
			if u.Rol != tc.wantRole || !u.InOrganization(e.org.ID) {
				t.Errorf("Unexpected user %+v", u)
			}
		})
	}

	t.Run("super admin role rejected", func(t *testing.T) {
		root := models.RoleSuperAdmin
		body := models.VoterRequest{Codigo: "X001", Rol: &root, Password: "root-password"}
		w := serve(h.Create, votersRequest(e, "POST", "", body, e.admin))
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})

	t.Run("students cannot manage voters", func(t *testing.T) {
		student := testutil.CreateTestStudent(t, e.store, e.org.ID, "S900")
		w := serve(h.Create, votersRequest(e, "POST", "", models.VoterRequest{Codigo: "S901"}, student))
		testutil.AssertStatus(t, w, http.StatusForbidden)
	})
}

func TestListAndUpdateVoter(t *testing.T) {
	e := newTestEnv(t)
	h := NewVoterHandler(e.store)
	student := testutil.CreateTestStudent(t, e.store, e.org.ID, "A001")

	w := serve(h.List, votersRequest(e, "GET", "", nil, e.admin))
	testutil.AssertStatus(t, w, http.StatusOK)

	var users []models.User
	testutil.AssertJSON(t, w, &users)
	if len(users) != 2 {
		t.Errorf("Expected admin and student, got %d users", len(users))
	}

	body := models.VoterRequest{Codigo: "A001", PrimerNombre: "Lucía", Curso: "4to", Paralelo: "B"}
	w = serve(h.Update, votersRequest(e, "PUT", "/"+student.ID, body, e.admin, "id", student.ID))
	testutil.AssertStatus(t, w, http.StatusOK)

	var updated models.User
	testutil.AssertJSON(t, w, &updated)
	if updated.Curso != "4to" || updated.Paralelo != "B" || updated.PrimerNombre != "Lucía" {
		t.Errorf("Update not applied: %+v", updated)
	}

	// Taking the admin's code is a conflict
	body.Codigo = "ADMIN"
	w = serve(h.Update, votersRequest(e, "PUT", "/"+student.ID, body, e.admin, "id", student.ID))
	testutil.AssertStatus(t, w, http.StatusConflict)
}

func TestDeleteVoter(t *testing.T) {
	e := newTestEnv(t)
	h := NewVoterHandler(e.store)
	election, c1, _ := e.activeElection(t, models.VotingOptions{})
	voted := testutil.CreateTestStudent(t, e.store, e.org.ID, "A001")
	idle := testutil.CreateTestStudent(t, e.store, e.org.ID, "A002")
	e.cast(t, voted, election.ID, models.Ballot{Kind: models.KindCandidate, CandidateID: c1.ID})

	del := func(id string) *http.Request {
		return votersRequest(e, "DELETE", "/"+id, nil, e.admin, "id", id)
	}

	w := serve(h.Delete, del(voted.ID))
	testutil.AssertStatus(t, w, http.StatusConflict)
	var resp models.ErrorResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Code != "voter_has_votes" {
		t.Errorf("Expected code voter_has_votes, got %q", resp.Code)
	}

	testutil.AssertStatus(t, serve(h.Delete, del(idle.ID)), http.StatusNoContent)
	testutil.AssertStatus(t, serve(h.Delete, del(idle.ID)), http.StatusNotFound)
	testutil.AssertStatus(t, serve(h.Delete, del(e.admin.ID)), http.StatusConflict)
}

func TestImportVoters(t *testing.T) {
	e := newTestEnv(t)
	h := NewVoterHandler(e.store)
	testutil.CreateTestStudent(t, e.store, e.org.ID, "A001")

	body := models.ImportVotersRequest{Voters: []models.ImportedVoter{
		{Codigo: "A001", PrimerNombre: "Ya existe"},
		{Codigo: "A002", PrimerNombre: "Lucia", Curso: "3ro", Paralelo: "A"},
		{Codigo: "A003", PrimerNombre: "Mateo", Curso: "3ro", Paralelo: "B"},
		{Codigo: "a002", PrimerNombre: "Repetido"},
		{Codigo: "  ", PrimerNombre: "Sin codigo"},
	}}

	w := serve(h.Import, votersRequest(e, "POST", "/import", body, e.admin))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.ImportVotersResponse
	testutil.AssertJSON(t, w, &resp)

	if len(resp.Imported) != 2 {
		t.Fatalf("Expected 2 imported, got %d", len(resp.Imported))
	}
	for _, u := range resp.Imported {
		if u.Rol != models.RoleStudent {
			t.Errorf("Imported voters must be students, got %s", u.Rol)
		}
	}
	wantSkipped := []string{"A001", "a002", ""}
	if len(resp.Skipped) != len(wantSkipped) {
		t.Fatalf("Expected skipped %v, got %v", wantSkipped, resp.Skipped)
	}
	for i, code := range wantSkipped {
		if resp.Skipped[i] != code {
			t.Errorf("skipped[%d]: expected %q, got %q", i, code, resp.Skipped[i])
		}
	}

	t.Run("empty batch", func(t *testing.T) {
		w := serve(h.Import, votersRequest(e, "POST", "/import", models.ImportVotersRequest{}, e.admin))
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})
}
