// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/danielhkuo/urna/models"
	"github.com/danielhkuo/urna/testutil"
)

func TestCreateElection(t *testing.T) {
	e := newTestEnv(t)
	h := NewElectionHandler(e.store, e.service)
	student := testutil.CreateTestStudent(t, e.store, e.org.ID, "A001")
	start, end := testutil.ActiveRange()

	create := func(u models.User, body any) *http.Request {
		req := testutil.MakeRequest("POST", "/organizations/"+e.org.Slug+"/elections", body, nil)
		return as(withPath(req, "slug", e.org.Slug), u)
	}

	w := serve(h.Create, create(e.admin, models.ElectionRequest{
		Nombre:      "Consejo 2025",
		FechaInicio: start,
		FechaFin:    end,
	}))
	testutil.AssertStatus(t, w, http.StatusCreated)

	var created models.Election
	testutil.AssertJSON(t, w, &created)
	if created.ID == "" || created.Estado != models.StatusActive {
		t.Errorf("Expected an active election with an id, got %+v", created)
	}
	if !created.Options.WriteInAllowed() {
		t.Error("Unset toggles must default to allowed")
	}

	testCases := []struct {
		name       string
		user       models.User
		body       models.ElectionRequest
		wantStatus int
	}{
		{"students cannot create", student, models.ElectionRequest{Nombre: "X", FechaInicio: start, FechaFin: end}, http.StatusForbidden},
		{"missing name", e.admin, models.ElectionRequest{FechaInicio: start, FechaFin: end}, http.StatusBadRequest},
		{"end before start", e.admin, models.ElectionRequest{Nombre: "X", FechaInicio: end, FechaFin: start}, http.StatusBadRequest},
		{"bad date format", e.admin, models.ElectionRequest{Nombre: "X", FechaInicio: "14/05/2025", FechaFin: end}, http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			testutil.AssertStatus(t, serve(h.Create, create(tc.user, tc.body)), tc.wantStatus)
		})
	}
}

func TestListElections_EvaluatesStatus(t *testing.T) {
	e := newTestEnv(t)
	h := NewElectionHandler(e.store, e.service)
	student := testutil.CreateTestStudent(t, e.store, e.org.ID, "A001")

	active, _, _ := e.activeElection(t, models.VotingOptions{})
	start, end := testutil.ClosedRange()
	closed := testutil.CreateTestElection(t, e.store, e.org.ID, start, end, models.VotingOptions{})
	upcoming := testutil.CreateTestElection(t, e.store, e.org.ID,
		testutil.Today.AddDate(0, 1, 0).Format("2006-01-02"),
		testutil.Today.AddDate(0, 2, 0).Format("2006-01-02"),
		models.VotingOptions{})

	req := withPath(testutil.MakeRequest("GET", "/organizations/"+e.org.Slug+"/elections", nil, nil), "slug", e.org.Slug)
	w := serve(h.List, as(req, student))
	testutil.AssertStatus(t, w, http.StatusOK)

	var elections []models.Election
	testutil.AssertJSON(t, w, &elections)

	want := map[string]models.Status{
		active.ID:   models.StatusActive,
		closed.ID:   models.StatusClosed,
		upcoming.ID: models.StatusUpcoming,
	}
	if len(elections) != len(want) {
		t.Fatalf("Expected %d elections, got %d", len(want), len(elections))
	}
	for _, el := range elections {
		if el.Estado != want[el.ID] {
			t.Errorf("election %s: expected %s, got %s", el.ID, want[el.ID], el.Estado)
		}
	}
}

func TestGetElection(t *testing.T) {
	e := newTestEnv(t)
	h := NewElectionHandler(e.store, e.service)
	election, _, _ := e.activeElection(t, models.VotingOptions{})
	other, otherAdmin := testutil.CreateTestOrganization(t, e.store, "otra")

	get := func(slug, id string, u models.User) *http.Request {
		req := testutil.MakeRequest("GET", "/organizations/"+slug+"/elections/"+id, nil, nil)
		return as(withPath(req, "slug", slug, "id", id), u)
	}

	w := serve(h.Get, get(e.org.Slug, election.ID, e.admin))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.ElectionWithCandidates
	testutil.AssertJSON(t, w, &resp)
	if len(resp.Candidates) != 2 {
		t.Errorf("Expected 2 candidates, got %d", len(resp.Candidates))
	}

	// Another organization cannot reach the election through its own slug
	w = serve(h.Get, get(other.Slug, election.ID, otherAdmin))
	testutil.AssertStatus(t, w, http.StatusNotFound)

	// Nor through ours
	w = serve(h.Get, get(e.org.Slug, election.ID, otherAdmin))
	testutil.AssertStatus(t, w, http.StatusForbidden)
}

func TestUpdateElection(t *testing.T) {
	e := newTestEnv(t)
	h := NewElectionHandler(e.store, e.service)
	election, _, _ := e.activeElection(t, models.VotingOptions{})
	start, end := testutil.ClosedRange()

	disabled := false
	req := testutil.MakeRequest("PUT", "/organizations/"+e.org.Slug+"/elections/"+election.ID, models.ElectionRequest{
		Nombre:             "Consejo (cerrado)",
		FechaInicio:        start,
		FechaFin:           end,
		ResultadosPublicos: true,
		Options:            models.VotingOptions{AllowNull: &disabled},
	}, nil)
	w := serve(h.Update, as(withPath(req, "slug", e.org.Slug, "id", election.ID), e.admin))
	testutil.AssertStatus(t, w, http.StatusOK)

	var updated models.Election
	testutil.AssertJSON(t, w, &updated)
	if updated.Estado != models.StatusClosed || !updated.ResultadosPublicos || updated.Options.NullAllowed() {
		t.Errorf("Unexpected update result %+v", updated)
	}

	stored, err := e.store.GetElection(context.Background(), election.ID)
	if err != nil {
		t.Fatalf("GetElection() error = %v", err)
	}
	if stored.Nombre != "Consejo (cerrado)" || stored.Options.NullAllowed() {
		t.Errorf("Update not stored: %+v", stored)
	}
}

func TestDeleteElection_RemovesVotesAndMarks(t *testing.T) {
	e := newTestEnv(t)
	h := NewElectionHandler(e.store, e.service)
	election, c1, _ := e.activeElection(t, models.VotingOptions{})
	student := testutil.CreateTestStudent(t, e.store, e.org.ID, "A001")
	e.cast(t, student, election.ID, models.Ballot{Kind: models.KindCandidate, CandidateID: c1.ID})

	req := testutil.MakeRequest("DELETE", "/organizations/"+e.org.Slug+"/elections/"+election.ID, nil, nil)
	w := serve(h.Delete, as(withPath(req, "slug", e.org.Slug, "id", election.ID), e.admin))
	testutil.AssertStatus(t, w, http.StatusNoContent)

	stored, err := e.store.GetUser(context.Background(), student.ID)
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if stored.HasVotedIn(election.ID) {
		t.Error("Expected the voted mark to be removed with the election")
	}

	// Deleting again reports not found
	w = serve(h.Delete, as(withPath(req, "slug", e.org.Slug, "id", election.ID), e.admin))
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestCandidates(t *testing.T) {
	e := newTestEnv(t)
	h := NewElectionHandler(e.store, e.service)
	election, c1, c2 := e.activeElection(t, models.VotingOptions{})
	student := testutil.CreateTestStudent(t, e.store, e.org.ID, "A001")
	e.cast(t, student, election.ID, models.Ballot{Kind: models.KindCandidate, CandidateID: c1.ID})

	candidateRequest := func(method, id string, body any, u models.User) *http.Request {
		req := testutil.MakeRequest(method, "/organizations/"+e.org.Slug+"/candidates/"+id, body, nil)
		return as(withPath(req, "slug", e.org.Slug, "id", id), u)
	}

	t.Run("create", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/organizations/"+e.org.Slug+"/elections/"+election.ID+"/candidates",
			models.CandidateRequest{Nombres: "Valeria", Cargo: "Presidente"}, nil)
		w := serve(h.CreateCandidate, as(withPath(req, "slug", e.org.Slug, "id", election.ID), e.admin))
		testutil.AssertStatus(t, w, http.StatusCreated)

		var c models.Candidate
		testutil.AssertJSON(t, w, &c)
		if c.EleccionID != election.ID {
			t.Errorf("Expected candidate of %s, got %s", election.ID, c.EleccionID)
		}
	})

	t.Run("list", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/organizations/"+e.org.Slug+"/elections/"+election.ID+"/candidates", nil, nil)
		w := serve(h.ListCandidates, as(withPath(req, "slug", e.org.Slug, "id", election.ID), student))
		testutil.AssertStatus(t, w, http.StatusOK)

		var list []models.Candidate
		testutil.AssertJSON(t, w, &list)
		if len(list) != 3 {
			t.Errorf("Expected 3 candidates, got %d", len(list))
		}
	})

	t.Run("create requires cargo", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/organizations/"+e.org.Slug+"/elections/"+election.ID+"/candidates",
			models.CandidateRequest{Nombres: "Sin cargo"}, nil)
		w := serve(h.CreateCandidate, as(withPath(req, "slug", e.org.Slug, "id", election.ID), e.admin))
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})

	t.Run("update", func(t *testing.T) {
		w := serve(h.UpdateCandidate, candidateRequest("PUT", c2.ID,
			models.CandidateRequest{Nombres: "Mateo J.", Cargo: "Vicepresidente"}, e.admin))
		testutil.AssertStatus(t, w, http.StatusOK)

		got, err := e.store.GetCandidate(context.Background(), c2.ID)
		if err != nil {
			t.Fatalf("GetCandidate() error = %v", err)
		}
		if got.Nombres != "Mateo J." || got.Cargo != "Vicepresidente" {
			t.Errorf("Update not stored: %+v", got)
		}
	})

	t.Run("delete with votes refused", func(t *testing.T) {
		w := serve(h.DeleteCandidate, candidateRequest("DELETE", c1.ID, nil, e.admin))
		testutil.AssertStatus(t, w, http.StatusConflict)

		var resp models.ErrorResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.Code != "candidate_has_votes" {
			t.Errorf("Expected code candidate_has_votes, got %q", resp.Code)
		}
	})

	t.Run("delete without votes", func(t *testing.T) {
		w := serve(h.DeleteCandidate, candidateRequest("DELETE", c2.ID, nil, e.admin))
		testutil.AssertStatus(t, w, http.StatusNoContent)
	})

	t.Run("students cannot delete", func(t *testing.T) {
		w := serve(h.DeleteCandidate, candidateRequest("DELETE", c1.ID, nil, student))
		testutil.AssertStatus(t, w, http.StatusForbidden)
	})

	t.Run("unknown candidate", func(t *testing.T) {
		w := serve(h.DeleteCandidate, candidateRequest("DELETE", "missing", nil, e.admin))
		testutil.AssertStatus(t, w, http.StatusNotFound)
	})
}
