// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/danielhkuo/urna/models"
	"github.com/danielhkuo/urna/testutil"
)

func resultsRequest(e *testEnv, u models.User, electionID string) *http.Request {
	req := testutil.MakeRequest("GET", "/organizations/"+e.org.Slug+"/elections/"+electionID+"/results", nil, nil)
	return as(withPath(req, "slug", e.org.Slug, "id", electionID), u)
}

func TestGetResults(t *testing.T) {
	e := newTestEnv(t)
	h := NewResultsHandler(e.store, e.service)
	election, c1, c2 := e.activeElection(t, models.VotingOptions{})

	ballots := []models.Ballot{
		{Kind: models.KindCandidate, CandidateID: c1.ID},
		{Kind: models.KindCandidate, CandidateID: c1.ID},
		{Kind: models.KindCandidate, CandidateID: c2.ID},
		{Kind: models.KindBlank},
		{Kind: models.KindNull},
		{Kind: models.KindWriteIn, WriteInName: "Bob"},
		{Kind: models.KindWriteIn, WriteInName: " bob "},
	}
	var student models.User
	for i, b := range ballots {
		student = testutil.CreateTestStudent(t, e.store, e.org.ID, "S"+string(rune('A'+i)))
		e.cast(t, student, election.ID, b)
	}

	w := serve(h.GetResults, resultsRequest(e, e.admin, election.ID))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.ResultsResponse
	testutil.AssertJSON(t, w, &resp)

	tally := resp.Tally
	if tally.TotalVotes != 7 {
		t.Fatalf("Expected 7 votes, got %d", tally.TotalVotes)
	}
	if resp.Election.Estado != models.StatusActive {
		t.Errorf("Expected evaluated status Activa, got %s", resp.Election.Estado)
	}
	if len(tally.Candidates) != 2 || tally.Candidates[0].Candidate.ID != c1.ID {
		t.Fatalf("Expected %s ranked first, got %+v", c1.ID, tally.Candidates)
	}
	if tally.Candidates[0].Votes != 2 || tally.Candidates[0].Percentage != 28.57 {
		t.Errorf("Expected 2 votes / 28.57%%, got %d / %v", tally.Candidates[0].Votes, tally.Candidates[0].Percentage)
	}
	if tally.Blank.Votes != 1 || tally.Null.Votes != 1 {
		t.Errorf("Expected 1 blank and 1 null, got %d and %d", tally.Blank.Votes, tally.Null.Votes)
	}
	if len(tally.WriteIns) != 1 || tally.WriteIns[0].Votes != 2 {
		t.Errorf("Expected write-ins grouped into one entry of 2, got %+v", tally.WriteIns)
	}

	// Students cannot see results while the election is open
	w = serve(h.GetResults, resultsRequest(e, student, election.ID))
	testutil.AssertStatus(t, w, http.StatusForbidden)
}

func TestGetResults_Visibility(t *testing.T) {
	e := newTestEnv(t)
	h := NewResultsHandler(e.store, e.service)
	student := testutil.CreateTestStudent(t, e.store, e.org.ID, "S001")
	start, end := testutil.ClosedRange()

	public, err := e.store.CreateElection(context.Background(), models.Election{
		OrganizationID:     e.org.ID,
		Nombre:             "Pública",
		FechaInicio:        start,
		FechaFin:           end,
		ResultadosPublicos: true,
	})
	if err != nil {
		t.Fatalf("CreateElection() error = %v", err)
	}
	private := testutil.CreateTestElection(t, e.store, e.org.ID, start, end, models.VotingOptions{})

	testCases := []struct {
		name       string
		user       models.User
		electionID string
		wantStatus int
	}{
		{"student, closed and public", student, public.ID, http.StatusOK},
		{"student, closed and private", student, private.ID, http.StatusForbidden},
		{"admin, closed and private", e.admin, private.ID, http.StatusOK},
		{"unknown election", e.admin, "missing", http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(h.GetResults, resultsRequest(e, tc.user, tc.electionID))
			testutil.AssertStatus(t, w, tc.wantStatus)
		})
	}
}

func TestGetParticipation(t *testing.T) {
	e := newTestEnv(t)
	h := NewResultsHandler(e.store, e.service)
	election, _, _ := e.activeElection(t, models.VotingOptions{})

	voted := testutil.CreateTestStudent(t, e.store, e.org.ID, "S001")
	testutil.CreateTestStudent(t, e.store, e.org.ID, "S002")
	e.cast(t, voted, election.ID, models.Ballot{Kind: models.KindBlank})

	req := withPath(testutil.MakeRequest("GET", "/organizations/"+e.org.Slug+"/participation", nil, nil), "slug", e.org.Slug)
	w := serve(h.GetParticipation, as(req, e.admin))
	testutil.AssertStatus(t, w, http.StatusOK)

	var report models.ParticipationReport
	testutil.AssertJSON(t, w, &report)

	if report.TotalVoters != 2 {
		t.Errorf("Expected 2 student voters, got %d", report.TotalVoters)
	}
	if report.VotersMissingVotes != 1 {
		t.Errorf("Expected 1 voter missing votes, got %d", report.VotersMissingVotes)
	}
	if len(report.ActiveElections) != 1 || report.ActiveElections[0] != election.ID {
		t.Errorf("Expected active elections [%s], got %v", election.ID, report.ActiveElections)
	}

	// Students cannot read it
	w = serve(h.GetParticipation, as(req, voted))
	testutil.AssertStatus(t, w, http.StatusForbidden)
}

func TestGetAudit(t *testing.T) {
	e := newTestEnv(t)
	h := NewResultsHandler(e.store, e.service)
	election, c1, _ := e.activeElection(t, models.VotingOptions{})

	var last models.CastResult
	for _, code := range []string{"S001", "S002", "S003"} {
		student := testutil.CreateTestStudent(t, e.store, e.org.ID, code)
		last = e.cast(t, student, election.ID, models.Ballot{Kind: models.KindCandidate, CandidateID: c1.ID})
	}

	auditRequest := func(query string, u models.User) *http.Request {
		req := testutil.MakeRequest("GET", "/organizations/"+e.org.Slug+"/audit"+query, nil, nil)
		return as(withPath(req, "slug", e.org.Slug), u)
	}

	t.Run("lists every vote without the choice", func(t *testing.T) {
		w := serve(h.GetAudit, auditRequest("?election="+election.ID, e.admin))
		testutil.AssertStatus(t, w, http.StatusOK)

		body := w.Body.String()
		if strings.Contains(body, c1.ID) {
			t.Error("Audit log must not reveal the candidate")
		}

		var entries []models.AuditEntry
		testutil.AssertJSON(t, w, &entries)
		if len(entries) != 3 {
			t.Fatalf("Expected 3 entries, got %d", len(entries))
		}
		for _, entry := range entries {
			if entry.CastAgo == "" {
				t.Error("Expected cast_ago to be filled")
			}
		}
	})

	t.Run("receipt search", func(t *testing.T) {
		tail := last.Vote.Receipt[strings.LastIndex(last.Vote.Receipt, "-")+1:]
		w := serve(h.GetAudit, auditRequest("?q="+strings.ToUpper(tail), e.admin))
		testutil.AssertStatus(t, w, http.StatusOK)

		var entries []models.AuditEntry
		testutil.AssertJSON(t, w, &entries)
		if len(entries) != 1 || entries[0].Receipt != last.Vote.Receipt {
			t.Errorf("Expected only %s, got %+v", last.Vote.Receipt, entries)
		}
	})

	t.Run("limit", func(t *testing.T) {
		w := serve(h.GetAudit, auditRequest("?limit=2", e.admin))
		testutil.AssertStatus(t, w, http.StatusOK)

		var entries []models.AuditEntry
		testutil.AssertJSON(t, w, &entries)
		if len(entries) != 2 {
			t.Errorf("Expected 2 entries, got %d", len(entries))
		}
	})

	t.Run("invalid limit", func(t *testing.T) {
		w := serve(h.GetAudit, auditRequest("?limit=zero", e.admin))
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})

	t.Run("admins only", func(t *testing.T) {
		student := testutil.CreateTestStudent(t, e.store, e.org.ID, "S009")
		w := serve(h.GetAudit, auditRequest("", student))
		testutil.AssertStatus(t, w, http.StatusForbidden)
	})
}

func TestVerifyReceipt(t *testing.T) {
	e := newTestEnv(t)
	h := NewResultsHandler(e.store, e.service)
	election, _, _ := e.activeElection(t, models.VotingOptions{})
	student := testutil.CreateTestStudent(t, e.store, e.org.ID, "S001")
	cast := e.cast(t, student, election.ID, models.Ballot{Kind: models.KindBlank})

	other, _ := testutil.CreateTestOrganization(t, e.store, "otra")

	verify := func(slug, code string) *http.Request {
		req := testutil.MakeRequest("GET", "/organizations/"+slug+"/receipts/"+code, nil, nil)
		return withPath(req, "slug", slug, "receipt", code)
	}

	testCases := []struct {
		name       string
		slug       string
		code       string
		wantStatus int
	}{
		{"recorded receipt", e.org.Slug, cast.Vote.Receipt, http.StatusOK},
		{"malformed", e.org.Slug, "not-a-receipt", http.StatusBadRequest},
		{"well-formed but unknown", e.org.Slug, "rcpt-abcd-efgh-123", http.StatusNotFound},
		{"receipt of another organization", other.Slug, cast.Vote.Receipt, http.StatusNotFound},
		{"unknown organization", "nope", cast.Vote.Receipt, http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(h.VerifyReceipt, verify(tc.slug, tc.code))
			testutil.AssertStatus(t, w, tc.wantStatus)

			if tc.wantStatus != http.StatusOK {
				return
			}
			var resp models.ReceiptResponse
			testutil.AssertJSON(t, w, &resp)
			if resp.ElectionID != election.ID || resp.Election != election.Nombre {
				t.Errorf("Unexpected receipt response %+v", resp)
			}
			if strings.Contains(w.Body.String(), student.ID) {
				t.Error("Receipt lookup must not reveal the voter")
			}
		})
	}
}
