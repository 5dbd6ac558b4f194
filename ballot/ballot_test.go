// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ballot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/danielhkuo/urna/models"
	"github.com/danielhkuo/urna/store"
)

func boolPtr(b bool) *bool { return &b }

var now = time.Date(2025, 5, 10, 9, 0, 0, 0, time.UTC)

func activeElection() models.Election {
	return models.Election{
		ID:          "E",
		FechaInicio: "2025-05-10",
		FechaFin:    "2025-05-10",
	}
}

func candidates() []models.Candidate {
	return []models.Candidate{
		{ID: "c1", EleccionID: "E"},
		{ID: "c2", EleccionID: "E"},
		{ID: "other", EleccionID: "F"},
	}
}

func input(e models.Election, voter models.User, b models.Ballot) ValidateInput {
	return ValidateInput{
		Election:   e,
		Voter:      voter,
		Candidates: candidates(),
		Ballot:     b,
		Now:        now,
		Location:   time.UTC,
	}
}

func TestValidate(t *testing.T) {
	fresh := models.User{ID: "v1"}
	voted := models.User{ID: "v1", HaVotado: []string{"E"}}

	closed := activeElection()
	closed.FechaInicio, closed.FechaFin = "2025-05-01", "2025-05-09"

	upcoming := activeElection()
	upcoming.FechaInicio, upcoming.FechaFin = "2025-05-11", "2025-05-12"

	noWriteIn := activeElection()
	noWriteIn.Options.AllowWriteIn = boolPtr(false)

	noBlankNoNull := activeElection()
	noBlankNoNull.Options = models.VotingOptions{AllowBlank: boolPtr(false), AllowNull: boolPtr(false)}

	tests := []struct {
		name    string
		in      ValidateInput
		wantErr error
	}{
		{"candidate ok", input(activeElection(), fresh, models.Ballot{Kind: models.KindCandidate, CandidateID: "c1"}), nil},
		{"blank ok when unset", input(activeElection(), fresh, models.Ballot{Kind: models.KindBlank}), nil},
		{"null ok when unset", input(activeElection(), fresh, models.Ballot{Kind: models.KindNull}), nil},
		{"write-in ok", input(activeElection(), fresh, models.Ballot{Kind: models.KindWriteIn, WriteInName: " Bob "}), nil},
		{"closed", input(closed, fresh, models.Ballot{Kind: models.KindBlank}), ErrElectionNotActive},
		{"upcoming", input(upcoming, fresh, models.Ballot{Kind: models.KindBlank}), ErrElectionNotActive},
		{"already voted", input(activeElection(), voted, models.Ballot{Kind: models.KindBlank}), ErrAlreadyVoted},
		{"write-in disabled", input(noWriteIn, fresh, models.Ballot{Kind: models.KindWriteIn, WriteInName: "Bob"}), ErrOptionDisabled},
		{"blank disabled", input(noBlankNoNull, fresh, models.Ballot{Kind: models.KindBlank}), ErrOptionDisabled},
		{"null disabled", input(noBlankNoNull, fresh, models.Ballot{Kind: models.KindNull}), ErrOptionDisabled},
		{"candidate from other election", input(activeElection(), fresh, models.Ballot{Kind: models.KindCandidate, CandidateID: "other"}), ErrInvalidCandidate},
		{"unknown candidate", input(activeElection(), fresh, models.Ballot{Kind: models.KindCandidate, CandidateID: "zzz"}), ErrInvalidCandidate},
		{"missing candidate id", input(activeElection(), fresh, models.Ballot{Kind: models.KindCandidate}), ErrInvalidCandidate},
		{"whitespace write-in", input(activeElection(), fresh, models.Ballot{Kind: models.KindWriteIn, WriteInName: "   "}), ErrEmptyWriteIn},
		{"unknown kind", input(activeElection(), fresh, models.Ballot{Kind: "spoiled"}), ErrUnknownBallotKind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.in)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidate_CheckOrder(t *testing.T) {
	closed := activeElection()
	closed.FechaFin = "2025-05-09"
	closed.FechaInicio = "2025-05-01"
	closed.Options.AllowWriteIn = boolPtr(false)
	voted := models.User{ID: "v1", HaVotado: []string{"E"}}

	// every check would fail; the lifecycle check wins
	err := Validate(input(closed, voted, models.Ballot{Kind: models.KindWriteIn}))
	assert.ErrorIs(t, err, ErrElectionNotActive)

	// active election: already voted beats the disabled option
	e := activeElection()
	e.Options.AllowWriteIn = boolPtr(false)
	err = Validate(input(e, voted, models.Ballot{Kind: models.KindWriteIn}))
	assert.ErrorIs(t, err, ErrAlreadyVoted)

	// disabled option beats the empty name
	err = Validate(input(e, models.User{ID: "v1"}, models.Ballot{Kind: models.KindWriteIn}))
	assert.ErrorIs(t, err, ErrOptionDisabled)
}

func TestAlreadyVotedIsStoreError(t *testing.T) {
	assert.ErrorIs(t, ErrAlreadyVoted, store.ErrAlreadyVoted)
}

func TestNormalize(t *testing.T) {
	got := Normalize(models.Ballot{Kind: models.KindWriteIn, WriteInName: "  Bob  ", CandidateID: "c1"})
	assert.Equal(t, models.Ballot{Kind: models.KindWriteIn, WriteInName: "Bob"}, got)

	got = Normalize(models.Ballot{Kind: models.KindBlank, WriteInName: "x", CandidateID: "c1"})
	assert.Equal(t, models.Ballot{Kind: models.KindBlank}, got)
}
