// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package ballot decides whether a voter may submit a given ballot for an
// election at a given instant. Validate is pure: it reads no store and has no
// side effects, so the ledger transaction is still the final word on
// double voting.
package ballot

import (
	"errors"
	"strings"
	"time"

	"github.com/danielhkuo/urna/lifecycle"
	"github.com/danielhkuo/urna/models"
	"github.com/danielhkuo/urna/store"
)

var (
	ErrElectionNotActive = errors.New("election is not active")
	ErrOptionDisabled    = errors.New("ballot option is disabled for this election")
	ErrEmptyWriteIn      = errors.New("write-in name is empty")
	ErrUnknownBallotKind = errors.New("unknown ballot kind")

	// ErrAlreadyVoted is the store's error so callers match one value
	// whether the validator or the ledger caught the repeat.
	ErrAlreadyVoted = store.ErrAlreadyVoted

	// ErrInvalidCandidate is shared with the store for the same reason: the
	// ledger re-checks the candidate inside the cast transaction.
	ErrInvalidCandidate = store.ErrUnknownCandidate
)

// ValidateInput carries everything Validate looks at.
type ValidateInput struct {
	Election   models.Election
	Voter      models.User
	Candidates []models.Candidate
	Ballot     models.Ballot
	Now        time.Time
	Location   *time.Location
}

// Validate runs the checks in a fixed order and returns the first failure:
// election active, voter has not voted, option enabled, candidate listed,
// write-in not empty.
func Validate(in ValidateInput) error {
	if lifecycle.Evaluate(in.Election.FechaInicio, in.Election.FechaFin, in.Now, in.Location) != models.StatusActive {
		return ErrElectionNotActive
	}

	if in.Voter.HasVotedIn(in.Election.ID) {
		return ErrAlreadyVoted
	}

	b := Normalize(in.Ballot)

	switch b.Kind {
	case models.KindCandidate, models.KindBlank, models.KindNull, models.KindWriteIn:
	default:
		return ErrUnknownBallotKind
	}

	if !in.Election.Options.Allows(b.Kind) {
		return ErrOptionDisabled
	}

	switch b.Kind {
	case models.KindCandidate:
		if !listed(b.CandidateID, in.Election.ID, in.Candidates) {
			return ErrInvalidCandidate
		}
	case models.KindWriteIn:
		if b.WriteInName == "" {
			return ErrEmptyWriteIn
		}
	}

	return nil
}

// Normalize trims the write-in name and clears fields that do not belong to
// the ballot's kind.
func Normalize(b models.Ballot) models.Ballot {
	out := models.Ballot{Kind: b.Kind}
	switch b.Kind {
	case models.KindCandidate:
		out.CandidateID = strings.TrimSpace(b.CandidateID)
	case models.KindWriteIn:
		out.WriteInName = strings.TrimSpace(b.WriteInName)
	}
	return out
}

func listed(candidateID, electionID string, candidates []models.Candidate) bool {
	if candidateID == "" {
		return false
	}
	for _, c := range candidates {
		if c.ID == candidateID && c.EleccionID == electionID {
			return true
		}
	}
	return false
}
