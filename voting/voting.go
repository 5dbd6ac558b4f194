// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package voting is the entry point for casting a vote and reading results.
// It loads what the validator needs from the store, validates, and hands the
// ballot to the ledger under a bounded deadline.
package voting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/urna/ballot"
	"github.com/danielhkuo/urna/ledger"
	"github.com/danielhkuo/urna/lifecycle"
	"github.com/danielhkuo/urna/models"
	"github.com/danielhkuo/urna/store"
	"github.com/danielhkuo/urna/tally"
)

// ErrNotEligible is returned when the user's role cannot vote.
var ErrNotEligible = errors.New("user is not allowed to vote")

const DefaultCastTimeout = 5 * time.Second

type Config struct {
	// Location defines "today" for election dates. Defaults to time.Local.
	Location *time.Location

	// CastTimeout bounds the ledger transaction. Defaults to DefaultCastTimeout.
	CastTimeout time.Duration

	// Now defaults to time.Now.
	Now func() time.Time
}

type Service struct {
	store       store.Store
	ledger      *ledger.Ledger
	loc         *time.Location
	castTimeout time.Duration
	now         func() time.Time
}

func NewService(s store.Store, cfg Config) *Service {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.CastTimeout <= 0 {
		cfg.CastTimeout = DefaultCastTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{
		store:       s,
		ledger:      ledger.New(s).WithClock(cfg.Now),
		loc:         cfg.Location,
		castTimeout: cfg.CastTimeout,
		now:         cfg.Now,
	}
}

// Location returns the zone used to evaluate election dates.
func (s *Service) Location() *time.Location { return s.loc }

// Now returns the service clock's current time.
func (s *Service) Now() time.Time { return s.now() }

// CastVote validates the ballot and records it. Errors:
//   - store.ErrElectionNotFound, store.ErrVoterNotFound (also when either
//     belongs to another organization)
//   - ErrNotEligible
//   - the ballot package's validation errors; ballot.ErrInvalidCandidate also
//     when the candidate was deleted after validation
//   - store.ErrAlreadyVoted
//   - store.ErrStoreUnavailable (retryable)
//   - context.DeadlineExceeded when the cast timed out; the outcome is then unknown
func (s *Service) CastVote(ctx context.Context, voterID, organizationID, electionID string, b models.Ballot) (models.CastResult, error) {
	election, err := s.store.GetElection(ctx, electionID)
	if err != nil {
		return models.CastResult{}, err
	}
	if election.OrganizationID != organizationID {
		return models.CastResult{}, store.ErrElectionNotFound
	}

	voter, err := s.store.GetVoter(ctx, voterID)
	if err != nil {
		return models.CastResult{}, err
	}
	if !voter.InOrganization(organizationID) {
		return models.CastResult{}, store.ErrVoterNotFound
	}
	if !voter.Rol.CanVote() {
		return models.CastResult{}, ErrNotEligible
	}

	candidates, err := s.store.ListCandidates(ctx, electionID)
	if err != nil {
		return models.CastResult{}, err
	}

	b = ballot.Normalize(b)
	err = ballot.Validate(ballot.ValidateInput{
		Election:   election,
		Voter:      voter,
		Candidates: candidates,
		Ballot:     b,
		Now:        s.now(),
		Location:   s.loc,
	})
	if err != nil {
		slog.Info("ballot rejected",
			"election_id", electionID,
			"voter_id", voterID,
			"kind", b.Kind,
			"reason", err)
		return models.CastResult{}, err
	}

	castCtx, cancel := context.WithTimeout(ctx, s.castTimeout)
	defer cancel()

	start := time.Now()
	result, err := s.ledger.Cast(castCtx, ledger.CastRequest{
		OrganizationID: organizationID,
		ElectionID:     electionID,
		VoterID:        voterID,
		Ballot:         b,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrAlreadyVoted):
			slog.Info("duplicate cast refused", "election_id", electionID, "voter_id", voterID)
		case errors.Is(err, store.ErrUnknownCandidate):
			slog.Info("candidate removed before cast committed",
				"election_id", electionID,
				"voter_id", voterID,
				"candidate_id", b.CandidateID)
		case store.IsTimeout(err):
			slog.Warn("cast timed out, outcome unknown",
				"election_id", electionID,
				"voter_id", voterID,
				"timeout", s.castTimeout)
		default:
			slog.Error("cast failed", "election_id", electionID, "voter_id", voterID, "error", err)
		}
		return models.CastResult{}, err
	}

	slog.Info("vote cast",
		"election_id", electionID,
		"vote_id", result.Vote.ID,
		"kind", b.Kind,
		"duration", time.Since(start))

	return result, nil
}

// Results streams the election's votes through a tally builder. The
// returned election carries its evaluated status.
func (s *Service) Results(ctx context.Context, organizationID, electionID string) (models.Election, models.Tally, error) {
	election, err := s.store.GetElection(ctx, electionID)
	if err != nil {
		return models.Election{}, models.Tally{}, err
	}
	if election.OrganizationID != organizationID {
		return models.Election{}, models.Tally{}, store.ErrElectionNotFound
	}
	election = lifecycle.Apply(election, s.now(), s.loc)

	candidates, err := s.store.ListCandidates(ctx, electionID)
	if err != nil {
		return models.Election{}, models.Tally{}, err
	}

	b := tally.NewBuilder(election, candidates)
	err = s.store.EachVote(ctx, electionID, func(v models.Vote) error {
		b.Add(v)
		return nil
	})
	if err != nil {
		return models.Election{}, models.Tally{}, fmt.Errorf("read votes: %w", err)
	}

	return election, b.Result(), nil
}
