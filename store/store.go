// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package store defines the storage contract used by the vote ledger and the
// results aggregator.
//
// Two implementations exist: sqlstore (postgres or sqlite through
// database/sql) and memstore (in-process maps, for tests). Reads are scoped to
// a single voter, election or election's vote log so that no caller needs the
// whole collection in memory.
package store

import (
	"context"

	"github.com/danielhkuo/urna/models"
)

// Store is the read side plus the transaction entry point.
type Store interface {
	GetVoter(ctx context.Context, id string) (models.User, error)
	GetElection(ctx context.Context, id string) (models.Election, error)
	ListCandidates(ctx context.Context, electionID string) ([]models.Candidate, error)

	// EachVote calls fn for every vote of the election, in cast order.
	// Returning an error from fn stops the iteration and is returned as is.
	EachVote(ctx context.Context, electionID string, fn func(models.Vote) error) error

	// Transactionally runs fn as one atomic unit. If fn returns an error
	// nothing it wrote is visible to anyone. Commit failures are returned
	// classified (see IsTransient).
	Transactionally(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the write side available inside Transactionally.
type Tx interface {
	// LockVoter reads the voter and holds it against concurrent
	// transactions touching the same voter until the transaction ends.
	// Returns ErrVoterNotFound if the voter does not exist.
	LockVoter(ctx context.Context, id string) (models.User, error)

	// InsertVote appends a vote. A second vote for the same
	// (election, voter) fails with ErrAlreadyVoted. A candidate vote
	// re-reads the candidate and holds it until the transaction ends;
	// ErrUnknownCandidate if it is gone.
	InsertVote(ctx context.Context, v models.Vote) error

	// MarkVoted adds electionID to the voter's ha_votado set. Adding an
	// election already present fails with ErrAlreadyVoted.
	MarkVoted(ctx context.Context, voterID, electionID string) error
}
