// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package ledger records votes. A cast is one store transaction that locks
// the voter, appends the vote and marks the voter as having voted; either
// all three happen or none do.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/urna/models"
	"github.com/danielhkuo/urna/receipt"
	"github.com/danielhkuo/urna/store"
)

// CastRequest identifies a validated ballot to record.
type CastRequest struct {
	OrganizationID string
	ElectionID     string
	VoterID        string
	Ballot         models.Ballot
}

type Ledger struct {
	store store.Store
	now   func() time.Time
	newID func() string
}

func New(s store.Store) *Ledger {
	return &Ledger{
		store: s,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// WithClock replaces the time source used for cast_at.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

// Cast records the ballot. It fails with store.ErrAlreadyVoted if the voter
// already voted in the election, even when a concurrent Cast for the same
// voter committed a moment earlier.
func (l *Ledger) Cast(ctx context.Context, req CastRequest) (models.CastResult, error) {
	var result models.CastResult

	err := l.store.Transactionally(ctx, func(tx store.Tx) error {
		voter, err := tx.LockVoter(ctx, req.VoterID)
		if err != nil {
			return err
		}
		if voter.HasVotedIn(req.ElectionID) {
			return store.ErrAlreadyVoted
		}

		id := l.newID()
		vote := models.NewVote(id, req.OrganizationID, req.ElectionID, voter.ID, req.Ballot, l.now())
		vote.Receipt = receipt.Generate(req.ElectionID, voter.ID, id)

		if err := tx.InsertVote(ctx, vote); err != nil {
			return err
		}
		if err := tx.MarkVoted(ctx, voter.ID, req.ElectionID); err != nil {
			return err
		}

		voter.HaVotado = append(voter.HaVotado, req.ElectionID)
		result = models.CastResult{Vote: vote, Voter: voter}
		return nil
	})
	if err != nil {
		return models.CastResult{}, fmt.Errorf("cast vote: %w", err)
	}

	return result, nil
}
