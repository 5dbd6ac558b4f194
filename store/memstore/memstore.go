// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package memstore is an in-process implementation of store.Store.
//
// Transactions serialize per voter through a keyed lock, so casts by
// different voters never wait on each other. Writes are buffered in the
// transaction and applied under the data lock at commit.
package memstore

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/danielhkuo/urna/models"
	"github.com/danielhkuo/urna/store"
)

var _ store.Store = (*Store)(nil)

type voteKey struct {
	electionID string
	voterID    string
}

// Store keeps every collection in maps guarded by mu.
type Store struct {
	mu         sync.RWMutex
	users      map[string]models.User
	elections  map[string]models.Election
	candidates map[string][]models.Candidate // by election, insertion order
	votes      map[string][]models.Vote      // by election, cast order
	voted      map[voteKey]struct{}
	receipts   map[string]struct{}

	locks *keyedLocks

	unavailable bool
}

func New() *Store {
	return &Store{
		users:      map[string]models.User{},
		elections:  map[string]models.Election{},
		candidates: map[string][]models.Candidate{},
		votes:      map[string][]models.Vote{},
		voted:      map[voteKey]struct{}{},
		receipts:   map[string]struct{}{},
		locks:      newKeyedLocks(),
	}
}

// PutVoter inserts or replaces a user.
func (s *Store) PutVoter(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.HaVotado = slices.Clone(u.HaVotado)
	s.users[u.ID] = u
}

// PutElection inserts or replaces an election.
func (s *Store) PutElection(e models.Election) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elections[e.ID] = e
}

// PutCandidate appends a candidate to its election's list.
func (s *Store) PutCandidate(c models.Candidate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates[c.EleccionID] = append(s.candidates[c.EleccionID], c)
}

// RemoveCandidate drops a candidate from its election's list.
func (s *Store) RemoveCandidate(electionID, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates[electionID] = slices.DeleteFunc(s.candidates[electionID], func(c models.Candidate) bool {
		return c.ID == id
	})
}

// listed reports whether the vote's candidate, if any, is in its election.
// Callers hold mu.
func (s *Store) listed(v models.Vote) bool {
	if v.CandidateID == nil {
		return true
	}
	return slices.ContainsFunc(s.candidates[v.ElectionID], func(c models.Candidate) bool {
		return c.ID == *v.CandidateID
	})
}

// SetUnavailable makes every operation fail with store.ErrStoreUnavailable
// until called again with false.
func (s *Store) SetUnavailable(down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unavailable = down
}

// Votes returns a copy of the election's vote log.
func (s *Store) Votes(electionID string) []models.Vote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.votes[electionID])
}

func (s *Store) checkAvailable() error {
	if s.unavailable {
		return fmt.Errorf("%w: memstore offline", store.ErrStoreUnavailable)
	}
	return nil
}

func (s *Store) GetVoter(ctx context.Context, id string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkAvailable(); err != nil {
		return models.User{}, err
	}
	u, ok := s.users[id]
	if !ok {
		return models.User{}, store.ErrVoterNotFound
	}
	u.HaVotado = slices.Clone(u.HaVotado)
	return u, nil
}

func (s *Store) GetElection(ctx context.Context, id string) (models.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkAvailable(); err != nil {
		return models.Election{}, err
	}
	e, ok := s.elections[id]
	if !ok {
		return models.Election{}, store.ErrElectionNotFound
	}
	return e, nil
}

func (s *Store) ListCandidates(ctx context.Context, electionID string) ([]models.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkAvailable(); err != nil {
		return nil, err
	}
	out := slices.Clone(s.candidates[electionID])
	if out == nil {
		out = []models.Candidate{}
	}
	return out, nil
}

func (s *Store) EachVote(ctx context.Context, electionID string, fn func(models.Vote) error) error {
	s.mu.RLock()
	if err := s.checkAvailable(); err != nil {
		s.mu.RUnlock()
		return err
	}
	snapshot := slices.Clone(s.votes[electionID])
	s.mu.RUnlock()

	for _, v := range snapshot {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(v); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Transactionally(ctx context.Context, fn func(tx store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t := &tx{s: s, locked: map[string]func(){}}
	defer t.release()

	if err := fn(t); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.commit(t)
}

// commit applies the buffered writes. Uniqueness is checked again under the
// write lock so a transaction that skipped LockVoter still can't double vote.
func (s *Store) commit(t *tx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkAvailable(); err != nil {
		return err
	}

	for _, v := range t.votes {
		if _, dup := s.voted[voteKey{v.ElectionID, v.VoterID}]; dup {
			return store.ErrAlreadyVoted
		}
		if _, dup := s.receipts[v.Receipt]; dup {
			return fmt.Errorf("%w: receipt collision", store.ErrStoreUnavailable)
		}
		if !s.listed(v) {
			return store.ErrUnknownCandidate
		}
	}
	for _, m := range t.marks {
		u, ok := s.users[m.voterID]
		if !ok {
			return store.ErrVoterNotFound
		}
		if u.HasVotedIn(m.electionID) {
			return store.ErrAlreadyVoted
		}
	}

	for _, v := range t.votes {
		s.votes[v.ElectionID] = append(s.votes[v.ElectionID], v)
		s.voted[voteKey{v.ElectionID, v.VoterID}] = struct{}{}
		s.receipts[v.Receipt] = struct{}{}
	}
	for _, m := range t.marks {
		u := s.users[m.voterID]
		u.HaVotado = append(slices.Clone(u.HaVotado), m.electionID)
		s.users[m.voterID] = u
	}
	return nil
}

type mark struct {
	voterID    string
	electionID string
}

type tx struct {
	s      *Store
	locked map[string]func()
	votes  []models.Vote
	marks  []mark
}

var _ store.Tx = (*tx)(nil)

func (t *tx) release() {
	for _, unlock := range t.locked {
		unlock()
	}
}

func (t *tx) LockVoter(ctx context.Context, id string) (models.User, error) {
	if _, held := t.locked[id]; !held {
		unlock, err := t.s.locks.lock(ctx, id)
		if err != nil {
			return models.User{}, err
		}
		t.locked[id] = unlock
	}

	u, err := t.s.GetVoter(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	for _, m := range t.marks {
		if m.voterID == id {
			u.HaVotado = append(u.HaVotado, m.electionID)
		}
	}
	return u, nil
}

func (t *tx) InsertVote(ctx context.Context, v models.Vote) error {
	for _, p := range t.votes {
		if p.ElectionID == v.ElectionID && p.VoterID == v.VoterID {
			return store.ErrAlreadyVoted
		}
	}

	t.s.mu.RLock()
	_, dup := t.s.voted[voteKey{v.ElectionID, v.VoterID}]
	listed := t.s.listed(v)
	down := t.s.checkAvailable()
	t.s.mu.RUnlock()
	if down != nil {
		return down
	}
	if dup {
		return store.ErrAlreadyVoted
	}
	if !listed {
		return store.ErrUnknownCandidate
	}

	t.votes = append(t.votes, v)
	return nil
}

func (t *tx) MarkVoted(ctx context.Context, voterID, electionID string) error {
	u, err := t.s.GetVoter(ctx, voterID)
	if err != nil {
		return err
	}
	if u.HasVotedIn(electionID) {
		return store.ErrAlreadyVoted
	}
	for _, m := range t.marks {
		if m == (mark{voterID, electionID}) {
			return store.ErrAlreadyVoted
		}
	}
	t.marks = append(t.marks, mark{voterID, electionID})
	return nil
}
