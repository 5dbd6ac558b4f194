// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrVoterNotFound    = errors.New("voter not found")
	ErrElectionNotFound = errors.New("election not found")

	// ErrUnknownCandidate means a candidate ballot names a candidate that is
	// not (or no longer) listed in the vote's election.
	ErrUnknownCandidate = errors.New("candidate does not belong to this election")

	// ErrAlreadyVoted is final: the (election, voter) pair already has a vote.
	ErrAlreadyVoted = errors.New("voter has already voted in this election")

	// ErrConflict means a write was refused to keep references intact
	// or a unique key (slug, code, email) is taken.
	ErrConflict = errors.New("conflicting record")

	// ErrStoreUnavailable wraps transient failures: connection loss,
	// lock timeouts, serialization failures. The operation left no state
	// behind and may be retried.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// IsTransient reports whether err may succeed if retried later.
func IsTransient(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

// IsTimeout reports whether err came from the caller's deadline or
// cancellation. The outcome of a write that timed out is unknown to the caller.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
