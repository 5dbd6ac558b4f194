// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines domain, request, and response types for the API.

# Domain Types

  - Organization: tenant boundary (name, slug, brand color, logo)
  - User: voter or administrator; HaVotado lists elections already voted in
  - Role: closed enum Estudiante / Admin / SuperAdmin
  - Election: date range, results visibility, VotingOptions toggles
  - Candidate: belongs to one election
  - Ballot: a voter's submission (candidate, blank, null, or write-in)
  - Vote: immutable vote log record with its receipt

# Ballot Kinds

	KindCandidate = "candidate"
	KindBlank     = "blank"
	KindNull      = "null"
	KindWriteIn   = "write_in"

A Vote stores at most one of candidate_id, write_in_name, is_null_vote.
None set means a blank vote. NewVote is the only constructor used by the
ledger, so the kinds never overlap.

# Status

Election status is derived from the date range (see package lifecycle):

	StatusUpcoming = "Próxima"
	StatusActive   = "Activa"
	StatusClosed   = "Cerrada"

# Voting Options

VotingOptions fields are pointers. An unset toggle means the ballot kind is
allowed; BlankAllowed, NullAllowed and WriteInAllowed are the only places
that rule is applied.

# Result Types

  - Tally: per-candidate, blank, null, write-in and orphaned buckets
  - ParticipationReport: student voters against active elections
*/
package models
