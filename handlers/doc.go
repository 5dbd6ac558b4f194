// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the urna API.

# Handler Types

Each handler is a struct holding the store and, where ballots or election
status are involved, the voting service:

  - SessionHandler: Logins, the session user and password changes
  - OrganizationHandler: Organization lifecycle (super admin)
  - ElectionHandler: Elections and their candidates
  - VoterHandler: Voter roll, including bulk import
  - VotingHandler: Ballot casting
  - ResultsHandler: Tally, participation, audit log and receipts
  - HealthHandler: Database liveness

Handlers are created via constructor functions:

	electionHandler := handlers.NewElectionHandler(st, service)

# Authorization

Routes behind middleware.Sessions.Require find the session user in the
request context. Organization-scoped handlers start with memberScope, which
resolves {slug} and checks the user belongs to it:

	org, user, ok := memberScope(w, r, h.store, true) // admin only

# Election Status

Stored estado is never trusted. Every election leaving a handler has its
status evaluated from its dates in the configured timezone.

# Voting Flow

	POST /organizations/{slug}/login               → Login (returns session_token)
	POST /organizations/{slug}/elections/{id}/votes → CastVote (returns receipt)
	GET  /organizations/{slug}/receipts/{receipt}   → VerifyReceipt

# Errors

Store and voting errors go through respondError, which maps them to a status
and a machine-readable code. 503 responses carry Retry-After; 504 means the
outcome of a write is unknown and the client must re-check before retrying.
*/
package handlers
