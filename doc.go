// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the urna API server.

urna runs student council and similar elections for schools. Each
organization keeps its own voter roll and elections; students vote once per
election by their school code and get a receipt they can verify later.

# Starting the Server

The server reads flags, then environment variables, then a .env file:

	SESSION_SALT=... DATABASE_URL=urna.db go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." --session-salt ...

# Configuration

Required settings:

  - DATABASE_URL (-d): sqlite path or PostgreSQL connection string
  - SESSION_SALT (--session-salt): Secret for session token HMAC

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite (default) or postgres
  - TIMEZONE (--tz): IANA zone deciding election days (default: Local)
  - CAST_TIMEOUT (--cast-timeout): Vote transaction timeout (default: 5s)
  - CORS_ORIGIN (--cors-origin): Allowed browser origin
  - SUPERADMIN_EMAIL, SUPERADMIN_PASSWORD: Super admin seeded at startup

# Architecture

  - handlers: HTTP request handlers
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, sessions, JSON helpers
  - voting: castVote, the only way a vote is written
  - lifecycle, ballot, ledger, receipt, tally: election rules
  - store: storage contract with sqlstore and memstore
  - models: Domain, request and response types
  - auth: Password hashing and session tokens
  - db: Connection and schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
