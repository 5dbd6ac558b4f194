// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates its schema.

# Drivers

Two dialects are supported, picked with DATABASE_TYPE:

  - postgres, through github.com/lib/pq
  - sqlite (default), through modernc.org/sqlite

	conn, err := db.Open(ctx, db.SQLite, "urna.db")

For sqlite, Open adds busy_timeout, foreign_keys, WAL and _txlock=immediate
to the DSN and limits the pool to one connection, so write transactions
queue instead of failing.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - organization: tenants, addressed by slug
  - app_user: students, admins and the super admin
  - user_voted: the elections each user has voted in
  - election: date range, result visibility, ballot toggles
  - candidate: candidates per election
  - vote: the vote log, one row per voter per election

# Relationships

	organization 1──* app_user
	organization 1──* election
	election     1──* candidate
	election     1──* vote
	app_user     1──* vote
	app_user     *──* election (via user_voted)

Foreign keys do not cascade. Deletes run child-first inside one transaction
(see sqlstore).

# Constraints

  - vote (election_id, voter_id) unique: one vote per voter per election
  - vote.receipt unique
  - vote: at most one of candidate_id, write_in_name, is_null_vote
  - user_voted (user_id, election_id) primary key
  - app_user (organization_id, codigo) unique, app_user.email unique
*/
package db
