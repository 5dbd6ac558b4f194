// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// The DDL sticks to the subset postgres and sqlite share. Timestamps are
// fixed-width UTC text so they sort and scan the same on both.
const schema = `
-- Organizations (tenants)
CREATE TABLE IF NOT EXISTS organization (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    slug TEXT NOT NULL UNIQUE,
    primary_color TEXT NOT NULL DEFAULT '#1e40af',
    logo_url TEXT,
    plan TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL
);

-- Users: students, admins and the platform super admin
CREATE TABLE IF NOT EXISTS app_user (
    id TEXT PRIMARY KEY,
    organization_id TEXT REFERENCES organization(id),
    codigo TEXT NOT NULL,
    rol TEXT NOT NULL CHECK (rol IN ('Estudiante', 'Admin', 'SuperAdmin')),
    primer_nombre TEXT NOT NULL DEFAULT '',
    segundo_nombre TEXT NOT NULL DEFAULT '',
    primer_apellido TEXT NOT NULL DEFAULT '',
    segundo_apellido TEXT NOT NULL DEFAULT '',
    curso TEXT NOT NULL DEFAULT '',
    paralelo TEXT NOT NULL DEFAULT '',
    email TEXT,
    password_hash TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_app_user_organization_id ON app_user(organization_id);
-- Codes are unique per organization regardless of case
CREATE UNIQUE INDEX IF NOT EXISTS idx_app_user_codigo_lower ON app_user(organization_id, LOWER(codigo));
CREATE UNIQUE INDEX IF NOT EXISTS idx_app_user_email ON app_user(email);

-- Elections
CREATE TABLE IF NOT EXISTS election (
    id TEXT PRIMARY KEY,
    organization_id TEXT NOT NULL REFERENCES organization(id),
    nombre TEXT NOT NULL,
    descripcion TEXT NOT NULL DEFAULT '',
    fecha_inicio TEXT NOT NULL,
    fecha_fin TEXT NOT NULL,
    estado TEXT NOT NULL DEFAULT 'Próxima',
    resultados_publicos BOOLEAN NOT NULL DEFAULT FALSE,
    allow_blank BOOLEAN,
    allow_null BOOLEAN,
    allow_write_in BOOLEAN,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_election_organization_id ON election(organization_id);

-- Elections a user has voted in (the ha_votado set)
CREATE TABLE IF NOT EXISTS user_voted (
    user_id TEXT NOT NULL REFERENCES app_user(id),
    election_id TEXT NOT NULL REFERENCES election(id),
    voted_at TEXT NOT NULL,
    PRIMARY KEY (user_id, election_id)
);

CREATE INDEX IF NOT EXISTS idx_user_voted_election_id ON user_voted(election_id);

-- Candidates
CREATE TABLE IF NOT EXISTS candidate (
    id TEXT PRIMARY KEY,
    election_id TEXT NOT NULL REFERENCES election(id),
    nombres TEXT NOT NULL,
    apellido TEXT NOT NULL DEFAULT '',
    partido_politico TEXT NOT NULL DEFAULT '',
    cargo TEXT NOT NULL DEFAULT '',
    foto_url TEXT NOT NULL DEFAULT '',
    descripcion TEXT NOT NULL DEFAULT '',
    list_color TEXT,
    list_logo_url TEXT,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_candidate_election_id ON candidate(election_id);

-- Votes. candidate_id has no foreign key so imported votes may name a
-- candidate that is gone; casts re-check the candidate row instead.
CREATE TABLE IF NOT EXISTS vote (
    id TEXT PRIMARY KEY,
    organization_id TEXT NOT NULL REFERENCES organization(id),
    election_id TEXT NOT NULL REFERENCES election(id),
    voter_id TEXT NOT NULL REFERENCES app_user(id),
    candidate_id TEXT,
    write_in_name TEXT,
    is_null_vote BOOLEAN NOT NULL DEFAULT FALSE,
    cast_at TEXT NOT NULL,
    receipt TEXT NOT NULL,
    CONSTRAINT vote_one_per_voter UNIQUE (election_id, voter_id),
    CONSTRAINT vote_receipt_unique UNIQUE (receipt),
    CONSTRAINT vote_single_choice CHECK (
        (CASE WHEN candidate_id IS NULL THEN 0 ELSE 1 END) +
        (CASE WHEN write_in_name IS NULL THEN 0 ELSE 1 END) +
        (CASE WHEN is_null_vote THEN 1 ELSE 0 END) <= 1
    )
);

CREATE INDEX IF NOT EXISTS idx_vote_election_cast_at ON vote(election_id, cast_at);
CREATE INDEX IF NOT EXISTS idx_vote_organization_id ON vote(organization_id);
CREATE INDEX IF NOT EXISTS idx_vote_candidate_id ON vote(candidate_id);
`
