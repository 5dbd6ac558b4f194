// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package sqlstore

import (
	"database/sql"
	"fmt"

	"github.com/danielhkuo/urna/models"
)

type scanner interface {
	Scan(dest ...any) error
}

const userColumns = `id, organization_id, codigo, rol, primer_nombre, segundo_nombre,
	primer_apellido, segundo_apellido, curso, paralelo, email, password_hash`

const electionColumns = `id, organization_id, nombre, descripcion, fecha_inicio, fecha_fin,
	estado, resultados_publicos, allow_blank, allow_null, allow_write_in`

const candidateColumns = `id, election_id, nombres, apellido, partido_politico, cargo,
	foto_url, descripcion, list_color, list_logo_url`

const voteColumns = `id, organization_id, election_id, voter_id, candidate_id,
	write_in_name, is_null_vote, cast_at, receipt`

const organizationColumns = `id, name, slug, primary_color, logo_url, plan, created_at`

func scanUser(row scanner) (models.User, error) {
	var (
		u     models.User
		orgID sql.NullString
		email sql.NullString
		rol   string
	)
	err := row.Scan(&u.ID, &orgID, &u.Codigo, &rol, &u.PrimerNombre, &u.SegundoNombre,
		&u.PrimerApellido, &u.SegundoApellido, &u.Curso, &u.Paralelo, &email, &u.PasswordHash)
	if err != nil {
		return models.User{}, err
	}

	u.Rol, err = models.ParseRole(rol)
	if err != nil {
		return models.User{}, fmt.Errorf("user %s: %w", u.ID, err)
	}
	u.OrganizationID = stringPtr(orgID)
	u.Email = stringPtr(email)
	u.HaVotado = []string{}
	return u, nil
}

func scanElection(row scanner) (models.Election, error) {
	var (
		e                          models.Election
		estado                     string
		allowBlank, allowNull, wIn sql.NullBool
	)
	err := row.Scan(&e.ID, &e.OrganizationID, &e.Nombre, &e.Descripcion, &e.FechaInicio, &e.FechaFin,
		&estado, &e.ResultadosPublicos, &allowBlank, &allowNull, &wIn)
	if err != nil {
		return models.Election{}, err
	}
	e.Estado = models.Status(estado)
	e.Options = models.VotingOptions{
		AllowBlank:   boolPtr(allowBlank),
		AllowNull:    boolPtr(allowNull),
		AllowWriteIn: boolPtr(wIn),
	}
	return e, nil
}

func scanCandidate(row scanner) (models.Candidate, error) {
	var (
		c                   models.Candidate
		listColor, listLogo sql.NullString
	)
	err := row.Scan(&c.ID, &c.EleccionID, &c.Nombres, &c.Apellido, &c.PartidoPolitico, &c.Cargo,
		&c.FotoURL, &c.Descripcion, &listColor, &listLogo)
	if err != nil {
		return models.Candidate{}, err
	}
	c.ListColor = stringPtr(listColor)
	c.ListLogoURL = stringPtr(listLogo)
	return c, nil
}

func scanVote(row scanner) (models.Vote, error) {
	var (
		v                    models.Vote
		candidateID, writeIn sql.NullString
		castAt               string
	)
	err := row.Scan(&v.ID, &v.OrganizationID, &v.ElectionID, &v.VoterID, &candidateID,
		&writeIn, &v.IsNullVote, &castAt, &v.Receipt)
	if err != nil {
		return models.Vote{}, err
	}
	v.CandidateID = stringPtr(candidateID)
	v.WriteInName = stringPtr(writeIn)
	v.CastAt, err = parseTime(castAt)
	if err != nil {
		return models.Vote{}, fmt.Errorf("vote %s cast_at: %w", v.ID, err)
	}
	return v, nil
}

func scanOrganization(row scanner) (models.Organization, error) {
	var (
		o         models.Organization
		logo      sql.NullString
		createdAt string
	)
	err := row.Scan(&o.ID, &o.Name, &o.Slug, &o.PrimaryColor, &logo, &o.Plan, &createdAt)
	if err != nil {
		return models.Organization{}, err
	}
	o.LogoURL = stringPtr(logo)
	o.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return models.Organization{}, fmt.Errorf("organization %s created_at: %w", o.ID, err)
	}
	return o, nil
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func boolPtr(nb sql.NullBool) *bool {
	if !nb.Valid {
		return nil
	}
	b := nb.Bool
	return &b
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}
