// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/danielhkuo/urna/models"
	"github.com/danielhkuo/urna/store"
)

func (s *Store) CreateElection(ctx context.Context, e models.Election) (models.Election, error) {
	e.ID = s.newID()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO election (id, organization_id, nombre, descripcion, fecha_inicio, fecha_fin,
			estado, resultados_publicos, allow_blank, allow_null, allow_write_in, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, e.ID, e.OrganizationID, e.Nombre, e.Descripcion, e.FechaInicio, e.FechaFin,
		string(e.Estado), e.ResultadosPublicos,
		nullBool(e.Options.AllowBlank), nullBool(e.Options.AllowNull), nullBool(e.Options.AllowWriteIn),
		formatTime(s.now()))
	if err != nil {
		return models.Election{}, classify(fmt.Errorf("insert election: %w", err))
	}
	return e, nil
}

// ListElections returns the organization's elections, newest start first.
func (s *Store) ListElections(ctx context.Context, organizationID string) ([]models.Election, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+electionColumns+`
		FROM election
		WHERE organization_id = $1
		ORDER BY fecha_inicio DESC, created_at DESC
	`, organizationID)
	if err != nil {
		return nil, classify(fmt.Errorf("list elections: %w", err))
	}
	defer rows.Close()

	elections := []models.Election{}
	for rows.Next() {
		e, err := scanElection(rows)
		if err != nil {
			return nil, classify(fmt.Errorf("scan election: %w", err))
		}
		elections = append(elections, e)
	}
	return elections, classify(rows.Err())
}

func (s *Store) UpdateElection(ctx context.Context, e models.Election) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE election SET
			nombre = $1, descripcion = $2, fecha_inicio = $3, fecha_fin = $4, estado = $5,
			resultados_publicos = $6, allow_blank = $7, allow_null = $8, allow_write_in = $9
		WHERE id = $10 AND organization_id = $11
	`, e.Nombre, e.Descripcion, e.FechaInicio, e.FechaFin, string(e.Estado),
		e.ResultadosPublicos,
		nullBool(e.Options.AllowBlank), nullBool(e.Options.AllowNull), nullBool(e.Options.AllowWriteIn),
		e.ID, e.OrganizationID)
	if err != nil {
		return classify(fmt.Errorf("update election: %w", err))
	}
	return expectOne(res, store.ErrElectionNotFound)
}

// DeleteElection removes the election with its candidates, votes and the
// voters' marks for it.
func (s *Store) DeleteElection(ctx context.Context, organizationID, id string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var n int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM election WHERE id = $1 AND organization_id = $2`, id, organizationID).Scan(&n)
		if err != nil {
			return classify(fmt.Errorf("find election: %w", err))
		}
		if n == 0 {
			return store.ErrElectionNotFound
		}

		for _, table := range []string{"vote", "user_voted", "candidate"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE election_id = $1`, id); err != nil {
				return classify(fmt.Errorf("delete from %s: %w", table, err))
			}
		}

		_, err = tx.ExecContext(ctx, `DELETE FROM election WHERE id = $1`, id)
		return classify(err)
	})
}
