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

func (s *Store) CreateCandidate(ctx context.Context, c models.Candidate) (models.Candidate, error) {
	c.ID = s.newID()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO candidate (id, election_id, nombres, apellido, partido_politico, cargo,
			foto_url, descripcion, list_color, list_logo_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, c.ID, c.EleccionID, c.Nombres, c.Apellido, c.PartidoPolitico, c.Cargo,
		c.FotoURL, c.Descripcion, nullString(c.ListColor), nullString(c.ListLogoURL), formatTime(s.now()))
	if err != nil {
		return models.Candidate{}, classify(fmt.Errorf("insert candidate: %w", err))
	}
	return c, nil
}

func (s *Store) GetCandidate(ctx context.Context, id string) (models.Candidate, error) {
	c, err := scanCandidate(s.db.QueryRowContext(ctx, `SELECT `+candidateColumns+` FROM candidate WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return models.Candidate{}, store.ErrNotFound
	}
	if err != nil {
		return models.Candidate{}, classify(fmt.Errorf("get candidate: %w", err))
	}
	return c, nil
}

// UpdateCandidate rewrites the display fields; the election is fixed.
func (s *Store) UpdateCandidate(ctx context.Context, c models.Candidate) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE candidate SET
			nombres = $1, apellido = $2, partido_politico = $3, cargo = $4,
			foto_url = $5, descripcion = $6, list_color = $7, list_logo_url = $8
		WHERE id = $9
	`, c.Nombres, c.Apellido, c.PartidoPolitico, c.Cargo,
		c.FotoURL, c.Descripcion, nullString(c.ListColor), nullString(c.ListLogoURL), c.ID)
	if err != nil {
		return classify(fmt.Errorf("update candidate: %w", err))
	}
	return expectOne(res, store.ErrNotFound)
}

// DeleteCandidate refuses with ErrConflict once any vote names the candidate.
// The candidate row is locked first so a cast holding it commits (and is
// counted) before the delete goes ahead.
func (s *Store) DeleteCandidate(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var locked string
		err := tx.QueryRowContext(ctx, `SELECT id FROM candidate WHERE id = $1`+s.forUpdate(), id).Scan(&locked)
		if err == sql.ErrNoRows {
			return store.ErrNotFound
		}
		if err != nil {
			return classify(fmt.Errorf("lock candidate: %w", err))
		}

		var n int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM vote WHERE candidate_id = $1`, id).Scan(&n); err != nil {
			return classify(fmt.Errorf("count votes: %w", err))
		}
		if n > 0 {
			return fmt.Errorf("%w: candidate has %d votes", store.ErrConflict, n)
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM candidate WHERE id = $1`, id)
		if err != nil {
			return classify(fmt.Errorf("delete candidate: %w", err))
		}
		return expectOne(res, store.ErrNotFound)
	})
}
