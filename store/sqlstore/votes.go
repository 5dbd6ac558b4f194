// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/danielhkuo/urna/models"
	"github.com/danielhkuo/urna/store"
)

// AuditFilter narrows ListAudit. Empty fields match everything.
type AuditFilter struct {
	ElectionID    string
	ReceiptSearch string
	Limit         int
}

// ListAudit returns the organization's votes, newest first.
func (s *Store) ListAudit(ctx context.Context, organizationID string, f AuditFilter) ([]models.Vote, error) {
	query := `SELECT ` + voteColumns + ` FROM vote WHERE organization_id = $1`
	args := []any{organizationID}

	if f.ElectionID != "" {
		args = append(args, f.ElectionID)
		query += fmt.Sprintf(" AND election_id = $%d", len(args))
	}
	if q := strings.TrimSpace(f.ReceiptSearch); q != "" {
		args = append(args, "%"+strings.ToLower(q)+"%")
		query += fmt.Sprintf(" AND LOWER(receipt) LIKE $%d", len(args))
	}
	query += " ORDER BY cast_at DESC, id DESC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(fmt.Errorf("list audit: %w", err))
	}
	defer rows.Close()

	votes := []models.Vote{}
	for rows.Next() {
		v, err := scanVote(rows)
		if err != nil {
			return nil, classify(fmt.Errorf("scan vote: %w", err))
		}
		votes = append(votes, v)
	}
	return votes, classify(rows.Err())
}

// FindReceipt returns the vote holding receipt within the organization.
func (s *Store) FindReceipt(ctx context.Context, organizationID, receipt string) (models.Vote, error) {
	v, err := scanVote(s.db.QueryRowContext(ctx,
		`SELECT `+voteColumns+` FROM vote WHERE organization_id = $1 AND receipt = $2`,
		organizationID, receipt))
	if err == sql.ErrNoRows {
		return models.Vote{}, store.ErrNotFound
	}
	if err != nil {
		return models.Vote{}, classify(fmt.Errorf("find receipt: %w", err))
	}
	return v, nil
}
