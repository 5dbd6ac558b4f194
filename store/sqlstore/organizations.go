// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/danielhkuo/urna/models"
	"github.com/danielhkuo/urna/store"
)

// CreateOrganization inserts the organization and its first admin in one
// transaction. Either both exist afterwards or neither does.
func (s *Store) CreateOrganization(ctx context.Context, org models.Organization, admin models.User) (models.Organization, models.User, error) {
	org.ID = s.newID()
	org.CreatedAt = s.now().UTC().Truncate(time.Microsecond)

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO organization (id, name, slug, primary_color, logo_url, plan, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, org.ID, org.Name, org.Slug, org.PrimaryColor, nullString(org.LogoURL), org.Plan, formatTime(org.CreatedAt))
		if err != nil {
			return classify(fmt.Errorf("insert organization: %w", err))
		}

		admin.OrganizationID = &org.ID
		admin.Rol = models.RoleAdmin
		admin, err = s.insertUser(ctx, tx, admin)
		return err
	})
	if err != nil {
		return models.Organization{}, models.User{}, err
	}

	return org, admin, nil
}

func (s *Store) GetOrganizationBySlug(ctx context.Context, slug string) (models.Organization, error) {
	o, err := scanOrganization(s.db.QueryRowContext(ctx,
		`SELECT `+organizationColumns+` FROM organization WHERE slug = $1`, slug))
	if err == sql.ErrNoRows {
		return models.Organization{}, store.ErrNotFound
	}
	if err != nil {
		return models.Organization{}, classify(fmt.Errorf("get organization: %w", err))
	}
	return o, nil
}

func (s *Store) ListOrganizations(ctx context.Context) ([]models.Organization, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+organizationColumns+` FROM organization ORDER BY name, slug`)
	if err != nil {
		return nil, classify(fmt.Errorf("list organizations: %w", err))
	}
	defer rows.Close()

	orgs := []models.Organization{}
	for rows.Next() {
		o, err := scanOrganization(rows)
		if err != nil {
			return nil, classify(fmt.Errorf("scan organization: %w", err))
		}
		orgs = append(orgs, o)
	}
	return orgs, classify(rows.Err())
}

// UpdateOrganization writes the branding fields; slug and id are fixed.
func (s *Store) UpdateOrganization(ctx context.Context, org models.Organization) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE organization SET name = $1, primary_color = $2, logo_url = $3, plan = $4
		WHERE id = $5
	`, org.Name, org.PrimaryColor, nullString(org.LogoURL), org.Plan, org.ID)
	if err != nil {
		return classify(fmt.Errorf("update organization: %w", err))
	}
	return expectOne(res, store.ErrNotFound)
}

// DeleteOrganization removes the organization and everything that belongs to
// it, children first, in one transaction.
func (s *Store) DeleteOrganization(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		steps := []struct {
			what  string
			query string
		}{
			{"votes", `DELETE FROM vote WHERE organization_id = $1
				OR election_id IN (SELECT id FROM election WHERE organization_id = $1)`},
			{"voted marks", `DELETE FROM user_voted WHERE user_id IN (SELECT id FROM app_user WHERE organization_id = $1)
				OR election_id IN (SELECT id FROM election WHERE organization_id = $1)`},
			{"candidates", `DELETE FROM candidate WHERE election_id IN (SELECT id FROM election WHERE organization_id = $1)`},
			{"elections", `DELETE FROM election WHERE organization_id = $1`},
			{"users", `DELETE FROM app_user WHERE organization_id = $1`},
		}
		for _, step := range steps {
			if _, err := tx.ExecContext(ctx, step.query, id); err != nil {
				return classify(fmt.Errorf("delete %s: %w", step.what, err))
			}
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM organization WHERE id = $1`, id)
		if err != nil {
			return classify(fmt.Errorf("delete organization: %w", err))
		}
		return expectOne(res, store.ErrNotFound)
	})
}
