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

// getUser loads one user with its ha_votado set.
func (s *Store) getUser(ctx context.Context, q queryer, id string) (models.User, error) {
	u, err := scanUser(q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM app_user WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return models.User{}, store.ErrNotFound
	}
	if err != nil {
		return models.User{}, classify(fmt.Errorf("get user: %w", err))
	}

	u.HaVotado, err = s.votedIn(ctx, q, u.ID)
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

func (s *Store) votedIn(ctx context.Context, q queryer, userID string) ([]string, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT election_id FROM user_voted
		WHERE user_id = $1
		ORDER BY voted_at, election_id
	`, userID)
	if err != nil {
		return nil, classify(fmt.Errorf("list voted elections: %w", err))
	}
	defer rows.Close()

	elections := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, classify(err)
		}
		elections = append(elections, id)
	}
	return elections, classify(rows.Err())
}

// FindUserByCode matches codigo case-insensitively within an organization.
func (s *Store) FindUserByCode(ctx context.Context, organizationID, codigo string) (models.User, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM app_user
		WHERE organization_id = $1 AND LOWER(codigo) = LOWER($2)
	`, organizationID, strings.TrimSpace(codigo)).Scan(&id)
	if err == sql.ErrNoRows {
		return models.User{}, store.ErrNotFound
	}
	if err != nil {
		return models.User{}, classify(fmt.Errorf("find user by code: %w", err))
	}
	return s.getUser(ctx, s.db, id)
}

// FindSuperAdminByEmail looks up a platform super admin.
func (s *Store) FindSuperAdminByEmail(ctx context.Context, email string) (models.User, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM app_user
		WHERE LOWER(email) = LOWER($1) AND rol = $2
	`, strings.TrimSpace(email), models.RoleSuperAdmin.String()).Scan(&id)
	if err == sql.ErrNoRows {
		return models.User{}, store.ErrNotFound
	}
	if err != nil {
		return models.User{}, classify(fmt.Errorf("find super admin: %w", err))
	}
	return s.getUser(ctx, s.db, id)
}

// GetUser returns any user by id, with ErrNotFound when missing.
func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	return s.getUser(ctx, s.db, id)
}

func (s *Store) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		u, err = s.insertUser(ctx, tx, u)
		return err
	})
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

func (s *Store) insertUser(ctx context.Context, q queryer, u models.User) (models.User, error) {
	if u.ID == "" {
		u.ID = s.newID()
	}
	u.Codigo = strings.TrimSpace(u.Codigo)
	u.HaVotado = []string{}

	var orgID sql.NullString
	if u.OrganizationID != nil {
		orgID = sql.NullString{String: *u.OrganizationID, Valid: true}
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO app_user (id, organization_id, codigo, rol, primer_nombre, segundo_nombre,
			primer_apellido, segundo_apellido, curso, paralelo, email, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, u.ID, orgID, u.Codigo, u.Rol.String(), u.PrimerNombre, u.SegundoNombre,
		u.PrimerApellido, u.SegundoApellido, u.Curso, u.Paralelo, nullString(u.Email), u.PasswordHash)
	if err != nil {
		return models.User{}, codeConflict(fmt.Errorf("insert user: %w", err), u.Codigo)
	}
	return u, nil
}

// ListUsers returns every user of the organization ordered by course,
// parallel, surname and name, each with its ha_votado set.
func (s *Store) ListUsers(ctx context.Context, organizationID string) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+userColumns+`
		FROM app_user
		WHERE organization_id = $1
		ORDER BY curso, paralelo, primer_apellido, primer_nombre, codigo
	`, organizationID)
	if err != nil {
		return nil, classify(fmt.Errorf("list users: %w", err))
	}

	users := []models.User{}
	index := map[string]int{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			rows.Close()
			return nil, classify(fmt.Errorf("scan user: %w", err))
		}
		index[u.ID] = len(users)
		users = append(users, u)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, classify(err)
	}

	// Second query only after the first is closed: sqlite has one connection.
	voted, err := s.db.QueryContext(ctx, `
		SELECT uv.user_id, uv.election_id
		FROM user_voted uv
		JOIN app_user u ON u.id = uv.user_id
		WHERE u.organization_id = $1
		ORDER BY uv.voted_at, uv.election_id
	`, organizationID)
	if err != nil {
		return nil, classify(fmt.Errorf("list voted: %w", err))
	}
	defer voted.Close()

	for voted.Next() {
		var userID, electionID string
		if err := voted.Scan(&userID, &electionID); err != nil {
			return nil, classify(err)
		}
		if i, ok := index[userID]; ok {
			users[i].HaVotado = append(users[i].HaVotado, electionID)
		}
	}
	return users, classify(voted.Err())
}

// UpdateUser rewrites the profile fields and role of a user of the
// organization. PasswordHash is only written when not empty.
func (s *Store) UpdateUser(ctx context.Context, u models.User) error {
	if u.OrganizationID == nil {
		return store.ErrNotFound
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE app_user SET
				codigo = $1, rol = $2, primer_nombre = $3, segundo_nombre = $4,
				primer_apellido = $5, segundo_apellido = $6, curso = $7, paralelo = $8,
				email = $9,
				password_hash = CASE WHEN $10 = '' THEN password_hash ELSE $10 END
			WHERE id = $11 AND organization_id = $12
		`, strings.TrimSpace(u.Codigo), u.Rol.String(), u.PrimerNombre, u.SegundoNombre,
			u.PrimerApellido, u.SegundoApellido, u.Curso, u.Paralelo,
			nullString(u.Email), u.PasswordHash, u.ID, *u.OrganizationID)
		if err != nil {
			return codeConflict(fmt.Errorf("update user: %w", err), u.Codigo)
		}
		return expectOne(res, store.ErrNotFound)
	})
}

// DeleteUser removes a user who has not voted. Users with votes are kept so
// the vote log stays consistent; ErrConflict is returned instead.
func (s *Store) DeleteUser(ctx context.Context, organizationID, id string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var n int
		err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM vote WHERE voter_id = $1`, id).Scan(&n)
		if err != nil {
			return classify(fmt.Errorf("count votes: %w", err))
		}
		if n > 0 {
			return fmt.Errorf("%w: voter has cast %d votes", store.ErrConflict, n)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM user_voted WHERE user_id = $1`, id); err != nil {
			return classify(fmt.Errorf("delete voted marks: %w", err))
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM app_user WHERE id = $1 AND organization_id = $2`, id, organizationID)
		if err != nil {
			return classify(fmt.Errorf("delete user: %w", err))
		}
		return expectOne(res, store.ErrNotFound)
	})
}

// ImportVoters inserts students in one transaction. Rows whose code already
// exists in the organization, or repeats an earlier row, are skipped and
// their codes returned.
func (s *Store) ImportVoters(ctx context.Context, organizationID string, voters []models.User) (imported []models.User, skipped []string, err error) {
	imported = []models.User{}
	skipped = []string{}

	err = s.inTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `SELECT LOWER(codigo) FROM app_user WHERE organization_id = $1`, organizationID)
		if err != nil {
			return classify(fmt.Errorf("list codes: %w", err))
		}
		taken := map[string]bool{}
		for rows.Next() {
			var code string
			if err := rows.Scan(&code); err != nil {
				rows.Close()
				return classify(err)
			}
			taken[code] = true
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return classify(err)
		}

		for _, v := range voters {
			code := strings.TrimSpace(v.Codigo)
			key := strings.ToLower(code)
			if code == "" || taken[key] {
				skipped = append(skipped, code)
				continue
			}
			taken[key] = true

			v.ID = ""
			v.OrganizationID = &organizationID
			v.Rol = models.RoleStudent
			v.PasswordHash = ""
			u, err := s.insertUser(ctx, tx, v)
			if err != nil {
				return err
			}
			imported = append(imported, u)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return imported, skipped, nil
}

// ChangePassword reads the current hash under lock, lets verify check it,
// and stores newHash only if verify returns nil.
func (s *Store) ChangePassword(ctx context.Context, userID string, verify func(currentHash string) error, newHash string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var current string
		err := tx.QueryRowContext(ctx, `SELECT password_hash FROM app_user WHERE id = $1`+s.forUpdate(), userID).Scan(&current)
		if err == sql.ErrNoRows {
			return store.ErrNotFound
		}
		if err != nil {
			return classify(fmt.Errorf("read password: %w", err))
		}

		if err := verify(current); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `UPDATE app_user SET password_hash = $1 WHERE id = $2`, newHash, userID)
		return classify(err)
	})
}

// EnsureSuperAdmin creates the super admin account if no user has the email.
func (s *Store) EnsureSuperAdmin(ctx context.Context, email, passwordHash string) (created bool, err error) {
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		var n int
		err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM app_user WHERE LOWER(email) = LOWER($1)`, email).Scan(&n)
		if err != nil {
			return classify(fmt.Errorf("check super admin: %w", err))
		}
		if n > 0 {
			return nil
		}

		_, err = s.insertUser(ctx, tx, models.User{
			Codigo:         "superadmin",
			Rol:            models.RoleSuperAdmin,
			PrimerNombre:   "Super",
			PrimerApellido: "Admin",
			Email:          &email,
			PasswordHash:   passwordHash,
		})
		if err != nil {
			return err
		}
		created = true
		return nil
	})
	return created, err
}

// expectOne turns "no row affected" into notFound.
func expectOne(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return classify(err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
