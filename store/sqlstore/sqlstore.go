// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package sqlstore implements store.Store on database/sql for postgres and
// sqlite, plus the administrative queries the HTTP handlers need.
//
// A vote transaction serializes on the voter: postgres locks the app_user
// row with SELECT ... FOR UPDATE, sqlite takes the database write lock at
// BEGIN (see db.SQLiteDSN). The unique constraints on vote and user_voted
// back both up.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/urna/db"
	"github.com/danielhkuo/urna/models"
	"github.com/danielhkuo/urna/store"
)

var _ store.Store = (*Store)(nil)

// timeLayout is fixed width so text timestamps sort chronologically.
const timeLayout = "2006-01-02T15:04:05.000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Parse(time.RFC3339Nano, s)
	}
	return t, nil
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db      *sql.DB
	dialect db.Dialect
	now     func() time.Time
	newID   func() string
}

func New(conn *sql.DB, dialect db.Dialect) *Store {
	return &Store{
		db:      conn,
		dialect: dialect,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// DB exposes the underlying pool for health checks.
func (s *Store) DB() *sql.DB { return s.db }

// forUpdate is appended to row-locking reads.
func (s *Store) forUpdate() string {
	if s.dialect == db.Postgres {
		return " FOR UPDATE"
	}
	return ""
}

// forShare is appended to reads that must keep a row from being deleted.
func (s *Store) forShare() string {
	if s.dialect == db.Postgres {
		return " FOR SHARE"
	}
	return ""
}

// inTx runs fn in a transaction, committing if fn returns nil.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify(fmt.Errorf("begin: %w", err))
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return classify(fmt.Errorf("commit: %w", err))
	}
	return nil
}

func (s *Store) GetVoter(ctx context.Context, id string) (models.User, error) {
	u, err := s.getUser(ctx, s.db, id)
	if err == store.ErrNotFound {
		return models.User{}, store.ErrVoterNotFound
	}
	return u, err
}

func (s *Store) GetElection(ctx context.Context, id string) (models.Election, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+electionColumns+` FROM election WHERE id = $1`, id)
	e, err := scanElection(row)
	if err == sql.ErrNoRows {
		return models.Election{}, store.ErrElectionNotFound
	}
	if err != nil {
		return models.Election{}, classify(fmt.Errorf("get election: %w", err))
	}
	return e, nil
}

func (s *Store) ListCandidates(ctx context.Context, electionID string) ([]models.Candidate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+candidateColumns+`
		FROM candidate
		WHERE election_id = $1
		ORDER BY created_at, id
	`, electionID)
	if err != nil {
		return nil, classify(fmt.Errorf("list candidates: %w", err))
	}
	defer rows.Close()

	candidates := []models.Candidate{}
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, classify(fmt.Errorf("scan candidate: %w", err))
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return candidates, nil
}

// EachVote streams the election's votes in cast order. fn must not use the
// store: on sqlite the single connection is busy until iteration ends.
func (s *Store) EachVote(ctx context.Context, electionID string, fn func(models.Vote) error) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+voteColumns+`
		FROM vote
		WHERE election_id = $1
		ORDER BY cast_at, id
	`, electionID)
	if err != nil {
		return classify(fmt.Errorf("list votes: %w", err))
	}
	defer rows.Close()

	for rows.Next() {
		v, err := scanVote(rows)
		if err != nil {
			return classify(fmt.Errorf("scan vote: %w", err))
		}
		if err := fn(v); err != nil {
			return err
		}
	}
	return classify(rows.Err())
}

func (s *Store) Transactionally(ctx context.Context, fn func(tx store.Tx) error) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return fn(&voteTx{s: s, tx: tx})
	})
}

type voteTx struct {
	s  *Store
	tx *sql.Tx
}

var _ store.Tx = (*voteTx)(nil)

func (t *voteTx) LockVoter(ctx context.Context, id string) (models.User, error) {
	var locked string
	err := t.tx.QueryRowContext(ctx, `SELECT id FROM app_user WHERE id = $1`+t.s.forUpdate(), id).Scan(&locked)
	if err == sql.ErrNoRows {
		return models.User{}, store.ErrVoterNotFound
	}
	if err != nil {
		return models.User{}, classify(fmt.Errorf("lock voter: %w", err))
	}

	u, err := t.s.getUser(ctx, t.tx, id)
	if err == store.ErrNotFound {
		return models.User{}, store.ErrVoterNotFound
	}
	return u, err
}

func (t *voteTx) InsertVote(ctx context.Context, v models.Vote) error {
	if v.CandidateID != nil {
		if err := t.holdCandidate(ctx, *v.CandidateID, v.ElectionID); err != nil {
			return err
		}
	}

	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO vote (id, organization_id, election_id, voter_id, candidate_id, write_in_name, is_null_vote, cast_at, receipt)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, v.ID, v.OrganizationID, v.ElectionID, v.VoterID,
		nullString(v.CandidateID), nullString(v.WriteInName), v.IsNullVote,
		formatTime(v.CastAt), v.Receipt)
	if err == nil {
		return nil
	}

	if isUnique(err) {
		if uniqueOn(err, "receipt") {
			return fmt.Errorf("%w: receipt collision", store.ErrStoreUnavailable)
		}
		return store.ErrAlreadyVoted
	}
	return classify(fmt.Errorf("insert vote: %w", err))
}

// holdCandidate keeps the candidate from being deleted until the vote
// commits. DeleteCandidate locks the same row before counting votes.
func (t *voteTx) holdCandidate(ctx context.Context, candidateID, electionID string) error {
	var id string
	err := t.tx.QueryRowContext(ctx,
		`SELECT id FROM candidate WHERE id = $1 AND election_id = $2`+t.s.forShare(),
		candidateID, electionID).Scan(&id)
	if err == sql.ErrNoRows {
		return store.ErrUnknownCandidate
	}
	if err != nil {
		return classify(fmt.Errorf("hold candidate: %w", err))
	}
	return nil
}

func (t *voteTx) MarkVoted(ctx context.Context, voterID, electionID string) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO user_voted (user_id, election_id, voted_at)
		VALUES ($1, $2, $3)
	`, voterID, electionID, formatTime(t.s.now()))
	if err == nil {
		return nil
	}

	if isUnique(err) {
		return store.ErrAlreadyVoted
	}
	if isForeignKey(err) {
		return store.ErrVoterNotFound
	}
	return classify(fmt.Errorf("mark voted: %w", err))
}
