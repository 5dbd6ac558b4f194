// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package sqlstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/danielhkuo/urna/store"
)

// classify maps driver errors onto the store taxonomy. Errors it does not
// recognize are returned unchanged.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return err
	case isQueryCanceled(err):
		return fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
	case isUnique(err), isForeignKey(err):
		return fmt.Errorf("%w: %v", store.ErrConflict, err)
	case isTransient(err):
		return fmt.Errorf("%w: %v", store.ErrStoreUnavailable, err)
	}
	return err
}

func isUnique(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			return strings.Contains(liteErr.Error(), "UNIQUE")
		}
	}
	return false
}

// uniqueOn reports whether a unique violation names column (sqlite) or a
// constraint containing it (postgres).
func uniqueOn(err error, column string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return strings.Contains(pqErr.Constraint, column)
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return strings.Contains(liteErr.Error(), "."+column)
	}
	return false
}

// codeConflict classifies err, naming the code when the case-insensitive
// codigo index rejected the write.
func codeConflict(err error, code string) error {
	if isUnique(err) && strings.Contains(err.Error(), "codigo") {
		return fmt.Errorf("%w: codigo %s already exists", store.ErrConflict, strings.TrimSpace(code))
	}
	return classify(err)
}

func isForeignKey(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23503"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
	}
	return false
}

func isQueryCanceled(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "57014"
}

func isTransient(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01", "55P03", "57P01", "57P03":
			return true
		}
		return pqErr.Code.Class() == "08" || pqErr.Code.Class() == "53"
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED, sqlite3.SQLITE_IOERR, sqlite3.SQLITE_FULL:
			return true
		}
		return false
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
