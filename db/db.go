// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect names a supported database. The value doubles as the
// database/sql driver name.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// ParseDialect accepts the DATABASE_TYPE values.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "postgres", "postgresql", "pg":
		return Postgres, nil
	case "sqlite", "sqlite3", "":
		return SQLite, nil
	}
	return "", fmt.Errorf("unsupported database type %q", s)
}

// sqlitePragmas make every write transaction take the database lock at BEGIN
// and wait for it instead of failing with SQLITE_BUSY.
var sqlitePragmas = []string{
	"_pragma=busy_timeout(5000)",
	"_pragma=foreign_keys(1)",
	"_pragma=journal_mode(WAL)",
	"_txlock=immediate",
}

// SQLiteDSN appends the connection options to a file path or file: URI.
// Options already present in dsn are kept.
func SQLiteDSN(dsn string) string {
	var extra []string
	for _, p := range sqlitePragmas {
		key, _, _ := strings.Cut(p, "=")
		if key == "_pragma" {
			name, _, _ := strings.Cut(strings.TrimPrefix(p, "_pragma="), "(")
			if strings.Contains(dsn, "_pragma="+name) {
				continue
			}
		} else if strings.Contains(dsn, key+"=") {
			continue
		}
		extra = append(extra, p)
	}
	if len(extra) == 0 {
		return dsn
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(extra, "&")
}

// Open connects to the database and verifies the connection.
func Open(ctx context.Context, dialect Dialect, url string) (*sql.DB, error) {
	dsn := url
	if dialect == SQLite {
		dsn = SQLiteDSN(url)
	}

	conn, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}

	switch dialect {
	case SQLite:
		// One writer at a time; a single connection also keeps :memory:
		// databases from splitting into one per connection.
		conn.SetMaxOpenConns(1)
	case Postgres:
		conn.SetMaxOpenConns(25)
		conn.SetMaxIdleConns(5)
		conn.SetConnMaxLifetime(30 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}

	return conn, nil
}
