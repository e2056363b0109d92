package db

import (
	"database/sql"
	"errors"
	"strings"

	_ "modernc.org/sqlite"
)

// NewSQLiteDB opens a file or in-memory SQLite database through the pure-Go
// modernc driver. File databases hold a single writer connection so the
// engine serializes transactions without SQLITE_BUSY churn.
//
// Typical DSNs:
//   - "evhub-cache.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
//   - "file:test?mode=memory&cache=shared"
func NewSQLiteDB(dsn string) (*sql.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("db: empty DSN")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := ping(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
