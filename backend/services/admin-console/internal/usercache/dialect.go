package usercache

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Driver names accepted by New.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type dialect struct {
	name      string
	migration []string
	// rebind rewrites '?' placeholders for the engine.
	rebind func(string) string
}

const indexStatements = `
CREATE UNIQUE INDEX IF NOT EXISTS cached_users_nic_idx ON cached_users (nic);
CREATE UNIQUE INDEX IF NOT EXISTS cached_users_email_idx ON cached_users (email);
CREATE INDEX IF NOT EXISTS cached_users_role_idx ON cached_users (role);
CREATE INDEX IF NOT EXISTS cached_users_is_active_idx ON cached_users (is_active);
`

var sqliteDialect = dialect{
	name: DriverSQLite,
	migration: statements(`
CREATE TABLE IF NOT EXISTS cached_users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	remote_id TEXT NOT NULL DEFAULT '',
	username TEXT NOT NULL DEFAULT '',
	email TEXT,
	phone TEXT NOT NULL DEFAULT '',
	nic TEXT,
	role TEXT NOT NULL DEFAULT '',
	is_active INTEGER NOT NULL DEFAULT 1,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);` + indexStatements),
	rebind: func(q string) string { return q },
}

var postgresDialect = dialect{
	name: DriverPostgres,
	migration: statements(`
CREATE TABLE IF NOT EXISTS cached_users (
	id BIGSERIAL PRIMARY KEY,
	remote_id TEXT NOT NULL DEFAULT '',
	username TEXT NOT NULL DEFAULT '',
	email TEXT,
	phone TEXT NOT NULL DEFAULT '',
	nic TEXT,
	role TEXT NOT NULL DEFAULT '',
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);` + indexStatements),
	rebind: dollarPlaceholders,
}

func dialectFor(driver string) (dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverSQLite:
		return sqliteDialect, nil
	case DriverPostgres, "pgx":
		return postgresDialect, nil
	}
	return dialect{}, fmt.Errorf("usercache: unsupported driver %q", driver)
}

func statements(script string) []string {
	var out []string
	for _, stmt := range strings.Split(script, ";") {
		if s := strings.TrimSpace(stmt); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func dollarPlaceholders(q string) string {
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
