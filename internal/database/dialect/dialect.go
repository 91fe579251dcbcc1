// Package dialect identifies the SQL flavour a database connection speaks.
package dialect

import (
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// Dialect is the SQL flavour of a database connection.
type Dialect string

const (
	// SQLite covers local files, in-memory databases and libsql/Turso.
	SQLite Dialect = "sqlite"
	// Postgres is PostgreSQL accessed through pgx.
	Postgres Dialect = "postgres"
)

// FromDSN picks the dialect for a connection string.
// postgres:// and postgresql:// URLs select Postgres, everything else SQLite.
func FromDSN(dsn string) Dialect {
	lower := strings.ToLower(dsn)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return Postgres
	}
	return SQLite
}

// Placeholder returns the bind-parameter format for the dialect.
func (d Dialect) Placeholder() sq.PlaceholderFormat {
	if d == Postgres {
		return sq.Dollar
	}
	return sq.Question
}

// Builder returns a squirrel statement builder using the dialect's placeholders.
func (d Dialect) Builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(d.Placeholder())
}

// Valid reports whether d is a known dialect.
func (d Dialect) Valid() bool {
	return d == SQLite || d == Postgres
}

func (d Dialect) String() string {
	return string(d)
}
