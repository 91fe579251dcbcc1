// Package migrations handles database schema migrations.
// Migrations are versioned using timestamps (YYYYMMDD-HHmmss format) and each
// one names the revision it applies on top of, so the registered set forms a
// single chain from the root revision to the head. Applied revisions are
// tracked in the database so each migration runs exactly once, and every
// migration carries the statements that undo it.
//
// Migration files should be named: YYYYMMDD-HHmmss-description.go
// Example: 20241105-104500-price-product-name.go
package migrations

import (
	"github.com/openfoodfacts/open-prices/internal/database/dialect"
)

// Migration represents a single reversible database migration.
type Migration struct {
	// Revision in YYYYMMDD-HHmmss format (e.g., "20241105-104500").
	// Used for tracking applied migrations.
	Revision string
	// DownRevision is the revision this migration applies on top of.
	// Empty for the root of the chain.
	DownRevision string
	Description  string   // Human-readable description
	Up           []string // SQL statements applied on upgrade
	Down         []string // SQL statements undoing Up, in execution order

	// PostgresUp and PostgresDown replace Up and Down on PostgreSQL when set.
	PostgresUp   []string
	PostgresDown []string
}

// UpStatements returns the upgrade statements for the dialect.
func (m Migration) UpStatements(d dialect.Dialect) []string {
	if d == dialect.Postgres && m.PostgresUp != nil {
		return m.PostgresUp
	}
	return m.Up
}

// DownStatements returns the downgrade statements for the dialect.
func (m Migration) DownStatements(d dialect.Dialect) []string {
	if d == dialect.Postgres && m.PostgresDown != nil {
		return m.PostgresDown
	}
	return m.Down
}

// registry holds all registered migrations.
var registry []Migration

// Register adds a migration to the registry.
// Called by init() functions in individual migration files.
func Register(m Migration) {
	registry = append(registry, m)
}

// Registered returns a copy of the registered migrations in registration order.
func Registered() []Migration {
	out := make([]Migration, len(registry))
	copy(out, registry)
	return out
}

// Load validates the registered migrations and returns them as a chain.
// An invalid chain is a configuration error; callers should treat it as fatal.
func Load() (*Chain, error) {
	return NewChain(registry)
}
