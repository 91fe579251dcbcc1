package migrations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/openfoodfacts/open-prices/internal/database/dialect"
)

// Upgrade and downgrade targets besides concrete revisions.
const (
	Head = "head" // newest revision in the chain
	Base = "base" // empty schema, before the root revision
)

const trackingTable = "schema_migrations"

// ErrDiverged is returned when the revisions recorded in the database are not
// a prefix of the chain known to this build.
var ErrDiverged = errors.New("database revisions diverge from migration chain")

// AppliedMigration represents a migration that has been applied.
type AppliedMigration struct {
	Revision    string
	Description string
	AppliedAt   time.Time
}

// Status describes one migration of the chain and whether it has been applied.
type Status struct {
	Migration
	Applied   bool
	AppliedAt time.Time
}

// Migrator applies and reverts a migration chain against a database.
type Migrator struct {
	db      *sql.DB
	dialect dialect.Dialect
	chain   *Chain
	logger  *slog.Logger
}

// New loads the registered chain and returns a migrator for it.
// An invalid chain is returned as an error and must stop startup.
func New(db *sql.DB, d dialect.Dialect, logger *slog.Logger) (*Migrator, error) {
	chain, err := Load()
	if err != nil {
		return nil, err
	}
	return NewWithChain(db, d, chain, logger), nil
}

// NewWithChain returns a migrator for an already validated chain.
func NewWithChain(db *sql.DB, d dialect.Dialect, chain *Chain, logger *slog.Logger) *Migrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Migrator{db: db, dialect: d, chain: chain, logger: logger}
}

// Run upgrades the database to the head revision of the registered chain.
func Run(ctx context.Context, db *sql.DB, d dialect.Dialect, logger *slog.Logger) error {
	m, err := New(db, d, logger)
	if err != nil {
		return err
	}
	return m.Upgrade(ctx, Head)
}

// Chain returns the chain the migrator works on.
func (m *Migrator) Chain() *Chain {
	return m.chain
}

// Upgrade applies pending migrations up to and including target.
// An empty target or Head means the newest revision.
func (m *Migrator) Upgrade(ctx context.Context, target string) error {
	if target == "" {
		target = Head
	}
	if err := m.ensureTrackingTable(ctx); err != nil {
		return err
	}
	current, _, err := m.position(ctx)
	if err != nil {
		return err
	}
	goal, err := m.resolve(target)
	if err != nil {
		return err
	}
	if goal < current {
		return fmt.Errorf("target %s is older than current revision %s, downgrade instead",
			target, m.chain.migrations[current].Revision)
	}

	for i := current + 1; i <= goal; i++ {
		mig := m.chain.migrations[i]
		m.logger.Info("running migration", "revision", mig.Revision, "description", mig.Description)

		if err := m.apply(ctx, mig); err != nil {
			return fmt.Errorf("migration %s (%s) failed: %w", mig.Revision, mig.Description, err)
		}

		m.logger.Info("migration completed", "revision", mig.Revision)
	}

	return nil
}

// Downgrade reverts applied migrations, newest first, until target is the
// current revision. Base reverts everything.
func (m *Migrator) Downgrade(ctx context.Context, target string) error {
	if target == "" || target == Head {
		return fmt.Errorf("downgrade needs a revision or %q", Base)
	}
	if err := m.ensureTrackingTable(ctx); err != nil {
		return err
	}
	current, _, err := m.position(ctx)
	if err != nil {
		return err
	}
	goal, err := m.resolve(target)
	if err != nil {
		return err
	}
	if goal > current {
		return fmt.Errorf("target %s has not been applied, upgrade instead", target)
	}

	for i := current; i > goal; i-- {
		mig := m.chain.migrations[i]
		m.logger.Info("reverting migration", "revision", mig.Revision, "description", mig.Description)

		if err := m.revert(ctx, mig); err != nil {
			return fmt.Errorf("reverting %s (%s) failed: %w", mig.Revision, mig.Description, err)
		}

		m.logger.Info("migration reverted", "revision", mig.Revision)
	}

	return nil
}

// Current returns the newest applied revision, or "" if none is applied.
func (m *Migrator) Current(ctx context.Context) (string, error) {
	if err := m.ensureTrackingTable(ctx); err != nil {
		return "", err
	}
	current, _, err := m.position(ctx)
	if err != nil || current < 0 {
		return "", err
	}
	return m.chain.migrations[current].Revision, nil
}

// Applied returns the applied migrations in chain order.
func (m *Migrator) Applied(ctx context.Context) ([]AppliedMigration, error) {
	if err := m.ensureTrackingTable(ctx); err != nil {
		return nil, err
	}
	current, applied, err := m.position(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]AppliedMigration, 0, current+1)
	for i := 0; i <= current; i++ {
		out = append(out, applied[m.chain.migrations[i].Revision])
	}
	return out, nil
}

// Pending returns the migrations not yet applied, in application order.
func (m *Migrator) Pending(ctx context.Context) ([]Migration, error) {
	if err := m.ensureTrackingTable(ctx); err != nil {
		return nil, err
	}
	current, _, err := m.position(ctx)
	if err != nil {
		return nil, err
	}
	return m.chain.Migrations()[current+1:], nil
}

// Status returns every migration of the chain with its applied state.
func (m *Migrator) Status(ctx context.Context) ([]Status, error) {
	if err := m.ensureTrackingTable(ctx); err != nil {
		return nil, err
	}
	_, applied, err := m.position(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Status, 0, m.chain.Len())
	for _, mig := range m.chain.migrations {
		s := Status{Migration: mig}
		if a, ok := applied[mig.Revision]; ok {
			s.Applied = true
			s.AppliedAt = a.AppliedAt
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *Migrator) ensureTrackingTable(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS `+trackingTable+` (
			version TEXT PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at TEXT NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

// resolve maps a target to a chain index; Base is -1.
func (m *Migrator) resolve(target string) (int, error) {
	switch target {
	case Head:
		return m.chain.Len() - 1, nil
	case Base:
		return -1, nil
	}
	i, ok := m.chain.Index(target)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownRevision, target)
	}
	return i, nil
}

// position returns the chain index of the current revision (-1 when nothing
// is applied) along with the recorded rows. Recorded revisions must form a
// prefix of the chain.
func (m *Migrator) position(ctx context.Context) (int, map[string]AppliedMigration, error) {
	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}

	current := -1
	for i, mig := range m.chain.migrations {
		if _, ok := applied[mig.Revision]; !ok {
			continue
		}
		if current != i-1 {
			return 0, nil, fmt.Errorf("%w: %s is applied but %s is not",
				ErrDiverged, mig.Revision, m.chain.migrations[i-1].Revision)
		}
		current = i
	}

	if len(applied) != current+1 {
		var unknown []string
		for rev := range applied {
			if _, ok := m.chain.Index(rev); !ok {
				unknown = append(unknown, rev)
			}
		}
		sort.Strings(unknown)
		return 0, nil, fmt.Errorf("%w: unknown revisions %s", ErrDiverged, strings.Join(unknown, ", "))
	}

	return current, applied, nil
}

// appliedVersions returns the recorded migrations keyed by revision.
func (m *Migrator) appliedVersions(ctx context.Context) (map[string]AppliedMigration, error) {
	query, args, err := m.dialect.Builder().
		Select("version", "description", "applied_at").
		From(trackingTable).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[string]AppliedMigration)
	for rows.Next() {
		var a AppliedMigration
		var appliedAt string
		if err := rows.Scan(&a.Revision, &a.Description, &appliedAt); err != nil {
			return nil, err
		}
		a.AppliedAt, _ = time.Parse(time.RFC3339, appliedAt)
		applied[a.Revision] = a
	}

	return applied, rows.Err()
}

// apply runs one migration and records it within a single transaction.
func (m *Migrator) apply(ctx context.Context, mig Migration) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range mig.UpStatements(m.dialect) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute statement: %w\n%s", err, stmt)
		}
	}

	query, args, err := m.dialect.Builder().
		Insert(trackingTable).
		Columns("version", "description", "applied_at").
		Values(mig.Revision, mig.Description, time.Now().UTC().Format(time.RFC3339)).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}

	return tx.Commit()
}

// revert undoes one migration and removes its record within a single transaction.
func (m *Migrator) revert(ctx context.Context, mig Migration) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range mig.DownStatements(m.dialect) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute statement: %w\n%s", err, stmt)
		}
	}

	query, args, err := m.dialect.Builder().
		Delete(trackingTable).
		Where("version = ?", mig.Revision).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to remove migration record: %w", err)
	}

	return tx.Commit()
}
