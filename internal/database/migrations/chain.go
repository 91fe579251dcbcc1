package migrations

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/openfoodfacts/open-prices/internal/database/dialect"
)

// revisionLayout is the time layout of a revision id.
const revisionLayout = "20060102-150405"

// Chain validation errors.
var (
	ErrInvalidRevision   = errors.New("invalid revision")
	ErrDuplicateRevision = errors.New("duplicate revision")
	ErrUnknownRevision   = errors.New("unknown revision")
	ErrNoRoot            = errors.New("migration chain has no root")
	ErrMultipleRoots     = errors.New("migration chain has more than one root")
	ErrBranch            = errors.New("migration chain branches")
	ErrCycle             = errors.New("migration chain contains a cycle")
	ErrIrreversible      = errors.New("migration is not reversible")
	ErrOutOfOrder        = errors.New("revision is older than its predecessor")
)

// Chain is a validated, linear sequence of migrations from root to head.
type Chain struct {
	migrations []Migration
	index      map[string]int
}

// NewChain links migrations by their DownRevision and validates the result.
// The input order does not matter. The chain must have exactly one root, no
// branches, no cycles, no unknown predecessors, and every migration must have
// downgrade statements for every dialect.
func NewChain(ms []Migration) (*Chain, error) {
	byRevision := make(map[string]Migration, len(ms))
	for _, m := range ms {
		if _, err := time.Parse(revisionLayout, m.Revision); err != nil {
			return nil, fmt.Errorf("%w: %q must use YYYYMMDD-HHmmss", ErrInvalidRevision, m.Revision)
		}
		if _, dup := byRevision[m.Revision]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRevision, m.Revision)
		}
		if m.DownRevision == m.Revision {
			return nil, fmt.Errorf("%w: %s follows itself", ErrCycle, m.Revision)
		}
		if len(m.UpStatements(dialect.SQLite)) == 0 || len(m.UpStatements(dialect.Postgres)) == 0 {
			return nil, fmt.Errorf("%w: %s has no upgrade statements", ErrInvalidRevision, m.Revision)
		}
		if len(m.DownStatements(dialect.SQLite)) == 0 || len(m.DownStatements(dialect.Postgres)) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrIrreversible, m.Revision)
		}
		byRevision[m.Revision] = m
	}

	var roots []string
	next := make(map[string]string, len(ms))
	for _, m := range ms {
		if m.DownRevision == "" {
			roots = append(roots, m.Revision)
			continue
		}
		if _, ok := byRevision[m.DownRevision]; !ok {
			return nil, fmt.Errorf("%w: %s follows missing revision %s", ErrUnknownRevision, m.Revision, m.DownRevision)
		}
		if other, taken := next[m.DownRevision]; taken {
			return nil, fmt.Errorf("%w: %s and %s both follow %s", ErrBranch, other, m.Revision, m.DownRevision)
		}
		next[m.DownRevision] = m.Revision
	}

	switch {
	case len(ms) == 0:
		return nil, ErrNoRoot
	case len(roots) == 0:
		// Every migration has a predecessor, so following them must loop.
		return nil, fmt.Errorf("%w: %w", ErrNoRoot, ErrCycle)
	case len(roots) > 1:
		sort.Strings(roots)
		return nil, fmt.Errorf("%w: %s", ErrMultipleRoots, strings.Join(roots, ", "))
	}

	chain := &Chain{
		migrations: make([]Migration, 0, len(ms)),
		index:      make(map[string]int, len(ms)),
	}
	for rev := roots[0]; rev != ""; rev = next[rev] {
		chain.index[rev] = len(chain.migrations)
		chain.migrations = append(chain.migrations, byRevision[rev])
	}

	// Anything not reachable from the root sits on a loop of its own.
	if len(chain.migrations) != len(ms) {
		var stranded []string
		for rev := range byRevision {
			if _, ok := chain.index[rev]; !ok {
				stranded = append(stranded, rev)
			}
		}
		sort.Strings(stranded)
		return nil, fmt.Errorf("%w: %s", ErrCycle, strings.Join(stranded, ", "))
	}

	for _, m := range chain.migrations[1:] {
		if m.Revision < m.DownRevision {
			return nil, fmt.Errorf("%w: %s follows %s", ErrOutOfOrder, m.Revision, m.DownRevision)
		}
	}

	return chain, nil
}

// Migrations returns the chain in application order (root first).
func (c *Chain) Migrations() []Migration {
	out := make([]Migration, len(c.migrations))
	copy(out, c.migrations)
	return out
}

// Len returns the number of migrations in the chain.
func (c *Chain) Len() int {
	return len(c.migrations)
}

// Root returns the first revision of the chain.
func (c *Chain) Root() string {
	if len(c.migrations) == 0 {
		return ""
	}
	return c.migrations[0].Revision
}

// Head returns the newest revision of the chain.
func (c *Chain) Head() string {
	if len(c.migrations) == 0 {
		return ""
	}
	return c.migrations[len(c.migrations)-1].Revision
}

// Index returns the position of a revision in the chain.
func (c *Chain) Index(revision string) (int, bool) {
	i, ok := c.index[revision]
	return i, ok
}

// Get returns the migration for a revision.
func (c *Chain) Get(revision string) (Migration, bool) {
	i, ok := c.index[revision]
	if !ok {
		return Migration{}, false
	}
	return c.migrations[i], true
}
