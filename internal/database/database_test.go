package database

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/openfoodfacts/open-prices/internal/database/dialect"
	"github.com/openfoodfacts/open-prices/internal/database/migrations"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func TestNew_SQLiteDialect(t *testing.T) {
	db := setupTestDB(t)
	if db.Dialect != dialect.SQLite {
		t.Errorf("Dialect = %q, want %q", db.Dialect, dialect.SQLite)
	}
}

// ========================================
// Migration round trips
// ========================================

func TestMigrations_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	m, err := db.Migrator(nil)
	if err != nil {
		t.Fatalf("Migrator() error = %v", err)
	}

	previous := migrations.Base
	for _, mig := range m.Chain().Migrations() {
		before, err := db.Snapshot(ctx)
		if err != nil {
			t.Fatalf("Snapshot() error = %v", err)
		}

		if err := m.Upgrade(ctx, mig.Revision); err != nil {
			t.Fatalf("Upgrade(%s) error = %v", mig.Revision, err)
		}
		if err := m.Downgrade(ctx, previous); err != nil {
			t.Fatalf("Downgrade(%s) error = %v", previous, err)
		}

		after, err := db.Snapshot(ctx)
		if err != nil {
			t.Fatalf("Snapshot() error = %v", err)
		}
		if diff := cmp.Diff(before, after); diff != "" {
			t.Errorf("%s did not round-trip (-before +after):\n%s", mig.Revision, diff)
		}

		// Leave it applied for the next unit.
		if err := m.Upgrade(ctx, mig.Revision); err != nil {
			t.Fatalf("re-Upgrade(%s) error = %v", mig.Revision, err)
		}
		previous = mig.Revision
	}
}

// ========================================
// Introspection
// ========================================

func TestColumns_AddedColumns(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.Migrate(ctx, nil); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	zero := "0"
	tests := []struct {
		table string
		want  Column
	}{
		{"prices", Column{Name: "product_name", Type: "TEXT"}},
		{"products", Column{Name: "nutriscore_grade", Type: "TEXT"}},
		{"stats_totalstats", Column{Name: "location_type_osm_country_count", Type: "INTEGER", NotNull: true, Default: &zero}},
		{"stats_totalstats", Column{Name: "price_currency_count", Type: "INTEGER", NotNull: true, Default: &zero}},
	}

	for _, tt := range tests {
		t.Run(tt.table+"."+tt.want.Name, func(t *testing.T) {
			cols, err := db.Columns(ctx, tt.table)
			if err != nil {
				t.Fatalf("Columns() error = %v", err)
			}
			var got *Column
			for i := range cols {
				if cols[i].Name == tt.want.Name {
					got = &cols[i]
				}
			}
			if got == nil {
				t.Fatalf("column %s not found", tt.want.Name)
			}
			if diff := cmp.Diff(tt.want, *got); diff != "" {
				t.Errorf("column mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestColumns_MissingTable(t *testing.T) {
	db := setupTestDB(t)

	cols, err := db.Columns(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("Columns() error = %v", err)
	}
	if len(cols) != 0 {
		t.Errorf("Columns() = %d columns, want 0", len(cols))
	}
}

func TestTables(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.Migrate(ctx, nil); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	tables, err := db.Tables(ctx)
	if err != nil {
		t.Fatalf("Tables() error = %v", err)
	}
	want := []string{"prices", "products", "schema_migrations", "stats_totalstats"}
	if diff := cmp.Diff(want, tables); diff != "" {
		t.Errorf("Tables() mismatch (-want +got):\n%s", diff)
	}
}

func TestRollback(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.Migrate(ctx, nil); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if err := db.Rollback(ctx, "20241105-104500", nil); err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}

	cols, err := db.Columns(ctx, "products")
	if err != nil {
		t.Fatalf("Columns() error = %v", err)
	}
	for _, c := range cols {
		if c.Name == "nutriscore_grade" {
			t.Error("nutriscore_grade should be dropped")
		}
	}
}
