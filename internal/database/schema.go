package database

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/openfoodfacts/open-prices/internal/database/dialect"
)

// Column describes one column of a live table.
type Column struct {
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	NotNull    bool    `json:"not_null"`
	Default    *string `json:"default,omitempty"`
	PrimaryKey bool    `json:"primary_key"`
}

// Tables returns the names of the user tables in the current schema, sorted.
func (db *DB) Tables(ctx context.Context) ([]string, error) {
	var q sq.SelectBuilder
	switch db.Dialect {
	case dialect.Postgres:
		q = db.Dialect.Builder().
			Select("table_name").
			From("information_schema.tables").
			Where("table_schema = current_schema()").
			Where(sq.Eq{"table_type": "BASE TABLE"}).
			OrderBy("table_name")
	default:
		q = db.Dialect.Builder().
			Select("name").
			From("sqlite_master").
			Where(sq.Eq{"type": "table"}).
			Where(sq.NotLike{"name": "sqlite_%"}).
			OrderBy("name")
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// Columns returns the columns of a table in declaration order.
// A table that does not exist has no columns.
func (db *DB) Columns(ctx context.Context, table string) ([]Column, error) {
	// pragma_table_info takes the table as a function argument, which squirrel
	// cannot bind inside FROM.
	query := `SELECT name, type, "notnull" <> 0, dflt_value, pk > 0 FROM pragma_table_info(?) ORDER BY cid`
	args := []any{table}

	if db.Dialect == dialect.Postgres {
		var err error
		query, args, err = db.Dialect.Builder().
			Select(
				"c.column_name",
				"c.data_type",
				"c.is_nullable = 'NO'",
				"c.column_default",
				`EXISTS (
					SELECT 1 FROM information_schema.table_constraints tc
					JOIN information_schema.key_column_usage k
						ON k.constraint_name = tc.constraint_name AND k.table_schema = tc.table_schema
					WHERE tc.constraint_type = 'PRIMARY KEY'
						AND k.table_schema = c.table_schema
						AND k.table_name = c.table_name
						AND k.column_name = c.column_name
				)`,
			).
			From("information_schema.columns c").
			Where("c.table_schema = current_schema()").
			Where(sq.Eq{"c.table_name": table}).
			OrderBy("c.ordinal_position").
			ToSql()
		if err != nil {
			return nil, err
		}
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to describe %s: %w", table, err)
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var c Column
		var def sql.NullString
		if err := rows.Scan(&c.Name, &c.Type, &c.NotNull, &def, &c.PrimaryKey); err != nil {
			return nil, err
		}
		if def.Valid {
			c.Default = &def.String
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

// Snapshot returns the columns of every user table, keyed by table name.
// The migration tracking table is left out.
func (db *DB) Snapshot(ctx context.Context) (map[string][]Column, error) {
	tables, err := db.Tables(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]Column, len(tables))
	for _, t := range tables {
		if t == "schema_migrations" {
			continue
		}
		cols, err := db.Columns(ctx, t)
		if err != nil {
			return nil, err
		}
		out[t] = cols
	}
	return out, nil
}
