package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/openfoodfacts/open-prices/internal/database/dialect"
	"github.com/openfoodfacts/open-prices/internal/models"
)

// sqliteTimeLayouts are tried in order when a timestamp comes back as text.
var sqliteTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// dbTime scans timestamps stored as RFC3339 text (SQLite) or native
// timestamps (PostgreSQL).
type dbTime struct {
	time.Time
	Valid bool
}

func (t *dbTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time, t.Valid = time.Time{}, false
		return nil
	case time.Time:
		t.Time, t.Valid = v, true
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	}
	return fmt.Errorf("cannot scan %T into time", src)
}

func (t *dbTime) parse(s string) error {
	for _, layout := range sqliteTimeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time, t.Valid = parsed, true
			return nil
		}
	}
	return fmt.Errorf("unrecognised time %q", s)
}

// timeArg binds a timestamp in the dialect's storage form.
func timeArg(d dialect.Dialect, t time.Time) any {
	if d == dialect.Postgres {
		return t
	}
	return t.UTC().Format(time.RFC3339)
}

// tagsArg binds a tag list: native TEXT[] on PostgreSQL, JSON text on SQLite.
func tagsArg(d dialect.Dialect, tags models.Tags) any {
	if d == dialect.Postgres {
		if tags == nil {
			return []string{}
		}
		return []string(tags)
	}
	b, _ := tags.MarshalJSON()
	return string(b)
}

// tagsColumn selects an array column as JSON text so models.Tags can scan it.
func tagsColumn(d dialect.Dialect, column string) string {
	if d == dialect.Postgres {
		return fmt.Sprintf("array_to_json(%s)::text", column)
	}
	return column
}

// dateColumn selects a DATE column as YYYY-MM-DD text.
func dateColumn(d dialect.Dialect, column string) string {
	if d == dialect.Postgres {
		return fmt.Sprintf("to_char(%s, 'YYYY-MM-DD')", column)
	}
	return column
}

// numericColumn selects a NUMERIC column as a float.
func numericColumn(d dialect.Dialect, column string) string {
	if d == dialect.Postgres {
		return fmt.Sprintf("CAST(%s AS DOUBLE PRECISION)", column)
	}
	return column
}

func nullStringPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt64Ptr(n *int64) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *n, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func int64Ptr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

// boolArg binds a boolean: native on PostgreSQL, 0/1 on SQLite.
func boolArg(d dialect.Dialect, b bool) any {
	if d == dialect.Postgres {
		return b
	}
	if b {
		return 1
	}
	return 0
}
