package repository

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/openfoodfacts/open-prices/internal/database/dialect"
)

// eachPageSize is the batch size used when streaming whole tables.
const eachPageSize = 500

func applyListQuery(b sq.SelectBuilder, q ListQuery) sq.SelectBuilder {
	if q.Where != nil {
		b = b.Where(q.Where)
	}
	if len(q.OrderBy) > 0 {
		b = b.OrderBy(q.OrderBy...)
	} else {
		b = b.OrderBy("id ASC")
	}
	if q.Limit > 0 {
		b = b.Limit(uint64(q.Limit))
	}
	if q.Offset > 0 {
		b = b.Offset(uint64(q.Offset))
	}
	return b
}

func count(ctx context.Context, db *sql.DB, d dialect.Dialect, table string, where sq.Sqlizer) (int, error) {
	b := d.Builder().Select("COUNT(*)").From(table)
	if where != nil {
		b = b.Where(where)
	}
	query, args, err := b.ToSql()
	if err != nil {
		return 0, err
	}

	var n int
	if err := db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}

// eachPage calls fetch with increasing offsets until a short page comes back.
func eachPage(fetch func(limit, offset int) (int, error)) error {
	for offset := 0; ; offset += eachPageSize {
		n, err := fetch(eachPageSize, offset)
		if err != nil {
			return err
		}
		if n < eachPageSize {
			return nil
		}
	}
}
