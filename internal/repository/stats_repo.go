package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/openfoodfacts/open-prices/internal/database"
	"github.com/openfoodfacts/open-prices/internal/database/dialect"
	"github.com/openfoodfacts/open-prices/internal/models"
)

// totalStatsID is the primary key of the singleton stats row.
const totalStatsID = 1

// SQLTotalStatsRepository implements TotalStatsRepository.
type SQLTotalStatsRepository struct {
	db      *sql.DB
	dialect dialect.Dialect
}

// NewSQLTotalStatsRepository creates a new total stats repository.
func NewSQLTotalStatsRepository(db *database.DB) *SQLTotalStatsRepository {
	return &SQLTotalStatsRepository{db: db.DB, dialect: db.Dialect}
}

// Get returns the stats row, or nil if it is missing.
func (r *SQLTotalStatsRepository) Get(ctx context.Context) (*models.TotalStats, error) {
	query, args, err := r.dialect.Builder().
		Select(
			"price_count", "price_type_product_code_count", "price_type_category_tag_count",
			"price_currency_count", "product_count", "product_with_price_count",
			"location_count", "location_with_price_count", "location_type_osm_country_count",
			"proof_count", "user_count", "created", "updated",
		).
		From("stats_totalstats").
		Where(sq.Eq{"id": totalStatsID}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var s models.TotalStats
	var created, updated dbTime
	err = r.db.QueryRowContext(ctx, query, args...).Scan(
		&s.PriceCount, &s.PriceTypeProductCodeCount, &s.PriceTypeCategoryTagCount,
		&s.PriceCurrencyCount, &s.ProductCount, &s.ProductWithPriceCount,
		&s.LocationCount, &s.LocationWithPriceCount, &s.LocationTypeOSMCountryCount,
		&s.ProofCount, &s.UserCount, &created, &updated,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get total stats: %w", err)
	}
	s.Created = created.Time
	s.Updated = updated.Time
	return &s, nil
}

// totalsQuery recomputes the counters derivable from prices and products.
// Locations are only known through prices, so both location counters share
// one value.
const totalsQuery = `SELECT
	(SELECT COUNT(*) FROM prices),
	(SELECT COUNT(*) FROM prices WHERE product_code IS NOT NULL),
	(SELECT COUNT(*) FROM prices WHERE category_tag IS NOT NULL),
	(SELECT COUNT(DISTINCT currency) FROM prices),
	(SELECT COUNT(*) FROM products),
	(SELECT COUNT(*) FROM products WHERE price_count > 0),
	(SELECT COUNT(*) FROM (SELECT DISTINCT location_osm_type, location_osm_id FROM prices WHERE location_osm_id IS NOT NULL) l),
	(SELECT COUNT(DISTINCT owner) FROM prices WHERE owner IS NOT NULL)`

// Refresh recomputes the counters and stores them in the stats row.
// location_type_osm_country_count and proof_count have no source table and
// keep their stored values.
func (r *SQLTotalStatsRepository) Refresh(ctx context.Context) (*models.TotalStats, error) {
	var s models.TotalStats
	err := r.db.QueryRowContext(ctx, totalsQuery).Scan(
		&s.PriceCount, &s.PriceTypeProductCodeCount, &s.PriceTypeCategoryTagCount,
		&s.PriceCurrencyCount, &s.ProductCount, &s.ProductWithPriceCount,
		&s.LocationCount, &s.UserCount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compute total stats: %w", err)
	}

	query, args, err := r.dialect.Builder().
		Update("stats_totalstats").
		SetMap(map[string]any{
			"price_count":                   s.PriceCount,
			"price_type_product_code_count": s.PriceTypeProductCodeCount,
			"price_type_category_tag_count": s.PriceTypeCategoryTagCount,
			"price_currency_count":          s.PriceCurrencyCount,
			"product_count":                 s.ProductCount,
			"product_with_price_count":      s.ProductWithPriceCount,
			"location_count":                s.LocationCount,
			"location_with_price_count":     s.LocationCount,
			"user_count":                    s.UserCount,
			"updated":                       timeArg(r.dialect, time.Now().UTC().Truncate(time.Second)),
		}).
		Where(sq.Eq{"id": totalStatsID}).
		ToSql()
	if err != nil {
		return nil, err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update total stats: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("total stats row %d is missing", totalStatsID)
	}
	return r.Get(ctx)
}
