package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/openfoodfacts/open-prices/internal/database"
	"github.com/openfoodfacts/open-prices/internal/database/dialect"
	"github.com/openfoodfacts/open-prices/internal/database/lookup"
	"github.com/openfoodfacts/open-prices/internal/models"
)

// PriceFields are the filterable and orderable price fields.
var PriceFields = lookup.Fields{
	"id":                  {Column: "id", Kind: lookup.Int},
	"product_code":        {Column: "product_code", Kind: lookup.Text},
	"product_name":        {Column: "product_name", Kind: lookup.Text},
	"product_id":          {Column: "product_id", Kind: lookup.Int},
	"category_tag":        {Column: "category_tag", Kind: lookup.Text},
	"labels_tags":         {Column: "labels_tags", Kind: lookup.Array},
	"origins_tags":        {Column: "origins_tags", Kind: lookup.Array},
	"price":               {Column: "price", Kind: lookup.Float},
	"price_is_discounted": {Column: "price_is_discounted", Kind: lookup.Bool},
	"currency":            {Column: "currency", Kind: lookup.Text},
	"location_osm_id":     {Column: "location_osm_id", Kind: lookup.Int},
	"location_osm_type":   {Column: "location_osm_type", Kind: lookup.Text},
	"date":                {Column: "date", Kind: lookup.Date},
	"owner":               {Column: "owner", Kind: lookup.Text},
	"created":             {Column: "created", Kind: lookup.Timestamp},
}

// SQLPriceRepository implements PriceRepository for SQLite and PostgreSQL.
type SQLPriceRepository struct {
	db      *sql.DB
	dialect dialect.Dialect
}

// NewSQLPriceRepository creates a new price repository.
func NewSQLPriceRepository(db *database.DB) *SQLPriceRepository {
	return &SQLPriceRepository{db: db.DB, dialect: db.Dialect}
}

func (r *SQLPriceRepository) columns() []string {
	return []string{
		"id", "product_code", "product_name", "product_id", "category_tag",
		tagsColumn(r.dialect, "labels_tags"),
		tagsColumn(r.dialect, "origins_tags"),
		numericColumn(r.dialect, "price"),
		"price_is_discounted", "price_per", "currency",
		"location_osm_id", "location_osm_type",
		dateColumn(r.dialect, "date"),
		"owner", "created", "updated",
	}
}

func (r *SQLPriceRepository) Create(ctx context.Context, price *models.Price) error {
	now := time.Now().UTC().Truncate(time.Second)
	if price.Created.IsZero() {
		price.Created = now
	}
	price.Updated = now

	var pricePer, osmType sql.NullString
	if price.PricePer != nil {
		pricePer = sql.NullString{String: string(*price.PricePer), Valid: true}
	}
	if price.LocationOSMType != nil {
		osmType = sql.NullString{String: string(*price.LocationOSMType), Valid: true}
	}

	query, args, err := r.dialect.Builder().
		Insert("prices").
		Columns(
			"product_code", "product_name", "product_id", "category_tag",
			"labels_tags", "origins_tags", "price", "price_is_discounted", "price_per",
			"currency", "location_osm_id", "location_osm_type", "date", "owner",
			"created", "updated",
		).
		Values(
			nullStringPtr(price.ProductCode),
			nullStringPtr(price.ProductName),
			nullInt64Ptr(price.ProductID),
			nullStringPtr(price.CategoryTag),
			tagsArg(r.dialect, price.LabelsTags),
			tagsArg(r.dialect, price.OriginsTags),
			price.Price,
			boolArg(r.dialect, price.PriceIsDiscounted),
			pricePer,
			price.Currency,
			nullInt64Ptr(price.LocationOSMID),
			osmType,
			nullStringPtr(price.Date),
			nullStringPtr(price.Owner),
			timeArg(r.dialect, price.Created),
			timeArg(r.dialect, price.Updated),
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return err
	}

	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&price.ID); err != nil {
		return fmt.Errorf("failed to create price: %w", err)
	}
	if price.LabelsTags == nil {
		price.LabelsTags = models.Tags{}
	}
	if price.OriginsTags == nil {
		price.OriginsTags = models.Tags{}
	}
	return nil
}

func (r *SQLPriceRepository) GetByID(ctx context.Context, id int64) (*models.Price, error) {
	query, args, err := r.dialect.Builder().
		Select(r.columns()...).
		From("prices").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	price, err := scanPrice(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get price: %w", err)
	}
	return price, nil
}

func (r *SQLPriceRepository) List(ctx context.Context, q ListQuery) ([]*models.Price, error) {
	b := r.dialect.Builder().
		Select(r.columns()...).
		From("prices")
	b = applyListQuery(b, q)

	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query prices: %w", err)
	}
	defer rows.Close()

	prices := []*models.Price{}
	for rows.Next() {
		price, err := scanPrice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan price: %w", err)
		}
		prices = append(prices, price)
	}
	return prices, rows.Err()
}

func (r *SQLPriceRepository) Count(ctx context.Context, where sq.Sqlizer) (int, error) {
	return count(ctx, r.db, r.dialect, "prices", where)
}

func (r *SQLPriceRepository) Each(ctx context.Context, fn func(*models.Price) error) error {
	return eachPage(func(limit, offset int) (int, error) {
		page, err := r.List(ctx, ListQuery{OrderBy: []string{"id ASC"}, Limit: limit, Offset: offset})
		if err != nil {
			return 0, err
		}
		for _, p := range page {
			if err := fn(p); err != nil {
				return 0, err
			}
		}
		return len(page), nil
	})
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPrice(row rowScanner) (*models.Price, error) {
	var p models.Price
	var productCode, productName, categoryTag, pricePer, osmType, date, owner sql.NullString
	var productID, osmID sql.NullInt64
	var created, updated dbTime

	err := row.Scan(
		&p.ID, &productCode, &productName, &productID, &categoryTag,
		&p.LabelsTags, &p.OriginsTags, &p.Price, &p.PriceIsDiscounted, &pricePer,
		&p.Currency, &osmID, &osmType, &date, &owner, &created, &updated,
	)
	if err != nil {
		return nil, err
	}

	p.ProductCode = stringPtr(productCode)
	p.ProductName = stringPtr(productName)
	p.ProductID = int64Ptr(productID)
	p.CategoryTag = stringPtr(categoryTag)
	p.LocationOSMID = int64Ptr(osmID)
	p.Date = stringPtr(date)
	p.Owner = stringPtr(owner)
	if pricePer.Valid {
		v := models.PricePer(pricePer.String)
		p.PricePer = &v
	}
	if osmType.Valid {
		v := models.LocationOSMType(osmType.String)
		p.LocationOSMType = &v
	}
	p.Created = created.Time
	p.Updated = updated.Time
	return &p, nil
}
