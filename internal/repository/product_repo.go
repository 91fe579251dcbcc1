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

// ProductFields are the filterable and orderable product fields.
var ProductFields = lookup.Fields{
	"id":               {Column: "id", Kind: lookup.Int},
	"code":             {Column: "code", Kind: lookup.Text},
	"product_name":     {Column: "product_name", Kind: lookup.Text},
	"brands":           {Column: "brands", Kind: lookup.Text},
	"categories_tags":  {Column: "categories_tags", Kind: lookup.Array},
	"labels_tags":      {Column: "labels_tags", Kind: lookup.Array},
	"nutriscore_grade": {Column: "nutriscore_grade", Kind: lookup.Text},
	"price_count":      {Column: "price_count", Kind: lookup.Int},
	"created":          {Column: "created", Kind: lookup.Timestamp},
}

// SQLProductRepository implements ProductRepository for SQLite and PostgreSQL.
type SQLProductRepository struct {
	db      *sql.DB
	dialect dialect.Dialect
}

// NewSQLProductRepository creates a new product repository.
func NewSQLProductRepository(db *database.DB) *SQLProductRepository {
	return &SQLProductRepository{db: db.DB, dialect: db.Dialect}
}

func (r *SQLProductRepository) columns() []string {
	return []string{
		"id", "code", "product_name", "brands",
		tagsColumn(r.dialect, "categories_tags"),
		tagsColumn(r.dialect, "labels_tags"),
		"nutriscore_grade", "price_count", "created", "updated",
	}
}

func (r *SQLProductRepository) Create(ctx context.Context, product *models.Product) error {
	now := time.Now().UTC().Truncate(time.Second)
	if product.Created.IsZero() {
		product.Created = now
	}
	product.Updated = now

	var grade sql.NullString
	if product.NutriscoreGrade != nil {
		grade = sql.NullString{String: string(*product.NutriscoreGrade), Valid: true}
	}

	query, args, err := r.dialect.Builder().
		Insert("products").
		Columns(
			"code", "product_name", "brands", "categories_tags", "labels_tags",
			"nutriscore_grade", "price_count", "created", "updated",
		).
		Values(
			product.Code,
			nullStringPtr(product.ProductName),
			nullStringPtr(product.Brands),
			tagsArg(r.dialect, product.CategoriesTags),
			tagsArg(r.dialect, product.LabelsTags),
			grade,
			product.PriceCount,
			timeArg(r.dialect, product.Created),
			timeArg(r.dialect, product.Updated),
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return err
	}

	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&product.ID); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	if product.CategoriesTags == nil {
		product.CategoriesTags = models.Tags{}
	}
	if product.LabelsTags == nil {
		product.LabelsTags = models.Tags{}
	}
	return nil
}

func (r *SQLProductRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	return r.getOne(ctx, sq.Eq{"id": id})
}

func (r *SQLProductRepository) GetByCode(ctx context.Context, code string) (*models.Product, error) {
	return r.getOne(ctx, sq.Eq{"code": code})
}

func (r *SQLProductRepository) getOne(ctx context.Context, where sq.Sqlizer) (*models.Product, error) {
	query, args, err := r.dialect.Builder().
		Select(r.columns()...).
		From("products").
		Where(where).
		ToSql()
	if err != nil {
		return nil, err
	}

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

func (r *SQLProductRepository) List(ctx context.Context, q ListQuery) ([]*models.Product, error) {
	b := r.dialect.Builder().
		Select(r.columns()...).
		From("products")
	b = applyListQuery(b, q)

	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []*models.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

func (r *SQLProductRepository) Count(ctx context.Context, where sq.Sqlizer) (int, error) {
	return count(ctx, r.db, r.dialect, "products", where)
}

func (r *SQLProductRepository) IncrementPriceCount(ctx context.Context, id int64) error {
	query, args, err := r.dialect.Builder().
		Update("products").
		Set("price_count", sq.Expr("price_count + 1")).
		Set("updated", timeArg(r.dialect, time.Now().UTC().Truncate(time.Second))).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update product price count: %w", err)
	}
	return nil
}

func (r *SQLProductRepository) Each(ctx context.Context, fn func(*models.Product) error) error {
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

func scanProduct(row rowScanner) (*models.Product, error) {
	var p models.Product
	var productName, brands, grade sql.NullString
	var created, updated dbTime

	err := row.Scan(
		&p.ID, &p.Code, &productName, &brands, &p.CategoriesTags, &p.LabelsTags,
		&grade, &p.PriceCount, &created, &updated,
	)
	if err != nil {
		return nil, err
	}

	p.ProductName = stringPtr(productName)
	p.Brands = stringPtr(brands)
	if grade.Valid {
		g := models.NutriscoreGrade(grade.String)
		p.NutriscoreGrade = &g
	}
	p.Created = created.Time
	p.Updated = updated.Time
	return &p, nil
}
