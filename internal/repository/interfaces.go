// Package repository defines repository interfaces for data access.
package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/openfoodfacts/open-prices/internal/database"
	"github.com/openfoodfacts/open-prices/internal/models"
)

// ListQuery selects a page of rows.
// Where may be nil; OrderBy holds "column ASC|DESC" terms.
type ListQuery struct {
	Where   sq.Sqlizer
	OrderBy []string
	Limit   int
	Offset  int
}

// PriceRepository defines methods for price data access.
type PriceRepository interface {
	Create(ctx context.Context, price *models.Price) error
	GetByID(ctx context.Context, id int64) (*models.Price, error)
	List(ctx context.Context, q ListQuery) ([]*models.Price, error)
	Count(ctx context.Context, where sq.Sqlizer) (int, error)
	// Each calls fn for every price in id order, stopping at the first error.
	Each(ctx context.Context, fn func(*models.Price) error) error
}

// ProductRepository defines methods for product data access.
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	GetByCode(ctx context.Context, code string) (*models.Product, error)
	List(ctx context.Context, q ListQuery) ([]*models.Product, error)
	Count(ctx context.Context, where sq.Sqlizer) (int, error)
	IncrementPriceCount(ctx context.Context, id int64) error
	Each(ctx context.Context, fn func(*models.Product) error) error
}

// TotalStatsRepository defines methods for the site-wide counters.
type TotalStatsRepository interface {
	Get(ctx context.Context) (*models.TotalStats, error)
	Refresh(ctx context.Context) (*models.TotalStats, error)
}

// Repositories holds all repository instances.
type Repositories struct {
	Price      PriceRepository
	Product    ProductRepository
	TotalStats TotalStatsRepository
}

// NewRepositories creates all repository instances.
func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Price:      NewSQLPriceRepository(db),
		Product:    NewSQLProductRepository(db),
		TotalStats: NewSQLTotalStatsRepository(db),
	}
}
