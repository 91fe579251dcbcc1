package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openfoodfacts/open-prices/internal/database/dialect"
	"github.com/openfoodfacts/open-prices/internal/models"
	"github.com/openfoodfacts/open-prices/internal/repository"
)

// ProductService handles products.
type ProductService struct {
	repos   *repository.Repositories
	dialect dialect.Dialect
	logger  *slog.Logger
}

// NewProductService creates a new product service.
func NewProductService(repos *repository.Repositories, d dialect.Dialect, logger *slog.Logger) *ProductService {
	return &ProductService{
		repos:   repos,
		dialect: d,
		logger:  logger,
	}
}

// GetOrCreate returns the product with code. A missing product is created
// with name as its product name; an existing product is returned unchanged.
func (s *ProductService) GetOrCreate(ctx context.Context, code string, name *string) (*models.Product, error) {
	existing, err := s.repos.Product.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	product := &models.Product{Code: code, ProductName: name}
	if err := s.repos.Product.Create(ctx, product); err != nil {
		// Another request may have created it first.
		if again, getErr := s.repos.Product.GetByCode(ctx, code); getErr == nil && again != nil {
			return again, nil
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info("created product", "id", product.ID, "code", code)
	return product, nil
}

// GetByID returns the product, or nil when it does not exist.
func (s *ProductService) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	return s.repos.Product.GetByID(ctx, id)
}

// GetByCode returns the product, or nil when it does not exist.
func (s *ProductService) GetByCode(ctx context.Context, code string) (*models.Product, error) {
	return s.repos.Product.GetByCode(ctx, code)
}

// List returns a page of products matching the filters.
func (s *ProductService) List(ctx context.Context, p ListParams) (*Page[*models.Product], error) {
	q, err := p.query(repository.ProductFields, s.dialect)
	if err != nil {
		return nil, err
	}

	items, err := s.repos.Product.List(ctx, q)
	if err != nil {
		return nil, err
	}
	total, err := s.repos.Product.Count(ctx, q.Where)
	if err != nil {
		return nil, err
	}
	return newPage(items, total, p), nil
}
