package routes

import (
	"context"

	"github.com/openfoodfacts/open-prices/internal/http/handlers"
)

// PriceHandlers defines the interface for price operations.
type PriceHandlers interface {
	ListPrices(ctx context.Context, input *handlers.ListPricesInput) (*handlers.ListPricesOutput, error)
	GetPrice(ctx context.Context, input *handlers.GetPriceInput) (*handlers.PriceOutput, error)
	CreatePrice(ctx context.Context, input *handlers.CreatePriceInput) (*handlers.PriceOutput, error)
}

// ProductHandlers defines the interface for product operations.
type ProductHandlers interface {
	ListProducts(ctx context.Context, input *handlers.ListProductsInput) (*handlers.ListProductsOutput, error)
	GetProduct(ctx context.Context, input *handlers.GetProductInput) (*handlers.ProductOutput, error)
	GetProductByCode(ctx context.Context, input *handlers.GetProductByCodeInput) (*handlers.ProductOutput, error)
}

// StatsHandlers defines the interface for statistics.
type StatsHandlers interface {
	GetStats(ctx context.Context, input *struct{}) (*handlers.StatsOutput, error)
}

// Handlers contains all handler implementations needed for route registration.
type Handlers struct {
	Status func(context.Context, *struct{}) (*handlers.StatusOutput, error)

	// Probes, registered on the hidden API
	Livez  func(context.Context, *struct{}) (*handlers.LivezOutput, error)
	Readyz func(context.Context, *struct{}) (*handlers.LivezOutput, error)

	Price   PriceHandlers
	Product ProductHandlers
	Stats   StatsHandlers
}
