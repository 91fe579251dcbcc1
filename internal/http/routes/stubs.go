package routes

import (
	"context"

	"github.com/openfoodfacts/open-prices/internal/http/handlers"
)

// StubHandlers returns a Handlers instance with stub implementations.
// They return nil responses and only serve OpenAPI generation, where Huma
// reads type information from the function signatures.
func StubHandlers() *Handlers {
	return &Handlers{
		Status:  stubStatus,
		Livez:   stubProbe,
		Readyz:  stubProbe,
		Price:   stubPriceHandlers{},
		Product: stubProductHandlers{},
		Stats:   stubStatsHandlers{},
	}
}

func stubStatus(_ context.Context, _ *struct{}) (*handlers.StatusOutput, error) {
	return nil, nil
}

func stubProbe(_ context.Context, _ *struct{}) (*handlers.LivezOutput, error) {
	return nil, nil
}

type stubPriceHandlers struct{}

func (stubPriceHandlers) ListPrices(context.Context, *handlers.ListPricesInput) (*handlers.ListPricesOutput, error) {
	return nil, nil
}

func (stubPriceHandlers) GetPrice(context.Context, *handlers.GetPriceInput) (*handlers.PriceOutput, error) {
	return nil, nil
}

func (stubPriceHandlers) CreatePrice(context.Context, *handlers.CreatePriceInput) (*handlers.PriceOutput, error) {
	return nil, nil
}

type stubProductHandlers struct{}

func (stubProductHandlers) ListProducts(context.Context, *handlers.ListProductsInput) (*handlers.ListProductsOutput, error) {
	return nil, nil
}

func (stubProductHandlers) GetProduct(context.Context, *handlers.GetProductInput) (*handlers.ProductOutput, error) {
	return nil, nil
}

func (stubProductHandlers) GetProductByCode(context.Context, *handlers.GetProductByCodeInput) (*handlers.ProductOutput, error) {
	return nil, nil
}

type stubStatsHandlers struct{}

func (stubStatsHandlers) GetStats(context.Context, *struct{}) (*handlers.StatsOutput, error) {
	return nil, nil
}
