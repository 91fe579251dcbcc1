package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openfoodfacts/open-prices/internal/models"
	"github.com/openfoodfacts/open-prices/internal/repository"
)

// StatsService exposes the site-wide counters.
type StatsService struct {
	repos  *repository.Repositories
	logger *slog.Logger
}

// NewStatsService creates a new stats service.
func NewStatsService(repos *repository.Repositories, logger *slog.Logger) *StatsService {
	return &StatsService{repos: repos, logger: logger}
}

// Totals returns the TotalStats row.
func (s *StatsService) Totals(ctx context.Context) (*models.TotalStats, error) {
	stats, err := s.repos.TotalStats.Get(ctx)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		return nil, fmt.Errorf("total stats row is missing")
	}
	return stats, nil
}

// Refresh recomputes the counters from the prices and products tables.
func (s *StatsService) Refresh(ctx context.Context) (*models.TotalStats, error) {
	stats, err := s.repos.TotalStats.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("total stats refreshed",
		"price_count", stats.PriceCount,
		"product_count", stats.ProductCount,
		"price_currency_count", stats.PriceCurrencyCount,
	)
	return stats, nil
}
