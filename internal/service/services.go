// Package service contains the business logic layer.
package service

import (
	"fmt"
	"log/slog"

	"github.com/openfoodfacts/open-prices/internal/config"
	"github.com/openfoodfacts/open-prices/internal/database"
	"github.com/openfoodfacts/open-prices/internal/repository"
)

// Services holds all service instances.
type Services struct {
	Price   *PriceService
	Product *ProductService
	Stats   *StatsService
	Admin   *AdminService
	Storage *StorageService
	Export  *ExportService
}

// NewServices creates all service instances.
func NewServices(cfg *config.Config, db *database.DB, repos *repository.Repositories, logger *slog.Logger) (*Services, error) {
	storageSvc, err := NewStorageService(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage service: %w", err)
	}

	productSvc := NewProductService(repos, db.Dialect, logger)

	return &Services{
		Price:   NewPriceService(repos, productSvc, db.Dialect, logger),
		Product: productSvc,
		Stats:   NewStatsService(repos, logger),
		Admin:   NewAdminService(db, repos, logger),
		Storage: storageSvc,
		Export:  NewExportService(repos, storageSvc, cfg.ExportPrefix, cfg.ExportDir, logger),
	}, nil
}
