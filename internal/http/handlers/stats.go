package handlers

import (
	"context"
	"log/slog"

	"github.com/danielgtaylor/huma/v2"

	"github.com/openfoodfacts/open-prices/internal/models"
)

// StatsService is the part of service.StatsService used by the handlers.
type StatsService interface {
	Totals(ctx context.Context) (*models.TotalStats, error)
}

// StatsHandler serves the site-wide counters.
type StatsHandler struct {
	svc    StatsService
	logger *slog.Logger
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(svc StatsService, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{svc: svc, logger: logger}
}

// StatsOutput wraps the TotalStats row.
type StatsOutput struct {
	Body *models.TotalStats
}

// GetStats returns the TotalStats row.
func (h *StatsHandler) GetStats(ctx context.Context, input *struct{}) (*StatsOutput, error) {
	stats, err := h.svc.Totals(ctx)
	if err != nil {
		h.logger.Error("failed to get stats", "error", err)
		return nil, huma.Error500InternalServerError("failed to get stats")
	}
	return &StatsOutput{Body: stats}, nil
}
