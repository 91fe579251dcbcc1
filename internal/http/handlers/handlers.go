// Package handlers contains HTTP handlers for the API.
package handlers

import (
	"context"
	"log/slog"

	"github.com/danielgtaylor/huma/v2"

	"github.com/openfoodfacts/open-prices/internal/version"
)

// StatusOutput represents the service status response.
type StatusOutput struct {
	Body struct {
		Status  string       `json:"status" example:"running"`
		Version version.Info `json:"version"`
	}
}

// Status returns the service status and build information.
func Status(ctx context.Context, input *struct{}) (*StatusOutput, error) {
	out := &StatusOutput{}
	out.Body.Status = "running"
	out.Body.Version = version.Get()
	return out, nil
}

// LivezOutput represents the liveness probe response.
type LivezOutput struct {
	Body struct {
		Status string `json:"status"`
	}
}

// Livez reports that the process is serving requests.
func Livez(ctx context.Context, input *struct{}) (*LivezOutput, error) {
	out := &LivezOutput{}
	out.Body.Status = "ok"
	return out, nil
}

// DBPinger is implemented by *sql.DB.
type DBPinger interface {
	PingContext(ctx context.Context) error
}

// ReadyzHandler reports whether the database is reachable.
type ReadyzHandler struct {
	db DBPinger
}

// NewReadyzHandler creates a readiness handler.
func NewReadyzHandler(db DBPinger) *ReadyzHandler {
	return &ReadyzHandler{db: db}
}

// Readyz pings the database.
func (h *ReadyzHandler) Readyz(ctx context.Context, input *struct{}) (*LivezOutput, error) {
	if h.db == nil {
		return nil, huma.Error503ServiceUnavailable("database not configured")
	}
	if err := h.db.PingContext(ctx); err != nil {
		slog.Warn("readiness check failed", "error", err)
		return nil, huma.Error503ServiceUnavailable("database unavailable")
	}
	out := &LivezOutput{}
	out.Body.Status = "ok"
	return out, nil
}
