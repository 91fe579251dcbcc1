// Package routes provides shared route registration for the Open Prices API.
// Both the server and the OpenAPI generator register the same operations,
// so the published document always matches what is served.
package routes

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/openfoodfacts/open-prices/internal/version"
)

// APIPrefix is where the API sub-router is mounted.
const APIPrefix = "/api"

// NewHumaConfig creates the shared Huma configuration for the API.
// baseURL is the public origin; the API prefix is appended to it.
func NewHumaConfig(baseURL string) huma.Config {
	cfg := huma.DefaultConfig("Open Prices API", version.Get().Short())
	cfg.Info.Description = "Crowdsourced product prices collected in shops, with their products and site-wide statistics."

	// No $schema links in responses
	cfg.CreateHooks = nil

	cfg.OpenAPIPath = "/openapi"
	cfg.DocsPath = "/docs"

	if baseURL != "" {
		cfg.Servers = []*huma.Server{
			{URL: baseURL + APIPrefix, Description: "API Server"},
		}
	}

	cfg.Tags = []*huma.Tag{
		{Name: "Prices", Description: "Prices observed in shops", Extensions: map[string]any{"x-displayName": "Prices"}},
		{Name: "Products", Description: "Products referenced by prices", Extensions: map[string]any{"x-displayName": "Products"}},
		{Name: "Stats", Description: "Site-wide counters", Extensions: map[string]any{"x-displayName": "Stats"}},
		{Name: "Status", Description: "Service status and version", Extensions: map[string]any{"x-displayName": "Status"}},
	}

	return cfg
}
