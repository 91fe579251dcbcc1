// Package server assembles the HTTP router: the API app under /api, the
// admin site under /admin and the home page at /.
package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/openfoodfacts/open-prices/internal/config"
	"github.com/openfoodfacts/open-prices/internal/database"
	"github.com/openfoodfacts/open-prices/internal/http/apierror"
	"github.com/openfoodfacts/open-prices/internal/http/handlers"
	"github.com/openfoodfacts/open-prices/internal/http/mw"
	"github.com/openfoodfacts/open-prices/internal/http/routes"
	"github.com/openfoodfacts/open-prices/internal/http/web"
	"github.com/openfoodfacts/open-prices/internal/service"
	"github.com/openfoodfacts/open-prices/internal/shutdown"
)

// Deps are the dependencies of the router.
type Deps struct {
	Config   *config.Config
	DB       *database.DB
	Services *service.Services
	Logger   *slog.Logger
	// Metrics is nil when METRICS_ENABLED is false.
	Metrics *mw.Metrics
	// Idle is optional; it sees every request except probes and scrapes.
	Idle *shutdown.IdleMonitor
}

// NewRouter builds the application router.
func NewRouter(d Deps) (http.Handler, error) {
	cfg, logger := d.Config, d.Logger

	// Validation failures leave the API as 400 {field: [messages]}.
	apierror.Install()

	site, err := web.New(d.Services, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create web site: %w", err)
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(mw.RequestLogger(logger))
	router.Use(middleware.Recoverer)
	if d.Metrics != nil {
		router.Use(d.Metrics.Middleware)
	}
	if d.Idle != nil {
		router.Use(d.Idle.Middleware)
	}
	router.Use(mw.Timeout(mw.TimeoutConfig{
		Default:      cfg.RequestTimeout,
		SkipPrefixes: []string{"/__debug__", "/metrics"},
	}))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", mw.APIVersionHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		MaxAge:         300,
	}))

	// Request size limit (1MB)
	router.Use(middleware.RequestSize(1 * 1024 * 1024))
	router.Use(mw.RateLimitByIP(cfg.RateLimitPerMinute))
	router.Use(middleware.Throttle(100))
	router.Use(mw.APIVersion())
	router.Use(mw.Cache(mw.DefaultCacheConfig()))

	h := &routes.Handlers{
		Status:  handlers.Status,
		Livez:   handlers.Livez,
		Readyz:  handlers.NewReadyzHandler(d.DB).Readyz,
		Price:   handlers.NewPriceHandler(d.Services.Price, logger),
		Product: handlers.NewProductHandler(d.Services.Product, logger),
		Stats:   handlers.NewStatsHandler(d.Services.Stats, logger),
	}

	// Probes live on a second API without docs
	hiddenConfig := huma.DefaultConfig("Open Prices", "1.0.0")
	hiddenConfig.DocsPath = ""
	hiddenConfig.OpenAPIPath = ""
	hiddenConfig.SchemasPath = ""
	hiddenConfig.CreateHooks = nil
	routes.RegisterProbes(humachi.New(router, hiddenConfig), h)

	router.Route(routes.APIPrefix, func(r chi.Router) {
		r.Use(mw.RateLimitWrites(writeLimit(cfg.RateLimitPerMinute)))
		api := humachi.New(r, routes.NewHumaConfig(cfg.BaseURL))
		routes.Register(api, h)
	})

	if cfg.AdminEnabled {
		router.Mount("/admin", site.AdminRouter(web.AdminConfig{
			Username: cfg.AdminUsername,
			Password: cfg.AdminPassword,
		}))
	}

	if d.Metrics != nil {
		router.Handle("/metrics", d.Metrics.Handler())
	}
	if cfg.Debug {
		router.Mount("/__debug__", middleware.Profiler())
	}

	router.Get("/", site.Home)

	return router, nil
}

// writeLimit allows a tenth of the read budget for writes.
func writeLimit(perMinute int) int {
	if perMinute <= 0 {
		return 0
	}
	return max(perMinute/10, 1)
}
