package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/openfoodfacts/open-prices/internal/http/apierror"
	"github.com/openfoodfacts/open-prices/internal/service"
)

// AdminConfig controls access to the admin site.
type AdminConfig struct {
	// Basic auth is required when both are set.
	Username string
	Password string
}

// AdminRouter returns the admin site, to be mounted under /admin.
func (s *Site) AdminRouter(cfg AdminConfig) chi.Router {
	r := chi.NewRouter()
	if cfg.Username != "" && cfg.Password != "" {
		r.Use(middleware.BasicAuth("open-prices admin", map[string]string{cfg.Username: cfg.Password}))
	}
	r.Use(middleware.NoCache)

	r.Get("/", s.dashboard)
	r.Get("/prices/", s.prices)
	r.Get("/products/", s.products)
	r.Get("/stats/", s.stats)
	r.Get("/migrations/", s.migrations)
	r.Get("/schema/", s.schema)
	return r
}

func (s *Site) dashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := s.svc.Admin.Dashboard(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, "admin_dashboard", "Dashboard", dash)
}

// listParams reads the admin list query; other parameters are filters.
func listParams(r *http.Request) service.ListParams {
	q := r.URL.Query()
	p := service.ListParams{Filters: q, OrderBy: q.Get("order_by")}
	p.Page, _ = strconv.Atoi(q.Get("page"))
	if p.OrderBy == "" {
		p.OrderBy = "-id"
	}
	return p
}

// listError renders filter mistakes as a 400 page.
func (s *Site) listError(w http.ResponseWriter, r *http.Request, err error) {
	var ve apierror.ValidationError
	if errors.As(apierror.From(err), &ve) {
		s.renderStatus(w, r, http.StatusBadRequest, "admin_error", "Invalid filter", ve)
		return
	}
	s.fail(w, r, err)
}

func (s *Site) prices(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Price.List(r.Context(), listParams(r))
	if err != nil {
		s.listError(w, r, err)
		return
	}
	s.render(w, r, "admin_prices", "Prices", res)
}

func (s *Site) products(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Product.List(r.Context(), listParams(r))
	if err != nil {
		s.listError(w, r, err)
		return
	}
	s.render(w, r, "admin_products", "Products", res)
}

func (s *Site) stats(w http.ResponseWriter, r *http.Request) {
	totals, err := s.svc.Stats.Totals(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, "admin_stats", "Stats", totals)
}

func (s *Site) migrations(w http.ResponseWriter, r *http.Request) {
	statuses, err := s.svc.Admin.Migrations(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, "admin_migrations", "Migrations", statuses)
}

func (s *Site) schema(w http.ResponseWriter, r *http.Request) {
	tables, err := s.svc.Admin.Schema(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, "admin_schema", "Schema", tables)
}
