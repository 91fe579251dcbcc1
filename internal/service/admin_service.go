package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/openfoodfacts/open-prices/internal/database"
	"github.com/openfoodfacts/open-prices/internal/database/migrations"
	"github.com/openfoodfacts/open-prices/internal/repository"
)

// AdminService backs the admin site.
type AdminService struct {
	db     *database.DB
	repos  *repository.Repositories
	logger *slog.Logger
}

// NewAdminService creates a new admin service.
func NewAdminService(db *database.DB, repos *repository.Repositories, logger *slog.Logger) *AdminService {
	return &AdminService{
		db:     db,
		repos:  repos,
		logger: logger,
	}
}

// Dashboard summarises the database for the admin index page.
type Dashboard struct {
	Dialect      string
	Revision     string
	HeadRevision string
	Pending      int
	PriceCount   int
	ProductCount int
}

// UpToDate reports whether every migration is applied.
func (d Dashboard) UpToDate() bool {
	return d.Pending == 0
}

// Dashboard collects row counts and the schema revision.
func (s *AdminService) Dashboard(ctx context.Context) (*Dashboard, error) {
	m, err := s.db.Migrator(s.logger)
	if err != nil {
		return nil, err
	}

	dash := &Dashboard{Dialect: s.db.Dialect.String()}
	if dash.Revision, err = m.Current(ctx); err != nil {
		return nil, fmt.Errorf("failed to read schema revision: %w", err)
	}
	dash.HeadRevision = m.Chain().Head()
	pending, err := m.Pending(ctx)
	if err != nil {
		return nil, err
	}
	dash.Pending = len(pending)

	if dash.PriceCount, err = s.repos.Price.Count(ctx, nil); err != nil {
		return nil, err
	}
	if dash.ProductCount, err = s.repos.Product.Count(ctx, nil); err != nil {
		return nil, err
	}
	return dash, nil
}

// Migrations returns every migration of the chain with its applied state.
func (s *AdminService) Migrations(ctx context.Context) ([]migrations.Status, error) {
	m, err := s.db.Migrator(s.logger)
	if err != nil {
		return nil, err
	}
	return m.Status(ctx)
}

// TableSchema is the live column list of one table.
type TableSchema struct {
	Name    string
	Columns []database.Column
}

// Schema returns the live schema, tables sorted by name.
func (s *AdminService) Schema(ctx context.Context) ([]TableSchema, error) {
	snapshot, err := s.db.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}

	tables := make([]TableSchema, 0, len(snapshot))
	for name, cols := range snapshot {
		tables = append(tables, TableSchema{Name: name, Columns: cols})
	}
	sort.Slice(tables, func(i, j int) bool { return tables[i].Name < tables[j].Name })
	return tables, nil
}
