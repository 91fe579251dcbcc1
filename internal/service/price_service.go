package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/currency"

	"github.com/openfoodfacts/open-prices/internal/database/dialect"
	"github.com/openfoodfacts/open-prices/internal/models"
	"github.com/openfoodfacts/open-prices/internal/repository"
	"github.com/openfoodfacts/open-prices/internal/validation"
)

// PriceService handles price observations.
type PriceService struct {
	repos    *repository.Repositories
	products *ProductService
	dialect  dialect.Dialect
	logger   *slog.Logger
}

// NewPriceService creates a new price service.
func NewPriceService(repos *repository.Repositories, products *ProductService, d dialect.Dialect, logger *slog.Logger) *PriceService {
	return &PriceService{
		repos:    repos,
		products: products,
		dialect:  d,
		logger:   logger,
	}
}

// CreatePriceInput is a new price observation.
type CreatePriceInput struct {
	ProductCode       *string
	ProductName       *string
	CategoryTag       *string
	LabelsTags        []string
	OriginsTags       []string
	Price             float64
	PriceIsDiscounted bool
	PricePer          *string
	Currency          string
	LocationOSMID     *int64
	LocationOSMType   *string
	Date              *string
	Owner             *string
}

// Validate checks the input and returns validation.Errors
// listing every problem found.
func (in *CreatePriceInput) Validate() error {
	errs := validation.Errors{}

	hasCode := in.ProductCode != nil && *in.ProductCode != ""
	hasCategory := in.CategoryTag != nil && *in.CategoryTag != ""
	switch {
	case hasCode && hasCategory:
		errs.Add("", "Only one of product_code or category_tag can be set.")
	case !hasCode && !hasCategory:
		errs.Add("", "One of product_code or category_tag must be set.")
	}
	if hasCode && !isDigits(*in.ProductCode) {
		errs.Add("product_code", "Must only contain digits.")
	}
	if in.PricePer != nil {
		if !hasCategory {
			errs.Add("price_per", "Can only be set if category_tag is set.")
		}
		if !models.PricePer(*in.PricePer).Valid() {
			errs.Add("price_per", fmt.Sprintf("%q is not a valid choice.", *in.PricePer))
		}
	}

	if in.Price <= 0 {
		errs.Add("price", "Must be greater than 0.")
	}
	if _, err := currency.ParseISO(in.Currency); err != nil {
		errs.Add("currency", fmt.Sprintf("%q is not a valid ISO 4217 currency code.", in.Currency))
	}

	if (in.LocationOSMID == nil) != (in.LocationOSMType == nil) {
		errs.Add("", "location_osm_id and location_osm_type must be set together.")
	}
	if in.LocationOSMID != nil && *in.LocationOSMID <= 0 {
		errs.Add("location_osm_id", "Must be greater than 0.")
	}
	if in.LocationOSMType != nil && !models.LocationOSMType(*in.LocationOSMType).Valid() {
		errs.Add("location_osm_type", fmt.Sprintf("%q is not a valid choice.", *in.LocationOSMType))
	}

	if in.Date != nil {
		if _, err := time.Parse(time.DateOnly, *in.Date); err != nil {
			errs.Add("date", "Date has wrong format. Use YYYY-MM-DD.")
		}
	}

	return errs.Err()
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// Create validates and stores a price. Prices with a product code are linked
// to the product, which is created on first use.
func (s *PriceService) Create(ctx context.Context, in CreatePriceInput) (*models.Price, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	cur, _ := currency.ParseISO(in.Currency)
	price := &models.Price{
		ProductCode:       emptyToNil(in.ProductCode),
		ProductName:       emptyToNil(in.ProductName),
		CategoryTag:       emptyToNil(in.CategoryTag),
		LabelsTags:        models.Tags(in.LabelsTags),
		OriginsTags:       models.Tags(in.OriginsTags),
		Price:             in.Price,
		PriceIsDiscounted: in.PriceIsDiscounted,
		Currency:          cur.String(),
		LocationOSMID:     in.LocationOSMID,
		Date:              in.Date,
		Owner:             in.Owner,
	}
	if in.PricePer != nil {
		pp := models.PricePer(*in.PricePer)
		price.PricePer = &pp
	}
	if in.LocationOSMType != nil {
		t := models.LocationOSMType(*in.LocationOSMType)
		price.LocationOSMType = &t
	}

	if price.ProductCode != nil {
		product, err := s.products.GetOrCreate(ctx, *price.ProductCode, price.ProductName)
		if err != nil {
			return nil, err
		}
		price.ProductID = &product.ID
		if price.ProductName == nil {
			price.ProductName = product.ProductName
		}
	}

	if err := s.repos.Price.Create(ctx, price); err != nil {
		return nil, fmt.Errorf("failed to create price: %w", err)
	}

	if price.ProductID != nil {
		if err := s.repos.Product.IncrementPriceCount(ctx, *price.ProductID); err != nil {
			s.logger.Warn("failed to increment product price count", "product_id", *price.ProductID, "error", err)
		}
	}

	s.logger.Info("created price",
		"id", price.ID,
		"product_code", derefString(price.ProductCode),
		"category_tag", derefString(price.CategoryTag),
		"currency", price.Currency,
	)
	return price, nil
}

// GetByID returns the price, or nil when it does not exist.
func (s *PriceService) GetByID(ctx context.Context, id int64) (*models.Price, error) {
	return s.repos.Price.GetByID(ctx, id)
}

// List returns a page of prices matching the filters.
func (s *PriceService) List(ctx context.Context, p ListParams) (*Page[*models.Price], error) {
	q, err := p.query(repository.PriceFields, s.dialect)
	if err != nil {
		return nil, err
	}

	items, err := s.repos.Price.List(ctx, q)
	if err != nil {
		return nil, err
	}
	total, err := s.repos.Price.Count(ctx, q.Where)
	if err != nil {
		return nil, err
	}
	return newPage(items, total, p), nil
}

func emptyToNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
