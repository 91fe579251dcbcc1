package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/danielgtaylor/huma/v2"

	"github.com/openfoodfacts/open-prices/internal/http/apierror"
	"github.com/openfoodfacts/open-prices/internal/models"
	"github.com/openfoodfacts/open-prices/internal/service"
)

// PriceService is the part of service.PriceService used by the handlers.
type PriceService interface {
	Create(ctx context.Context, in service.CreatePriceInput) (*models.Price, error)
	GetByID(ctx context.Context, id int64) (*models.Price, error)
	List(ctx context.Context, p service.ListParams) (*service.Page[*models.Price], error)
}

// PriceHandler handles price endpoints.
type PriceHandler struct {
	svc    PriceService
	logger *slog.Logger
}

// NewPriceHandler creates a new price handler.
func NewPriceHandler(svc PriceService, logger *slog.Logger) *PriceHandler {
	return &PriceHandler{svc: svc, logger: logger}
}

// ListPricesInput represents the price list request. Any price field can be
// filtered with field__lookup=value; the parameters below are documented
// shortcuts.
type ListPricesInput struct {
	ListInput
	ProductCode    string `query:"product_code" doc:"Product barcode" example:"3017620422003"`
	LabelsTagsAny  string `query:"labels_tags__any" doc:"Prices whose labels_tags contain this label" example:"en:organic"`
	Currency       string `query:"currency" doc:"ISO 4217 currency code" example:"EUR"`
	LocationOSMID  int64  `query:"location_osm_id" doc:"OpenStreetMap id of the shop"`
	DateGte        string `query:"date__gte" doc:"Observed on or after (YYYY-MM-DD)"`
	DateLte        string `query:"date__lte" doc:"Observed on or before (YYYY-MM-DD)"`
	PriceDiscounts string `query:"price_is_discounted" enum:"true,false" doc:"Only discounted or regular prices"`
}

// ListPricesOutput represents the price list response.
type ListPricesOutput struct {
	Body *service.Page[*models.Price]
}

// ListPrices returns a page of prices.
func (h *PriceHandler) ListPrices(ctx context.Context, input *ListPricesInput) (*ListPricesOutput, error) {
	page, err := h.svc.List(ctx, input.params())
	if err != nil {
		return nil, h.fail(err, "failed to list prices")
	}
	return &ListPricesOutput{Body: page}, nil
}

// GetPriceInput represents a single price request.
type GetPriceInput struct {
	ID int64 `path:"id" minimum:"1" doc:"Price id"`
}

// PriceOutput wraps a price.
type PriceOutput struct {
	Body *models.Price
}

// GetPrice returns a price by id.
func (h *PriceHandler) GetPrice(ctx context.Context, input *GetPriceInput) (*PriceOutput, error) {
	price, err := h.svc.GetByID(ctx, input.ID)
	if err != nil {
		return nil, h.fail(err, "failed to get price")
	}
	if price == nil {
		return nil, huma.Error404NotFound("price not found")
	}
	return &PriceOutput{Body: price}, nil
}

// CreatePriceBody is the request body of a new price.
type CreatePriceBody struct {
	ProductCode       *string  `json:"product_code,omitempty" doc:"Barcode of the product" example:"3017620422003"`
	ProductName       *string  `json:"product_name,omitempty" maxLength:"255" doc:"Product name as written on the shelf or receipt"`
	CategoryTag       *string  `json:"category_tag,omitempty" doc:"Category of a raw product without barcode" example:"en:tomatoes"`
	LabelsTags        []string `json:"labels_tags,omitempty" doc:"Labels of a category price" example:"[\"en:organic\"]"`
	OriginsTags       []string `json:"origins_tags,omitempty" doc:"Origins of a category price" example:"[\"en:france\"]"`
	Price             float64  `json:"price" doc:"Price paid" example:"3.49"`
	PriceIsDiscounted bool     `json:"price_is_discounted,omitempty"`
	PricePer          *string  `json:"price_per,omitempty" enum:"UNIT,KILOGRAM" doc:"Unit of a category price"`
	Currency          string   `json:"currency" minLength:"3" maxLength:"3" example:"EUR"`
	LocationOSMID     *int64   `json:"location_osm_id,omitempty" example:"652825274"`
	LocationOSMType   *string  `json:"location_osm_type,omitempty" enum:"NODE,WAY,RELATION"`
	Date              *string  `json:"date,omitempty" doc:"Observation date (YYYY-MM-DD)" example:"2024-11-05"`
	Owner             *string  `json:"owner,omitempty" maxLength:"255"`
}

// CreatePriceInput represents the create price request.
type CreatePriceInput struct {
	Body CreatePriceBody
}

// CreatePrice stores a new price.
func (h *PriceHandler) CreatePrice(ctx context.Context, input *CreatePriceInput) (*PriceOutput, error) {
	b := input.Body
	price, err := h.svc.Create(ctx, service.CreatePriceInput{
		ProductCode:       b.ProductCode,
		ProductName:       b.ProductName,
		CategoryTag:       b.CategoryTag,
		LabelsTags:        b.LabelsTags,
		OriginsTags:       b.OriginsTags,
		Price:             b.Price,
		PriceIsDiscounted: b.PriceIsDiscounted,
		PricePer:          b.PricePer,
		Currency:          b.Currency,
		LocationOSMID:     b.LocationOSMID,
		LocationOSMType:   b.LocationOSMType,
		Date:              b.Date,
		Owner:             b.Owner,
	})
	if err != nil {
		return nil, h.fail(err, "failed to create price")
	}
	return &PriceOutput{Body: price}, nil
}

// fail passes validation errors through and hides everything else behind a 500.
func (h *PriceHandler) fail(err error, msg string) error {
	return internalError(h.logger, err, msg)
}

func internalError(logger *slog.Logger, err error, msg string) error {
	var ve apierror.ValidationError
	if errors.As(apierror.From(err), &ve) {
		return ve
	}
	logger.Error(msg, "error", err)
	return huma.Error500InternalServerError(msg)
}
