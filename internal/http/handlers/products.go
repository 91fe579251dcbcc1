package handlers

import (
	"context"
	"log/slog"

	"github.com/danielgtaylor/huma/v2"

	"github.com/openfoodfacts/open-prices/internal/models"
	"github.com/openfoodfacts/open-prices/internal/service"
)

// ProductService is the part of service.ProductService used by the handlers.
type ProductService interface {
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	GetByCode(ctx context.Context, code string) (*models.Product, error)
	List(ctx context.Context, p service.ListParams) (*service.Page[*models.Product], error)
}

// ProductHandler handles product endpoints.
type ProductHandler struct {
	svc    ProductService
	logger *slog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(svc ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{svc: svc, logger: logger}
}

// ListProductsInput represents the product list request.
type ListProductsInput struct {
	ListInput
	Code            string `query:"code" doc:"Product barcode"`
	NutriscoreGrade string `query:"nutriscore_grade" enum:"a,b,c,d,e,unknown,not-applicable" doc:"Nutri-Score grade"`
	LabelsTagsAny   string `query:"labels_tags__any" doc:"Products whose labels_tags contain this label" example:"en:organic"`
	CategoriesAny   string `query:"categories_tags__any" doc:"Products whose categories_tags contain this category" example:"en:breakfasts"`
}

// ListProductsOutput represents the product list response.
type ListProductsOutput struct {
	Body *service.Page[*models.Product]
}

// ListProducts returns a page of products.
func (h *ProductHandler) ListProducts(ctx context.Context, input *ListProductsInput) (*ListProductsOutput, error) {
	page, err := h.svc.List(ctx, input.params())
	if err != nil {
		return nil, internalError(h.logger, err, "failed to list products")
	}
	return &ListProductsOutput{Body: page}, nil
}

// GetProductInput represents a product request by id.
type GetProductInput struct {
	ID int64 `path:"id" minimum:"1" doc:"Product id"`
}

// ProductOutput wraps a product.
type ProductOutput struct {
	Body *models.Product
}

// GetProduct returns a product by id.
func (h *ProductHandler) GetProduct(ctx context.Context, input *GetProductInput) (*ProductOutput, error) {
	product, err := h.svc.GetByID(ctx, input.ID)
	if err != nil {
		return nil, internalError(h.logger, err, "failed to get product")
	}
	if product == nil {
		return nil, huma.Error404NotFound("product not found")
	}
	return &ProductOutput{Body: product}, nil
}

// GetProductByCodeInput represents a product request by barcode.
type GetProductByCodeInput struct {
	Code string `path:"code" pattern:"^[0-9]+$" doc:"Product barcode"`
}

// GetProductByCode returns a product by barcode.
func (h *ProductHandler) GetProductByCode(ctx context.Context, input *GetProductByCodeInput) (*ProductOutput, error) {
	product, err := h.svc.GetByCode(ctx, input.Code)
	if err != nil {
		return nil, internalError(h.logger, err, "failed to get product")
	}
	if product == nil {
		return nil, huma.Error404NotFound("product not found")
	}
	return &ProductOutput{Body: product}, nil
}
