package routes

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/openfoodfacts/open-prices/internal/http/mw"
)

// Register registers all API routes with the given Huma API instance. Paths
// are relative to APIPrefix.
func Register(api huma.API, h *Handlers) {
	mw.Get(api, "/v1/status", h.Status,
		mw.WithTags("Status"),
		mw.WithSummary("Service status"),
		mw.WithOperationID("getStatus"))

	// --- Prices ---
	mw.Get(api, "/v1/prices", h.Price.ListPrices,
		mw.WithTags("Prices"),
		mw.WithSummary("List prices"),
		mw.WithDescription("Any price field can be filtered with field__lookup=value. "+
			"Array fields such as labels_tags support field__any=value, matching rows whose array contains the value."),
		mw.WithOperationID("listPrices"),
		mw.WithErrors(http.StatusBadRequest))
	mw.Get(api, "/v1/prices/{id}", h.Price.GetPrice,
		mw.WithTags("Prices"),
		mw.WithSummary("Get a price"),
		mw.WithOperationID("getPrice"),
		mw.WithErrors(http.StatusNotFound))
	mw.Post(api, "/v1/prices", h.Price.CreatePrice,
		mw.WithTags("Prices"),
		mw.WithSummary("Add a price"),
		mw.WithDescription("A price references either a product barcode or a category tag. "+
			"The product is created on first use."),
		mw.WithOperationID("createPrice"),
		mw.WithDefaultStatus(http.StatusCreated),
		mw.WithErrors(http.StatusBadRequest))

	// --- Products ---
	mw.Get(api, "/v1/products", h.Product.ListProducts,
		mw.WithTags("Products"),
		mw.WithSummary("List products"),
		mw.WithOperationID("listProducts"),
		mw.WithErrors(http.StatusBadRequest))
	mw.Get(api, "/v1/products/{id}", h.Product.GetProduct,
		mw.WithTags("Products"),
		mw.WithSummary("Get a product"),
		mw.WithOperationID("getProduct"),
		mw.WithErrors(http.StatusNotFound))
	mw.Get(api, "/v1/products/code/{code}", h.Product.GetProductByCode,
		mw.WithTags("Products"),
		mw.WithSummary("Get a product by barcode"),
		mw.WithOperationID("getProductByCode"),
		mw.WithErrors(http.StatusNotFound))

	// --- Stats ---
	mw.Get(api, "/v1/stats", h.Stats.GetStats,
		mw.WithTags("Stats"),
		mw.WithSummary("Site-wide counters"),
		mw.WithOperationID("getStats"))
}

// RegisterProbes registers the liveness and readiness probes. They are
// hidden from the OpenAPI document.
func RegisterProbes(api huma.API, h *Handlers) {
	mw.HiddenGet(api, "/healthz", h.Livez)
	mw.HiddenGet(api, "/readyz", h.Readyz)
}
