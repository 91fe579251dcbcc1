package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/google/go-cmp/cmp"

	"github.com/openfoodfacts/open-prices/internal/http/apierror"
	"github.com/openfoodfacts/open-prices/internal/models"
	"github.com/openfoodfacts/open-prices/internal/service"
)

type fakePriceService struct {
	prices    map[int64]*models.Price
	created   *service.CreatePriceInput
	gotParams service.ListParams
	err       error
}

func (f *fakePriceService) Create(ctx context.Context, in service.CreatePriceInput) (*models.Price, error) {
	if f.err != nil {
		return nil, f.err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	f.created = &in
	return &models.Price{ID: 7, ProductCode: in.ProductCode, Price: in.Price, Currency: in.Currency}, nil
}

func (f *fakePriceService) GetByID(ctx context.Context, id int64) (*models.Price, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.prices[id], nil
}

func (f *fakePriceService) List(ctx context.Context, p service.ListParams) (*service.Page[*models.Price], error) {
	f.gotParams = p
	if f.err != nil {
		return nil, f.err
	}
	items := make([]*models.Price, 0, len(f.prices))
	for _, pr := range f.prices {
		items = append(items, pr)
	}
	return &service.Page[*models.Price]{Items: items, Total: len(items), Page: p.Page, Size: p.Size, Pages: 1}, nil
}

func newPriceAPI(t *testing.T, svc PriceService) humatest.TestAPI {
	t.Helper()
	apierror.Install()
	_, api := humatest.New(t)
	h := NewPriceHandler(svc, testLogger())
	huma.Get(api, "/prices", h.ListPrices)
	huma.Get(api, "/prices/{id}", h.GetPrice)
	huma.Register(api, huma.Operation{
		OperationID:   "create-price",
		Method:        http.MethodPost,
		Path:          "/prices",
		DefaultStatus: http.StatusCreated,
	}, h.CreatePrice)
	return api
}

func strPtr(s string) *string { return &s }

// ========================================
// List
// ========================================

func TestListPrices_PassesFilters(t *testing.T) {
	svc := &fakePriceService{prices: map[int64]*models.Price{1: {ID: 1, Currency: "EUR"}}}
	api := newPriceAPI(t, svc)

	resp := api.Get("/prices?labels_tags__any=en:organic&price__gte=2&page=2&size=10&order_by=-date")
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.Code, resp.Body.String())
	}

	p := svc.gotParams
	if p.Page != 2 || p.Size != 10 || p.OrderBy != "-date" {
		t.Errorf("params = %+v, want page 2 size 10 order -date", p)
	}
	if got := p.Filters.Get("labels_tags__any"); got != "en:organic" {
		t.Errorf("labels_tags__any = %q, want en:organic", got)
	}
	if got := p.Filters.Get("price__gte"); got != "2" {
		t.Errorf("price__gte = %q, want 2", got)
	}

	var page struct {
		Items []models.Price `json:"items"`
		Total int            `json:"total"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &page); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if page.Total != 1 || len(page.Items) != 1 {
		t.Errorf("page = %+v, want one item", page)
	}
}

func TestListPrices_Defaults(t *testing.T) {
	svc := &fakePriceService{}
	api := newPriceAPI(t, svc)

	resp := api.Get("/prices")
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.Code, resp.Body.String())
	}
	if svc.gotParams.Page != 1 || svc.gotParams.Size != service.DefaultPageSize {
		t.Errorf("params = %+v, want page 1 size %d", svc.gotParams, service.DefaultPageSize)
	}
}

func TestListPrices_InvalidFilter(t *testing.T) {
	svc := &fakePriceService{err: apierror.ValidationError{"price__gte": {`"cheap" is not a valid number`}}}
	api := newPriceAPI(t, svc)

	resp := api.Get("/prices?price__gte=cheap")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.Code)
	}
	var body map[string][]string
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(body["price__gte"]) != 1 {
		t.Errorf("body = %v, want price__gte error", body)
	}
}

func TestListPrices_SizeTooLarge(t *testing.T) {
	api := newPriceAPI(t, &fakePriceService{})

	resp := api.Get("/prices?size=1000")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"size"`) {
		t.Errorf("body = %s, want size error", resp.Body.String())
	}
}

func TestListPrices_InternalError(t *testing.T) {
	api := newPriceAPI(t, &fakePriceService{err: errors.New("disk full")})

	resp := api.Get("/prices")
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.Code)
	}
	if strings.Contains(resp.Body.String(), "disk full") {
		t.Error("internal error details should not leak")
	}
}

// ========================================
// Get
// ========================================

func TestGetPrice(t *testing.T) {
	svc := &fakePriceService{prices: map[int64]*models.Price{3: {ID: 3, Currency: "EUR", Price: 1.5}}}
	api := newPriceAPI(t, svc)

	resp := api.Get("/prices/3")
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.Code, resp.Body.String())
	}
	var got models.Price
	if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != 3 || got.Price != 1.5 {
		t.Errorf("price = %+v", got)
	}

	if resp := api.Get("/prices/4"); resp.Code != http.StatusNotFound {
		t.Errorf("missing price status = %d, want 404", resp.Code)
	}
}

// ========================================
// Create
// ========================================

func TestCreatePrice(t *testing.T) {
	svc := &fakePriceService{}
	api := newPriceAPI(t, svc)

	resp := api.Post("/prices", map[string]any{
		"product_code": "3017620422003",
		"product_name": "Nutella",
		"price":        3.49,
		"currency":     "EUR",
		"date":         "2024-11-05",
		"labels_tags":  []string{"en:organic"},
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", resp.Code, resp.Body.String())
	}
	if svc.created == nil {
		t.Fatal("service was not called")
	}
	if diff := cmp.Diff(strPtr("Nutella"), svc.created.ProductName); diff != "" {
		t.Errorf("product_name mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"en:organic"}, svc.created.LabelsTags); diff != "" {
		t.Errorf("labels_tags mismatch (-want +got):\n%s", diff)
	}
}

func TestCreatePrice_ValidationError(t *testing.T) {
	api := newPriceAPI(t, &fakePriceService{})

	resp := api.Post("/prices", map[string]any{
		"price":    3.49,
		"currency": "EUR",
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.Code)
	}
	var body map[string][]string
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v, body = %s", err, resp.Body.String())
	}
	if len(body) == 0 {
		t.Error("expected field errors")
	}
}

func TestCreatePrice_SchemaViolation(t *testing.T) {
	api := newPriceAPI(t, &fakePriceService{})

	resp := api.Post("/prices", map[string]any{
		"product_code": "3017620422003",
		"price":        1,
		"currency":     "EUR",
		"price_per":    "LITRE",
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"price_per"`) {
		t.Errorf("body = %s, want price_per error", resp.Body.String())
	}
}
