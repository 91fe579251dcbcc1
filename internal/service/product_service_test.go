package service

import (
	"context"
	"net/url"
	"testing"
)

// ========================================
// ProductService Tests
// ========================================

func TestProductService_GetOrCreate(t *testing.T) {
	svcs, _ := setupTestServices(t)
	ctx := context.Background()

	created, err := svcs.Product.GetOrCreate(ctx, "3017620422003", nil)
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	again, err := svcs.Product.GetOrCreate(ctx, "3017620422003", nil)
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	if again.ID != created.ID {
		t.Errorf("GetOrCreate() id = %d, want %d", again.ID, created.ID)
	}

	byCode, err := svcs.Product.GetByCode(ctx, "3017620422003")
	if err != nil || byCode == nil || byCode.ID != created.ID {
		t.Errorf("GetByCode() = %v, %v", byCode, err)
	}
}

func TestProductService_GetByCode_NotFound(t *testing.T) {
	svcs, _ := setupTestServices(t)

	product, err := svcs.Product.GetByCode(context.Background(), "000")
	if err != nil {
		t.Fatalf("GetByCode() error = %v", err)
	}
	if product != nil {
		t.Errorf("GetByCode() = %v, want nil", product)
	}
}

func TestProductService_List(t *testing.T) {
	svcs, _ := setupTestServices(t)
	ctx := context.Background()

	for _, code := range []string{"100", "200", "300"} {
		if _, err := svcs.Product.GetOrCreate(ctx, code, nil); err != nil {
			t.Fatalf("GetOrCreate() error = %v", err)
		}
	}

	page, err := svcs.Product.List(ctx, ListParams{
		Filters: url.Values{"code__in": {"100,300"}},
		OrderBy: "-code",
	})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if page.Total != 2 || len(page.Items) != 2 {
		t.Fatalf("List() total = %d items = %d, want 2", page.Total, len(page.Items))
	}
	if page.Items[0].Code != "300" {
		t.Errorf("first code = %q, want 300", page.Items[0].Code)
	}
}

func TestProductService_List_BadOrdering(t *testing.T) {
	svcs, _ := setupTestServices(t)

	if _, err := svcs.Product.List(context.Background(), ListParams{OrderBy: "secret"}); err == nil {
		t.Error("List() should reject unknown order_by")
	}
}

// ========================================
// StatsService Tests
// ========================================

func TestStatsService_Totals(t *testing.T) {
	svcs, _ := setupTestServices(t)

	stats, err := svcs.Stats.Totals(context.Background())
	if err != nil {
		t.Fatalf("Totals() error = %v", err)
	}
	if stats.PriceCurrencyCount != 0 || stats.LocationTypeOSMCountryCount != 0 {
		t.Errorf("Totals() = %+v, want zero counters", stats)
	}
}

func TestStatsService_Refresh(t *testing.T) {
	svcs, _ := setupTestServices(t)
	ctx := context.Background()

	for _, cur := range []string{"EUR", "usd", "EUR"} {
		if _, err := svcs.Price.Create(ctx, CreatePriceInput{
			ProductCode: strPtr("3017620422003"),
			Price:       1.5,
			Currency:    cur,
		}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	stats, err := svcs.Stats.Refresh(ctx)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if stats.PriceCount != 3 || stats.PriceCurrencyCount != 2 || stats.ProductWithPriceCount != 1 {
		t.Errorf("Refresh() = %+v, want 3 prices in 2 currencies for 1 product", stats)
	}

	totals, err := svcs.Stats.Totals(ctx)
	if err != nil {
		t.Fatalf("Totals() error = %v", err)
	}
	if totals.PriceCount != 3 {
		t.Errorf("Totals() price_count = %d, want 3", totals.PriceCount)
	}
}
