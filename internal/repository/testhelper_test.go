package repository

import (
	"context"
	"testing"

	"github.com/openfoodfacts/open-prices/internal/database"
	"github.com/openfoodfacts/open-prices/internal/models"
)

// setupTestDB creates an in-memory database with all migrations applied.
func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	// Run migrations
	if err := db.Migrate(context.Background(), nil); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Clean up when test completes
	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

// setupTestRepos creates all repositories using a test database.
func setupTestRepos(t *testing.T) *Repositories {
	t.Helper()
	db := setupTestDB(t)
	return NewRepositories(db)
}

func strPtr(s string) *string { return &s }

// createTestProduct inserts a product with the given code.
func createTestProduct(t *testing.T, repos *Repositories, code string, labels ...string) *models.Product {
	t.Helper()
	product := &models.Product{
		Code:        code,
		ProductName: strPtr("Product " + code),
		LabelsTags:  models.Tags(labels),
	}
	if err := repos.Product.Create(context.Background(), product); err != nil {
		t.Fatalf("failed to create test product: %v", err)
	}
	return product
}

// createTestPrice inserts a price for a product code.
func createTestPrice(t *testing.T, repos *Repositories, code string, amount float64, currency string, labels ...string) *models.Price {
	t.Helper()
	price := &models.Price{
		ProductCode: strPtr(code),
		Price:       amount,
		Currency:    currency,
		LabelsTags:  models.Tags(labels),
		Date:        strPtr("2024-11-05"),
	}
	if err := repos.Price.Create(context.Background(), price); err != nil {
		t.Fatalf("failed to create test price: %v", err)
	}
	return price
}
