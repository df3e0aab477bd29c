package product

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

func makeCatalogApp() *fiber.App {
	repo := NewInMemoryRepository([]Product{
		{ID: 1, Name: "Dog Food", Price: decimal.RequireFromString("10.00"), Category: "Food"},
		{ID: 2, Name: "Cat Toy", Price: decimal.RequireFromString("5.00"), Category: "Toys"},
		{ID: 3, Name: "Bird Seed", Price: decimal.RequireFromString("3.25"), Category: "Food"},
	})
	app := fiber.New()
	NewHandler(NewService(repo)).RegisterPublicRoutes(app)
	return app
}

func TestCatalogRoutes(t *testing.T) {
	app := makeCatalogApp()

	res, _ := app.Test(httptest.NewRequest("GET", "/api/products", nil))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for list, got %d", res.StatusCode)
	}
	var products []Product
	if err := json.NewDecoder(res.Body).Decode(&products); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(products) != 3 {
		t.Fatalf("expected 3 products, got %d", len(products))
	}

	res2, _ := app.Test(httptest.NewRequest("GET", "/api/products/2", nil))
	if res2.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for detail, got %d", res2.StatusCode)
	}
	var p Product
	if err := json.NewDecoder(res2.Body).Decode(&p); err != nil {
		t.Fatalf("decode detail: %v", err)
	}
	if p.Name != "Cat Toy" || !p.Price.Equal(decimal.RequireFromString("5.00")) {
		t.Fatalf("unexpected product %+v", p)
	}

	res3, _ := app.Test(httptest.NewRequest("GET", "/api/products/99", nil))
	if res3.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 for unknown product, got %d", res3.StatusCode)
	}

	res4, _ := app.Test(httptest.NewRequest("GET", "/api/products/abc", nil))
	if res4.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric id, got %d", res4.StatusCode)
	}
}

func TestCategoriesStartWithAll(t *testing.T) {
	app := makeCatalogApp()

	res, _ := app.Test(httptest.NewRequest("GET", "/api/categories", nil))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	var cats []string
	if err := json.NewDecoder(res.Body).Decode(&cats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(cats) != 3 || cats[0] != "All" {
		t.Fatalf("expected [All Food Toys], got %v", cats)
	}
}
