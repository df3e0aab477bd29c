package order

import (
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/shopspring/decimal"

	"github.com/pattarin-dev/shopsync/internal/cart"
	"github.com/pattarin-dev/shopsync/internal/product"
)

func makeAppWithOrderHandler(h *Handler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			id, err := strconv.Atoi(v)
			if err == nil {
				claims := jwt.MapClaims{"user_id": id}
				tok := &jwt.Token{Claims: claims}
				c.Locals("user", tok)
			}
		}
		return c.Next()
	})
	h.RegisterProtectedRoutes(app)
	return app
}

func makeOrderApp(t *testing.T) (*fiber.App, *cart.Service) {
	t.Helper()
	products := product.NewInMemoryRepository([]product.Product{
		{ID: 1, Name: "Dog Food", Price: decimal.RequireFromString("10.00"), ImageURL: "dog.png"},
	})
	carts := cart.NewInMemoryRepository(products)
	service := NewService(NewInMemoryRepository(carts))
	handler := NewHandler(service, product.NewService(products))
	return makeAppWithOrderHandler(handler), cart.NewService(carts)
}

func TestOrderRoutes_Checkout(t *testing.T) {
	app, carts := makeOrderApp(t)

	if _, err := carts.AddToCart(42, 1, 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	req := httptest.NewRequest("POST", "/api/orders",
		strings.NewReader(`{"shippingAddress":"1 Main St","paymentMethod":"credit_card"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "42")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201 for checkout, got %d", res.StatusCode)
	}

	var ord Order
	if err := json.NewDecoder(res.Body).Decode(&ord); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !ord.TotalAmount.Equal(decimal.RequireFromString("20.00")) {
		t.Fatalf("expected total 20.00, got %s", ord.TotalAmount)
	}

	// a second checkout finds the cart empty
	req2 := httptest.NewRequest("POST", "/api/orders",
		strings.NewReader(`{"shippingAddress":"1 Main St","paymentMethod":"credit_card"}`))
	req2.Header.Set("Content-Type", "application/json")
	req2.Header.Set("X-User-ID", "42")
	res2, _ := app.Test(req2)
	if res2.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for empty cart, got %d", res2.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(res2.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body["code"] != "empty_cart" {
		t.Fatalf("expected empty_cart code, got %q", body["code"])
	}
}

func TestOrderRoutes_CheckoutValidation(t *testing.T) {
	app, carts := makeOrderApp(t)
	if _, err := carts.AddToCart(42, 1, 1); err != nil {
		t.Fatalf("add: %v", err)
	}

	cases := []struct {
		name string
		body string
		code string
	}{
		{"missing address", `{"paymentMethod":"credit_card"}`, "missing_address"},
		{"bad payment", `{"shippingAddress":"1 Main St","paymentMethod":"barter"}`, "invalid_payment"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest("POST", "/api/orders", strings.NewReader(tc.body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-User-ID", "42")
		res, _ := app.Test(req)
		if res.StatusCode != fiber.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", tc.name, res.StatusCode)
		}
		var body map[string]string
		if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
			t.Fatalf("%s: decode: %v", tc.name, err)
		}
		if body["code"] != tc.code {
			t.Fatalf("%s: expected code %q, got %q", tc.name, tc.code, body["code"])
		}
	}
}

func TestOrderRoutes_DetailEnrichedAndScoped(t *testing.T) {
	app, carts := makeOrderApp(t)

	if _, err := carts.AddToCart(42, 1, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	req := httptest.NewRequest("POST", "/api/orders",
		strings.NewReader(`{"shippingAddress":"1 Main St","paymentMethod":"cod"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "42")
	res, _ := app.Test(req)
	var ord Order
	if err := json.NewDecoder(res.Body).Decode(&ord); err != nil {
		t.Fatalf("decode: %v", err)
	}

	// the owner sees the order with product details filled in
	req2 := httptest.NewRequest("GET", "/api/orders/"+strconv.Itoa(ord.ID), nil)
	req2.Header.Set("X-User-ID", "42")
	res2, _ := app.Test(req2)
	if res2.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for owner, got %d", res2.StatusCode)
	}
	var detail Order
	if err := json.NewDecoder(res2.Body).Decode(&detail); err != nil {
		t.Fatalf("decode detail: %v", err)
	}
	if len(detail.Lines) != 1 || detail.Lines[0].Name != "Dog Food" || detail.Lines[0].ImageURL != "dog.png" {
		t.Fatalf("expected enriched lines, got %+v", detail.Lines)
	}

	// another user gets 404, not 403, so order ids leak nothing
	req3 := httptest.NewRequest("GET", "/api/orders/"+strconv.Itoa(ord.ID), nil)
	req3.Header.Set("X-User-ID", "99")
	res3, _ := app.Test(req3)
	if res3.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 for foreign user, got %d", res3.StatusCode)
	}
}
