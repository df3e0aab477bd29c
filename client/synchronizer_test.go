package client

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/pattarin-dev/shopsync/internal/cart"
	"github.com/pattarin-dev/shopsync/internal/product"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(filepath.Join(t.TempDir(), "local.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testCatalog() []product.Product {
	return []product.Product{
		{ID: 1, Name: "Dog Food", Price: decimal.RequireFromString("10.00"), Category: "Food"},
		{ID: 2, Name: "Cat Toy", Price: decimal.RequireFromString("5.00"), Category: "Toys"},
	}
}

func TestSynchronizer_CartFromService(t *testing.T) {
	items := []cart.Item{
		{ID: 1, ProductID: 1, Name: "Dog Food", Price: decimal.RequireFromString("10.00"), Quantity: 2},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/cart" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(items)
	}))
	defer srv.Close()

	store := newTestStore(t)
	sy := NewSynchronizer(New(srv.URL), store)

	res, err := sy.Cart()
	if err != nil {
		t.Fatalf("cart: %v", err)
	}
	if res.Source != Synced {
		t.Fatalf("expected Synced, got %q", res.Source)
	}
	if len(res.Items) != 1 || res.Items[0].Quantity != 2 {
		t.Fatalf("unexpected items %+v", res.Items)
	}
	if !res.Totals.Total.Equal(decimal.RequireFromString("20.00")) {
		t.Fatalf("expected totals 20.00, got %s", res.Totals.Total)
	}

	// the local mirror now holds the server state
	local, err := store.CartItems()
	if err != nil {
		t.Fatalf("local items: %v", err)
	}
	if len(local) != 1 || local[0].ProductID != 1 {
		t.Fatalf("local mirror out of step: %+v", local)
	}
}

func TestSynchronizer_FallsBackWhenUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := srv.URL
	srv.Close()

	store := newTestStore(t)
	if err := store.UpsertProducts(testCatalog()); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}
	sy := NewSynchronizer(New(baseURL), store)

	res, err := sy.AddToCart(1, 2)
	if err != nil {
		t.Fatalf("add to cart: %v", err)
	}
	if res.Source != LocalFallback {
		t.Fatalf("expected LocalFallback, got %q", res.Source)
	}
	if len(res.Items) != 1 || res.Items[0].Quantity != 2 {
		t.Fatalf("unexpected items %+v", res.Items)
	}
	if !res.Totals.Total.Equal(decimal.RequireFromString("20.00")) {
		t.Fatalf("expected totals 20.00, got %s", res.Totals.Total)
	}

	// a second offline add increments the same line
	res2, err := sy.AddToCart(1, 1)
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if len(res2.Items) != 1 || res2.Items[0].Quantity != 3 {
		t.Fatalf("expected quantity 3, got %+v", res2.Items)
	}

	// adding a product the catalog cache has never seen fails cleanly
	if _, err := sy.AddToCart(99, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown product, got %v", err)
	}
}

func TestSynchronizer_LocalCheckout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := srv.URL
	srv.Close()

	store := newTestStore(t)
	if err := store.UpsertProducts(testCatalog()); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}
	sy := NewSynchronizer(New(baseURL), store)

	if _, err := sy.AddToCart(1, 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := sy.AddToCart(2, 1); err != nil {
		t.Fatalf("add: %v", err)
	}

	res, err := sy.Checkout("1 Main St", "cod")
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if res.Source != LocalFallback {
		t.Fatalf("expected LocalFallback, got %q", res.Source)
	}
	ord := res.Order
	if !ord.Unsynced || ord.Status != StatusLocallyConfirmed {
		t.Fatalf("expected unsynced locally-confirmed order, got %+v", ord)
	}
	if ord.ID == "" {
		t.Fatalf("expected a generated order id")
	}
	if !ord.TotalAmount.Equal(decimal.RequireFromString("25.00")) {
		t.Fatalf("expected total 25.00, got %s", ord.TotalAmount)
	}

	// the local cart is empty and totals are reset
	items, err := store.CartItems()
	if err != nil {
		t.Fatalf("items: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty cart after checkout, got %+v", items)
	}
	totals, err := sy.Totals()
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if !totals.Total.IsZero() || totals.ItemCount != 0 {
		t.Fatalf("expected zero totals, got %+v", totals)
	}

	// the order shows up in the offline history
	hist, err := sy.Orders()
	if err != nil {
		t.Fatalf("orders: %v", err)
	}
	if hist.Source != LocalFallback || len(hist.Orders) != 1 || hist.Orders[0].ID != ord.ID {
		t.Fatalf("unexpected history %+v", hist)
	}
	if len(hist.Orders[0].Lines) != 2 {
		t.Fatalf("expected 2 lines in stored order, got %+v", hist.Orders[0].Lines)
	}

	// an empty local cart cannot be checked out
	if _, err := sy.Checkout("1 Main St", "cod"); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
}

func TestSynchronizer_ApplicationErrorsDoNotFallBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "cart is empty", "code": "empty_cart"})
	}))
	defer srv.Close()

	store := newTestStore(t)
	if err := store.UpsertProducts(testCatalog()); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}
	// local lines exist, but the service's answer must win
	if _, err := store.AddLine(testCatalog()[0], 1); err != nil {
		t.Fatalf("seed line: %v", err)
	}
	sy := NewSynchronizer(New(srv.URL), store)

	if _, err := sy.Checkout("1 Main St", "cod"); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}

	// no local order was created
	hist, err := store.Orders()
	if err != nil {
		t.Fatalf("orders: %v", err)
	}
	if len(hist) != 0 {
		t.Fatalf("expected no local orders, got %+v", hist)
	}
}

func TestSynchronizer_ChecksInputBeforeEitherBranch(t *testing.T) {
	store := newTestStore(t)
	sy := NewSynchronizer(New("http://127.0.0.1:0"), store)

	if _, err := sy.Checkout("  ", "cod"); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for blank address, got %v", err)
	}
	if _, err := sy.Checkout("1 Main St", "barter"); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for bad payment, got %v", err)
	}
}
