package order

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/pattarin-dev/shopsync/internal/cart"
	"github.com/pattarin-dev/shopsync/internal/product"
)

func newFixture(t *testing.T) (*Service, *cart.Service, *product.InMemoryRepository) {
	t.Helper()
	products := product.NewInMemoryRepository([]product.Product{
		{ID: 1, Name: "Dog Food", Price: decimal.RequireFromString("10.00")},
		{ID: 2, Name: "Cat Toy", Price: decimal.RequireFromString("5.00")},
	})
	carts := cart.NewInMemoryRepository(products)
	return NewService(NewInMemoryRepository(carts)), cart.NewService(carts), products
}

func TestCheckout_TotalIsSumOfLineSubtotals(t *testing.T) {
	orders, carts, _ := newFixture(t)

	if _, err := carts.AddToCart(7, 1, 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := carts.AddToCart(7, 2, 1); err != nil {
		t.Fatalf("add: %v", err)
	}

	ord, err := orders.Checkout(7, "1 Main St", "credit_card")
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	want := decimal.RequireFromString("25.00")
	if !ord.TotalAmount.Equal(want) {
		t.Fatalf("expected total %s, got %s", want, ord.TotalAmount)
	}
	if ord.Status != StatusPending {
		t.Fatalf("expected status %q, got %q", StatusPending, ord.Status)
	}
	if len(ord.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(ord.Lines))
	}

	// checkout empties the cart
	items, err := carts.Get(7)
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty cart after checkout, got %d items", len(items))
	}
}

func TestCheckout_FreezesPriceAtCheckoutTime(t *testing.T) {
	orders, carts, products := newFixture(t)

	if _, err := carts.AddToCart(7, 1, 1); err != nil {
		t.Fatalf("add: %v", err)
	}

	// a price change between add and checkout is what the order pays
	products.SetPrice(1, decimal.RequireFromString("12.50"))

	ord, err := orders.Checkout(7, "1 Main St", "paypal")
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if !ord.TotalAmount.Equal(decimal.RequireFromString("12.50")) {
		t.Fatalf("expected checkout-time price 12.50, got %s", ord.TotalAmount)
	}

	// a later price change never touches the committed order
	products.SetPrice(1, decimal.RequireFromString("99.00"))
	got, err := orders.GetByID(7, ord.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if !got.TotalAmount.Equal(decimal.RequireFromString("12.50")) {
		t.Fatalf("committed total changed to %s", got.TotalAmount)
	}
	if !got.Lines[0].Price.Equal(decimal.RequireFromString("12.50")) {
		t.Fatalf("committed line price changed to %s", got.Lines[0].Price)
	}
}

func TestCheckout_EmptyCart(t *testing.T) {
	orders, _, _ := newFixture(t)

	if _, err := orders.Checkout(7, "1 Main St", "cod"); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
}

func TestCheckout_Validation(t *testing.T) {
	orders, carts, _ := newFixture(t)
	if _, err := carts.AddToCart(7, 1, 1); err != nil {
		t.Fatalf("add: %v", err)
	}

	if _, err := orders.Checkout(7, "   ", "credit_card"); !errors.Is(err, ErrMissingAddress) {
		t.Fatalf("expected ErrMissingAddress, got %v", err)
	}
	if _, err := orders.Checkout(7, "1 Main St", "wire_transfer"); !errors.Is(err, ErrInvalidPayment) {
		t.Fatalf("expected ErrInvalidPayment, got %v", err)
	}

	// the cart is untouched after rejected checkouts
	items, err := carts.Get(7)
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected cart to survive rejected checkout, got %d items", len(items))
	}
}

func TestListByUser_NewestFirstAndScoped(t *testing.T) {
	orders, carts, _ := newFixture(t)

	for i := 0; i < 3; i++ {
		if _, err := carts.AddToCart(7, 1, 1); err != nil {
			t.Fatalf("add: %v", err)
		}
		if _, err := orders.Checkout(7, "1 Main St", "cod"); err != nil {
			t.Fatalf("checkout: %v", err)
		}
	}
	if _, err := carts.AddToCart(8, 2, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := orders.Checkout(8, "2 Oak Ave", "cod"); err != nil {
		t.Fatalf("checkout: %v", err)
	}

	list, err := orders.ListByUser(7)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 orders for user 7, got %d", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i-1].ID < list[i].ID {
			t.Fatalf("expected newest first, got ids %d before %d", list[i-1].ID, list[i].ID)
		}
	}
}

func TestGetByID_OwnershipHidesForeignOrders(t *testing.T) {
	orders, carts, _ := newFixture(t)

	if _, err := carts.AddToCart(7, 1, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	ord, err := orders.Checkout(7, "1 Main St", "cod")
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	if _, err := orders.GetByID(8, ord.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign user, got %v", err)
	}
}
