package client

import (
	"errors"
	"strconv"
	"strings"

	"github.com/pattarin-dev/shopsync/internal/cart"
	"github.com/pattarin-dev/shopsync/internal/order"
	"github.com/pattarin-dev/shopsync/internal/product"
)

// Source says which system of record produced a result.
type Source string

const (
	// Synced means the service handled the operation and the local store
	// was refreshed from its response.
	Synced Source = "synced"
	// LocalFallback means the service was unreachable and the operation
	// was applied to the durable local store instead.
	LocalFallback Source = "local-fallback"
)

type CartResult struct {
	Items  []cart.Item `json:"items"`
	Totals Totals      `json:"totals"`
	Source Source      `json:"source"`
}

type OrderResult struct {
	Order  Order  `json:"order"`
	Source Source `json:"source"`
}

type OrdersResult struct {
	Orders []Order `json:"orders"`
	Source Source  `json:"source"`
}

// Synchronizer runs every cart and order operation remote-first and
// falls back to the local store only on transport failure. Application
// errors from the service (not found, empty cart, bad request) are real
// answers and propagate as-is; falling back on those would fork state
// the service has already rejected.
type Synchronizer struct {
	client *Client
	store  *Store
}

func NewSynchronizer(c *Client, s *Store) *Synchronizer {
	return &Synchronizer{client: c, store: s}
}

// RefreshCatalog pulls the product list and caches it so offline adds
// can resolve names and prices.
func (sy *Synchronizer) RefreshCatalog() ([]product.Product, error) {
	products, err := sy.client.Products()
	if err != nil {
		return nil, err
	}
	if err := sy.store.UpsertProducts(products); err != nil {
		return nil, err
	}
	return products, nil
}

func (sy *Synchronizer) Cart() (CartResult, error) {
	items, err := sy.client.Cart()
	if err == nil {
		return sy.acceptRemoteCart(items)
	}
	if !errors.Is(err, ErrUnreachable) {
		return CartResult{}, err
	}
	return sy.localCart()
}

func (sy *Synchronizer) AddToCart(productID, quantity int) (CartResult, error) {
	if quantity < 1 {
		quantity = 1
	}

	items, err := sy.client.AddToCart(productID, quantity)
	if err == nil {
		return sy.acceptRemoteCart(items)
	}
	if !errors.Is(err, ErrUnreachable) {
		return CartResult{}, err
	}

	p, perr := sy.store.Product(productID)
	if perr != nil {
		return CartResult{}, perr
	}
	local, lerr := sy.store.AddLine(p, quantity)
	if lerr != nil {
		return CartResult{}, lerr
	}
	return sy.localResult(local)
}

func (sy *Synchronizer) UpdateLine(lineID, quantity int) (CartResult, error) {
	if quantity < 1 {
		return CartResult{}, ErrInvalidRequest
	}

	items, err := sy.client.UpdateCartLine(lineID, quantity)
	if err == nil {
		return sy.acceptRemoteCart(items)
	}
	if !errors.Is(err, ErrUnreachable) {
		return CartResult{}, err
	}

	local, lerr := sy.store.SetLineQuantity(lineID, quantity)
	if lerr != nil {
		return CartResult{}, lerr
	}
	return sy.localResult(local)
}

func (sy *Synchronizer) RemoveLine(lineID int) (CartResult, error) {
	items, err := sy.client.RemoveCartLine(lineID)
	if err == nil {
		return sy.acceptRemoteCart(items)
	}
	if !errors.Is(err, ErrUnreachable) {
		return CartResult{}, err
	}

	local, lerr := sy.store.RemoveLine(lineID)
	if lerr != nil {
		return CartResult{}, lerr
	}
	return sy.localResult(local)
}

func (sy *Synchronizer) ClearCart() (CartResult, error) {
	err := sy.client.ClearCart()
	if err == nil {
		return sy.acceptRemoteCart(nil)
	}
	if !errors.Is(err, ErrUnreachable) {
		return CartResult{}, err
	}

	if lerr := sy.store.ClearCart(); lerr != nil {
		return CartResult{}, lerr
	}
	return sy.localResult([]cart.Item{})
}

// Checkout places the order with the service; if the service cannot be
// reached the purchase is committed locally instead so it is never lost.
// Validation runs up front so both branches enforce the same rules.
func (sy *Synchronizer) Checkout(shippingAddress, paymentMethod string) (OrderResult, error) {
	if strings.TrimSpace(shippingAddress) == "" {
		return OrderResult{}, ErrInvalidRequest
	}
	if !validPayment(paymentMethod) {
		return OrderResult{}, ErrInvalidRequest
	}

	ord, err := sy.client.Checkout(shippingAddress, paymentMethod)
	if err == nil {
		if serr := sy.store.ClearCart(); serr != nil {
			return OrderResult{}, serr
		}
		return OrderResult{Order: fromServerOrder(ord), Source: Synced}, nil
	}
	if !errors.Is(err, ErrUnreachable) {
		return OrderResult{}, err
	}

	local, lerr := sy.store.Checkout(shippingAddress, paymentMethod)
	if lerr != nil {
		return OrderResult{}, lerr
	}
	return OrderResult{Order: local, Source: LocalFallback}, nil
}

// Orders lists order history. On a reachable service the local mirror is
// rewritten from the response; unsynced local orders stay in the list
// either way.
func (sy *Synchronizer) Orders() (OrdersResult, error) {
	remote, err := sy.client.Orders()
	if err == nil {
		if serr := sy.store.SaveOrders(remote); serr != nil {
			return OrdersResult{}, serr
		}
		all, serr := sy.store.Orders()
		if serr != nil {
			return OrdersResult{}, serr
		}
		return OrdersResult{Orders: all, Source: Synced}, nil
	}
	if !errors.Is(err, ErrUnreachable) {
		return OrdersResult{}, err
	}

	all, lerr := sy.store.Orders()
	if lerr != nil {
		return OrdersResult{}, lerr
	}
	return OrdersResult{Orders: all, Source: LocalFallback}, nil
}

// Totals returns the cached cart summary. It never hits the network:
// the cache is maintained transactionally by every cart mutation.
func (sy *Synchronizer) Totals() (Totals, error) {
	return sy.store.CachedTotals()
}

func (sy *Synchronizer) acceptRemoteCart(items []cart.Item) (CartResult, error) {
	if items == nil {
		items = []cart.Item{}
	}
	if err := sy.store.ReplaceCart(items); err != nil {
		return CartResult{}, err
	}
	return CartResult{Items: items, Totals: ComputeTotals(items), Source: Synced}, nil
}

func (sy *Synchronizer) localCart() (CartResult, error) {
	items, err := sy.store.CartItems()
	if err != nil {
		return CartResult{}, err
	}
	return sy.localResult(items)
}

func (sy *Synchronizer) localResult(items []cart.Item) (CartResult, error) {
	totals, err := sy.store.CachedTotals()
	if err != nil {
		return CartResult{}, err
	}
	return CartResult{Items: items, Totals: totals, Source: LocalFallback}, nil
}

func fromServerOrder(o order.Order) Order {
	return Order{
		ID:              strconv.Itoa(o.ID),
		TotalAmount:     o.TotalAmount,
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   o.PaymentMethod,
		Status:          o.Status,
		OrderDate:       o.OrderDate,
		ItemCount:       o.ItemCount,
		Lines:           o.Lines,
	}
}

func validPayment(method string) bool {
	for _, m := range order.PaymentMethods {
		if m == method {
			return true
		}
	}
	return false
}
