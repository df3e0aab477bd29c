package order

import (
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pattarin-dev/shopsync/internal/cart"
)

// Repository persists orders. Checkout is the only multi-step mutation in
// the system and must be atomic: order + lines appear and the cart empties
// together, or nothing changes at all.
type Repository interface {
	Checkout(userID int, shippingAddress, paymentMethod string) (Order, error)
	ListByUser(userID int) ([]Order, error)
	GetByID(userID, orderID int) (Order, error)
}

// InMemoryRepository implements checkout over a cart repository. It backs
// the service-level semantics tests (snapshot totals, cart emptied).
type InMemoryRepository struct {
	mu     sync.Mutex
	nextID int
	orders []Order
	carts  cart.Repository
}

func NewInMemoryRepository(carts cart.Repository) *InMemoryRepository {
	return &InMemoryRepository{nextID: 1, carts: carts}
}

func (r *InMemoryRepository) Checkout(userID int, shippingAddress, paymentMethod string) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items, err := r.carts.Get(userID)
	if err != nil {
		return Order{}, err
	}
	if len(items) == 0 {
		return Order{}, ErrEmptyCart
	}

	total := decimal.Zero
	lines := make([]Line, 0, len(items))
	for _, it := range items {
		l := Line{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price}
		total = total.Add(l.Subtotal())
		lines = append(lines, l)
	}

	ord := Order{
		ID:              r.nextID,
		UserID:          userID,
		TotalAmount:     total,
		ShippingAddress: shippingAddress,
		PaymentMethod:   paymentMethod,
		Status:          StatusPending,
		OrderDate:       time.Now().UTC(),
		ItemCount:       len(lines),
		Lines:           lines,
	}
	r.nextID++
	r.orders = append(r.orders, ord)

	if err := r.carts.Clear(userID); err != nil {
		// undo the append so a failed clear leaves no partial order
		r.orders = r.orders[:len(r.orders)-1]
		return Order{}, ErrTransactionFailed
	}
	return ord, nil
}

func (r *InMemoryRepository) ListByUser(userID int) ([]Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Order, 0)
	for _, o := range r.orders {
		if o.UserID == userID {
			summary := o
			summary.Lines = nil
			out = append(out, summary)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OrderDate.Equal(out[j].OrderDate) {
			return out[i].OrderDate.After(out[j].OrderDate)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *InMemoryRepository) GetByID(userID, orderID int) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.ID == orderID && o.UserID == userID {
			return o, nil
		}
	}
	return Order{}, ErrNotFound
}
