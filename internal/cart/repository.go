package cart

import (
	"sort"
	"sync"

	"github.com/pattarin-dev/shopsync/internal/product"
)

// Repository provides persistence for a user's cart lines.
type Repository interface {
	// Add upserts a line: an existing (userID, productID) line has its
	// quantity incremented, otherwise a new line is created. The
	// increment must be a single atomic read-modify-write.
	Add(userID, productID, qty int) error
	// UpdateLine sets the quantity of a line owned by userID.
	UpdateLine(userID, lineID, qty int) error
	// RemoveLine deletes a line; removing an absent line is not an error.
	RemoveLine(userID, lineID int) error
	// Clear deletes every line for userID; idempotent.
	Clear(userID int) error
	// Get returns the user's lines joined with current product details.
	Get(userID int) ([]Item, error)
}

type memLine struct {
	id        int
	userID    int
	productID int
	quantity  int
}

// InMemoryRepository backs tests and local scenarios. It holds the same
// upsert invariant as the postgres implementation: the quantity increment
// happens under one lock, so concurrent adds never lose an update.
type InMemoryRepository struct {
	mu       sync.Mutex
	nextID   int
	lines    []memLine
	products product.Repository
}

func NewInMemoryRepository(products product.Repository) *InMemoryRepository {
	return &InMemoryRepository{nextID: 1, products: products}
}

func (r *InMemoryRepository) Add(userID, productID, qty int) error {
	if _, err := r.products.GetByID(productID); err != nil {
		return ErrProductNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for i, l := range r.lines {
		if l.userID == userID && l.productID == productID {
			r.lines[i].quantity += qty
			return nil
		}
	}
	r.lines = append(r.lines, memLine{id: r.nextID, userID: userID, productID: productID, quantity: qty})
	r.nextID++
	return nil
}

func (r *InMemoryRepository) UpdateLine(userID, lineID, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, l := range r.lines {
		if l.id == lineID && l.userID == userID {
			r.lines[i].quantity = qty
			return nil
		}
	}
	return ErrLineNotFound
}

func (r *InMemoryRepository) RemoveLine(userID, lineID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, l := range r.lines {
		if l.id == lineID && l.userID == userID {
			r.lines = append(r.lines[:i], r.lines[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *InMemoryRepository) Clear(userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.lines[:0]
	for _, l := range r.lines {
		if l.userID != userID {
			kept = append(kept, l)
		}
	}
	r.lines = kept
	return nil
}

func (r *InMemoryRepository) Get(userID int) ([]Item, error) {
	r.mu.Lock()
	lines := make([]memLine, 0)
	for _, l := range r.lines {
		if l.userID == userID {
			lines = append(lines, l)
		}
	}
	r.mu.Unlock()

	sort.Slice(lines, func(i, j int) bool { return lines[i].id < lines[j].id })

	items := make([]Item, 0, len(lines))
	for _, l := range lines {
		p, err := r.products.GetByID(l.productID)
		if err != nil {
			return nil, err
		}
		items = append(items, Item{
			ID:        l.id,
			ProductID: l.productID,
			Name:      p.Name,
			Price:     p.Price,
			ImageURL:  p.ImageURL,
			Category:  p.Category,
			Quantity:  l.quantity,
		})
	}
	return items, nil
}
