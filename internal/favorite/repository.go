package favorite

import (
	"sync"

	"github.com/pattarin-dev/shopsync/internal/product"
)

type Repository interface {
	// Add marks a product as a favorite; adding one that already is, is
	// a no-op.
	Add(userID, productID int) error
	Remove(userID, productID int) error
	// List returns the favorited product ids in the order they were
	// added.
	List(userID int) ([]int, error)
}

// InMemoryRepository backs tests and local scenarios.
type InMemoryRepository struct {
	mu        sync.Mutex
	favorites map[int][]int
	products  product.Repository
}

func NewInMemoryRepository(products product.Repository) *InMemoryRepository {
	return &InMemoryRepository{favorites: make(map[int][]int), products: products}
}

func (r *InMemoryRepository) Add(userID, productID int) error {
	if _, err := r.products.GetByID(productID); err != nil {
		return ErrProductNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, pid := range r.favorites[userID] {
		if pid == productID {
			return nil
		}
	}
	r.favorites[userID] = append(r.favorites[userID], productID)
	return nil
}

func (r *InMemoryRepository) Remove(userID, productID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, pid := range r.favorites[userID] {
		if pid == productID {
			r.favorites[userID] = append(r.favorites[userID][:i], r.favorites[userID][i+1:]...)
			return nil
		}
	}
	return ErrNotFavorite
}

func (r *InMemoryRepository) List(userID int) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, len(r.favorites[userID]))
	copy(out, r.favorites[userID])
	return out, nil
}
