package address

import "sync"

type Repository interface {
	ListByUser(userID int) ([]Address, error)
	Create(a Address) (Address, error)
	Update(a Address) (Address, error)
	// Delete removes an address owned by the user; deleting the default
	// leaves the user with no default.
	Delete(userID, addressID int) error
	// SetDefault marks one address as the default and clears the flag on
	// every other address of the same user.
	SetDefault(userID, addressID int) error
}

// InMemoryRepository backs tests and local scenarios.
type InMemoryRepository struct {
	mu        sync.Mutex
	nextID    int
	addresses []Address
}

func NewInMemoryRepository(seed []Address) *InMemoryRepository {
	r := &InMemoryRepository{nextID: 1}
	for _, a := range seed {
		if a.ID >= r.nextID {
			r.nextID = a.ID + 1
		}
		r.addresses = append(r.addresses, a)
	}
	return r
}

func (r *InMemoryRepository) ListByUser(userID int) ([]Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Address, 0)
	for _, a := range r.addresses {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) Create(a Address) (Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = r.nextID
	r.nextID++
	if a.IsDefault {
		r.clearDefault(a.UserID)
	}
	r.addresses = append(r.addresses, a)
	return a, nil
}

func (r *InMemoryRepository) Update(a Address) (Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, cur := range r.addresses {
		if cur.ID == a.ID && cur.UserID == a.UserID {
			a.IsDefault = cur.IsDefault
			r.addresses[i] = a
			return a, nil
		}
	}
	return Address{}, ErrNotFound
}

func (r *InMemoryRepository) Delete(userID, addressID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, a := range r.addresses {
		if a.ID == addressID && a.UserID == userID {
			r.addresses = append(r.addresses[:i], r.addresses[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *InMemoryRepository) SetDefault(userID, addressID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	found := false
	for _, a := range r.addresses {
		if a.ID == addressID && a.UserID == userID {
			found = true
			break
		}
	}
	if !found {
		return ErrNotFound
	}
	r.clearDefault(userID)
	for i, a := range r.addresses {
		if a.ID == addressID {
			r.addresses[i].IsDefault = true
		}
	}
	return nil
}

func (r *InMemoryRepository) clearDefault(userID int) {
	for i, a := range r.addresses {
		if a.UserID == userID {
			r.addresses[i].IsDefault = false
		}
	}
}
