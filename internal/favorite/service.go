package favorite

import "github.com/pattarin-dev/shopsync/internal/product"

// Service resolves favorites to full product rows so the client can
// render the wishlist without extra catalog round trips.
type Service struct {
	repo     Repository
	products product.ServiceInterface
}

func NewService(repo Repository, products product.ServiceInterface) *Service {
	return &Service{repo: repo, products: products}
}

func (s *Service) Add(userID, productID int) ([]product.Product, error) {
	if err := s.repo.Add(userID, productID); err != nil {
		return nil, err
	}
	return s.List(userID)
}

func (s *Service) Remove(userID, productID int) ([]product.Product, error) {
	if err := s.repo.Remove(userID, productID); err != nil {
		return nil, err
	}
	return s.List(userID)
}

func (s *Service) List(userID int) ([]product.Product, error) {
	ids, err := s.repo.List(userID)
	if err != nil {
		return nil, err
	}
	return s.products.ListByIDs(ids)
}
