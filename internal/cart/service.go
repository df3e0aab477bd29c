package cart

// Service validates cart mutations before they reach the repository.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// AddToCart upserts a line and returns the updated cart.
func (s *Service) AddToCart(userID, productID, qty int) ([]Item, error) {
	if qty < 1 {
		return nil, ErrInvalidQuantity
	}
	if err := s.repo.Add(userID, productID, qty); err != nil {
		return nil, err
	}
	return s.repo.Get(userID)
}

// UpdateLine sets an existing line's quantity. A quantity below 1 is
// rejected; callers wanting a removal use RemoveLine instead. This keeps
// "set to zero" an explicit client decision rather than a silent delete.
func (s *Service) UpdateLine(userID, lineID, qty int) ([]Item, error) {
	if qty < 1 {
		return nil, ErrInvalidQuantity
	}
	if err := s.repo.UpdateLine(userID, lineID, qty); err != nil {
		return nil, err
	}
	return s.repo.Get(userID)
}

func (s *Service) RemoveLine(userID, lineID int) ([]Item, error) {
	if err := s.repo.RemoveLine(userID, lineID); err != nil {
		return nil, err
	}
	return s.repo.Get(userID)
}

func (s *Service) Clear(userID int) error {
	return s.repo.Clear(userID)
}

func (s *Service) Get(userID int) ([]Item, error) {
	return s.repo.Get(userID)
}
