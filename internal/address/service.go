package address

import "strings"

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListByUser(userID int) ([]Address, error) {
	return s.repo.ListByUser(userID)
}

// Default returns the user's default address, or ErrNotFound when none
// is marked.
func (s *Service) Default(userID int) (Address, error) {
	addresses, err := s.repo.ListByUser(userID)
	if err != nil {
		return Address{}, err
	}
	for _, a := range addresses {
		if a.IsDefault {
			return a, nil
		}
	}
	return Address{}, ErrNotFound
}

func (s *Service) Create(a Address) (Address, error) {
	if strings.TrimSpace(a.Line) == "" {
		return Address{}, ErrMissingLine
	}
	return s.repo.Create(a)
}

func (s *Service) Update(a Address) (Address, error) {
	if strings.TrimSpace(a.Line) == "" {
		return Address{}, ErrMissingLine
	}
	return s.repo.Update(a)
}

func (s *Service) Delete(userID, addressID int) error {
	return s.repo.Delete(userID, addressID)
}

func (s *Service) SetDefault(userID, addressID int) error {
	return s.repo.SetDefault(userID, addressID)
}
