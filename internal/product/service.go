package product

// Service orchestrates catalog reads. The catalog is immutable from the
// cart/order subsystem's point of view, so there are no write operations.
type Service struct {
	repo Repository
}

// ServiceInterface lets other packages (order enrichment) depend on the
// product service without a concrete type.
type ServiceInterface interface {
	List() ([]Product, error)
	GetByID(id int) (Product, error)
	ListByIDs(ids []int) ([]Product, error)
	Categories() ([]string, error)
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List() ([]Product, error) {
	return s.repo.List()
}

func (s *Service) GetByID(id int) (Product, error) {
	if id <= 0 {
		return Product{}, ErrNotFound
	}
	return s.repo.GetByID(id)
}

func (s *Service) ListByIDs(ids []int) ([]Product, error) {
	return s.repo.ListByIDs(ids)
}

func (s *Service) Categories() ([]string, error) {
	return s.repo.Categories()
}
