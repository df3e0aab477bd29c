package order

import "strings"

// Service validates checkout requests before the repository runs the
// transaction. Retrying after ErrTransactionFailed is the caller's call;
// the service never retries on its own.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Checkout(userID int, shippingAddress, paymentMethod string) (Order, error) {
	if strings.TrimSpace(shippingAddress) == "" {
		return Order{}, ErrMissingAddress
	}
	if !validPaymentMethod(paymentMethod) {
		return Order{}, ErrInvalidPayment
	}
	return s.repo.Checkout(userID, shippingAddress, paymentMethod)
}

func (s *Service) ListByUser(userID int) ([]Order, error) {
	return s.repo.ListByUser(userID)
}

func (s *Service) GetByID(userID, orderID int) (Order, error) {
	return s.repo.GetByID(userID, orderID)
}

func validPaymentMethod(pm string) bool {
	for _, m := range PaymentMethods {
		if pm == m {
			return true
		}
	}
	return false
}
