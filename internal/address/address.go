package address

import "errors"

var (
	ErrNotFound    = errors.New("address not found")
	ErrMissingLine = errors.New("address line is required")
)

// Address is a saved shipping destination. The checkout screen offers
// these so the user does not retype the address on every order; the
// default one is preselected.
type Address struct {
	ID        int    `json:"id"`
	UserID    int    `json:"-"`
	Label     string `json:"label"`
	Line      string `json:"line"`
	Phone     string `json:"phone,omitempty"`
	IsDefault bool   `json:"is_default"`
}
