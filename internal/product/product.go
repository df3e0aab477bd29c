package product

import "github.com/shopspring/decimal"

// Product is read-only reference data as far as the cart/order
// subsystem is concerned: carts and orders point at it, never change it.
// JSON tags follow the snake_case wire contract used across the API.
type Product struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url"`
	Category    string          `json:"category"`
	Stock       int             `json:"stock"`
}
