package favorite

import "errors"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrNotFavorite     = errors.New("product not in favorites")
)
