package client

import (
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/pattarin-dev/shopsync/internal/cart"
)

// Totals is the cart summary shown on the cart and checkout screens.
type Totals struct {
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

// ComputeTotals derives the summary from a set of cart items. The cached
// row in the store is only ever written with the output of this function.
func ComputeTotals(items []cart.Item) Totals {
	t := Totals{Total: decimal.Zero}
	for _, it := range items {
		t.Total = t.Total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		t.ItemCount += it.Quantity
	}
	return t
}

// CachedTotals reads the stored summary without touching the lines.
func (s *Store) CachedTotals() (Totals, error) {
	var t Totals
	err := s.db.QueryRow(`SELECT total, item_count FROM cart_totals WHERE id = 1`).Scan(&t.Total, &t.ItemCount)
	if err != nil {
		return Totals{}, err
	}
	return t, nil
}

// refreshTotals recomputes the summary from the lines visible inside tx
// and rewrites the cache row. Called by every cart mutation before
// commit, so readers never observe lines and totals out of step.
func (s *Store) refreshTotals(tx *sql.Tx) error {
	rows, err := tx.Query(`SELECT id, product_id, name, price, image_url, category, quantity FROM cart_lines ORDER BY id`)
	if err != nil {
		return err
	}
	items, err := scanCartItems(rows)
	if err != nil {
		return err
	}
	t := ComputeTotals(items)
	_, err = tx.Exec(`UPDATE cart_totals SET total = ?, item_count = ? WHERE id = 1`, t.Total, t.ItemCount)
	return err
}
