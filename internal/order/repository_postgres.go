package order

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	// FOR UPDATE OF c serializes concurrent checkouts (and cart writes in
	// the same transaction scope) on the same user's lines.
	selectCartForCheckoutQuery = `
		SELECT c.product_id, c.quantity, p.price
		FROM cart c
		JOIN products p ON c.product_id = p.id
		WHERE c.user_id = $1
		ORDER BY c.id
		FOR UPDATE OF c
	`
	insertOrderQuery = `
		INSERT INTO orders (user_id, total_amount, shipping_address, payment_method, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, order_date
	`
	insertOrderItemQuery = `
		INSERT INTO order_items (order_id, product_id, quantity, price)
		VALUES ($1, $2, $3, $4)
	`
	clearCartForCheckoutQuery = `DELETE FROM cart WHERE user_id = $1`

	listOrdersQuery = `
		SELECT o.id, o.total_amount, o.shipping_address, o.payment_method, o.status, o.order_date,
		       COUNT(oi.id) AS item_count
		FROM orders o
		LEFT JOIN order_items oi ON oi.order_id = o.id
		WHERE o.user_id = $1
		GROUP BY o.id
		ORDER BY o.order_date DESC, o.id DESC
	`
	getOrderQuery = `
		SELECT id, total_amount, shipping_address, payment_method, status, order_date
		FROM orders
		WHERE id = $1 AND user_id = $2
	`
	getOrderLinesQuery = `
		SELECT product_id, quantity, price
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Checkout converts the user's cart into an order inside one transaction:
// snapshot prices, insert the order and its lines, clear the cart. Any
// storage failure rolls the whole thing back and surfaces as
// ErrTransactionFailed, which callers may safely retry.
func (r *PostgresRepository) Checkout(userID int, shippingAddress, paymentMethod string) (Order, error) {
	var ord Order
	err := r.withTx(func(tx *sql.Tx) error {
		lines, err := fetchCartLines(tx, userID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		total := decimal.Zero
		for _, l := range lines {
			total = total.Add(l.Subtotal())
		}

		ord = Order{
			UserID:          userID,
			TotalAmount:     total,
			ShippingAddress: shippingAddress,
			PaymentMethod:   paymentMethod,
			Status:          StatusPending,
			ItemCount:       len(lines),
			Lines:           lines,
		}
		if err := tx.QueryRow(insertOrderQuery, userID, total, shippingAddress, paymentMethod, StatusPending).
			Scan(&ord.ID, &ord.OrderDate); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for _, l := range lines {
			if _, err := tx.Exec(insertOrderItemQuery, ord.ID, l.ProductID, l.Quantity, l.Price); err != nil {
				return fmt.Errorf("insert order line: %w", err)
			}
		}

		if _, err := tx.Exec(clearCartForCheckoutQuery, userID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrEmptyCart) {
			return Order{}, ErrEmptyCart
		}
		return Order{}, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}
	return ord, nil
}

func fetchCartLines(tx *sql.Tx, userID int) ([]Line, error) {
	rows, err := tx.Query(selectCartForCheckoutQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("read cart: %w", err)
	}
	defer rows.Close()

	lines := make([]Line, 0)
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ProductID, &l.Quantity, &l.Price); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// withTx is the single rollback path for checkout: fn either commits as a
// whole or the transaction is rolled back and its error returned.
func (r *PostgresRepository) withTx(fn func(*sql.Tx) error) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListByUser(userID int) ([]Order, error) {
	rows, err := r.db.Query(listOrdersQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Order, 0)
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.TotalAmount, &o.ShippingAddress, &o.PaymentMethod, &o.Status, &o.OrderDate, &o.ItemCount); err != nil {
			return nil, err
		}
		o.UserID = userID
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetByID(userID, orderID int) (Order, error) {
	var o Order
	err := r.db.QueryRow(getOrderQuery, orderID, userID).
		Scan(&o.ID, &o.TotalAmount, &o.ShippingAddress, &o.PaymentMethod, &o.Status, &o.OrderDate)
	if err == sql.ErrNoRows {
		// also covers orders owned by someone else: ownership is the
		// authorization check here
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, err
	}
	o.UserID = userID

	rows, err := r.db.Query(getOrderLinesQuery, orderID)
	if err != nil {
		return Order{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ProductID, &l.Quantity, &l.Price); err != nil {
			return Order{}, err
		}
		o.Lines = append(o.Lines, l)
	}
	o.ItemCount = len(o.Lines)
	return o, rows.Err()
}
