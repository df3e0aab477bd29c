package client

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/pattarin-dev/shopsync/internal/cart"
	"github.com/pattarin-dev/shopsync/internal/order"
	"github.com/pattarin-dev/shopsync/internal/product"
)

// StatusLocallyConfirmed marks an order that was committed against the
// local store during an outage and has not been confirmed by the service.
const StatusLocallyConfirmed = "locally-confirmed"

// Order is the client-side view of an order. Synced orders carry the
// server's numeric id as a string; locally created ones carry a UUID and
// Unsynced set.
type Order struct {
	ID              string          `json:"id"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	ShippingAddress string          `json:"shipping_address"`
	PaymentMethod   string          `json:"payment_method"`
	Status          string          `json:"status"`
	OrderDate       time.Time       `json:"order_date"`
	ItemCount       int             `json:"item_count"`
	Unsynced        bool            `json:"unsynced"`
	Lines           []order.Line    `json:"items,omitempty"`
}

// Store is the durable local mirror of cart/order state, backed by a
// SQLite file. Every mutation keeps the cached totals row in step with
// the lines inside the same transaction.
type Store struct {
	db *sql.DB
}

func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// the store is single-user; one connection avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS products (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price TEXT NOT NULL,
			image_url TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			stock INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS cart_lines (
			id INTEGER PRIMARY KEY,
			product_id INTEGER NOT NULL UNIQUE,
			name TEXT NOT NULL,
			price TEXT NOT NULL,
			image_url TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			quantity INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id TEXT PRIMARY KEY,
			total_amount TEXT NOT NULL,
			shipping_address TEXT NOT NULL,
			payment_method TEXT NOT NULL,
			status TEXT NOT NULL,
			order_date TEXT NOT NULL,
			item_count INTEGER NOT NULL DEFAULT 0,
			unsynced INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS order_lines (
			order_id TEXT NOT NULL,
			product_id INTEGER NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			quantity INTEGER NOT NULL,
			price TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS cart_totals (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			total TEXT NOT NULL,
			item_count INTEGER NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	_, err := s.db.Exec(`INSERT OR IGNORE INTO cart_totals (id, total, item_count) VALUES (1, '0', 0)`)
	return err
}

// UpsertProducts caches catalog rows so offline adds can resolve product
// details and prices.
func (s *Store) UpsertProducts(products []product.Product) error {
	return s.withTx(func(tx *sql.Tx) error {
		for _, p := range products {
			if _, err := tx.Exec(`
				INSERT INTO products (id, name, description, price, image_url, category, stock)
				VALUES (?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT(id) DO UPDATE SET
					name = excluded.name,
					description = excluded.description,
					price = excluded.price,
					image_url = excluded.image_url,
					category = excluded.category,
					stock = excluded.stock
			`, p.ID, p.Name, p.Description, p.Price, p.ImageURL, p.Category, p.Stock); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) Product(id int) (product.Product, error) {
	var p product.Product
	err := s.db.QueryRow(`SELECT id, name, description, price, image_url, category, stock FROM products WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.Category, &p.Stock)
	if err == sql.ErrNoRows {
		return product.Product{}, ErrNotFound
	}
	if err != nil {
		return product.Product{}, err
	}
	return p, nil
}

// ReplaceCart overwrites the local cart with the canonical server state.
func (s *Store) ReplaceCart(items []cart.Item) error {
	return s.withTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM cart_lines`); err != nil {
			return err
		}
		for _, it := range items {
			if _, err := tx.Exec(`
				INSERT INTO cart_lines (id, product_id, name, price, image_url, category, quantity)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`, it.ID, it.ProductID, it.Name, it.Price, it.ImageURL, it.Category, it.Quantity); err != nil {
				return err
			}
		}
		return s.refreshTotals(tx)
	})
}

// AddLine applies an add-to-cart locally: same upsert-and-increment
// semantics as the server.
func (s *Store) AddLine(p product.Product, qty int) ([]cart.Item, error) {
	err := s.withTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`
			INSERT INTO cart_lines (id, product_id, name, price, image_url, category, quantity)
			VALUES ((SELECT COALESCE(MAX(id), 0) + 1 FROM cart_lines), ?, ?, ?, ?, ?, ?)
			ON CONFLICT(product_id) DO UPDATE SET quantity = quantity + excluded.quantity
		`, p.ID, p.Name, p.Price, p.ImageURL, p.Category, qty); err != nil {
			return err
		}
		return s.refreshTotals(tx)
	})
	if err != nil {
		return nil, err
	}
	return s.CartItems()
}

func (s *Store) SetLineQuantity(lineID, qty int) ([]cart.Item, error) {
	err := s.withTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(`UPDATE cart_lines SET quantity = ? WHERE id = ?`, qty, lineID)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrNotFound
		}
		return s.refreshTotals(tx)
	})
	if err != nil {
		return nil, err
	}
	return s.CartItems()
}

func (s *Store) RemoveLine(lineID int) ([]cart.Item, error) {
	err := s.withTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM cart_lines WHERE id = ?`, lineID); err != nil {
			return err
		}
		return s.refreshTotals(tx)
	})
	if err != nil {
		return nil, err
	}
	return s.CartItems()
}

func (s *Store) ClearCart() error {
	return s.withTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM cart_lines`); err != nil {
			return err
		}
		return s.refreshTotals(tx)
	})
}

func (s *Store) CartItems() ([]cart.Item, error) {
	rows, err := s.db.Query(`SELECT id, product_id, name, price, image_url, category, quantity FROM cart_lines ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCartItems(rows)
}

// Checkout commits the local cart into a locally-confirmed, unsynced
// order. It mirrors the server contract: same Σ(qty × price) total, all
// three steps in one transaction, cart left empty on success.
func (s *Store) Checkout(shippingAddress, paymentMethod string) (Order, error) {
	var ord Order
	err := s.withTx(func(tx *sql.Tx) error {
		rows, err := tx.Query(`SELECT id, product_id, name, price, image_url, category, quantity FROM cart_lines ORDER BY id`)
		if err != nil {
			return err
		}
		items, err := scanCartItems(rows)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}

		lines := make([]order.Line, 0, len(items))
		total := decimal.Zero
		for _, it := range items {
			l := order.Line{ProductID: it.ProductID, Name: it.Name, Quantity: it.Quantity, Price: it.Price}
			total = total.Add(l.Subtotal())
			lines = append(lines, l)
		}

		ord = Order{
			ID:              uuid.NewString(),
			TotalAmount:     total,
			ShippingAddress: shippingAddress,
			PaymentMethod:   paymentMethod,
			Status:          StatusLocallyConfirmed,
			OrderDate:       time.Now().UTC(),
			ItemCount:       len(lines),
			Unsynced:        true,
			Lines:           lines,
		}

		if _, err := tx.Exec(`
			INSERT INTO orders (id, total_amount, shipping_address, payment_method, status, order_date, item_count, unsynced)
			VALUES (?, ?, ?, ?, ?, ?, ?, 1)
		`, ord.ID, ord.TotalAmount, ord.ShippingAddress, ord.PaymentMethod, ord.Status, ord.OrderDate.Format(time.RFC3339), ord.ItemCount); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		for _, l := range lines {
			if _, err := tx.Exec(`
				INSERT INTO order_lines (order_id, product_id, name, quantity, price)
				VALUES (?, ?, ?, ?, ?)
			`, ord.ID, l.ProductID, l.Name, l.Quantity, l.Price); err != nil {
				return fmt.Errorf("insert order line: %w", err)
			}
		}
		if _, err := tx.Exec(`DELETE FROM cart_lines`); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		return s.refreshTotals(tx)
	})
	if err != nil {
		return Order{}, err
	}
	return ord, nil
}

// SaveOrders mirrors the server's order list: synced rows are replaced
// wholesale, unsynced local orders are kept untouched.
func (s *Store) SaveOrders(orders []order.Order) error {
	return s.withTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM order_lines WHERE order_id IN (SELECT id FROM orders WHERE unsynced = 0)`); err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM orders WHERE unsynced = 0`); err != nil {
			return err
		}
		for _, o := range orders {
			id := strconv.Itoa(o.ID)
			if _, err := tx.Exec(`
				INSERT INTO orders (id, total_amount, shipping_address, payment_method, status, order_date, item_count, unsynced)
				VALUES (?, ?, ?, ?, ?, ?, ?, 0)
			`, id, o.TotalAmount, o.ShippingAddress, o.PaymentMethod, o.Status, o.OrderDate.Format(time.RFC3339), o.ItemCount); err != nil {
				return err
			}
			for _, l := range o.Lines {
				if _, err := tx.Exec(`
					INSERT INTO order_lines (order_id, product_id, name, quantity, price)
					VALUES (?, ?, ?, ?, ?)
				`, id, l.ProductID, l.Name, l.Quantity, l.Price); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (s *Store) Orders() ([]Order, error) {
	rows, err := s.db.Query(`
		SELECT id, total_amount, shipping_address, payment_method, status, order_date, item_count, unsynced
		FROM orders
		ORDER BY order_date DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Order, 0)
	for rows.Next() {
		var o Order
		var date string
		var unsynced int
		if err := rows.Scan(&o.ID, &o.TotalAmount, &o.ShippingAddress, &o.PaymentMethod, &o.Status, &date, &o.ItemCount, &unsynced); err != nil {
			return nil, err
		}
		o.OrderDate, _ = time.Parse(time.RFC3339, date)
		o.Unsynced = unsynced != 0
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		lines, err := s.orderLines(out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Lines = lines
	}
	return out, nil
}

func (s *Store) orderLines(orderID string) ([]order.Line, error) {
	rows, err := s.db.Query(`SELECT product_id, name, quantity, price FROM order_lines WHERE order_id = ? ORDER BY rowid`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []order.Line
	for rows.Next() {
		var l order.Line
		if err := rows.Scan(&l.ProductID, &l.Name, &l.Quantity, &l.Price); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (s *Store) withTx(fn func(*sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func scanCartItems(rows *sql.Rows) ([]cart.Item, error) {
	defer rows.Close()
	items := make([]cart.Item, 0)
	for rows.Next() {
		var it cart.Item
		if err := rows.Scan(&it.ID, &it.ProductID, &it.Name, &it.Price, &it.ImageURL, &it.Category, &it.Quantity); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
