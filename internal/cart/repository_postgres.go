package cart

import "database/sql"

type PostgresRepository struct {
	db *sql.DB
}

const (
	productExistsQuery = `SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`

	// Single-statement upsert: concurrent adds for the same (user, product)
	// both land on the DO UPDATE branch and neither increment is lost.
	upsertLineQuery = `
		INSERT INTO cart (user_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart.quantity + EXCLUDED.quantity
	`
	updateLineQuery = `UPDATE cart SET quantity = $1 WHERE id = $2 AND user_id = $3`
	removeLineQuery = `DELETE FROM cart WHERE id = $1 AND user_id = $2`
	clearCartQuery  = `DELETE FROM cart WHERE user_id = $1`

	getCartQuery = `
		SELECT c.id, c.product_id, p.name, p.price, p.image_url, p.category, c.quantity
		FROM cart c
		JOIN products p ON c.product_id = p.id
		WHERE c.user_id = $1
		ORDER BY c.id
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Add(userID, productID, qty int) error {
	var exists bool
	if err := r.db.QueryRow(productExistsQuery, productID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrProductNotFound
	}

	_, err := r.db.Exec(upsertLineQuery, userID, productID, qty)
	return err
}

func (r *PostgresRepository) UpdateLine(userID, lineID, qty int) error {
	res, err := r.db.Exec(updateLineQuery, qty, lineID, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrLineNotFound
	}
	return nil
}

func (r *PostgresRepository) RemoveLine(userID, lineID int) error {
	// deleting an absent line is a no-op, not an error
	_, err := r.db.Exec(removeLineQuery, lineID, userID)
	return err
}

func (r *PostgresRepository) Clear(userID int) error {
	_, err := r.db.Exec(clearCartQuery, userID)
	return err
}

func (r *PostgresRepository) Get(userID int) ([]Item, error) {
	rows, err := r.db.Query(getCartQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.ProductID, &it.Name, &it.Price, &it.ImageURL, &it.Category, &it.Quantity); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
