package favorite

import "database/sql"

type PostgresRepository struct {
	db *sql.DB
}

const (
	favoriteProductExistsQuery = `SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`

	addFavoriteQuery = `
		INSERT INTO favorites (user_id, product_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, product_id) DO NOTHING
	`
	removeFavoriteQuery = `DELETE FROM favorites WHERE user_id = $1 AND product_id = $2`
	listFavoritesQuery  = `SELECT product_id FROM favorites WHERE user_id = $1 ORDER BY id`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Add(userID, productID int) error {
	var exists bool
	if err := r.db.QueryRow(favoriteProductExistsQuery, productID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrProductNotFound
	}

	_, err := r.db.Exec(addFavoriteQuery, userID, productID)
	return err
}

func (r *PostgresRepository) Remove(userID, productID int) error {
	res, err := r.db.Exec(removeFavoriteQuery, userID, productID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFavorite
	}
	return nil
}

func (r *PostgresRepository) List(userID int) ([]int, error) {
	rows, err := r.db.Query(listFavoritesQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
