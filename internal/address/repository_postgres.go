package address

import "database/sql"

type PostgresRepository struct {
	db *sql.DB
}

const (
	listAddressesQuery = `
		SELECT id, user_id, label, line, phone, is_default
		FROM addresses
		WHERE user_id = $1
		ORDER BY is_default DESC, id
	`
	insertAddressQuery = `
		INSERT INTO addresses (user_id, label, line, phone, is_default)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	updateAddressQuery = `
		UPDATE addresses SET label = $1, line = $2, phone = $3
		WHERE id = $4 AND user_id = $5
	`
	deleteAddressQuery = `DELETE FROM addresses WHERE id = $1 AND user_id = $2`

	clearDefaultQuery = `UPDATE addresses SET is_default = FALSE WHERE user_id = $1`
	setDefaultQuery   = `UPDATE addresses SET is_default = TRUE WHERE id = $1 AND user_id = $2`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListByUser(userID int) ([]Address, error) {
	rows, err := r.db.Query(listAddressesQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Address, 0)
	for rows.Next() {
		var a Address
		if err := rows.Scan(&a.ID, &a.UserID, &a.Label, &a.Line, &a.Phone, &a.IsDefault); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Create(a Address) (Address, error) {
	if a.IsDefault {
		if _, err := r.db.Exec(clearDefaultQuery, a.UserID); err != nil {
			return Address{}, err
		}
	}
	if err := r.db.QueryRow(insertAddressQuery, a.UserID, a.Label, a.Line, a.Phone, a.IsDefault).Scan(&a.ID); err != nil {
		return Address{}, err
	}
	return a, nil
}

func (r *PostgresRepository) Update(a Address) (Address, error) {
	res, err := r.db.Exec(updateAddressQuery, a.Label, a.Line, a.Phone, a.ID, a.UserID)
	if err != nil {
		return Address{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return Address{}, err
	}
	if affected == 0 {
		return Address{}, ErrNotFound
	}
	return a, nil
}

func (r *PostgresRepository) Delete(userID, addressID int) error {
	res, err := r.db.Exec(deleteAddressQuery, addressID, userID)
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
	return nil
}

// SetDefault clears and sets the flag in one transaction so two
// addresses are never both marked default.
func (r *PostgresRepository) SetDefault(userID, addressID int) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(clearDefaultQuery, userID); err != nil {
		_ = tx.Rollback()
		return err
	}
	res, err := tx.Exec(setDefaultQuery, addressID, userID)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	if affected == 0 {
		_ = tx.Rollback()
		return ErrNotFound
	}
	return tx.Commit()
}
