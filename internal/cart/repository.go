package cart

import (
	"context"
	"database/sql"

	"github.com/joao-fontenele/storefront/internal/database"
	"github.com/joao-fontenele/storefront/internal/domain"
)

type CartRepository struct {
	db *sql.DB
}

func NewCartRepository(db *sql.DB) *CartRepository {
	return &CartRepository{db: db}
}

// Lines returns the user's cart priced at the current catalog price. Lines
// whose product was deleted are left out.
func (r *CartRepository) Lines(ctx context.Context, userID int64) ([]domain.CartLine, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.product_id, p.name, p.price, c.quantity, p.main_image_url
		FROM cart_lines c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.product_id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	lines := []domain.CartLine{}
	for rows.Next() {
		var l domain.CartLine
		if err := rows.Scan(&l.ProductID, &l.Name, &l.Price, &l.Quantity, &l.MainImageURL); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return lines, nil
}

// Add inserts the line or increments an existing one. The product must exist
// at the time of the call, and the resulting quantity may not exceed
// domain.MaxLineQuantity.
func (r *CartRepository) Add(ctx context.Context, userID, productID int64, quantity int) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO cart_lines (user_id, product_id, quantity)
		SELECT $1, p.id, $3
		FROM products p
		WHERE p.id = $2
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_lines.quantity + EXCLUDED.quantity
	`, userID, productID, quantity)
	if database.IsForeignKeyViolation(err) {
		return domain.ErrUserNotFound
	}
	if database.IsCheckViolation(err) || database.IsOutOfRange(err) {
		return domain.ErrQuantityTooLarge
	}
	if err != nil {
		return err
	}

	ok, err := database.AffectedOne(res)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrProductNotFound
	}
	return nil
}

// Remove deletes the line if present. Removing an absent line is not an error.
func (r *CartRepository) Remove(ctx context.Context, userID, productID int64) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM cart_lines WHERE user_id = $1 AND product_id = $2
	`, userID, productID)
	return err
}
