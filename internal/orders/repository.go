package orders

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/joao-fontenele/storefront/internal/database"
	"github.com/joao-fontenele/storefront/internal/domain"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// InTx runs fn against a transaction-bound view of the repository.
func (r *OrderRepository) InTx(ctx context.Context, fn func(Tx) error) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		return fn(&txRepository{tx: tx})
	})
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID int64) ([]domain.OrderLine, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT o.id, o.order_date, o.total_amount, o.status,
		       oi.product_id, oi.quantity, oi.price,
		       COALESCE(p.name, ''), COALESCE(p.main_image_url, '')
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		LEFT JOIN products p ON p.id = oi.product_id
		WHERE o.user_id = $1
		ORDER BY o.order_date DESC, o.id, oi.product_id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	lines := []domain.OrderLine{}
	for rows.Next() {
		var l domain.OrderLine
		if err := rows.Scan(&l.OrderID, &l.OrderDate, &l.TotalAmount, &l.Status,
			&l.ProductID, &l.Quantity, &l.Price, &l.Name, &l.MainImageURL); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return lines, nil
}

const summaryColumns = `
	o.id, o.order_date, o.total_amount, o.status, u.login,
	d.city, d.street, d.house, COALESCE(d.apartment, ''), COALESCE(d.postal_code, '')
`

func scanSummary(row interface{ Scan(...any) error }, s *domain.OrderSummary) error {
	return row.Scan(&s.OrderID, &s.OrderDate, &s.TotalAmount, &s.Status, &s.UserLogin,
		&s.City, &s.Street, &s.House, &s.Apartment, &s.PostalCode)
}

func (r *OrderRepository) ListAll(ctx context.Context) ([]domain.OrderSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+summaryColumns+`
		FROM orders o
		JOIN users u ON u.id = o.user_id
		JOIN delivery_addresses d ON d.id = o.address_id
		ORDER BY o.order_date DESC
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	summaries := []domain.OrderSummary{}
	for rows.Next() {
		var s domain.OrderSummary
		if err := scanSummary(rows, &s); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return summaries, nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.OrderDetail, error) {
	detail := &domain.OrderDetail{Items: []domain.OrderDetailItem{}}

	err := scanSummary(r.db.QueryRowContext(ctx, `
		SELECT `+summaryColumns+`
		FROM orders o
		JOIN users u ON u.id = o.user_id
		JOIN delivery_addresses d ON d.id = o.address_id
		WHERE o.id = $1
	`, id), &detail.OrderSummary)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT oi.product_id, COALESCE(p.name, ''), oi.quantity, oi.price, COALESCE(p.main_image_url, '')
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.product_id
	`, id)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var item domain.OrderDetailItem
		if err := rows.Scan(&item.ProductID, &item.Name, &item.Quantity, &item.Price, &item.MainImageURL); err != nil {
			return nil, err
		}
		detail.Items = append(detail.Items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return detail, nil
}

type txRepository struct {
	tx *sql.Tx
}

// LockCustomer takes the row lock that serializes checkouts of one user and
// returns the address confirmations go to.
func (t *txRepository) LockCustomer(ctx context.Context, userID int64) (string, error) {
	var email string
	err := t.tx.QueryRowContext(ctx, `
		SELECT email FROM users WHERE id = $1 FOR UPDATE
	`, userID).Scan(&email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrUserNotFound
		}
		return "", err
	}
	return email, nil
}

// CartSnapshot reads the cart with current prices. Lines whose product is gone
// drop out of the join.
func (t *txRepository) CartSnapshot(ctx context.Context, userID int64) ([]domain.CartLine, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT c.product_id, p.name, p.price, c.quantity, p.main_image_url
		FROM cart_lines c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.product_id
		FOR UPDATE OF c
	`, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var lines []domain.CartLine
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

func (t *txRepository) InsertAddress(ctx context.Context, addr *domain.DeliveryAddress) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO delivery_addresses (id, user_id, city, street, house, apartment, postal_code)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''))
	`, addr.ID, addr.UserID, addr.City, addr.Street, addr.House, addr.Apartment, addr.PostalCode)
	return err
}

func (t *txRepository) InsertOrder(ctx context.Context, order *domain.Order) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, address_id, order_date, total_amount, status, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $4)
	`, order.ID, order.UserID, order.AddressID, order.OrderDate, order.TotalAmount, order.Status)
	if err != nil {
		return err
	}

	for _, item := range order.Items {
		_, err = t.tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, price)
			VALUES ($1, $2, $3, $4)
		`, order.ID, item.ProductID, item.Quantity, item.Price)
		if err != nil {
			return err
		}
	}

	return nil
}

// ClearCart removes the checked-out lines together with any line pointing at
// a product that no longer exists.
func (t *txRepository) ClearCart(ctx context.Context, userID int64, productIDs []int64) error {
	_, err := t.tx.ExecContext(ctx, `
		DELETE FROM cart_lines c
		WHERE c.user_id = $1
		  AND (c.product_id = ANY($2)
		       OR NOT EXISTS (SELECT 1 FROM products p WHERE p.id = c.product_id))
	`, userID, pq.Array(productIDs))
	return err
}

func (t *txRepository) LockOrderStatus(ctx context.Context, id string) (domain.OrderStatus, error) {
	var status domain.OrderStatus
	err := t.tx.QueryRowContext(ctx, `
		SELECT status FROM orders WHERE id = $1 FOR UPDATE
	`, id).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrOrderNotFound
		}
		return "", err
	}
	return status, nil
}

func (t *txRepository) SetOrderStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE orders SET status = $1, updated_at = NOW()
		WHERE id = $2
	`, status, id)
	if err != nil {
		return err
	}

	ok, err := database.AffectedOne(res)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (t *txRepository) DeleteOrder(ctx context.Context, id string) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, id); err != nil {
		return err
	}

	res, err := t.tx.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return err
	}

	ok, err := database.AffectedOne(res)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrOrderNotFound
	}
	return nil
}
