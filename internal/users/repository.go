package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/joao-fontenele/storefront/internal/database"
	"github.com/joao-fontenele/storefront/internal/domain"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (login, email, phone, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, u.Login, u.Email, u.Phone, u.PasswordHash, u.Role).Scan(&u.ID)
	if database.IsUniqueViolation(err) {
		return domain.ErrDuplicateUser
	}
	return err
}

const userColumns = `id, login, email, phone, role, password_hash`

func scanUser(row interface{ Scan(...any) error }, u *domain.User) error {
	return row.Scan(&u.ID, &u.Login, &u.Email, &u.Phone, &u.Role, &u.PasswordHash)
}

func (r *UserRepository) GetByLogin(ctx context.Context, login string) (*domain.User, error) {
	u := &domain.User{}
	err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE login = $1`, login), u)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	u := &domain.User{}
	err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id), u)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	users := []domain.User{}
	for rows.Next() {
		var u domain.User
		if err := scanUser(rows, &u); err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

// Update writes only the fields set in patch.
func (r *UserRepository) Update(ctx context.Context, id int64, patch domain.UserPatch) error {
	var (
		sets []string
		args = []any{id}
	)
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.Login != nil {
		set("login", *patch.Login)
	}
	if patch.Email != nil {
		set("email", *patch.Email)
	}
	if patch.Phone != nil {
		set("phone", *patch.Phone)
	}
	if patch.Role != nil {
		set("role", string(*patch.Role))
	}
	if patch.PasswordHash != nil {
		set("password_hash", *patch.PasswordHash)
	}
	if len(sets) == 0 {
		return domain.Invalid("nothing to update")
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = $1`, args...)
	if database.IsUniqueViolation(err) {
		return domain.ErrDuplicateUser
	}
	if err != nil {
		return err
	}

	ok, err := database.AffectedOne(res)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrUserNotFound
	}
	return nil
}

// Delete removes the user together with their cart, orders, order items and
// delivery addresses. The user row is locked first so a concurrent checkout
// either commits before the cascade or sees the user gone.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var locked int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrUserNotFound
		}
		if err != nil {
			return err
		}

		steps := []string{
			`DELETE FROM cart_lines WHERE user_id = $1`,
			`DELETE FROM order_items WHERE order_id IN (SELECT id FROM orders WHERE user_id = $1)`,
			`DELETE FROM orders WHERE user_id = $1`,
			`DELETE FROM delivery_addresses WHERE user_id = $1`,
		}
		for _, q := range steps {
			if _, err := tx.ExecContext(ctx, q, id); err != nil {
				return err
			}
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return err
		}
		ok, err := database.AffectedOne(res)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrUserNotFound
		}
		return nil
	})
}
