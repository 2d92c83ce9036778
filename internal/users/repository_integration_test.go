//go:build integration

package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-fontenele/storefront/internal/domain"
	"github.com/joao-fontenele/storefront/internal/pgtest"
)

func TestUserRepository(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db := pgtest.SetupPostgres(ctx, t)
	repo := NewUserRepository(db)

	user := &domain.User{Login: "bob", Email: "bob@example.com", Phone: "1", Role: domain.RoleUser, PasswordHash: "h"}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotZero(t, user.ID)

	dup := &domain.User{Login: "bob", Email: "other@example.com", Phone: "2", Role: domain.RoleUser, PasswordHash: "h"}
	assert.ErrorIs(t, repo.Create(ctx, dup), domain.ErrDuplicateUser)

	got, err := repo.GetByLogin(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "h", got.PasswordHash)

	admin := domain.RoleAdmin
	phone := "+375290000000"
	require.NoError(t, repo.Update(ctx, user.ID, domain.UserPatch{Role: &admin, Phone: &phone}))
	got, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, got.Role)
	assert.Equal(t, phone, got.Phone)

	assert.ErrorIs(t, repo.Update(ctx, 999, domain.UserPatch{Phone: &phone}), domain.ErrUserNotFound)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUserRepository_DeleteCascades(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db := pgtest.SetupPostgres(ctx, t)
	seed := pgtest.SeedShop(ctx, t, db)
	repo := NewUserRepository(db)

	_, err := db.ExecContext(ctx, `
		INSERT INTO delivery_addresses (id, user_id, city, street, house)
		VALUES ('11111111-1111-4111-8111-111111111111', $1, 'Minsk', 'Lenina', '5')
	`, seed.UserID)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, address_id, total_amount)
		VALUES ('22222222-2222-4222-8222-222222222222', $1, '11111111-1111-4111-8111-111111111111', 10)
	`, seed.UserID)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `
		INSERT INTO order_items (order_id, product_id, quantity, price)
		VALUES ('22222222-2222-4222-8222-222222222222', $1, 1, 10)
	`, seed.Products[0])
	require.NoError(t, err)

	assert.ErrorIs(t, repo.Delete(ctx, seed.UserID+100), domain.ErrUserNotFound)

	require.NoError(t, repo.Delete(ctx, seed.UserID))

	for _, table := range []string{"users", "cart_lines", "orders", "order_items", "delivery_addresses"} {
		var n int
		require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n))
		assert.Zero(t, n, table)
	}
}

func TestUserRepository_DeleteWaitsForCheckout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db := pgtest.SetupPostgres(ctx, t)
	seed := pgtest.SeedShop(ctx, t, db)
	repo := NewUserRepository(db)

	checkout, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer func() { _ = checkout.Rollback() }()

	_, err = checkout.ExecContext(ctx, `SELECT email FROM users WHERE id = $1 FOR UPDATE`, seed.UserID)
	require.NoError(t, err)

	deleted := make(chan error, 1)
	go func() { deleted <- repo.Delete(ctx, seed.UserID) }()

	// Delete must still be waiting on the user row.
	time.Sleep(300 * time.Millisecond)
	select {
	case err := <-deleted:
		t.Fatalf("delete finished while checkout held the user lock: %v", err)
	default:
	}

	_, err = checkout.ExecContext(ctx, `
		INSERT INTO delivery_addresses (id, user_id, city, street, house)
		VALUES ('33333333-3333-4333-8333-333333333333', $1, 'Minsk', 'Lenina', '5')
	`, seed.UserID)
	require.NoError(t, err)
	_, err = checkout.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, address_id, total_amount)
		VALUES ('44444444-4444-4444-8444-444444444444', $1, '33333333-3333-4333-8333-333333333333', 25.50)
	`, seed.UserID)
	require.NoError(t, err)
	require.NoError(t, checkout.Commit())

	require.NoError(t, <-deleted)

	for _, table := range []string{"users", "orders", "delivery_addresses"} {
		var n int
		require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n))
		assert.Zero(t, n, table)
	}
}
