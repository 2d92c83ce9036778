// Package pgtest starts throwaway Postgres and Kafka containers for the
// integration tests. Postgres comes up with the repository migrations applied.
package pgtest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// SetupPostgres starts a migrated database and returns an open pool. The
// container and the pool are released through t.Cleanup.
func SetupPostgres(ctx context.Context, t *testing.T) *sql.DB {
	t.Helper()

	container, err := postgres.Run(ctx,
		"postgres:18-alpine",
		postgres.WithDatabase("storefront"),
		postgres.WithUsername("storefront"),
		postgres.WithPassword("storefront"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	if err := Migrate(connStr); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func Migrate(connStr string) error {
	m, err := migrate.New(migrationsURL(), connStr)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func migrationsURL() string {
	_, filename, _, _ := runtime.Caller(0)
	root := filepath.Join(filepath.Dir(filename), "..", "..")
	return "file://" + filepath.Join(root, "migrations")
}

func SetupKafka(ctx context.Context, t *testing.T) []string {
	t.Helper()

	container, err := kafka.Run(ctx,
		"confluentinc/confluent-local:7.8.0",
		kafka.WithClusterID("storefront-test"),
	)
	if err != nil {
		t.Fatalf("failed to start kafka container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate kafka container: %v", err)
		}
	})

	brokers, err := container.Brokers(ctx)
	if err != nil {
		t.Fatalf("failed to get kafka brokers: %v", err)
	}

	return brokers
}

// Seed holds ids created by SeedShop.
type Seed struct {
	UserID   int64
	Products []int64
}

// SeedShop inserts one customer and two products priced 10.00 and 5.50, with
// a cart of 2 x first product and 1 x second product.
func SeedShop(ctx context.Context, t *testing.T, db *sql.DB) Seed {
	t.Helper()

	var s Seed
	mustExec := func(query string, args ...any) {
		t.Helper()
		if _, err := db.ExecContext(ctx, query, args...); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	if err := db.QueryRowContext(ctx, `
		INSERT INTO users (login, email, phone, password_hash)
		VALUES ('anna', 'anna@example.com', '+375291234567', 'x')
		RETURNING id
	`).Scan(&s.UserID); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	var categoryID int64
	if err := db.QueryRowContext(ctx, `INSERT INTO categories (name) VALUES ('Phones') RETURNING id`).Scan(&categoryID); err != nil {
		t.Fatalf("seed category: %v", err)
	}

	for _, price := range []string{"10.00", "5.50"} {
		var id int64
		if err := db.QueryRowContext(ctx, `
			INSERT INTO products (name, price, quantity_in_stock, category_id)
			VALUES ($1, $2, 10, $3)
			RETURNING id
		`, "product "+price, price, categoryID).Scan(&id); err != nil {
			t.Fatalf("seed product: %v", err)
		}
		s.Products = append(s.Products, id)
	}

	mustExec(`INSERT INTO cart_lines (user_id, product_id, quantity) VALUES ($1, $2, 2), ($1, $3, 1)`,
		s.UserID, s.Products[0], s.Products[1])

	return s
}
