package catalog

import (
	"context"
	"database/sql"
	"errors"

	"github.com/joao-fontenele/storefront/internal/database"
	"github.com/joao-fontenele/storefront/internal/domain"
)

type CatalogRepository struct {
	db *sql.DB
}

func NewCatalogRepository(db *sql.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

const productColumns = `
	p.id, p.name, p.description, p.price, p.quantity_in_stock,
	p.category_id, c.name, p.main_image_url
`

func scanProduct(row interface{ Scan(...any) error }, p *domain.Product) error {
	return row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.QuantityInStock,
		&p.CategoryID, &p.CategoryName, &p.MainImageURL)
}

func (r *CatalogRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products p
		JOIN categories c ON c.id = p.category_id
		ORDER BY p.id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	products := []domain.Product{}
	for rows.Next() {
		var p domain.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}

func (r *CatalogRepository) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	p := &domain.Product{}

	err := scanProduct(r.db.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1
	`, id), p)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}

	return p, nil
}

func (r *CatalogRepository) CreateProduct(ctx context.Context, p *domain.Product) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO products (name, description, price, quantity_in_stock, category_id, main_image_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, p.Name, p.Description, p.Price, p.QuantityInStock, p.CategoryID, p.MainImageURL).Scan(&p.ID)
	if database.IsForeignKeyViolation(err) {
		return domain.Invalid("category does not exist")
	}
	return err
}

func (r *CatalogRepository) UpdateProduct(ctx context.Context, p *domain.Product) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET name = $2, description = $3, price = $4, quantity_in_stock = $5,
		    category_id = $6, main_image_url = $7
		WHERE id = $1
	`, p.ID, p.Name, p.Description, p.Price, p.QuantityInStock, p.CategoryID, p.MainImageURL)
	if database.IsForeignKeyViolation(err) {
		return domain.Invalid("category does not exist")
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

// DeleteProduct removes the catalog row only. Cart lines and order items keep
// the bare product id.
func (r *CatalogRepository) DeleteProduct(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
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

func (r *CatalogRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name
		FROM categories
		ORDER BY id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	categories := []domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return categories, nil
}

func (r *CatalogRepository) CreateCategory(ctx context.Context, c *domain.Category) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO categories (name) VALUES ($1) RETURNING id
	`, c.Name).Scan(&c.ID)
	if database.IsUniqueViolation(err) {
		return domain.Invalid("category already exists")
	}
	return err
}

func (r *CatalogRepository) UpdateCategory(ctx context.Context, c *domain.Category) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE categories SET name = $2 WHERE id = $1
	`, c.ID, c.Name)
	if database.IsUniqueViolation(err) {
		return domain.Invalid("category already exists")
	}
	if err != nil {
		return err
	}

	ok, err := database.AffectedOne(res)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrCategoryNotFound
	}
	return nil
}

// DeleteCategory refuses to remove a category that products still reference.
func (r *CatalogRepository) DeleteCategory(ctx context.Context, id int64) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var inUse bool
		if err := tx.QueryRowContext(ctx, `
			SELECT EXISTS (SELECT 1 FROM products WHERE category_id = $1)
		`, id).Scan(&inUse); err != nil {
			return err
		}
		if inUse {
			return domain.ErrCategoryInUse
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
		if database.IsForeignKeyViolation(err) {
			return domain.ErrCategoryInUse
		}
		if err != nil {
			return err
		}

		ok, err := database.AffectedOne(res)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrCategoryNotFound
		}
		return nil
	})
}
