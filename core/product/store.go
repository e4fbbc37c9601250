package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrNotFound   = errors.New("product not found")
	ErrOutOfStock = errors.New("product is out of stock")
)

// checkViolation is the pq error code for check constraint failures.
const checkViolation = "23514"

func Create(ctx context.Context, db sqlx.ExtContext, prd Product) error {
	const q = `
	INSERT INTO products (product_id, name, description, brand, category, price, stock, image_url, created_at, updated_at)
	VALUES (:product_id, :name, :description, :brand, :category, :price, :stock, :image_url, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, prd); err != nil {
		return fmt.Errorf("inserting product: %w", err)
	}

	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (Product, error) {
	const q = `SELECT * FROM products WHERE product_id = $1`

	var prd Product
	if err := sqlx.GetContext(ctx, db, &prd, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("selecting product[%s]: %w", id, err)
	}

	return prd, nil
}

func FetchAll(ctx context.Context, db sqlx.ExtContext, category string) ([]Product, error) {
	const q = `SELECT * FROM products WHERE ($1 = '' OR category = $1) ORDER BY created_at DESC`

	prds := []Product{}
	if err := sqlx.SelectContext(ctx, db, &prds, q, category); err != nil {
		return nil, fmt.Errorf("selecting products: %w", err)
	}

	return prds, nil
}

func Update(ctx context.Context, db sqlx.ExtContext, prd Product) error {
	const q = `
	UPDATE products SET
		name = :name,
		description = :description,
		brand = :brand,
		category = :category,
		price = :price,
		stock = :stock,
		image_url = :image_url,
		updated_at = :updated_at,
		version = version + 1
	WHERE product_id = :product_id`

	if _, err := sqlx.NamedExecContext(ctx, db, q, prd); err != nil {
		return fmt.Errorf("updating product[%s]: %w", prd.ID, err)
	}

	return nil
}

// DecrementStock takes qty units off the product's stock. The check
// constraint on the column turns overselling into ErrOutOfStock instead of a
// negative stock.
func DecrementStock(ctx context.Context, db sqlx.ExtContext, id string, qty int) error {
	const q = `UPDATE products SET stock = stock - $2, version = version + 1 WHERE product_id = $1`

	if _, err := db.ExecContext(ctx, q, id, qty); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == checkViolation {
			return ErrOutOfStock
		}
		return fmt.Errorf("decrementing stock of product[%s] by %d: %w", id, qty, err)
	}

	return nil
}
