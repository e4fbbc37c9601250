package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Fetch returns the user's cart, creating an empty one on first use.
func Fetch(ctx context.Context, db sqlx.ExtContext, userID string) (Cart, error) {
	const q = `SELECT * FROM carts WHERE user_id = $1`

	var crt Cart
	err := sqlx.GetContext(ctx, db, &crt, q, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return create(ctx, db, userID)
	}
	if err != nil {
		return Cart{}, fmt.Errorf("selecting cart of user[%s]: %w", userID, err)
	}

	return crt, nil
}

func create(ctx context.Context, db sqlx.ExtContext, userID string) (Cart, error) {
	const q = `
	INSERT INTO carts (user_id, created_at, updated_at)
	VALUES (:user_id, :created_at, :updated_at)`

	now := time.Now().UTC()
	crt := Cart{UserID: userID, CreatedAt: now, UpdatedAt: now}

	if _, err := sqlx.NamedExecContext(ctx, db, q, crt); err != nil {
		return Cart{}, fmt.Errorf("inserting cart of user[%s]: %w", userID, err)
	}

	return crt, nil
}

func FetchItems(ctx context.Context, db sqlx.ExtContext, userID string) ([]Item, error) {
	const q = `SELECT * FROM cart_items WHERE user_id = $1 ORDER BY created_at`

	items := []Item{}
	if err := sqlx.SelectContext(ctx, db, &items, q, userID); err != nil {
		return nil, fmt.Errorf("selecting cart items of user[%s]: %w", userID, err)
	}

	return items, nil
}

// UpsertItem adds the item to the cart, summing quantities when the product
// is already there.
func UpsertItem(ctx context.Context, db sqlx.ExtContext, item Item) error {
	const q = `
	INSERT INTO cart_items (user_id, product_id, quantity, created_at, updated_at)
	VALUES (:user_id, :product_id, :quantity, :created_at, :updated_at)
	ON CONFLICT (user_id, product_id) DO UPDATE SET
		quantity = cart_items.quantity + EXCLUDED.quantity,
		updated_at = EXCLUDED.updated_at`

	if _, err := sqlx.NamedExecContext(ctx, db, q, item); err != nil {
		return fmt.Errorf("upserting cart item[%s] of user[%s]: %w", item.ProductID, item.UserID, err)
	}

	return nil
}

func DeleteItem(ctx context.Context, db sqlx.ExtContext, userID string, productID string) error {
	const q = `DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`

	if _, err := db.ExecContext(ctx, q, userID, productID); err != nil {
		return fmt.Errorf("deleting cart item[%s] of user[%s]: %w", productID, userID, err)
	}

	return nil
}

// Delete flushes every item of the user's cart.
func Delete(ctx context.Context, db sqlx.ExtContext, userID string) error {
	const q = `DELETE FROM cart_items WHERE user_id = $1`

	if _, err := db.ExecContext(ctx, q, userID); err != nil {
		return fmt.Errorf("flushing cart of user[%s]: %w", userID, err)
	}

	return nil
}
