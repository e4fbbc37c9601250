package token

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("token not found or expired")

func Create(ctx context.Context, db sqlx.ExtContext, tk Token) error {
	const q = `
	INSERT INTO tokens (token_hash, user_id, scope, expiry)
	VALUES (:token_hash, :user_id, :scope, :expiry)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, tk); err != nil {
		return fmt.Errorf("inserting token: %w", err)
	}

	return nil
}

// Fetch returns the token matching hash and scope, provided it hasn't expired.
func Fetch(ctx context.Context, db sqlx.ExtContext, hash []byte, scope string) (Token, error) {
	const q = `SELECT * FROM tokens WHERE token_hash = $1 AND scope = $2 AND expiry > $3`

	var tk Token
	if err := sqlx.GetContext(ctx, db, &tk, q, hash, scope, time.Now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Token{}, ErrNotFound
		}
		return Token{}, fmt.Errorf("selecting token: %w", err)
	}

	return tk, nil
}

func DeleteByUser(ctx context.Context, db sqlx.ExtContext, userID string, scope string) error {
	const q = `DELETE FROM tokens WHERE user_id = $1 AND scope = $2`

	if _, err := db.ExecContext(ctx, q, userID, scope); err != nil {
		return fmt.Errorf("deleting %s tokens of user[%s]: %w", scope, userID, err)
	}

	return nil
}
