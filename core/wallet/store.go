package wallet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrNotFound      = errors.New("wallet not found")
	ErrUniqueAddress = errors.New("address is already tracked")
)

const uniqueViolation = "23505"

func Create(ctx context.Context, db sqlx.ExtContext, wlt Wallet) error {
	const q = `
	INSERT INTO wallets (wallet_id, user_id, address, chain, label, balance, tier, created_at, updated_at)
	VALUES (:wallet_id, :user_id, :address, :chain, :label, :balance, :tier, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, wlt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrUniqueAddress
		}
		return fmt.Errorf("inserting wallet: %w", err)
	}

	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (Wallet, error) {
	const q = `SELECT * FROM wallets WHERE wallet_id = $1`

	var wlt Wallet
	if err := sqlx.GetContext(ctx, db, &wlt, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Wallet{}, ErrNotFound
		}
		return Wallet{}, fmt.Errorf("selecting wallet[%s]: %w", id, err)
	}

	return wlt, nil
}

// FetchLocked selects the wallet holding its row lock until the surrounding
// transaction ends, serializing concurrent balance updates.
func FetchLocked(ctx context.Context, db sqlx.ExtContext, id string) (Wallet, error) {
	const q = `SELECT * FROM wallets WHERE wallet_id = $1 FOR UPDATE`

	var wlt Wallet
	if err := sqlx.GetContext(ctx, db, &wlt, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Wallet{}, ErrNotFound
		}
		return Wallet{}, fmt.Errorf("selecting wallet[%s] for update: %w", id, err)
	}

	return wlt, nil
}

func FetchByUser(ctx context.Context, db sqlx.ExtContext, userID string) ([]Wallet, error) {
	const q = `SELECT * FROM wallets WHERE user_id = $1 ORDER BY created_at`

	wlts := []Wallet{}
	if err := sqlx.SelectContext(ctx, db, &wlts, q, userID); err != nil {
		return nil, fmt.Errorf("selecting wallets of user[%s]: %w", userID, err)
	}

	return wlts, nil
}

func UpdateBalance(ctx context.Context, db sqlx.ExtContext, id string, balance int64, tier Tier) error {
	const q = `UPDATE wallets SET balance = $2, tier = $3, updated_at = $4 WHERE wallet_id = $1`

	if _, err := db.ExecContext(ctx, q, id, balance, tier, time.Now().UTC()); err != nil {
		return fmt.Errorf("updating balance of wallet[%s]: %w", id, err)
	}

	return nil
}

func CreateTransaction(ctx context.Context, db sqlx.ExtContext, tr Transaction) error {
	const q = `
	INSERT INTO wallet_transactions (transaction_id, wallet_id, kind, amount, price, occurred_at, created_at)
	VALUES (:transaction_id, :wallet_id, :kind, :amount, :price, :occurred_at, :created_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, tr); err != nil {
		return fmt.Errorf("inserting transaction: %w", err)
	}

	return nil
}

// FetchTransactions returns the wallet's latest transactions, newest first.
func FetchTransactions(ctx context.Context, db sqlx.ExtContext, walletID string, limit int) ([]Transaction, error) {
	const q = `SELECT * FROM wallet_transactions WHERE wallet_id = $1 ORDER BY occurred_at DESC LIMIT $2`

	trs := []Transaction{}
	if err := sqlx.SelectContext(ctx, db, &trs, q, walletID, limit); err != nil {
		return nil, fmt.Errorf("selecting transactions of wallet[%s]: %w", walletID, err)
	}

	return trs, nil
}
