package wallet

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sinahosseinzadeh97/Projects-sub001/api/web"
	"github.com/sinahosseinzadeh97/Projects-sub001/api/weberr"
	"github.com/sinahosseinzadeh97/Projects-sub001/core/claims"
	"github.com/sinahosseinzadeh97/Projects-sub001/database"
	"github.com/sinahosseinzadeh97/Projects-sub001/validate"
)

func HandleList(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		wlts, err := FetchByUser(ctx, db, clm.UserID)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, wlts, http.StatusOK)
	}
}

func HandleShow(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		wlt, err := fetchOwned(ctx, db, web.Param(r, "id"))
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, wlt, http.StatusOK)
	}
}

// HandleCreate starts tracking an address for the caller.
func HandleCreate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var wn WalletNew
		if err := web.Decode(w, r, &wn); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(wn); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		now := time.Now().UTC()
		wlt := Wallet{
			ID:        validate.GenerateID(),
			UserID:    clm.UserID,
			Address:   wn.Address,
			Chain:     wn.Chain,
			Label:     wn.Label,
			Balance:   wn.Balance,
			Tier:      Classify([]int64{wn.Balance}),
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := Create(ctx, db, wlt); err != nil {
			if errors.Is(err, ErrUniqueAddress) {
				return weberr.NewError(err, err.Error(), http.StatusConflict)
			}
			return err
		}

		return web.Respond(ctx, w, wlt, http.StatusCreated)
	}
}

func HandleListTransactions(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		wlt, err := fetchOwned(ctx, db, web.Param(r, "id"))
		if err != nil {
			return err
		}

		trs, err := FetchTransactions(ctx, db, wlt.ID, 100)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, trs, http.StatusOK)
	}
}

// HandleCreateTransaction appends a transaction to the wallet and rolls the
// balance forward. The amount is the signed balance delta; the kind is
// metadata for the dashboard. Tier is recomputed from the balances the wallet
// held after each of its recent transactions. The balance is read and written
// under the wallet's row lock so concurrent transactions can't lose updates.
func HandleCreateTransaction(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		wlt, err := fetchOwned(ctx, db, web.Param(r, "id"))
		if err != nil {
			return err
		}

		var tn TransactionNew
		if err := web.Decode(w, r, &tn); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(tn); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		tr := Transaction{
			ID:         validate.GenerateID(),
			WalletID:   wlt.ID,
			Kind:       tn.Kind,
			Amount:     tn.Amount,
			Price:      tn.Price,
			OccurredAt: tn.OccurredAt.UTC(),
			CreatedAt:  time.Now().UTC(),
		}

		err = database.Transaction(db, func(tx sqlx.ExtContext) error {
			wlt, err := FetchLocked(ctx, tx, wlt.ID)
			if err != nil {
				return err
			}

			balance := wlt.Balance + tn.Amount
			if balance < 0 {
				err := errors.New("transaction would make the balance negative")
				return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
			}

			trs, err := FetchTransactions(ctx, tx, wlt.ID, window)
			if err != nil {
				return err
			}

			tier := Classify(append(historyOf(wlt.Balance, trs), balance))

			if err := CreateTransaction(ctx, tx, tr); err != nil {
				return err
			}
			return UpdateBalance(ctx, tx, wlt.ID, balance, tier)
		})
		if err != nil {
			return fmt.Errorf("recording transaction on wallet[%s]: %w", wlt.ID, err)
		}

		return web.Respond(ctx, w, tr, http.StatusCreated)
	}
}

// historyOf rebuilds the balances the wallet held after each of the given
// transactions (newest first), ending at the current balance. Oldest first in
// the result.
func historyOf(balance int64, newestFirst []Transaction) []int64 {
	balances := make([]int64, len(newestFirst))
	b := balance
	for i, tr := range newestFirst {
		balances[len(newestFirst)-1-i] = b
		b -= tr.Amount
	}
	return balances
}

func fetchOwned(ctx context.Context, db *sqlx.DB, id string) (Wallet, error) {
	clm, err := claims.Get(ctx)
	if err != nil {
		return Wallet{}, weberr.NotAuthorized(errors.New("user not authenticated"))
	}

	if err := validate.CheckID(id); err != nil {
		return Wallet{}, weberr.BadRequest(err)
	}

	wlt, err := Fetch(ctx, db, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Wallet{}, weberr.NotFound(err)
		}
		return Wallet{}, err
	}

	if wlt.UserID != clm.UserID && !claims.IsAdmin(ctx) {
		return Wallet{}, weberr.NotAuthorized(errors.New("wallet belongs to another user"))
	}

	return wlt, nil
}
