package token

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/jmoiron/sqlx"
	"github.com/sinahosseinzadeh97/Projects-sub001/api/background"
	"github.com/sinahosseinzadeh97/Projects-sub001/api/web"
	"github.com/sinahosseinzadeh97/Projects-sub001/api/weberr"
	"github.com/sinahosseinzadeh97/Projects-sub001/core/auth"
	"github.com/sinahosseinzadeh97/Projects-sub001/core/user"
	"github.com/sinahosseinzadeh97/Projects-sub001/database"
	"github.com/sinahosseinzadeh97/Projects-sub001/random"
	"github.com/sinahosseinzadeh97/Projects-sub001/validate"
	"golang.org/x/crypto/bcrypt"
)

type TokenNew struct {
	Email string `json:"email" validate:"required,email"`
	Scope string `json:"scope" validate:"required,oneof=activation recovery"`
}

type Activation struct {
	Token string `json:"token" validate:"required"`
}

type Recovery struct {
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	PasswordConfirm string `json:"passwordConfirm" validate:"eqfield=Password"`
}

// HandleToken issues a fresh activation or recovery token and mails it out on
// the background group, so a slow SMTP server doesn't hold the request.
func HandleToken(db *sqlx.DB, mailer Mailer, timeout time.Duration, bg *background.Background) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var tn TokenNew
		if err := web.Decode(w, r, &tn); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(tn); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		usr, err := user.FetchByEmail(ctx, db, tn.Email)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		if tn.Scope == ScopeActivation && usr.Active {
			err := errors.New("account is already activated")
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		plain, err := random.StringSecure(26)
		if err != nil {
			return fmt.Errorf("generating token: %w", err)
		}

		tk := Token{
			Hash:   Hash(plain),
			UserID: usr.ID,
			Scope:  tn.Scope,
			Expiry: time.Now().UTC().Add(timeout),
		}

		if err := Create(ctx, db, tk); err != nil {
			return err
		}

		bg.Add(func() error {
			if tn.Scope == ScopeActivation {
				return mailer.SendActivationToken(plain, usr.Email)
			}
			return mailer.SendRecoveryToken(plain, usr.Email)
		})

		return web.Respond(ctx, w, nil, http.StatusAccepted)
	}
}

func HandleActivation(db *sqlx.DB, session *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var act Activation
		if err := web.Decode(w, r, &act); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(act); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		tk, err := Fetch(ctx, db, Hash(act.Token), ScopeActivation)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
			}
			return err
		}

		err = database.Transaction(db, func(tx sqlx.ExtContext) error {
			if err := user.Activate(ctx, tx, tk.UserID); err != nil {
				return err
			}
			return DeleteByUser(ctx, tx, tk.UserID, ScopeActivation)
		})
		if err != nil {
			return fmt.Errorf("activating user[%s]: %w", tk.UserID, err)
		}

		usr, err := user.Fetch(ctx, db, tk.UserID)
		if err != nil {
			return err
		}

		if err := auth.Login(ctx, session, usr.ID, usr.Role); err != nil {
			return err
		}

		return web.Respond(ctx, w, usr, http.StatusOK)
	}
}

func HandleRecovery(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var rec Recovery
		if err := web.Decode(w, r, &rec); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(rec); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		tk, err := Fetch(ctx, db, Hash(rec.Token), ScopeRecovery)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
			}
			return err
		}

		usr, err := user.Fetch(ctx, db, tk.UserID)
		if err != nil {
			return err
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(rec.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		usr.PasswordHash = hash
		usr.UpdatedAt = time.Now().UTC()

		err = database.Transaction(db, func(tx sqlx.ExtContext) error {
			if err := user.Update(ctx, tx, usr); err != nil {
				return err
			}
			return DeleteByUser(ctx, tx, usr.ID, ScopeRecovery)
		})
		if err != nil {
			return fmt.Errorf("resetting password of user[%s]: %w", usr.ID, err)
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}
