package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/jmoiron/sqlx"
	"github.com/sinahosseinzadeh97/Projects-sub001/api/web"
	"github.com/sinahosseinzadeh97/Projects-sub001/api/weberr"
	"github.com/sinahosseinzadeh97/Projects-sub001/core/claims"
	"github.com/sinahosseinzadeh97/Projects-sub001/core/user"
	"github.com/sinahosseinzadeh97/Projects-sub001/validate"
	"golang.org/x/crypto/bcrypt"
)

type Signup struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	PasswordConfirm string `json:"passwordConfirm" validate:"eqfield=Password"`
}

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func HandleSignup(db *sqlx.DB, session *scs.SessionManager, activationRequired bool) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var su Signup
		if err := web.Decode(w, r, &su); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(su); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(su.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		usr := user.User{
			ID:           validate.GenerateID(),
			Name:         su.Name,
			Email:        su.Email,
			Role:         claims.RoleUser,
			PasswordHash: hash,
			Active:       !activationRequired,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if err := user.Create(ctx, db, usr); err != nil {
			if errors.Is(err, user.ErrUniqueEmail) {
				return weberr.NewError(err, err.Error(), http.StatusConflict)
			}
			return err
		}

		return web.Respond(ctx, w, usr, http.StatusCreated)
	}
}

func HandleLogin(db *sqlx.DB, session *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var cr Credentials
		if err := web.Decode(w, r, &cr); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(cr); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		usr, err := user.FetchByEmail(ctx, db, cr.Email)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				return weberr.NotAuthorized(err)
			}
			return err
		}

		if err := bcrypt.CompareHashAndPassword(usr.PasswordHash, []byte(cr.Password)); err != nil {
			return weberr.NotAuthorized(errors.New("wrong credentials"))
		}

		if !usr.Active {
			err := errors.New("account is not activated yet")
			return weberr.NewError(err, err.Error(), http.StatusForbidden)
		}

		if err := Login(ctx, session, usr.ID, usr.Role); err != nil {
			return err
		}

		return web.Respond(ctx, w, usr, http.StatusOK)
	}
}

func HandleLogout(session *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		if err := session.Destroy(ctx); err != nil {
			return err
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}
