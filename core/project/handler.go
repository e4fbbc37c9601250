package project

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sinahosseinzadeh97/Projects-sub001/api/web"
	"github.com/sinahosseinzadeh97/Projects-sub001/api/weberr"
	"github.com/sinahosseinzadeh97/Projects-sub001/core/claims"
	"github.com/sinahosseinzadeh97/Projects-sub001/validate"
)

func HandleList(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var prjs []Project
		if clm.Role == claims.RoleAdmin {
			prjs, err = FetchAll(ctx, db)
		} else {
			prjs, err = FetchByUser(ctx, db, clm.UserID)
		}
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, prjs, http.StatusOK)
	}
}

func HandleShow(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		prj, err := fetchOwned(ctx, db, web.Param(r, "id"))
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, prj, http.StatusOK)
	}
}

func HandleCreate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var pn ProjectNew
		if err := web.Decode(w, r, &pn); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(pn); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		status := pn.Status
		if status == "" {
			status = Active
		}

		now := time.Now().UTC()
		prj := Project{
			ID:          validate.GenerateID(),
			UserID:      clm.UserID,
			Name:        pn.Name,
			Description: pn.Description,
			Status:      status,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if err := Create(ctx, db, prj); err != nil {
			return err
		}

		return web.Respond(ctx, w, prj, http.StatusCreated)
	}
}

func HandleUpdate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		prj, err := fetchOwned(ctx, db, web.Param(r, "id"))
		if err != nil {
			return err
		}

		var pu ProjectUp
		if err := web.Decode(w, r, &pu); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(pu); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		if pu.Name != nil {
			prj.Name = *pu.Name
		}
		if pu.Description != nil {
			prj.Description = *pu.Description
		}
		if pu.Status != nil {
			prj.Status = *pu.Status
		}
		prj.UpdatedAt = time.Now().UTC()

		if err := Update(ctx, db, prj); err != nil {
			return err
		}

		return web.Respond(ctx, w, prj, http.StatusOK)
	}
}

func HandleDelete(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		prj, err := fetchOwned(ctx, db, web.Param(r, "id"))
		if err != nil {
			return err
		}

		if err := Delete(ctx, db, prj.ID); err != nil {
			return err
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

func HandleStats(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		st, err := FetchStats(ctx, db, clm.UserID)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, st, http.StatusOK)
	}
}

func fetchOwned(ctx context.Context, db *sqlx.DB, id string) (Project, error) {
	clm, err := claims.Get(ctx)
	if err != nil {
		return Project{}, weberr.NotAuthorized(errors.New("user not authenticated"))
	}

	if err := validate.CheckID(id); err != nil {
		return Project{}, weberr.BadRequest(err)
	}

	prj, err := Fetch(ctx, db, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Project{}, weberr.NotFound(err)
		}
		return Project{}, err
	}

	if prj.UserID != clm.UserID && !claims.IsAdmin(ctx) {
		return Project{}, weberr.NotAuthorized(errors.New("project belongs to another user"))
	}

	return prj, nil
}
