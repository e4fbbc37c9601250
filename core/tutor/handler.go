package tutor

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
	"github.com/sinahosseinzadeh97/Projects-sub001/validate"
)

func HandleList(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		subject := r.URL.Query().Get("subject")

		tuts, err := FetchAll(ctx, db, subject)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, tuts, http.StatusOK)
	}
}

func HandleShow(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.BadRequest(err)
		}

		tut, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		return web.Respond(ctx, w, tut, http.StatusOK)
	}
}

// HandleCreate registers the caller as a tutor. A user can hold at most one
// tutor profile.
func HandleCreate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var tn TutorNew
		if err := web.Decode(w, r, &tn); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(tn); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		now := time.Now().UTC()
		tut := Tutor{
			ID:        validate.GenerateID(),
			UserID:    clm.UserID,
			Subject:   tn.Subject,
			Rate:      tn.Rate,
			Bio:       tn.Bio,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := Create(ctx, db, tut); err != nil {
			if errors.Is(err, ErrAlreadyTutor) {
				return weberr.NewError(err, err.Error(), http.StatusConflict)
			}
			return err
		}

		return web.Respond(ctx, w, tut, http.StatusCreated)
	}
}

func HandleListBookings(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		bks, err := FetchBookingsByUser(ctx, db, clm.UserID)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, bks, http.StatusOK)
	}
}

func HandleCreateBooking(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var bn BookingNew
		if err := web.Decode(w, r, &bn); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(bn); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		tut, err := Fetch(ctx, db, bn.TutorID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		if tut.UserID == clm.UserID {
			err := errors.New("tutors cannot book themselves")
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		now := time.Now().UTC()
		bk := Booking{
			ID:        validate.GenerateID(),
			TutorID:   tut.ID,
			StudentID: clm.UserID,
			StartsAt:  bn.StartsAt.UTC(),
			Minutes:   bn.Minutes,
			Status:    BookingPending,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := CreateBooking(ctx, db, bk); err != nil {
			return err
		}

		return web.Respond(ctx, w, bk, http.StatusCreated)
	}
}

// HandleConfirmBooking lets the tutor accept a pending booking, provided the
// slot is still free of confirmed ones.
func HandleConfirmBooking(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.BadRequest(err)
		}

		bk, err := FetchBooking(ctx, db, id)
		if err != nil {
			if errors.Is(err, ErrBookingNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		tut, err := Fetch(ctx, db, bk.TutorID)
		if err != nil {
			return err
		}

		if tut.UserID != clm.UserID {
			return weberr.NotAuthorized(errors.New("only the tutor can confirm a booking"))
		}

		if bk.Status != BookingPending {
			err := fmt.Errorf("booking is %s, only pending bookings can be confirmed", bk.Status)
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		n, err := CountOverlapping(ctx, db, bk.TutorID, bk.StartsAt, bk.Minutes)
		if err != nil {
			return err
		}
		if n > 0 {
			err := errors.New("the slot is already taken by a confirmed booking")
			return weberr.NewError(err, err.Error(), http.StatusConflict)
		}

		if err := UpdateBookingStatus(ctx, db, bk.ID, BookingConfirmed); err != nil {
			return err
		}

		bk.Status = BookingConfirmed
		return web.Respond(ctx, w, bk, http.StatusOK)
	}
}

// HandleCancelBooking lets either side of the booking call it off.
func HandleCancelBooking(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.BadRequest(err)
		}

		bk, err := FetchBooking(ctx, db, id)
		if err != nil {
			if errors.Is(err, ErrBookingNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		tut, err := Fetch(ctx, db, bk.TutorID)
		if err != nil {
			return err
		}

		if bk.StudentID != clm.UserID && tut.UserID != clm.UserID {
			return weberr.NotAuthorized(errors.New("user is not part of the booking"))
		}

		if bk.Status == BookingCancelled {
			return web.Respond(ctx, w, bk, http.StatusOK)
		}

		if err := UpdateBookingStatus(ctx, db, bk.ID, BookingCancelled); err != nil {
			return err
		}

		bk.Status = BookingCancelled
		return web.Respond(ctx, w, bk, http.StatusOK)
	}
}
