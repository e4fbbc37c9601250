package tutor

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
	ErrNotFound        = errors.New("tutor not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrAlreadyTutor    = errors.New("user already has a tutor profile")
)

const uniqueViolation = "23505"

func Create(ctx context.Context, db sqlx.ExtContext, tut Tutor) error {
	const q = `
	INSERT INTO tutors (tutor_id, user_id, subject, rate, bio, rating, created_at, updated_at)
	VALUES (:tutor_id, :user_id, :subject, :rate, :bio, :rating, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, tut); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrAlreadyTutor
		}
		return fmt.Errorf("inserting tutor: %w", err)
	}

	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (Tutor, error) {
	const q = `SELECT * FROM tutors WHERE tutor_id = $1`

	var tut Tutor
	if err := sqlx.GetContext(ctx, db, &tut, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Tutor{}, ErrNotFound
		}
		return Tutor{}, fmt.Errorf("selecting tutor[%s]: %w", id, err)
	}

	return tut, nil
}

func FetchAll(ctx context.Context, db sqlx.ExtContext, subject string) ([]Tutor, error) {
	const q = `SELECT * FROM tutors WHERE ($1 = '' OR subject = $1) ORDER BY rating DESC, created_at`

	tuts := []Tutor{}
	if err := sqlx.SelectContext(ctx, db, &tuts, q, subject); err != nil {
		return nil, fmt.Errorf("selecting tutors: %w", err)
	}

	return tuts, nil
}

func CreateBooking(ctx context.Context, db sqlx.ExtContext, bk Booking) error {
	const q = `
	INSERT INTO bookings (booking_id, tutor_id, student_id, starts_at, minutes, status, created_at, updated_at)
	VALUES (:booking_id, :tutor_id, :student_id, :starts_at, :minutes, :status, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, bk); err != nil {
		return fmt.Errorf("inserting booking: %w", err)
	}

	return nil
}

func FetchBooking(ctx context.Context, db sqlx.ExtContext, id string) (Booking, error) {
	const q = `SELECT * FROM bookings WHERE booking_id = $1`

	var bk Booking
	if err := sqlx.GetContext(ctx, db, &bk, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Booking{}, ErrBookingNotFound
		}
		return Booking{}, fmt.Errorf("selecting booking[%s]: %w", id, err)
	}

	return bk, nil
}

// FetchBookingsByUser returns bookings the user takes part in, as a student
// or as the tutor.
func FetchBookingsByUser(ctx context.Context, db sqlx.ExtContext, userID string) ([]Booking, error) {
	const q = `
	SELECT b.* FROM bookings AS b
	LEFT JOIN tutors AS t ON t.tutor_id = b.tutor_id
	WHERE b.student_id = $1 OR t.user_id = $1
	ORDER BY b.starts_at`

	bks := []Booking{}
	if err := sqlx.SelectContext(ctx, db, &bks, q, userID); err != nil {
		return nil, fmt.Errorf("selecting bookings of user[%s]: %w", userID, err)
	}

	return bks, nil
}

// CountOverlapping counts confirmed bookings of the tutor whose slot overlaps
// the [startsAt, startsAt+minutes) window.
func CountOverlapping(ctx context.Context, db sqlx.ExtContext, tutorID string, startsAt time.Time, minutes int) (int, error) {
	const q = `
	SELECT COUNT(*) FROM bookings
	WHERE tutor_id = $1
	  AND status = 'confirmed'
	  AND starts_at < $3
	  AND starts_at + make_interval(mins => minutes) > $2`

	var n int
	end := startsAt.Add(time.Duration(minutes) * time.Minute)
	if err := sqlx.GetContext(ctx, db, &n, q, tutorID, startsAt, end); err != nil {
		return 0, fmt.Errorf("counting overlapping bookings of tutor[%s]: %w", tutorID, err)
	}

	return n, nil
}

func UpdateBookingStatus(ctx context.Context, db sqlx.ExtContext, id string, status BookingStatus) error {
	const q = `UPDATE bookings SET status = $2, updated_at = $3 WHERE booking_id = $1`

	if _, err := db.ExecContext(ctx, q, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("updating status of booking[%s]: %w", id, err)
	}

	return nil
}
