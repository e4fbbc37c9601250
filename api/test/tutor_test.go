package test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/sinahosseinzadeh97/Projects-sub001/core/tutor"
)

type tutorTest struct {
	*TestEnv
}

func TestTutor(t *testing.T) {
	env, err := NewTestEnv(t, "tutor_test")
	if err != nil {
		t.Fatalf("initializing test env: %v", err)
	}

	tt := &tutorTest{env}

	// The admin account doubles as the tutor here, the regular user books it.
	if err := Login(tt.Server, tt.AdminEmail, tt.AdminPass); err != nil {
		t.Fatal(err)
	}

	tut := tt.createTutorOK(t, "math", 2500)
	tt.createTutorConflict(t, "physics", 3000)

	all := tt.listTutorsOK(t, "")
	if len(all) != 1 {
		t.Fatalf("expected 1 tutor, got %d", len(all))
	}
	if n := len(tt.listTutorsOK(t, "chemistry")); n != 0 {
		t.Fatalf("expected no chemistry tutors, got %d", n)
	}

	starts := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second)

	// Tutors can't be their own students.
	tt.createBooking(t, tut.ID, starts, 60, http.StatusUnprocessableEntity)

	if err := Login(tt.Server, tt.UserEmail, tt.UserPass); err != nil {
		t.Fatal(err)
	}

	bk1 := tt.createBookingOK(t, tut.ID, starts, 60)
	if bk1.Status != tutor.BookingPending {
		t.Fatalf("expected a pending booking, got %s", bk1.Status)
	}

	// Same slot, half an hour in: pending is fine, confirming it won't be.
	bk2 := tt.createBookingOK(t, tut.ID, starts.Add(30*time.Minute), 60)

	// Only the tutor can confirm.
	tt.confirmBooking(t, bk1.ID, http.StatusUnauthorized)

	if err := Login(tt.Server, tt.AdminEmail, tt.AdminPass); err != nil {
		t.Fatal(err)
	}

	tt.confirmBooking(t, bk1.ID, http.StatusOK)
	tt.confirmBooking(t, bk2.ID, http.StatusConflict)

	// A confirmed booking can't be confirmed twice.
	tt.confirmBooking(t, bk1.ID, http.StatusUnprocessableEntity)

	if err := Login(tt.Server, tt.UserEmail, tt.UserPass); err != nil {
		t.Fatal(err)
	}

	bk2 = tt.cancelBookingOK(t, bk2.ID)
	if bk2.Status != tutor.BookingCancelled {
		t.Fatalf("expected a cancelled booking, got %s", bk2.Status)
	}

	// Cancelling again is a no-op.
	tt.cancelBookingOK(t, bk2.ID)

	bks := tt.listBookingsOK(t)
	if len(bks) != 2 {
		t.Fatalf("expected 2 bookings, got %d", len(bks))
	}
}

func (tt *tutorTest) createTutorOK(t *testing.T, subject string, rate int) tutor.Tutor {
	b, err := json.Marshal(tutor.TutorNew{Subject: subject, Rate: rate, Bio: "I teach things"})
	if err != nil {
		t.Fatal(err)
	}

	w, err := tt.Client().Post(tt.URL+"/tutors", "application/json", bytes.NewBuffer(b))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusCreated {
		t.Fatalf("can't create tutor: status code %s", w.Status)
	}

	var tut tutor.Tutor
	if err := json.NewDecoder(w.Body).Decode(&tut); err != nil {
		t.Fatal(err)
	}
	return tut
}

func (tt *tutorTest) createTutorConflict(t *testing.T, subject string, rate int) {
	b, err := json.Marshal(tutor.TutorNew{Subject: subject, Rate: rate})
	if err != nil {
		t.Fatal(err)
	}

	w, err := tt.Client().Post(tt.URL+"/tutors", "application/json", bytes.NewBuffer(b))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusConflict {
		t.Fatalf("second tutor profile: expected status %d, got %s", http.StatusConflict, w.Status)
	}
}

func (tt *tutorTest) listTutorsOK(t *testing.T, subject string) []tutor.Tutor {
	url := tt.URL + "/tutors"
	if subject != "" {
		url += "?subject=" + subject
	}

	w, err := tt.Client().Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusOK {
		t.Fatalf("can't list tutors: status code %s", w.Status)
	}

	var tuts []tutor.Tutor
	if err := json.NewDecoder(w.Body).Decode(&tuts); err != nil {
		t.Fatal(err)
	}
	return tuts
}

func (tt *tutorTest) createBooking(t *testing.T, tutorID string, starts time.Time, minutes int, want int) *tutor.Booking {
	b, err := json.Marshal(tutor.BookingNew{TutorID: tutorID, StartsAt: starts, Minutes: minutes})
	if err != nil {
		t.Fatal(err)
	}

	w, err := tt.Client().Post(tt.URL+"/bookings", "application/json", bytes.NewBuffer(b))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if w.StatusCode != want {
		t.Fatalf("booking creation: expected status %d, got %s", want, w.Status)
	}

	if want != http.StatusCreated {
		return nil
	}

	var bk tutor.Booking
	if err := json.NewDecoder(w.Body).Decode(&bk); err != nil {
		t.Fatal(err)
	}
	return &bk
}

func (tt *tutorTest) createBookingOK(t *testing.T, tutorID string, starts time.Time, minutes int) tutor.Booking {
	return *tt.createBooking(t, tutorID, starts, minutes, http.StatusCreated)
}

func (tt *tutorTest) listBookingsOK(t *testing.T) []tutor.Booking {
	w, err := tt.Client().Get(tt.URL + "/bookings")
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusOK {
		t.Fatalf("can't list bookings: status code %s", w.Status)
	}

	var bks []tutor.Booking
	if err := json.NewDecoder(w.Body).Decode(&bks); err != nil {
		t.Fatal(err)
	}
	return bks
}

func (tt *tutorTest) confirmBooking(t *testing.T, id string, want int) {
	r, err := http.NewRequest(http.MethodPut, tt.URL+"/bookings/"+id+"/confirm", nil)
	if err != nil {
		t.Fatal(err)
	}

	w, err := tt.Client().Do(r)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if w.StatusCode != want {
		t.Fatalf("booking confirmation: expected status %d, got %s", want, w.Status)
	}
}

func (tt *tutorTest) cancelBookingOK(t *testing.T, id string) tutor.Booking {
	r, err := http.NewRequest(http.MethodPut, tt.URL+"/bookings/"+id+"/cancel", nil)
	if err != nil {
		t.Fatal(err)
	}

	w, err := tt.Client().Do(r)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusOK {
		t.Fatalf("can't cancel booking: status code %s", w.Status)
	}

	var bk tutor.Booking
	if err := json.NewDecoder(w.Body).Decode(&bk); err != nil {
		t.Fatal(err)
	}
	return bk
}
