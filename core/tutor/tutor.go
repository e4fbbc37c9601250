package tutor

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

type Tutor struct {
	ID        string    `json:"id" db:"tutor_id"`
	UserID    string    `json:"userId" db:"user_id"`
	Subject   string    `json:"subject" db:"subject"`
	Rate      int       `json:"rate" db:"rate"`
	Bio       string    `json:"bio" db:"bio"`
	Rating    float64   `json:"rating" db:"rating"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
	Version   int       `json:"-" db:"version"`
}

type TutorNew struct {
	Subject string `json:"subject" validate:"required"`
	Rate    int    `json:"rate" validate:"required,gte=0,lte=100000"`
	Bio     string `json:"bio"`
}

type Booking struct {
	ID        string        `json:"id" db:"booking_id"`
	TutorID   string        `json:"tutorId" db:"tutor_id"`
	StudentID string        `json:"studentId" db:"student_id"`
	StartsAt  time.Time     `json:"startsAt" db:"starts_at"`
	Minutes   int           `json:"minutes" db:"minutes"`
	Status    BookingStatus `json:"status" db:"status"`
	CreatedAt time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time     `json:"updatedAt" db:"updated_at"`
}

type BookingNew struct {
	TutorID  string    `json:"tutorId" validate:"required,uuid4"`
	StartsAt time.Time `json:"startsAt" validate:"required"`
	Minutes  int       `json:"minutes" validate:"required,gt=0,lte=480"`
}
