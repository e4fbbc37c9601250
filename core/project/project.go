package project

import "time"

type Status string

const (
	Active Status = "active"
	Paused Status = "paused"
	Done   Status = "done"
)

type Project struct {
	ID          string    `json:"id" db:"project_id"`
	UserID      string    `json:"-" db:"user_id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Status      Status    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
	Version     int       `json:"-" db:"version"`
}

type ProjectNew struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Status      Status `json:"status" validate:"omitempty,oneof=active paused done"`
}

type ProjectUp struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Status      *Status `json:"status" validate:"omitempty,oneof=active paused done"`
}

// Stats feed the dashboard header: one total plus a per-status breakdown.
type Stats struct {
	Total  int `json:"total" db:"total"`
	Active int `json:"active" db:"active"`
	Paused int `json:"paused" db:"paused"`
	Done   int `json:"done" db:"done"`
}
