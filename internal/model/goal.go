package model

import "time"

// Goal is a tracked objective. Goals are served straight from the database
// with no cache in front.
type Goal struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
