package models

import "time"

// UserProfile combines token identity with the stored academic profile.
type UserProfile struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	University *string   `json:"university"`
	Major      *string   `json:"major"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
