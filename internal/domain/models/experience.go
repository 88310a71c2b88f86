package models

import "time"

// ExperienceSource records how an experience entered the repository.
type ExperienceSource string

const (
	ExperienceSourceManual ExperienceSource = "manual"
	ExperienceSourceAuto   ExperienceSource = "auto"
)

// Experience is a user-owned knowledge snippet used as context for hints.
// Auto-sourced experiences cannot be edited or deleted through the API.
type Experience struct {
	ID         string           `json:"id"`
	UserID     string           `json:"userId"`
	Title      string           `json:"title"`
	Content    string           `json:"content"`
	Category   *string          `json:"category"`
	Source     ExperienceSource `json:"source"`
	DocumentID *string          `json:"documentId"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

// ExperienceFilter narrows an experience listing. Empty fields are ignored.
type ExperienceFilter struct {
	Source   ExperienceSource
	Category string
}
