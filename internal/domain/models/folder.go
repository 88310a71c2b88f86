package models

import (
	"time"
)

type Folder struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	ParentID      *string   `json:"parentId"` // NULL = root level
	Name          string    `json:"name"`
	DocumentCount int       `json:"documentCount"` // Computed on list, not stored
	CreatedAt     time.Time `json:"createdAt"`
}
