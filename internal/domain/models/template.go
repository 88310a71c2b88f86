package models

import "time"

// TemplateBlock describes one block a template creates.
type TemplateBlock struct {
	Type  BlockType `json:"type" yaml:"type"`
	Label string    `json:"label" yaml:"label"`
	Ratio float64   `json:"ratio" yaml:"ratio"`
}

// Template is a reusable block structure. Presets have no owner and are read-only.
type Template struct {
	ID          string          `json:"id"`
	UserID      *string         `json:"userId"`
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Blocks      []TemplateBlock `json:"blocks"`
	IsPreset    bool            `json:"isPreset"`
	CreatedAt   *time.Time      `json:"createdAt"`
}
