package models

import (
	"time"
)

// WritingMode is the stylistic register used for generation.
type WritingMode string

const (
	WritingModeCasual WritingMode = "casual"
	WritingModeFormal WritingMode = "formal"
)

// Normalize maps anything other than casual to formal.
func (m WritingMode) Normalize() WritingMode {
	if m == WritingModeCasual {
		return WritingModeCasual
	}
	return WritingModeFormal
}

// DocumentType is a finer-grained stylistic category layered on the writing mode.
type DocumentType string

const (
	DocumentTypeFormal        DocumentType = "formal"
	DocumentTypeCasual        DocumentType = "casual"
	DocumentTypeBusinessEmail DocumentType = "business_email"
	DocumentTypeEssay         DocumentType = "essay"
	DocumentTypeReaction      DocumentType = "reaction"
	DocumentTypeEntrySheet    DocumentType = "entry_sheet"
)

// DefaultTargetCharCount is used when a document or request omits a usable target.
const DefaultTargetCharCount = 1000

type Document struct {
	ID              string        `json:"id"`
	UserID          string        `json:"userId"`
	Title           string        `json:"title"`
	TargetCharCount int           `json:"targetCharCount"`
	WritingMode     WritingMode   `json:"writingMode"`
	DocumentType    *DocumentType `json:"documentType"`
	FolderID        *string       `json:"folderId"` // NULL = unfiled
	Blocks          []Block       `json:"blocks"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// DocumentSummary is the list view of a document (no blocks, with a content count).
type DocumentSummary struct {
	ID              string        `json:"id"`
	Title           string        `json:"title"`
	TargetCharCount int           `json:"targetCharCount"`
	WritingMode     WritingMode   `json:"writingMode"`
	DocumentType    *DocumentType `json:"documentType"`
	FolderID        *string       `json:"folderId"`
	CharCount       int           `json:"charCount"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}
