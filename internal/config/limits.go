package config

const (
	// MaxDocumentTitleLength is the maximum length for document titles.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxDocumentTitleLength = 255

	// MaxFolderNameLength is the maximum length for folder names.
	// Same as document titles for consistency.
	MaxFolderNameLength = 255

	// MaxTemplateNameLength is the maximum length for template names.
	MaxTemplateNameLength = 255

	// MaxExperienceTitleLength is the maximum length for experience titles.
	MaxExperienceTitleLength = 255

	// MaxBlockLabelLength is the maximum length for a block heading.
	MaxBlockLabelLength = 100

	// MaxBlocksPerDocument caps the number of blocks in one document or template.
	MaxBlocksPerDocument = 50

	// MaxTargetCharCount is the largest accepted document length target.
	MaxTargetCharCount = 20000

	// DefaultDocumentPageSize and MaxDocumentPageSize bound GET /api/documents.
	DefaultDocumentPageSize = 20
	MaxDocumentPageSize     = 100
)
