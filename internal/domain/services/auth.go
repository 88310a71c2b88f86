package services

import "context"

// ResourceAuthorizer checks if a user can reference resources owned elsewhere in a request,
// e.g. filing a document into a folder.
// Current implementation: ownership-based.
type ResourceAuthorizer interface {
	// CanAccessFolder checks if user owns the folder
	CanAccessFolder(ctx context.Context, userID, folderID string) error
}
