package auth

import (
	"context"
	"errors"
	"fmt"

	"blockwriter/internal/domain"
	"blockwriter/internal/domain/repositories"
)

// OwnerBasedAuthorizer implements ResourceAuthorizer using ownership checks.
// A user can reference a folder only if they created it.
//
// Repositories already scope reads by owner, so a folder owned by someone
// else surfaces as not found and is reported as forbidden here.
type OwnerBasedAuthorizer struct {
	folderRepo repositories.FolderRepository
}

// NewOwnerBasedAuthorizer creates a new ownership-based authorizer
func NewOwnerBasedAuthorizer(folderRepo repositories.FolderRepository) *OwnerBasedAuthorizer {
	return &OwnerBasedAuthorizer{folderRepo: folderRepo}
}

// CanAccessFolder checks if user owns the folder
func (a *OwnerBasedAuthorizer) CanAccessFolder(ctx context.Context, userID, folderID string) error {
	_, err := a.folderRepo.GetByID(ctx, folderID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("access denied to folder %s: %w", folderID, domain.ErrForbidden)
		}
		return fmt.Errorf("check folder access: %w", err)
	}
	return nil
}
