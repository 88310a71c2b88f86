package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"blockwriter/internal/config"
	"blockwriter/internal/domain"
	"blockwriter/internal/domain/models"
	"blockwriter/internal/domain/repositories"
	"blockwriter/internal/domain/services"
)

const (
	msgFolderNameRequired = "フォルダ名は必須です"
	msgFolderNotFound     = "フォルダが見つかりません"
)

type folderService struct {
	folderRepo repositories.FolderRepository
	docRepo    repositories.DocumentRepository
	txManager  repositories.TransactionManager
	logger     *slog.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(
	folderRepo repositories.FolderRepository,
	docRepo repositories.DocumentRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) services.FolderService {
	return &folderService{
		folderRepo: folderRepo,
		docRepo:    docRepo,
		txManager:  txManager,
		logger:     logger,
	}
}

// CreateFolder creates a new folder
func (s *folderService) CreateFolder(ctx context.Context, req *services.CreateFolderRequest) (*models.Folder, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validateFolderName(req.Name); err != nil {
		return nil, err
	}

	// Normalize empty string to nil for root-level folders (consistent with UPDATE)
	parentID := normalizeID(req.ParentID)
	if parentID != nil {
		parent, err := s.folderRepo.GetByID(ctx, *parentID, req.UserID)
		if err != nil {
			return nil, folderNotFound(err)
		}
		s.logger.Debug("parent folder found",
			"parent_id", parent.ID,
			"parent_name", parent.Name,
		)
	}

	folder := &models.Folder{
		ID:        uuid.New().String(),
		UserID:    req.UserID,
		ParentID:  parentID,
		Name:      req.Name,
		CreatedAt: time.Now(),
	}

	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"user_id", req.UserID,
		"parent_id", folder.ParentID,
	)

	return folder, nil
}

// ListFolders lists the user's folders with document counts
func (s *folderService) ListFolders(ctx context.Context, userID string) ([]models.Folder, error) {
	folders, err := s.folderRepo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	if folders == nil {
		folders = []models.Folder{}
	}
	return folders, nil
}

// UpdateFolder updates a folder (rename or move)
func (s *folderService) UpdateFolder(ctx context.Context, userID, id string, req *services.UpdateFolderRequest) (*models.Folder, error) {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if err := validateFolderName(name); err != nil {
			return nil, err
		}
		req.Name = &name
	}

	folder, err := s.folderRepo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, folderNotFound(err)
	}

	if req.Name != nil {
		folder.Name = *req.Name
	}

	if req.ParentID.Present {
		parentID := normalizeID(req.ParentID.Value)
		if parentID != nil {
			parent, err := s.folderRepo.GetByID(ctx, *parentID, userID)
			if err != nil {
				return nil, folderNotFound(err)
			}

			// Prevent circular references (can't move folder to be a child of itself or its descendants)
			if err := s.validateNoCircularReference(ctx, id, parent.ID, userID); err != nil {
				return nil, err
			}

			folder.ParentID = &parent.ID
			s.logger.Debug("moving folder to new parent",
				"folder_id", id,
				"new_parent_id", parent.ID,
			)
		} else {
			folder.ParentID = nil
			s.logger.Debug("moving folder to root", "folder_id", id)
		}
	}

	if err := s.folderRepo.Update(ctx, folder); err != nil {
		return nil, folderNotFound(err)
	}

	s.logger.Info("folder updated",
		"id", folder.ID,
		"name", folder.Name,
		"parent_id", folder.ParentID,
	)

	return folder, nil
}

// DeleteFolder deletes a folder. Its documents move to the root instead of being deleted.
func (s *folderService) DeleteFolder(ctx context.Context, userID, id string) error {
	folder, err := s.folderRepo.GetByID(ctx, id, userID)
	if err != nil {
		return folderNotFound(err)
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.docRepo.DetachFolder(txCtx, id, userID); err != nil {
			return fmt.Errorf("detach documents: %w", err)
		}
		return s.folderRepo.Delete(txCtx, id, userID)
	})
	if err != nil {
		return folderNotFound(err)
	}

	s.logger.Info("folder deleted",
		"id", id,
		"name", folder.Name,
		"user_id", userID,
	)

	return nil
}

// validateNoCircularReference walks up from newParentID and fails if it reaches folderID
func (s *folderService) validateNoCircularReference(ctx context.Context, folderID, newParentID, userID string) error {
	if folderID == newParentID {
		return fmt.Errorf("%w: cannot move folder into itself", domain.ErrValidation)
	}

	folders, err := s.folderRepo.List(ctx, userID)
	if err != nil {
		return fmt.Errorf("list folders: %w", err)
	}
	parents := make(map[string]*string, len(folders))
	for _, f := range folders {
		parents[f.ID] = f.ParentID
	}

	seen := map[string]bool{}
	current := &newParentID
	for current != nil && !seen[*current] {
		if *current == folderID {
			return fmt.Errorf("%w: cannot move folder into its own subfolder", domain.ErrValidation)
		}
		seen[*current] = true
		current = parents[*current]
	}
	return nil
}

func validateFolderName(name string) error {
	err := validation.Validate(name,
		validation.Required.Error(msgFolderNameRequired),
		validation.RuneLength(1, config.MaxFolderNameLength),
	)
	if err != nil {
		return &domain.ValidationError{Message: err.Error()}
	}
	return nil
}

func folderNotFound(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.NotFoundError{Message: msgFolderNotFound}
	}
	return err
}
