package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"blockwriter/internal/blocks"
	"blockwriter/internal/config"
	"blockwriter/internal/domain"
	"blockwriter/internal/domain/models"
	"blockwriter/internal/domain/repositories"
	"blockwriter/internal/domain/services"
	"blockwriter/internal/editor"
)

const (
	msgDocumentNotFound = "ドキュメントが見つかりません"
	msgBlockNotFound    = "ブロックが見つかりません"
)

type documentService struct {
	docRepo    repositories.DocumentRepository
	templates  services.TemplateService
	authorizer services.ResourceAuthorizer
	txManager  repositories.TransactionManager
	alloc      *blocks.Allocator
	catalog    *blocks.Catalog
	logger     *slog.Logger
}

// NewDocumentService creates a new document service. Block targets are always
// recomputed with alloc; client-supplied targets are ignored.
func NewDocumentService(
	docRepo repositories.DocumentRepository,
	templates services.TemplateService,
	authorizer services.ResourceAuthorizer,
	txManager repositories.TransactionManager,
	alloc *blocks.Allocator,
	logger *slog.Logger,
) services.DocumentService {
	return &documentService{
		docRepo:    docRepo,
		templates:  templates,
		authorizer: authorizer,
		txManager:  txManager,
		alloc:      alloc,
		catalog:    blocks.Default(),
		logger:     logger,
	}
}

// CreateDocument creates a document populated with the blocks of the requested template
func (s *documentService) CreateDocument(ctx context.Context, req *services.CreateDocumentRequest) (*models.Document, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	folderID := normalizeID(req.FolderID)
	if folderID != nil {
		if err := s.authorizer.CanAccessFolder(ctx, req.UserID, *folderID); err != nil {
			return nil, err
		}
	}

	templateID := blocks.DefaultPresetID
	if req.TemplateID != nil && *req.TemplateID != "" {
		templateID = *req.TemplateID
	}
	tmpl, err := s.templates.GetTemplate(ctx, req.UserID, templateID)
	if err != nil {
		return nil, err
	}

	target := req.TargetCharCount
	if target <= 0 {
		target = models.DefaultTargetCharCount
	}

	now := time.Now()
	doc := &models.Document{
		ID:              uuid.New().String(),
		UserID:          req.UserID,
		Title:           req.Title,
		TargetCharCount: target,
		WritingMode:     req.WritingMode.Normalize(),
		DocumentType:    req.DocumentType,
		FolderID:        folderID,
		Blocks:          s.alloc.FromTemplate(*tmpl, target),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	for i := range doc.Blocks {
		doc.Blocks[i].DocumentID = doc.ID
	}

	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, err
	}

	s.logger.Info("document created",
		"id", doc.ID,
		"user_id", doc.UserID,
		"template_id", tmpl.ID,
		"target_char_count", doc.TargetCharCount,
		"blocks", len(doc.Blocks),
	)

	return doc, nil
}

// GetDocument retrieves a document with its blocks
func (s *documentService) GetDocument(ctx context.Context, userID, documentID string) (*models.Document, error) {
	doc, err := s.docRepo.GetByID(ctx, documentID, userID)
	if err != nil {
		return nil, documentNotFound(err)
	}
	return doc, nil
}

// ListDocuments returns one page of document summaries
func (s *documentService) ListDocuments(ctx context.Context, userID string, req *services.ListDocumentsRequest) (*services.DocumentList, error) {
	if req == nil {
		req = &services.ListDocumentsRequest{}
	}

	limit := req.Limit
	if limit <= 0 {
		limit = config.DefaultDocumentPageSize
	}
	if limit > config.MaxDocumentPageSize {
		limit = config.MaxDocumentPageSize
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	docs, total, err := s.docRepo.List(ctx, userID, repositories.DocumentListOptions{
		FolderID: normalizeID(req.FolderID),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	if docs == nil {
		docs = []models.DocumentSummary{}
	}

	return &services.DocumentList{Documents: docs, Total: total}, nil
}

// UpdateDocument saves metadata and blocks. Targets are re-allocated on every save.
func (s *documentService) UpdateDocument(ctx context.Context, userID, documentID string, req *services.UpdateDocumentRequest) (*models.Document, error) {
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	doc, err := s.GetDocument(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		doc.Title = *req.Title
	}
	if req.TargetCharCount != nil {
		doc.TargetCharCount = *req.TargetCharCount
	}
	if req.WritingMode != nil {
		doc.WritingMode = req.WritingMode.Normalize()
	}
	if req.DocumentType.Present {
		if req.DocumentType.Value == nil || *req.DocumentType.Value == "" {
			doc.DocumentType = nil
		} else {
			dt := models.DocumentType(*req.DocumentType.Value)
			doc.DocumentType = &dt
		}
	}
	if req.FolderID.Present {
		folderID := normalizeID(req.FolderID.Value)
		if folderID != nil {
			if err := s.authorizer.CanAccessFolder(ctx, userID, *folderID); err != nil {
				return nil, err
			}
		}
		doc.FolderID = folderID
	}
	if req.Blocks != nil {
		doc.Blocks = s.blocksFromInput(doc.ID, req.Blocks)
	}

	state := editor.NewWithAllocator(s.alloc).Load(*doc)
	doc.Blocks = state.Document().Blocks
	doc.UpdatedAt = time.Now()

	if err := s.save(ctx, doc); err != nil {
		return nil, err
	}

	s.logger.Info("document updated",
		"id", doc.ID,
		"title", doc.Title,
		"target_char_count", doc.TargetCharCount,
		"blocks", len(doc.Blocks),
	)

	return doc, nil
}

// DeleteDocument deletes a document and its blocks
func (s *documentService) DeleteDocument(ctx context.Context, userID, documentID string) error {
	if err := s.docRepo.Delete(ctx, documentID, userID); err != nil {
		return documentNotFound(err)
	}

	s.logger.Info("document deleted",
		"id", documentID,
		"user_id", userID,
	)

	return nil
}

// AddBlock inserts an empty block and re-allocates targets
func (s *documentService) AddBlock(ctx context.Context, userID, documentID string, req *services.AddBlockRequest) (*models.Document, error) {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Type, validation.Required, validation.By(validBlockType)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	return s.edit(ctx, userID, documentID, func(st editor.State) (editor.State, error) {
		if len(st.Blocks) >= config.MaxBlocksPerDocument {
			return st, fmt.Errorf("%w: a document holds at most %d blocks", domain.ErrValidation, config.MaxBlocksPerDocument)
		}
		return st.AddBlock(req.Type, req.Index), nil
	})
}

// RemoveBlock deletes a block and re-allocates targets
func (s *documentService) RemoveBlock(ctx context.Context, userID, documentID, blockID string) (*models.Document, error) {
	return s.edit(ctx, userID, documentID, func(st editor.State) (editor.State, error) {
		if !hasBlock(st, blockID) {
			return st, &domain.NotFoundError{Message: msgBlockNotFound}
		}
		return st.RemoveBlock(blockID), nil
	})
}

// ReorderBlocks moves a block to another block's slot. Targets travel with their blocks.
func (s *documentService) ReorderBlocks(ctx context.Context, userID, documentID string, req *services.ReorderBlocksRequest) (*models.Document, error) {
	err := validation.ValidateStruct(req,
		validation.Field(&req.ActiveID, validation.Required),
		validation.Field(&req.OverID, validation.Required),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	return s.edit(ctx, userID, documentID, func(st editor.State) (editor.State, error) {
		if !hasBlock(st, req.ActiveID) || !hasBlock(st, req.OverID) {
			return st, &domain.NotFoundError{Message: msgBlockNotFound}
		}
		return st.ReorderBlocks(req.ActiveID, req.OverID), nil
	})
}

// edit loads the document into an editor state, applies fn and saves the resulting blocks
func (s *documentService) edit(ctx context.Context, userID, documentID string, fn func(editor.State) (editor.State, error)) (*models.Document, error) {
	doc, err := s.GetDocument(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}

	state, err := fn(editor.NewWithAllocator(s.alloc).Load(*doc))
	if err != nil {
		return nil, err
	}

	doc.Blocks = state.Document().Blocks
	for i := range doc.Blocks {
		doc.Blocks[i].DocumentID = doc.ID
	}
	doc.UpdatedAt = time.Now()

	if err := s.save(ctx, doc); err != nil {
		return nil, err
	}

	s.logger.Debug("document blocks edited",
		"id", doc.ID,
		"blocks", len(doc.Blocks),
	)

	return doc, nil
}

// save writes metadata and blocks atomically
func (s *documentService) save(ctx context.Context, doc *models.Document) error {
	return s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.docRepo.Update(txCtx, doc); err != nil {
			return documentNotFound(err)
		}
		if err := s.docRepo.ReplaceBlocks(txCtx, doc.ID, doc.Blocks); err != nil {
			return fmt.Errorf("replace blocks: %w", err)
		}
		return nil
	})
}

// blocksFromInput converts client blocks, keeping their ids and filling defaults.
// Missing orders fall back to the position in the request.
func (s *documentService) blocksFromInput(documentID string, in []services.BlockInput) []models.Block {
	out := make([]models.Block, len(in))
	for i, b := range in {
		id := b.ID
		if id == "" {
			id = uuid.New().String()
		}
		label := b.Label
		if label == "" {
			label = s.catalog.Label(b.Type)
		}
		order := i
		if b.Order != nil {
			order = *b.Order
		}
		out[i] = models.Block{
			ID:         id,
			DocumentID: documentID,
			Type:       b.Type,
			Label:      label,
			Content:    b.Content,
			Order:      order,
		}
	}
	return out
}

// validateCreateRequest validates document creation request
func (s *documentService) validateCreateRequest(req *services.CreateDocumentRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Title, validation.RuneLength(0, config.MaxDocumentTitleLength)),
		validation.Field(&req.TargetCharCount, validation.Max(config.MaxTargetCharCount)),
		validation.Field(&req.WritingMode, validation.In(models.WritingModeCasual, models.WritingModeFormal)),
		validation.Field(&req.DocumentType, validation.By(s.validDocumentType)),
	)
}

// validateUpdateRequest validates document save request
func (s *documentService) validateUpdateRequest(req *services.UpdateDocumentRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.NilOrNotEmpty.Error("cannot be blank when provided"),
			validation.RuneLength(0, config.MaxDocumentTitleLength)),
		validation.Field(&req.TargetCharCount, validation.Min(1), validation.Max(config.MaxTargetCharCount)),
		validation.Field(&req.WritingMode, validation.In(models.WritingModeCasual, models.WritingModeFormal)),
		validation.Field(&req.DocumentType, validation.By(func(v interface{}) error {
			o := v.(services.OptionalField)
			if !o.Present || o.Value == nil || *o.Value == "" {
				return nil
			}
			dt := models.DocumentType(*o.Value)
			return s.validDocumentType(&dt)
		})),
		validation.Field(&req.Blocks,
			validation.Length(0, config.MaxBlocksPerDocument),
			validation.Each(validation.By(func(v interface{}) error {
				b := v.(services.BlockInput)
				if err := validBlockType(b.Type); err != nil {
					return err
				}
				if len([]rune(b.Label)) > config.MaxBlockLabelLength {
					return fmt.Errorf("label must be at most %d characters", config.MaxBlockLabelLength)
				}
				return nil
			})),
		),
	)
}

func (s *documentService) validDocumentType(v interface{}) error {
	dt, _ := v.(*models.DocumentType)
	if dt == nil || *dt == "" {
		return nil
	}
	if !s.catalog.ValidDocumentType(*dt) {
		return fmt.Errorf("unknown document type %q", *dt)
	}
	return nil
}

func validBlockType(v interface{}) error {
	t, _ := v.(models.BlockType)
	if !t.Valid() {
		return fmt.Errorf("unknown block type %q", t)
	}
	return nil
}

func hasBlock(st editor.State, id string) bool {
	for _, b := range st.Blocks {
		if b.ID == id {
			return true
		}
	}
	return false
}

// normalizeID maps empty strings to nil so "" and null both mean root
func normalizeID(id *string) *string {
	if id == nil || *id == "" {
		return nil
	}
	return id
}

func documentNotFound(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.NotFoundError{Message: msgDocumentNotFound}
	}
	return err
}
