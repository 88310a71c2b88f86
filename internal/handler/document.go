package handler

import (
	"log/slog"
	"net/http"

	"blockwriter/internal/domain"
	"blockwriter/internal/domain/models"
	"blockwriter/internal/domain/services"
	"blockwriter/internal/httputil"
)

// DocumentHandler handles document and block HTTP requests
type DocumentHandler struct {
	docService services.DocumentService
	logger     *slog.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(docService services.DocumentService, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		docService: docService,
		logger:     logger,
	}
}

// updateDocumentBody is the PUT payload. documentType and folderId accept null to clear.
type updateDocumentBody struct {
	Title           *string                 `json:"title"`
	TargetCharCount *int                    `json:"targetCharCount"`
	WritingMode     *models.WritingMode     `json:"writingMode"`
	DocumentType    httputil.OptionalString `json:"documentType"`
	FolderID        httputil.OptionalString `json:"folderId"`
	Blocks          []services.BlockInput   `json:"blocks"`
}

// ListDocuments lists the caller's documents
// GET /api/documents?folderId=&limit=&offset=
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	limit, err := httputil.QueryInt(r, "limit", 0)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, domain.CodeValidation, err.Error())
		return
	}
	offset, err := httputil.QueryInt(r, "offset", 0)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, domain.CodeValidation, err.Error())
		return
	}

	list, err := h.docService.ListDocuments(r.Context(), httputil.GetUserID(r), &services.ListDocumentsRequest{
		FolderID: httputil.QueryString(r, "folderId"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, list)
}

// CreateDocument creates a document from a template
// POST /api/documents
func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var req services.CreateDocumentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		respondInvalidBody(w)
		return
	}
	req.UserID = httputil.GetUserID(r)

	doc, err := h.docService.CreateDocument(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, doc)
}

// GetDocument retrieves a document with its blocks
// GET /api/documents/{id}
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Document ID")
	if !ok {
		return
	}

	doc, err := h.docService.GetDocument(r.Context(), httputil.GetUserID(r), id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// UpdateDocument saves metadata and, when present, the full block list
// PUT /api/documents/{id}
func (h *DocumentHandler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Document ID")
	if !ok {
		return
	}

	var body updateDocumentBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		respondInvalidBody(w)
		return
	}

	doc, err := h.docService.UpdateDocument(r.Context(), httputil.GetUserID(r), id, &services.UpdateDocumentRequest{
		Title:           body.Title,
		TargetCharCount: body.TargetCharCount,
		WritingMode:     body.WritingMode,
		DocumentType:    body.DocumentType.Field(),
		FolderID:        body.FolderID.Field(),
		Blocks:          body.Blocks,
	})
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// DeleteDocument deletes a document
// DELETE /api/documents/{id}
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Document ID")
	if !ok {
		return
	}

	if err := h.docService.DeleteDocument(r.Context(), httputil.GetUserID(r), id); err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, successResponse{Success: true})
}

// AddBlock inserts an empty block
// POST /api/documents/{id}/blocks
func (h *DocumentHandler) AddBlock(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Document ID")
	if !ok {
		return
	}

	var req services.AddBlockRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		respondInvalidBody(w)
		return
	}

	doc, err := h.docService.AddBlock(r.Context(), httputil.GetUserID(r), id, &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, doc)
}

// RemoveBlock deletes a block
// DELETE /api/documents/{id}/blocks/{blockId}
func (h *DocumentHandler) RemoveBlock(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Document ID")
	if !ok {
		return
	}
	blockID, ok := PathParam(w, r, "blockId", "Block ID")
	if !ok {
		return
	}

	doc, err := h.docService.RemoveBlock(r.Context(), httputil.GetUserID(r), id, blockID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// ReorderBlocks moves one block onto another's position
// POST /api/documents/{id}/blocks/reorder
func (h *DocumentHandler) ReorderBlocks(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Document ID")
	if !ok {
		return
	}

	var req services.ReorderBlocksRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		respondInvalidBody(w)
		return
	}

	doc, err := h.docService.ReorderBlocks(r.Context(), httputil.GetUserID(r), id, &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}
