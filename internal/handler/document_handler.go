// Package handler provides HTTP handlers for the API.
package handler

import (
	"errors"
	"io"
	"net/http"

	"edu-document-pipeline/internal/domain"
	"edu-document-pipeline/internal/service"

	"github.com/gorilla/mux"
)

// DocumentHandler handles document-related HTTP requests
type DocumentHandler struct {
	upload       *service.UploadService
	documents    domain.DocumentRepository
	textBlocks   domain.TextBlockRepository
	imageBlocks  domain.ImageBlockRepository
	correlations domain.CorrelationRepository
	logs         domain.ProcessingLogRepository
	logger       domain.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(
	upload *service.UploadService,
	documents domain.DocumentRepository,
	textBlocks domain.TextBlockRepository,
	imageBlocks domain.ImageBlockRepository,
	correlations domain.CorrelationRepository,
	logs domain.ProcessingLogRepository,
	logger domain.Logger,
) *DocumentHandler {
	return &DocumentHandler{
		upload:       upload,
		documents:    documents,
		textBlocks:   textBlocks,
		imageBlocks:  imageBlocks,
		correlations: correlations,
		logs:         logs,
		logger:       logger,
	}
}

// UploadDocument handles multipart document upload.
func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	user, ok := GetUserFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "User not found in context")
		return
	}
	token, ok := GetTokenFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Token not found in context")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "File is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	req := service.UploadRequest{
		UserID:       user.ID,
		OriginalName: header.Filename,
		DeclaredMIME: header.Header.Get("Content-Type"),
		GradeLevel:   r.FormValue("grade_level"),
		Subject:      r.FormValue("subject"),
		ContentType:  domain.ContentType(r.FormValue("content_type")),
		Language:     domain.Language(r.FormValue("language")),
		Data:         data,
	}

	doc, err := h.upload.Upload(r.Context(), req, token)
	if err != nil {
		h.logger.Error("Upload failed", err, "user_id", user.ID, "filename", header.Filename)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, doc)
}

// GetDocuments lists the authenticated user's documents.
func (h *DocumentHandler) GetDocuments(w http.ResponseWriter, r *http.Request) {
	user, ok := GetUserFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "User not found in context")
		return
	}
	token, ok := GetTokenFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Token not found in context")
		return
	}

	documents, err := h.documents.GetByUserID(user.ID, token)
	if err != nil {
		h.logger.Error("Failed to list documents", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "Failed to list documents")
		return
	}

	// Ensure JSON is [] not null when there are no documents.
	if documents == nil {
		documents = make([]*domain.Document, 0)
	}
	writeJSON(w, http.StatusOK, documents)
}

// GetDocument returns a single document owned by the caller.
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, _, ok := h.ownedDocument(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// GetBlocks returns a document's extracted text blocks in reading order.
func (h *DocumentHandler) GetBlocks(w http.ResponseWriter, r *http.Request) {
	doc, token, ok := h.ownedDocument(w, r)
	if !ok {
		return
	}

	blocks, err := h.textBlocks.GetByDocumentID(doc.ID, token)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch text blocks")
		return
	}
	if blocks == nil {
		blocks = make([]*domain.TextBlock, 0)
	}
	writeJSON(w, http.StatusOK, blocks)
}

// GetImages returns a document's extracted image blocks.
func (h *DocumentHandler) GetImages(w http.ResponseWriter, r *http.Request) {
	doc, token, ok := h.ownedDocument(w, r)
	if !ok {
		return
	}

	images, err := h.imageBlocks.GetByDocumentID(doc.ID, token)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch image blocks")
		return
	}
	if images == nil {
		images = make([]*domain.ImageBlock, 0)
	}
	writeJSON(w, http.StatusOK, images)
}

// GetCorrelations returns a document's text-image correlations.
func (h *DocumentHandler) GetCorrelations(w http.ResponseWriter, r *http.Request) {
	doc, token, ok := h.ownedDocument(w, r)
	if !ok {
		return
	}

	correlations, err := h.correlations.GetByDocumentID(doc.ID, token)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch correlations")
		return
	}
	if correlations == nil {
		correlations = make([]*domain.Correlation, 0)
	}
	writeJSON(w, http.StatusOK, correlations)
}

// GetLogs returns a document's processing audit trail.
func (h *DocumentHandler) GetLogs(w http.ResponseWriter, r *http.Request) {
	doc, token, ok := h.ownedDocument(w, r)
	if !ok {
		return
	}

	entries, err := h.logs.GetByDocumentID(doc.ID, token)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch processing logs")
		return
	}
	if entries == nil {
		entries = make([]*domain.ProcessingLogEntry, 0)
	}
	writeJSON(w, http.StatusOK, entries)
}

// ownedDocument loads the path document and enforces ownership. On failure it
// has already written the error response.
func (h *DocumentHandler) ownedDocument(w http.ResponseWriter, r *http.Request) (*domain.Document, string, bool) {
	user, ok := GetUserFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "User not found in context")
		return nil, "", false
	}
	token, ok := GetTokenFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Token not found in context")
		return nil, "", false
	}

	documentID := mux.Vars(r)["id"]
	if documentID == "" {
		writeError(w, http.StatusBadRequest, "Document ID is required")
		return nil, "", false
	}

	doc, err := h.documents.GetByID(documentID, token)
	if err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			writeError(w, http.StatusNotFound, "Document not found")
			return nil, "", false
		}
		writeServiceError(w, err)
		return nil, "", false
	}
	if doc.UserID != user.ID {
		writeError(w, http.StatusForbidden, "Access denied")
		return nil, "", false
	}
	return doc, token, true
}
