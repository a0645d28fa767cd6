package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"edu-document-pipeline/internal/domain"
	apperrors "edu-document-pipeline/pkg/errors"

	"github.com/google/uuid"
)

var pdfMagic = []byte("%PDF-")

var unsafePathChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// UploadRequest carries the declared metadata for a new document upload.
type UploadRequest struct {
	UserID       string
	OriginalName string
	DeclaredMIME string
	GradeLevel   string
	Subject      string
	ContentType  domain.ContentType
	Language     domain.Language
	Data         []byte
}

// UploadService validates incoming files and creates pending documents.
// Everything here runs before the pipeline is ever invoked: bad MIME types,
// files outside the size band and duplicate content are rejected at this
// boundary.
type UploadService struct {
	documents domain.DocumentRepository
	storage   domain.StorageService
	logger    domain.Logger
	config    domain.Config
}

// NewUploadService creates an upload service.
func NewUploadService(documents domain.DocumentRepository, storage domain.StorageService, logger domain.Logger, config domain.Config) *UploadService {
	return &UploadService{
		documents: documents,
		storage:   storage,
		logger:    logger,
		config:    config,
	}
}

// Upload validates the file, stores the raw bytes and creates the pending
// document row. The returned document has status pending; processing is a
// separate call.
func (s *UploadService) Upload(ctx context.Context, req UploadRequest, token string) (*domain.Document, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	hash := sha256.Sum256(req.Data)
	contentHash := hex.EncodeToString(hash[:])

	// Content-addressed de-duplication per user.
	if existing, err := s.documents.GetByContentHash(req.UserID, contentHash, token); err == nil && existing != nil {
		return nil, apperrors.NewConflictError("document already uploaded", existing.ID)
	}

	path := fmt.Sprintf("%s/%d-%s", sanitizeSegment(req.GradeLevel), time.Now().Unix(), sanitizeFilename(req.OriginalName))

	locator, err := s.storage.Upload(ctx, s.config.GetDocumentBucket(), path, req.Data, "application/pdf")
	if err != nil {
		return nil, apperrors.NewStorageError("failed to store uploaded file", err)
	}

	now := time.Now().UTC()
	doc := &domain.Document{
		ID:               uuid.New().String(),
		UserID:           req.UserID,
		Title:            titleFromFilename(req.OriginalName),
		OriginalName:     req.OriginalName,
		FilePath:         locator,
		FileSize:         int64(len(req.Data)),
		ContentHash:      contentHash,
		GradeLevel:       req.GradeLevel,
		Subject:          req.Subject,
		ContentType:      req.ContentType,
		PrimaryLanguage:  req.Language,
		ProcessingStatus: domain.StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if doc.PrimaryLanguage == "" {
		doc.PrimaryLanguage = domain.LanguagePending
	}
	if doc.ContentType == "" {
		doc.ContentType = domain.ContentTypeLesson
	}

	if err := s.documents.Create(doc, token); err != nil {
		// Roll back the stored object so no unreachable file lingers.
		if delErr := s.storage.Delete(ctx, s.config.GetDocumentBucket(), path); delErr != nil {
			s.logger.Error("Compensating delete of uploaded file failed", delErr, "path", path)
		}
		return nil, apperrors.NewInternalError("failed to create document", err)
	}

	s.logger.Info("Document uploaded", "doc_id", doc.ID, "user_id", req.UserID, "size", doc.FileSize)
	return doc, nil
}

func (s *UploadService) validate(req UploadRequest) error {
	size := int64(len(req.Data))
	if size < s.config.GetMinFileSize() {
		return apperrors.NewValidationError("file is too small", domain.ErrFileTooSmall.Error())
	}
	if size > s.config.GetMaxFileSize() {
		return apperrors.NewValidationError("file is too large", domain.ErrFileTooLarge.Error())
	}

	if req.DeclaredMIME != "" && req.DeclaredMIME != "application/pdf" {
		return apperrors.NewValidationError("only PDF uploads are accepted", req.DeclaredMIME)
	}
	if !bytes.HasPrefix(req.Data, pdfMagic) {
		return apperrors.NewValidationError("file does not look like a PDF")
	}
	return nil
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = unsafePathChars.ReplaceAllString(name, "_")
	if name == "" || name == "." {
		name = "document.pdf"
	}
	return name
}

func sanitizeSegment(segment string) string {
	segment = unsafePathChars.ReplaceAllString(strings.TrimSpace(segment), "-")
	if segment == "" {
		segment = "general"
	}
	return strings.ToLower(segment)
}

func titleFromFilename(name string) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.ReplaceAll(base, "_", " ")
	base = strings.ReplaceAll(base, "-", " ")
	return strings.TrimSpace(base)
}
