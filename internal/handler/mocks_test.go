package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"edu-document-pipeline/internal/domain"
)

// Mock implementations shared by the handler package tests.

type mockAuthService struct {
	users map[string]*domain.SupabaseUser
}

func newMockAuthService() *mockAuthService {
	return &mockAuthService{users: make(map[string]*domain.SupabaseUser)}
}

func (m *mockAuthService) ValidateToken(token string) (*domain.SupabaseUser, error) {
	if user, ok := m.users[token]; ok {
		return user, nil
	}
	return nil, errors.New("invalid token")
}

type mockDocumentRepository struct {
	documents map[string]*domain.Document
}

func newMockDocumentRepository() *mockDocumentRepository {
	return &mockDocumentRepository{documents: make(map[string]*domain.Document)}
}

func (m *mockDocumentRepository) Create(document *domain.Document, token string) error {
	m.documents[document.ID] = document
	return nil
}

func (m *mockDocumentRepository) GetByID(id string, token string) (*domain.Document, error) {
	if doc, ok := m.documents[id]; ok {
		return doc, nil
	}
	return nil, domain.ErrDocumentNotFound
}

func (m *mockDocumentRepository) GetByUserID(userID string, token string) ([]*domain.Document, error) {
	var docs []*domain.Document
	for _, doc := range m.documents {
		if doc.UserID == userID {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func (m *mockDocumentRepository) GetByContentHash(userID, hash string, token string) (*domain.Document, error) {
	for _, doc := range m.documents {
		if doc.UserID == userID && doc.ContentHash == hash {
			return doc, nil
		}
	}
	return nil, domain.ErrDocumentNotFound
}

func (m *mockDocumentRepository) Update(id string, update *domain.DocumentUpdate, token string) error {
	if _, ok := m.documents[id]; !ok {
		return domain.ErrDocumentNotFound
	}
	return nil
}

type mockTextBlockRepository struct {
	blocks map[string][]*domain.TextBlock
}

func newMockTextBlockRepository() *mockTextBlockRepository {
	return &mockTextBlockRepository{blocks: make(map[string][]*domain.TextBlock)}
}

func (m *mockTextBlockRepository) InsertMany(blocks []*domain.TextBlock, token string) error {
	if len(blocks) == 0 {
		return nil
	}
	m.blocks[blocks[0].DocumentID] = append(m.blocks[blocks[0].DocumentID], blocks...)
	return nil
}

func (m *mockTextBlockRepository) GetByDocumentID(documentID string, token string) ([]*domain.TextBlock, error) {
	return m.blocks[documentID], nil
}

func (m *mockTextBlockRepository) UpdateLanguage(verdicts []domain.BlockLanguage, token string) error {
	return nil
}

type mockImageBlockRepository struct {
	blocks map[string][]*domain.ImageBlock
}

func newMockImageBlockRepository() *mockImageBlockRepository {
	return &mockImageBlockRepository{blocks: make(map[string][]*domain.ImageBlock)}
}

func (m *mockImageBlockRepository) Insert(block *domain.ImageBlock, token string) error {
	m.blocks[block.DocumentID] = append(m.blocks[block.DocumentID], block)
	return nil
}

func (m *mockImageBlockRepository) GetByDocumentID(documentID string, token string) ([]*domain.ImageBlock, error) {
	return m.blocks[documentID], nil
}

type mockCorrelationRepository struct {
	correlations map[string][]*domain.Correlation
}

func newMockCorrelationRepository() *mockCorrelationRepository {
	return &mockCorrelationRepository{correlations: make(map[string][]*domain.Correlation)}
}

func (m *mockCorrelationRepository) InsertMany(correlations []*domain.Correlation, token string) error {
	if len(correlations) == 0 {
		return nil
	}
	m.correlations[correlations[0].DocumentID] = append(m.correlations[correlations[0].DocumentID], correlations...)
	return nil
}

func (m *mockCorrelationRepository) GetByDocumentID(documentID string, token string) ([]*domain.Correlation, error) {
	return m.correlations[documentID], nil
}

type mockLogRepository struct {
	entries []*domain.ProcessingLogEntry
}

func (m *mockLogRepository) Append(entry *domain.ProcessingLogEntry, token string) error {
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockLogRepository) GetByDocumentID(documentID string, token string) ([]*domain.ProcessingLogEntry, error) {
	var out []*domain.ProcessingLogEntry
	for _, e := range m.entries {
		if e.DocumentID == documentID {
			out = append(out, e)
		}
	}
	return out, nil
}

type mockStorageService struct {
	objects map[string][]byte
}

func newMockStorageService() *mockStorageService {
	return &mockStorageService{objects: make(map[string][]byte)}
}

func (m *mockStorageService) Upload(ctx context.Context, bucket, path string, data []byte, contentType string) (string, error) {
	m.objects[bucket+"/"+path] = data
	return path, nil
}

func (m *mockStorageService) Download(ctx context.Context, bucket, path string) ([]byte, error) {
	if data, ok := m.objects[bucket+"/"+path]; ok {
		return data, nil
	}
	return nil, fmt.Errorf("object not found: %s", path)
}

func (m *mockStorageService) Delete(ctx context.Context, bucket, path string) error {
	delete(m.objects, bucket+"/"+path)
	return nil
}

type mockDecoder struct {
	pages []domain.Page
}

func (m *mockDecoder) DecodePages(pdfBytes []byte) ([]domain.Page, error) {
	return m.pages, nil
}

func (m *mockDecoder) Metadata(pdfBytes []byte) (domain.PDFMetadata, error) {
	return domain.PDFMetadata{PageCount: len(m.pages)}, nil
}

type mockConfig struct{}

func (c *mockConfig) GetServerPort() string       { return "8080" }
func (c *mockConfig) GetLogLevel() string         { return "debug" }
func (c *mockConfig) GetMaxFileSize() int64       { return 50 << 20 }
func (c *mockConfig) GetMinFileSize() int64       { return 1024 }
func (c *mockConfig) GetSupabaseURL() string      { return "http://localhost" }
func (c *mockConfig) GetSupabaseKey() string      { return "test-key" }
func (c *mockConfig) GetDocumentBucket() string   { return "documents" }
func (c *mockConfig) GetAssetBucket() string      { return "document-assets" }
func (c *mockConfig) GetStageTimeoutSeconds() int { return 120 }
func (c *mockConfig) GetVertexProjectID() string  { return "" }
func (c *mockConfig) GetVertexLocation() string   { return "us-central1" }

// withAuthContext attaches an authenticated user and token the way the
// middleware would.
func withAuthContext(r *http.Request, user *domain.SupabaseUser, token string) *http.Request {
	ctx := context.WithValue(r.Context(), userContextKey, user)
	ctx = context.WithValue(ctx, tokenContextKey, token)
	return r.WithContext(ctx)
}
