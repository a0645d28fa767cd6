package service

import (
	"context"
	"errors"
	"fmt"

	"edu-document-pipeline/internal/domain"
)

// Mock implementations shared by the service package tests.

type MockLogger struct{}

func NewMockLogger() *MockLogger { return &MockLogger{} }

func (l *MockLogger) Info(msg string, fields ...interface{})             {}
func (l *MockLogger) Error(msg string, err error, fields ...interface{}) {}
func (l *MockLogger) Debug(msg string, fields ...interface{})            {}
func (l *MockLogger) Warn(msg string, fields ...interface{})             {}

type MockDocumentRepository struct {
	documents map[string]*domain.Document
	updates   map[string][]*domain.DocumentUpdate
}

func NewMockDocumentRepository() *MockDocumentRepository {
	return &MockDocumentRepository{
		documents: make(map[string]*domain.Document),
		updates:   make(map[string][]*domain.DocumentUpdate),
	}
}

func (m *MockDocumentRepository) Create(document *domain.Document, token string) error {
	if document.ID == "" {
		return errors.New("document ID is required")
	}
	m.documents[document.ID] = document
	return nil
}

func (m *MockDocumentRepository) GetByID(id string, token string) (*domain.Document, error) {
	if doc, exists := m.documents[id]; exists {
		return doc, nil
	}
	return nil, domain.ErrDocumentNotFound
}

func (m *MockDocumentRepository) GetByUserID(userID string, token string) ([]*domain.Document, error) {
	var docs []*domain.Document
	for _, doc := range m.documents {
		if doc.UserID == userID {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func (m *MockDocumentRepository) GetByContentHash(userID, hash string, token string) (*domain.Document, error) {
	for _, doc := range m.documents {
		if doc.UserID == userID && doc.ContentHash == hash {
			return doc, nil
		}
	}
	return nil, domain.ErrDocumentNotFound
}

func (m *MockDocumentRepository) Update(id string, update *domain.DocumentUpdate, token string) error {
	doc, exists := m.documents[id]
	if !exists {
		return domain.ErrDocumentNotFound
	}
	m.updates[id] = append(m.updates[id], update)
	if update.ProcessingStatus != nil {
		doc.ProcessingStatus = *update.ProcessingStatus
	}
	if update.PrimaryLanguage != nil {
		doc.PrimaryLanguage = *update.PrimaryLanguage
	}
	if update.LanguageConfidence != nil {
		doc.LanguageConfidence = *update.LanguageConfidence
	}
	if update.PageCount != nil {
		doc.PageCount = *update.PageCount
	}
	if update.WordCount != nil {
		doc.WordCount = *update.WordCount
	}
	if update.ImageCount != nil {
		doc.ImageCount = *update.ImageCount
	}
	if update.QualityScore != nil {
		doc.QualityScore = *update.QualityScore
	}
	return nil
}

type MockTextBlockRepository struct {
	blocks    map[string][]*domain.TextBlock
	insertErr error
}

func NewMockTextBlockRepository() *MockTextBlockRepository {
	return &MockTextBlockRepository{blocks: make(map[string][]*domain.TextBlock)}
}

func (m *MockTextBlockRepository) InsertMany(blocks []*domain.TextBlock, token string) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	if len(blocks) == 0 {
		return nil
	}
	docID := blocks[0].DocumentID
	m.blocks[docID] = append(m.blocks[docID], blocks...)
	return nil
}

func (m *MockTextBlockRepository) GetByDocumentID(documentID string, token string) ([]*domain.TextBlock, error) {
	return m.blocks[documentID], nil
}

func (m *MockTextBlockRepository) UpdateLanguage(verdicts []domain.BlockLanguage, token string) error {
	byID := make(map[string]domain.BlockLanguage, len(verdicts))
	for _, v := range verdicts {
		byID[v.BlockID] = v
	}
	for _, blocks := range m.blocks {
		for _, b := range blocks {
			if v, ok := byID[b.ID]; ok {
				b.DetectedLanguage = v.Language
				b.LanguageConfidence = v.Confidence
				b.Dialect = v.Dialect
			}
		}
	}
	return nil
}

type MockImageBlockRepository struct {
	blocks    map[string][]*domain.ImageBlock
	insertErr error
}

func NewMockImageBlockRepository() *MockImageBlockRepository {
	return &MockImageBlockRepository{blocks: make(map[string][]*domain.ImageBlock)}
}

func (m *MockImageBlockRepository) Insert(block *domain.ImageBlock, token string) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.blocks[block.DocumentID] = append(m.blocks[block.DocumentID], block)
	return nil
}

func (m *MockImageBlockRepository) GetByDocumentID(documentID string, token string) ([]*domain.ImageBlock, error) {
	return m.blocks[documentID], nil
}

type MockCorrelationRepository struct {
	correlations map[string][]*domain.Correlation
}

func NewMockCorrelationRepository() *MockCorrelationRepository {
	return &MockCorrelationRepository{correlations: make(map[string][]*domain.Correlation)}
}

func (m *MockCorrelationRepository) InsertMany(correlations []*domain.Correlation, token string) error {
	if len(correlations) == 0 {
		return nil
	}
	docID := correlations[0].DocumentID
	m.correlations[docID] = append(m.correlations[docID], correlations...)
	return nil
}

func (m *MockCorrelationRepository) GetByDocumentID(documentID string, token string) ([]*domain.Correlation, error) {
	return m.correlations[documentID], nil
}

type MockLogRepository struct {
	entries []*domain.ProcessingLogEntry
}

func NewMockLogRepository() *MockLogRepository { return &MockLogRepository{} }

func (m *MockLogRepository) Append(entry *domain.ProcessingLogEntry, token string) error {
	m.entries = append(m.entries, entry)
	return nil
}

func (m *MockLogRepository) GetByDocumentID(documentID string, token string) ([]*domain.ProcessingLogEntry, error) {
	var out []*domain.ProcessingLogEntry
	for _, e := range m.entries {
		if e.DocumentID == documentID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockLogRepository) countForStage(stage domain.Stage) int {
	n := 0
	for _, e := range m.entries {
		if e.Stage == stage {
			n++
		}
	}
	return n
}

type MockStorageService struct {
	objects     map[string][]byte
	uploadErr   error
	downloadErr error
	deleted     []string
}

func NewMockStorageService() *MockStorageService {
	return &MockStorageService{objects: make(map[string][]byte)}
}

func (m *MockStorageService) key(bucket, path string) string { return bucket + "/" + path }

func (m *MockStorageService) Upload(ctx context.Context, bucket, path string, data []byte, contentType string) (string, error) {
	if m.uploadErr != nil {
		return "", m.uploadErr
	}
	m.objects[m.key(bucket, path)] = data
	return path, nil
}

func (m *MockStorageService) Download(ctx context.Context, bucket, path string) ([]byte, error) {
	if m.downloadErr != nil {
		return nil, m.downloadErr
	}
	data, exists := m.objects[m.key(bucket, path)]
	if !exists {
		return nil, fmt.Errorf("object not found: %s", path)
	}
	return data, nil
}

func (m *MockStorageService) Delete(ctx context.Context, bucket, path string) error {
	m.deleted = append(m.deleted, m.key(bucket, path))
	delete(m.objects, m.key(bucket, path))
	return nil
}

type MockDecoder struct {
	pages     []domain.Page
	decodeErr error
}

func (m *MockDecoder) DecodePages(pdfBytes []byte) ([]domain.Page, error) {
	if m.decodeErr != nil {
		return nil, m.decodeErr
	}
	return m.pages, nil
}

func (m *MockDecoder) Metadata(pdfBytes []byte) (domain.PDFMetadata, error) {
	return domain.PDFMetadata{PageCount: len(m.pages)}, nil
}

type MockAssessmentGenerator struct {
	calls       int
	generateErr error
}

func (m *MockAssessmentGenerator) Generate(ctx context.Context, doc *domain.Document, blocks []*domain.TextBlock, correlations []*domain.Correlation, token string) error {
	m.calls++
	return m.generateErr
}

type MockConfig struct {
	maxFileSize  int64
	minFileSize  int64
	stageTimeout int
}

func NewMockConfig() *MockConfig {
	return &MockConfig{maxFileSize: 50 << 20, minFileSize: 1024, stageTimeout: 120}
}

func (c *MockConfig) GetServerPort() string       { return "8080" }
func (c *MockConfig) GetLogLevel() string         { return "debug" }
func (c *MockConfig) GetMaxFileSize() int64       { return c.maxFileSize }
func (c *MockConfig) GetMinFileSize() int64       { return c.minFileSize }
func (c *MockConfig) GetSupabaseURL() string      { return "http://localhost" }
func (c *MockConfig) GetSupabaseKey() string      { return "test-key" }
func (c *MockConfig) GetDocumentBucket() string   { return "documents" }
func (c *MockConfig) GetAssetBucket() string      { return "document-assets" }
func (c *MockConfig) GetStageTimeoutSeconds() int { return c.stageTimeout }
func (c *MockConfig) GetVertexProjectID() string  { return "" }
func (c *MockConfig) GetVertexLocation() string   { return "us-central1" }
