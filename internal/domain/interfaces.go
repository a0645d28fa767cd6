package domain

import "context"

// DocumentRepository defines persistence operations for documents.
type DocumentRepository interface {
	Create(document *Document, token string) error
	GetByID(id string, token string) (*Document, error)
	GetByUserID(userID string, token string) ([]*Document, error)
	GetByContentHash(userID, hash string, token string) (*Document, error)
	Update(id string, update *DocumentUpdate, token string) error
}

// TextBlockRepository defines persistence operations for text blocks.
type TextBlockRepository interface {
	InsertMany(blocks []*TextBlock, token string) error
	GetByDocumentID(documentID string, token string) ([]*TextBlock, error)
	UpdateLanguage(verdicts []BlockLanguage, token string) error
}

// ImageBlockRepository defines persistence operations for image blocks.
type ImageBlockRepository interface {
	Insert(block *ImageBlock, token string) error
	GetByDocumentID(documentID string, token string) ([]*ImageBlock, error)
}

// CorrelationRepository defines persistence operations for correlations.
type CorrelationRepository interface {
	InsertMany(correlations []*Correlation, token string) error
	GetByDocumentID(documentID string, token string) ([]*Correlation, error)
}

// ProcessingLogRepository appends audit records. Entries are write-once.
type ProcessingLogRepository interface {
	Append(entry *ProcessingLogEntry, token string) error
	GetByDocumentID(documentID string, token string) ([]*ProcessingLogEntry, error)
}

// StorageService abstracts the object store holding raw PDFs and extracted
// image assets.
type StorageService interface {
	Upload(ctx context.Context, bucket, path string, data []byte, contentType string) (string, error)
	Download(ctx context.Context, bucket, path string) ([]byte, error)
	Delete(ctx context.Context, bucket, path string) error
}

// AssessmentGenerator is the downstream consumer that turns approved content
// into a student-facing activity.
type AssessmentGenerator interface {
	Generate(ctx context.Context, doc *Document, blocks []*TextBlock, correlations []*Correlation, token string) error
}

// AuthService validates caller identity.
type AuthService interface {
	ValidateToken(token string) (*SupabaseUser, error)
}

// Logger defines the interface for logging operations.
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
}

// Config defines the interface for configuration management.
type Config interface {
	GetServerPort() string
	GetLogLevel() string
	GetMaxFileSize() int64
	GetMinFileSize() int64
	GetSupabaseURL() string
	GetSupabaseKey() string
	GetDocumentBucket() string
	GetAssetBucket() string
	GetStageTimeoutSeconds() int
	GetVertexProjectID() string
	GetVertexLocation() string
}
