package domain

import "time"

// ProcessingStatus tracks a document through the ingestion pipeline.
type ProcessingStatus string

const (
	StatusPending        ProcessingStatus = "pending"
	StatusProcessing     ProcessingStatus = "processing"
	StatusCompleted      ProcessingStatus = "completed"
	StatusRequiresReview ProcessingStatus = "requires_review"
	StatusFailed         ProcessingStatus = "failed"
)

// ContentType describes what kind of instructional material a document holds.
type ContentType string

const (
	ContentTypeLesson    ContentType = "lesson"
	ContentTypeReading   ContentType = "reading"
	ContentTypeWorksheet ContentType = "worksheet"
	ContentTypeExam      ContentType = "exam"
)

// RequiresAssessment reports whether documents of this type should get a
// draft assessment generated once processing succeeds.
func (c ContentType) RequiresAssessment() bool {
	return c == ContentTypeWorksheet || c == ContentTypeExam
}

// Document represents an uploaded instructional PDF and its pipeline state.
type Document struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`

	Title        string `json:"title"`
	OriginalName string `json:"original_name"`
	FilePath     string `json:"file_path"`
	FileSize     int64  `json:"file_size"`
	ContentHash  string `json:"content_hash"`

	GradeLevel  string      `json:"grade_level"`
	Subject     string      `json:"subject"`
	ContentType ContentType `json:"content_type"`

	// Declared by the uploader; overwritten by the language detector rollup.
	PrimaryLanguage    Language `json:"primary_language"`
	LanguageConfidence float64  `json:"language_confidence"`

	PageCount  int `json:"page_count"`
	WordCount  int `json:"word_count"`
	ImageCount int `json:"image_count"`

	ProcessingStatus ProcessingStatus `json:"processing_status"`
	QualityScore     float64          `json:"quality_score"`

	ProcessingStartedAt   *time.Time `json:"processing_started_at,omitempty"`
	ProcessingCompletedAt *time.Time `json:"processing_completed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DocumentUpdate carries the targeted field updates the pipeline writes back
// onto a document. Nil fields are left untouched.
type DocumentUpdate struct {
	ProcessingStatus      *ProcessingStatus `json:"processing_status,omitempty"`
	PrimaryLanguage       *Language         `json:"primary_language,omitempty"`
	LanguageConfidence    *float64          `json:"language_confidence,omitempty"`
	PageCount             *int              `json:"page_count,omitempty"`
	WordCount             *int              `json:"word_count,omitempty"`
	ImageCount            *int              `json:"image_count,omitempty"`
	QualityScore          *float64          `json:"quality_score,omitempty"`
	ProcessingStartedAt   *time.Time        `json:"processing_started_at,omitempty"`
	ProcessingCompletedAt *time.Time        `json:"processing_completed_at,omitempty"`
}
