package domain

import "time"

// AssessmentQuestion is one generated multiple-choice item.
type AssessmentQuestion struct {
	Prompt        string   `json:"prompt"`
	Choices       []string `json:"choices"`
	CorrectIndex  int      `json:"correct_index"`
	SourceBlockID string   `json:"source_block_id,omitempty"`
}

// Assessment is a generated draft activity awaiting educator review. The
// pipeline only ever creates drafts; publishing is an authoring-UI concern.
type Assessment struct {
	ID         string               `json:"id"`
	DocumentID string               `json:"document_id"`
	Title      string               `json:"title"`
	Language   Language             `json:"language"`
	Questions  []AssessmentQuestion `json:"questions"`
	Status     string               `json:"status"` // always "draft" when created here
	CreatedAt  time.Time            `json:"created_at"`
}

// AssessmentRepository persists generated draft assessments.
type AssessmentRepository interface {
	Insert(assessment *Assessment, token string) error
	GetByDocumentID(documentID string, token string) ([]*Assessment, error)
}
