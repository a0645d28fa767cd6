package repository

import (
	"encoding/json"
	"fmt"

	"edu-document-pipeline/internal/domain"
)

// SupabaseAssessmentRepository implements domain.AssessmentRepository against
// the assessments table.
type SupabaseAssessmentRepository struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger
}

// NewAssessmentRepository creates a new assessment repository.
func NewAssessmentRepository(supabaseClient domain.SupabaseClient, logger domain.Logger) domain.AssessmentRepository {
	return &SupabaseAssessmentRepository{
		supabaseClient: supabaseClient,
		logger:         logger,
	}
}

// Insert stores one generated draft assessment.
func (r *SupabaseAssessmentRepository) Insert(assessment *domain.Assessment, token string) error {
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return fmt.Errorf("failed to get client with token: %w", err)
	}

	_, _, err = client.From("assessments").Insert(assessment, false, "", "", "").Execute()
	if err != nil {
		r.logger.Error("Failed to insert assessment", err, "doc_id", assessment.DocumentID)
		return fmt.Errorf("failed to insert assessment: %w", err)
	}
	return nil
}

// GetByDocumentID returns a document's generated assessments.
func (r *SupabaseAssessmentRepository) GetByDocumentID(documentID string, token string) ([]*domain.Assessment, error) {
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return nil, fmt.Errorf("failed to get client with token: %w", err)
	}

	data, _, err := client.From("assessments").
		Select("*", "", false).
		Eq("document_id", documentID).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assessments: %w", err)
	}

	var assessments []*domain.Assessment
	if err := json.Unmarshal(data, &assessments); err != nil {
		return nil, fmt.Errorf("failed to decode assessments: %w", err)
	}
	return assessments, nil
}
