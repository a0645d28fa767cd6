package repository

import (
	"encoding/json"
	"fmt"

	"github.com/supabase-community/postgrest-go"

	"edu-document-pipeline/internal/domain"
)

// SupabaseCorrelationRepository implements domain.CorrelationRepository
// against the correlations table.
type SupabaseCorrelationRepository struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger
}

// NewCorrelationRepository creates a new correlation repository.
func NewCorrelationRepository(supabaseClient domain.SupabaseClient, logger domain.Logger) domain.CorrelationRepository {
	return &SupabaseCorrelationRepository{
		supabaseClient: supabaseClient,
		logger:         logger,
	}
}

// InsertMany inserts all retained correlations for a document at once.
func (r *SupabaseCorrelationRepository) InsertMany(correlations []*domain.Correlation, token string) error {
	if len(correlations) == 0 {
		return nil
	}
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return fmt.Errorf("failed to get client with token: %w", err)
	}

	_, _, err = client.From("correlations").Insert(correlations, false, "", "", "").Execute()
	if err != nil {
		r.logger.Error("Failed to insert correlations", err, "doc_id", correlations[0].DocumentID, "count", len(correlations))
		return fmt.Errorf("failed to insert correlations: %w", err)
	}
	return nil
}

// GetByDocumentID returns a document's correlations.
func (r *SupabaseCorrelationRepository) GetByDocumentID(documentID string, token string) ([]*domain.Correlation, error) {
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return nil, fmt.Errorf("failed to get client with token: %w", err)
	}

	data, _, err := client.From("correlations").
		Select("*", "", false).
		Eq("document_id", documentID).
		Order("confidence", &postgrest.OrderOpts{Ascending: false}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch correlations: %w", err)
	}

	var correlations []*domain.Correlation
	if err := json.Unmarshal(data, &correlations); err != nil {
		return nil, fmt.Errorf("failed to decode correlations: %w", err)
	}
	return correlations, nil
}
