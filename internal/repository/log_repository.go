package repository

import (
	"encoding/json"
	"fmt"

	"github.com/supabase-community/postgrest-go"

	"edu-document-pipeline/internal/domain"
)

// SupabaseProcessingLogRepository implements domain.ProcessingLogRepository
// against the processing_logs table. The table is append-only; rows are
// never updated or deleted.
type SupabaseProcessingLogRepository struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger
}

// NewProcessingLogRepository creates a new processing log repository.
func NewProcessingLogRepository(supabaseClient domain.SupabaseClient, logger domain.Logger) domain.ProcessingLogRepository {
	return &SupabaseProcessingLogRepository{
		supabaseClient: supabaseClient,
		logger:         logger,
	}
}

// Append writes one audit record.
func (r *SupabaseProcessingLogRepository) Append(entry *domain.ProcessingLogEntry, token string) error {
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return fmt.Errorf("failed to get client with token: %w", err)
	}

	_, _, err = client.From("processing_logs").Insert(entry, false, "", "", "").Execute()
	if err != nil {
		r.logger.Error("Failed to append processing log", err, "doc_id", entry.DocumentID, "stage", entry.Stage)
		return fmt.Errorf("failed to append processing log: %w", err)
	}
	return nil
}

// GetByDocumentID returns a document's audit trail.
func (r *SupabaseProcessingLogRepository) GetByDocumentID(documentID string, token string) ([]*domain.ProcessingLogEntry, error) {
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return nil, fmt.Errorf("failed to get client with token: %w", err)
	}

	data, _, err := client.From("processing_logs").
		Select("*", "", false).
		Eq("document_id", documentID).
		Order("created_at", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch processing logs: %w", err)
	}

	var entries []*domain.ProcessingLogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode processing logs: %w", err)
	}
	return entries, nil
}
