package repository

import (
	"encoding/json"
	"fmt"

	"edu-document-pipeline/internal/domain"
)

// SupabaseDocumentRepository implements domain.DocumentRepository against the
// documents table.
type SupabaseDocumentRepository struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger
}

// NewDocumentRepository creates a new document repository.
func NewDocumentRepository(supabaseClient domain.SupabaseClient, logger domain.Logger) domain.DocumentRepository {
	return &SupabaseDocumentRepository{
		supabaseClient: supabaseClient,
		logger:         logger,
	}
}

// Create inserts a new document row.
func (r *SupabaseDocumentRepository) Create(document *domain.Document, token string) error {
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return fmt.Errorf("failed to get client with token: %w", err)
	}

	_, _, err = client.From("documents").Insert(document, false, "", "", "").Execute()
	if err != nil {
		r.logger.Error("Failed to insert document", err, "doc_id", document.ID)
		return fmt.Errorf("failed to create document: %w", err)
	}

	r.logger.Info("Document created", "id", document.ID, "user_id", document.UserID)
	return nil
}

// GetByID fetches one document.
func (r *SupabaseDocumentRepository) GetByID(id string, token string) (*domain.Document, error) {
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return nil, fmt.Errorf("failed to get client with token: %w", err)
	}

	data, _, err := client.From("documents").
		Select("*", "", false).
		Eq("id", id).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch document: %w", err)
	}

	var documents []*domain.Document
	if err := json.Unmarshal(data, &documents); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	if len(documents) == 0 {
		return nil, domain.ErrDocumentNotFound
	}
	return documents[0], nil
}

// GetByUserID lists a user's documents.
func (r *SupabaseDocumentRepository) GetByUserID(userID string, token string) ([]*domain.Document, error) {
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return nil, fmt.Errorf("failed to get client with token: %w", err)
	}

	data, _, err := client.From("documents").
		Select("*", "", false).
		Eq("user_id", userID).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch documents: %w", err)
	}

	var documents []*domain.Document
	if err := json.Unmarshal(data, &documents); err != nil {
		return nil, fmt.Errorf("failed to decode documents: %w", err)
	}
	return documents, nil
}

// GetByContentHash finds a user's document with identical content, if any.
func (r *SupabaseDocumentRepository) GetByContentHash(userID, hash string, token string) (*domain.Document, error) {
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return nil, fmt.Errorf("failed to get client with token: %w", err)
	}

	data, _, err := client.From("documents").
		Select("*", "", false).
		Eq("user_id", userID).
		Eq("content_hash", hash).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch document by hash: %w", err)
	}

	var documents []*domain.Document
	if err := json.Unmarshal(data, &documents); err != nil {
		return nil, fmt.Errorf("failed to decode documents: %w", err)
	}
	if len(documents) == 0 {
		return nil, domain.ErrDocumentNotFound
	}
	return documents[0], nil
}

// Update applies targeted field updates. Nil fields in the update are
// omitted from the payload so only set fields are written.
func (r *SupabaseDocumentRepository) Update(id string, update *domain.DocumentUpdate, token string) error {
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return fmt.Errorf("failed to get client with token: %w", err)
	}

	_, _, err = client.From("documents").
		Update(update, "", "").
		Eq("id", id).
		Execute()
	if err != nil {
		r.logger.Error("Failed to update document", err, "doc_id", id)
		return fmt.Errorf("failed to update document: %w", err)
	}
	return nil
}
