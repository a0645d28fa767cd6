package repository

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/supabase-community/postgrest-go"

	"edu-document-pipeline/internal/domain"
)

// SupabaseTextBlockRepository implements domain.TextBlockRepository against
// the text_blocks table.
type SupabaseTextBlockRepository struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger
}

// NewTextBlockRepository creates a new text block repository.
func NewTextBlockRepository(supabaseClient domain.SupabaseClient, logger domain.Logger) domain.TextBlockRepository {
	return &SupabaseTextBlockRepository{
		supabaseClient: supabaseClient,
		logger:         logger,
	}
}

// InsertMany inserts all extracted blocks in one round trip.
func (r *SupabaseTextBlockRepository) InsertMany(blocks []*domain.TextBlock, token string) error {
	if len(blocks) == 0 {
		return nil
	}
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return fmt.Errorf("failed to get client with token: %w", err)
	}

	// PostgreSQL JSONB rejects NUL escapes; scrub them before insert.
	for _, b := range blocks {
		b.Content = strings.ReplaceAll(b.Content, "\x00", "")
	}

	_, _, err = client.From("text_blocks").Insert(blocks, false, "", "", "").Execute()
	if err != nil {
		r.logger.Error("Failed to insert text blocks", err, "doc_id", blocks[0].DocumentID, "count", len(blocks))
		return fmt.Errorf("failed to insert text blocks: %w", err)
	}
	return nil
}

// GetByDocumentID returns a document's blocks in reading order.
func (r *SupabaseTextBlockRepository) GetByDocumentID(documentID string, token string) ([]*domain.TextBlock, error) {
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return nil, fmt.Errorf("failed to get client with token: %w", err)
	}

	data, _, err := client.From("text_blocks").
		Select("*", "", false).
		Eq("document_id", documentID).
		Order("block_index", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch text blocks: %w", err)
	}

	var blocks []*domain.TextBlock
	if err := json.Unmarshal(data, &blocks); err != nil {
		return nil, fmt.Errorf("failed to decode text blocks: %w", err)
	}
	return blocks, nil
}

// UpdateLanguage writes the detector's verdicts back onto their blocks.
// Language fields are the only mutation text blocks ever receive.
func (r *SupabaseTextBlockRepository) UpdateLanguage(verdicts []domain.BlockLanguage, token string) error {
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return fmt.Errorf("failed to get client with token: %w", err)
	}

	for _, v := range verdicts {
		payload := map[string]interface{}{
			"detected_language":   v.Language,
			"language_confidence": v.Confidence,
		}
		if v.Dialect != "" {
			payload["dialect"] = v.Dialect
		}
		_, _, err = client.From("text_blocks").
			Update(payload, "", "").
			Eq("id", v.BlockID).
			Execute()
		if err != nil {
			r.logger.Error("Failed to update block language", err, "block_id", v.BlockID)
			return fmt.Errorf("failed to update block language: %w", err)
		}
	}
	return nil
}

// SupabaseImageBlockRepository implements domain.ImageBlockRepository against
// the image_blocks table.
type SupabaseImageBlockRepository struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger
}

// NewImageBlockRepository creates a new image block repository.
func NewImageBlockRepository(supabaseClient domain.SupabaseClient, logger domain.Logger) domain.ImageBlockRepository {
	return &SupabaseImageBlockRepository{
		supabaseClient: supabaseClient,
		logger:         logger,
	}
}

// Insert commits one image block. Called only after the image bytes are
// safely in object storage.
func (r *SupabaseImageBlockRepository) Insert(block *domain.ImageBlock, token string) error {
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return fmt.Errorf("failed to get client with token: %w", err)
	}

	_, _, err = client.From("image_blocks").Insert(block, false, "", "", "").Execute()
	if err != nil {
		r.logger.Error("Failed to insert image block", err, "doc_id", block.DocumentID, "page", block.PageNumber)
		return fmt.Errorf("failed to insert image block: %w", err)
	}
	return nil
}

// GetByDocumentID returns a document's image blocks.
func (r *SupabaseImageBlockRepository) GetByDocumentID(documentID string, token string) ([]*domain.ImageBlock, error) {
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return nil, fmt.Errorf("failed to get client with token: %w", err)
	}

	data, _, err := client.From("image_blocks").
		Select("*", "", false).
		Eq("document_id", documentID).
		Order("page_number", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image blocks: %w", err)
	}

	var blocks []*domain.ImageBlock
	if err := json.Unmarshal(data, &blocks); err != nil {
		return nil, fmt.Errorf("failed to decode image blocks: %w", err)
	}
	return blocks, nil
}
