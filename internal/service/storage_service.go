package service

import (
	"bytes"
	"context"
	"fmt"

	"edu-document-pipeline/internal/domain"

	storage_go "github.com/supabase-community/storage-go"
)

// SupabaseStorage implements domain.StorageService on top of Supabase
// object storage.
type SupabaseStorage struct {
	baseURL       string
	apiKey        string
	storageClient *storage_go.Client
}

// NewStorageService creates a storage service for the given Supabase project.
func NewStorageService(baseURL string, apiKey string) *SupabaseStorage {
	client := storage_go.NewClient(baseURL+"/storage/v1", apiKey, nil)
	return &SupabaseStorage{
		baseURL:       baseURL,
		apiKey:        apiKey,
		storageClient: client,
	}
}

// Upload writes an object and returns its locator within the bucket.
func (s *SupabaseStorage) Upload(ctx context.Context, bucket, path string, data []byte, contentType string) (string, error) {
	_ = ctx // storage-go does not accept a context yet

	_, err := s.storageClient.UploadFile(bucket, path, bytes.NewReader(data), storage_go.FileOptions{
		ContentType: &contentType,
	})
	if err != nil {
		return "", fmt.Errorf("storage upload failed for %s/%s: %w", bucket, path, err)
	}
	return path, nil
}

// Download reads an object's bytes.
func (s *SupabaseStorage) Download(ctx context.Context, bucket, path string) ([]byte, error) {
	_ = ctx

	data, err := s.storageClient.DownloadFile(bucket, path)
	if err != nil {
		return nil, fmt.Errorf("storage download failed for %s/%s: %w", bucket, path, err)
	}
	if len(data) == 0 {
		return nil, domain.ErrDocumentBytesLost
	}
	return data, nil
}

// Delete removes an object. Used for compensating rollback when a paired
// metadata write fails.
func (s *SupabaseStorage) Delete(ctx context.Context, bucket, path string) error {
	_ = ctx

	if _, err := s.storageClient.RemoveFile(bucket, []string{path}); err != nil {
		return fmt.Errorf("storage delete failed for %s/%s: %w", bucket, path, err)
	}
	return nil
}
