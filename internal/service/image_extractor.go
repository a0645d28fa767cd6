package service

import (
	"context"
	"fmt"

	"edu-document-pipeline/internal/domain"

	"github.com/google/uuid"
)

// ImageExtractor isolates embedded raster images from decoded pages, writes
// the bytes to object storage and the metadata row to the database. The
// storage write always happens first; a failed metadata insert triggers a
// best-effort compensating delete so no orphaned rows point at missing
// objects.
type ImageExtractor struct {
	storage domain.StorageService
	images  domain.ImageBlockRepository
	logger  domain.Logger
	bucket  string
}

// NewImageExtractor creates an image extractor writing assets to the given
// bucket.
func NewImageExtractor(storage domain.StorageService, images domain.ImageBlockRepository, logger domain.Logger, bucket string) *ImageExtractor {
	return &ImageExtractor{
		storage: storage,
		images:  images,
		logger:  logger,
		bucket:  bucket,
	}
}

// Extract persists every decoded image and returns the committed blocks.
// A single image failing does not abort the rest of the page walk.
func (e *ImageExtractor) Extract(ctx context.Context, documentID string, pages []domain.Page, token string) ([]*domain.ImageBlock, error) {
	var blocks []*domain.ImageBlock
	var firstErr error

	for _, page := range pages {
		for k, img := range page.Images {
			block, err := e.persistImage(ctx, documentID, page.Number, k, img, token)
			if err != nil {
				e.logger.Warn("Failed to persist image",
					"doc_id", documentID, "page", page.Number, "index", k, "error", err)
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			blocks = append(blocks, block)
		}
	}

	if len(blocks) == 0 && firstErr != nil {
		return nil, firstErr
	}
	return blocks, nil
}

func (e *ImageExtractor) persistImage(ctx context.Context, documentID string, pageNumber, index int, img domain.ImageObject, token string) (*domain.ImageBlock, error) {
	format := img.Format
	if format == "" {
		format = "png"
	}
	path := fmt.Sprintf("%s/page-%d-img-%d.%s", documentID, pageNumber, index, format)

	locator, err := e.storage.Upload(ctx, e.bucket, path, img.Data, "image/"+format)
	if err != nil {
		return nil, fmt.Errorf("storage upload failed: %w", err)
	}

	block := &domain.ImageBlock{
		ID:          uuid.New().String(),
		DocumentID:  documentID,
		PageNumber:  pageNumber,
		ImageIndex:  index,
		BBox:        img.BBox,
		PixelWidth:  img.Width,
		PixelHeight: img.Height,
		AspectRatio: aspectRatio(img.Width, img.Height),
		StoragePath: locator,
		ImageType:   ClassifyImage(img.Width, img.Height),
		ByteSize:    len(img.Data),
	}

	if err := e.images.Insert(block, token); err != nil {
		// The object is already in storage; remove it so metadata and bytes
		// stay consistent. Compensation failures are logged, not retried.
		if delErr := e.storage.Delete(ctx, e.bucket, path); delErr != nil {
			e.logger.Error("Compensating delete failed, orphaned object remains", delErr,
				"bucket", e.bucket, "path", path)
		}
		return nil, fmt.Errorf("metadata insert failed: %w", err)
	}

	return block, nil
}

// ClassifyImage applies the coarse image-type heuristic. Best effort only;
// consumers must treat the result as advisory.
func ClassifyImage(width, height int) domain.ImageType {
	if width < 100 && height < 100 {
		return domain.ImageIcon
	}
	ar := aspectRatio(width, height)
	if ar > 2 || (ar > 0 && ar < 0.5) {
		return domain.ImageDiagram
	}
	if width > 400 && height > 400 {
		return domain.ImageIllustration
	}
	return domain.ImageIllustration
}

func aspectRatio(width, height int) float64 {
	if height == 0 {
		return 0
	}
	return float64(width) / float64(height)
}
