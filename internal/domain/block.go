package domain

import "time"

// BlockCategory classifies the role a text block plays on the page.
type BlockCategory string

const (
	BlockTitle        BlockCategory = "title"
	BlockHeading      BlockCategory = "heading"
	BlockParagraph    BlockCategory = "paragraph"
	BlockQuestion     BlockCategory = "question"
	BlockAnswerChoice BlockCategory = "answer_choice"
	BlockInstruction  BlockCategory = "instruction"
	BlockCaption      BlockCategory = "caption"
	BlockFootnote     BlockCategory = "footnote"
)

// ImageType is a coarse heuristic classification of an extracted image.
// Downstream consumers must treat it as advisory, not ground truth.
type ImageType string

const (
	ImageIcon         ImageType = "icon"
	ImageDiagram      ImageType = "diagram"
	ImageIllustration ImageType = "illustration"
)

// BoundingBox is an axis-aligned rectangle in page coordinates.
// (X1,Y1) is the top-left corner, (X2,Y2) the bottom-right.
type BoundingBox struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Width returns the horizontal extent of the box.
func (b BoundingBox) Width() float64 { return b.X2 - b.X1 }

// Height returns the vertical extent of the box.
func (b BoundingBox) Height() float64 { return b.Y2 - b.Y1 }

// CenterX returns the horizontal center of the box.
func (b BoundingBox) CenterX() float64 { return (b.X1 + b.X2) / 2 }

// CenterY returns the vertical center of the box.
func (b BoundingBox) CenterY() float64 { return (b.Y1 + b.Y2) / 2 }

// TextBlock is a contiguous, positioned run of extracted text sharing one
// content category. BlockIndex is unique within (document, page) and follows
// reading order as produced by extraction.
type TextBlock struct {
	ID         string `json:"id"`
	DocumentID string `json:"document_id"`

	PageNumber int    `json:"page_number"` // 1-indexed
	BlockIndex int    `json:"block_index"`
	Content    string `json:"content"`

	BBox     BoundingBox   `json:"bbox"`
	Category BlockCategory `json:"category"`

	// Language fields are pending until the detector has run. They are the
	// only fields mutated after extraction.
	DetectedLanguage   Language `json:"detected_language"`
	LanguageConfidence float64  `json:"language_confidence"`
	Dialect            string   `json:"dialect,omitempty"`

	WordCount     int `json:"word_count"`
	SentenceCount int `json:"sentence_count"`

	CreatedAt time.Time `json:"created_at"`
}

// ImageBlock is an embedded raster image isolated from a page's paint
// operations. Immutable once created.
type ImageBlock struct {
	ID         string `json:"id"`
	DocumentID string `json:"document_id"`

	PageNumber int `json:"page_number"` // 1-indexed
	ImageIndex int `json:"image_index"`

	BBox        BoundingBox `json:"bbox"`
	PixelWidth  int         `json:"pixel_width"`
	PixelHeight int         `json:"pixel_height"`
	AspectRatio float64     `json:"aspect_ratio"`

	StoragePath string    `json:"storage_path"`
	ImageType   ImageType `json:"image_type"`
	ByteSize    int       `json:"byte_size"`

	CreatedAt time.Time `json:"created_at"`
}
