package domain

import "time"

// CorrelationType classifies why a text block and image were associated.
type CorrelationType string

const (
	CorrelationCaption    CorrelationType = "caption"
	CorrelationReference  CorrelationType = "reference"
	CorrelationAdjacent   CorrelationType = "adjacent"
	CorrelationEmbedded   CorrelationType = "embedded"
	CorrelationContextual CorrelationType = "contextual"
)

// Layout hints suggested to the rendering layer.
const (
	LayoutSideBySide = "side-by-side"
	LayoutTextBelow  = "text-below"
	LayoutTextAbove  = "text-above"
)

// Correlation is a scored, directed association asserting that a text block
// and an image are meant to be viewed together. At most three correlations
// are retained per image, all with confidence of at least the retention
// threshold, ordered by descending confidence. Immutable once created.
type Correlation struct {
	ID         string `json:"id"`
	DocumentID string `json:"document_id"`

	TextBlockID  string `json:"text_block_id"`
	ImageBlockID string `json:"image_block_id"`

	Type            CorrelationType `json:"correlation_type"`
	Confidence      float64         `json:"confidence"`
	SpatialDistance float64         `json:"spatial_distance"`
	LayoutHint      string          `json:"layout_hint,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
