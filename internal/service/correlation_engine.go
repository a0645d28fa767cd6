package service

import (
	"math"
	"sort"
	"strings"

	"edu-document-pipeline/internal/domain"

	"github.com/google/uuid"
)

// CorrelationPolicy holds the distances, confidences and keyword set used to
// relate text blocks to images. The precedence behind these numbers favors
// layout evidence (captions, proximity) over weaker lexical evidence so that
// loose "see the figure below" phrasing does not produce false positives.
type CorrelationPolicy struct {
	CaptionDistance    float64
	CaptionConfidence  float64
	ReferenceKeywords  []string
	RefConfidence      float64
	AdjacentDistance   float64
	AdjacentConfidence float64
	SideBySideDelta    float64
	EmbeddedDistance   float64
	EmbeddedConfidence float64
	ContextDistance    float64
	ContextConfidence  float64
	FarConfidence      float64

	// Adjacent-page pass: semantic match only, confidence scaled down.
	CrossPageFactor float64

	RetentionThreshold float64
	MaxPerImage        int
}

// DefaultCorrelationPolicy returns the production policy.
func DefaultCorrelationPolicy() CorrelationPolicy {
	return CorrelationPolicy{
		CaptionDistance:   50,
		CaptionConfidence: 0.95,
		ReferenceKeywords: []string{
			"figura", "imagen", "diagrama", "ilustración", "gráfico",
			"ver la", "observa la", "mira la",
			"figure", "image", "diagram", "illustration", "graphic",
			"see the", "look at the", "shown below", "shown above",
		},
		RefConfidence:      0.85,
		AdjacentDistance:   100,
		AdjacentConfidence: 0.75,
		SideBySideDelta:    50,
		EmbeddedDistance:   200,
		EmbeddedConfidence: 0.65,
		ContextDistance:    400,
		ContextConfidence:  0.4,
		FarConfidence:      0.2,
		CrossPageFactor:    0.8,
		RetentionThreshold: 0.3,
		MaxPerImage:        3,
	}
}

// CorrelationEngine scores text blocks against images and keeps the
// highest-confidence associations per image.
type CorrelationEngine struct {
	policy CorrelationPolicy
	logger domain.Logger
}

// NewCorrelationEngine creates an engine with the given policy.
func NewCorrelationEngine(policy CorrelationPolicy, logger domain.Logger) *CorrelationEngine {
	return &CorrelationEngine{policy: policy, logger: logger}
}

// Correlate evaluates every image against same-page blocks first, then
// adjacent-page blocks, and retains the top candidates above the retention
// threshold.
func (e *CorrelationEngine) Correlate(documentID string, blocks []*domain.TextBlock, images []*domain.ImageBlock) []*domain.Correlation {
	byPage := make(map[int][]*domain.TextBlock)
	for _, b := range blocks {
		byPage[b.PageNumber] = append(byPage[b.PageNumber], b)
	}

	var all []*domain.Correlation
	for _, img := range images {
		var candidates []*domain.Correlation

		for _, block := range byPage[img.PageNumber] {
			candidates = append(candidates, e.scoreSamePage(documentID, block, img))
		}
		for _, page := range []int{img.PageNumber - 1, img.PageNumber + 1} {
			for _, block := range byPage[page] {
				if c := e.scoreCrossPage(documentID, block, img); c != nil {
					candidates = append(candidates, c)
				}
			}
		}

		all = append(all, e.retain(candidates)...)
	}

	e.logger.Debug("Correlation finished", "doc_id", documentID, "images", len(images), "correlations", len(all))
	return all
}

// scoreSamePage applies the precedence rules; the first matching rule wins.
func (e *CorrelationEngine) scoreSamePage(documentID string, block *domain.TextBlock, img *domain.ImageBlock) *domain.Correlation {
	c := &domain.Correlation{
		ID:           uuid.New().String(),
		DocumentID:   documentID,
		TextBlockID:  block.ID,
		ImageBlockID: img.ID,
	}

	distance := centerDistance(block.BBox, img.BBox)
	c.SpatialDistance = distance

	// Rule 1: a caption directly above the image.
	if block.Category == domain.BlockCaption && isDirectlyAbove(block.BBox, img.BBox, e.policy.CaptionDistance) {
		c.Type = domain.CorrelationCaption
		c.Confidence = e.policy.CaptionConfidence
		c.LayoutHint = domain.LayoutTextAbove
		return c
	}

	// Rule 2: explicit figure/image reference.
	if e.hasReferenceKeyword(block.Content) {
		c.Type = domain.CorrelationReference
		c.Confidence = e.policy.RefConfidence
		return c
	}

	// Rule 3: close proximity.
	if distance < e.policy.AdjacentDistance {
		c.Type = domain.CorrelationAdjacent
		c.Confidence = e.policy.AdjacentConfidence
		if math.Abs(block.BBox.CenterY()-img.BBox.CenterY()) <= e.policy.SideBySideDelta {
			c.LayoutHint = domain.LayoutSideBySide
		} else {
			c.LayoutHint = domain.LayoutTextBelow
		}
		return c
	}

	// Rule 4: surrounding paragraph.
	if distance < e.policy.EmbeddedDistance && block.Category == domain.BlockParagraph {
		c.Type = domain.CorrelationEmbedded
		c.Confidence = e.policy.EmbeddedConfidence
		return c
	}

	// Rules 5 and 6: everything else is contextual at decreasing confidence.
	c.Type = domain.CorrelationContextual
	if distance < e.policy.ContextDistance {
		c.Confidence = e.policy.ContextConfidence
	} else {
		c.Confidence = e.policy.FarConfidence
	}
	return c
}

// scoreCrossPage only accepts semantic evidence; spatial rules do not apply
// across page boundaries.
func (e *CorrelationEngine) scoreCrossPage(documentID string, block *domain.TextBlock, img *domain.ImageBlock) *domain.Correlation {
	if !e.hasReferenceKeyword(block.Content) {
		return nil
	}
	return &domain.Correlation{
		ID:              uuid.New().String(),
		DocumentID:      documentID,
		TextBlockID:     block.ID,
		ImageBlockID:    img.ID,
		Type:            domain.CorrelationReference,
		Confidence:      e.policy.RefConfidence * e.policy.CrossPageFactor,
		SpatialDistance: centerDistance(block.BBox, img.BBox),
	}
}

// retain drops candidates under the retention threshold and keeps the top N
// by confidence, descending.
func (e *CorrelationEngine) retain(candidates []*domain.Correlation) []*domain.Correlation {
	kept := candidates[:0]
	for _, c := range candidates {
		if c.Confidence >= e.policy.RetentionThreshold {
			kept = append(kept, c)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Confidence > kept[j].Confidence
	})
	if len(kept) > e.policy.MaxPerImage {
		kept = kept[:e.policy.MaxPerImage]
	}
	return kept
}

func (e *CorrelationEngine) hasReferenceKeyword(content string) bool {
	lower := strings.ToLower(content)
	for _, kw := range e.policy.ReferenceKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// isDirectlyAbove reports whether a sits above b within maxGap vertical units
// and overlaps it horizontally.
func isDirectlyAbove(a, b domain.BoundingBox, maxGap float64) bool {
	if a.Y2 > b.Y1 {
		return false
	}
	if b.Y1-a.Y2 > maxGap {
		return false
	}
	return a.X1 < b.X2 && b.X1 < a.X2
}

func centerDistance(a, b domain.BoundingBox) float64 {
	dx := a.CenterX() - b.CenterX()
	dy := a.CenterY() - b.CenterY()
	return math.Sqrt(dx*dx + dy*dy)
}
