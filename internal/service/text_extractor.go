package service

import (
	"strings"

	"edu-document-pipeline/internal/domain"

	"github.com/google/uuid"
)

// TextExtractor walks decoded pages and groups positioned runs into
// classified text blocks.
type TextExtractor struct {
	classifier *BlockClassifier
	logger     domain.Logger
}

// NewTextExtractor creates a text extractor using the given classifier.
func NewTextExtractor(classifier *BlockClassifier, logger domain.Logger) *TextExtractor {
	return &TextExtractor{
		classifier: classifier,
		logger:     logger,
	}
}

// Extract produces ordered text blocks for every page. Zero blocks is not an
// error here; the quality validator surfaces it.
func (e *TextExtractor) Extract(documentID string, pages []domain.Page) []*domain.TextBlock {
	var blocks []*domain.TextBlock

	for _, page := range pages {
		pageBlocks := e.extractPage(documentID, page)
		blocks = append(blocks, pageBlocks...)
	}

	e.logger.Debug("Text extraction finished", "doc_id", documentID, "pages", len(pages), "blocks", len(blocks))
	return blocks
}

// extractPage merges adjacent runs into blocks. Runs join the current block
// while the category is unchanged and the vertical gap stays within twice the
// run height; anything else starts a new block.
func (e *TextExtractor) extractPage(documentID string, page domain.Page) []*domain.TextBlock {
	var blocks []*domain.TextBlock

	var current *domain.TextBlock
	var lastRun *domain.TextRun
	blockIndex := 0

	flush := func() {
		if current == nil {
			return
		}
		current.Content = strings.TrimSpace(current.Content)
		if current.Content != "" {
			finalizeBlock(current)
			blocks = append(blocks, current)
			blockIndex++
		}
		current = nil
	}

	for i := range page.Runs {
		run := page.Runs[i]
		if strings.TrimSpace(run.Text) == "" {
			continue
		}

		category := e.classifier.Classify(run, page.Height)

		if current != nil && lastRun != nil {
			gap := run.BBox.Y1 - lastRun.BBox.Y2
			maxGap := 2 * run.BBox.Height()
			if category != current.Category || gap > maxGap {
				flush()
			}
		}

		if current == nil {
			current = &domain.TextBlock{
				ID:               uuid.New().String(),
				DocumentID:       documentID,
				PageNumber:       page.Number,
				BlockIndex:       blockIndex,
				Category:         category,
				BBox:             run.BBox,
				DetectedLanguage: domain.LanguagePending,
			}
		}

		if current.Content != "" {
			current.Content += " "
		}
		current.Content += strings.TrimSpace(run.Text)
		current.BBox = unionBox(current.BBox, run.BBox)
		lastRun = &page.Runs[i]
	}
	flush()

	return blocks
}

// finalizeBlock fills the derived counts on a completed block.
func finalizeBlock(block *domain.TextBlock) {
	block.WordCount = len(strings.Fields(block.Content))
	block.SentenceCount = countSentences(block.Content)
}

// countSentences counts '.'/'!'/'?'-delimited segments, discarding empty ones.
func countSentences(text string) int {
	segments := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	count := 0
	for _, seg := range segments {
		if strings.TrimSpace(seg) != "" {
			count++
		}
	}
	return count
}

func unionBox(a, b domain.BoundingBox) domain.BoundingBox {
	out := a
	if b.X1 < out.X1 {
		out.X1 = b.X1
	}
	if b.Y1 < out.Y1 {
		out.Y1 = b.Y1
	}
	if b.X2 > out.X2 {
		out.X2 = b.X2
	}
	if b.Y2 > out.Y2 {
		out.Y2 = b.Y2
	}
	return out
}
