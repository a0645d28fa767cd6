package service

import (
	"regexp"
	"strings"

	"edu-document-pipeline/internal/domain"
)

// ClassifierPolicy holds the layout thresholds used to categorize text runs.
// Values are tuned for letter/A4 instructional material and can be adjusted
// without touching the classification logic.
type ClassifierPolicy struct {
	TitleFontSize   float64 // minimum font size of a title run
	TitleRegion     float64 // fraction of page height counted as "upper region"
	HeadingFontSize float64 // minimum font size of a heading run
	CaptionFontSize float64 // maximum font size of a caption run
	CaptionRegion   float64 // fraction of page height counted as "lower region"
	FootnoteFont    float64 // maximum font size of a footnote run
}

// DefaultClassifierPolicy returns the thresholds used in production.
func DefaultClassifierPolicy() ClassifierPolicy {
	return ClassifierPolicy{
		TitleFontSize:   18,
		TitleRegion:     0.25,
		HeadingFontSize: 14,
		CaptionFontSize: 10,
		CaptionRegion:   0.75,
		FootnoteFont:    8,
	}
}

var (
	questionPattern     = regexp.MustCompile(`^\s*(\d+[.)]\s|¿|who|what|when|where|why|how|which|quién|qué|cuándo|dónde|por qué|cómo|cuál)`)
	answerChoicePattern = regexp.MustCompile(`^\s*[A-Da-d][.)]\s`)
	instructionPattern  = regexp.MustCompile(`^\s*(instructions?|instrucciones|directions|indicaciones)\s*[:.]`)
)

// BlockClassifier assigns a content category to a positioned text run based
// on its font metrics and vertical position on the page.
type BlockClassifier struct {
	policy ClassifierPolicy
}

// NewBlockClassifier creates a classifier with the given policy.
func NewBlockClassifier(policy ClassifierPolicy) *BlockClassifier {
	return &BlockClassifier{policy: policy}
}

// Classify is a pure function: the same run on the same page always yields
// the same category.
func (c *BlockClassifier) Classify(run domain.TextRun, pageHeight float64) domain.BlockCategory {
	if pageHeight <= 0 {
		pageHeight = 792 // letter height in points
	}

	text := strings.ToLower(strings.TrimSpace(run.Text))
	verticalPos := run.BBox.Y1 / pageHeight

	// Layout evidence first: large type dominates lexical patterns.
	if run.FontSize >= c.policy.TitleFontSize && verticalPos < c.policy.TitleRegion {
		return domain.BlockTitle
	}
	if run.FontSize >= c.policy.HeadingFontSize {
		return domain.BlockHeading
	}

	if questionPattern.MatchString(text) {
		return domain.BlockQuestion
	}
	if answerChoicePattern.MatchString(run.Text) {
		return domain.BlockAnswerChoice
	}
	if instructionPattern.MatchString(text) {
		return domain.BlockInstruction
	}

	if run.FontSize > 0 && run.FontSize <= c.policy.CaptionFontSize && verticalPos > c.policy.CaptionRegion {
		return domain.BlockCaption
	}
	if run.FontSize > 0 && run.FontSize <= c.policy.FootnoteFont {
		return domain.BlockFootnote
	}

	return domain.BlockParagraph
}
