package service

import (
	"testing"

	"edu-document-pipeline/internal/domain"
)

func newTestValidator() *QualityValidator {
	return NewQualityValidator(DefaultQualityPolicy(), NewMockLogger())
}

func detectedBlock(page int, content string, words int, confidence float64) *domain.TextBlock {
	return &domain.TextBlock{
		ID:                 "b",
		DocumentID:         "doc1",
		PageNumber:         page,
		Content:            content,
		WordCount:          words,
		DetectedLanguage:   domain.LanguageSpanish,
		LanguageConfidence: confidence,
	}
}

func TestQualityValidator_NoBlocksScoresLow(t *testing.T) {
	validator := newTestValidator()
	doc := &domain.Document{ID: "doc1", PageCount: 3}

	report := validator.Validate(doc, nil, nil, nil)

	if report.TextConfidence != 0.0 {
		t.Errorf("Expected empty text confidence 0.0, got %v", report.TextConfidence)
	}
	if report.OverallScore > 0.5 {
		t.Errorf("Expected overall score at most 0.5 with no blocks, got %v", report.OverallScore)
	}
	if report.Decision != domain.StatusRequiresReview {
		t.Errorf("Expected requires_review, got %q", report.Decision)
	}
	if report.CountBySeverity(domain.SeverityHigh) < 2 {
		t.Errorf("Expected high issues for empty text and missing language, got %d",
			report.CountBySeverity(domain.SeverityHigh))
	}
}

func TestQualityValidator_SparseText(t *testing.T) {
	validator := newTestValidator()
	doc := &domain.Document{ID: "doc1", PageCount: 1}
	blocks := []*domain.TextBlock{detectedBlock(1, "muy poco texto", 3, 0.9)}

	report := validator.Validate(doc, blocks, nil, nil)
	if report.TextConfidence != 0.3 {
		t.Errorf("Expected sparse confidence 0.3, got %v", report.TextConfidence)
	}
	if report.Decision != domain.StatusRequiresReview {
		t.Errorf("Expected requires_review for sparse text, got %q", report.Decision)
	}
}

func TestQualityValidator_NoisyText(t *testing.T) {
	validator := newTestValidator()
	doc := &domain.Document{ID: "doc1", PageCount: 1}
	blocks := []*domain.TextBlock{
		detectedBlock(1, "@@@###$$$%%%^^^&&&***((()))", 8, 0.9),
		detectedBlock(1, "texto normal con suficientes palabras para pasar el piso", 9, 0.9),
	}

	report := validator.Validate(doc, blocks, nil, nil)
	if report.TextConfidence != 0.6 {
		t.Errorf("Expected noisy confidence 0.6, got %v", report.TextConfidence)
	}
}

func TestQualityValidator_PartialPageCoverage(t *testing.T) {
	validator := newTestValidator()
	doc := &domain.Document{ID: "doc1", PageCount: 4}
	// Text on 2 of 4 pages: 50% coverage, below the 80% line.
	blocks := []*domain.TextBlock{
		detectedBlock(1, "texto de la primera página con varias palabras útiles", 9, 0.9),
		detectedBlock(2, "texto de la segunda página con varias palabras útiles", 9, 0.9),
	}

	report := validator.Validate(doc, blocks, nil, nil)
	if report.TextConfidence != 0.7 {
		t.Errorf("Expected partial coverage confidence 0.7, got %v", report.TextConfidence)
	}

	var coverage *domain.QualityIssue
	for i := range report.Issues {
		if report.Issues[i].Category == domain.IssuePageCoverage {
			coverage = &report.Issues[i]
		}
	}
	if coverage == nil {
		t.Fatal("Expected a page coverage issue")
	}
	if len(coverage.AffectedPages) != 2 {
		t.Errorf("Expected 2 affected pages, got %v", coverage.AffectedPages)
	}
}

func TestQualityValidator_CleanDocumentCompletes(t *testing.T) {
	validator := newTestValidator()
	doc := &domain.Document{ID: "doc1", PageCount: 2}
	blocks := []*domain.TextBlock{
		detectedBlock(1, "Los animales viven en diferentes lugares del mundo entero.", 9, 0.9),
		detectedBlock(2, "Cada uno tiene su propio lugar donde puede vivir bien.", 10, 0.9),
	}

	report := validator.Validate(doc, blocks, nil, nil)
	if report.TextConfidence != 0.95 {
		t.Errorf("Expected clean confidence 0.95, got %v", report.TextConfidence)
	}
	if report.Decision != domain.StatusCompleted {
		t.Errorf("Expected completed, got %q", report.Decision)
	}
	if report.OverallScore < 0.7 {
		t.Errorf("Expected score at or above the gate, got %v", report.OverallScore)
	}
}

func TestQualityValidator_LowLanguageConfidenceIssue(t *testing.T) {
	validator := newTestValidator()
	doc := &domain.Document{ID: "doc1", PageCount: 1}
	blocks := []*domain.TextBlock{
		detectedBlock(1, "texto con suficientes palabras para superar el piso mínimo", 10, 0.5),
	}

	report := validator.Validate(doc, blocks, nil, nil)
	if report.LanguageConfidence != 0.5 {
		t.Errorf("Expected language confidence 0.5, got %v", report.LanguageConfidence)
	}

	found := false
	for _, issue := range report.Issues {
		if issue.Category == domain.IssueLanguageDetection && issue.Severity == domain.SeverityLow {
			found = true
		}
	}
	if !found {
		t.Error("Expected a low-severity language detection issue")
	}
}

func TestQualityValidator_ImageIssuesAreAdvisoryOnly(t *testing.T) {
	validator := newTestValidator()
	doc := &domain.Document{ID: "doc1", PageCount: 1}
	blocks := []*domain.TextBlock{
		detectedBlock(1, "Los animales viven en diferentes lugares del mundo entero.", 10, 0.9),
	}
	// Icon-sized, uncorrelated image: raises low-severity issues only.
	images := []*domain.ImageBlock{
		{ID: "img1", DocumentID: "doc1", PageNumber: 1, ImageType: domain.ImageIcon, StoragePath: "doc1/page-1-img-0.png"},
	}

	withImages := validator.Validate(doc, blocks, images, nil)
	withoutImages := validator.Validate(doc, blocks, nil, nil)

	if withImages.TextConfidence != withoutImages.TextConfidence {
		t.Error("Image issues must not change text confidence")
	}
	if withImages.LanguageConfidence != withoutImages.LanguageConfidence {
		t.Error("Image issues must not change language confidence")
	}
	if len(withImages.Issues) <= len(withoutImages.Issues) {
		t.Error("Expected advisory image issues to be recorded")
	}
}

func TestQualityValidator_HighSeverityPenalty(t *testing.T) {
	validator := newTestValidator()
	doc := &domain.Document{ID: "doc1", PageCount: 1}

	// Blocks without language verdicts: high issue plus zero language confidence.
	blocks := []*domain.TextBlock{
		{ID: "b1", DocumentID: "doc1", PageNumber: 1,
			Content: "texto con suficientes palabras para superar el piso mínimo", WordCount: 10,
			DetectedLanguage: domain.LanguagePending},
	}

	report := validator.Validate(doc, blocks, nil, nil)
	// (0.95 + 0.0)/2 - 0.15 = 0.325
	if report.OverallScore < 0.32 || report.OverallScore > 0.33 {
		t.Errorf("Expected score near 0.325, got %v", report.OverallScore)
	}
	if report.Decision != domain.StatusRequiresReview {
		t.Errorf("Expected requires_review, got %q", report.Decision)
	}
}

func TestQualityValidator_ScoreNeverNegative(t *testing.T) {
	validator := newTestValidator()
	doc := &domain.Document{ID: "doc1", PageCount: 5}

	report := validator.Validate(doc, nil, nil, nil)
	if report.OverallScore < 0 {
		t.Errorf("Expected clamped score, got %v", report.OverallScore)
	}
}

func TestNonAlnumRatio(t *testing.T) {
	if got := nonAlnumRatio(""); got != 0 {
		t.Errorf("Expected 0 for empty text, got %v", got)
	}
	if got := nonAlnumRatio("abc def"); got != 0 {
		t.Errorf("Expected 0 for clean text, got %v", got)
	}
	if got := nonAlnumRatio("@@@@"); got != 1 {
		t.Errorf("Expected 1 for symbols only, got %v", got)
	}
}
