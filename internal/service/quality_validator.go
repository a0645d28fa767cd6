package service

import (
	"fmt"
	"unicode"

	"edu-document-pipeline/internal/domain"
)

// QualityPolicy holds the scoring tiers and the gating threshold. The gate is
// a tunable policy constant, not a structural invariant.
type QualityPolicy struct {
	MinWordCount      int
	NoisyBlockRatio   float64 // share of noisy blocks that downgrades text confidence
	NoisyCharRatio    float64 // non-alphanumeric share that marks a block noisy
	PageCoverageRatio float64

	// Text confidence tiers.
	ConfidenceEmpty    float64
	ConfidenceSparse   float64
	ConfidenceNoisy    float64
	ConfidencePartial  float64
	ConfidenceClean    float64
	LanguageWarnBelow  float64
	TinyImageRatio     float64
	UncorrelatedRatio  float64
	HighIssuePenalty   float64
	MediumIssuePenalty float64
	ApprovalThreshold  float64
}

// DefaultQualityPolicy returns the production scoring policy.
func DefaultQualityPolicy() QualityPolicy {
	return QualityPolicy{
		MinWordCount:       10,
		NoisyBlockRatio:    0.2,
		NoisyCharRatio:     0.3,
		PageCoverageRatio:  0.8,
		ConfidenceEmpty:    0.0,
		ConfidenceSparse:   0.3,
		ConfidenceNoisy:    0.6,
		ConfidencePartial:  0.7,
		ConfidenceClean:    0.95,
		LanguageWarnBelow:  0.7,
		TinyImageRatio:     0.5,
		UncorrelatedRatio:  0.3,
		HighIssuePenalty:   0.15,
		MediumIssuePenalty: 0.08,
		ApprovalThreshold:  0.7,
	}
}

// QualityValidator aggregates extraction and detection confidences plus
// structural checks into an overall score and a gating decision.
type QualityValidator struct {
	policy QualityPolicy
	logger domain.Logger
}

// NewQualityValidator creates a validator with the given policy.
func NewQualityValidator(policy QualityPolicy, logger domain.Logger) *QualityValidator {
	return &QualityValidator{policy: policy, logger: logger}
}

// Validate recomputes the quality report wholesale; no history accumulates.
func (v *QualityValidator) Validate(doc *domain.Document, blocks []*domain.TextBlock, images []*domain.ImageBlock, correlations []*domain.Correlation) *domain.QualityReport {
	report := &domain.QualityReport{DocumentID: doc.ID}

	report.TextConfidence = v.textConfidence(doc, blocks, report)
	report.LanguageConfidence = v.languageConfidence(blocks, report)
	v.checkImages(images, correlations, report)

	score := (report.TextConfidence + report.LanguageConfidence) / 2
	score -= v.policy.HighIssuePenalty * float64(report.CountBySeverity(domain.SeverityHigh))
	score -= v.policy.MediumIssuePenalty * float64(report.CountBySeverity(domain.SeverityMedium))
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	report.OverallScore = score

	if score >= v.policy.ApprovalThreshold {
		report.Decision = domain.StatusCompleted
	} else {
		report.Decision = domain.StatusRequiresReview
	}
	return report
}

func (v *QualityValidator) textConfidence(doc *domain.Document, blocks []*domain.TextBlock, report *domain.QualityReport) float64 {
	if len(blocks) == 0 {
		report.Issues = append(report.Issues, domain.QualityIssue{
			Severity: domain.SeverityHigh,
			Category: domain.IssueTextExtraction,
			Message:  "no text content could be extracted",
		})
		return v.policy.ConfidenceEmpty
	}

	totalWords := 0
	noisy := 0
	pagesWithText := make(map[int]struct{})
	for _, b := range blocks {
		totalWords += b.WordCount
		pagesWithText[b.PageNumber] = struct{}{}
		if nonAlnumRatio(b.Content) > v.policy.NoisyCharRatio {
			noisy++
		}
	}

	if totalWords < v.policy.MinWordCount {
		report.Issues = append(report.Issues, domain.QualityIssue{
			Severity: domain.SeverityMedium,
			Category: domain.IssueTextExtraction,
			Message:  fmt.Sprintf("very little text extracted (%d words)", totalWords),
		})
		return v.policy.ConfidenceSparse
	}

	if float64(noisy)/float64(len(blocks)) > v.policy.NoisyBlockRatio {
		report.Issues = append(report.Issues, domain.QualityIssue{
			Severity: domain.SeverityMedium,
			Category: domain.IssueTextExtraction,
			Message:  "extracted text contains a high share of non-alphanumeric noise",
		})
		return v.policy.ConfidenceNoisy
	}

	if doc.PageCount > 0 && float64(len(pagesWithText))/float64(doc.PageCount) < v.policy.PageCoverageRatio {
		var missing []int
		for p := 1; p <= doc.PageCount; p++ {
			if _, ok := pagesWithText[p]; !ok {
				missing = append(missing, p)
			}
		}
		report.Issues = append(report.Issues, domain.QualityIssue{
			Severity:      domain.SeverityMedium,
			Category:      domain.IssuePageCoverage,
			Message:       "some pages produced no text blocks",
			AffectedPages: missing,
		})
		return v.policy.ConfidencePartial
	}

	return v.policy.ConfidenceClean
}

func (v *QualityValidator) languageConfidence(blocks []*domain.TextBlock, report *domain.QualityReport) float64 {
	sum := 0.0
	detected := 0
	for _, b := range blocks {
		if b.DetectedLanguage == domain.LanguagePending || b.DetectedLanguage == "" {
			continue
		}
		sum += b.LanguageConfidence
		detected++
	}

	if detected == 0 {
		report.Issues = append(report.Issues, domain.QualityIssue{
			Severity: domain.SeverityHigh,
			Category: domain.IssueLanguageDetection,
			Message:  "language detection has not produced any verdicts",
		})
		return 0
	}

	mean := sum / float64(detected)
	if mean < v.policy.LanguageWarnBelow {
		report.Issues = append(report.Issues, domain.QualityIssue{
			Severity: domain.SeverityLow,
			Category: domain.IssueLanguageDetection,
			Message:  fmt.Sprintf("low average language confidence (%.2f)", mean),
		})
	}
	return mean
}

// checkImages raises advisory issues only; image problems never alter the two
// confidence numbers directly.
func (v *QualityValidator) checkImages(images []*domain.ImageBlock, correlations []*domain.Correlation, report *domain.QualityReport) {
	if len(images) == 0 {
		return
	}

	tiny := 0
	correlated := make(map[string]struct{})
	for _, c := range correlations {
		correlated[c.ImageBlockID] = struct{}{}
	}
	uncorrelated := 0
	for _, img := range images {
		if img.ImageType == domain.ImageIcon {
			tiny++
		}
		if img.StoragePath == "" {
			report.Issues = append(report.Issues, domain.QualityIssue{
				Severity:      domain.SeverityMedium,
				Category:      domain.IssueImageExtraction,
				Message:       "image block has no storage path",
				AffectedPages: []int{img.PageNumber},
			})
		}
		if _, ok := correlated[img.ID]; !ok {
			uncorrelated++
		}
	}

	if float64(tiny)/float64(len(images)) > v.policy.TinyImageRatio {
		report.Issues = append(report.Issues, domain.QualityIssue{
			Severity: domain.SeverityLow,
			Category: domain.IssueImageExtraction,
			Message:  "most extracted images are icon-sized",
		})
	}
	if float64(uncorrelated)/float64(len(images)) > v.policy.UncorrelatedRatio {
		report.Issues = append(report.Issues, domain.QualityIssue{
			Severity: domain.SeverityLow,
			Category: domain.IssueCorrelation,
			Message:  fmt.Sprintf("%d of %d images have no correlated text", uncorrelated, len(images)),
		})
	}
}

// nonAlnumRatio returns the share of characters that are neither letters,
// digits nor spaces.
func nonAlnumRatio(text string) float64 {
	if text == "" {
		return 0
	}
	total := 0
	other := 0
	for _, r := range text {
		total++
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r) {
			other++
		}
	}
	return float64(other) / float64(total)
}
