package domain

// IssueSeverity grades how much a quality issue should weigh on the overall
// score.
type IssueSeverity string

const (
	SeverityLow    IssueSeverity = "low"
	SeverityMedium IssueSeverity = "medium"
	SeverityHigh   IssueSeverity = "high"
)

// IssueCategory is the closed set of quality issue kinds the validator can
// raise.
type IssueCategory string

const (
	IssueTextExtraction    IssueCategory = "text_extraction"
	IssueLanguageDetection IssueCategory = "language_detection"
	IssueImageExtraction   IssueCategory = "image_extraction"
	IssueCorrelation       IssueCategory = "correlation"
	IssuePageCoverage      IssueCategory = "page_coverage"
)

// QualityIssue is one categorized finding from the validator.
type QualityIssue struct {
	Severity      IssueSeverity `json:"severity"`
	Category      IssueCategory `json:"category"`
	Message       string        `json:"message"`
	AffectedPages []int         `json:"affected_pages,omitempty"`
}

// QualityReport is the validator's output, recomputed wholesale on each run.
type QualityReport struct {
	DocumentID string `json:"document_id"`

	TextConfidence     float64 `json:"text_confidence"`
	LanguageConfidence float64 `json:"language_confidence"`
	OverallScore       float64 `json:"overall_score"`

	Issues []QualityIssue `json:"issues"`

	// The status the gating decision maps the score to.
	Decision ProcessingStatus `json:"decision"`
}

// CountBySeverity returns how many issues carry the given severity.
func (r *QualityReport) CountBySeverity(s IssueSeverity) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == s {
			n++
		}
	}
	return n
}
