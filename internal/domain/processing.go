package domain

import "time"

// Stage identifies one independently invocable unit of the pipeline.
type Stage string

const (
	StageTextExtraction       Stage = "text_extraction"
	StageImageExtraction      Stage = "image_extraction"
	StageLanguageDetection    Stage = "language_detection"
	StageContentCorrelation   Stage = "content_correlation"
	StageQualityValidation    Stage = "quality_validation"
	StageAssessmentGeneration Stage = "assessment_generation"
)

// LogLevel is the severity of a processing log entry.
type LogLevel string

const (
	LogInfo    LogLevel = "info"
	LogWarning LogLevel = "warning"
	LogError   LogLevel = "error"
	LogSuccess LogLevel = "success"
)

// ProcessingLogEntry is an append-only audit record written once per pipeline
// step. Never updated or deleted.
type ProcessingLogEntry struct {
	ID         string                 `json:"id"`
	DocumentID string                 `json:"document_id"`
	Stage      Stage                  `json:"stage"`
	Level      LogLevel               `json:"level"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
}

// StepOutcome reports how a single pipeline step went.
type StepOutcome struct {
	Attempted  bool   `json:"attempted"`
	Success    bool   `json:"success"`
	Skipped    bool   `json:"skipped,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// PipelineSteps collects the outcome of every step in one run.
type PipelineSteps struct {
	TextExtraction       StepOutcome `json:"textExtraction"`
	ImageExtraction      StepOutcome `json:"imageExtraction"`
	LanguageDetection    StepOutcome `json:"languageDetection"`
	ContentCorrelation   StepOutcome `json:"contentCorrelation"`
	QualityValidation    StepOutcome `json:"qualityValidation"`
	AssessmentGeneration StepOutcome `json:"assessmentGeneration"`
}

// ProcessingResult is returned to the caller that triggered a pipeline run.
type ProcessingResult struct {
	Success          bool             `json:"success"`
	DocumentID       string           `json:"documentId"`
	Status           ProcessingStatus `json:"status"`
	Steps            PipelineSteps    `json:"steps"`
	ProcessingTimeMS int64            `json:"processingTimeMs"`
	Error            string           `json:"error,omitempty"`
}
