package service

import (
	"context"
	"fmt"
	"time"

	"edu-document-pipeline/internal/domain"
	apperrors "edu-document-pipeline/pkg/errors"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// PipelineDeps bundles everything the orchestrator needs.
type PipelineDeps struct {
	Documents    domain.DocumentRepository
	TextBlocks   domain.TextBlockRepository
	ImageBlocks  domain.ImageBlockRepository
	Correlations domain.CorrelationRepository
	Logs         domain.ProcessingLogRepository
	Storage      domain.StorageService
	Decoder      domain.PDFDecoder
	Assessments  domain.AssessmentGenerator
	Logger       domain.Logger
	Config       domain.Config

	// Optional policy overrides; zero values fall back to defaults.
	Classifier  *ClassifierPolicy
	Detector    *DetectorPolicy
	Correlation *CorrelationPolicy
	Quality     *QualityPolicy
}

// PipelineService drives a document from pending to a terminal status.
//
// Within one run, language detection and image extraction execute
// concurrently; correlation is a join point gated on both extractions
// succeeding. Stage failures are swallowed here and downgrade the final
// status; only a missing document or missing bytes aborts the run.
//
// A run is not idempotent across repeated invocations on the same document
// unless the backing stores are upsert-safe; callers must serialize to one
// in-flight run per document id.
type PipelineService struct {
	deps PipelineDeps

	extractor *TextExtractor
	images    *ImageExtractor
	detector  *LanguageDetector
	engine    *CorrelationEngine
	validator *QualityValidator
}

// NewPipelineService wires the stage components with their policies.
func NewPipelineService(deps PipelineDeps) *PipelineService {
	classifierPolicy := DefaultClassifierPolicy()
	if deps.Classifier != nil {
		classifierPolicy = *deps.Classifier
	}
	detectorPolicy := DefaultDetectorPolicy()
	if deps.Detector != nil {
		detectorPolicy = *deps.Detector
	}
	correlationPolicy := DefaultCorrelationPolicy()
	if deps.Correlation != nil {
		correlationPolicy = *deps.Correlation
	}
	qualityPolicy := DefaultQualityPolicy()
	if deps.Quality != nil {
		qualityPolicy = *deps.Quality
	}

	return &PipelineService{
		deps:      deps,
		extractor: NewTextExtractor(NewBlockClassifier(classifierPolicy), deps.Logger),
		images:    NewImageExtractor(deps.Storage, deps.ImageBlocks, deps.Logger, deps.Config.GetAssetBucket()),
		detector:  NewLanguageDetector(detectorPolicy, deps.Logger),
		engine:    NewCorrelationEngine(correlationPolicy, deps.Logger),
		validator: NewQualityValidator(qualityPolicy, deps.Logger),
	}
}

// Process runs the full pipeline for one document.
func (s *PipelineService) Process(ctx context.Context, documentID string, token string) (*domain.ProcessingResult, error) {
	started := time.Now()
	result := &domain.ProcessingResult{DocumentID: documentID}

	doc, err := s.deps.Documents.GetByID(documentID, token)
	if err != nil || doc == nil {
		result.Error = "document not found"
		result.Status = domain.StatusFailed
		return result, apperrors.NewNotFoundError("document not found")
	}

	s.markProcessing(doc, token)

	pdfBytes, err := s.deps.Storage.Download(ctx, s.deps.Config.GetDocumentBucket(), doc.FilePath)
	if err != nil {
		s.writeLog(documentID, domain.StageTextExtraction, domain.LogError,
			"document bytes not found in storage", map[string]interface{}{"path": doc.FilePath, "error": err.Error()}, token)
		s.finishDocument(doc, domain.StatusFailed, nil, token)
		result.Status = domain.StatusFailed
		result.Error = "document bytes not found"
		result.ProcessingTimeMS = time.Since(started).Milliseconds()
		return result, apperrors.NewNotFoundError("document bytes not found")
	}

	pages, decodeErr := s.deps.Decoder.DecodePages(pdfBytes)

	// Step (c): text extraction.
	var blocks []*domain.TextBlock
	result.Steps.TextExtraction = s.timedStep(func() error {
		if decodeErr != nil {
			return fmt.Errorf("pdf decode failed: %w", decodeErr)
		}
		var stepErr error
		blocks, stepErr = s.runTextExtraction(doc, pages, token)
		return stepErr
	}, documentID, domain.StageTextExtraction, token)

	// Step (d): language detection and image extraction, concurrently.
	// Failures are captured per branch so one branch cannot abort the other.
	var imageBlocks []*domain.ImageBlock
	var langOutcome, imgOutcome domain.StepOutcome

	stageCtx, cancel := s.stageContext(ctx)
	g, gctx := errgroup.WithContext(stageCtx)
	g.Go(func() error {
		langOutcome = s.timedStep(func() error {
			return s.runLanguageDetection(doc, blocks, token)
		}, documentID, domain.StageLanguageDetection, token)
		return nil
	})
	g.Go(func() error {
		imgOutcome = s.timedStep(func() error {
			if decodeErr != nil {
				return fmt.Errorf("pdf decode failed: %w", decodeErr)
			}
			var stepErr error
			imageBlocks, stepErr = s.runImageExtraction(gctx, doc, pages, token)
			return stepErr
		}, documentID, domain.StageImageExtraction, token)
		return nil
	})
	_ = g.Wait()
	cancel()
	result.Steps.LanguageDetection = langOutcome
	result.Steps.ImageExtraction = imgOutcome

	// Step (e): correlation only once both extractions have succeeded.
	var correlations []*domain.Correlation
	if result.Steps.TextExtraction.Success && result.Steps.ImageExtraction.Success {
		result.Steps.ContentCorrelation = s.timedStep(func() error {
			var stepErr error
			correlations, stepErr = s.runCorrelation(doc, blocks, imageBlocks, token)
			return stepErr
		}, documentID, domain.StageContentCorrelation, token)
	} else {
		result.Steps.ContentCorrelation = domain.StepOutcome{Skipped: true}
		s.writeLog(documentID, domain.StageContentCorrelation, domain.LogWarning,
			"skipped: prerequisite extraction did not succeed", nil, token)
	}

	// Step (f): quality validation runs unconditionally.
	var report *domain.QualityReport
	result.Steps.QualityValidation = s.timedStep(func() error {
		report = s.validator.Validate(doc, blocks, imageBlocks, correlations)
		return nil
	}, documentID, domain.StageQualityValidation, token)

	allAttemptedOK := stepsSucceeded(
		result.Steps.TextExtraction,
		result.Steps.ImageExtraction,
		result.Steps.LanguageDetection,
		result.Steps.ContentCorrelation,
		result.Steps.QualityValidation,
	)

	finalStatus := domain.StatusRequiresReview
	if allAttemptedOK && report != nil {
		finalStatus = report.Decision
	}

	// Step (g): assessment generation for content types that require it,
	// and only for auto-approved documents.
	if doc.ContentType.RequiresAssessment() && finalStatus == domain.StatusCompleted {
		result.Steps.AssessmentGeneration = s.timedStep(func() error {
			return s.runAssessmentGeneration(ctx, doc, blocks, correlations, token)
		}, documentID, domain.StageAssessmentGeneration, token)
		if !result.Steps.AssessmentGeneration.Success {
			finalStatus = domain.StatusRequiresReview
		}
	} else {
		result.Steps.AssessmentGeneration = domain.StepOutcome{Skipped: true}
	}

	s.finishDocument(doc, finalStatus, report, token)

	result.Status = finalStatus
	result.Success = finalStatus == domain.StatusCompleted
	result.ProcessingTimeMS = time.Since(started).Milliseconds()
	return result, nil
}

// RunTextExtraction re-runs the extraction stage alone.
func (s *PipelineService) RunTextExtraction(ctx context.Context, documentID string, token string) error {
	doc, pages, err := s.loadDecoded(ctx, documentID, token)
	if err != nil {
		return err
	}
	outcome := s.timedStep(func() error {
		_, stepErr := s.runTextExtraction(doc, pages, token)
		return stepErr
	}, documentID, domain.StageTextExtraction, token)
	return outcomeErr(outcome)
}

// RunImageExtraction re-runs the image stage alone.
func (s *PipelineService) RunImageExtraction(ctx context.Context, documentID string, token string) error {
	doc, pages, err := s.loadDecoded(ctx, documentID, token)
	if err != nil {
		return err
	}
	outcome := s.timedStep(func() error {
		_, stepErr := s.runImageExtraction(ctx, doc, pages, token)
		return stepErr
	}, documentID, domain.StageImageExtraction, token)
	return outcomeErr(outcome)
}

// RunLanguageDetection re-runs detection over the stored text blocks.
func (s *PipelineService) RunLanguageDetection(ctx context.Context, documentID string, token string) error {
	doc, err := s.deps.Documents.GetByID(documentID, token)
	if err != nil {
		return apperrors.NewNotFoundError("document not found")
	}
	blocks, err := s.deps.TextBlocks.GetByDocumentID(documentID, token)
	if err != nil {
		return apperrors.NewInternalError("failed to load text blocks", err)
	}
	outcome := s.timedStep(func() error {
		return s.runLanguageDetection(doc, blocks, token)
	}, documentID, domain.StageLanguageDetection, token)
	return outcomeErr(outcome)
}

// RunCorrelation re-runs correlation over the stored blocks and images.
func (s *PipelineService) RunCorrelation(ctx context.Context, documentID string, token string) error {
	doc, err := s.deps.Documents.GetByID(documentID, token)
	if err != nil {
		return apperrors.NewNotFoundError("document not found")
	}
	blocks, err := s.deps.TextBlocks.GetByDocumentID(documentID, token)
	if err != nil {
		return apperrors.NewInternalError("failed to load text blocks", err)
	}
	images, err := s.deps.ImageBlocks.GetByDocumentID(documentID, token)
	if err != nil {
		return apperrors.NewInternalError("failed to load image blocks", err)
	}
	outcome := s.timedStep(func() error {
		_, stepErr := s.runCorrelation(doc, blocks, images, token)
		return stepErr
	}, documentID, domain.StageContentCorrelation, token)
	return outcomeErr(outcome)
}

// RunValidation re-runs quality validation and re-applies the gating
// decision to the document.
func (s *PipelineService) RunValidation(ctx context.Context, documentID string, token string) (*domain.QualityReport, error) {
	doc, err := s.deps.Documents.GetByID(documentID, token)
	if err != nil {
		return nil, apperrors.NewNotFoundError("document not found")
	}
	blocks, err := s.deps.TextBlocks.GetByDocumentID(documentID, token)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load text blocks", err)
	}
	images, err := s.deps.ImageBlocks.GetByDocumentID(documentID, token)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load image blocks", err)
	}
	correlations, err := s.deps.Correlations.GetByDocumentID(documentID, token)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load correlations", err)
	}

	var report *domain.QualityReport
	s.timedStep(func() error {
		report = s.validator.Validate(doc, blocks, images, correlations)
		return nil
	}, documentID, domain.StageQualityValidation, token)

	s.finishDocument(doc, report.Decision, report, token)
	return report, nil
}

// --- stage bodies ---

func (s *PipelineService) runTextExtraction(doc *domain.Document, pages []domain.Page, token string) ([]*domain.TextBlock, error) {
	blocks := s.extractor.Extract(doc.ID, pages)
	if len(blocks) > 0 {
		if err := s.deps.TextBlocks.InsertMany(blocks, token); err != nil {
			return nil, fmt.Errorf("failed to persist text blocks: %w", err)
		}
	}

	wordCount := 0
	for _, b := range blocks {
		wordCount += b.WordCount
	}
	pageCount := len(pages)
	if err := s.deps.Documents.Update(doc.ID, &domain.DocumentUpdate{
		PageCount: &pageCount,
		WordCount: &wordCount,
	}, token); err != nil {
		s.deps.Logger.Warn("Failed to update document counts", "doc_id", doc.ID, "error", err)
	}
	doc.PageCount = pageCount
	doc.WordCount = wordCount
	return blocks, nil
}

func (s *PipelineService) runImageExtraction(ctx context.Context, doc *domain.Document, pages []domain.Page, token string) ([]*domain.ImageBlock, error) {
	imageBlocks, err := s.images.Extract(ctx, doc.ID, pages, token)
	if err != nil {
		return nil, err
	}
	imageCount := len(imageBlocks)
	if err := s.deps.Documents.Update(doc.ID, &domain.DocumentUpdate{ImageCount: &imageCount}, token); err != nil {
		s.deps.Logger.Warn("Failed to update image count", "doc_id", doc.ID, "error", err)
	}
	doc.ImageCount = imageCount
	return imageBlocks, nil
}

func (s *PipelineService) runLanguageDetection(doc *domain.Document, blocks []*domain.TextBlock, token string) error {
	verdicts, rollup := s.detector.DetectAll(blocks)

	// Reflect verdicts on the in-memory blocks so validation sees them.
	byID := make(map[string]domain.BlockLanguage, len(verdicts))
	for _, v := range verdicts {
		byID[v.BlockID] = v
	}
	for _, b := range blocks {
		if v, ok := byID[b.ID]; ok {
			b.DetectedLanguage = v.Language
			b.LanguageConfidence = v.Confidence
			b.Dialect = v.Dialect
		}
	}

	if len(verdicts) > 0 {
		if err := s.deps.TextBlocks.UpdateLanguage(verdicts, token); err != nil {
			return fmt.Errorf("failed to persist language verdicts: %w", err)
		}
	}

	if rollup.Primary != domain.LanguagePending {
		if err := s.deps.Documents.Update(doc.ID, &domain.DocumentUpdate{
			PrimaryLanguage:    &rollup.Primary,
			LanguageConfidence: &rollup.Confidence,
		}, token); err != nil {
			return fmt.Errorf("failed to persist document language: %w", err)
		}
		doc.PrimaryLanguage = rollup.Primary
		doc.LanguageConfidence = rollup.Confidence
	}
	return nil
}

func (s *PipelineService) runCorrelation(doc *domain.Document, blocks []*domain.TextBlock, images []*domain.ImageBlock, token string) ([]*domain.Correlation, error) {
	correlations := s.engine.Correlate(doc.ID, blocks, images)
	if len(correlations) > 0 {
		if err := s.deps.Correlations.InsertMany(correlations, token); err != nil {
			return nil, fmt.Errorf("failed to persist correlations: %w", err)
		}
	}
	return correlations, nil
}

func (s *PipelineService) runAssessmentGeneration(ctx context.Context, doc *domain.Document, blocks []*domain.TextBlock, correlations []*domain.Correlation, token string) error {
	if s.deps.Assessments == nil {
		return fmt.Errorf("assessment generator is not configured")
	}
	stageCtx, cancel := s.stageContext(ctx)
	defer cancel()
	return s.deps.Assessments.Generate(stageCtx, doc, blocks, correlations, token)
}

// --- plumbing ---

// timedStep runs one step, writes its single log entry and returns the
// outcome. Step errors never propagate past this point.
func (s *PipelineService) timedStep(fn func() error, documentID string, stage domain.Stage, token string) domain.StepOutcome {
	started := time.Now()
	err := fn()
	outcome := domain.StepOutcome{
		Attempted:  true,
		Success:    err == nil,
		DurationMS: time.Since(started).Milliseconds(),
	}

	details := map[string]interface{}{"duration_ms": outcome.DurationMS}
	if err != nil {
		outcome.Error = err.Error()
		details["error"] = err.Error()
		s.writeLog(documentID, stage, domain.LogError, "stage failed", details, token)
		s.deps.Logger.Warn("Pipeline stage failed", "doc_id", documentID, "stage", stage, "error", err)
	} else {
		s.writeLog(documentID, stage, domain.LogSuccess, "stage completed", details, token)
	}
	return outcome
}

func (s *PipelineService) writeLog(documentID string, stage domain.Stage, level domain.LogLevel, message string, details map[string]interface{}, token string) {
	entry := &domain.ProcessingLogEntry{
		ID:         uuid.New().String(),
		DocumentID: documentID,
		Stage:      stage,
		Level:      level,
		Message:    message,
		Details:    details,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.deps.Logs.Append(entry, token); err != nil {
		s.deps.Logger.Warn("Failed to append processing log", "doc_id", documentID, "stage", stage, "error", err)
	}
}

func (s *PipelineService) markProcessing(doc *domain.Document, token string) {
	now := time.Now().UTC()
	status := domain.StatusProcessing
	if err := s.deps.Documents.Update(doc.ID, &domain.DocumentUpdate{
		ProcessingStatus:    &status,
		ProcessingStartedAt: &now,
	}, token); err != nil {
		s.deps.Logger.Warn("Failed to mark document processing", "doc_id", doc.ID, "error", err)
	}
	doc.ProcessingStatus = status
	doc.ProcessingStartedAt = &now
}

func (s *PipelineService) finishDocument(doc *domain.Document, status domain.ProcessingStatus, report *domain.QualityReport, token string) {
	now := time.Now().UTC()
	update := &domain.DocumentUpdate{
		ProcessingStatus:      &status,
		ProcessingCompletedAt: &now,
	}
	if report != nil {
		update.QualityScore = &report.OverallScore
	}
	if err := s.deps.Documents.Update(doc.ID, update, token); err != nil {
		s.deps.Logger.Error("Failed to finalize document status", err, "doc_id", doc.ID, "status", status)
	}
	doc.ProcessingStatus = status
	doc.ProcessingCompletedAt = &now
	if report != nil {
		doc.QualityScore = report.OverallScore
	}
}

func (s *PipelineService) loadDecoded(ctx context.Context, documentID string, token string) (*domain.Document, []domain.Page, error) {
	doc, err := s.deps.Documents.GetByID(documentID, token)
	if err != nil || doc == nil {
		return nil, nil, apperrors.NewNotFoundError("document not found")
	}
	pdfBytes, err := s.deps.Storage.Download(ctx, s.deps.Config.GetDocumentBucket(), doc.FilePath)
	if err != nil {
		return nil, nil, apperrors.NewNotFoundError("document bytes not found")
	}
	pages, err := s.deps.Decoder.DecodePages(pdfBytes)
	if err != nil {
		return nil, nil, apperrors.NewProcessingError("failed to decode document", err)
	}
	return doc, pages, nil
}

func (s *PipelineService) stageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := time.Duration(s.deps.Config.GetStageTimeoutSeconds()) * time.Second
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

func stepsSucceeded(steps ...domain.StepOutcome) bool {
	for _, step := range steps {
		if step.Attempted && !step.Success {
			return false
		}
	}
	return true
}

func outcomeErr(outcome domain.StepOutcome) error {
	if outcome.Success {
		return nil
	}
	return apperrors.NewProcessingError(outcome.Error, nil)
}
