package config

import (
	"edu-document-pipeline/internal/domain"
	"edu-document-pipeline/internal/pdf"
	"edu-document-pipeline/internal/repository"
	"edu-document-pipeline/internal/service"
	"edu-document-pipeline/pkg/logger"
)

// Container holds all application dependencies
type Container struct {
	Config domain.Config
	Logger domain.Logger

	SupabaseClient domain.SupabaseClient

	DocumentRepository    domain.DocumentRepository
	TextBlockRepository   domain.TextBlockRepository
	ImageBlockRepository  domain.ImageBlockRepository
	CorrelationRepository domain.CorrelationRepository
	LogRepository         domain.ProcessingLogRepository

	Storage domain.StorageService
	Decoder domain.PDFDecoder

	AuthService     domain.AuthService
	UploadService   *service.UploadService
	PipelineService *service.PipelineService
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	cfg := NewConfig()
	appLogger := logger.NewLogger(cfg.GetLogLevel())

	supabaseClient := repository.NewSupabaseClient(cfg, appLogger)

	documentRepo := repository.NewDocumentRepository(supabaseClient, appLogger)
	textBlockRepo := repository.NewTextBlockRepository(supabaseClient, appLogger)
	imageBlockRepo := repository.NewImageBlockRepository(supabaseClient, appLogger)
	correlationRepo := repository.NewCorrelationRepository(supabaseClient, appLogger)
	logRepo := repository.NewProcessingLogRepository(supabaseClient, appLogger)

	storage := service.NewStorageService(cfg.GetSupabaseURL(), cfg.GetSupabaseKey())
	decoder := pdf.NewFitzDecoder(appLogger)

	var assessments domain.AssessmentGenerator
	if cfg.GetVertexProjectID() != "" {
		generator, err := service.NewAssessmentGenerator(
			repository.NewAssessmentRepository(supabaseClient, appLogger),
			appLogger,
			cfg.GetVertexProjectID(),
			cfg.GetVertexLocation(),
		)
		if err != nil {
			appLogger.Warn("Assessment generator unavailable", "error", err)
		} else {
			assessments = generator
		}
	}

	pipeline := service.NewPipelineService(service.PipelineDeps{
		Documents:    documentRepo,
		TextBlocks:   textBlockRepo,
		ImageBlocks:  imageBlockRepo,
		Correlations: correlationRepo,
		Logs:         logRepo,
		Storage:      storage,
		Decoder:      decoder,
		Assessments:  assessments,
		Logger:       appLogger,
		Config:       cfg,
	})

	upload := service.NewUploadService(documentRepo, storage, appLogger, cfg)

	return &Container{
		Config:                cfg,
		Logger:                appLogger,
		SupabaseClient:        supabaseClient,
		DocumentRepository:    documentRepo,
		TextBlockRepository:   textBlockRepo,
		ImageBlockRepository:  imageBlockRepo,
		CorrelationRepository: correlationRepo,
		LogRepository:         logRepo,
		Storage:               storage,
		Decoder:               decoder,
		AuthService:           supabaseClient,
		UploadService:         upload,
		PipelineService:       pipeline,
	}
}

// GetLogger returns the logger instance
func (c *Container) GetLogger() domain.Logger {
	return c.Logger
}

// GetSupabaseClient returns the Supabase client instance
func (c *Container) GetSupabaseClient() domain.SupabaseClient {
	return c.SupabaseClient
}
