package handler

import (
	"net/http"

	"edu-document-pipeline/internal/config"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(container *config.Container) http.Handler {
	router := mux.NewRouter()

	// API prefix
	api := router.PathPrefix("/api/v1").Subrouter()

	// Health check endpoint (no auth required)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"edu-document-pipeline"}`))
	}).Methods("GET")

	// Initialize handlers
	documentHandler := NewDocumentHandler(
		container.UploadService,
		container.DocumentRepository,
		container.TextBlockRepository,
		container.ImageBlockRepository,
		container.CorrelationRepository,
		container.LogRepository,
		container.Logger,
	)
	pipelineHandler := NewPipelineHandler(container.PipelineService, container.DocumentRepository, container.Logger)

	// Auth middleware for protected routes
	authMiddleware := AuthMiddleware(container.AuthService, container.Logger)

	// Protected routes (require authentication)
	protected := api.PathPrefix("").Subrouter()
	protected.Use(authMiddleware)

	// Document routes
	protected.HandleFunc("/documents", documentHandler.UploadDocument).Methods("POST")
	protected.HandleFunc("/documents", documentHandler.GetDocuments).Methods("GET")
	protected.HandleFunc("/documents/{id}", documentHandler.GetDocument).Methods("GET")
	protected.HandleFunc("/documents/{id}/blocks", documentHandler.GetBlocks).Methods("GET")
	protected.HandleFunc("/documents/{id}/images", documentHandler.GetImages).Methods("GET")
	protected.HandleFunc("/documents/{id}/correlations", documentHandler.GetCorrelations).Methods("GET")
	protected.HandleFunc("/documents/{id}/logs", documentHandler.GetLogs).Methods("GET")

	// Pipeline routes
	protected.HandleFunc("/documents/{id}/process", pipelineHandler.ProcessDocument).Methods("POST")
	protected.HandleFunc("/documents/{id}/stages/{stage}", pipelineHandler.RunStage).Methods("POST")
	protected.HandleFunc("/documents/{id}/quality", pipelineHandler.GetQuality).Methods("GET")

	// Configure CORS
	c := cors.New(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173", // dashboard dev server
			"http://localhost:4173", // dashboard preview
			"http://localhost:3000", // alternative dev port
		},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-CSRF-Token",
		},
		ExposedHeaders: []string{
			"Link",
		},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	})

	return c.Handler(router)
}
