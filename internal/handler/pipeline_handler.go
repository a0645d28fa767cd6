package handler

import (
	"errors"
	"net/http"

	"edu-document-pipeline/internal/domain"
	"edu-document-pipeline/internal/service"

	"github.com/gorilla/mux"
)

// PipelineHandler exposes pipeline runs over HTTP.
type PipelineHandler struct {
	pipeline  *service.PipelineService
	documents domain.DocumentRepository
	logger    domain.Logger
}

// NewPipelineHandler creates a new pipeline handler
func NewPipelineHandler(pipeline *service.PipelineService, documents domain.DocumentRepository, logger domain.Logger) *PipelineHandler {
	return &PipelineHandler{
		pipeline:  pipeline,
		documents: documents,
		logger:    logger,
	}
}

// ProcessDocument runs the full pipeline on a document and returns the
// per-step outcome summary.
func (h *PipelineHandler) ProcessDocument(w http.ResponseWriter, r *http.Request) {
	doc, token, ok := h.ownedDocument(w, r)
	if !ok {
		return
	}

	result, err := h.pipeline.Process(r.Context(), doc.ID, token)
	if err != nil {
		h.logger.Error("Pipeline run failed", err, "doc_id", doc.ID)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// RunStage re-runs a single pipeline stage on a document.
func (h *PipelineHandler) RunStage(w http.ResponseWriter, r *http.Request) {
	doc, token, ok := h.ownedDocument(w, r)
	if !ok {
		return
	}

	stage := domain.Stage(mux.Vars(r)["stage"])

	var err error
	switch stage {
	case domain.StageTextExtraction:
		err = h.pipeline.RunTextExtraction(r.Context(), doc.ID, token)
	case domain.StageImageExtraction:
		err = h.pipeline.RunImageExtraction(r.Context(), doc.ID, token)
	case domain.StageLanguageDetection:
		err = h.pipeline.RunLanguageDetection(r.Context(), doc.ID, token)
	case domain.StageContentCorrelation:
		err = h.pipeline.RunCorrelation(r.Context(), doc.ID, token)
	case domain.StageQualityValidation:
		report, verr := h.pipeline.RunValidation(r.Context(), doc.ID, token)
		if verr != nil {
			h.logger.Error("Stage run failed", verr, "doc_id", doc.ID, "stage", stage)
			writeServiceError(w, verr)
			return
		}
		writeJSON(w, http.StatusOK, report)
		return
	default:
		writeError(w, http.StatusBadRequest, "Unknown stage: "+string(stage))
		return
	}

	if err != nil {
		h.logger.Error("Stage run failed", err, "doc_id", doc.ID, "stage", stage)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"document_id": doc.ID,
		"stage":       stage,
		"success":     true,
	})
}

// GetQuality validates the document's current extracted content and returns
// the quality report without changing its status.
func (h *PipelineHandler) GetQuality(w http.ResponseWriter, r *http.Request) {
	doc, token, ok := h.ownedDocument(w, r)
	if !ok {
		return
	}

	report, err := h.pipeline.RunValidation(r.Context(), doc.ID, token)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *PipelineHandler) ownedDocument(w http.ResponseWriter, r *http.Request) (*domain.Document, string, bool) {
	user, ok := GetUserFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "User not found in context")
		return nil, "", false
	}
	token, ok := GetTokenFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Token not found in context")
		return nil, "", false
	}

	documentID := mux.Vars(r)["id"]
	if documentID == "" {
		writeError(w, http.StatusBadRequest, "Document ID is required")
		return nil, "", false
	}

	doc, err := h.documents.GetByID(documentID, token)
	if err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			writeError(w, http.StatusNotFound, "Document not found")
			return nil, "", false
		}
		writeServiceError(w, err)
		return nil, "", false
	}
	if doc.UserID != user.ID {
		writeError(w, http.StatusForbidden, "Access denied")
		return nil, "", false
	}
	return doc, token, true
}
