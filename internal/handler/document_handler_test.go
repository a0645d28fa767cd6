package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/http/httptest"
	"strings"
	"testing"

	"edu-document-pipeline/internal/domain"
	"edu-document-pipeline/internal/service"

	"github.com/gorilla/mux"
)

func newTestDocumentHandler() (*DocumentHandler, *mockDocumentRepository, *mockTextBlockRepository) {
	documents := newMockDocumentRepository()
	textBlocks := newMockTextBlockRepository()
	upload := service.NewUploadService(documents, newMockStorageService(), NewMockHandlerLogger(), &mockConfig{})

	h := NewDocumentHandler(
		upload,
		documents,
		textBlocks,
		newMockImageBlockRepository(),
		newMockCorrelationRepository(),
		&mockLogRepository{},
		NewMockHandlerLogger(),
	)
	return h, documents, textBlocks
}

func testUser() *domain.SupabaseUser {
	return &domain.SupabaseUser{ID: "user1", Email: "teacher@example.com"}
}

func TestDocumentHandler_GetDocumentsEmptyIsJSONArray(t *testing.T) {
	h, _, _ := newTestDocumentHandler()

	req := withAuthContext(httptest.NewRequest("GET", "/api/v1/documents", nil), testUser(), "token")
	rec := httptest.NewRecorder()
	h.GetDocuments(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("Expected empty JSON array, got %q", body)
	}
}

func TestDocumentHandler_GetDocumentNotFound(t *testing.T) {
	h, _, _ := newTestDocumentHandler()

	req := withAuthContext(httptest.NewRequest("GET", "/api/v1/documents/missing", nil), testUser(), "token")
	req = mux.SetURLVars(req, map[string]string{"id": "missing"})
	rec := httptest.NewRecorder()
	h.GetDocument(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

func TestDocumentHandler_GetDocumentOwnershipEnforced(t *testing.T) {
	h, documents, _ := newTestDocumentHandler()
	_ = documents.Create(&domain.Document{ID: "doc1", UserID: "someone-else"}, "token")

	req := withAuthContext(httptest.NewRequest("GET", "/api/v1/documents/doc1", nil), testUser(), "token")
	req = mux.SetURLVars(req, map[string]string{"id": "doc1"})
	rec := httptest.NewRecorder()
	h.GetDocument(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected 403, got %d", rec.Code)
	}
}

func TestDocumentHandler_GetDocumentReturnsOwned(t *testing.T) {
	h, documents, _ := newTestDocumentHandler()
	_ = documents.Create(&domain.Document{ID: "doc1", UserID: "user1", Title: "Unidad 3"}, "token")

	req := withAuthContext(httptest.NewRequest("GET", "/api/v1/documents/doc1", nil), testUser(), "token")
	req = mux.SetURLVars(req, map[string]string{"id": "doc1"})
	rec := httptest.NewRecorder()
	h.GetDocument(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var doc domain.Document
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("Expected JSON document, got error %v", err)
	}
	if doc.Title != "Unidad 3" {
		t.Errorf("Expected title 'Unidad 3', got %q", doc.Title)
	}
}

func TestDocumentHandler_GetBlocks(t *testing.T) {
	h, documents, textBlocks := newTestDocumentHandler()
	_ = documents.Create(&domain.Document{ID: "doc1", UserID: "user1"}, "token")
	_ = textBlocks.InsertMany([]*domain.TextBlock{
		{ID: "b1", DocumentID: "doc1", PageNumber: 1, Content: "hola"},
		{ID: "b2", DocumentID: "doc1", PageNumber: 1, Content: "mundo"},
	}, "token")

	req := withAuthContext(httptest.NewRequest("GET", "/api/v1/documents/doc1/blocks", nil), testUser(), "token")
	req = mux.SetURLVars(req, map[string]string{"id": "doc1"})
	rec := httptest.NewRecorder()
	h.GetBlocks(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var blocks []*domain.TextBlock
	if err := json.Unmarshal(rec.Body.Bytes(), &blocks); err != nil {
		t.Fatalf("Expected JSON block list, got error %v", err)
	}
	if len(blocks) != 2 {
		t.Errorf("Expected 2 blocks, got %d", len(blocks))
	}
}

func TestDocumentHandler_UploadRequiresFile(t *testing.T) {
	h, _, _ := newTestDocumentHandler()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	_ = writer.WriteField("grade_level", "3")
	_ = writer.Close()

	req := httptest.NewRequest("POST", "/api/v1/documents", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req = withAuthContext(req, testUser(), "token")
	rec := httptest.NewRecorder()
	h.UploadDocument(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without a file part, got %d", rec.Code)
	}
}

func TestDocumentHandler_UploadCreatesPendingDocument(t *testing.T) {
	h, documents, _ := newTestDocumentHandler()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="unidad_3.pdf"`)
	header.Set("Content-Type", "application/pdf")
	part, _ := writer.CreatePart(header)
	data := make([]byte, 2048)
	copy(data, []byte("%PDF-1.7\n"))
	_, _ = part.Write(data)
	_ = writer.WriteField("grade_level", "3")
	_ = writer.WriteField("subject", "ciencias")
	_ = writer.WriteField("content_type", "lesson")
	_ = writer.Close()

	req := httptest.NewRequest("POST", "/api/v1/documents", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req = withAuthContext(req, testUser(), "token")
	rec := httptest.NewRecorder()
	h.UploadDocument(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var doc domain.Document
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("Expected JSON document, got error %v", err)
	}
	if doc.ProcessingStatus != domain.StatusPending {
		t.Errorf("Expected pending status, got %q", doc.ProcessingStatus)
	}
	if _, err := documents.GetByID(doc.ID, "token"); err != nil {
		t.Errorf("Expected document persisted, got %v", err)
	}
}

func TestDocumentHandler_UploadRejectsTinyFile(t *testing.T) {
	h, _, _ := newTestDocumentHandler()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, _ := writer.CreateFormFile("file", "tiny.pdf")
	_, _ = part.Write([]byte("%PDF-"))
	_ = writer.Close()

	req := httptest.NewRequest("POST", "/api/v1/documents", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req = withAuthContext(req, testUser(), "token")
	rec := httptest.NewRecorder()
	h.UploadDocument(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for a file under the minimum size, got %d", rec.Code)
	}
}
