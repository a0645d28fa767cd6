package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"edu-document-pipeline/internal/domain"
)

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	auth := newMockAuthService()
	middleware := AuthMiddleware(auth, NewMockHandlerLogger())

	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler should not be called without authorization")
	}))

	req := httptest.NewRequest("GET", "/api/v1/documents", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	auth := newMockAuthService()
	middleware := AuthMiddleware(auth, NewMockHandlerLogger())

	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler should not be called with malformed authorization")
	}))

	req := httptest.NewRequest("GET", "/api/v1/documents", nil)
	req.Header.Set("Authorization", "Token abc123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	auth := newMockAuthService()
	middleware := AuthMiddleware(auth, NewMockHandlerLogger())

	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler should not be called with an invalid token")
	}))

	req := httptest.NewRequest("GET", "/api/v1/documents", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_ValidTokenPassesContext(t *testing.T) {
	auth := newMockAuthService()
	auth.users["good-token"] = &domain.SupabaseUser{ID: "user1", Email: "teacher@example.com"}
	middleware := AuthMiddleware(auth, NewMockHandlerLogger())

	called := false
	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		user, ok := GetUserFromContext(r)
		if !ok || user.ID != "user1" {
			t.Error("Expected user in request context")
		}
		token, ok := GetTokenFromContext(r)
		if !ok || token != "good-token" {
			t.Error("Expected token in request context")
		}
	}))

	req := httptest.NewRequest("GET", "/api/v1/documents", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !called {
		t.Error("Expected wrapped handler to be called")
	}
}
