package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/krizmartin/profile-matcher/internal/casestore"
	"github.com/krizmartin/profile-matcher/internal/casestore/mock"
)

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}

// seededStore builds a mock store with one decided case and one empty case.
func seededStore() *mock.MockStore {
	store := mock.NewMockStore()
	store.AddCase(casestore.PersonCase{Slug: "jane-doe", FullName: "Jane Doe"})
	store.AddCase(casestore.PersonCase{Slug: "john-roe", FullName: "John Roe"})

	score := casestore.FaceScore{
		Distance:   0.42,
		Threshold:  0.68,
		Similarity: 0.8137,
		Verified:   true,
		Model:      "Facenet512",
		Detector:   "retinaface",
	}
	store.AddCandidate("jane-doe", casestore.Candidate{
		ProfileURL: "https://www.linkedin.com/in/jane-doe",
		Name:       "Jane Doe",
		Photo:      "photos/jane-doe/a.jpg",
		Score:      &score,
		Position:   0,
	})
	store.AddCandidate("jane-doe", casestore.Candidate{
		ProfileURL: "https://www.linkedin.com/in/jane-d-2",
		Name:       "Jane D.",
		Photo:      casestore.NoImageToken,
		Position:   1,
	})
	return store
}
