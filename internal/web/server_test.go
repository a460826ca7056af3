package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/krizmartin/profile-matcher/internal/casestore"
	"github.com/krizmartin/profile-matcher/internal/casestore/mock"
	"github.com/krizmartin/profile-matcher/internal/web/facesearch"
)

func newTestServer(t *testing.T, apiKey string) *Server {
	t.Helper()

	store := mock.NewMockStore()
	store.AddCase(casestore.PersonCase{Slug: "jane-doe", FullName: "Jane Doe"})

	index, err := facesearch.Build(context.Background(), store, store, t.TempDir(), "Facenet512")
	if err != nil {
		t.Fatalf("could not build face index: %v", err)
	}
	return NewServer(store, index, "127.0.0.1", 0, apiKey)
}

func get(t *testing.T, s *Server, path string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestRoutes_Health(t *testing.T) {
	rec := get(t, newTestServer(t, ""), "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("could not parse body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("unexpected health body: %v", body)
	}
}

func TestRoutes_ViewerAtRoot(t *testing.T) {
	rec := get(t, newTestServer(t, ""), "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("unexpected content type %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "Profile Matcher") {
		t.Error("viewer page missing from response")
	}
}

func TestRoutes_CasesThroughRouter(t *testing.T) {
	rec := get(t, newTestServer(t, ""), "/api/v1/cases", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var summaries []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &summaries); err != nil {
		t.Fatalf("could not parse body: %v", err)
	}
	if len(summaries) != 1 || summaries[0]["slug"] != "jane-doe" {
		t.Errorf("unexpected case list: %v", summaries)
	}
}

func TestRoutes_SimilarFacesWired(t *testing.T) {
	rec := get(t, newTestServer(t, ""), "/api/v1/cases/jane-doe/similar-faces", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRoutes_ReportWired(t *testing.T) {
	rec := get(t, newTestServer(t, ""), "/api/v1/report", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var doc map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("could not parse body: %v", err)
	}
	if doc["run_id"] == "" {
		t.Error("expected a run id in the document")
	}
}

func TestRoutes_APIKeyGuardsOnlyTheAPI(t *testing.T) {
	s := newTestServer(t, "secret")

	if rec := get(t, s, "/api/v1/cases", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without a key, got %d", rec.Code)
	}
	if rec := get(t, s, "/api/v1/cases", map[string]string{"X-Api-Key": "secret"}); rec.Code != http.StatusOK {
		t.Errorf("expected 200 with the key, got %d", rec.Code)
	}
	if rec := get(t, s, "/healthz", nil); rec.Code != http.StatusOK {
		t.Errorf("health check should stay open, got %d", rec.Code)
	}
	if rec := get(t, s, "/", nil); rec.Code != http.StatusOK {
		t.Errorf("viewer should stay open, got %d", rec.Code)
	}
}
