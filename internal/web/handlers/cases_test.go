package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/krizmartin/profile-matcher/internal/match"
)

func TestCasesList(t *testing.T) {
	handler := NewCasesHandler(seededStore())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cases", nil)
	rec := httptest.NewRecorder()
	handler.List(rec, req)

	assertStatusCode(t, rec, http.StatusOK)

	var summaries []CaseSummary
	parseJSONResponse(t, rec, &summaries)
	if len(summaries) != 2 {
		t.Fatalf("expected 2 cases, got %d", len(summaries))
	}
	jane := summaries[0]
	if jane.Slug != "jane-doe" || jane.Candidates != 2 || jane.Scored != 1 {
		t.Errorf("unexpected summary: %+v", jane)
	}
	john := summaries[1]
	if john.Slug != "john-roe" || john.Candidates != 0 || john.Scored != 0 {
		t.Errorf("unexpected summary: %+v", john)
	}
}

func TestCasesList_StoreError(t *testing.T) {
	store := seededStore()
	store.ListCasesError = errors.New("backend gone")
	handler := NewCasesHandler(store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cases", nil)
	rec := httptest.NewRecorder()
	handler.List(rec, req)

	assertStatusCode(t, rec, http.StatusInternalServerError)
	assertJSONError(t, rec, "could not list cases")
}

func TestCaseGet(t *testing.T) {
	handler := NewCasesHandler(seededStore())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cases/jane-doe", nil)
	req = requestWithChiParams(req, map[string]string{"slug": "jane-doe"})
	rec := httptest.NewRecorder()
	handler.Get(rec, req)

	assertStatusCode(t, rec, http.StatusOK)

	var detail CaseDetail
	parseJSONResponse(t, rec, &detail)
	if detail.FullName != "Jane Doe" {
		t.Errorf("unexpected full name %q", detail.FullName)
	}
	if len(detail.Candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(detail.Candidates))
	}
	if detail.Candidates[0].Position != 0 || detail.Candidates[1].Position != 1 {
		t.Error("candidates should keep insertion order")
	}
	if detail.Outcome.Verdict != match.VerdictMatch {
		t.Errorf("expected MATCH, got %s", detail.Outcome.Verdict)
	}
	if detail.Outcome.Best == nil || detail.Outcome.Best.ProfileURL != "https://www.linkedin.com/in/jane-doe" {
		t.Errorf("unexpected best candidate: %+v", detail.Outcome.Best)
	}
	if !detail.Outcome.NameMatch.Exact {
		t.Error("expected an exact name match")
	}
}

func TestCaseGet_EmptyCase(t *testing.T) {
	handler := NewCasesHandler(seededStore())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cases/john-roe", nil)
	req = requestWithChiParams(req, map[string]string{"slug": "john-roe"})
	rec := httptest.NewRecorder()
	handler.Get(rec, req)

	assertStatusCode(t, rec, http.StatusOK)

	var detail CaseDetail
	parseJSONResponse(t, rec, &detail)
	if detail.Outcome.Verdict != match.VerdictNoCandidates {
		t.Errorf("expected NO_CANDIDATES, got %s", detail.Outcome.Verdict)
	}
	if detail.Outcome.Reason != match.ReasonNoneDiscovered {
		t.Errorf("unexpected reason %s", detail.Outcome.Reason)
	}
	if detail.Outcome.Best != nil {
		t.Errorf("empty case should have no best candidate, got %+v", detail.Outcome.Best)
	}
}

func TestCaseGet_NotFound(t *testing.T) {
	handler := NewCasesHandler(seededStore())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cases/nobody", nil)
	req = requestWithChiParams(req, map[string]string{"slug": "nobody"})
	rec := httptest.NewRecorder()
	handler.Get(rec, req)

	assertStatusCode(t, rec, http.StatusNotFound)
	assertJSONError(t, rec, "case not found")
}
