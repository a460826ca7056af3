package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/krizmartin/profile-matcher/internal/casestore"
	"github.com/krizmartin/profile-matcher/internal/match"
	"github.com/krizmartin/profile-matcher/internal/namematch"
)

// CasesHandler serves the case list and case detail endpoints.
type CasesHandler struct {
	store casestore.Store
}

// NewCasesHandler creates a new cases handler.
func NewCasesHandler(store casestore.Store) *CasesHandler {
	return &CasesHandler{store: store}
}

// CaseSummary is one row of the case list.
type CaseSummary struct {
	Slug       string    `json:"slug"`
	FullName   string    `json:"full_name"`
	CreatedAt  time.Time `json:"created_at"`
	Candidates int       `json:"candidates"`
	Scored     int       `json:"scored"`
}

// CaseDetail is the full view of one case: its candidates in insertion
// order plus the outcome computed from current store state.
type CaseDetail struct {
	Slug           string                `json:"slug"`
	FullName       string                `json:"full_name"`
	ReferenceImage string                `json:"reference_image"`
	CreatedAt      time.Time             `json:"created_at"`
	Candidates     []casestore.Candidate `json:"candidates"`
	Outcome        OutcomeView           `json:"outcome"`
}

// OutcomeView is the JSON shape of a computed verdict.
type OutcomeView struct {
	Verdict   match.Verdict            `json:"verdict"`
	Reason    match.NoCandidatesReason `json:"reason,omitempty"`
	Best      *casestore.Candidate     `json:"best,omitempty"`
	NameMatch namematch.Result         `json:"name_match"`
}

// List returns every case with candidate and score counts.
func (h *CasesHandler) List(w http.ResponseWriter, r *http.Request) {
	cases, err := h.store.ListCases(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not list cases")
		return
	}

	summaries := make([]CaseSummary, 0, len(cases))
	for _, person := range cases {
		candidates, err := h.store.Candidates(r.Context(), person.Slug)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "could not load candidates")
			return
		}
		scored := 0
		for _, c := range candidates {
			if c.Score != nil {
				scored++
			}
		}
		summaries = append(summaries, CaseSummary{
			Slug:       person.Slug,
			FullName:   person.FullName,
			CreatedAt:  person.CreatedAt,
			Candidates: len(candidates),
			Scored:     scored,
		})
	}
	respondJSON(w, http.StatusOK, summaries)
}

// Get returns one case with its candidates and the computed outcome.
func (h *CasesHandler) Get(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	person, err := h.store.GetCase(r.Context(), slug)
	if err != nil {
		if errors.Is(err, casestore.ErrUnknownCase) {
			respondError(w, http.StatusNotFound, "case not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "could not load case")
		return
	}

	candidates, err := h.store.Candidates(r.Context(), slug)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not load candidates")
		return
	}

	outcome := match.Decide(person.FullName, candidates)
	respondJSON(w, http.StatusOK, CaseDetail{
		Slug:           person.Slug,
		FullName:       person.FullName,
		ReferenceImage: person.ReferenceImage,
		CreatedAt:      person.CreatedAt,
		Candidates:     candidates,
		Outcome: OutcomeView{
			Verdict:   outcome.Verdict,
			Reason:    outcome.Reason,
			Best:      outcome.Best,
			NameMatch: outcome.NameMatch,
		},
	})
}
