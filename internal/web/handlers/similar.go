package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/krizmartin/profile-matcher/internal/casestore"
	"github.com/krizmartin/profile-matcher/internal/web/facesearch"
)

const defaultSimilarLimit = 5

// SimilarHandler serves the cross-case face search.
type SimilarHandler struct {
	store casestore.Store
	index *facesearch.Index
}

// NewSimilarHandler creates a new similar-faces handler.
func NewSimilarHandler(store casestore.Store, index *facesearch.Index) *SimilarHandler {
	return &SimilarHandler{store: store, index: index}
}

// SimilarResponse lists the closest faces from other cases.
type SimilarResponse struct {
	Case    string           `json:"case"`
	Indexed int              `json:"indexed"`
	Matches []facesearch.Hit `json:"matches"`
}

// Get returns the nearest cached faces from other cases for one case.
// The limit query parameter caps the result count.
func (h *SimilarHandler) Get(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	if _, err := h.store.GetCase(r.Context(), slug); err != nil {
		if errors.Is(err, casestore.ErrUnknownCase) {
			respondError(w, http.StatusNotFound, "case not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "could not load case")
		return
	}

	limit := defaultSimilarLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	matches := h.index.SimilarTo(slug, limit)
	if matches == nil {
		matches = []facesearch.Hit{}
	}
	respondJSON(w, http.StatusOK, SimilarResponse{
		Case:    slug,
		Indexed: h.index.Count(),
		Matches: matches,
	})
}
