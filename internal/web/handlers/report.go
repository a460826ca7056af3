package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/krizmartin/profile-matcher/internal/casestore"
	"github.com/krizmartin/profile-matcher/internal/pipeline"
	"github.com/krizmartin/profile-matcher/internal/report"
)

// ReportHandler builds the consolidated document from current store state.
type ReportHandler struct {
	store casestore.Store
}

// NewReportHandler creates a new report handler.
func NewReportHandler(store casestore.Store) *ReportHandler {
	return &ReportHandler{store: store}
}

// Get decides every case from stored scores and returns the full document.
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	results, err := pipeline.Snapshot(r.Context(), h.store)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not build report")
		return
	}
	respondJSON(w, http.StatusOK, report.Build(uuid.NewString(), results))
}
