package match

import "github.com/krizmartin/profile-matcher/internal/casestore"

// SelectBest returns the scored candidate with the highest similarity, or
// nil when no candidate carries a score. Unscored candidates (no photo,
// or no detectable face) are skipped here but stay in the store for the
// report. Ties go to the earliest-discovered candidate: the scan keeps
// the first maximum and only a strictly higher similarity replaces it.
func SelectBest(candidates []casestore.Candidate) *casestore.Candidate {
	var best *casestore.Candidate
	for i := range candidates {
		c := &candidates[i]
		if c.Score == nil {
			continue
		}
		if best == nil || c.Score.Similarity > best.Score.Similarity {
			best = c
		}
	}
	return best
}
