package match

import (
	"github.com/krizmartin/profile-matcher/internal/casestore"
	"github.com/krizmartin/profile-matcher/internal/namematch"
)

// Verdict classifies the final decision for one person case.
type Verdict string

const (
	VerdictMatch         Verdict = "MATCH"                     // exact name on the top-similarity candidate
	VerdictProbableMatch Verdict = "PROBABLE_MATCH_FUZZY_NAME" // near-identical name on the top candidate
	VerdictNoMatch       Verdict = "NO_MATCH"                  // top candidate's name too far from the source name
	VerdictNoCandidates  Verdict = "NO_CANDIDATES"             // nothing scorable to rank
	VerdictCaseFailed    Verdict = "CASE_FAILED"               // whole case errored; recorded by the pipeline, never by Decide
)

// NoCandidatesReason distinguishes the two ways a case ends with nothing
// to rank. Both carry the NO_CANDIDATES verdict in the output document.
type NoCandidatesReason string

const (
	ReasonNoneDiscovered NoCandidatesReason = "none_discovered" // scraping produced zero candidates
	ReasonNoneScorable   NoCandidatesReason = "none_scorable"   // candidates exist but none has a face score
)

// Outcome is the terminal result of deciding one person case.
type Outcome struct {
	Verdict   Verdict
	Best      *casestore.Candidate // nil for NO_CANDIDATES
	NameMatch namematch.Result     // zero value for NO_CANDIDATES
	Reason    NoCandidatesReason   // set only for NO_CANDIDATES
}

// Decide ranks the candidate set, compares the winner's name against the
// source name and returns the terminal verdict. Similarity ranking is
// primary: an exact-name candidate that lost the similarity race never
// wins on its name alone. The candidate set is never mutated.
func Decide(sourceName string, candidates []casestore.Candidate) Outcome {
	if len(candidates) == 0 {
		return Outcome{Verdict: VerdictNoCandidates, Reason: ReasonNoneDiscovered}
	}

	best := SelectBest(candidates)
	if best == nil {
		return Outcome{Verdict: VerdictNoCandidates, Reason: ReasonNoneScorable}
	}

	nm := namematch.Compare(sourceName, best.Name)
	return Outcome{
		Verdict:   verdictFor(nm),
		Best:      best,
		NameMatch: nm,
	}
}

// verdictFor applies the two-tier name policy to the winner's name
// comparison: exact beats fuzzy, fuzzy needs the fixed minimum score.
func verdictFor(nm namematch.Result) Verdict {
	switch {
	case nm.Exact:
		return VerdictMatch
	case nm.FuzzyScore >= namematch.FuzzyMinScore:
		return VerdictProbableMatch
	default:
		return VerdictNoMatch
	}
}
