// Package annotate asks an LLM provider for short reviewer summaries of
// report entries. Annotation is a presentation layer on top of a finished
// report: verdicts, scores and name comparisons are inputs, never outputs.
package annotate

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/krizmartin/profile-matcher/internal/report"
)

//go:embed prompts/summary.txt
var summaryPrompt string

// summaryMaxTokens caps one summary. Three sentences fit comfortably.
const summaryMaxTokens = 300

// Provider produces a 2-3 sentence summary of one report entry.
type Provider interface {
	Name() string
	Summarize(ctx context.Context, entry report.Entry) (string, error)
}

// Annotate fills the summary field of every entry that does not have one
// yet, so an interrupted run can be resumed. Returns how many entries were
// annotated.
func Annotate(ctx context.Context, provider Provider, doc *report.Document) (int, error) {
	annotated := 0
	for i := range doc.Results {
		e := &doc.Results[i]
		if e.Summary != "" {
			continue
		}
		summary, err := provider.Summarize(ctx, *e)
		if err != nil {
			return annotated, fmt.Errorf("could not summarize entry %q: %w", e.Name, err)
		}
		e.Summary = summary
		annotated++
	}
	return annotated, nil
}

// buildEvidence flattens one report entry into the plain-text evidence
// block the model is asked to summarize. Only facts already present in the
// report go in.
func buildEvidence(e report.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Person searched: %s\n", e.Name)
	fmt.Fprintf(&b, "Verdict: %s\n", e.Verdict)

	bc := e.BestCandidate
	if bc.ProfileURL == nil {
		b.WriteString("No candidate could be ranked.\n")
	} else {
		fmt.Fprintf(&b, "Best candidate profile: %s\n", *bc.ProfileURL)
		if bc.Similarity != nil && bc.Distance != nil && bc.Threshold != nil {
			fmt.Fprintf(&b, "Face similarity: %.4f (distance %.4f against threshold %.4f)\n",
				*bc.Similarity, *bc.Distance, *bc.Threshold)
		}
		if bc.Verified != nil {
			fmt.Fprintf(&b, "Face verified by the model: %t\n", *bc.Verified)
		}
		if bc.Model != nil && bc.Detector != nil {
			fmt.Fprintf(&b, "Recognition model and detector: %s, %s\n", *bc.Model, *bc.Detector)
		}
		if e.NameMatch.Exact {
			b.WriteString("Name comparison: exact match\n")
		} else {
			fmt.Fprintf(&b, "Name comparison: fuzzy score %.1f out of 100\n", e.NameMatch.FuzzyScore)
		}
	}

	if e.Error != "" {
		fmt.Fprintf(&b, "Processing error: %s\n", e.Error)
	}
	return b.String()
}
