package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/krizmartin/profile-matcher/internal/casestore"
	"github.com/krizmartin/profile-matcher/internal/match"
	"github.com/krizmartin/profile-matcher/internal/pipeline"
)

func sampleDocument() *Document {
	return Build("run-42", []pipeline.CaseResult{
		matchedResult("Jane Doe", "https://www.linkedin.com/in/jane-doe", 0.9123),
		{
			Case:    casestore.PersonCase{FullName: "John Smith"},
			Outcome: match.Outcome{Verdict: match.VerdictNoCandidates, Reason: match.ReasonNoneDiscovered},
		},
		{
			Case:    casestore.PersonCase{FullName: "Kim Lee"},
			Outcome: match.Outcome{Verdict: match.VerdictCaseFailed},
			Err:     errors.New("sidecar unreachable"),
		},
	})
}

func TestRender_PlainForNonTerminals(t *testing.T) {
	var buf bytes.Buffer
	Render(&buf, sampleDocument())
	out := buf.String()

	if !strings.Contains(out, "Run run-42") {
		t.Errorf("output lacks the run header:\n%s", out)
	}
	for _, want := range []string{
		"NAME", "VERDICT", "BEST PROFILE",
		"Jane Doe", "MATCH", "https://www.linkedin.com/in/jane-doe", "0.9123", "exact",
		"John Smith", "NO_CANDIDATES",
		"Kim Lee", "CASE_FAILED", "sidecar unreachable",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
	// A buffer is not a terminal, so no box drawing.
	if strings.Contains(out, "│") {
		t.Errorf("plain output should not use table borders:\n%s", out)
	}
}

func TestRenderStyled_Table(t *testing.T) {
	out := renderStyled(sampleDocument())
	for _, want := range []string{"NAME", "Jane Doe", "│", "╭"} {
		if !strings.Contains(out, want) {
			t.Errorf("styled table lacks %q:\n%s", want, out)
		}
	}
}

func TestTableRows_DashesForMissingWinner(t *testing.T) {
	rows := tableRows(sampleDocument())
	if len(rows) != 3 {
		t.Fatalf("got %d rows; want 3", len(rows))
	}
	empty := rows[1]
	if empty[2] != "-" || empty[3] != "-" || empty[4] != "-" {
		t.Errorf("row without winner should render dashes, got %v", empty)
	}
}

func TestNoteCell_TruncatesLongText(t *testing.T) {
	e := Entry{Error: strings.Repeat("x", 200)}
	note := noteCell(e)
	if len(note) != noteWidth {
		t.Errorf("note length = %d; want %d", len(note), noteWidth)
	}
	if !strings.HasSuffix(note, "...") {
		t.Errorf("truncated note should end with ellipsis, got %q", note)
	}
}

func TestNoteCell_PrefersErrorOverSummary(t *testing.T) {
	e := Entry{Error: "boom", Summary: "a summary"}
	if got := noteCell(e); got != "boom" {
		t.Errorf("note = %q; want the error", got)
	}
	e.Error = ""
	if got := noteCell(e); got != "a summary" {
		t.Errorf("note = %q; want the summary", got)
	}
}
