// Package report builds the output document of a matching run and renders
// it for files and terminals. The document is the external contract; its
// entry shape stays stable across runs so downstream consumers can diff
// reports from different days.
package report

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/krizmartin/profile-matcher/internal/match"
	"github.com/krizmartin/profile-matcher/internal/namematch"
	"github.com/krizmartin/profile-matcher/internal/pipeline"
)

// Document is the top-level report written to disk.
type Document struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Results     []Entry   `json:"results"`
}

// Entry is the published outcome of one person case.
type Entry struct {
	Name          string           `json:"name"`
	Verdict       match.Verdict    `json:"verdict"`
	BestCandidate BestCandidate    `json:"best_candidate"`
	NameMatch     namematch.Result `json:"name_match"`
	Error         string           `json:"error,omitempty"`
	Summary       string           `json:"summary,omitempty"`
}

// BestCandidate describes the winning candidate. Every field is null when
// the case produced no ranked winner.
type BestCandidate struct {
	ProfileURL *string  `json:"profile_url"`
	Distance   *float64 `json:"distance"`
	Threshold  *float64 `json:"threshold"`
	Similarity *float64 `json:"similarity"`
	Verified   *bool    `json:"verified"`
	Model      *string  `json:"model"`
	Detector   *string  `json:"detector"`
}

// Build assembles the document from batch results, one entry per case in
// input order. Similarity is rounded to four decimals here and nowhere
// earlier, ranking upstream always sees full precision.
func Build(runID string, results []pipeline.CaseResult) *Document {
	doc := &Document{
		RunID:       runID,
		GeneratedAt: time.Now().UTC().Truncate(time.Second),
		Results:     make([]Entry, 0, len(results)),
	}
	for _, res := range results {
		doc.Results = append(doc.Results, buildEntry(res))
	}
	return doc
}

func buildEntry(res pipeline.CaseResult) Entry {
	e := Entry{
		Name:    res.Case.FullName,
		Verdict: res.Outcome.Verdict,
	}
	if res.Err != nil {
		e.Error = res.Err.Error()
	}

	best := res.Outcome.Best
	if best == nil || best.Score == nil {
		return e
	}
	e.NameMatch = res.Outcome.NameMatch

	url := best.ProfileURL
	score := *best.Score
	score.Similarity = round4(score.Similarity)
	e.BestCandidate = BestCandidate{
		ProfileURL: &url,
		Distance:   &score.Distance,
		Threshold:  &score.Threshold,
		Similarity: &score.Similarity,
		Verified:   &score.Verified,
		Model:      &score.Model,
		Detector:   &score.Detector,
	}
	return e
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// JSON returns the pretty-printed document with a trailing newline.
func (d *Document) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("could not marshal report: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteFile writes the document atomically so a crash mid-write never
// leaves a truncated report behind.
func (d *Document) WriteFile(path string) error {
	data, err := d.JSON()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("could not create report dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".report-*.json")
	if err != nil {
		return fmt.Errorf("could not create temp report: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("could not write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("could not close report: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("could not replace report: %w", err)
	}
	return nil
}

// Load reads a document written by WriteFile.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read report: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("could not parse report %s: %w", path, err)
	}
	return &doc, nil
}
