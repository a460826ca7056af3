// Package pipeline runs the end-to-end decision flow for person cases:
// discover candidate profiles, score their faces against the case reference
// image and settle a verdict per case. Cases run concurrently and a failure
// stays contained in the case that raised it.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/krizmartin/profile-matcher/internal/casestore"
	"github.com/krizmartin/profile-matcher/internal/faceapi"
	"github.com/krizmartin/profile-matcher/internal/imaging"
	"github.com/krizmartin/profile-matcher/internal/match"
	"github.com/schollz/progressbar/v3"
)

// DefaultConcurrency bounds how many cases run in parallel when no explicit
// worker count is configured.
const DefaultConcurrency = 3

// CandidateFinder discovers candidate profiles for one person and persists
// them under the case. Implementations return how many candidates they
// stored.
type CandidateFinder interface {
	FindCandidates(ctx context.Context, person casestore.PersonCase) (int, error)
}

// Runner wires the store, the discovery step and the face scorer together.
type Runner struct {
	store   casestore.Store
	finder  CandidateFinder
	scorer  faceapi.Scorer
	dataDir string
	maxEdge int
}

// New creates a Runner. finder may be nil for score-only runs. Stored image
// paths resolve relative to dataDir, and maxEdge bounds the longer image
// edge before upload (0 keeps the original size).
func New(store casestore.Store, finder CandidateFinder, scorer faceapi.Scorer, dataDir string, maxEdge int) *Runner {
	return &Runner{
		store:   store,
		finder:  finder,
		scorer:  scorer,
		dataDir: dataDir,
		maxEdge: maxEdge,
	}
}

// Options controls one batch run.
type Options struct {
	Concurrency int  // parallel cases, DefaultConcurrency when <= 0
	Force       bool // re-score candidates that already carry a score
	Progress    bool // draw a progress bar on stdout
}

// ScoreStats counts what happened to the candidates of one case.
type ScoreStats struct {
	Scored  int // fresh scores attached this run
	Skipped int // already scored, or nothing to score
	Failed  int // no usable face, left without a score
}

// CaseResult is the outcome of one person case within a batch.
type CaseResult struct {
	Case    casestore.PersonCase
	Stats   ScoreStats
	Outcome match.Outcome
	Err     error
}

// indexedResult carries a worker's result back with its input position.
type indexedResult struct {
	index  int
	result CaseResult
}

// Run processes the given cases with a bounded worker pool and returns one
// result per case in input order. A case that fails gets the CASE_FAILED
// verdict and its error recorded; the batch itself never aborts.
func (r *Runner) Run(ctx context.Context, cases []casestore.PersonCase, opts Options) []CaseResult {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	bar := progressbar.NewOptions(len(cases),
		progressbar.OptionSetDescription(fmt.Sprintf("Matching cases (%d workers)", concurrency)),
		progressbar.OptionSetVisibility(opts.Progress),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("cases"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)

	resultsChan := make(chan indexedResult, len(cases))
	semaphore := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var failed int

	for i := range cases {
		wg.Add(1)
		go func(idx int, person casestore.PersonCase) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			res := r.runCase(ctx, person, opts.Force)
			if res.Err != nil {
				mu.Lock()
				failed++
				mu.Unlock()
			}
			resultsChan <- indexedResult{index: idx, result: res}
			bar.Add(1)
		}(i, cases[i])
	}

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	results := make([]CaseResult, len(cases))
	for ir := range resultsChan {
		results[ir.index] = ir.result
	}

	if opts.Progress {
		fmt.Println()
		if failed > 0 {
			fmt.Printf("%d of %d cases failed\n", failed, len(cases))
		}
	}
	return results
}

// runCase executes the full flow for one case. Panics are converted to an
// error so a bad case cannot take down the whole batch.
func (r *Runner) runCase(ctx context.Context, person casestore.PersonCase, force bool) (res CaseResult) {
	res = CaseResult{Case: person}

	defer func() {
		if rec := recover(); rec != nil {
			res.Err = fmt.Errorf("case %s panicked: %v", person.Slug, rec)
		}
		if res.Err != nil {
			res.Outcome = match.Outcome{Verdict: match.VerdictCaseFailed}
		}
	}()

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	if r.finder != nil {
		if _, err := r.finder.FindCandidates(ctx, person); err != nil {
			res.Err = fmt.Errorf("could not discover candidates: %w", err)
			return res
		}
	}

	stats, err := r.ScoreCase(ctx, person, force)
	res.Stats = stats
	if err != nil {
		res.Err = err
		return res
	}

	// Reload so the verdict sees the scores written above.
	candidates, err := r.store.Candidates(ctx, person.Slug)
	if err != nil {
		res.Err = fmt.Errorf("could not load candidates: %w", err)
		return res
	}
	res.Outcome = match.Decide(person.FullName, candidates)
	return res
}

// ScoreCase scores every candidate of the case that has a photo and no score
// yet; force re-scores candidates that already carry one. A candidate whose
// photo is unreadable or holds no detectable face stays unscored and counts
// as Failed, the rest of the case keeps going. Candidates are scored
// sequentially, parallelism lives at the case level.
func (r *Runner) ScoreCase(ctx context.Context, person casestore.PersonCase, force bool) (ScoreStats, error) {
	var stats ScoreStats

	candidates, err := r.store.Candidates(ctx, person.Slug)
	if err != nil {
		return stats, fmt.Errorf("could not load candidates: %w", err)
	}

	var pending []*casestore.Candidate
	for i := range candidates {
		c := &candidates[i]
		if !c.HasPhoto() || (c.Score != nil && !force) {
			stats.Skipped++
			continue
		}
		pending = append(pending, c)
	}
	if len(pending) == 0 {
		return stats, nil
	}

	reference, err := r.loadImage(person.ReferenceImage)
	if err != nil {
		return stats, fmt.Errorf("reference image for %s: %w", person.Slug, err)
	}

	for _, c := range pending {
		photo, err := r.loadImage(c.Photo)
		if err != nil {
			// A missing or broken thumbnail disqualifies the candidate,
			// not the case.
			stats.Failed++
			continue
		}

		score, err := r.scorer.Score(ctx, reference, photo)
		switch {
		case errors.Is(err, faceapi.ErrFaceNotFound):
			stats.Failed++
			continue
		case err != nil:
			return stats, fmt.Errorf("could not score %s: %w", c.ProfileURL, err)
		}

		if err := r.store.AttachScore(ctx, person.Slug, c.ProfileURL, score); err != nil {
			return stats, fmt.Errorf("could not record score for %s: %w", c.ProfileURL, err)
		}
		stats.Scored++
	}
	return stats, nil
}

// loadImage reads a stored image and shrinks it to the configured upload
// size. Stored paths are relative to the data dir unless already absolute.
func (r *Runner) loadImage(stored string) ([]byte, error) {
	p := filepath.FromSlash(stored)
	if !filepath.IsAbs(p) {
		p = filepath.Join(r.dataDir, p)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("could not read image: %w", err)
	}
	prepared, err := imaging.PrepareUpload(data, r.maxEdge)
	if err != nil {
		return nil, fmt.Errorf("could not prepare image %s: %w", stored, err)
	}
	return prepared, nil
}

// CountVerdicts tallies results by verdict for summary output.
func CountVerdicts(results []CaseResult) map[match.Verdict]int {
	counts := make(map[match.Verdict]int, len(results))
	for _, res := range results {
		counts[res.Outcome.Verdict]++
	}
	return counts
}

// Snapshot decides every case from what the store currently holds, without
// scraping or scoring anything. The report command and the review API build
// their documents from it.
func Snapshot(ctx context.Context, store casestore.Store) ([]CaseResult, error) {
	cases, err := store.ListCases(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list cases: %w", err)
	}

	results := make([]CaseResult, 0, len(cases))
	for _, person := range cases {
		candidates, err := store.Candidates(ctx, person.Slug)
		if err != nil {
			return nil, fmt.Errorf("could not load candidates for %s: %w", person.Slug, err)
		}
		results = append(results, CaseResult{
			Case:    person,
			Outcome: match.Decide(person.FullName, candidates),
		})
	}
	return results, nil
}
