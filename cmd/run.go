package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/krizmartin/profile-matcher/internal/config"
	"github.com/krizmartin/profile-matcher/internal/match"
	"github.com/krizmartin/profile-matcher/internal/pipeline"
	"github.com/krizmartin/profile-matcher/internal/report"
	"github.com/krizmartin/profile-matcher/internal/scrape"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Scrape, score and decide every stored case",
	Long: `Run the full pipeline over every stored case: discover candidate
profiles, score their photos against the reference face and decide a verdict
per case. Cases run in parallel and one failing case never stops the batch;
it lands in the report as CASE_FAILED.

The report document is written when the batch finishes.`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Int("concurrency", pipeline.DefaultConcurrency, "Cases processed in parallel")
	runCmd.Flags().Bool("force", false, "Re-score candidates that already carry a score")
	runCmd.Flags().String("output", "report.json", "Report file path")
}

func runRun(cmd *cobra.Command, args []string) error {
	concurrency := mustGetInt(cmd, "concurrency")
	force := mustGetBool(cmd, "force")
	output := mustGetString(cmd, "output")

	cfg := config.Load()
	ctx := context.Background()
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	cases, err := st.ListCases(ctx)
	if err != nil {
		return fmt.Errorf("could not list cases: %w", err)
	}
	if len(cases) == 0 {
		return errors.New("the store has no cases yet, add one with 'case add'")
	}

	session, err := scrape.LoadSession(cfg.Scraper.SessionFile)
	if err != nil {
		return fmt.Errorf("could not load session, run 'profile-matcher login' first: %w", err)
	}
	client := scrape.NewClient(cfg.Scraper.URL, time.Duration(cfg.Scraper.Timeout)*time.Second)
	finder := pipeline.NewDiscovery(client, session, st, cfg.Store.DataDir, 0)

	scorer, err := buildScorer(cfg, st)
	if err != nil {
		return err
	}
	runner := pipeline.New(st, finder, scorer, cfg.Store.DataDir, cfg.FaceAPI.MaxImageEdge)

	runID := uuid.NewString()
	fmt.Printf("Run %s over %d cases\n", runID, len(cases))

	results := runner.Run(ctx, cases, pipeline.Options{
		Concurrency: concurrency,
		Force:       force,
		Progress:    true,
	})

	doc := report.Build(runID, results)
	if err := doc.WriteFile(output); err != nil {
		return err
	}

	fmt.Printf("\nReport written to %s\n", output)
	counts := pipeline.CountVerdicts(results)
	for _, v := range []match.Verdict{
		match.VerdictMatch,
		match.VerdictProbableMatch,
		match.VerdictNoMatch,
		match.VerdictNoCandidates,
		match.VerdictCaseFailed,
	} {
		if counts[v] > 0 {
			fmt.Printf("  %-26s %d\n", v, counts[v])
		}
	}
	return nil
}
