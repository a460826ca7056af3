package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/krizmartin/profile-matcher/internal/casestore"
	"github.com/krizmartin/profile-matcher/internal/config"
	"github.com/krizmartin/profile-matcher/internal/match"
	"github.com/krizmartin/profile-matcher/internal/namematch"
	"github.com/spf13/cobra"
)

var matchCmd = &cobra.Command{
	Use:   "match [slug]",
	Short: "Decide case verdicts from the scores already stored",
	Long: `Decide the verdict for stored cases from their current candidate scores.

Ranking takes the candidate with the highest face similarity; the verdict
comes from comparing that winner's name against the case name. Nothing is
scraped or scored here, run 'scrape' and 'score' (or 'run') first.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().Bool("all", false, "Decide every stored case")
	matchCmd.Flags().Bool("json", false, "Output as JSON")
}

// matchRow is the JSON shape of one decided case.
type matchRow struct {
	Slug      string                   `json:"slug"`
	Name      string                   `json:"name"`
	Verdict   match.Verdict            `json:"verdict"`
	Reason    match.NoCandidatesReason `json:"reason,omitempty"`
	Best      *casestore.Candidate     `json:"best_candidate,omitempty"`
	NameMatch *namematch.Result        `json:"name_match,omitempty"`
}

func runMatch(cmd *cobra.Command, args []string) error {
	all := mustGetBool(cmd, "all")
	jsonOutput := mustGetBool(cmd, "json")

	cfg := config.Load()
	ctx := context.Background()
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	cases, err := selectCases(ctx, st, args, all)
	if err != nil {
		return err
	}

	rows := make([]matchRow, 0, len(cases))
	for _, person := range cases {
		candidates, err := st.Candidates(ctx, person.Slug)
		if err != nil {
			return fmt.Errorf("could not load candidates for %s: %w", person.Slug, err)
		}
		outcome := match.Decide(person.FullName, candidates)

		row := matchRow{
			Slug:    person.Slug,
			Name:    person.FullName,
			Verdict: outcome.Verdict,
			Reason:  outcome.Reason,
			Best:    outcome.Best,
		}
		if outcome.Best != nil {
			nm := outcome.NameMatch
			row.NameMatch = &nm
		}
		rows = append(rows, row)
	}

	if jsonOutput {
		return outputJSON(rows)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CASE\tVERDICT\tBEST PROFILE\tSIMILARITY\tVERIFIED\tNAME MATCH")
	fmt.Fprintln(w, "----\t-------\t------------\t----------\t--------\t----------")

	for i := range rows {
		row := &rows[i]
		profile, similarity, verified := "-", "-", "-"
		if row.Best != nil && row.Best.Score != nil {
			profile = row.Best.ProfileURL
			similarity = fmt.Sprintf("%.4f", row.Best.Score.Similarity)
			verified = fmt.Sprintf("%t", row.Best.Score.Verified)
		}
		nameMatch := "-"
		if row.NameMatch != nil {
			if row.NameMatch.Exact {
				nameMatch = "exact"
			} else {
				nameMatch = fmt.Sprintf("fuzzy %.1f", row.NameMatch.FuzzyScore)
			}
		}
		verdict := string(row.Verdict)
		if row.Reason != "" {
			verdict = fmt.Sprintf("%s (%s)", row.Verdict, row.Reason)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", row.Slug, verdict, profile, similarity, verified, nameMatch)
	}

	w.Flush()
	return nil
}
