package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/krizmartin/profile-matcher/internal/config"
	"github.com/krizmartin/profile-matcher/internal/pipeline"
	"github.com/krizmartin/profile-matcher/internal/scrape"
	"github.com/spf13/cobra"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape [slug]",
	Short: "Discover candidate profiles for stored cases",
	Long: `Search the profile site for each case name through the scraping sidecar
and store the discovered candidates: canonical profile URL, cleaned name and
profile photo. Re-scraping a case refreshes names and photos but never drops
candidates or their scores.

Requires a saved session, run 'profile-matcher login' first.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().Bool("all", false, "Scrape every stored case")
	scrapeCmd.Flags().Int("limit", pipeline.DefaultSearchLimit, "Search results requested per case")
}

func runScrape(cmd *cobra.Command, args []string) error {
	all := mustGetBool(cmd, "all")
	limit := mustGetInt(cmd, "limit")

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

	session, err := scrape.LoadSession(cfg.Scraper.SessionFile)
	if err != nil {
		return fmt.Errorf("could not load session, run 'profile-matcher login' first: %w", err)
	}

	client := scrape.NewClient(cfg.Scraper.URL, time.Duration(cfg.Scraper.Timeout)*time.Second)
	discovery := pipeline.NewDiscovery(client, session, st, cfg.Store.DataDir, limit)

	for _, person := range cases {
		fmt.Printf("Searching for %s...\n", person.FullName)
		stored, err := discovery.FindCandidates(ctx, person)
		if err != nil {
			return fmt.Errorf("could not discover candidates for %s: %w", person.Slug, err)
		}
		fmt.Printf("  %d candidates stored under %s\n", stored, person.Slug)
	}
	return nil
}
