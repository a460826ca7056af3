package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/krizmartin/profile-matcher/internal/casestore"
	"github.com/krizmartin/profile-matcher/internal/config"
	"github.com/spf13/cobra"
)

var caseShowCmd = &cobra.Command{
	Use:   "show <slug>",
	Short: "Show one case and its candidates",
	Args:  cobra.ExactArgs(1),
	RunE:  runCaseShow,
}

func init() {
	caseCmd.AddCommand(caseShowCmd)

	caseShowCmd.Flags().Bool("json", false, "Output as JSON")
}

func runCaseShow(cmd *cobra.Command, args []string) error {
	jsonOutput := mustGetBool(cmd, "json")

	cfg := config.Load()
	ctx := context.Background()
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	person, err := st.GetCase(ctx, args[0])
	if errors.Is(err, casestore.ErrUnknownCase) {
		return fmt.Errorf("case %s does not exist", args[0])
	}
	if err != nil {
		return fmt.Errorf("could not load case: %w", err)
	}
	candidates, err := st.Candidates(ctx, person.Slug)
	if err != nil {
		return fmt.Errorf("could not load candidates: %w", err)
	}

	if jsonOutput {
		return outputJSON(struct {
			Case       casestore.PersonCase  `json:"case"`
			Candidates []casestore.Candidate `json:"candidates"`
		}{*person, candidates})
	}

	fmt.Printf("Case:      %s\n", person.Slug)
	fmt.Printf("Name:      %s\n", person.FullName)
	fmt.Printf("Reference: %s\n", person.ReferenceImage)
	fmt.Printf("Created:   %s\n", person.CreatedAt.Format(time.RFC3339))

	if len(candidates) == 0 {
		fmt.Println("\nNo candidates discovered yet, run 'profile-matcher scrape' first")
		return nil
	}

	fmt.Printf("\nCandidates (%d):\n", len(candidates))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PROFILE\tNAME\tPHOTO\tSIMILARITY\tVERIFIED")
	fmt.Fprintln(w, "-------\t----\t-----\t----------\t--------")

	for i := range candidates {
		c := &candidates[i]
		photo := "-"
		switch {
		case c.HasPhoto():
			photo = "yes"
		case c.Photo == casestore.NoImageToken:
			photo = "none"
		}
		similarity := "-"
		verified := "-"
		if c.Score != nil {
			similarity = fmt.Sprintf("%.4f", c.Score.Similarity)
			verified = fmt.Sprintf("%t", c.Score.Verified)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", c.ProfileURL, c.Name, photo, similarity, verified)
	}

	w.Flush()
	return nil
}

func outputJSON(data any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}
	return nil
}
