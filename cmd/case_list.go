package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/krizmartin/profile-matcher/internal/config"
	"github.com/spf13/cobra"
)

var caseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored person cases",
	RunE:  runCaseList,
}

func init() {
	caseCmd.AddCommand(caseListCmd)
}

func runCaseList(cmd *cobra.Command, args []string) error {
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
		fmt.Println("No cases stored yet")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SLUG\tNAME\tCANDIDATES\tSCORED\tCREATED")
	fmt.Fprintln(w, "----\t----\t----------\t------\t-------")

	for _, person := range cases {
		candidates, err := st.Candidates(ctx, person.Slug)
		if err != nil {
			return fmt.Errorf("could not load candidates for %s: %w", person.Slug, err)
		}
		scored := 0
		for i := range candidates {
			if candidates[i].Score != nil {
				scored++
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
			person.Slug, person.FullName, len(candidates), scored, person.CreatedAt.Format("2006-01-02"))
	}

	w.Flush()
	return nil
}
