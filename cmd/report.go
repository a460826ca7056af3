package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/krizmartin/profile-matcher/internal/config"
	"github.com/krizmartin/profile-matcher/internal/pipeline"
	"github.com/krizmartin/profile-matcher/internal/report"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Rebuild the report from the current store state",
	Long: `Rebuild the report document from what the store currently holds and
render it, without scraping or scoring anything. Useful after manual store
edits or to look at results again without re-running the pipeline.`,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().Bool("json", false, "Print the report document as JSON")
	reportCmd.Flags().String("output", "", "Also write the document to this path")
}

func runReport(cmd *cobra.Command, args []string) error {
	jsonOutput := mustGetBool(cmd, "json")
	output := mustGetString(cmd, "output")

	cfg := config.Load()
	ctx := context.Background()
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	results, err := pipeline.Snapshot(ctx, st)
	if err != nil {
		return err
	}
	doc := report.Build(uuid.NewString(), results)

	if output != "" {
		if err := doc.WriteFile(output); err != nil {
			return err
		}
	}

	if jsonOutput {
		data, err := doc.JSON()
		if err != nil {
			return err
		}
		fmt.Print(string(data))
		return nil
	}

	report.Render(os.Stdout, doc)
	if output != "" {
		fmt.Printf("\nReport written to %s\n", output)
	}
	return nil
}
