package cmd

import (
	"context"
	"fmt"

	"github.com/krizmartin/profile-matcher/internal/annotate"
	"github.com/krizmartin/profile-matcher/internal/config"
	"github.com/krizmartin/profile-matcher/internal/report"
	"github.com/spf13/cobra"
)

var annotateCmd = &cobra.Command{
	Use:   "annotate [report.json]",
	Short: "Add AI summaries to a report file",
	Long: `Ask an AI provider for a short reviewer summary of every entry in an
existing report file and write the summaries back into it. Entries that
already carry a summary are left alone, so an interrupted run picks up
where it stopped.

Examples:
  # Summarize report.json with the default provider
  profile-matcher annotate

  # Use a local Ollama server instead
  profile-matcher annotate run-42.json --provider ollama`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnnotate,
}

func init() {
	rootCmd.AddCommand(annotateCmd)

	annotateCmd.Flags().String("provider", "openai", "AI provider to use: openai, gemini, ollama")
	annotateCmd.Flags().String("model", "", "Override the provider's default model")
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	reportPath := "report.json"
	if len(args) == 1 {
		reportPath = args[0]
	}
	providerName := mustGetString(cmd, "provider")
	model := mustGetString(cmd, "model")

	cfg := config.Load()
	ctx := context.Background()

	var provider annotate.Provider
	switch providerName {
	case "openai":
		p, err := annotate.NewOpenAIProvider(cfg.OpenAI.Token, model)
		if err != nil {
			return fmt.Errorf("could not create OpenAI provider: %w", err)
		}
		provider = p
	case "gemini":
		p, err := annotate.NewGeminiProvider(ctx, cfg.Gemini.APIKey, model)
		if err != nil {
			return fmt.Errorf("could not create Gemini provider: %w", err)
		}
		provider = p
	case "ollama":
		if model == "" {
			model = cfg.Ollama.Model
		}
		provider = annotate.NewOllamaProvider(cfg.Ollama.URL, model)
	default:
		return fmt.Errorf("unknown provider: %s (supported: openai, gemini, ollama)", providerName)
	}

	doc, err := report.Load(reportPath)
	if err != nil {
		return err
	}

	fmt.Printf("Summarizing %d entries with %s...\n", len(doc.Results), provider.Name())
	annotated, annotateErr := annotate.Annotate(ctx, provider, doc)

	// Summaries written before a mid-run failure are kept.
	if annotated > 0 {
		if err := doc.WriteFile(reportPath); err != nil {
			return err
		}
	}
	if annotateErr != nil {
		return annotateErr
	}

	if annotated == 0 {
		fmt.Println("Nothing to annotate, every entry already has a summary")
		return nil
	}
	fmt.Printf("Annotated %d entries, report updated\n", annotated)
	return nil
}
