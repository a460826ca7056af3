package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/krizmartin/profile-matcher/internal/casestore"
	"github.com/krizmartin/profile-matcher/internal/config"
	"github.com/krizmartin/profile-matcher/internal/faceapi"
	"github.com/krizmartin/profile-matcher/internal/pipeline"
	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score [slug]",
	Short: "Score candidate photos against the case reference face",
	Long: `Compare every unscored candidate photo with the case reference image
through the face recognition service and store the resulting face score.
Candidates without a usable photo are skipped; a photo without a detectable
face counts as failed and stays unscored.

FACE_SCORE_MODE selects how the comparison runs: "verify" sends both images
per pair, "embed" caches one embedding per image and compares locally.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().Bool("all", false, "Score every stored case")
	scoreCmd.Flags().Bool("force", false, "Re-score candidates that already carry a score")
}

// buildScorer creates the configured face scorer. Embed mode needs a known
// distance threshold for the model and uses the store as embedding cache.
func buildScorer(cfg *config.Config, st casestore.Store) (faceapi.Scorer, error) {
	client := faceapi.NewClient(cfg.FaceAPI.URL, time.Duration(cfg.FaceAPI.Timeout)*time.Second)

	switch cfg.FaceAPI.Mode {
	case "verify":
		return faceapi.NewVerifyScorer(client, cfg.FaceAPI.Model, cfg.FaceAPI.Detector, cfg.Match.Steepness), nil
	case "embed":
		threshold, ok := cfg.ModelThreshold(cfg.FaceAPI.Model)
		if !ok {
			return nil, fmt.Errorf("no distance threshold known for model %s", cfg.FaceAPI.Model)
		}
		cache, ok := st.(casestore.EmbeddingCache)
		if !ok {
			return nil, fmt.Errorf("store backend cannot cache embeddings")
		}
		return faceapi.NewEmbedScorer(client, cfg.FaceAPI.Model, cfg.FaceAPI.Detector, threshold, cfg.Match.Steepness, cache), nil
	default:
		return nil, fmt.Errorf("unknown face score mode %q (supported: verify, embed)", cfg.FaceAPI.Mode)
	}
}

func runScore(cmd *cobra.Command, args []string) error {
	all := mustGetBool(cmd, "all")
	force := mustGetBool(cmd, "force")

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

	scorer, err := buildScorer(cfg, st)
	if err != nil {
		return err
	}
	runner := pipeline.New(st, nil, scorer, cfg.Store.DataDir, cfg.FaceAPI.MaxImageEdge)

	fmt.Printf("Scoring with %s/%s in %s mode\n", cfg.FaceAPI.Model, cfg.FaceAPI.Detector, cfg.FaceAPI.Mode)
	for _, person := range cases {
		stats, err := runner.ScoreCase(ctx, person, force)
		if err != nil {
			return fmt.Errorf("could not score case %s: %w", person.Slug, err)
		}
		fmt.Printf("%s: %d scored, %d skipped, %d failed\n", person.Slug, stats.Scored, stats.Skipped, stats.Failed)
	}
	return nil
}
