package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/krizmartin/profile-matcher/internal/casestore"
	"github.com/krizmartin/profile-matcher/internal/config"
	"github.com/krizmartin/profile-matcher/internal/web"
	"github.com/krizmartin/profile-matcher/internal/web/facesearch"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the review API",
	Long: `Start the read-only review API over the case store.

The server exposes case, report and similar-face endpoints under /api/v1
plus an embedded HTML viewer at the root. The similar-face search runs on
an in-memory index built from the cached embeddings at startup.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("api-key", "", "API key required by /api/v1 (empty leaves it open)")
}

// resolveServeOptions resolves host, port and API key from flags and
// environment variables.
func resolveServeOptions(cmd *cobra.Command) (string, int, string) {
	host := mustGetString(cmd, "host")
	port := mustGetInt(cmd, "port")
	apiKey := mustGetString(cmd, "api-key")

	if envHost := os.Getenv("SERVE_HOST"); envHost != "" {
		host = envHost
	}
	if envPort := os.Getenv("SERVE_PORT"); envPort != "" {
		fmt.Sscanf(envPort, "%d", &port)
	}
	if apiKey == "" {
		apiKey = os.Getenv("SERVE_API_KEY")
	}
	return host, port, apiKey
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := context.Background()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	cache, ok := st.(casestore.EmbeddingCache)
	if !ok {
		return errors.New("store backend cannot serve cached embeddings")
	}

	fmt.Println("Building in-memory face index...")
	index, err := facesearch.Build(ctx, st, cache, cfg.Store.DataDir, cfg.FaceAPI.Model)
	if err != nil {
		return fmt.Errorf("could not build face index: %w", err)
	}
	fmt.Printf("Face index built with %d faces (%s)\n", index.Count(), cfg.FaceAPI.Model)

	host, port, apiKey := resolveServeOptions(cmd)
	server := web.NewServer(st, index, host, port, apiKey)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting review API on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
