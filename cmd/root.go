package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	storeURI string
	dataDir  string
)

var rootCmd = &cobra.Command{
	Use:   "profile-matcher",
	Short: "A CLI tool for matching people to scraped public profiles by face and name",
	Long: `Profile Matcher is a CLI application that takes person cases (a full name
plus one reference photo), discovers candidate profiles through a browser
automation sidecar, scores candidate photos against the reference face with
a face recognition service, and classifies every case with a deterministic
match verdict.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&storeURI, "store", "", "Case store URI (file://DIR, postgres://..., mysql://...)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Data directory for the file store (default ./data)")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
