package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/krizmartin/profile-matcher/internal/config"
	"github.com/krizmartin/profile-matcher/internal/scrape"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the profile site through the scraping sidecar",
	Long: `Log in to the profile site through the browser automation sidecar and
save the opaque session state to disk. Scrape runs reuse the saved session
until it expires, then login needs to run again.

Credentials come from SCRAPER_USERNAME and SCRAPER_PASSWORD.`,
	RunE: runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	if cfg.Scraper.Username == "" || cfg.Scraper.Password == "" {
		return errors.New("SCRAPER_USERNAME and SCRAPER_PASSWORD environment variables are required")
	}

	client := scrape.NewClient(cfg.Scraper.URL, time.Duration(cfg.Scraper.Timeout)*time.Second)

	fmt.Printf("Logging in through the sidecar at %s...\n", cfg.Scraper.URL)
	session, err := client.Login(context.Background(), cfg.Scraper.Username, cfg.Scraper.Password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if err := scrape.SaveSession(cfg.Scraper.SessionFile, session); err != nil {
		return fmt.Errorf("could not save session: %w", err)
	}

	fmt.Printf("Session saved to %s\n", cfg.Scraper.SessionFile)
	return nil
}
