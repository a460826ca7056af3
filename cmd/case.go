package cmd

import (
	"github.com/spf13/cobra"
)

var caseCmd = &cobra.Command{
	Use:   "case",
	Short: "Manage person cases",
	Long:  `Commands for creating and inspecting person cases, each one a full name plus a reference photo.`,
}

func init() {
	rootCmd.AddCommand(caseCmd)
}
