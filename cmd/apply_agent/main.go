// Package main provides the entry point for the quick-apply agent.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "apply_agent",
	Short: "Quick-apply job application agent",
	Long: `apply_agent works through job search results, opens each listing's quick-apply form,
answers every question from the applicant profile or a language model, and submits the form.
Failed applications are discarded and logged for manual follow-up.`,
	SilenceUsage: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
