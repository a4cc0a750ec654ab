// Package main provides the entry point for the clinical trial payment
// reconciliation service.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "recon_agent",
	Short: "Clinical Trial Payment Reconciliation Service",
	Long:  "Reconciles clinical trial site payments against patient visit records, contracted rates, and budgets, producing a prioritized executive report.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
