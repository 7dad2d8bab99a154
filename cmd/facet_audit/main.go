// Package main provides the entry point for the facet_audit CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "facet_audit",
	Short: "Faceted navigation SEO audit toolkit",
	Long: "facet_audit turns crawl, analytics, and demand exports into an actionable facet report: " +
		"it detects facet URLs against a versioned pattern registry, finds authority leaks, " +
		"scores every facet, and verifies the winners live.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
