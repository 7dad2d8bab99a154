package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/alexvidal/facet-audit/internal/facets"
	"github.com/alexvidal/facet-audit/internal/types"
)

var promoteCmd = &cobra.Command{
	Use:   "promote",
	Short: "Promote a reviewed pattern into the registry",
	Long: "Appends a human-confirmed facet pattern to the registry and bumps its version. " +
		"Promotion is the only way a pattern enters production; the registry is append-only, " +
		"so earlier detections stay replayable against their recorded version.",
	RunE: runPromote,
}

var (
	promotePatternsFile string
	promoteName         string
	promoteMatch        string
	promoteExclude      string
	promoteDemandTerms  string
	promoteDatabaseURL  string
)

func init() {
	promoteCmd.Flags().StringVarP(&promotePatternsFile, "patterns", "p", "patterns.json", "Path to the pattern registry")
	promoteCmd.Flags().StringVar(&promoteName, "name", "", "Facet name, e.g. PLEGABLE (required)")
	promoteCmd.Flags().StringVar(&promoteMatch, "match", "", "RE2 match rule applied to URL paths (required)")
	promoteCmd.Flags().StringVar(&promoteExclude, "exclude", "", "RE2 exclude rule (RE2 has no lookahead; use this to carve out overlaps)")
	promoteCmd.Flags().StringVar(&promoteDemandTerms, "demand-terms", "", "Comma-separated demand label terms, e.g. \"plegable,flip\"")
	promoteCmd.Flags().StringVar(&promoteDatabaseURL, "db-url", "", "PostgreSQL URL for a registry snapshot (optional, defaults to DATABASE_URL)")
	_ = promoteCmd.MarkFlagRequired("name")
	_ = promoteCmd.MarkFlagRequired("match")

	rootCmd.AddCommand(promoteCmd)
}

func runPromote(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	reg, err := facets.LoadRegistry(promotePatternsFile)
	if err != nil {
		return fmt.Errorf("pattern registry load failed: %w", err)
	}

	pattern := types.FacetPattern{
		Name:        promoteName,
		Match:       promoteMatch,
		Exclude:     promoteExclude,
		DemandTerms: splitTerms(promoteDemandTerms),
	}
	if err := reg.Promote(pattern); err != nil {
		return fmt.Errorf("promotion rejected: %w", err)
	}
	if err := reg.Save(promotePatternsFile); err != nil {
		return err
	}

	if database := connectDB(ctx, promoteDatabaseURL); database != nil {
		defer database.Close()
		if err := database.SaveRegistrySnapshot(ctx, uuid.Nil, reg.Version, reg.Known(), "promote "+promoteName); err != nil {
			fmt.Printf("Warning: Failed to snapshot registry: %v\n", err)
		}
	}

	fmt.Printf("Promoted %q (registry now v%d) -> %s\n", promoteName, reg.Version, promotePatternsFile)
	return nil
}
