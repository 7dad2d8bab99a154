package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alexvidal/facet-audit/internal/facets"
	"github.com/alexvidal/facet-audit/internal/suggest"
	"github.com/alexvidal/facet-audit/internal/types"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Ask Gemini to propose names and rules for discovered candidates",
	Long: "Takes the discover output and asks Gemini to propose a facet name and match rule per " +
		"candidate token. Suggestions are advisory: review them, then `promote` the ones you " +
		"accept. Requires GEMINI_API_KEY (or --api-key).",
	RunE: runSuggest,
}

var (
	suggestInFile       string
	suggestPatternsFile string
	suggestOutFile      string
	suggestAPIKey       string
)

func init() {
	suggestCmd.Flags().StringVarP(&suggestInFile, "in", "i", "", "Path to candidates.json (required)")
	suggestCmd.Flags().StringVarP(&suggestPatternsFile, "patterns", "p", "patterns.json", "Path to the pattern registry (known names steer the prompt)")
	suggestCmd.Flags().StringVarP(&suggestOutFile, "out", "o", "suggestions.json", "Output path for the suggestions artifact")
	suggestCmd.Flags().StringVar(&suggestAPIKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY env var)")
	_ = suggestCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(suggestCmd)
}

func runSuggest(_ *cobra.Command, _ []string) error {
	apiKey := suggestAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("API key is required (set GEMINI_API_KEY environment variable or use --api-key flag)")
	}

	var candidates []types.PatternCandidate
	if err := readJSONArtifact(suggestInFile, &candidates); err != nil {
		return err
	}
	if len(candidates) == 0 {
		return fmt.Errorf("no candidates in %s; run discover first", suggestInFile)
	}

	reg, err := facets.LoadRegistry(suggestPatternsFile)
	if err != nil {
		return fmt.Errorf("pattern registry load failed: %w", err)
	}
	known := make([]string, 0, len(reg.Patterns))
	for _, p := range reg.Known() {
		known = append(known, p.Name)
	}

	suggestions, err := suggest.Suggest(context.Background(), candidates, known, apiKey)
	if err != nil {
		return fmt.Errorf("suggestion failed: %w", err)
	}

	if err := writeArtifact(suggestOutFile, "suggestions.schema.json", suggestions); err != nil {
		return err
	}

	fmt.Printf("Suggested names for %d candidates -> %s\n", len(suggestions), suggestOutFile)
	fmt.Printf("Review them, then promote accepted patterns with `facet_audit promote`.\n")
	return nil
}
