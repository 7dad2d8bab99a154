package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alexvidal/facet-audit/internal/facets"
	"github.com/alexvidal/facet-audit/internal/observability"
	"github.com/alexvidal/facet-audit/internal/types"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Surface filter tokens no known pattern covers",
	Long: "Tokenizes the crawl's filter path segments and counts tokens that no registry pattern " +
		"matches. The output is a candidate list for human review; nothing is promoted " +
		"automatically. Feed it to `suggest` for naming help, then `promote` what you accept.",
	RunE: runDiscover,
}

var (
	discoverInFile        string
	discoverPatternsFile  string
	discoverConfigFile    string
	discoverOutFile       string
	discoverMinCount      int
	discoverMaxCandidates int
	discoverVerbose       bool
)

func init() {
	discoverCmd.Flags().StringVarP(&discoverInFile, "in", "i", "", "Path to url_records.json (required)")
	discoverCmd.Flags().StringVarP(&discoverPatternsFile, "patterns", "p", "patterns.json", "Path to the pattern registry")
	discoverCmd.Flags().StringVar(&discoverConfigFile, "config", "", "Path to config.json")
	discoverCmd.Flags().StringVarP(&discoverOutFile, "out", "o", "candidates.json", "Output path for the candidates artifact")
	discoverCmd.Flags().IntVar(&discoverMinCount, "min-count", 0, "Minimum occurrences before a token is surfaced (overrides config)")
	discoverCmd.Flags().IntVar(&discoverMaxCandidates, "max-candidates", 0, "Maximum candidates returned (overrides config)")
	discoverCmd.Flags().BoolVarP(&discoverVerbose, "verbose", "v", false, "Print the candidate summary")
	_ = discoverCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, _ []string) error {
	cfg, err := loadAuditConfig(discoverConfigFile)
	if err != nil {
		return err
	}
	minCount := cfg.Discovery.MinCount
	maxCandidates := cfg.Discovery.MaxCandidates
	if cmd.Flags().Changed("min-count") {
		minCount = discoverMinCount
	}
	if cmd.Flags().Changed("max-candidates") {
		maxCandidates = discoverMaxCandidates
	}

	var snapshot types.CrawlSnapshot
	if err := readJSONArtifact(discoverInFile, &snapshot); err != nil {
		return err
	}

	reg, err := facets.LoadRegistry(discoverPatternsFile)
	if err != nil {
		return fmt.Errorf("pattern registry load failed: %w", err)
	}
	matcher, err := facets.Compile(reg)
	if err != nil {
		return fmt.Errorf("pattern compilation failed: %w", err)
	}

	candidates := matcher.DetectUnknown(snapshotURLs(&snapshot), minCount, maxCandidates)

	if err := writeArtifact(discoverOutFile, "candidates.schema.json", candidates); err != nil {
		return err
	}

	if discoverVerbose {
		observability.NewPrinter(os.Stdout).PrintCandidates(candidates)
	}
	fmt.Printf("Found %d candidate tokens (min count %d) -> %s\n", len(candidates), minCount, discoverOutFile)
	return nil
}
