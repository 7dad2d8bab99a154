package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alexvidal/facet-audit/internal/authority"
	"github.com/alexvidal/facet-audit/internal/observability"
	"github.com/alexvidal/facet-audit/internal/types"
)

var authorityCmd = &cobra.Command{
	Use:   "authority",
	Short: "Classify authority leaks across the crawled URLs",
	Long: "Classifies every URL record into a leak type: dead ends (404s with historical " +
		"traffic), no-distribution pages (live traffic, no wrapper), and diluting wrappers " +
		"(too many links for too little traffic). Writes the leak report artifact.",
	RunE: runAuthority,
}

var (
	authorityInFile     string
	authorityConfigFile string
	authorityOutFile    string
	authorityVerbose    bool
)

func init() {
	authorityCmd.Flags().StringVarP(&authorityInFile, "in", "i", "", "Path to url_records.json (required)")
	authorityCmd.Flags().StringVar(&authorityConfigFile, "config", "", "Path to config.json (dilution thresholds)")
	authorityCmd.Flags().StringVarP(&authorityOutFile, "out", "o", "leak_report.json", "Output path for the leak report artifact")
	authorityCmd.Flags().BoolVarP(&authorityVerbose, "verbose", "v", false, "Print the leak summary")
	_ = authorityCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(authorityCmd)
}

func runAuthority(_ *cobra.Command, _ []string) error {
	cfg, err := loadAuditConfig(authorityConfigFile)
	if err != nil {
		return err
	}

	var snapshot types.CrawlSnapshot
	if err := readJSONArtifact(authorityInFile, &snapshot); err != nil {
		return err
	}

	report := authority.Analyze(&snapshot, cfg.Thresholds)

	if err := writeArtifact(authorityOutFile, "leak_report.schema.json", report); err != nil {
		return err
	}

	if authorityVerbose {
		observability.NewPrinter(os.Stdout).PrintLeakReport(report)
	}
	fmt.Printf("Classified %d URLs: %d no-distribution, %d dilution, %d dead ends -> %s\n",
		report.Summary.TotalURLs, report.Summary.NoDistributionCount,
		report.Summary.DilutionCount, report.Summary.DeadEndCount, authorityOutFile)
	return nil
}
