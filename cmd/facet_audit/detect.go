package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alexvidal/facet-audit/internal/facets"
	"github.com/alexvidal/facet-audit/internal/observability"
	"github.com/alexvidal/facet-audit/internal/types"
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Detect facet URLs against the pattern registry",
	Long: "Applies every known pattern in the registry to the ingested URL records and writes " +
		"the detection artifact, embedding the registry version and the full pattern set the " +
		"run used so past detections stay reproducible.",
	RunE: runDetect,
}

var (
	detectInFile       string
	detectPatternsFile string
	detectOutFile      string
	detectVerbose      bool
)

func init() {
	detectCmd.Flags().StringVarP(&detectInFile, "in", "i", "", "Path to url_records.json (required)")
	detectCmd.Flags().StringVarP(&detectPatternsFile, "patterns", "p", "patterns.json", "Path to the pattern registry (missing file uses the built-in set)")
	detectCmd.Flags().StringVarP(&detectOutFile, "out", "o", "detection.json", "Output path for the detection artifact")
	detectCmd.Flags().BoolVarP(&detectVerbose, "verbose", "v", false, "Print the detection summary")
	_ = detectCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(detectCmd)
}

func runDetect(_ *cobra.Command, _ []string) error {
	var snapshot types.CrawlSnapshot
	if err := readJSONArtifact(detectInFile, &snapshot); err != nil {
		return err
	}

	reg, err := facets.LoadRegistry(detectPatternsFile)
	if err != nil {
		return fmt.Errorf("pattern registry load failed: %w", err)
	}

	detection, err := facets.Detect(reg, snapshotURLs(&snapshot))
	if err != nil {
		return fmt.Errorf("facet detection failed: %w", err)
	}

	if err := writeArtifact(detectOutFile, "detection.schema.json", detection); err != nil {
		return err
	}

	if detectVerbose {
		observability.NewPrinter(os.Stdout).PrintDetection(detection)
	}
	fmt.Printf("Detected %d facets across %d URLs (registry v%d) -> %s\n",
		detection.MatchedFacets(), len(snapshot.Records), reg.Version, detectOutFile)
	return nil
}
