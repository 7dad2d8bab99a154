package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexvidal/facet-audit/internal/facets"
	"github.com/alexvidal/facet-audit/internal/ingestion"
	"github.com/alexvidal/facet-audit/internal/observability"
	"github.com/alexvidal/facet-audit/internal/scoring"
	"github.com/alexvidal/facet-audit/internal/types"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Aggregate per-facet metrics and score every facet",
	Long: "Joins the detection artifact with the URL records and optional demand exports into " +
		"one record per facet, then scores the whole batch: demand, coverage, performance, " +
		"and opportunity sub-scores weighted into a 0-100 total with tier and recommended action.",
	RunE: runScore,
}

var (
	scoreDetectionFile string
	scoreRecordsFile   string
	scoreAdobeFile     string
	scoreSemrushFile   string
	scoreConfigFile    string
	scoreRecordsOut    string
	scoreOutFile       string
	scoreVerbose       bool
)

func init() {
	scoreCmd.Flags().StringVarP(&scoreDetectionFile, "detection", "d", "", "Path to detection.json (required)")
	scoreCmd.Flags().StringVarP(&scoreRecordsFile, "in", "i", "", "Path to url_records.json (required)")
	scoreCmd.Flags().StringVar(&scoreAdobeFile, "adobe", "", "Path to an Adobe internal-filter demand CSV")
	scoreCmd.Flags().StringVar(&scoreSemrushFile, "semrush", "", "Path to a Semrush keyword CSV")
	scoreCmd.Flags().StringVar(&scoreConfigFile, "config", "", "Path to config.json (weights and thresholds)")
	scoreCmd.Flags().StringVar(&scoreRecordsOut, "out-records", "facet_records.json", "Output path for the aggregated facet records")
	scoreCmd.Flags().StringVarP(&scoreOutFile, "out", "o", "facet_scores.json", "Output path for the scores artifact")
	scoreCmd.Flags().BoolVarP(&scoreVerbose, "verbose", "v", false, "Print the score table")
	_ = scoreCmd.MarkFlagRequired("detection")
	_ = scoreCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(scoreCmd)
}

func runScore(_ *cobra.Command, _ []string) error {
	cfg, err := loadAuditConfig(scoreConfigFile)
	if err != nil {
		return err
	}

	var detection types.Detection
	if err := readJSONArtifact(scoreDetectionFile, &detection); err != nil {
		return err
	}
	var snapshot types.CrawlSnapshot
	if err := readJSONArtifact(scoreRecordsFile, &snapshot); err != nil {
		return err
	}

	// Demand sources are optional and file-scoped: a broken export zeroes its
	// component instead of killing the scoring run.
	var adobe, semrush []types.DemandRecord
	if scoreAdobeFile != "" {
		if adobe, err = ingestion.LoadAdobe(scoreAdobeFile); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: adobe demand source skipped: %v\n", err)
			adobe = nil
		}
	}
	if scoreSemrushFile != "" {
		if semrush, err = ingestion.LoadSemrush(scoreSemrushFile); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: semrush demand source skipped: %v\n", err)
			semrush = nil
		}
	}

	records, err := facets.Aggregate(&detection, &snapshot, adobe, semrush)
	if err != nil {
		return fmt.Errorf("facet aggregation failed: %w", err)
	}

	scorer, err := scoring.NewScorer(cfg, records)
	if err != nil {
		return fmt.Errorf("scoring configuration rejected: %w", err)
	}
	scores := &types.FacetScores{
		GeneratedAt:     time.Now().UTC(),
		RegistryVersion: detection.RegistryVersion,
		Scores:          scorer.ScoreAll(),
	}

	if err := writeArtifact(scoreRecordsOut, "facet_records.schema.json", records); err != nil {
		return err
	}
	if err := writeArtifact(scoreOutFile, "facet_scores.schema.json", scores); err != nil {
		return err
	}

	if scoreVerbose {
		observability.NewPrinter(os.Stdout).PrintScores(scores)
	}
	fmt.Printf("Scored %d facets -> %s\n", len(scores.Scores), scoreOutFile)
	return nil
}
