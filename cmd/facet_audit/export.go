package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/alexvidal/facet-audit/internal/export"
	"github.com/alexvidal/facet-audit/internal/types"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export JSON artifacts as CSV reports",
	Long: "Converts the JSON artifacts of earlier steps into the CSV reports stakeholders " +
		"consume: the facet report, the authority leak list, and verification results. " +
		"Provide whichever artifacts you have; each produces its own CSV.",
	RunE: runExport,
}

var (
	exportScoresFile       string
	exportRecordsFile      string
	exportLeaksFile        string
	exportVerificationFile string
	exportOutDir           string
)

func init() {
	exportCmd.Flags().StringVar(&exportScoresFile, "scores", "", "Path to facet_scores.json (needs --records)")
	exportCmd.Flags().StringVar(&exportRecordsFile, "records", "", "Path to facet_records.json")
	exportCmd.Flags().StringVar(&exportLeaksFile, "leaks", "", "Path to leak_report.json")
	exportCmd.Flags().StringVar(&exportVerificationFile, "verification", "", "Path to verification.json")
	exportCmd.Flags().StringVar(&exportOutDir, "out-dir", ".", "Directory the CSV reports are written into")

	rootCmd.AddCommand(exportCmd)
}

func runExport(_ *cobra.Command, _ []string) error {
	if exportScoresFile == "" && exportLeaksFile == "" && exportVerificationFile == "" {
		return fmt.Errorf("nothing to export (provide --scores, --leaks, or --verification)")
	}
	if exportScoresFile != "" && exportRecordsFile == "" {
		return fmt.Errorf("--scores requires --records for status and confidence columns")
	}
	if err := os.MkdirAll(exportOutDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if exportScoresFile != "" {
		var scores types.FacetScores
		if err := readJSONArtifact(exportScoresFile, &scores); err != nil {
			return err
		}
		var records []types.FacetRecord
		if err := readJSONArtifact(exportRecordsFile, &records); err != nil {
			return err
		}
		path := filepath.Join(exportOutDir, "facet_report.csv")
		if err := export.WriteFacetReport(path, scores.Scores, records); err != nil {
			return fmt.Errorf("facet report export failed: %w", err)
		}
		fmt.Printf("Wrote %s\n", path)
	}

	if exportLeaksFile != "" {
		var report types.LeakReport
		if err := readJSONArtifact(exportLeaksFile, &report); err != nil {
			return err
		}
		path := filepath.Join(exportOutDir, "authority_leaks.csv")
		if err := export.WriteLeakReport(path, &report); err != nil {
			return fmt.Errorf("leak report export failed: %w", err)
		}
		fmt.Printf("Wrote %s\n", path)
	}

	if exportVerificationFile != "" {
		var batch types.BatchVerification
		if err := readJSONArtifact(exportVerificationFile, &batch); err != nil {
			return err
		}
		path := filepath.Join(exportOutDir, "verification.csv")
		if err := export.WriteVerification(path, &batch); err != nil {
			return fmt.Errorf("verification export failed: %w", err)
		}
		fmt.Printf("Wrote %s\n", path)
	}

	return nil
}
