package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexvidal/facet-audit/internal/export"
	"github.com/alexvidal/facet-audit/internal/observability"
	"github.com/alexvidal/facet-audit/internal/verify"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [urls...]",
	Short: "Verify URLs live: status, redirects, indexability",
	Long: "Checks URLs over HTTP with a fixed worker pool and shared pacing: HEAD with a GET " +
		"fallback, redirects followed manually, and noindex detection from X-Robots-Tag. " +
		"URLs come from arguments, --file (one per line), or both.",
	RunE: runVerify,
}

var (
	verifyURLsFile   string
	verifyConfigFile string
	verifyOutFile    string
	verifyCSVFile    string
	verifyVerbose    bool
)

func init() {
	verifyCmd.Flags().StringVarP(&verifyURLsFile, "file", "f", "", "Path to a file of URLs, one per line")
	verifyCmd.Flags().StringVar(&verifyConfigFile, "config", "", "Path to config.json (workers, pacing, timeout, retry)")
	verifyCmd.Flags().StringVarP(&verifyOutFile, "out", "o", "verification.json", "Output path for the verification artifact")
	verifyCmd.Flags().StringVar(&verifyCSVFile, "csv", "", "Also export the results as CSV")
	verifyCmd.Flags().BoolVarP(&verifyVerbose, "verbose", "v", false, "Print the verification summary")

	rootCmd.AddCommand(verifyCmd)
}

func runVerify(_ *cobra.Command, args []string) error {
	cfg, err := loadAuditConfig(verifyConfigFile)
	if err != nil {
		return err
	}

	urls := append([]string{}, args...)
	if verifyURLsFile != "" {
		fromFile, err := readURLLines(verifyURLsFile)
		if err != nil {
			return err
		}
		urls = append(urls, fromFile...)
	}
	if len(urls) == 0 {
		return fmt.Errorf("no URLs to verify (pass them as arguments or via --file)")
	}

	verifier := verify.New(verify.FromConfig(cfg.Verification))
	batch := verifier.VerifyBatch(context.Background(), urls)

	if err := writeArtifact(verifyOutFile, "verification.schema.json", batch); err != nil {
		return err
	}
	if verifyCSVFile != "" {
		if err := export.WriteVerification(verifyCSVFile, batch); err != nil {
			return fmt.Errorf("verification export failed: %w", err)
		}
	}

	if verifyVerbose {
		observability.NewPrinter(os.Stdout).PrintVerification(batch)
	}
	fmt.Printf("Verified %d URLs: %d ok, %d errors, %d indexable -> %s\n",
		len(batch.Results), batch.OKCount, batch.ErrorCount, batch.IndexableCount, verifyOutFile)
	return nil
}

// readURLLines reads a URL list file, skipping blanks and # comments.
func readURLLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return urls, nil
}
