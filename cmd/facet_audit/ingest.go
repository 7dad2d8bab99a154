package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alexvidal/facet-audit/internal/ingestion"
	"github.com/alexvidal/facet-audit/internal/observability"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Normalize a crawl export (plus optional traffic) into url_records.json",
	Long: "Reads a crawl CSV export, normalizes it into canonical URL records, and joins " +
		"analytics traffic onto them when a traffic export is provided. A broken traffic " +
		"file is skipped with a warning; only the crawl itself is required to be intact.",
	RunE: runIngest,
}

var (
	ingestCrawlFile   string
	ingestTrafficFile string
	ingestOutFile     string
	ingestVerbose     bool
)

func init() {
	ingestCmd.Flags().StringVar(&ingestCrawlFile, "crawl", "", "Path to the crawl CSV export (required)")
	ingestCmd.Flags().StringVar(&ingestTrafficFile, "traffic", "", "Path to an analytics traffic CSV export")
	ingestCmd.Flags().StringVarP(&ingestOutFile, "out", "o", "url_records.json", "Output path for the URL records artifact")
	ingestCmd.Flags().BoolVarP(&ingestVerbose, "verbose", "v", false, "Print the ingest summary")
	_ = ingestCmd.MarkFlagRequired("crawl")

	rootCmd.AddCommand(ingestCmd)
}

func runIngest(_ *cobra.Command, _ []string) error {
	snapshot, err := ingestion.LoadCrawl(ingestCrawlFile)
	if err != nil {
		return fmt.Errorf("crawl ingestion failed: %w", err)
	}

	if ingestTrafficFile != "" {
		traffic, terr := ingestion.LoadTraffic(ingestTrafficFile)
		if terr != nil {
			fmt.Fprintf(os.Stderr, "Warning: traffic source skipped: %v\n", terr)
		} else {
			matched := ingestion.JoinTraffic(snapshot, traffic)
			fmt.Printf("Joined traffic onto %d of %d URLs\n", matched, len(snapshot.Records))
		}
	}

	if err := writeArtifact(ingestOutFile, "url_records.schema.json", snapshot); err != nil {
		return err
	}

	if ingestVerbose {
		observability.NewPrinter(os.Stdout).PrintSnapshot(snapshot)
	}
	fmt.Printf("Ingested %d URLs from %s -> %s\n", len(snapshot.Records), ingestCrawlFile, ingestOutFile)
	return nil
}
