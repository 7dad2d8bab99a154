package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/alexvidal/facet-audit/internal/pipeline"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the full facet audit end-to-end",
	Long: `Orchestrates the entire audit: crawl ingestion -> traffic join -> demand sources -> facet detection -> authority analysis -> aggregation and scoring -> CSV export, with optional live verification of the top-scored URLs.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runAuditPipeline,
}

var (
	runConfigFile   string
	runCrawlFile    string
	runTrafficFile  string
	runAdobeFile    string
	runSemrushFile  string
	runPatternsFile string
	runOutDir       string
	runTopN         int
	runSkipVerify   bool
	runVerbose      bool
	runDatabaseURL  string
)

func init() {
	// Config file flag (processed first)
	runCommand.Flags().StringVar(&runConfigFile, "config", "", "Path to config.json file (values can be overridden by other flags)")

	runCommand.Flags().StringVar(&runCrawlFile, "crawl", "", "Path to the crawl CSV export (required)")
	runCommand.Flags().StringVar(&runTrafficFile, "traffic", "", "Path to an analytics traffic CSV export")
	runCommand.Flags().StringVar(&runAdobeFile, "adobe", "", "Path to an Adobe internal-filter demand CSV")
	runCommand.Flags().StringVar(&runSemrushFile, "semrush", "", "Path to a Semrush keyword CSV")
	runCommand.Flags().StringVarP(&runPatternsFile, "patterns", "p", "", "Path to the pattern registry (overrides config)")
	runCommand.Flags().StringVar(&runOutDir, "out-dir", ".", "Directory artifacts and reports are written into")
	runCommand.Flags().IntVar(&runTopN, "top-n", 0, "How many top-scored URLs to verify (overrides config)")
	runCommand.Flags().BoolVar(&runSkipVerify, "skip-verify", false, "Skip live verification of the top-scored URLs")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed progress and artifact summaries")

	// Database URL for artifact persistence
	runCommand.Flags().StringVar(&runDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	_ = runCommand.MarkFlagRequired("crawl")

	rootCmd.AddCommand(runCommand)
}

func runAuditPipeline(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadAuditConfig(runConfigFile)
	if err != nil {
		return err
	}

	// Command-line args take priority over config file values.
	if cmd.Flags().Changed("patterns") {
		cfg.PatternsFile = runPatternsFile
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = runDatabaseURL
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = runVerbose
	}

	database := connectDB(ctx, cfg.DatabaseURL)
	if database != nil {
		defer database.Close()
	}

	opts := pipeline.RunOptions{
		CrawlPath:    runCrawlFile,
		TrafficPath:  runTrafficFile,
		AdobePath:    runAdobeFile,
		SemrushPath:  runSemrushFile,
		RegistryPath: cfg.PatternsFile,
		OutDir:       runOutDir,
		Config:       cfg,
		SkipVerify:   runSkipVerify,
		TopN:         runTopN,
		Verbose:      cfg.Verbose,
		DB:           database,
	}

	return pipeline.RunPipeline(ctx, opts)
}
