package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexvidal/facet-audit/internal/fetch"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [urls...]",
	Short: "Inspect live pages for their SEO filter wrapper",
	Long: "Fetches category pages and extracts the wrapper links actually served, so the crawl " +
		"export can be checked against production. Detects the storefront platform to pick " +
		"selectors, caches fetched pages when a database is attached, and can re-render " +
		"client-side wrappers in a headless browser with --render.",
	Args: cobra.MinimumNArgs(1),
	RunE: runInspect,
}

var (
	inspectRender      bool
	inspectSelector    string
	inspectTimeoutSec  int
	inspectNoCache     bool
	inspectOutFile     string
	inspectDatabaseURL string
	inspectVerbose     bool
)

func init() {
	inspectCmd.Flags().BoolVar(&inspectRender, "render", false, "Render pages in a headless browser when the static HTML has no wrapper (requires Chrome)")
	inspectCmd.Flags().StringVar(&inspectSelector, "selector", "", "CSS selector overriding the platform-derived wrapper selectors")
	inspectCmd.Flags().IntVar(&inspectTimeoutSec, "timeout", 30, "Browser rendering timeout in seconds")
	inspectCmd.Flags().BoolVar(&inspectNoCache, "no-cache", false, "Bypass the page cache even when a database is attached")
	inspectCmd.Flags().StringVarP(&inspectOutFile, "out", "o", "", "Write the audit results as JSON instead of just printing")
	inspectCmd.Flags().StringVar(&inspectDatabaseURL, "db-url", "", "PostgreSQL URL for the page cache (optional, defaults to DATABASE_URL)")
	inspectCmd.Flags().BoolVarP(&inspectVerbose, "verbose", "v", false, "Print per-page fetch details")

	rootCmd.AddCommand(inspectCmd)
}

func runInspect(_ *cobra.Command, args []string) error {
	ctx := context.Background()

	database := connectDB(ctx, inspectDatabaseURL)
	if database != nil {
		defer database.Close()
	}

	fetcherCfg := fetch.DefaultCachedFetcherConfig()
	fetcherCfg.SkipCache = inspectNoCache
	fetcher := fetch.NewCachedFetcher(database, fetcherCfg)

	opts := &fetch.AuditOptions{
		Render:         inspectRender,
		BrowserTimeout: time.Duration(inspectTimeoutSec) * time.Second,
		Verbose:        inspectVerbose,
	}
	if inspectSelector != "" {
		opts.Selectors = []string{inspectSelector}
	}

	audits := make([]fetch.WrapperAudit, 0, len(args))
	failures := 0
	for _, target := range args {
		audit, err := fetch.AuditWrapper(ctx, target, fetcher, opts)
		if err != nil {
			fmt.Printf("%-60s FETCH FAILED: %v\n", target, err)
			failures++
			continue
		}
		audits = append(audits, *audit)

		origin := "live"
		if audit.FromCache {
			origin = "cache"
		}
		if audit.UsedBrowser {
			origin = "browser"
		}
		fmt.Printf("%-60s %d links (%s, %s, HTTP %d)\n",
			audit.URL, audit.LinkCount, audit.Platform, origin, audit.StatusCode)
	}

	if inspectOutFile != "" && len(audits) > 0 {
		if err := writeArtifact(inspectOutFile, "", audits); err != nil {
			return err
		}
		fmt.Printf("Wrote %d audits -> %s\n", len(audits), inspectOutFile)
	}

	if failures == len(args) {
		return fmt.Errorf("all %d pages failed to fetch", failures)
	}
	return nil
}
