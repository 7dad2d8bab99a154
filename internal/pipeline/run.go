// Package pipeline provides the high-level orchestration for a full facet audit.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/alexvidal/facet-audit/internal/authority"
	"github.com/alexvidal/facet-audit/internal/config"
	"github.com/alexvidal/facet-audit/internal/db"
	"github.com/alexvidal/facet-audit/internal/export"
	"github.com/alexvidal/facet-audit/internal/facets"
	"github.com/alexvidal/facet-audit/internal/ingestion"
	"github.com/alexvidal/facet-audit/internal/observability"
	"github.com/alexvidal/facet-audit/internal/schemas"
	"github.com/alexvidal/facet-audit/internal/scoring"
	"github.com/alexvidal/facet-audit/internal/types"
	"github.com/alexvidal/facet-audit/internal/verify"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
	RunID   string `json:"run_id,omitempty"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// RunOptions holds configuration for running the pipeline
type RunOptions struct {
	CrawlPath    string
	TrafficPath  string
	AdobePath    string
	SemrushPath  string
	RegistryPath string
	OutDir       string
	Config       config.Config
	SkipVerify   bool
	TopN         int
	Verbose      bool
	DB           *db.DB // optional; nil skips persistence
	OnProgress   ProgressCallback
}

// emitProgress calls the progress callback if configured
func emitProgress(opts *RunOptions, step, message string, content any) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{
			Step:    step,
			Message: message,
			Content: content,
		})
	}
}

// RunPipeline orchestrates the full facet audit pipeline
func RunPipeline(ctx context.Context, opts RunOptions) (err error) {

	// Initialize observability printer for verbose output
	printer := observability.NewPrinter(os.Stdout)

	if opts.OutDir == "" {
		opts.OutDir = "."
	}
	if mkErr := os.MkdirAll(opts.OutDir, 0o755); mkErr != nil {
		return fmt.Errorf("failed to create output directory: %w", mkErr)
	}

	// Step 1: Ingest crawl export. The crawl is the backbone of the audit;
	// without it there is nothing to classify, so failure here is fatal.
	fmt.Printf("Step 1/7: Ingesting crawl export: %s...\n", opts.CrawlPath)
	snapshot, err := ingestion.LoadCrawl(opts.CrawlPath)
	if err != nil {
		return fmt.Errorf("crawl ingestion failed: %w", err)
	}
	if opts.Verbose {
		printer.PrintSnapshot(snapshot)
	}
	emitProgress(&opts, db.KindURLRecords,
		fmt.Sprintf("Ingested %d URLs from %s", len(snapshot.Records), filepath.Base(opts.CrawlPath)), nil)

	// Create database run if connected
	var runID uuid.UUID
	if opts.DB != nil {
		id, dbErr := opts.DB.CreateRun(ctx, siteOf(snapshot), filepath.Base(opts.CrawlPath))
		if dbErr != nil {
			fmt.Printf("Warning: Failed to create database run: %v\n", dbErr)
		} else {
			runID = id
			if opts.Verbose {
				fmt.Printf("[VERBOSE] Created database run: %s\n", runID)
			}
			// Mark the run completed or failed on the way out.
			defer func() {
				status := db.RunStatusCompleted
				if err != nil {
					status = db.RunStatusFailed
				}
				_ = opts.DB.CompleteRun(ctx, runID, status)
			}()
		}
	}

	// Step 2: Join traffic sessions onto the crawl records. A broken traffic
	// export degrades the audit but does not invalidate it.
	if opts.TrafficPath != "" {
		fmt.Printf("Step 2/7: Joining traffic export: %s...\n", opts.TrafficPath)
		traffic, terr := ingestion.LoadTraffic(opts.TrafficPath)
		if terr != nil {
			fmt.Printf("Warning: traffic source skipped: %v\n", terr)
		} else {
			matched := ingestion.JoinTraffic(snapshot, traffic)
			if opts.Verbose {
				fmt.Printf("[VERBOSE] Joined traffic onto %d of %d URLs\n", matched, len(snapshot.Records))
			}
			emitProgress(&opts, db.KindURLRecords,
				fmt.Sprintf("Joined traffic onto %d URLs", matched), nil)
		}
	} else {
		fmt.Printf("Step 2/7: No traffic export provided, skipping...\n")
	}

	// Step 3: Load demand sources in parallel. Each branch swallows its own
	// file-scoped errors; a missing demand source just zeroes that component.
	fmt.Printf("Step 3/7: Loading demand sources...\n")
	var adobe, semrush []types.DemandRecord
	var g errgroup.Group
	g.Go(func() error {
		if opts.AdobePath == "" {
			return nil
		}
		records, aerr := ingestion.LoadAdobe(opts.AdobePath)
		if aerr != nil {
			fmt.Printf("Warning: adobe demand source skipped: %v\n", aerr)
			return nil
		}
		adobe = records
		return nil
	})
	g.Go(func() error {
		if opts.SemrushPath == "" {
			return nil
		}
		records, serr := ingestion.LoadSemrush(opts.SemrushPath)
		if serr != nil {
			fmt.Printf("Warning: semrush demand source skipped: %v\n", serr)
			return nil
		}
		semrush = records
		return nil
	})
	_ = g.Wait()
	if opts.Verbose {
		fmt.Printf("[VERBOSE] Demand labels loaded: adobe=%d semrush=%d\n", len(adobe), len(semrush))
	}

	// The snapshot artifact is written after the joins so it carries traffic.
	if _, err = writeArtifact(opts.OutDir, "url_records.json", snapshot); err != nil {
		return err
	}
	if opts.DB != nil && runID != uuid.Nil {
		_ = opts.DB.SaveArtifact(ctx, runID, db.KindURLRecords, snapshot)
	}

	// Step 4: Detect facets against the pattern registry.
	registryPath := opts.RegistryPath
	if registryPath == "" {
		registryPath = opts.Config.PatternsFile
	}
	fmt.Printf("Step 4/7: Detecting facets...\n")
	reg, err := facets.LoadRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("pattern registry load failed: %w", err)
	}
	urls := make([]string, len(snapshot.Records))
	for i, rec := range snapshot.Records {
		urls[i] = rec.URL
	}
	detection, err := facets.Detect(reg, urls)
	if err != nil {
		return fmt.Errorf("facet detection failed: %w", err)
	}
	if opts.Verbose {
		printer.PrintDetection(detection)
	}
	if _, err = writeArtifact(opts.OutDir, "detection.json", detection); err != nil {
		return err
	}
	emitProgress(&opts, db.KindDetection,
		fmt.Sprintf("Detected %d facets across %d URLs (registry v%d)", detection.MatchedFacets(), len(urls), reg.Version), detection)
	if opts.DB != nil && runID != uuid.Nil {
		_ = opts.DB.SaveArtifact(ctx, runID, db.KindDetection, detection)
		// Snapshot the registry so this run stays reproducible after promotes.
		_ = opts.DB.SaveRegistrySnapshot(ctx, runID, reg.Version, reg.Known(), "audit run")
	}

	// Step 5: Authority leak analysis.
	fmt.Printf("Step 5/7: Analyzing authority leaks...\n")
	leakReport := authority.Analyze(snapshot, opts.Config.Thresholds)
	if opts.Verbose {
		printer.PrintLeakReport(leakReport)
	}
	if _, err = writeArtifact(opts.OutDir, "leak_report.json", leakReport); err != nil {
		return err
	}
	emitProgress(&opts, db.KindLeakReport,
		fmt.Sprintf("Classified %d URLs: %d no-distribution, %d dilution, %d dead ends",
			leakReport.Summary.TotalURLs, leakReport.Summary.NoDistributionCount,
			leakReport.Summary.DilutionCount, leakReport.Summary.DeadEndCount), nil)
	if opts.DB != nil && runID != uuid.Nil {
		_ = opts.DB.SaveArtifact(ctx, runID, db.KindLeakReport, leakReport)
	}

	// Step 6: Aggregate per-facet metrics and score them. A rejected scoring
	// config is an operator error and aborts the run.
	fmt.Printf("Step 6/7: Aggregating and scoring facets...\n")
	records, err := facets.Aggregate(detection, snapshot, adobe, semrush)
	if err != nil {
		return fmt.Errorf("facet aggregation failed: %w", err)
	}
	scorer, err := scoring.NewScorer(opts.Config, records)
	if err != nil {
		return fmt.Errorf("scoring configuration rejected: %w", err)
	}
	scores := &types.FacetScores{
		GeneratedAt:     time.Now().UTC(),
		RegistryVersion: reg.Version,
		Scores:          scorer.ScoreAll(),
	}
	if opts.Verbose {
		printer.PrintScores(scores)
	}
	if _, err = writeArtifact(opts.OutDir, "facet_records.json", records); err != nil {
		return err
	}
	if _, err = writeArtifact(opts.OutDir, "facet_scores.json", scores); err != nil {
		return err
	}
	emitProgress(&opts, db.KindFacetScores,
		fmt.Sprintf("Scored %d facets", len(scores.Scores)), scores)
	if opts.DB != nil && runID != uuid.Nil {
		_ = opts.DB.SaveArtifact(ctx, runID, db.KindFacetRecords, records)
		_ = opts.DB.SaveArtifact(ctx, runID, db.KindFacetScores, scores)
	}

	// Step 7: Export CSV reports, then optionally verify the top-scored URLs.
	fmt.Printf("Step 7/7: Exporting reports to %s...\n", opts.OutDir)
	reportPath := filepath.Join(opts.OutDir, "facet_report.csv")
	if err = export.WriteFacetReport(reportPath, scores.Scores, records); err != nil {
		return fmt.Errorf("facet report export failed: %w", err)
	}
	leaksPath := filepath.Join(opts.OutDir, "authority_leaks.csv")
	if err = export.WriteLeakReport(leaksPath, leakReport); err != nil {
		return fmt.Errorf("leak report export failed: %w", err)
	}
	if opts.DB != nil && runID != uuid.Nil {
		if data, rerr := os.ReadFile(reportPath); rerr == nil {
			_ = opts.DB.SaveTextArtifact(ctx, runID, db.KindExportCSV, string(data))
		}
	}

	if !opts.SkipVerify {
		topN := opts.TopN
		if topN <= 0 {
			topN = opts.Config.Verification.TopN
		}
		targets := topScoredURLs(scores.Scores, detection, topN)
		if len(targets) == 0 {
			fmt.Printf("No facet URLs to verify, skipping verification...\n")
		} else {
			fmt.Printf("Verifying %d top-scored URLs...\n", len(targets))
			verifier := verify.New(verify.FromConfig(opts.Config.Verification))
			batch := verifier.VerifyBatch(ctx, targets)
			if opts.Verbose {
				printer.PrintVerification(batch)
			}
			if _, err = writeArtifact(opts.OutDir, "verification.json", batch); err != nil {
				return err
			}
			if err = export.WriteVerification(filepath.Join(opts.OutDir, "verification.csv"), batch); err != nil {
				return fmt.Errorf("verification export failed: %w", err)
			}
			emitProgress(&opts, db.KindVerification,
				fmt.Sprintf("Verified %d URLs", len(batch.Results)), nil)
			if opts.DB != nil && runID != uuid.Nil {
				_ = opts.DB.SaveArtifact(ctx, runID, db.KindVerification, batch)
			}
		}
	}

	fmt.Printf("Done! Reports written to %s.\n", opts.OutDir)
	return nil
}

// writeArtifact marshals content into the output directory and checks it
// against its schema. A schema mismatch is reported as a warning; the file
// on disk stays the source of truth for downstream subcommands.
func writeArtifact(outDir, name string, content any) (string, error) {
	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	path := filepath.Join(outDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	schemaName := strings.TrimSuffix(name, ".json") + ".schema.json"
	if schemaPath := schemas.ResolveSchemaPath(filepath.Join("schemas", schemaName)); schemaPath != "" {
		if verr := schemas.ValidateJSON(schemaPath, path); verr != nil {
			fmt.Printf("Warning: %s failed schema validation: %v\n", name, verr)
		}
	}
	return path, nil
}

// siteOf derives the audited site from the snapshot, falling back to the
// first crawled URL when the export carried no recognizable home page.
func siteOf(snapshot *types.CrawlSnapshot) string {
	target := snapshot.HomeURL
	if target == "" && len(snapshot.Records) > 0 {
		target = snapshot.Records[0].URL
	}
	if parsed, err := url.Parse(target); err == nil && parsed.Host != "" {
		return parsed.Host
	}
	return target
}

// topScoredURLs walks facets in score order and collects their matched URLs
// until n are gathered. URLs shared between facets are only verified once.
func topScoredURLs(scores []types.ScoreBreakdown, detection *types.Detection, n int) []string {
	if n <= 0 {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, s := range scores {
		for _, u := range detection.Facets[s.FacetName] {
			if seen[u] {
				continue
			}
			seen[u] = true
			out = append(out, u)
			if len(out) >= n {
				return out
			}
		}
	}
	return out
}
