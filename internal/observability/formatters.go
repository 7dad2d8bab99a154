// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/alexvidal/facet-audit/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintSnapshot outputs a summary of the normalized crawl snapshot.
func (p *Printer) PrintSnapshot(snapshot *types.CrawlSnapshot) {
	if snapshot == nil {
		return
	}

	var ok, notFound, other, wrapped int
	var traffic float64
	for _, rec := range snapshot.Records {
		switch rec.ResponseCode {
		case 200:
			ok++
		case 404:
			notFound++
		default:
			other++
		}
		if rec.HasWrapper {
			wrapped++
		}
		traffic += rec.TrafficSEO
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Source:   %s\n", snapshot.Source))
	sb.WriteString(fmt.Sprintf("Crawled:  %s\n", snapshot.CrawlDate.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("URLs:     %d\n", len(snapshot.Records)))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("200: %d   404: %d   other: %d\n", ok, notFound, other))
	sb.WriteString(fmt.Sprintf("In wrapper:   %d\n", wrapped))
	sb.WriteString(fmt.Sprintf("SEO traffic:  %.0f", traffic))

	p.printBox("CRAWL SNAPSHOT", sb.String())
}

// PrintDetection outputs the detected facets with their URL counts, largest
// first.
func (p *Printer) PrintDetection(detection *types.Detection) {
	if detection == nil || len(detection.Facets) == 0 {
		return
	}

	names := make([]string, 0, len(detection.Facets))
	for name := range detection.Facets {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ni, nj := len(detection.Facets[names[i]]), len(detection.Facets[names[j]])
		if ni != nj {
			return ni > nj
		}
		return names[i] < names[j]
	})

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Registry version: %d\n", detection.RegistryVersion))
	sb.WriteString(fmt.Sprintf("Facets: %d\n\n", len(names)))

	count := min(len(names), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  %-20s %d URLs\n", names[i], len(detection.Facets[names[i]])))
	}
	if len(names) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(names)-maxItemsToShow))
	}

	p.printBox("FACET DETECTION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCandidates outputs discovered unknown tokens awaiting human review.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintCandidates(candidates []types.PatternCandidate) {
	if len(candidates) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ NO UNKNOWN PATTERNS FOUND")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d candidate tokens:\n\n", len(candidates)))

	count := min(len(candidates), maxItemsToShow)
	for i := 0; i < count; i++ {
		candidate := candidates[i]
		sb.WriteString(fmt.Sprintf("#%d  %s (%d URLs)\n", i+1, candidate.Token, candidate.Count))
		if candidate.SampleURL != "" {
			sample := candidate.SampleURL
			if len(sample) > 48 {
				sample = sample[:45] + "..."
			}
			sb.WriteString(fmt.Sprintf("    %s\n", sample))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(candidates) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more tokens", len(candidates)-maxItemsToShow))
	}

	p.printBox("UNKNOWN PATTERN CANDIDATES", sb.String())
}

// PrintLeakReport outputs the authority leak summary with the worst offender.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintLeakReport(report *types.LeakReport) {
	if report == nil {
		return
	}
	if len(report.Records) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ NO AUTHORITY LEAKS FOUND")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	summary := report.Summary

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("URLs analyzed:    %d\n", summary.TotalURLs))
	sb.WriteString(fmt.Sprintf("No distribution:  %d\n", summary.NoDistributionCount))
	sb.WriteString(fmt.Sprintf("Dilution:         %d\n", summary.DilutionCount))
	sb.WriteString(fmt.Sprintf("Dead ends:        %d\n", summary.DeadEndCount))
	sb.WriteString(fmt.Sprintf("Affected traffic: %.0f\n", summary.TotalAffectedTraffic))

	if len(report.TopNoDistribution) > 0 {
		worst := report.TopNoDistribution[0]
		url := worst.URL
		if len(url) > 50 {
			url = url[:47] + "..."
		}
		sb.WriteString("\nWorst offender:\n")
		sb.WriteString(fmt.Sprintf("  ⚠ %s\n", url))
		sb.WriteString(fmt.Sprintf("    %.0f visits, no wrapper links", worst.TrafficSEO))
	}

	p.printBox("AUTHORITY LEAKS", sb.String())
}

// PrintScores outputs the top scored facets with tier and recommended action.
func (p *Printer) PrintScores(scores *types.FacetScores) {
	if scores == nil || len(scores.Scores) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Facets scored: %d\n\n", len(scores.Scores)))

	count := min(len(scores.Scores), maxItemsToShow)
	for i := 0; i < count; i++ {
		breakdown := scores.Scores[i]
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, breakdown.FacetName))
		sb.WriteString(fmt.Sprintf("    %.2f  tier %s  %s (%s)\n",
			breakdown.TotalScore, breakdown.Tier, breakdown.ActionType, breakdown.Priority))
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(scores.Scores) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more facets", len(scores.Scores)-maxItemsToShow))
	}

	p.printBox("FACET SCORES", sb.String())
}

// PrintVerification outputs batch counters and the first failing URLs.
func (p *Printer) PrintVerification(batch *types.BatchVerification) {
	if batch == nil || len(batch.Results) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Verified:  %d URLs in %dms\n", len(batch.Results), batch.WallTimeMS))
	sb.WriteString(fmt.Sprintf("OK:        %d\n", batch.OKCount))
	sb.WriteString(fmt.Sprintf("Errors:    %d\n", batch.ErrorCount))
	sb.WriteString(fmt.Sprintf("Indexable: %d\n", batch.IndexableCount))

	var failures []types.VerificationResult
	for _, result := range batch.Results {
		if result.Status == types.VerifyError {
			failures = append(failures, result)
		}
	}
	if len(failures) > 0 {
		sb.WriteString("\nFailures:\n")
		count := min(len(failures), 3)
		for i := 0; i < count; i++ {
			url := failures[i].URL
			if len(url) > 50 {
				url = url[:47] + "..."
			}
			sb.WriteString(fmt.Sprintf("  ⚠ %s\n", url))
		}
		if len(failures) > 3 {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(failures)-3))
		}
	}

	p.printBox("VERIFICATION", strings.TrimSuffix(sb.String(), "\n"))
}
