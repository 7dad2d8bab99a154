// Package export writes analysis artifacts as plain CSV for downstream
// reporting tools. Report styling is out of scope; these are the data
// interfaces.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/alexvidal/facet-audit/internal/types"
)

var (
	facetReportHeader = []string{
		"facet_name", "demand_score", "performance_score", "coverage_score",
		"opportunity_score", "total_score", "tier", "action_type", "priority",
		"status", "confidence",
	}
	leakReportHeader = []string{
		"url", "leak_type", "severity", "traffic_seo", "wrapper_link_count",
	}
	verificationHeader = []string{
		"url", "status", "status_code", "final_url", "is_indexable", "elapsed_ms",
	}
)

// WriteFacetReport writes one row per scored facet, in score order, joined
// with the facet record's status and confidence.
func WriteFacetReport(path string, scores []types.ScoreBreakdown, records []types.FacetRecord) error {
	byName := make(map[string]types.FacetRecord, len(records))
	for _, rec := range records {
		byName[rec.FacetName] = rec
	}

	rows := make([][]string, 0, len(scores))
	for _, s := range scores {
		rec := byName[s.FacetName]
		rows = append(rows, []string{
			s.FacetName,
			formatScore(s.ComponentScores[types.ComponentDemand]),
			formatScore(s.ComponentScores[types.ComponentPerformance]),
			formatScore(s.ComponentScores[types.ComponentCoverage]),
			formatScore(s.ComponentScores[types.ComponentOpportunity]),
			formatScore(s.TotalScore),
			string(s.Tier),
			string(s.ActionType),
			string(s.Priority),
			string(rec.Status),
			string(rec.Confidence),
		})
	}
	return writeCSV(path, facetReportHeader, rows)
}

// WriteLeakReport writes one row per leaking URL.
func WriteLeakReport(path string, report *types.LeakReport) error {
	rows := make([][]string, 0, len(report.Records))
	for _, rec := range report.Records {
		rows = append(rows, []string{
			rec.URL,
			string(rec.LeakType),
			string(rec.Severity),
			strconv.FormatFloat(rec.TrafficSEO, 'f', -1, 64),
			strconv.Itoa(rec.WrapperLinkCount),
		})
	}
	return writeCSV(path, leakReportHeader, rows)
}

// WriteVerification writes one row per verified URL, in input order.
func WriteVerification(path string, batch *types.BatchVerification) error {
	rows := make([][]string, 0, len(batch.Results))
	for _, r := range batch.Results {
		rows = append(rows, []string{
			r.URL,
			string(r.Status),
			strconv.Itoa(r.StatusCode),
			r.FinalURL,
			strconv.FormatBool(r.IsIndexable),
			strconv.FormatInt(r.ElapsedMS, 10),
		})
	}
	return writeCSV(path, verificationHeader, rows)
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
