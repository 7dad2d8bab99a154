package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/alexvidal/facet-audit/internal/types"
)

func TestPrintSnapshot(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	snapshot := &types.CrawlSnapshot{
		Source:    "screamingfrog",
		CrawlDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Records: []types.UrlRecord{
			{URL: "https://store.example/moviles/8-gb-ram", ResponseCode: 200, HasWrapper: true, TrafficSEO: 1200},
			{URL: "https://store.example/moviles/nfc", ResponseCode: 404, TrafficSEO: 300},
			{URL: "https://store.example/moviles/apple", ResponseCode: 301},
		},
	}

	p.PrintSnapshot(snapshot)
	output := buf.String()

	assert.Contains(t, output, "CRAWL SNAPSHOT")
	assert.Contains(t, output, "screamingfrog")
	assert.Contains(t, output, "2026-03-01")
	assert.Contains(t, output, "200: 1   404: 1   other: 1")
	assert.Contains(t, output, "1500")
}

func TestPrintSnapshot_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintSnapshot(nil)

	assert.Empty(t, buf.String())
}

func TestPrintDetection(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	detection := &types.Detection{
		RegistryVersion: 3,
		Facets: map[string][]string{
			"RAM":   {"https://store.example/moviles/8-gb-ram", "https://store.example/moviles/16-gb-ram"},
			"MARCA": {"https://store.example/moviles/apple"},
		},
	}

	p.PrintDetection(detection)
	output := buf.String()

	assert.Contains(t, output, "FACET DETECTION")
	assert.Contains(t, output, "Registry version: 3")
	assert.Contains(t, output, "RAM")
	assert.Contains(t, output, "2 URLs")
	// Largest facet first.
	assert.Less(t, strings.Index(output, "RAM"), strings.Index(output, "MARCA"))
}

func TestPrintDetection_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintDetection(&types.Detection{Facets: map[string][]string{}})

	assert.Empty(t, buf.String())
}

func TestPrintCandidates(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	candidates := []types.PatternCandidate{
		{Token: "plegable", Count: 14, SampleURL: "https://store.example/moviles/plegable"},
		{Token: "resistente", Count: 11},
	}

	p.PrintCandidates(candidates)
	output := buf.String()

	assert.Contains(t, output, "UNKNOWN PATTERN CANDIDATES")
	assert.Contains(t, output, "plegable (14 URLs)")
	assert.Contains(t, output, "resistente (11 URLs)")
}

func TestPrintCandidates_NoneFound(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintCandidates(nil)

	assert.Contains(t, buf.String(), "NO UNKNOWN PATTERNS FOUND")
}

func TestPrintLeakReport(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	report := &types.LeakReport{
		Summary: types.LeakSummary{
			TotalURLs:            120,
			NoDistributionCount:  8,
			DilutionCount:        3,
			DeadEndCount:         5,
			NoneCount:            104,
			TotalAffectedTraffic: 52000,
		},
		Records: []types.LeakRecord{
			{URL: "https://store.example/moviles/5g", LeakType: types.LeakNoDistribution, TrafficSEO: 40328},
		},
		TopNoDistribution: []types.LeakRecord{
			{URL: "https://store.example/moviles/5g", LeakType: types.LeakNoDistribution, TrafficSEO: 40328},
		},
	}

	p.PrintLeakReport(report)
	output := buf.String()

	assert.Contains(t, output, "AUTHORITY LEAKS")
	assert.Contains(t, output, "URLs analyzed:    120")
	assert.Contains(t, output, "No distribution:  8")
	assert.Contains(t, output, "Affected traffic: 52000")
	assert.Contains(t, output, "Worst offender:")
	assert.Contains(t, output, "40328 visits")
}

func TestPrintLeakReport_NoLeaks(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintLeakReport(&types.LeakReport{})

	assert.Contains(t, buf.String(), "NO AUTHORITY LEAKS FOUND")
}

func TestPrintScores(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	scores := &types.FacetScores{
		Scores: []types.ScoreBreakdown{
			{
				FacetName:  "RAM",
				TotalScore: 78.91,
				Tier:       types.TierA,
				ActionType: types.ActionLink,
				Priority:   types.PriorityHigh,
			},
			{
				FacetName:  "NFC",
				TotalScore: 12.40,
				Tier:       types.TierD,
				ActionType: types.ActionIgnore,
				Priority:   types.PriorityLow,
			},
		},
	}

	p.PrintScores(scores)
	output := buf.String()

	assert.Contains(t, output, "FACET SCORES")
	assert.Contains(t, output, "Facets scored: 2")
	assert.Contains(t, output, "#1  RAM")
	assert.Contains(t, output, "78.91  tier A  link (high)")
	assert.Contains(t, output, "12.40  tier D  ignore (low)")
}

func TestPrintVerification(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	batch := &types.BatchVerification{
		Results: []types.VerificationResult{
			{URL: "https://store.example/moviles/8-gb-ram", Status: types.VerifyOK, StatusCode: 200, IsIndexable: true},
			{URL: "https://store.example/moviles/nfc", Status: types.VerifyError, Error: "request timed out"},
		},
		OKCount:        1,
		ErrorCount:     1,
		IndexableCount: 1,
		WallTimeMS:     640,
	}

	p.PrintVerification(batch)
	output := buf.String()

	assert.Contains(t, output, "VERIFICATION")
	assert.Contains(t, output, "2 URLs in 640ms")
	assert.Contains(t, output, "OK:        1")
	assert.Contains(t, output, "Failures:")
	assert.Contains(t, output, "https://store.example/moviles/nfc")
}

func TestPrintBox_LongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	snapshot := &types.CrawlSnapshot{
		Source: "a-crawl-export-source-name-long-enough-to-be-truncated-by-the-box",
		Records: []types.UrlRecord{
			{URL: "https://store.example/a", ResponseCode: 200},
		},
	}

	p.PrintSnapshot(snapshot)
	output := buf.String()

	// Should contain box characters
	assert.True(t, strings.Contains(output, "┌"))
	assert.True(t, strings.Contains(output, "└"))
	assert.True(t, strings.Contains(output, "│"))
}
