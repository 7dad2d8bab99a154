package authority

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexvidal/facet-audit/internal/config"
	"github.com/alexvidal/facet-audit/internal/types"
)

func testThresholds() config.Thresholds {
	return config.Thresholds{DilutionLinks: 10, DilutionLowTraffic: 500}
}

func TestClassify_Precedence(t *testing.T) {
	th := testThresholds()

	tests := []struct {
		name string
		rec  types.UrlRecord
		want types.LeakType
	}{
		{
			"dead end wins even with dilution-shaped wrapper fields",
			types.UrlRecord{ResponseCode: 404, TrafficSEO: 50, HasWrapper: true, WrapperLinkCount: 30},
			types.LeakDeadEnd,
		},
		{
			"live page with traffic and no wrapper",
			types.UrlRecord{ResponseCode: 200, TrafficSEO: 500, HasWrapper: false},
			types.LeakNoDistribution,
		},
		{
			"live wrapper page with many links and little traffic",
			types.UrlRecord{ResponseCode: 200, TrafficSEO: 100, HasWrapper: true, WrapperLinkCount: 25},
			types.LeakDilution,
		},
		{
			"404 without historical traffic",
			types.UrlRecord{ResponseCode: 404, TrafficSEO: 0},
			types.LeakNone,
		},
		{
			"live page without traffic or wrapper",
			types.UrlRecord{ResponseCode: 200, TrafficSEO: 0, HasWrapper: false},
			types.LeakNone,
		},
		{
			"wrapper page under the link threshold",
			types.UrlRecord{ResponseCode: 200, TrafficSEO: 100, HasWrapper: true, WrapperLinkCount: 5},
			types.LeakNone,
		},
		{
			"wrapper page earning enough traffic for its links",
			types.UrlRecord{ResponseCode: 200, TrafficSEO: 1000, HasWrapper: true, WrapperLinkCount: 50},
			types.LeakNone,
		},
		{
			"redirects are no leak type",
			types.UrlRecord{ResponseCode: 301, TrafficSEO: 100},
			types.LeakNone,
		},
		{
			"zero-traffic wrapper page still dilutes",
			types.UrlRecord{ResponseCode: 200, TrafficSEO: 0, HasWrapper: true, WrapperLinkCount: 50},
			types.LeakDilution,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := Classify(tt.rec, th)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_Severity(t *testing.T) {
	th := testThresholds()

	tests := []struct {
		name string
		rec  types.UrlRecord
		want types.Severity
	}{
		{"no-distribution high", types.UrlRecord{ResponseCode: 200, TrafficSEO: 6000}, types.SeverityHigh},
		{"no-distribution medium", types.UrlRecord{ResponseCode: 200, TrafficSEO: 1500}, types.SeverityMedium},
		{"no-distribution low", types.UrlRecord{ResponseCode: 200, TrafficSEO: 500}, types.SeverityLow},
		{"dead-end high", types.UrlRecord{ResponseCode: 404, TrafficSEO: 1500}, types.SeverityHigh},
		{"dead-end medium", types.UrlRecord{ResponseCode: 404, TrafficSEO: 150}, types.SeverityMedium},
		{"dead-end low", types.UrlRecord{ResponseCode: 404, TrafficSEO: 50}, types.SeverityLow},
		{
			"dilution high ratio",
			types.UrlRecord{ResponseCode: 200, TrafficSEO: 100, HasWrapper: true, WrapperLinkCount: 60},
			types.SeverityHigh,
		},
		{
			"dilution medium ratio",
			types.UrlRecord{ResponseCode: 200, TrafficSEO: 100, HasWrapper: true, WrapperLinkCount: 30},
			types.SeverityMedium,
		},
		{
			"dilution low ratio",
			types.UrlRecord{ResponseCode: 200, TrafficSEO: 400, HasWrapper: true, WrapperLinkCount: 12},
			types.SeverityLow,
		},
		{
			"dilution with zero traffic grades against one session",
			types.UrlRecord{ResponseCode: 200, TrafficSEO: 0, HasWrapper: true, WrapperLinkCount: 20},
			types.SeverityHigh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got := Classify(tt.rec, th)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAnalyze_SummaryCountsAndAffectedTraffic(t *testing.T) {
	snapshot := &types.CrawlSnapshot{Records: []types.UrlRecord{
		{URL: "a", ResponseCode: 200, TrafficSEO: 2000},
		{URL: "b", ResponseCode: 200, TrafficSEO: 100, HasWrapper: true, WrapperLinkCount: 30},
		{URL: "c", ResponseCode: 404, TrafficSEO: 800},
		{URL: "d", ResponseCode: 200, TrafficSEO: 50, HasWrapper: true, WrapperLinkCount: 5},
		{URL: "e", ResponseCode: 404, TrafficSEO: 0},
	}}

	report := Analyze(snapshot, testThresholds())

	assert.Equal(t, 5, report.Summary.TotalURLs)
	assert.Equal(t, 1, report.Summary.NoDistributionCount)
	assert.Equal(t, 1, report.Summary.DilutionCount)
	assert.Equal(t, 1, report.Summary.DeadEndCount)
	assert.Equal(t, 2, report.Summary.NoneCount)
	// Dead-end traffic is historical, so only type1+type2 sessions count.
	assert.InDelta(t, 2100.0, report.Summary.TotalAffectedTraffic, 0.001)
	assert.Len(t, report.Records, 3, "only leaking URLs are listed")
}

func TestAnalyze_ClassificationIsTotal(t *testing.T) {
	var records []types.UrlRecord
	i := 0
	for _, code := range []int{200, 301, 404, 500} {
		for _, traffic := range []float64{0, 100, 1000} {
			for _, wrapper := range []bool{false, true} {
				for _, links := range []int{0, 5, 50} {
					i++
					records = append(records, types.UrlRecord{
						URL:              fmt.Sprintf("u%d", i),
						ResponseCode:     code,
						TrafficSEO:       traffic,
						HasWrapper:       wrapper,
						WrapperLinkCount: links,
					})
				}
			}
		}
	}

	report := Analyze(&types.CrawlSnapshot{Records: records}, testThresholds())

	classified := report.Summary.NoDistributionCount + report.Summary.DilutionCount +
		report.Summary.DeadEndCount + report.Summary.NoneCount
	assert.Equal(t, len(records), classified, "every record maps to exactly one leak type")
	assert.Equal(t, len(records), report.Summary.TotalURLs)
}

func TestAnalyze_TopOffendersOrderedAndCapped(t *testing.T) {
	snapshot := &types.CrawlSnapshot{}
	for i := 1; i <= 25; i++ {
		snapshot.Records = append(snapshot.Records, types.UrlRecord{
			URL:          fmt.Sprintf("https://store.example/p%02d", i),
			ResponseCode: 200,
			TrafficSEO:   float64(i * 10),
		})
	}

	report := Analyze(snapshot, testThresholds())

	require.Len(t, report.TopNoDistribution, 20)
	assert.InDelta(t, 250.0, report.TopNoDistribution[0].TrafficSEO, 0.001)
	for i := 1; i < len(report.TopNoDistribution); i++ {
		assert.GreaterOrEqual(t,
			report.TopNoDistribution[i-1].TrafficSEO,
			report.TopNoDistribution[i].TrafficSEO)
	}
	assert.Empty(t, report.TopDilution)
	assert.Empty(t, report.TopDeadEnds)
}

func TestAnalyze_TopDilutionOrderedByLinkCount(t *testing.T) {
	snapshot := &types.CrawlSnapshot{Records: []types.UrlRecord{
		{URL: "small", ResponseCode: 200, TrafficSEO: 10, HasWrapper: true, WrapperLinkCount: 15},
		{URL: "large", ResponseCode: 200, TrafficSEO: 10, HasWrapper: true, WrapperLinkCount: 80},
		{URL: "mid", ResponseCode: 200, TrafficSEO: 10, HasWrapper: true, WrapperLinkCount: 40},
	}}

	report := Analyze(snapshot, testThresholds())

	require.Len(t, report.TopDilution, 3)
	assert.Equal(t, "large", report.TopDilution[0].URL)
	assert.Equal(t, "mid", report.TopDilution[1].URL)
	assert.Equal(t, "small", report.TopDilution[2].URL)
}

func TestAnalyze_WrapperHistogram(t *testing.T) {
	snapshot := &types.CrawlSnapshot{}
	for i, links := range []int{0, 1, 2, 3, 4, 5, 9, 10, 19, 20, 50, 99, 100, 150} {
		snapshot.Records = append(snapshot.Records, types.UrlRecord{
			URL:              fmt.Sprintf("u%d", i),
			ResponseCode:     200,
			HasWrapper:       links > 0,
			WrapperLinkCount: links,
		})
	}
	// Dead pages say nothing about distribution.
	snapshot.Records = append(snapshot.Records, types.UrlRecord{
		URL: "dead", ResponseCode: 404, WrapperLinkCount: 100,
	})

	report := Analyze(snapshot, testThresholds())

	labels := make([]string, len(report.WrapperHistogram))
	counts := make([]int, len(report.WrapperHistogram))
	for i, bin := range report.WrapperHistogram {
		labels[i] = bin.Label
		counts[i] = bin.Count
	}

	assert.Equal(t, []string{"0", "1", "2", "3-4", "5-9", "10-19", "20-49", "50-99", "100+"}, labels)
	assert.Equal(t, []int{1, 1, 1, 2, 2, 2, 1, 2, 2}, counts)
}
