// Package authority classifies crawled URLs into authority-leak types and
// builds the leak report consumed by the export and pipeline steps.
package authority

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/alexvidal/facet-audit/internal/config"
	"github.com/alexvidal/facet-audit/internal/types"
)

// Severity cut points within each leak type. Dilution is graded on the
// links-per-session ratio; the traffic types on raw sessions.
const (
	noDistributionHighTraffic   = 5000.0
	noDistributionMediumTraffic = 1000.0
	dilutionHighRatio           = 0.5
	dilutionMediumRatio         = 0.1
	deadEndHighTraffic          = 1000.0
	deadEndMediumTraffic        = 100.0

	topOffenders = 20
)

// histogramBounds are the lower edges of the wrapper-size buckets.
var histogramBounds = []int{0, 1, 2, 3, 5, 10, 20, 50, 100}

// Classify assigns a URL to exactly one leak type. Precedence is fixed and
// first match wins: a 404 that still earns traffic is a dead end before
// anything else; a live page with traffic and no wrapper fails to distribute;
// a live wrapper page with too many links for too little traffic dilutes.
func Classify(rec types.UrlRecord, th config.Thresholds) (types.LeakType, types.Severity) {
	switch {
	case rec.ResponseCode == 404 && rec.TrafficSEO > 0:
		return types.LeakDeadEnd, gradeByTraffic(rec.TrafficSEO, deadEndHighTraffic, deadEndMediumTraffic)
	case rec.ResponseCode == 200 && rec.TrafficSEO > 0 && !rec.HasWrapper:
		return types.LeakNoDistribution, gradeByTraffic(rec.TrafficSEO, noDistributionHighTraffic, noDistributionMediumTraffic)
	case rec.ResponseCode == 200 && rec.HasWrapper &&
		rec.WrapperLinkCount > th.DilutionLinks && rec.TrafficSEO < th.DilutionLowTraffic:
		return types.LeakDilution, dilutionSeverity(rec)
	default:
		return types.LeakNone, ""
	}
}

// Analyze classifies every record of a crawl snapshot and assembles the leak
// report: per-type counts, affected traffic, the worst offenders per type,
// and the wrapper-size histogram over live pages.
func Analyze(snapshot *types.CrawlSnapshot, th config.Thresholds) *types.LeakReport {
	report := &types.LeakReport{
		Summary: types.LeakSummary{TotalURLs: len(snapshot.Records)},
		Records: make([]types.LeakRecord, 0, len(snapshot.Records)),
	}

	for _, rec := range snapshot.Records {
		leakType, severity := Classify(rec, th)
		switch leakType {
		case types.LeakNoDistribution:
			report.Summary.NoDistributionCount++
			report.Summary.TotalAffectedTraffic += rec.TrafficSEO
		case types.LeakDilution:
			report.Summary.DilutionCount++
			report.Summary.TotalAffectedTraffic += rec.TrafficSEO
		case types.LeakDeadEnd:
			report.Summary.DeadEndCount++
		default:
			report.Summary.NoneCount++
			continue
		}
		report.Records = append(report.Records, types.LeakRecord{
			URL:              rec.URL,
			LeakType:         leakType,
			Severity:         severity,
			TrafficSEO:       rec.TrafficSEO,
			WrapperLinkCount: rec.WrapperLinkCount,
		})
	}

	report.TopNoDistribution = worstOffenders(report.Records, types.LeakNoDistribution, byTraffic)
	report.TopDilution = worstOffenders(report.Records, types.LeakDilution, byLinkCount)
	report.TopDeadEnds = worstOffenders(report.Records, types.LeakDeadEnd, byTraffic)
	report.WrapperHistogram = wrapperHistogram(snapshot.Records)
	return report
}

func gradeByTraffic(traffic, high, medium float64) types.Severity {
	switch {
	case traffic > high:
		return types.SeverityHigh
	case traffic > medium:
		return types.SeverityMedium
	default:
		return types.SeverityLow
	}
}

func dilutionSeverity(rec types.UrlRecord) types.Severity {
	ratio := float64(rec.WrapperLinkCount) / math.Max(rec.TrafficSEO, 1)
	switch {
	case ratio > dilutionHighRatio:
		return types.SeverityHigh
	case ratio > dilutionMediumRatio:
		return types.SeverityMedium
	default:
		return types.SeverityLow
	}
}

func byTraffic(a, b types.LeakRecord) bool {
	if a.TrafficSEO != b.TrafficSEO {
		return a.TrafficSEO > b.TrafficSEO
	}
	return a.URL < b.URL
}

func byLinkCount(a, b types.LeakRecord) bool {
	if a.WrapperLinkCount != b.WrapperLinkCount {
		return a.WrapperLinkCount > b.WrapperLinkCount
	}
	return a.URL < b.URL
}

// worstOffenders returns up to topOffenders records of one leak type, worst
// first under the given ordering.
func worstOffenders(records []types.LeakRecord, leakType types.LeakType, worse func(a, b types.LeakRecord) bool) []types.LeakRecord {
	var matched []types.LeakRecord
	for _, rec := range records {
		if rec.LeakType == leakType {
			matched = append(matched, rec)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return worse(matched[i], matched[j]) })
	if len(matched) > topOffenders {
		matched = matched[:topOffenders]
	}
	return matched
}

// wrapperHistogram buckets live pages by wrapper link count. Dead pages say
// nothing about distribution, so only 200s are counted.
func wrapperHistogram(records []types.UrlRecord) []types.HistogramBin {
	bins := make([]types.HistogramBin, len(histogramBounds))
	for i, lower := range histogramBounds {
		switch {
		case i == len(histogramBounds)-1:
			bins[i].Label = fmt.Sprintf("%d+", lower)
		case histogramBounds[i+1]-1 == lower:
			bins[i].Label = strconv.Itoa(lower)
		default:
			bins[i].Label = fmt.Sprintf("%d-%d", lower, histogramBounds[i+1]-1)
		}
	}

	for _, rec := range records {
		if rec.ResponseCode != 200 {
			continue
		}
		bins[binIndex(rec.WrapperLinkCount)].Count++
	}
	return bins
}

func binIndex(count int) int {
	for i := len(histogramBounds) - 1; i > 0; i-- {
		if count >= histogramBounds[i] {
			return i
		}
	}
	return 0
}
