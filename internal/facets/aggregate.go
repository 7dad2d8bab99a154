package facets

import (
	"sort"
	"strings"

	"github.com/alexvidal/facet-audit/internal/types"
)

// Signal floors for the confidence grade: a facet's numbers are only as
// trustworthy as the number of independent sources backing them.
const (
	demandSignalFloor  = 1000.0
	trafficSignalFloor = 100.0
	maxSampleURLs      = 5
)

// Aggregate turns a detection run plus the crawl snapshot and demand rows
// into one FacetRecord per configured facet. Facets with no matched URLs
// still yield a record, so missing and eliminated facets stay visible to
// scoring. Output is ordered by facet name.
func Aggregate(detection *types.Detection, snapshot *types.CrawlSnapshot, adobe, semrush []types.DemandRecord) ([]types.FacetRecord, error) {
	matcher, err := CompilePatterns(detection.Patterns)
	if err != nil {
		return nil, err
	}

	recordByURL := make(map[string]types.UrlRecord, len(snapshot.Records))
	for _, rec := range snapshot.Records {
		recordByURL[rec.URL] = rec
	}

	names := make([]string, 0, len(detection.Facets))
	for name := range detection.Facets {
		names = append(names, name)
	}
	sort.Strings(names)

	records := make([]types.FacetRecord, 0, len(names))
	for _, name := range names {
		cp, ok := matcher.byName(name)
		if !ok {
			continue
		}

		urls := detection.Facets[name]
		rec := types.FacetRecord{FacetName: name}

		for _, u := range urls {
			urlRec, found := recordByURL[u]
			if !found {
				rec.URLsOther++
				continue
			}
			switch urlRec.ResponseCode {
			case 200:
				rec.URLs200++
			case 404:
				rec.URLs404++
			default:
				rec.URLsOther++
			}
			rec.TrafficSEO += urlRec.TrafficSEO
		}

		for _, link := range snapshot.HomeWrapperLinks {
			if cp.matches(pathOf(link)) {
				rec.InWrapper = true
				break
			}
		}

		for _, row := range adobe {
			if demandMatches(cp, row.Label) {
				rec.DemandAdobe += row.Value
			}
		}
		for _, row := range semrush {
			if demandMatches(cp, row.Label) {
				rec.DemandSemrush += row.Value
			}
		}

		rec.Status = facetStatus(rec)
		rec.Confidence = facetConfidence(rec)
		if len(urls) > maxSampleURLs {
			rec.SampleURLs = urls[:maxSampleURLs]
		} else if len(urls) > 0 {
			rec.SampleURLs = urls
		}

		records = append(records, rec)
	}
	return records, nil
}

// byName finds the compiled pattern for a facet.
func (m *Matcher) byName(name string) (compiledPattern, bool) {
	for _, cp := range m.patterns {
		if cp.pattern.Name == name {
			return cp, true
		}
	}
	return compiledPattern{}, false
}

// demandMatches decides whether a demand label (Adobe filter name or Semrush
// keyword) belongs to a facet: either the slugified label satisfies the
// facet's URL rule, or the label contains one of the facet's demand terms as
// whole words.
func demandMatches(cp compiledPattern, label string) bool {
	if cp.matches(slugify(label)) {
		return true
	}
	padded := " " + strings.ToLower(strings.TrimSpace(label)) + " "
	for _, term := range cp.pattern.DemandTerms {
		if strings.Contains(padded, " "+term+" ") {
			return true
		}
	}
	return false
}

// slugify lowers a label and joins its words with hyphens, the shape URL
// rules expect ("16 gb ram" -> "16-gb-ram").
func slugify(label string) string {
	fields := strings.Fields(strings.ToLower(label))
	return strings.Join(fields, "-")
}

func facetStatus(rec types.FacetRecord) types.FacetStatus {
	switch {
	case rec.URLs200 > 0 && rec.InWrapper:
		return types.FacetActive
	case rec.URLs200 > 0:
		return types.FacetPartial
	case rec.URLs404 > 0:
		return types.FacetEliminated
	default:
		return types.FacetMissing
	}
}

func facetConfidence(rec types.FacetRecord) types.Confidence {
	sources := 0
	if rec.URLs200 > 0 {
		sources++
	}
	if rec.DemandAdobe+rec.DemandSemrush > demandSignalFloor {
		sources++
	}
	if rec.TrafficSEO > trafficSignalFloor {
		sources++
	}
	switch {
	case sources >= 3:
		return types.ConfidenceHigh
	case sources >= 2:
		return types.ConfidenceMedium
	default:
		return types.ConfidenceLow
	}
}
