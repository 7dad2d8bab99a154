package types

import "time"

// PatternCategory marks whether a pattern is a confirmed production rule or a
// candidate still awaiting human review.
type PatternCategory string

const (
	PatternKnown   PatternCategory = "known"
	PatternUnknown PatternCategory = "unknown"
)

// FacetPattern is one configured facet rule. Match and Exclude are RE2
// expressions applied to the lowercased URL path; a URL belongs to the facet
// when Match hits and Exclude (if set) does not. Exclude exists because RE2
// has no lookahead: "storage" is N-gb paths that are not N-gb-ram paths.
type FacetPattern struct {
	Name     string          `json:"name"`
	Match    string          `json:"match"`
	Exclude  string          `json:"exclude,omitempty"`
	Category PatternCategory `json:"category"`
	// DemandTerms are lowercased substrings matched against Adobe filter
	// labels and Semrush keywords when aggregating demand for this facet.
	DemandTerms []string  `json:"demand_terms,omitempty"`
	AddedAt     time.Time `json:"added_at,omitempty"`
}

// PatternCandidate is an unmatched filter token surfaced by discovery for
// human review, ordered by how often it appears across the crawl.
type PatternCandidate struct {
	Token     string `json:"token"`
	Count     int    `json:"count"`
	SampleURL string `json:"sample_url,omitempty"`
}

// PatternSuggestion is an AI-proposed name and rule for a candidate token.
// Suggestions are advisory only; promotion into the registry stays a manual
// step.
type PatternSuggestion struct {
	Token         string `json:"token"`
	SuggestedName string `json:"suggested_name"`
	SuggestedRule string `json:"suggested_rule"`
	Rationale     string `json:"rationale,omitempty"`
}

// Detection is the artifact of a detection run: the registry version and the
// full pattern set it ran with, plus the facet -> matched URLs mapping.
// Embedding the patterns makes a past report reproducible from the input
// snapshot and this artifact alone.
type Detection struct {
	RegistryVersion int                 `json:"registry_version"`
	Patterns        []FacetPattern      `json:"patterns"`
	Facets          map[string][]string `json:"facets"`
}

// MatchedFacets counts the facets that matched at least one URL. The Facets
// map also carries empty facets, so its length is the registry size, not this.
func (d *Detection) MatchedFacets() int {
	n := 0
	for _, urls := range d.Facets {
		if len(urls) > 0 {
			n++
		}
	}
	return n
}
