package types

// LeakType classifies how a URL leaks authority. Every UrlRecord maps to
// exactly one type; classification precedence lives in the authority package.
type LeakType string

const (
	// LeakNoDistribution: a live page earning traffic but carrying no wrapper,
	// so it distributes nothing to facet children.
	LeakNoDistribution LeakType = "type1_no_distribution"
	// LeakDilution: a live wrapper page whose link count is too high for the
	// traffic it earns, diluting per-link authority.
	LeakDilution LeakType = "type2_dilution"
	// LeakDeadEnd: a 404 that still had historical traffic pointing at it.
	LeakDeadEnd LeakType = "type3_dead_end"
	LeakNone    LeakType = "none"
)

// Severity grades a leak within its type.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// LeakRecord is the classification of a single URL.
type LeakRecord struct {
	URL              string   `json:"url"`
	LeakType         LeakType `json:"leak_type"`
	Severity         Severity `json:"severity,omitempty"`
	TrafficSEO       float64  `json:"traffic_seo"`
	WrapperLinkCount int      `json:"wrapper_link_count"`
}

// LeakSummary aggregates one classification pass. TotalAffectedTraffic sums
// traffic over no-distribution and dilution leaks; dead ends carry historical
// traffic only and are counted but not summed.
type LeakSummary struct {
	TotalURLs            int     `json:"total_urls"`
	NoDistributionCount  int     `json:"no_distribution_count"`
	DilutionCount        int     `json:"dilution_count"`
	DeadEndCount         int     `json:"dead_end_count"`
	NoneCount            int     `json:"none_count"`
	TotalAffectedTraffic float64 `json:"total_affected_traffic"`
}

// HistogramBin is one bucket of the wrapper-size distribution.
type HistogramBin struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// LeakReport is the authority-analysis artifact: every leaking URL, the
// summary, the worst offenders per type, and the wrapper-size distribution.
type LeakReport struct {
	Summary           LeakSummary    `json:"summary"`
	Records           []LeakRecord   `json:"records"`
	TopNoDistribution []LeakRecord   `json:"top_no_distribution,omitempty"`
	TopDilution       []LeakRecord   `json:"top_dilution,omitempty"`
	TopDeadEnds       []LeakRecord   `json:"top_dead_ends,omitempty"`
	WrapperHistogram  []HistogramBin `json:"wrapper_histogram,omitempty"`
}
