package types

// FacetStatus describes how a facet is currently served by the site.
type FacetStatus string

const (
	// FacetActive: live URLs exist and the facet is linked from the wrapper.
	FacetActive FacetStatus = "active"
	// FacetPartial: live URLs exist but the wrapper does not link them.
	FacetPartial FacetStatus = "partial"
	// FacetEliminated: only 404s remain; the facet used to have pages.
	FacetEliminated FacetStatus = "eliminated"
	// FacetMissing: no URLs at all for this facet.
	FacetMissing FacetStatus = "missing"
)

// Confidence grades how many independent sources back a facet's numbers.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// FacetRecord aggregates the UrlRecords matched to one facet for a single
// analysis run. Recomputed fully on each run, never mutated incrementally.
type FacetRecord struct {
	FacetName     string      `json:"facet_name"`
	URLs200       int         `json:"urls_200"`
	URLs404       int         `json:"urls_404"`
	URLsOther     int         `json:"urls_other"`
	DemandAdobe   float64     `json:"demand_adobe"`
	DemandSemrush float64     `json:"demand_semrush"`
	TrafficSEO    float64     `json:"traffic_seo"`
	InWrapper     bool        `json:"in_wrapper"`
	Status        FacetStatus `json:"status"`
	Confidence    Confidence  `json:"confidence"`
	SampleURLs    []string    `json:"sample_urls,omitempty"`
}
