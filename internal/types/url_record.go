// Package types provides type definitions for the artifacts passed between
// pipeline steps of the facet-audit system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "time"

// UrlRecord is the canonical per-URL record produced by the normalizer from a
// crawl export. Records are immutable once created; a new crawl snapshot
// replaces the previous set wholesale.
type UrlRecord struct {
	URL              string    `json:"url"`
	ResponseCode     int       `json:"response_code"`
	HasWrapper       bool      `json:"has_wrapper"`
	WrapperLinkCount int       `json:"wrapper_link_count"`
	TrafficSEO       float64   `json:"traffic_seo"`
	IsIndexable      bool      `json:"is_indexable"`
	CrawlDate        time.Time `json:"crawl_date"`
}

// CrawlSnapshot bundles the normalized records of one crawl export together
// with the wrapper link inventory of the category homepage, which the
// aggregation step uses to decide whether a facet is linked from the wrapper.
type CrawlSnapshot struct {
	Source    string      `json:"source"`
	CrawlDate time.Time   `json:"crawl_date"`
	Records   []UrlRecord `json:"records"`

	// HomeURL is the row whose wrapper links were taken as the category
	// homepage inventory (shortest path with a populated wrapper).
	HomeURL          string   `json:"home_url,omitempty"`
	HomeWrapperLinks []string `json:"home_wrapper_links,omitempty"`
}

// TrafficRecord is one row of an analytics traffic export, joined onto
// UrlRecords by URL.
type TrafficRecord struct {
	URL      string  `json:"url"`
	Sessions float64 `json:"sessions"`
}

// DemandRecord is one row of a demand export: an Adobe internal-filter label
// with its instance count, or a Semrush keyword with its search volume.
type DemandRecord struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}
