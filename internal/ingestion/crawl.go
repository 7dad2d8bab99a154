// Package ingestion normalizes heterogeneous CSV exports (crawls, analytics
// traffic, Adobe filter demand, Semrush keywords) into the canonical records
// the analysis pipeline consumes. Loading is a pure transform: files in,
// records out, no side effects.
package ingestion

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alexvidal/facet-audit/internal/types"
)

// LoadCrawl reads a crawl export and produces the canonical URL snapshot.
// Duplicate URLs keep their first row. The wrapper link inventory of the
// category homepage (shortest-path row with a populated wrapper) is retained
// for facet aggregation.
func LoadCrawl(path string) (*types.CrawlSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read crawl file: %w", err)
	}
	file := filepath.Base(path)

	rows, err := readTable(file, data)
	if err != nil {
		return nil, err
	}

	header := rows[0]
	cols, err := resolveColumns(file, header, crawlColumns)
	if err != nil {
		return nil, err
	}
	wrapCols := wrapperColumns(header)

	crawlDate := time.Now().UTC()
	if info, statErr := os.Stat(path); statErr == nil {
		crawlDate = info.ModTime().UTC()
	}

	snapshot := &types.CrawlSnapshot{
		Source:    file,
		CrawlDate: crawlDate,
	}

	seen := make(map[string]bool)
	var homeLinks []string
	var homeURL string

	for _, row := range rows[1:] {
		rawURL := strings.TrimSpace(cell(row, cols["url"]))
		if rawURL == "" {
			continue
		}
		u := NormalizeURL(rawURL)
		if seen[u] {
			continue
		}
		seen[u] = true

		status := parseStatus(cell(row, cols["status"]))
		links := wrapperLinks(row, wrapCols)

		indexable := status == 200
		if idx, ok := cols["indexability"]; ok {
			indexable = strings.EqualFold(strings.TrimSpace(cell(row, idx)), "indexable")
		}

		snapshot.Records = append(snapshot.Records, types.UrlRecord{
			URL:              u,
			ResponseCode:     status,
			HasWrapper:       len(links) > 0,
			WrapperLinkCount: len(links),
			IsIndexable:      indexable,
			CrawlDate:        crawlDate,
		})

		if len(links) > 0 && (homeURL == "" || shorterPath(u, homeURL)) {
			homeURL = u
			homeLinks = links
		}
	}

	snapshot.HomeURL = homeURL
	snapshot.HomeWrapperLinks = homeLinks
	return snapshot, nil
}

// JoinTraffic attaches analytics sessions to the snapshot's records, matching
// by normalized URL and falling back to path-only matching for exports that
// drop the host. It runs during ingestion, before the snapshot is handed to
// analysis; records are not touched afterwards. Returns the matched count.
func JoinTraffic(snapshot *types.CrawlSnapshot, traffic []types.TrafficRecord) int {
	byURL := make(map[string]float64, len(traffic))
	byPath := make(map[string]float64, len(traffic))
	for _, t := range traffic {
		key := NormalizeURL(t.URL)
		byURL[key] += t.Sessions
		if parsed, err := url.Parse(key); err == nil && parsed.Path != "" {
			byPath[parsed.Path] += t.Sessions
		}
	}

	matched := 0
	for i := range snapshot.Records {
		rec := &snapshot.Records[i]
		if sessions, ok := byURL[rec.URL]; ok {
			rec.TrafficSEO = sessions
			matched++
			continue
		}
		if parsed, err := url.Parse(rec.URL); err == nil {
			if sessions, ok := byPath[parsed.Path]; ok {
				rec.TrafficSEO = sessions
				matched++
			}
		}
	}
	return matched
}

// NormalizeURL canonicalizes a raw URL cell: scheme prepended when absent,
// host lowercased, fragment dropped.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "/") {
		return raw
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	parsed.Fragment = ""
	parsed.Host = strings.ToLower(parsed.Host)
	return parsed.String()
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func parseStatus(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	// Some exports write "404 Not Found"; take the leading integer.
	if idx := strings.IndexByte(s, ' '); idx > 0 {
		s = s[:idx]
	}
	status, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return status
}

// wrapperLinks collects the href cells of the wrapper extraction columns.
// A cell counts as a link when it starts with http.
func wrapperLinks(row []string, wrapCols []int) []string {
	var links []string
	for _, i := range wrapCols {
		v := strings.TrimSpace(cell(row, i))
		if strings.HasPrefix(v, "http") {
			links = append(links, v)
		}
	}
	return links
}

// shorterPath reports whether a's path has fewer segments than b's,
// breaking ties by string length.
func shorterPath(a, b string) bool {
	pathOf := func(u string) string {
		if parsed, err := url.Parse(u); err == nil {
			return strings.Trim(parsed.Path, "/")
		}
		return u
	}
	pa, pb := pathOf(a), pathOf(b)
	segs := func(p string) int {
		if p == "" {
			return 0
		}
		return strings.Count(p, "/") + 1
	}
	if segs(pa) != segs(pb) {
		return segs(pa) < segs(pb)
	}
	return len(a) < len(b)
}
