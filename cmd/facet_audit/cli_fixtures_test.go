package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alexvidal/facet-audit/internal/types"
)

// sampleCrawlCSV is the crawl fixture shared by CLI tests: a category home
// carrying the wrapper, two live facet pages, and one eliminated page.
func sampleCrawlCSV(host string) string {
	return strings.Join([]string{
		"Address,Status Code,Indexability,seoFilterWrapper_hrefs 1,seoFilterWrapper_hrefs 2",
		host + "/moviles,200,Indexable," + host + "/moviles/16-gb-ram," + host + "/moviles/5g",
		host + "/moviles/16-gb-ram,200,Indexable,,",
		host + "/moviles/5g,200,Indexable,,",
		host + "/moviles/dual-sim,404,Non-Indexable,,",
	}, "\n") + "\n"
}

// sampleSnapshot mirrors sampleCrawlCSV as an already-ingested artifact.
func sampleSnapshot(host string) *types.CrawlSnapshot {
	now := time.Now().UTC()
	return &types.CrawlSnapshot{
		Source:    "crawl.csv",
		CrawlDate: now,
		HomeURL:   host + "/moviles",
		HomeWrapperLinks: []string{
			host + "/moviles/16-gb-ram",
			host + "/moviles/5g",
		},
		Records: []types.UrlRecord{
			{URL: host + "/moviles", ResponseCode: 200, HasWrapper: true, WrapperLinkCount: 2, IsIndexable: true, CrawlDate: now},
			{URL: host + "/moviles/16-gb-ram", ResponseCode: 200, TrafficSEO: 1200, IsIndexable: true, CrawlDate: now},
			{URL: host + "/moviles/5g", ResponseCode: 200, TrafficSEO: 300, IsIndexable: true, CrawlDate: now},
			{URL: host + "/moviles/dual-sim", ResponseCode: 404, TrafficSEO: 50, CrawlDate: now},
		},
	}
}

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writeTempJSON(t *testing.T, dir, name string, v any) string {
	t.Helper()
	data, err := json.MarshalIndent(v, "", "  ")
	require.NoError(t, err)
	return writeTempFile(t, dir, name, string(data))
}
