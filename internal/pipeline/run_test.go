package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexvidal/facet-audit/internal/config"
	"github.com/alexvidal/facet-audit/internal/db"
	"github.com/alexvidal/facet-audit/internal/types"
)

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// crawlCSV builds a minimal crawl export: a category home carrying the
// wrapper, three live facet pages, and one eliminated facet page.
func crawlCSV(host string) string {
	return strings.Join([]string{
		"Address,Status Code,Indexability,seoFilterWrapper_hrefs 1,seoFilterWrapper_hrefs 2",
		host + "/moviles,200,Indexable," + host + "/moviles/16-gb-ram," + host + "/moviles/5g",
		host + "/moviles/16-gb-ram,200,Indexable,,",
		host + "/moviles/5g,200,Indexable,,",
		host + "/moviles/128-gb,200,Indexable,,",
		host + "/moviles/dual-sim,404,Non-Indexable,,",
	}, "\n") + "\n"
}

func TestRunPipeline_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	host := "https://www.phonestore.example"

	crawlPath := writeFixture(t, dir, "crawl.csv", crawlCSV(host))
	trafficPath := writeFixture(t, dir, "traffic.csv", strings.Join([]string{
		"URL,Sessions",
		host + "/moviles/16-gb-ram,1200",
		host + "/moviles/5g,300",
	}, "\n"))
	adobePath := writeFixture(t, dir, "adobe.csv", strings.Join([]string{
		"# Adobe Analytics Workspace",
		"# Report suite: phonestore",
		"Filtros internos,Instancias",
		`16 gb ram,"2.100"`,
		"moviles 5g,880",
	}, "\n"))
	semrushPath := writeFixture(t, dir, "semrush.csv", strings.Join([]string{
		"Keyword,Volume",
		"moviles 16 gb ram,1900",
		"moviles 5g baratos,880",
	}, "\n"))

	var events []ProgressEvent
	opts := RunOptions{
		CrawlPath:   crawlPath,
		TrafficPath: trafficPath,
		AdobePath:   adobePath,
		SemrushPath: semrushPath,
		OutDir:      outDir,
		Config:      config.DefaultConfig(),
		SkipVerify:  true,
		OnProgress:  func(e ProgressEvent) { events = append(events, e) },
	}

	require.NoError(t, RunPipeline(context.Background(), opts))

	for _, name := range []string{
		"url_records.json", "detection.json", "leak_report.json",
		"facet_records.json", "facet_scores.json",
		"facet_report.csv", "authority_leaks.csv",
	} {
		_, err := os.Stat(filepath.Join(outDir, name))
		assert.NoError(t, err, "expected artifact %s", name)
	}

	data, err := os.ReadFile(filepath.Join(outDir, "facet_scores.json"))
	require.NoError(t, err)
	var scores types.FacetScores
	require.NoError(t, json.Unmarshal(data, &scores))
	assert.Equal(t, 1, scores.RegistryVersion)
	require.NotEmpty(t, scores.Scores)

	byName := make(map[string]types.ScoreBreakdown, len(scores.Scores))
	for _, s := range scores.Scores {
		byName[s.FacetName] = s
	}
	ram, ok := byName["RAM"]
	require.True(t, ok, "RAM facet missing from scores")
	assert.Greater(t, ram.TotalScore, 0.0)

	// SkipVerify means no verification artifacts.
	_, err = os.Stat(filepath.Join(outDir, "verification.json"))
	assert.True(t, os.IsNotExist(err))

	require.NotEmpty(t, events)
	assert.Equal(t, db.KindURLRecords, events[0].Step)
}

func TestRunPipeline_VerifiesTopURLs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "dual-sim") {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	crawlPath := writeFixture(t, dir, "crawl.csv", crawlCSV(srv.URL))

	cfg := config.DefaultConfig()
	delay := 1
	cfg.Verification.DelayMS = &delay
	cfg.Verification.TimeoutMS = 2000

	opts := RunOptions{
		CrawlPath: crawlPath,
		OutDir:    outDir,
		Config:    cfg,
		TopN:      3,
	}
	require.NoError(t, RunPipeline(context.Background(), opts))

	data, err := os.ReadFile(filepath.Join(outDir, "verification.json"))
	require.NoError(t, err)
	var batch types.BatchVerification
	require.NoError(t, json.Unmarshal(data, &batch))
	assert.Len(t, batch.Results, 3)
	assert.GreaterOrEqual(t, batch.OKCount, 2)

	_, err = os.Stat(filepath.Join(outDir, "verification.csv"))
	assert.NoError(t, err)
}

func TestRunPipeline_MissingCrawlFails(t *testing.T) {
	opts := RunOptions{
		CrawlPath:  filepath.Join(t.TempDir(), "missing.csv"),
		OutDir:     t.TempDir(),
		Config:     config.DefaultConfig(),
		SkipVerify: true,
	}
	err := RunPipeline(context.Background(), opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "crawl ingestion failed")
}

func TestRunPipeline_BrokenTrafficContinues(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	crawlPath := writeFixture(t, dir, "crawl.csv", crawlCSV("https://www.phonestore.example"))
	// Wrong columns entirely; the traffic source is skipped with a warning.
	trafficPath := writeFixture(t, dir, "traffic.csv", "Fecha,Registros\n2024-01-01,12\n")

	opts := RunOptions{
		CrawlPath:   crawlPath,
		TrafficPath: trafficPath,
		OutDir:      outDir,
		Config:      config.DefaultConfig(),
		SkipVerify:  true,
	}
	require.NoError(t, RunPipeline(context.Background(), opts))

	_, err := os.Stat(filepath.Join(outDir, "facet_report.csv"))
	assert.NoError(t, err)
}

func TestRunPipeline_RejectsBadWeights(t *testing.T) {
	dir := t.TempDir()
	crawlPath := writeFixture(t, dir, "crawl.csv", crawlCSV("https://www.phonestore.example"))

	cfg := config.DefaultConfig()
	cfg.Weights.Demand = -1

	opts := RunOptions{
		CrawlPath:  crawlPath,
		OutDir:     filepath.Join(dir, "out"),
		Config:     cfg,
		SkipVerify: true,
	}
	err := RunPipeline(context.Background(), opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scoring configuration rejected")
}

func TestTopScoredURLs(t *testing.T) {
	detection := &types.Detection{
		Facets: map[string][]string{
			"RAM": {"https://s.example/a", "https://s.example/b"},
			"5G":  {"https://s.example/b", "https://s.example/c"},
		},
	}
	scores := []types.ScoreBreakdown{{FacetName: "RAM"}, {FacetName: "5G"}}

	urls := topScoredURLs(scores, detection, 10)
	assert.Equal(t, []string{"https://s.example/a", "https://s.example/b", "https://s.example/c"}, urls)

	assert.Len(t, topScoredURLs(scores, detection, 2), 2)
	assert.Nil(t, topScoredURLs(scores, detection, 0))
}

func TestSiteOf(t *testing.T) {
	assert.Equal(t, "www.phonestore.example",
		siteOf(&types.CrawlSnapshot{HomeURL: "https://www.phonestore.example/moviles"}))
	assert.Equal(t, "shop.example",
		siteOf(&types.CrawlSnapshot{Records: []types.UrlRecord{{URL: "https://shop.example/x"}}}))
	assert.Equal(t, "", siteOf(&types.CrawlSnapshot{}))
}
