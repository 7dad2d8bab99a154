package schemas

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexvidal/facet-audit/internal/config"
	"github.com/alexvidal/facet-audit/internal/schemas"
	"github.com/alexvidal/facet-audit/internal/types"
)

var schemaFiles = []string{
	"url_records.schema.json",
	"patterns.schema.json",
	"detection.schema.json",
	"candidates.schema.json",
	"suggestions.schema.json",
	"facet_records.schema.json",
	"leak_report.schema.json",
	"facet_scores.schema.json",
	"verification.schema.json",
	"config.schema.json",
}

func TestAllSchemaFiles_ValidJSON(t *testing.T) {
	for _, schemaFile := range schemaFiles {
		t.Run(schemaFile, func(t *testing.T) {
			data, err := os.ReadFile(filepath.Join(".", schemaFile))
			require.NoError(t, err, "should be able to read schema file")

			var v interface{}
			err = json.Unmarshal(data, &v)
			assert.NoError(t, err, "schema file should be valid JSON: %s", schemaFile)
		})
	}
}

func TestSchemaFiles_DeclareDraft07(t *testing.T) {
	for _, schemaFile := range schemaFiles {
		t.Run(schemaFile, func(t *testing.T) {
			data, err := os.ReadFile(filepath.Join(".", schemaFile))
			require.NoError(t, err)

			var schemaObj map[string]interface{}
			err = json.Unmarshal(data, &schemaObj)
			require.NoError(t, err)

			assert.Equal(t, "http://json-schema.org/draft-07/schema#", schemaObj["$schema"])
			assert.NotEmpty(t, schemaObj["title"], "schema should carry a title")
			assert.NotEmpty(t, schemaObj["type"], "schema should declare a root type")
		})
	}
}

func TestFacetScoresSchema_AcceptsScorerOutput(t *testing.T) {
	schemaContent, err := os.ReadFile("facet_scores.schema.json")
	require.NoError(t, err)

	artifact := types.FacetScores{
		GeneratedAt:     time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
		RegistryVersion: 3,
		Scores: []types.ScoreBreakdown{
			{
				FacetName: "RAM",
				ComponentScores: map[string]float64{
					"demand":      100,
					"coverage":    21.8,
					"performance": 100,
					"opportunity": 78.2,
				},
				Weights: map[string]float64{
					"demand":      0.40,
					"coverage":    0.20,
					"performance": 0.15,
					"opportunity": 0.25,
				},
				TotalScore: 78.91,
				Tier:       types.TierA,
				ActionType: types.ActionLink,
				Priority:   types.PriorityHigh,
			},
		},
	}
	doc, err := json.MarshalIndent(artifact, "", "  ")
	require.NoError(t, err)

	assert.NoError(t, schemas.ValidateJSONString(string(schemaContent), string(doc)))
}

func TestFacetScoresSchema_RejectsUnknownTier(t *testing.T) {
	schemaContent, err := os.ReadFile("facet_scores.schema.json")
	require.NoError(t, err)

	doc := `{
		"generated_at": "2026-03-14T10:00:00Z",
		"scores": [
			{
				"facet_name": "RAM",
				"component_scores": {"demand": 50, "coverage": 50, "performance": 50, "opportunity": 50},
				"weights": {"demand": 0.4, "coverage": 0.2, "performance": 0.15, "opportunity": 0.25},
				"total_score": 50,
				"tier": "Z",
				"action_type": "link",
				"priority": "high"
			}
		]
	}`

	err = schemas.ValidateJSONString(string(schemaContent), doc)
	require.Error(t, err)

	var validationErr *schemas.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.NotEmpty(t, validationErr.Errors)
}

func TestURLRecordsSchema_AcceptsIngestOutput(t *testing.T) {
	schemaContent, err := os.ReadFile("url_records.schema.json")
	require.NoError(t, err)

	snapshot := types.CrawlSnapshot{
		Source:    "screamingfrog",
		CrawlDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Records: []types.UrlRecord{
			{
				URL:          "https://store.example/moviles/8-gb-ram",
				ResponseCode: 200,
				HasWrapper:   true,
				TrafficSEO:   1200,
				IsIndexable:  true,
				CrawlDate:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			},
		},
		HomeURL:          "https://store.example/",
		HomeWrapperLinks: []string{"https://store.example/moviles/8-gb-ram"},
	}
	doc, err := json.MarshalIndent(snapshot, "", "  ")
	require.NoError(t, err)

	assert.NoError(t, schemas.ValidateJSONString(string(schemaContent), string(doc)))
}

func TestURLRecordsSchema_RejectsRecordWithoutResponseCode(t *testing.T) {
	schemaContent, err := os.ReadFile("url_records.schema.json")
	require.NoError(t, err)

	doc := `{
		"source": "screamingfrog",
		"crawl_date": "2026-03-01T00:00:00Z",
		"records": [
			{"url": "https://store.example/moviles/8-gb-ram"}
		]
	}`

	err = schemas.ValidateJSONString(string(schemaContent), doc)
	var validationErr *schemas.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestLeakReportSchema_RejectsUnknownLeakType(t *testing.T) {
	schemaContent, err := os.ReadFile("leak_report.schema.json")
	require.NoError(t, err)

	doc := `{
		"summary": {
			"total_urls": 1,
			"no_distribution_count": 0,
			"dilution_count": 0,
			"dead_end_count": 0,
			"none_count": 1,
			"total_affected_traffic": 0
		},
		"records": [
			{"url": "https://store.example/a", "leak_type": "type9_mystery", "traffic_seo": 0, "wrapper_link_count": 0}
		]
	}`

	err = schemas.ValidateJSONString(string(schemaContent), doc)
	var validationErr *schemas.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestConfigSchema_AcceptsDefaults(t *testing.T) {
	schemaContent, err := os.ReadFile("config.schema.json")
	require.NoError(t, err)

	doc, err := json.MarshalIndent(config.DefaultConfig(), "", "  ")
	require.NoError(t, err)

	assert.NoError(t, schemas.ValidateJSONString(string(schemaContent), string(doc)))
}
