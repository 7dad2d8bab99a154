package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexvidal/facet-audit/internal/types"
)

func TestSplitTerms(t *testing.T) {
	assert.Equal(t, []string{"plegable", "flip"}, splitTerms("Plegable, flip"))
	assert.Equal(t, []string{"5g"}, splitTerms("5g,, ,"))
	assert.Nil(t, splitTerms(""))
}

func TestLoadAuditConfig_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := loadAuditConfig("")
	require.NoError(t, err)
	assert.Equal(t, 0.40, cfg.Weights.Demand)
	assert.Equal(t, 5, cfg.Verification.Workers)
}

func TestLoadAuditConfig_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"verification": {"workers": 2}}`), 0o644))

	cfg, err := loadAuditConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Verification.Workers)
	// Untouched sections keep their defaults.
	assert.Equal(t, 0.40, cfg.Weights.Demand)
}

func TestLoadAuditConfig_RejectsBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"verification": {"workers": 500}}`), 0o644))

	_, err := loadAuditConfig(path)
	assert.Error(t, err)
}

func TestWriteAndReadJSONArtifact(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "candidates.json")

	in := []types.PatternCandidate{{Token: "plegable", Count: 44, SampleURL: "https://x.example/moviles/plegable"}}
	require.NoError(t, writeArtifact(path, "candidates.schema.json", in))

	var out []types.PatternCandidate
	require.NoError(t, readJSONArtifact(path, &out))
	assert.Equal(t, in, out)
}

func TestWriteArtifact_SkipsValidationWithoutSchemaName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audits.json")
	require.NoError(t, writeArtifact(path, "", map[string]int{"links": 3}))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestReadJSONArtifact_MissingFile(t *testing.T) {
	var v map[string]any
	err := readJSONArtifact(filepath.Join(t.TempDir(), "missing.json"), &v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}

func TestSnapshotURLs(t *testing.T) {
	snapshot := &types.CrawlSnapshot{Records: []types.UrlRecord{
		{URL: "https://x.example/a"},
		{URL: "https://x.example/b"},
	}}
	assert.Equal(t, []string{"https://x.example/a", "https://x.example/b"}, snapshotURLs(snapshot))
}
