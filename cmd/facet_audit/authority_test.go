package main

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexvidal/facet-audit/internal/types"
)

func TestAuthorityCommand_MissingInFlag(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "authority")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "required")
}

func TestAuthorityCommand_WritesLeakReport(t *testing.T) {
	binaryPath := getBinaryPath(t)

	dir := t.TempDir()
	inPath := writeTempJSON(t, dir, "url_records.json", sampleSnapshot("https://www.example.es"))
	outPath := filepath.Join(dir, "leak_report.json")

	cmd := exec.Command(binaryPath, "authority", "--in", inPath, "--out", outPath)
	output, err := cmd.CombinedOutput()

	require.NoError(t, err, "authority failed: %s", string(output))
	assert.Contains(t, string(output), "dead ends")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)

	var report types.LeakReport
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, 4, report.Summary.TotalURLs)
	// The 404 carrying traffic is the one dead end in the fixture.
	assert.Equal(t, 1, report.Summary.DeadEndCount)
}
