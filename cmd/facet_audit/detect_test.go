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

func TestDetectCommand_MissingInFlag(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "detect")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "required")
}

func TestDetectCommand_WritesDetection(t *testing.T) {
	binaryPath := getBinaryPath(t)

	dir := t.TempDir()
	inPath := writeTempJSON(t, dir, "url_records.json", sampleSnapshot("https://www.example.es"))
	outPath := filepath.Join(dir, "detection.json")

	cmd := exec.Command(binaryPath, "detect",
		"--in", inPath,
		"--patterns", filepath.Join(dir, "patterns.json"),
		"--out", outPath)
	output, err := cmd.CombinedOutput()

	require.NoError(t, err, "detect failed: %s", string(output))
	assert.Contains(t, string(output), "registry v1")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)

	var detection types.Detection
	require.NoError(t, json.Unmarshal(data, &detection))
	assert.Equal(t, 1, detection.RegistryVersion)
	assert.Len(t, detection.Facets["RAM"], 1)
	assert.Len(t, detection.Facets["5G"], 1)
	// Facets without matches are still present, just empty.
	assert.Contains(t, detection.Facets, "NFC")
	assert.Empty(t, detection.Facets["NFC"])
}
