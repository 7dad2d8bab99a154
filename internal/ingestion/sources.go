package ingestion

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alexvidal/facet-audit/internal/types"
)

// Adobe Workspace exports carry a metadata preamble before the real header.
// The usual offset is 13 lines, but findHeaderRow scans rather than trusting
// the constant, since locale and report settings shift it.
const headerScanLimit = 20

// LoadTraffic reads an analytics traffic export (URL, sessions).
func LoadTraffic(path string) ([]types.TrafficRecord, error) {
	rows, file, err := readFile(path)
	if err != nil {
		return nil, err
	}

	headerIdx, cols, err := findHeaderRow(file, rows, trafficColumns)
	if err != nil {
		return nil, err
	}

	var records []types.TrafficRecord
	for _, row := range rows[headerIdx+1:] {
		u := strings.TrimSpace(cell(row, cols["url"]))
		if u == "" {
			continue
		}
		records = append(records, types.TrafficRecord{
			URL:      u,
			Sessions: parseNumber(cell(row, cols["sessions"])),
		})
	}
	return records, nil
}

// LoadAdobe reads an Adobe internal-filter demand export
// (filter label, instance count).
func LoadAdobe(path string) ([]types.DemandRecord, error) {
	rows, file, err := readFile(path)
	if err != nil {
		return nil, err
	}

	headerIdx, cols, err := findHeaderRow(file, rows, adobeColumns)
	if err != nil {
		return nil, err
	}

	var records []types.DemandRecord
	for _, row := range rows[headerIdx+1:] {
		label := strings.TrimSpace(cell(row, cols["label"]))
		if label == "" {
			continue
		}
		records = append(records, types.DemandRecord{
			Label: label,
			Value: parseNumber(cell(row, cols["value"])),
		})
	}
	return records, nil
}

// LoadSemrush reads a Semrush keyword export (keyword, search volume).
func LoadSemrush(path string) ([]types.DemandRecord, error) {
	rows, file, err := readFile(path)
	if err != nil {
		return nil, err
	}

	headerIdx, cols, err := findHeaderRow(file, rows, semrushColumns)
	if err != nil {
		return nil, err
	}

	var records []types.DemandRecord
	for _, row := range rows[headerIdx+1:] {
		keyword := strings.TrimSpace(cell(row, cols["keyword"]))
		if keyword == "" {
			continue
		}
		records = append(records, types.DemandRecord{
			Label: keyword,
			Value: parseNumber(cell(row, cols["volume"])),
		})
	}
	return records, nil
}

func readFile(path string) ([][]string, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read file: %w", err)
	}
	file := filepath.Base(path)
	rows, err := readTable(file, data)
	if err != nil {
		return nil, "", err
	}
	return rows, file, nil
}

// findHeaderRow locates the header within the first headerScanLimit rows.
// When no row resolves, the SchemaError reported is the one from the first
// row, which names the expected columns.
func findHeaderRow(file string, rows [][]string, specs []columnSpec) (int, map[string]int, error) {
	limit := headerScanLimit
	if len(rows) < limit {
		limit = len(rows)
	}

	var firstErr error
	for i := 0; i < limit; i++ {
		cols, err := resolveColumns(file, rows[i], specs)
		if err == nil {
			return i, cols, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return 0, nil, firstErr
}

// parseNumber handles the numeric formats seen across exports: plain ints,
// "1,234.56", and the Spanish "1.234,56". Unparseable cells read as 0.
func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00a0", "") // NBSP thousands separator
	if s == "" {
		return 0
	}

	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")

	switch {
	case hasComma && hasDot:
		// The rightmost separator is the decimal mark.
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case hasComma:
		// A single comma with one or two trailing digits reads as a decimal
		// mark; anything else is a thousands separator.
		parts := strings.Split(s, ",")
		if len(parts) == 2 && len(parts[1]) <= 2 {
			s = parts[0] + "." + parts[1]
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case hasDot:
		// A dot followed by exactly three digits is a thousands separator in
		// the Spanish exports; counts do not carry three decimals.
		parts := strings.Split(s, ".")
		if len(parts) > 2 || (len(parts) == 2 && len(parts[1]) == 3) {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
