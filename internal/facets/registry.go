// Package facets holds the facet pattern registry, URL detection, and the
// per-facet aggregation that turns URL records into facet records.
package facets

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/alexvidal/facet-audit/internal/types"
)

// Registry is the append-only facet pattern configuration. Promote is the
// only mutation: it appends a pattern and bumps the version, never edits or
// removes. Every analysis artifact records the version it ran with, so past
// reports replay from the input snapshot plus this file's history.
type Registry struct {
	Version   int                  `json:"version"`
	UpdatedAt time.Time            `json:"updated_at"`
	Patterns  []types.FacetPattern `json:"patterns"`
}

// DefaultRegistry returns the built-in pattern set at version 1.
func DefaultRegistry() *Registry {
	return &Registry{
		Version:  1,
		Patterns: defaultPatterns(),
	}
}

// defaultPatterns is the production rule set for smartphone category facets.
// Match/Exclude apply to lowercased URL paths and slugified demand labels.
func defaultPatterns() []types.FacetPattern {
	return []types.FacetPattern{
		{Name: "PULGADAS", Match: `pulgadas|pequeno`, Category: types.PatternKnown,
			DemandTerms: []string{"pulgadas"}},
		{Name: "RAM", Match: `gb-ram`, Category: types.PatternKnown,
			DemandTerms: []string{"gb ram"}},
		{Name: "ALMACENAMIENTO", Match: `\d+-gb(?:$|[/-])`, Exclude: `gb-ram`, Category: types.PatternKnown,
			DemandTerms: []string{"almacenamiento"}},
		{Name: "5G", Match: `(?:^|[/-])5g(?:$|[/-])`, Category: types.PatternKnown,
			DemandTerms: []string{"5g"}},
		{Name: "DUAL_SIM", Match: `dual-sim`, Category: types.PatternKnown,
			DemandTerms: []string{"dual sim"}},
		{Name: "NFC", Match: `/nfc(?:$|[/-])`, Category: types.PatternKnown,
			DemandTerms: []string{"nfc"}},
		{Name: "REACONDICIONADO", Match: `reacondicionado`, Category: types.PatternKnown,
			DemandTerms: []string{"reacondicionado", "reaco"}},
		{Name: "MARCA", Match: `apple|samsung|xiaomi|huawei|oppo|realme|motorola|honor|vivo`,
			Category: types.PatternKnown},
		{Name: "PRECIO", Match: `precio|baratos?`, Category: types.PatternKnown,
			DemandTerms: []string{"precio", "barato"}},
	}
}

// LoadRegistry reads a registry file. A missing file yields the default
// registry, so first runs need no setup.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultRegistry(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read registry %s: %w", path, err)
	}

	var reg Registry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("failed to parse registry %s: %w", path, err)
	}
	if reg.Version == 0 {
		reg.Version = 1
	}
	return &reg, nil
}

// Save writes the registry atomically (temp file + rename) so a crash cannot
// truncate the pattern history.
func (r *Registry) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace registry: %w", err)
	}
	return nil
}

// Promote appends a human-confirmed pattern as known and bumps the version.
// Promotion is the only way an unknown pattern enters production; nothing is
// ever inferred automatically.
func (r *Registry) Promote(p types.FacetPattern) error {
	if p.Name == "" {
		return fmt.Errorf("pattern name is required")
	}
	if p.Match == "" {
		return fmt.Errorf("pattern match rule is required")
	}
	for _, existing := range r.Patterns {
		if existing.Name == p.Name {
			return fmt.Errorf("pattern %q already registered", p.Name)
		}
	}
	if _, err := regexp.Compile(p.Match); err != nil {
		return fmt.Errorf("invalid match rule for %q: %w", p.Name, err)
	}
	if p.Exclude != "" {
		if _, err := regexp.Compile(p.Exclude); err != nil {
			return fmt.Errorf("invalid exclude rule for %q: %w", p.Name, err)
		}
	}

	p.Category = types.PatternKnown
	p.AddedAt = time.Now().UTC()
	r.Patterns = append(r.Patterns, p)
	r.Version++
	r.UpdatedAt = p.AddedAt
	return nil
}

// Known returns the patterns active for detection.
func (r *Registry) Known() []types.FacetPattern {
	known := make([]types.FacetPattern, 0, len(r.Patterns))
	for _, p := range r.Patterns {
		if p.Category == types.PatternKnown {
			known = append(known, p)
		}
	}
	return known
}
