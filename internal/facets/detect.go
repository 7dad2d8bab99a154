package facets

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/alexvidal/facet-audit/internal/types"
)

// Matcher is a compiled pattern set. Compile once per detection run; the
// zero-value regexps never change afterwards, so a Matcher is safe for
// concurrent readers.
type Matcher struct {
	patterns []compiledPattern
}

type compiledPattern struct {
	pattern types.FacetPattern
	match   *regexp.Regexp
	exclude *regexp.Regexp
}

// Compile builds a Matcher from the registry's known patterns.
func Compile(reg *Registry) (*Matcher, error) {
	return CompilePatterns(reg.Known())
}

// CompilePatterns builds a Matcher from an explicit pattern slice, as stored
// in a detection artifact.
func CompilePatterns(patterns []types.FacetPattern) (*Matcher, error) {
	compiled := make([]compiledPattern, 0, len(patterns))
	for _, p := range patterns {
		match, err := regexp.Compile(p.Match)
		if err != nil {
			return nil, fmt.Errorf("pattern %q has invalid match rule: %w", p.Name, err)
		}
		cp := compiledPattern{pattern: p, match: match}
		if p.Exclude != "" {
			exclude, err := regexp.Compile(p.Exclude)
			if err != nil {
				return nil, fmt.Errorf("pattern %q has invalid exclude rule: %w", p.Name, err)
			}
			cp.exclude = exclude
		}
		compiled = append(compiled, cp)
	}
	return &Matcher{patterns: compiled}, nil
}

func (cp compiledPattern) matches(s string) bool {
	if !cp.match.MatchString(s) {
		return false
	}
	if cp.exclude != nil && cp.exclude.MatchString(s) {
		return false
	}
	return true
}

// Names returns the facet names in pattern order.
func (m *Matcher) Names() []string {
	names := make([]string, len(m.patterns))
	for i, cp := range m.patterns {
		names[i] = cp.pattern.Name
	}
	return names
}

// MatchesURL reports whether the named facet's rule hits the URL's path.
func (m *Matcher) MatchesURL(name, rawURL string) bool {
	path := pathOf(rawURL)
	for _, cp := range m.patterns {
		if cp.pattern.Name == name {
			return cp.matches(path)
		}
	}
	return false
}

// DetectAll classifies every URL against every known pattern. A URL may land
// in zero, one, or several facets; multi-match is preserved, not hidden.
// Every configured facet appears in the result, empty matches included, and
// per-facet URL lists are deduplicated and sorted. Running DetectAll twice on
// the same inputs yields the same mapping.
func (m *Matcher) DetectAll(urls []string) map[string][]string {
	sets := make(map[string]map[string]bool, len(m.patterns))
	for _, cp := range m.patterns {
		sets[cp.pattern.Name] = make(map[string]bool)
	}

	for _, u := range urls {
		path := pathOf(u)
		for _, cp := range m.patterns {
			if cp.matches(path) {
				sets[cp.pattern.Name][u] = true
			}
		}
	}

	result := make(map[string][]string, len(sets))
	for name, set := range sets {
		matched := make([]string, 0, len(set))
		for u := range set {
			matched = append(matched, u)
		}
		sort.Strings(matched)
		result[name] = matched
	}
	return result
}

// Detect runs DetectAll and wraps the mapping into the versioned detection
// artifact, embedding the pattern set the run used.
func Detect(reg *Registry, urls []string) (*types.Detection, error) {
	matcher, err := Compile(reg)
	if err != nil {
		return nil, err
	}
	return &types.Detection{
		RegistryVersion: reg.Version,
		Patterns:        reg.Known(),
		Facets:          matcher.DetectAll(urls),
	}, nil
}

// DetectUnknown surfaces filter tokens that no known pattern covers, for
// human review. Path segments already claimed by a known pattern are skipped
// wholesale; remaining segments are split on "-" and tokens longer than two
// runes containing at least one letter are counted across the crawl. Tokens
// seen fewer than minCount times are dropped, and the list is capped at
// maxCandidates, most frequent first (ties by token).
func (m *Matcher) DetectUnknown(urls []string, minCount, maxCandidates int) []types.PatternCandidate {
	counts := make(map[string]int)
	samples := make(map[string]string)

	for _, u := range urls {
		path := pathOf(u)
		for _, segment := range strings.Split(path, "/") {
			if segment == "" || m.anyMatches(segment) {
				continue
			}
			for _, token := range strings.Split(segment, "-") {
				if !looksLikeFilterToken(token) || m.anyMatches(token) {
					continue
				}
				counts[token]++
				if _, ok := samples[token]; !ok {
					samples[token] = u
				}
			}
		}
	}

	candidates := make([]types.PatternCandidate, 0, len(counts))
	for token, count := range counts {
		if count < minCount {
			continue
		}
		candidates = append(candidates, types.PatternCandidate{
			Token:     token,
			Count:     count,
			SampleURL: samples[token],
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Count != candidates[j].Count {
			return candidates[i].Count > candidates[j].Count
		}
		return candidates[i].Token < candidates[j].Token
	})

	if maxCandidates > 0 && len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}
	return candidates
}

func (m *Matcher) anyMatches(s string) bool {
	for _, cp := range m.patterns {
		if cp.matches(s) {
			return true
		}
	}
	return false
}

func looksLikeFilterToken(token string) bool {
	if utf8.RuneCountInString(token) <= 2 {
		return false
	}
	hasLetter := false
	for _, r := range token {
		if unicode.IsLetter(r) {
			hasLetter = true
		} else if !unicode.IsDigit(r) {
			return false
		}
	}
	return hasLetter
}

// pathOf lowercases and extracts the path portion of a URL; bare paths pass
// through unchanged.
func pathOf(rawURL string) string {
	lower := strings.ToLower(strings.TrimSpace(rawURL))
	if parsed, err := url.Parse(lower); err == nil && parsed.Path != "" {
		return parsed.Path
	}
	return lower
}
