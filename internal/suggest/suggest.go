package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/alexvidal/facet-audit/internal/llm"
	"github.com/alexvidal/facet-audit/internal/prompts"
	"github.com/alexvidal/facet-audit/internal/types"
)

// Suggest proposes a facet name and detection rule for each candidate token
// using the LLM. Tokens the model skips or answers badly get a deterministic
// fallback derived from the token itself, so the output always covers every
// input candidate in order.
func Suggest(ctx context.Context, candidates []types.PatternCandidate, knownFacets []string, apiKey string) ([]types.PatternSuggestion, error) {
	if apiKey == "" {
		return nil, &SuggestionError{Message: "API key is required"}
	}

	if len(candidates) == 0 {
		return []types.PatternSuggestion{}, nil
	}

	config := llm.DefaultConfig()
	client, err := llm.NewClient(ctx, config, apiKey)
	if err != nil {
		return nil, &SuggestionError{
			Message: "failed to create LLM client",
			Cause:   err,
		}
	}
	defer func() { _ = client.Close() }()

	prompt := buildNamingPrompt(candidates, knownFacets)

	// Naming tokens is a simple extraction task, TierLite is enough.
	responseText, err := client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		return nil, &SuggestionError{
			Message: "failed to generate content from LLM",
			Cause:   err,
		}
	}

	suggestions, err := parseNamingResponse(responseText, candidates)
	if err != nil {
		return nil, &SuggestionError{
			Message: "failed to parse naming response",
			Cause:   err,
		}
	}

	return suggestions, nil
}

// buildNamingPrompt constructs the prompt for candidate naming
func buildNamingPrompt(candidates []types.PatternCandidate, knownFacets []string) string {
	var lines []string
	for _, candidate := range candidates {
		line := fmt.Sprintf("- %s (%d URLs", candidate.Token, candidate.Count)
		if candidate.SampleURL != "" {
			line += fmt.Sprintf(", e.g. %s", candidate.SampleURL)
		}
		line += ")"
		lines = append(lines, line)
	}

	known := "none"
	if len(knownFacets) > 0 {
		known = strings.Join(knownFacets, ", ")
	}

	template := prompts.MustGet("facet_naming.json", "name-candidates")
	return prompts.Format(template, map[string]string{
		"Candidates":  strings.Join(lines, "\n"),
		"KnownFacets": known,
	})
}

// parseNamingResponse parses the JSON response and pairs it back to the input
// candidates. Hallucinated tokens are dropped, missing or invalid answers are
// replaced with a fallback.
func parseNamingResponse(responseText string, candidates []types.PatternCandidate) ([]types.PatternSuggestion, error) {
	responseText = llm.CleanJSONBlock(responseText)

	var proposed []types.PatternSuggestion
	if err := json.Unmarshal([]byte(responseText), &proposed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal naming JSON: %w", err)
	}

	byToken := make(map[string]types.PatternSuggestion, len(proposed))
	for _, suggestion := range proposed {
		byToken[suggestion.Token] = suggestion
	}

	result := make([]types.PatternSuggestion, 0, len(candidates))
	for _, candidate := range candidates {
		suggestion, exists := byToken[candidate.Token]
		if !exists || !usable(suggestion) {
			suggestion = fallbackSuggestion(candidate.Token)
		}
		result = append(result, suggestion)
	}

	return result, nil
}

// usable reports whether a proposed suggestion can be shown to a reviewer:
// it needs a name and a rule that compiles as RE2.
func usable(suggestion types.PatternSuggestion) bool {
	if strings.TrimSpace(suggestion.SuggestedName) == "" {
		return false
	}
	if suggestion.SuggestedRule == "" {
		return false
	}
	_, err := regexp.Compile(suggestion.SuggestedRule)
	return err == nil
}

// fallbackSuggestion derives a reviewable suggestion from the token text.
func fallbackSuggestion(token string) types.PatternSuggestion {
	name := strings.ToUpper(strings.ReplaceAll(token, "-", "_"))
	return types.PatternSuggestion{
		Token:         token,
		SuggestedName: name,
		SuggestedRule: regexp.QuoteMeta(token),
		Rationale:     "fallback derived from the token text",
	}
}
