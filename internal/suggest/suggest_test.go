package suggest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexvidal/facet-audit/internal/types"
)

func TestParseNamingResponse_ValidJSON(t *testing.T) {
	responseText := `[
		{"token": "plegable", "suggested_name": "PLEGABLE", "suggested_rule": "plegable", "rationale": "foldable phones"},
		{"token": "resistente", "suggested_name": "RESISTENTE", "suggested_rule": "resistente(-agua)?", "rationale": "rugged phones"}
	]`

	candidates := []types.PatternCandidate{
		{Token: "plegable", Count: 14},
		{Token: "resistente", Count: 11},
	}

	suggestions, err := parseNamingResponse(responseText, candidates)
	require.NoError(t, err)
	require.Len(t, suggestions, 2)

	assert.Equal(t, "PLEGABLE", suggestions[0].SuggestedName)
	assert.Equal(t, "plegable", suggestions[0].SuggestedRule)
	assert.Equal(t, "RESISTENTE", suggestions[1].SuggestedName)
	assert.Equal(t, "rugged phones", suggestions[1].Rationale)
}

func TestParseNamingResponse_WithMarkdownCodeBlocks(t *testing.T) {
	responseText := "```json\n[{\"token\": \"plegable\", \"suggested_name\": \"PLEGABLE\", \"suggested_rule\": \"plegable\"}]\n```"

	candidates := []types.PatternCandidate{{Token: "plegable", Count: 14}}

	suggestions, err := parseNamingResponse(responseText, candidates)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "PLEGABLE", suggestions[0].SuggestedName)
}

func TestParseNamingResponse_MissingTokenGetsFallback(t *testing.T) {
	responseText := `[{"token": "plegable", "suggested_name": "PLEGABLE", "suggested_rule": "plegable"}]`

	candidates := []types.PatternCandidate{
		{Token: "plegable", Count: 14},
		{Token: "doble-pantalla", Count: 6},
	}

	suggestions, err := parseNamingResponse(responseText, candidates)
	require.NoError(t, err)
	require.Len(t, suggestions, 2)

	assert.Equal(t, "PLEGABLE", suggestions[0].SuggestedName)

	// Missing token falls back to a name and rule derived from the token.
	assert.Equal(t, "doble-pantalla", suggestions[1].Token)
	assert.Equal(t, "DOBLE_PANTALLA", suggestions[1].SuggestedName)
	assert.Equal(t, "doble-pantalla", suggestions[1].SuggestedRule)
	assert.NotEmpty(t, suggestions[1].Rationale)
}

func TestParseNamingResponse_InvalidRuleGetsFallback(t *testing.T) {
	responseText := `[{"token": "plegable", "suggested_name": "PLEGABLE", "suggested_rule": "plegable(?=/)"}]`

	candidates := []types.PatternCandidate{{Token: "plegable", Count: 14}}

	suggestions, err := parseNamingResponse(responseText, candidates)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)

	// Lookahead does not compile as RE2, so the proposal is replaced.
	assert.Equal(t, "plegable", suggestions[0].SuggestedRule)
	assert.Equal(t, "PLEGABLE", suggestions[0].SuggestedName)
}

func TestParseNamingResponse_DropsHallucinatedTokens(t *testing.T) {
	responseText := `[
		{"token": "plegable", "suggested_name": "PLEGABLE", "suggested_rule": "plegable"},
		{"token": "gaming", "suggested_name": "GAMING", "suggested_rule": "gaming"}
	]`

	candidates := []types.PatternCandidate{{Token: "plegable", Count: 14}}

	suggestions, err := parseNamingResponse(responseText, candidates)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "plegable", suggestions[0].Token)
}

func TestParseNamingResponse_InvalidJSON(t *testing.T) {
	_, err := parseNamingResponse("not valid json", []types.PatternCandidate{{Token: "plegable"}})
	assert.Error(t, err)
}

func TestBuildNamingPrompt(t *testing.T) {
	candidates := []types.PatternCandidate{
		{Token: "plegable", Count: 14, SampleURL: "https://store.example/moviles/plegable"},
		{Token: "resistente", Count: 11},
	}

	prompt := buildNamingPrompt(candidates, []string{"RAM", "MARCA"})

	assert.Contains(t, prompt, "plegable (14 URLs, e.g. https://store.example/moviles/plegable)")
	assert.Contains(t, prompt, "resistente (11 URLs)")
	assert.Contains(t, prompt, "RAM, MARCA")
	assert.Contains(t, prompt, "suggested_name")
	assert.Contains(t, prompt, "suggested_rule")
}

func TestBuildNamingPrompt_NoKnownFacets(t *testing.T) {
	prompt := buildNamingPrompt([]types.PatternCandidate{{Token: "plegable", Count: 14}}, nil)

	assert.Contains(t, prompt, "none")
}

func TestSuggest_MissingAPIKey(t *testing.T) {
	_, err := Suggest(context.Background(), []types.PatternCandidate{{Token: "plegable"}}, nil, "")
	require.Error(t, err)

	var suggestionErr *SuggestionError
	assert.ErrorAs(t, err, &suggestionErr)
	assert.Contains(t, err.Error(), "API key is required")
}

func TestSuggest_EmptyCandidates(t *testing.T) {
	suggestions, err := Suggest(context.Background(), nil, []string{"RAM"}, "test-key")
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}

func TestFallbackSuggestion(t *testing.T) {
	suggestion := fallbackSuggestion("doble-pantalla")

	assert.Equal(t, "doble-pantalla", suggestion.Token)
	assert.Equal(t, "DOBLE_PANTALLA", suggestion.SuggestedName)
	assert.Equal(t, "doble-pantalla", suggestion.SuggestedRule)
}
