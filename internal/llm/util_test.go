package llm

import (
	"testing"
)

func TestCleanJSONBlock_MarkdownCodeBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "json code block",
			input:    "```json\n{\"token\": \"plegable\"}\n```",
			expected: `{"token": "plegable"}`,
		},
		{
			name:     "generic code block",
			input:    "```\n{\"token\": \"plegable\"}\n```",
			expected: `{"token": "plegable"}`,
		},
		{
			name:     "code block with language",
			input:    "```javascript\n{\"token\": \"plegable\"}\n```",
			expected: `{"token": "plegable"}`,
		},
		{
			name:     "plain JSON",
			input:    `{"token": "plegable"}`,
			expected: `{"token": "plegable"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CleanJSONBlock(tt.input)
			if result != tt.expected {
				t.Errorf("CleanJSONBlock() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestCleanJSONBlock_PreambleText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "preamble before JSON object",
			input:    "As requested, here is the JSON:\n{\"token\": \"plegable\"}",
			expected: `{"token": "plegable"}`,
		},
		{
			name:     "conversational preamble",
			input:    "Based on the candidate tokens provided, I've analyzed the URL filters. Here's the structured output:\n\n{\"token\": \"plegable\", \"suggested_name\": \"PLEGABLE\"}",
			expected: `{"token": "plegable", "suggested_name": "PLEGABLE"}`,
		},
		{
			name:     "preamble with multiple sentences",
			input:    "I analyzed the URLs. The token filters by form factor. Here is the result: {\"names\": [\"PLEGABLE\"]}",
			expected: `{"names": ["PLEGABLE"]}`,
		},
		{
			name:     "preamble before JSON array",
			input:    "Here are the suggestions:\n[\"plegable\", \"resistente\"]",
			expected: `["plegable", "resistente"]`,
		},
		{
			name:     "JSON with trailing text",
			input:    "{\"token\": \"plegable\"}\n\nLet me know if you need anything else!",
			expected: `{"token": "plegable"}`,
		},
		{
			name:     "nested objects",
			input:    "Output:\n{\"outer\": {\"inner\": \"value\"}}",
			expected: `{"outer": {"inner": "value"}}`,
		},
		{
			name:     "JSON with escaped quotes",
			input:    "Result: {\"rationale\": \"filters by \\\"RAM\\\" size\"}",
			expected: `{"rationale": "filters by \"RAM\" size"}`,
		},
		{
			name:     "deeply nested",
			input:    "Here: {\"a\": {\"b\": {\"c\": {\"d\": \"deep\"}}}}",
			expected: `{"a": {"b": {"c": {"d": "deep"}}}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CleanJSONBlock(tt.input)
			if result != tt.expected {
				t.Errorf("CleanJSONBlock() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple object",
			input:    `{"token": "plegable"}`,
			expected: `{"token": "plegable"}`,
		},
		{
			name:     "nested objects",
			input:    `{"outer": {"inner": "value"}}`,
			expected: `{"outer": {"inner": "value"}}`,
		},
		{
			name:     "object with array",
			input:    `{"items": [1, 2, 3]}`,
			expected: `{"items": [1, 2, 3]}`,
		},
		{
			name:     "object with trailing text",
			input:    `{"token": "plegable"} and some more text`,
			expected: `{"token": "plegable"}`,
		},
		{
			name:     "string with braces inside",
			input:    `{"rule": "gb{1,2}-ram"}`,
			expected: `{"rule": "gb{1,2}-ram"}`,
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "not starting with brace",
			input:    "not json",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractJSONObject(tt.input)
			if result != tt.expected {
				t.Errorf("extractJSONObject() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestExtractJSONArray(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple array",
			input:    `["a", "b", "c"]`,
			expected: `["a", "b", "c"]`,
		},
		{
			name:     "nested arrays",
			input:    `[[1, 2], [3, 4]]`,
			expected: `[[1, 2], [3, 4]]`,
		},
		{
			name:     "array of objects",
			input:    `[{"id": 1}, {"id": 2}]`,
			expected: `[{"id": 1}, {"id": 2}]`,
		},
		{
			name:     "array with trailing text",
			input:    `[1, 2, 3] extra stuff`,
			expected: `[1, 2, 3]`,
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "not starting with bracket",
			input:    "not array",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractJSONArray(tt.input)
			if result != tt.expected {
				t.Errorf("extractJSONArray() = %q, want %q", result, tt.expected)
			}
		})
	}
}
