// Package suggest proposes facet names and detection rules for discovered
// candidate tokens. Suggestions are advisory: nothing here writes to the
// pattern registry, promotion stays a human decision.
package suggest

import "fmt"

// SuggestionError represents a failure in LLM-backed suggestion generation
type SuggestionError struct {
	Message string
	Cause   error
}

func (e *SuggestionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("suggestion error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("suggestion error: %s", e.Message)
}

func (e *SuggestionError) Unwrap() error {
	return e.Cause
}
