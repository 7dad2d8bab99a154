package verify

import "fmt"

// Error is a per-URL verification failure. It is recorded on the result slot,
// never raised: verification is advisory and a batch always completes.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("verify %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("verify %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
