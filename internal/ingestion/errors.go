package ingestion

import (
	"fmt"
	"strings"
)

// SchemaError reports a required column that could not be found in a source
// file after case-insensitive alias resolution. It aborts that file only;
// other sources keep loading.
type SchemaError struct {
	File    string
	Column  string
	Aliases []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error in %s: required column %q not found (tried: %s)",
		e.File, e.Column, strings.Join(e.Aliases, ", "))
}

// EncodingError reports that a file could not be decoded and parsed under any
// encoding in the fallback chain. It aborts that file only.
type EncodingError struct {
	File  string
	Tried []string
	Cause error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encoding error in %s: no encoding produced a readable table (tried: %s)",
		e.File, strings.Join(e.Tried, ", "))
}

func (e *EncodingError) Unwrap() error { return e.Cause }
