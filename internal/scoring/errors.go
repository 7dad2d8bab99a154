package scoring

import "fmt"

// ConfigError reports malformed scoring configuration. NewScorer returns it
// before any score is computed; a scoring run never produces partial output
// under inconsistent weights.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("scoring config %s: %s", e.Field, e.Reason)
}
