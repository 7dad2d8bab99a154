// Package config provides configuration loading and validation for the CLI.
//
// A loaded Config is validated once and treated as immutable: it is passed by
// value, and nothing mutates it after LoadConfig returns.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

// Weights are the scoring component weights. They do not need to sum to 1;
// the scorer renormalizes proportionally. Negative weights are rejected.
type Weights struct {
	Demand      float64 `json:"demand" validate:"gte=0"`
	Coverage    float64 `json:"coverage" validate:"gte=0"`
	Performance float64 `json:"performance" validate:"gte=0"`
	Opportunity float64 `json:"opportunity" validate:"gte=0"`
}

// Sum returns the raw weight total.
func (w Weights) Sum() float64 {
	return w.Demand + w.Coverage + w.Performance + w.Opportunity
}

// Thresholds drive action assignment and dilution classification.
type Thresholds struct {
	// Link is the minimum total score for a "link" recommendation.
	Link float64 `json:"link_threshold" validate:"gte=0,lte=100"`
	// Recreate is the minimum total score for a "recreate" recommendation.
	Recreate float64 `json:"recreate_threshold" validate:"gte=0,lte=100"`
	// Maintain is the minimum total score for a "maintain" recommendation.
	Maintain float64 `json:"maintain_threshold" validate:"gte=0,lte=100"`
	// DilutionLinks is the wrapper link count above which a low-traffic page
	// is classified as diluting.
	DilutionLinks int `json:"dilution_link_threshold" validate:"gte=0"`
	// DilutionLowTraffic is the traffic below which a crowded wrapper page
	// counts as diluting.
	DilutionLowTraffic float64 `json:"dilution_low_traffic_threshold" validate:"gte=0"`
	// WrapperPenalty multiplies the coverage score of facets missing from the
	// wrapper.
	WrapperPenalty float64 `json:"wrapper_penalty" validate:"gt=0,lte=1"`
}

// Verification bounds the HTTP verifier. DelayMS and MaxRetries are pointers
// because an explicit 0 is meaningful there: a zero delay disables pacing and
// zero retries disables the retry; only an absent field falls back.
type Verification struct {
	Workers    int  `json:"workers" validate:"gte=1,lte=64"`
	DelayMS    *int `json:"delay_ms,omitempty" validate:"omitempty,gte=0"`
	TimeoutMS  int  `json:"timeout_ms" validate:"gte=1"`
	MaxRetries *int `json:"max_retries,omitempty" validate:"omitempty,gte=0,lte=1"`
	BackoffMS  int  `json:"backoff_ms" validate:"gte=0"`
	// TopN is how many of the highest-scoring facet URLs the pipeline verifies.
	TopN int `json:"top_n" validate:"gte=0"`
}

// Discovery bounds unknown-pattern discovery.
type Discovery struct {
	// MinCount is the minimum occurrences before a token is surfaced.
	MinCount int `json:"min_count" validate:"gte=1"`
	// MaxCandidates caps the discovery output, most frequent first.
	MaxCandidates int `json:"max_candidates" validate:"gte=1"`
}

// Config is the analysis configuration, loadable from a JSON file.
// All fields are optional; missing values fall back to DefaultConfig.
type Config struct {
	Weights      Weights      `json:"weights"`
	Thresholds   Thresholds   `json:"thresholds"`
	Verification Verification `json:"verification"`
	Discovery    Discovery    `json:"discovery"`

	// PatternsFile is the facet pattern registry path.
	PatternsFile string `json:"patterns_file,omitempty"`
	// DatabaseURL enables run persistence when set.
	DatabaseURL string `json:"database_url,omitempty"`
	// APIKey is the Gemini key for the suggest command.
	APIKey  string `json:"api_key,omitempty"`
	Verbose bool   `json:"verbose,omitempty"`
}

// DefaultConfig returns the defaults every run starts from.
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Demand:      0.40,
			Coverage:    0.20,
			Performance: 0.15,
			Opportunity: 0.25,
		},
		Thresholds: Thresholds{
			Link:               50,
			Recreate:           60,
			Maintain:           40,
			DilutionLinks:      10,
			DilutionLowTraffic: 500,
			WrapperPenalty:     0.8,
		},
		Verification: Verification{
			Workers:    5,
			DelayMS:    intPtr(300),
			TimeoutMS:  10000,
			MaxRetries: intPtr(1),
			BackoffMS:  500,
			TopN:       20,
		},
		Discovery: Discovery{
			MinCount:      10,
			MaxCandidates: 20,
		},
	}
}

// LoadConfig loads configuration from a JSON file, merges it with the
// defaults, and validates the result. Out-of-range values are rejected here,
// before any analysis runs.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return Config{}, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	merged := cfg.MergeWithDefaults(DefaultConfig())
	if err := merged.Validate(); err != nil {
		return Config{}, err
	}

	return merged, nil
}

// Validate checks that the configuration has valid values.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %s", extractValidationError(err))
	}
	if c.Weights.Sum() <= 0 {
		return fmt.Errorf("config error: weights must have a positive sum, got %v", c.Weights.Sum())
	}
	return nil
}

// MergeWithDefaults returns a new Config with unset fields filled from
// defaults. Weights merge as a block: a config that sets any weight keeps its
// literal values (zeros included), one that sets none gets the default set.
// Other numeric fields treat zero as unset, except that a zero WrapperPenalty
// also falls back (a zero penalty would erase coverage entirely), and the
// pointer fields DelayMS/MaxRetries fall back only when absent, so a literal
// 0 can switch pacing or the retry off.
func (c Config) MergeWithDefaults(defaults Config) Config {
	result := c

	if result.Weights == (Weights{}) {
		result.Weights = defaults.Weights
	}

	if result.Thresholds.Link == 0 {
		result.Thresholds.Link = defaults.Thresholds.Link
	}
	if result.Thresholds.Recreate == 0 {
		result.Thresholds.Recreate = defaults.Thresholds.Recreate
	}
	if result.Thresholds.Maintain == 0 {
		result.Thresholds.Maintain = defaults.Thresholds.Maintain
	}
	if result.Thresholds.DilutionLinks == 0 {
		result.Thresholds.DilutionLinks = defaults.Thresholds.DilutionLinks
	}
	if result.Thresholds.DilutionLowTraffic == 0 {
		result.Thresholds.DilutionLowTraffic = defaults.Thresholds.DilutionLowTraffic
	}
	if result.Thresholds.WrapperPenalty == 0 {
		result.Thresholds.WrapperPenalty = defaults.Thresholds.WrapperPenalty
	}

	if result.Verification.Workers == 0 {
		result.Verification.Workers = defaults.Verification.Workers
	}
	if result.Verification.DelayMS == nil {
		result.Verification.DelayMS = intPtr(*defaults.Verification.DelayMS)
	}
	if result.Verification.TimeoutMS == 0 {
		result.Verification.TimeoutMS = defaults.Verification.TimeoutMS
	}
	if result.Verification.MaxRetries == nil {
		result.Verification.MaxRetries = intPtr(*defaults.Verification.MaxRetries)
	}
	if result.Verification.BackoffMS == 0 {
		result.Verification.BackoffMS = defaults.Verification.BackoffMS
	}
	if result.Verification.TopN == 0 {
		result.Verification.TopN = defaults.Verification.TopN
	}

	if result.Discovery.MinCount == 0 {
		result.Discovery.MinCount = defaults.Discovery.MinCount
	}
	if result.Discovery.MaxCandidates == 0 {
		result.Discovery.MaxCandidates = defaults.Discovery.MaxCandidates
	}

	if result.PatternsFile == "" {
		result.PatternsFile = defaults.PatternsFile
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}

	return result
}

func intPtr(v int) *int {
	return &v
}

var validate = validator.New()

func extractValidationError(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		if len(validationErrors) > 0 {
			// Return first validation error for simplicity
			ve := validationErrors[0]
			return fmt.Sprintf("%s fails '%s'", ve.Namespace(), ve.Tag())
		}
	}
	return "invalid configuration"
}
