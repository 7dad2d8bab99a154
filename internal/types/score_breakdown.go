package types

import "time"

// Tier is the ordinal priority bucket derived from the total score.
// Boundaries are inclusive on the lower bound: S>=90, A>=75, B>=50, C>=25.
type Tier string

const (
	TierS Tier = "S"
	TierA Tier = "A"
	TierB Tier = "B"
	TierC Tier = "C"
	TierD Tier = "D"
)

// Rank returns the tier's position with S highest (4) and D lowest (0),
// so callers can compare tiers numerically.
func (t Tier) Rank() int {
	switch t {
	case TierS:
		return 4
	case TierA:
		return 3
	case TierB:
		return 2
	case TierC:
		return 1
	default:
		return 0
	}
}

// ActionType is the recommended next step for a facet.
type ActionType string

const (
	// ActionLink: live pages exist but the wrapper does not link them.
	ActionLink ActionType = "link"
	// ActionRecreate: the facet was removed but demand justifies bringing it back.
	ActionRecreate ActionType = "recreate"
	// ActionMaintain: already linked and performing; keep as is.
	ActionMaintain ActionType = "maintain"
	// ActionIgnore: not worth acting on.
	ActionIgnore ActionType = "ignore"
)

// Priority grades how urgent the recommended action is.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Component names used as keys in ScoreBreakdown maps.
const (
	ComponentDemand      = "demand"
	ComponentPerformance = "performance"
	ComponentCoverage    = "coverage"
	ComponentOpportunity = "opportunity"
)

// ScoreBreakdown is the scored result for one facet: the component scores,
// the effective (normalized) weights they were combined with, and the derived
// tier and action. Created once per scoring run, read-only afterward.
type ScoreBreakdown struct {
	FacetName       string             `json:"facet_name"`
	ComponentScores map[string]float64 `json:"component_scores"`
	Weights         map[string]float64 `json:"weights"`
	TotalScore      float64            `json:"total_score"`
	Tier            Tier               `json:"tier"`
	ActionType      ActionType         `json:"action_type"`
	Priority        Priority           `json:"priority"`
}

// FacetScores is the scoring artifact for a full run, ordered by total score
// descending.
type FacetScores struct {
	GeneratedAt     time.Time        `json:"generated_at"`
	RegistryVersion int              `json:"registry_version,omitempty"`
	Scores          []ScoreBreakdown `json:"scores"`
}
