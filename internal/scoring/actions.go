package scoring

import "github.com/alexvidal/facet-audit/internal/types"

// Priority cut points over the total score.
const (
	priorityHighScore   = 60.0
	priorityMediumScore = 40.0
)

// tierFor maps a total score onto its tier. Boundaries are inclusive on the
// lower bound and fixed; only action thresholds are configuration.
func tierFor(total float64) types.Tier {
	switch {
	case total >= 90:
		return types.TierS
	case total >= 75:
		return types.TierA
	case total >= 50:
		return types.TierB
	case total >= 25:
		return types.TierC
	default:
		return types.TierD
	}
}

// actionFor picks the recommended action, first matching rule wins: live but
// unlinked pages want a wrapper link, demand with only dead pages wants the
// facet recreated, linked and live wants maintaining, the rest is noise.
func (s *Scorer) actionFor(total float64, rec types.FacetRecord) types.ActionType {
	switch {
	case rec.URLs200 > 0 && !rec.InWrapper && total >= s.thresholds.Link:
		return types.ActionLink
	case rec.URLs200 == 0 && rec.URLs404 > 0 && total >= s.thresholds.Recreate:
		return types.ActionRecreate
	case rec.URLs200 > 0 && rec.InWrapper && total >= s.thresholds.Maintain:
		return types.ActionMaintain
	default:
		return types.ActionIgnore
	}
}

func priorityFor(total float64) types.Priority {
	switch {
	case total >= priorityHighScore:
		return types.PriorityHigh
	case total >= priorityMediumScore:
		return types.PriorityMedium
	default:
		return types.PriorityLow
	}
}
