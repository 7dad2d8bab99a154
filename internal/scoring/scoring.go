// Package scoring combines demand, performance, coverage, and opportunity
// sub-scores into weighted 0-100 facet scores with tier and recommended
// action attached.
package scoring

import (
	"math"
	"sort"

	"github.com/alexvidal/facet-audit/internal/config"
	"github.com/alexvidal/facet-audit/internal/types"
)

// Demand source mix. Adobe internal-filter instances reflect on-site intent
// and dominate; Semrush volume seconds it; keyword-planner volume, when a
// source supplies it, trails.
const (
	adobeShare   = 0.6
	semrushShare = 0.3
	plannerShare = 0.1
)

// Scorer scores one batch of facet records. Sub-scores are normalized against
// the batch maxima captured at construction, so scores are relative to the
// population of this run and a Scorer must not be reused across batches.
type Scorer struct {
	weights    config.Weights
	thresholds config.Thresholds
	population []types.FacetRecord
	demandMax  float64
	trafficMax float64
}

// NewScorer validates weights and thresholds eagerly and precomputes the
// batch scales. Weights are renormalized proportionally, so callers may pass
// any non-negative mix with a positive sum.
func NewScorer(cfg config.Config, population []types.FacetRecord) (*Scorer, error) {
	weights, err := normalizeWeights(cfg.Weights)
	if err != nil {
		return nil, err
	}
	if err := checkThresholds(cfg.Thresholds); err != nil {
		return nil, err
	}

	s := &Scorer{
		weights:    weights,
		thresholds: cfg.Thresholds,
		population: population,
	}
	for _, rec := range population {
		s.demandMax = math.Max(s.demandMax, demandRaw(rec))
		s.trafficMax = math.Max(s.trafficMax, rec.TrafficSEO)
	}
	return s, nil
}

// CalculateScore scores a single facet against the batch scales.
func (s *Scorer) CalculateScore(rec types.FacetRecord) types.ScoreBreakdown {
	demand := batchNorm(demandRaw(rec), s.demandMax)
	performance := batchNorm(rec.TrafficSEO, s.trafficMax)
	coverage := s.coverageScore(rec)
	opportunity := demand * (100 - math.Min(coverage, performance)) / 100

	total := demand*s.weights.Demand +
		coverage*s.weights.Coverage +
		performance*s.weights.Performance +
		opportunity*s.weights.Opportunity
	total = round2(clamp(total, 0, 100))

	return types.ScoreBreakdown{
		FacetName: rec.FacetName,
		ComponentScores: map[string]float64{
			types.ComponentDemand:      round2(demand),
			types.ComponentPerformance: round2(performance),
			types.ComponentCoverage:    round2(coverage),
			types.ComponentOpportunity: round2(opportunity),
		},
		Weights: map[string]float64{
			types.ComponentDemand:      s.weights.Demand,
			types.ComponentCoverage:    s.weights.Coverage,
			types.ComponentPerformance: s.weights.Performance,
			types.ComponentOpportunity: s.weights.Opportunity,
		},
		TotalScore: total,
		Tier:       tierFor(total),
		ActionType: s.actionFor(total, rec),
		Priority:   priorityFor(total),
	}
}

// ScoreAll scores the whole population, highest total first. Ties break by
// facet name so output stays deterministic.
func (s *Scorer) ScoreAll() []types.ScoreBreakdown {
	scores := make([]types.ScoreBreakdown, 0, len(s.population))
	for _, rec := range s.population {
		scores = append(scores, s.CalculateScore(rec))
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].TotalScore != scores[j].TotalScore {
			return scores[i].TotalScore > scores[j].TotalScore
		}
		return scores[i].FacetName < scores[j].FacetName
	})
	return scores
}

// demandRaw mixes the demand sources. Current inputs carry no planner volume,
// so that share contributes zero.
func demandRaw(rec types.FacetRecord) float64 {
	return adobeShare*rec.DemandAdobe + semrushShare*rec.DemandSemrush
}

// batchNorm maps v onto [0,100] with log compression relative to the batch
// maximum. A zero maximum means the whole batch lacks the signal and scores 0;
// the maximum element (including a single-element batch) scores 100.
func batchNorm(v, max float64) float64 {
	if max <= 0 || v <= 0 {
		return 0
	}
	if v >= max {
		return 100
	}
	return 100 * math.Log1p(v) / math.Log1p(max)
}

// coverageScore is the live share of a facet's URLs, penalized when the
// wrapper does not link the facet.
func (s *Scorer) coverageScore(rec types.FacetRecord) float64 {
	total := rec.URLs200 + rec.URLs404
	if total == 0 {
		return 0
	}
	coverage := 100 * float64(rec.URLs200) / float64(total)
	if !rec.InWrapper {
		coverage *= s.thresholds.WrapperPenalty
	}
	return coverage
}

func normalizeWeights(w config.Weights) (config.Weights, error) {
	for _, item := range []struct {
		name  string
		value float64
	}{
		{types.ComponentDemand, w.Demand},
		{types.ComponentCoverage, w.Coverage},
		{types.ComponentPerformance, w.Performance},
		{types.ComponentOpportunity, w.Opportunity},
	} {
		if math.IsNaN(item.value) || math.IsInf(item.value, 0) {
			return config.Weights{}, &ConfigError{Field: "weights." + item.name, Reason: "must be a finite number"}
		}
		if item.value < 0 {
			return config.Weights{}, &ConfigError{Field: "weights." + item.name, Reason: "must not be negative"}
		}
	}

	sum := w.Sum()
	if sum <= 0 {
		return config.Weights{}, &ConfigError{Field: "weights", Reason: "must sum to a positive total"}
	}
	return config.Weights{
		Demand:      w.Demand / sum,
		Coverage:    w.Coverage / sum,
		Performance: w.Performance / sum,
		Opportunity: w.Opportunity / sum,
	}, nil
}

func checkThresholds(th config.Thresholds) error {
	for _, item := range []struct {
		name  string
		value float64
	}{
		{"link_threshold", th.Link},
		{"recreate_threshold", th.Recreate},
		{"maintain_threshold", th.Maintain},
	} {
		if math.IsNaN(item.value) || item.value < 0 || item.value > 100 {
			return &ConfigError{Field: "thresholds." + item.name, Reason: "must be in [0,100]"}
		}
	}
	if math.IsNaN(th.WrapperPenalty) || th.WrapperPenalty <= 0 || th.WrapperPenalty > 1 {
		return &ConfigError{Field: "thresholds.wrapper_penalty", Reason: "must be in (0,1]"}
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
