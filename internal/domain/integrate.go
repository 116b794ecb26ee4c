package domain

import (
	"fmt"
	"math"
	"slices"
	"sort"
)

// RiskRating is the portfolio-level tier of an integrated score.
type RiskRating string

const (
	RatingVeryLow  RiskRating = "VERY_LOW"
	RatingLow      RiskRating = "LOW"
	RatingMedium   RiskRating = "MEDIUM"
	RatingHigh     RiskRating = "HIGH"
	RatingCritical RiskRating = "CRITICAL"
)

// ClassifyRating maps a 0–100 integrated score to a tier. Boundary values
// belong to the higher tier.
func ClassifyRating(score float64) RiskRating {
	switch {
	case score >= 80:
		return RatingCritical
	case score >= 60:
		return RatingHigh
	case score >= 40:
		return RatingMedium
	case score >= 20:
		return RatingLow
	default:
		return RatingVeryLow
	}
}

// RankedRisk is one entry of the top-risk ranking.
type RankedRisk struct {
	Rank     int      `json:"rank"`
	RiskType RiskType `json:"risk_type"`
	Score    float64  `json:"score"`
}

// IntegratedRiskResult combines every hazard of one assessment run.
type IntegratedRiskResult struct {
	IntegratedScore    float64              `json:"integrated_score"`
	RiskRating         RiskRating           `json:"risk_rating"`
	IndividualScores   map[RiskType]float64 `json:"individual_scores"`
	CompoundRisks      map[string]float64   `json:"compound_risks"`
	CorrelationFactors map[string]float64   `json:"correlation_factors"`
	TopRisks           []RankedRisk         `json:"top_risks"`
	Recommendations    []string             `json:"recommendations"`
}

const (
	// DefaultCompoundWeight is the weight of each active compound term.
	DefaultCompoundWeight = 0.15
	// DefaultTopRisks is the size of the top-risk ranking.
	DefaultTopRisks = 3

	dominantRiskThreshold = 70.0
	compoundRiskThreshold = 60.0
	unknownHazardWeight   = 1.0
)

// Integrator turns per-hazard risk scores into one rating. It holds only
// read-only configuration and is safe for concurrent use.
type Integrator struct {
	order          []RiskType
	weights        map[RiskType]float64
	pairs          []CoupledPair
	correlate      CorrelationFunc
	compoundWeight float64
	topN           int
}

// IntegratorOption customizes an Integrator.
type IntegratorOption func(*Integrator)

// WithCorrelation replaces the correlation policy.
func WithCorrelation(fn CorrelationFunc) IntegratorOption {
	return func(in *Integrator) {
		if fn != nil {
			in.correlate = fn
		}
	}
}

// WithCompoundWeight sets the weight of each compound term. Negative values
// are ignored.
func WithCompoundWeight(w float64) IntegratorOption {
	return func(in *Integrator) {
		if w >= 0 {
			in.compoundWeight = w
		}
	}
}

// WithTopN sets the ranking size. Values below 1 are ignored.
func WithTopN(n int) IntegratorOption {
	return func(in *Integrator) {
		if n >= 1 {
			in.topN = n
		}
	}
}

// WithCoupledPairs replaces the set of coupled hazard pairs.
func WithCoupledPairs(pairs []CoupledPair) IntegratorOption {
	return func(in *Integrator) {
		in.pairs = slices.Clone(pairs)
	}
}

// NewIntegrator builds an Integrator whose hazard order and weights come from
// the registry.
func NewIntegrator(reg *Registry, opts ...IntegratorOption) *Integrator {
	in := &Integrator{
		order:          reg.RiskTypes(),
		weights:        reg.Weights(),
		pairs:          DefaultCoupledPairs(),
		correlate:      MinScoreCorrelation,
		compoundWeight: DefaultCompoundWeight,
		topN:           DefaultTopRisks,
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Integrate runs normalize, correlate, compound, weighted integration, rating,
// ranking and recommendations in that order. Hazards absent from scores count
// as 0; it never fails.
func (in *Integrator) Integrate(scores map[RiskType]HazardRiskScore) IntegratedRiskResult {
	order := in.hazardOrder(scores)
	individual := in.normalize(order, scores)
	correlations, compounds := in.compound(individual)

	var weighted, totalWeight float64
	for _, rt := range order {
		w := in.weight(rt)
		weighted += individual[rt] * w
		totalWeight += w
	}
	for _, pair := range in.pairs {
		if c, ok := compounds[pair.Key()]; ok {
			weighted += c * in.compoundWeight
			totalWeight += in.compoundWeight
		}
	}

	var integrated float64
	if totalWeight > 0 {
		integrated = clamp(weighted/totalWeight, 0, 100)
	}
	integrated = round(integrated, scorePlaces)

	top := in.rank(order, individual)

	return IntegratedRiskResult{
		IntegratedScore:    integrated,
		RiskRating:         ClassifyRating(integrated),
		IndividualScores:   individual,
		CompoundRisks:      compounds,
		CorrelationFactors: correlations,
		TopRisks:           top,
		Recommendations:    in.recommend(top, compounds),
	}
}

// hazardOrder lists registered hazards first, then any unregistered keys in
// name order so results stay deterministic.
func (in *Integrator) hazardOrder(scores map[RiskType]HazardRiskScore) []RiskType {
	order := slices.Clone(in.order)
	var extra []RiskType
	for rt := range scores {
		if _, ok := in.weights[rt]; !ok {
			extra = append(extra, rt)
		}
	}
	slices.Sort(extra)
	return append(order, extra...)
}

func (in *Integrator) weight(rt RiskType) float64 {
	if w, ok := in.weights[rt]; ok {
		return w
	}
	return unknownHazardWeight
}

func (in *Integrator) normalize(order []RiskType, scores map[RiskType]HazardRiskScore) map[RiskType]float64 {
	individual := make(map[RiskType]float64, len(order))
	for _, rt := range order {
		s, ok := scores[rt]
		if !ok {
			individual[rt] = 0
			continue
		}
		individual[rt] = round(clampUnit(s.RiskScore)*100, scorePlaces)
	}
	return individual
}

func (in *Integrator) compound(individual map[RiskType]float64) (map[string]float64, map[string]float64) {
	correlations := make(map[string]float64, len(in.pairs))
	compounds := make(map[string]float64)
	for _, pair := range in.pairs {
		a, b := individual[pair.A], individual[pair.B]
		corr := clampUnit(in.correlate(a, b))
		correlations[pair.Key()] = round(corr, scorePlaces)
		if a > 0 && b > 0 {
			c := math.Min(100, math.Sqrt(a*b)*(1+corr))
			compounds[pair.Key()] = round(c, scorePlaces)
		}
	}
	return correlations, compounds
}

func (in *Integrator) rank(order []RiskType, individual map[RiskType]float64) []RankedRisk {
	candidates := make([]RiskType, 0, len(order))
	for _, rt := range order {
		if individual[rt] > 0 {
			candidates = append(candidates, rt)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return individual[candidates[i]] > individual[candidates[j]]
	})
	if len(candidates) > in.topN {
		candidates = candidates[:in.topN]
	}

	top := make([]RankedRisk, len(candidates))
	for i, rt := range candidates {
		top[i] = RankedRisk{Rank: i + 1, RiskType: rt, Score: individual[rt]}
	}
	return top
}

func (in *Integrator) recommend(top []RankedRisk, compounds map[string]float64) []string {
	recs := []string{}
	if len(top) > 0 && top[0].Score > dominantRiskThreshold {
		recs = append(recs, fmt.Sprintf(
			"Prioritise site-level adaptation for %s, the dominant hazard (score %.1f), and review insurance cover for this exposure.",
			top[0].RiskType.Label(), top[0].Score,
		))
	}
	for _, pair := range in.pairs {
		c, ok := compounds[pair.Key()]
		if !ok || c <= compoundRiskThreshold {
			continue
		}
		recs = append(recs, fmt.Sprintf(
			"Plan joint response measures for %s and %s, which are elevated together (compound score %.1f).",
			pair.A.Label(), pair.B.Label(), c,
		))
	}
	return recs
}
