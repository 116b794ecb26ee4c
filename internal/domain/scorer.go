package domain

import "context"

// Components holds the hazard, exposure and vulnerability sub-scores of one
// hazard, each nominally in [0, 1].
type Components struct {
	Hazard        float64
	Exposure      float64
	Vulnerability float64
	Details       map[string]any
}

// ComponentScorer produces H/E/V sub-scores for one hazard of a site. Hazard
// specific scoring models plug in here without touching AAL or integration.
type ComponentScorer interface {
	Score(ctx context.Context, site SiteRequest, in HazardInput) (Components, error)
}

// ComponentScorerFunc adapts a function to ComponentScorer.
type ComponentScorerFunc func(ctx context.Context, site SiteRequest, in HazardInput) (Components, error)

func (f ComponentScorerFunc) Score(ctx context.Context, site SiteRequest, in HazardInput) (Components, error) {
	return f(ctx, site, in)
}

// PrecomputedScorer reads sub-scores already computed upstream and carried on
// the request. Missing sub-scores are 0.
type PrecomputedScorer struct{}

func (PrecomputedScorer) Score(_ context.Context, _ SiteRequest, in HazardInput) (Components, error) {
	return Components{
		Hazard:        valueOr(in.Hazard, 0),
		Exposure:      valueOr(in.Exposure, 0),
		Vulnerability: valueOr(in.Vulnerability, 0),
		Details:       in.Details,
	}, nil
}

func valueOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}
