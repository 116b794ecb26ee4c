package domain

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
)

// HazardProfile is the configuration record of one hazard. Hazards differ only
// in these values, not in code paths.
type HazardProfile struct {
	RiskType RiskType
	// Weight is the hazard's weight in integration.
	Weight float64
	Band   VulnerabilityBand
	// Bins derives a base AAL from an intensity series when a request does not
	// carry one. Nil for hazards without an intensity table.
	Bins   *BinTable
	Scorer ComponentScorer
}

// Registry maps each hazard to its profile. It is immutable; the With methods
// return modified copies.
type Registry struct {
	order    []RiskType
	profiles map[RiskType]HazardProfile
}

// NewRegistry validates and indexes the given profiles, keeping their order.
// A profile without a scorer gets PrecomputedScorer.
func NewRegistry(profiles ...HazardProfile) (*Registry, error) {
	r := &Registry{profiles: make(map[RiskType]HazardProfile, len(profiles))}
	for _, p := range profiles {
		if p.RiskType == "" {
			return nil, errors.New("hazard profile without risk type")
		}
		if _, dup := r.profiles[p.RiskType]; dup {
			return nil, fmt.Errorf("duplicate hazard profile %q", p.RiskType)
		}
		if math.IsNaN(p.Weight) || math.IsInf(p.Weight, 0) || p.Weight < 0 {
			return nil, fmt.Errorf("hazard %q: weight must be a finite value >= 0, got %g", p.RiskType, p.Weight)
		}
		if err := p.Band.Validate(); err != nil {
			return nil, fmt.Errorf("hazard %q: %w", p.RiskType, err)
		}
		if p.Scorer == nil {
			p.Scorer = PrecomputedScorer{}
		}
		r.order = append(r.order, p.RiskType)
		r.profiles[p.RiskType] = p
	}
	return r, nil
}

// DefaultRegistry returns the built-in profiles for all nine hazards.
// extreme_cold is a placeholder hazard and carries the lowest weight.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(
		HazardProfile{RiskType: ExtremeHeat, Weight: 1.2, Band: wideVulnerabilityBand, Bins: HeatDaysBins()},
		HazardProfile{RiskType: ExtremeCold, Weight: 0.8, Band: DefaultVulnerabilityBand},
		HazardProfile{RiskType: Drought, Weight: 1.0, Band: DefaultVulnerabilityBand, Bins: WaterStressBins()},
		HazardProfile{RiskType: WaterStress, Weight: 1.0, Band: wideVulnerabilityBand, Bins: WaterStressBins()},
		HazardProfile{RiskType: Wildfire, Weight: 1.0, Band: DefaultVulnerabilityBand, Bins: FireWeatherBins()},
		HazardProfile{RiskType: RiverFlood, Weight: 1.3, Band: DefaultVulnerabilityBand, Bins: FloodDepthBins()},
		HazardProfile{RiskType: UrbanFlood, Weight: 1.2, Band: wideVulnerabilityBand, Bins: FloodDepthBins()},
		HazardProfile{RiskType: SeaLevelRise, Weight: 1.1, Band: DefaultVulnerabilityBand, Bins: FloodDepthBins()},
		HazardProfile{RiskType: Typhoon, Weight: 1.3, Band: DefaultVulnerabilityBand},
	)
	if err != nil {
		panic(err)
	}
	return r
}

// Profile returns the profile for rt.
func (r *Registry) Profile(rt RiskType) (HazardProfile, bool) {
	p, ok := r.profiles[rt]
	return p, ok
}

// RiskTypes returns the registered hazards in registration order.
func (r *Registry) RiskTypes() []RiskType {
	return slices.Clone(r.order)
}

// Weights returns the integration weight of each registered hazard.
func (r *Registry) Weights() map[RiskType]float64 {
	w := make(map[RiskType]float64, len(r.profiles))
	for rt, p := range r.profiles {
		w[rt] = p.Weight
	}
	return w
}

// WithScorer returns a copy of the registry with rt scored by s.
func (r *Registry) WithScorer(rt RiskType, s ComponentScorer) (*Registry, error) {
	p, ok := r.profiles[rt]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRiskType, rt)
	}
	if s == nil {
		s = PrecomputedScorer{}
	}
	p.Scorer = s
	return r.with(p), nil
}

// BinSpec is the serialized form of one intensity bin and its damage rate. A
// nil Hi means unbounded above.
type BinSpec struct {
	Lo   float64  `yaml:"lo"`
	Hi   *float64 `yaml:"hi"`
	Rate float64  `yaml:"rate"`
}

// ProfileOverride replaces selected fields of a hazard profile. Nil fields
// keep the current value.
type ProfileOverride struct {
	Weight *float64  `yaml:"weight"`
	SMin   *float64  `yaml:"s_min"`
	SMax   *float64  `yaml:"s_max"`
	Bins   []BinSpec `yaml:"bins"`
}

// WithOverrides returns a copy of the registry with the overrides applied.
// Every override must name a registered hazard and leave a valid profile.
func (r *Registry) WithOverrides(overrides map[RiskType]ProfileOverride) (*Registry, error) {
	out := r
	keys := slices.Sorted(maps.Keys(overrides))
	for _, rt := range keys {
		o := overrides[rt]
		p, ok := out.profiles[rt]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownRiskType, rt)
		}
		if o.Weight != nil {
			if math.IsNaN(*o.Weight) || math.IsInf(*o.Weight, 0) || *o.Weight < 0 {
				return nil, fmt.Errorf("hazard %q: weight must be a finite value >= 0, got %g", rt, *o.Weight)
			}
			p.Weight = *o.Weight
		}
		if o.SMin != nil {
			p.Band.Min = *o.SMin
		}
		if o.SMax != nil {
			p.Band.Max = *o.SMax
		}
		if err := p.Band.Validate(); err != nil {
			return nil, fmt.Errorf("hazard %q: %w", rt, err)
		}
		if len(o.Bins) > 0 {
			table, err := binTableFromSpecs(o.Bins)
			if err != nil {
				return nil, fmt.Errorf("hazard %q: %w", rt, err)
			}
			p.Bins = table
		}
		out = out.with(p)
	}
	return out, nil
}

func binTableFromSpecs(specs []BinSpec) (*BinTable, error) {
	bins := make([]IntensityBin, len(specs))
	rates := make([]float64, len(specs))
	for i, s := range specs {
		hi := math.Inf(1)
		if s.Hi != nil {
			hi = *s.Hi
		}
		bins[i] = IntensityBin{Lo: s.Lo, Hi: hi}
		rates[i] = s.Rate
	}
	return NewBinTable(bins, rates)
}

func (r *Registry) with(p HazardProfile) *Registry {
	profiles := maps.Clone(r.profiles)
	profiles[p.RiskType] = p
	return &Registry{order: slices.Clone(r.order), profiles: profiles}
}
