package domain

import (
	"fmt"
	"math"
	"strings"
)

// CorrelationFunc estimates the coupling strength of two hazards from their
// normalized 0–100 scores. Implementations must be monotonic non-decreasing in
// the joint severity and return a value in [0, 1]; the integrator clamps
// whatever they return.
type CorrelationFunc func(a, b float64) float64

// MinScoreCorrelation couples two hazards in proportion to the weaker of the
// two: min(a, b) / 100.
func MinScoreCorrelation(a, b float64) float64 {
	return clampUnit(math.Min(a, b) / 100)
}

// ZeroCorrelation disables amplification: compound terms reduce to the
// geometric mean of the pair.
func ZeroCorrelation(_, _ float64) float64 {
	return 0
}

// Correlation policy names accepted by CorrelationByName.
const (
	CorrelationMin  = "min"
	CorrelationNone = "none"
)

// CorrelationByName resolves a configured policy name.
func CorrelationByName(name string) (CorrelationFunc, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case CorrelationMin, "":
		return MinScoreCorrelation, nil
	case CorrelationNone:
		return ZeroCorrelation, nil
	default:
		return nil, fmt.Errorf("unknown correlation policy %q (want %q or %q)", name, CorrelationMin, CorrelationNone)
	}
}

// CoupledPair is two hazards considered physically coupled, such as drought
// and wildfire.
type CoupledPair struct {
	A RiskType
	B RiskType
}

// Key returns the map key used in integration results, e.g. "drought|wildfire".
func (p CoupledPair) Key() string {
	return string(p.A) + "|" + string(p.B)
}

// DefaultCoupledPairs returns the hazard pairs amplified during integration,
// in the order compound recommendations are emitted.
func DefaultCoupledPairs() []CoupledPair {
	return []CoupledPair{
		{Drought, Wildfire},
		{ExtremeHeat, Drought},
		{Typhoon, RiverFlood},
		{ExtremeHeat, Wildfire},
		{Typhoon, UrbanFlood},
		{Typhoon, SeaLevelRise},
		{Drought, WaterStress},
	}
}
