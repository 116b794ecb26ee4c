package domain

import (
	"fmt"
	"math"
)

// VulnerabilityBand is the [Min, Max] range of the multiplicative factor a
// vulnerability score is mapped onto.
type VulnerabilityBand struct {
	Min float64 `json:"s_min" yaml:"s_min"`
	Max float64 `json:"s_max" yaml:"s_max"`
}

var (
	// DefaultVulnerabilityBand applies to hazards without an override.
	DefaultVulnerabilityBand = VulnerabilityBand{Min: 0.9, Max: 1.1}

	wideVulnerabilityBand = VulnerabilityBand{Min: 0.7, Max: 1.3}
)

// ScaleVulnerability maps a 0–100 vulnerability score onto [sMin, sMax] by
// linear interpolation. Scores outside [0, 100] are clamped, never rejected.
func ScaleVulnerability(score, sMin, sMax float64) float64 {
	v := clamp(score, 0, 100) / 100
	f := sMin + (sMax-sMin)*v
	return clamp(f, math.Min(sMin, sMax), math.Max(sMin, sMax))
}

// Scale applies ScaleVulnerability with this band.
func (b VulnerabilityBand) Scale(score float64) float64 {
	return ScaleVulnerability(score, b.Min, b.Max)
}

// Validate reports whether the band is finite, non-negative and ordered.
func (b VulnerabilityBand) Validate() error {
	if !isFinite(b.Min) || !isFinite(b.Max) {
		return fmt.Errorf("vulnerability band must be finite, got (%g, %g)", b.Min, b.Max)
	}
	if b.Min < 0 {
		return fmt.Errorf("s_min must be >= 0, got %g", b.Min)
	}
	if b.Min > b.Max {
		return fmt.Errorf("s_min %g exceeds s_max %g", b.Min, b.Max)
	}
	return nil
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
