package domain

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"
)

var (
	// ErrUnknownRiskType is returned for hazard names outside the taxonomy.
	ErrUnknownRiskType = errors.New("unknown risk type")
	// ErrInvalidBaseAAL is returned when a base AAL is negative, NaN or infinite.
	ErrInvalidBaseAAL = errors.New("invalid base AAL")
	// ErrInvalidBinTable is returned when intensity bins do not tile [0, +Inf).
	ErrInvalidBinTable = errors.New("invalid bin table")
)

// RiskType identifies one physical climate hazard.
type RiskType string

const (
	ExtremeHeat  RiskType = "extreme_heat"
	ExtremeCold  RiskType = "extreme_cold"
	Drought      RiskType = "drought"
	WaterStress  RiskType = "water_stress"
	Wildfire     RiskType = "wildfire"
	RiverFlood   RiskType = "river_flood"
	UrbanFlood   RiskType = "urban_flood"
	SeaLevelRise RiskType = "sea_level_rise"
	Typhoon      RiskType = "typhoon"
)

var riskTypes = []RiskType{
	ExtremeHeat,
	ExtremeCold,
	Drought,
	WaterStress,
	Wildfire,
	RiverFlood,
	UrbanFlood,
	SeaLevelRise,
	Typhoon,
}

// RiskTypes returns every supported hazard in canonical order.
func RiskTypes() []RiskType {
	return slices.Clone(riskTypes)
}

// ParseRiskType normalizes and validates a hazard name.
func ParseRiskType(s string) (RiskType, error) {
	rt := RiskType(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(riskTypes, rt) {
		return rt, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRiskType, s)
}

// Label returns a human-readable name, e.g. "river flood".
func (r RiskType) Label() string {
	return strings.ReplaceAll(string(r), "_", " ")
}

// HazardRiskScore is the H·E·V result for one hazard in one assessment run.
type HazardRiskScore struct {
	RiskType      RiskType       `json:"risk_type"`
	Hazard        float64        `json:"hazard"`
	Exposure      float64        `json:"exposure"`
	Vulnerability float64        `json:"vulnerability"`
	RiskScore     float64        `json:"risk_score"`
	Details       map[string]any `json:"details,omitempty"`
}

// NewHazardRiskScore clamps each component to [0, 1] and multiplies them.
func NewHazardRiskScore(rt RiskType, c Components) HazardRiskScore {
	h := clampUnit(c.Hazard)
	e := clampUnit(c.Exposure)
	v := clampUnit(c.Vulnerability)
	return HazardRiskScore{
		RiskType:      rt,
		Hazard:        round(h, scorePlaces),
		Exposure:      round(e, scorePlaces),
		Vulnerability: round(v, scorePlaces),
		RiskScore:     round(h*e*v, scorePlaces),
		Details:       maps.Clone(c.Details),
	}
}

const (
	scorePlaces   = 4
	baseAALPlaces = 6
)

// clamp bounds x to [lo, hi]. NaN maps to lo.
func clamp(x, lo, hi float64) float64 {
	if math.IsNaN(x) {
		return lo
	}
	return math.Min(math.Max(x, lo), hi)
}

func clampUnit(x float64) float64 {
	return clamp(x, 0, 1)
}

// round rounds x to places decimals. Values too large to carry a fraction are
// returned unchanged so x*p cannot overflow.
func round(x float64, places int) float64 {
	if math.Abs(x) > 1e15 || !isFinite(x) {
		return x
	}
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}
