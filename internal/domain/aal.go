package domain

import (
	"fmt"
	"math"
)

// RiskLevel is the loss tier of a final AAL percentage.
type RiskLevel string

const (
	RiskLevelMinimal  RiskLevel = "Minimal"
	RiskLevelLow      RiskLevel = "Low"
	RiskLevelModerate RiskLevel = "Moderate"
	RiskLevelHigh     RiskLevel = "High"
	RiskLevelCritical RiskLevel = "Critical"
)

// Status records whether a per-hazard computation produced a usable result.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// AALInput holds the inputs of one hazard's AAL calculation.
type AALInput struct {
	RiskType RiskType
	// BaseAAL is the pre-aggregated expected annual damage fraction, typically
	// hazard probability times bin damage rate summed over bins.
	BaseAAL float64
	// VulnerabilityScore is nominally 0–100; values outside are clamped.
	VulnerabilityScore float64
	Band               VulnerabilityBand
	// InsuranceRate is the share of loss transferred to insurers, clamped to [0, 1].
	InsuranceRate float64
}

// AALResult is the outcome of one hazard's AAL calculation.
type AALResult struct {
	RiskType           RiskType  `json:"risk_type"`
	VulnerabilityScore float64   `json:"vulnerability_score"`
	VulnerabilityScale float64   `json:"vulnerability_scale"`
	BaseAAL            float64   `json:"base_aal"`
	InsuranceRate      float64   `json:"insurance_rate"`
	FinalAALPercentage float64   `json:"final_aal_percentage"`
	RiskLevel          RiskLevel `json:"risk_level,omitempty"`
	Status             Status    `json:"status"`
	Error              string    `json:"error,omitempty"`
}

// ComputeAAL scales the base AAL by the vulnerability factor and the insured
// share, then classifies the resulting percentage:
//
//	final_aal_percentage = base_aal * F_vuln * (1 - insurance_rate) * 100
//
// Score fields are rounded to 4 decimal places and base_aal to 6. A negative,
// NaN or infinite base AAL, or one large enough that the loss overflows,
// yields ErrInvalidBaseAAL together with a failed result so callers can keep
// it as data.
func ComputeAAL(in AALInput) (AALResult, error) {
	score := clamp(in.VulnerabilityScore, 0, 100)
	insurance := clampUnit(in.InsuranceRate)
	scale := in.Band.Scale(score)

	res := AALResult{
		RiskType:           in.RiskType,
		VulnerabilityScore: round(score, scorePlaces),
		VulnerabilityScale: round(scale, scorePlaces),
		InsuranceRate:      round(insurance, scorePlaces),
	}

	if math.IsNaN(in.BaseAAL) || math.IsInf(in.BaseAAL, 0) || in.BaseAAL < 0 {
		return failedAAL(res, fmt.Errorf("%w: %g", ErrInvalidBaseAAL, in.BaseAAL))
	}

	finalAAL := in.BaseAAL * scale * (1 - insurance)
	pct := round(finalAAL*100, scorePlaces)
	if !isFinite(pct) {
		return failedAAL(res, fmt.Errorf("%w: %g overflows the loss percentage", ErrInvalidBaseAAL, in.BaseAAL))
	}

	res.BaseAAL = round(in.BaseAAL, baseAALPlaces)
	res.FinalAALPercentage = pct
	res.RiskLevel = ClassifyAAL(pct)
	res.Status = StatusCompleted
	return res, nil
}

func failedAAL(res AALResult, err error) (AALResult, error) {
	res.Status = StatusFailed
	res.Error = err.Error()
	return res, err
}

// ClassifyAAL maps a final AAL percentage to a risk level. Thresholds are
// half-open, so a boundary value belongs to the higher tier:
// <1 Minimal, <5 Low, <10 Moderate, <20 High, else Critical.
func ClassifyAAL(pct float64) RiskLevel {
	switch {
	case pct < 1.0:
		return RiskLevelMinimal
	case pct < 5.0:
		return RiskLevelLow
	case pct < 10.0:
		return RiskLevelModerate
	case pct < 20.0:
		return RiskLevelHigh
	default:
		return RiskLevelCritical
	}
}
