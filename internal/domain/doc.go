// Package domain implements the quantitative core of the climate physical-risk
// assessment: per-hazard H·E·V scoring, Average Annual Loss (AAL) scaling and
// multi-hazard integration into a single site rating.
//
// # Data Source
//
// Site requests arrive as JSON on the Kafka source topic. Upstream collectors
// have already reduced raw climate projections and building data into
// per-hazard sub-scores (hazard, exposure, vulnerability, each 0–1), a
// vulnerability score (0–100) and either a precomputed base AAL or a yearly
// intensity series for the hazard. Nothing in this package performs I/O.
//
// # Hazard Taxonomy
//
// Nine hazards are supported, listed here in canonical order (rankings break
// ties by this order):
//
//	extreme_heat, extreme_cold, drought, water_stress, wildfire,
//	river_flood, urban_flood, sea_level_rise, typhoon
//
// Each hazard is described by a [HazardProfile] record in a [Registry]:
// integration weight, vulnerability band, optional intensity [BinTable] and the
// [ComponentScorer] that yields its H/E/V sub-scores.
//
// # Vulnerability Scaling
//
// A vulnerability score is clamped to [0, 100] and mapped linearly onto the
// hazard's band:
//
//	F_vuln = s_min + (s_max - s_min) * clamp(score, 0, 100) / 100
//
// The default band is (0.9, 1.1). extreme_heat, urban_flood and water_stress
// use (0.7, 1.3).
//
// # AAL
//
//	final_aal = base_aal * F_vuln * (1 - insurance_rate)
//
// The percentage (final_aal * 100) is classified with half-open thresholds:
//
//	<1 Minimal | <5 Low | <10 Moderate | <20 High | ≥20 Critical
//
// # Integration
//
// Normalized scores (risk_score * 100) are combined by weighted average with a
// compound term for each physically coupled pair of hazards that are both
// elevated:
//
//	compound = min(100, sqrt(s1 * s2) * (1 + correlation))
//
// The integrated score is classified with the boundary in the higher tier:
//
//	≥80 CRITICAL | ≥60 HIGH | ≥40 MEDIUM | ≥20 LOW | else VERY_LOW
//
// # Clamping
//
// Every probability, scale factor and score is clamped to its domain where it
// crosses a function boundary. NaN clamps to the lower bound.
//
// # ID Generation
//
// Assessment IDs are deterministic SHA-256 hashes of the site, its scenario
// weights, its hazard inputs and the effective insurance rate, so replaying a
// request yields the same ID and any change to the published result yields a
// new one. See [generateID].
package domain
