package domain

import (
	"context"
	"time"
)

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// Geo represents a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Lat float64 `json:"lat,omitempty"`
	Lon float64 `json:"lon,omitempty"`
}

// HazardInput carries one hazard's upstream results for a site. Every field is
// optional:
//   - Hazard, Exposure, Vulnerability default to 0.
//   - VulnerabilityScore defaults to Vulnerability * 100.
//   - BaseAAL defaults to the hazard's bin table applied to IntensitySeries,
//     or 0 when the hazard has no table.
type HazardInput struct {
	Hazard             *float64       `json:"hazard,omitempty"`
	Exposure           *float64       `json:"exposure,omitempty"`
	Vulnerability      *float64       `json:"vulnerability,omitempty"`
	VulnerabilityScore *float64       `json:"vulnerability_score,omitempty"`
	BaseAAL            *float64       `json:"base_aal,omitempty"`
	IntensitySeries    []float64      `json:"intensity_series,omitempty"`
	Details            map[string]any `json:"details,omitempty"`
}

// SiteRequest is the typed form of one site assessment request.
type SiteRequest struct {
	SiteID string `json:"site_id"`
	Name   string `json:"name,omitempty"`
	Geo    Geo    `json:"geo,omitempty"`
	// InsuranceRate falls back to the service default when absent.
	InsuranceRate *float64 `json:"insurance_rate,omitempty"`
	// ScenarioProbabilities weights SSP pathways, e.g. "SSP2-4.5": 0.4. Carried
	// through to the assessment; integration does not use them.
	ScenarioProbabilities map[string]float64       `json:"scenario_probabilities,omitempty"`
	Hazards               map[RiskType]HazardInput `json:"hazards"`
}

// HazardAssessment is the full per-hazard outcome of a run.
type HazardAssessment struct {
	RiskType RiskType        `json:"risk_type"`
	Score    HazardRiskScore `json:"score"`
	AAL      AALResult       `json:"aal"`
	Status   Status          `json:"status"`
	Error    string          `json:"error,omitempty"`
}

// SiteAssessment is the result published for one site request.
type SiteAssessment struct {
	ID                    string               `json:"id"`
	SiteID                string               `json:"site_id"`
	Name                  string               `json:"name,omitempty"`
	Geo                   Geo                  `json:"geo,omitempty"`
	Hazards               []HazardAssessment   `json:"hazards"`
	Integrated            IntegratedRiskResult `json:"integrated"`
	ScenarioProbabilities map[string]float64   `json:"scenario_probabilities,omitempty"`
	AssessedAt            time.Time            `json:"assessed_at"`
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
