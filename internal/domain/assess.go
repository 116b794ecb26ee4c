package domain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"hash"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"time"
)

// ParseSiteRequest deserializes a RawEvent's value into a SiteRequest. Hazard
// keys are normalized and two keys naming the same hazard are rejected;
// unknown hazards are kept so the assessment can report them as failed.
func ParseSiteRequest(raw RawEvent) (SiteRequest, error) {
	var req SiteRequest
	if err := json.Unmarshal(raw.Value, &req); err != nil {
		return SiteRequest{}, fmt.Errorf("parse site request: %w", err)
	}
	if req.SiteID == "" {
		return SiteRequest{}, errors.New("parse site request: site_id is required")
	}

	hazards := make(map[RiskType]HazardInput, len(req.Hazards))
	seen := make(map[RiskType]RiskType, len(req.Hazards))
	for _, k := range slices.Sorted(maps.Keys(req.Hazards)) {
		rt, err := ParseRiskType(string(k))
		if err != nil {
			rt = k
		}
		if prev, dup := seen[rt]; dup {
			return SiteRequest{}, fmt.Errorf("parse site request: hazards %q and %q both name %s", prev, k, rt)
		}
		seen[rt] = k
		hazards[rt] = req.Hazards[k]
	}
	req.Hazards = hazards
	return req, nil
}

// SerializeAssessment marshals a SiteAssessment into an OutputEvent keyed by
// site ID. The assessment ID travels in the assessment_id header.
func SerializeAssessment(a SiteAssessment) (OutputEvent, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize site assessment: %w", err)
	}
	return OutputEvent{
		Key:   []byte(a.SiteID),
		Value: data,
		Headers: map[string]string{
			"assessment_id": a.ID,
			"site_id":       a.SiteID,
			"risk_rating":   string(a.Integrated.RiskRating),
			"assessed_at":   a.AssessedAt.Format(time.RFC3339),
		},
	}, nil
}

// Assessor runs the full assessment of one site: H·E·V scoring and AAL for
// each hazard on the request, then integration of the successful hazards.
// It only reads its configuration and is safe for concurrent use.
type Assessor struct {
	registry             *Registry
	integrator           *Integrator
	defaultInsuranceRate float64
	logger               *slog.Logger
}

// NewAssessor creates an Assessor. defaultInsuranceRate applies to requests
// without an insurance rate.
func NewAssessor(reg *Registry, integrator *Integrator, defaultInsuranceRate float64, logger *slog.Logger) *Assessor {
	return &Assessor{
		registry:             reg,
		integrator:           integrator,
		defaultInsuranceRate: clampUnit(defaultInsuranceRate),
		logger:               logger,
	}
}

// Assess computes the site assessment. A hazard that fails is reported with
// status "failed" and left out of integration; it never aborts its siblings.
func (a *Assessor) Assess(ctx context.Context, req SiteRequest) SiteAssessment {
	insurance := a.defaultInsuranceRate
	if req.InsuranceRate != nil {
		insurance = clampUnit(*req.InsuranceRate)
	}

	order := a.requestOrder(req.Hazards)
	hazards := make([]HazardAssessment, 0, len(order))
	scores := make(map[RiskType]HazardRiskScore, len(order))
	for _, rt := range order {
		ha := a.assessHazard(ctx, req, rt, insurance)
		hazards = append(hazards, ha)
		if ha.Status == StatusCompleted {
			scores[rt] = ha.Score
		}
	}

	return SiteAssessment{
		ID:                    generateID(req, insurance),
		SiteID:                req.SiteID,
		Name:                  req.Name,
		Geo:                   req.Geo,
		Hazards:               hazards,
		Integrated:            a.integrator.Integrate(scores),
		ScenarioProbabilities: clampProbabilities(req.ScenarioProbabilities),
		AssessedAt:            clock.Now().UTC(),
	}
}

// requestOrder lists the request's hazards in registry order, then unknown
// hazards by name.
func (a *Assessor) requestOrder(hazards map[RiskType]HazardInput) []RiskType {
	order := make([]RiskType, 0, len(hazards))
	for _, rt := range a.registry.RiskTypes() {
		if _, ok := hazards[rt]; ok {
			order = append(order, rt)
		}
	}
	var unknown []RiskType
	for rt := range hazards {
		if _, ok := a.registry.Profile(rt); !ok {
			unknown = append(unknown, rt)
		}
	}
	slices.Sort(unknown)
	return append(order, unknown...)
}

func (a *Assessor) assessHazard(ctx context.Context, req SiteRequest, rt RiskType, insurance float64) (ha HazardAssessment) {
	defer func() {
		if r := recover(); r != nil {
			ha = a.failed(req, rt, ha, fmt.Errorf("hazard computation panicked: %v", r))
		}
	}()

	ha = HazardAssessment{RiskType: rt}
	profile, ok := a.registry.Profile(rt)
	if !ok {
		return a.failed(req, rt, ha, fmt.Errorf("%w: %q", ErrUnknownRiskType, rt))
	}
	in := req.Hazards[rt]

	comps, err := profile.Scorer.Score(ctx, req, in)
	if err != nil {
		return a.failed(req, rt, ha, fmt.Errorf("score components: %w", err))
	}
	ha.Score = NewHazardRiskScore(rt, comps)

	vulnScore := ha.Score.Vulnerability * 100
	if in.VulnerabilityScore != nil {
		vulnScore = *in.VulnerabilityScore
	}

	aal, err := ComputeAAL(AALInput{
		RiskType:           rt,
		BaseAAL:            a.baseAAL(req, profile, in),
		VulnerabilityScore: vulnScore,
		Band:               profile.Band,
		InsuranceRate:      insurance,
	})
	ha.AAL = aal
	if err != nil {
		return a.failed(req, rt, ha, err)
	}

	ha.Status = StatusCompleted
	return ha
}

// baseAAL prefers the upstream value, then the hazard's bin table over the
// intensity series, then zero.
func (a *Assessor) baseAAL(req SiteRequest, p HazardProfile, in HazardInput) float64 {
	if in.BaseAAL != nil {
		return *in.BaseAAL
	}
	if p.Bins == nil {
		a.logger.Debug("no base AAL or bin table, using 0",
			"site_id", req.SiteID,
			"risk_type", p.RiskType,
		)
		return 0
	}
	if len(in.IntensitySeries) == 0 {
		a.logger.Debug("empty intensity series, treating as zero intensity",
			"site_id", req.SiteID,
			"risk_type", p.RiskType,
		)
	}
	return p.Bins.BaseAAL(in.IntensitySeries)
}

func (a *Assessor) failed(req SiteRequest, rt RiskType, ha HazardAssessment, err error) HazardAssessment {
	a.logger.Warn("hazard assessment failed",
		"site_id", req.SiteID,
		"risk_type", rt,
		"error", err,
	)
	ha.RiskType = rt
	ha.Status = StatusFailed
	ha.Error = err.Error()
	return ha
}

func clampProbabilities(p map[string]float64) map[string]float64 {
	if len(p) == 0 {
		return nil
	}
	out := make(map[string]float64, len(p))
	for k, v := range p {
		out[k] = clampUnit(v)
	}
	return out
}

// generateID produces a deterministic ID from every request field that shows
// up in the assessment, plus the effective insurance rate, so equal IDs mean
// equal published results apart from the timestamp.
func generateID(req SiteRequest, insurance float64) string {
	h := sha256.New()
	writeField(h, req.SiteID)
	writeField(h, req.Name)
	writeField(h, formatFloat(req.Geo.Lat))
	writeField(h, formatFloat(req.Geo.Lon))
	writeField(h, "insurance="+formatFloat(insurance))
	for _, name := range slices.Sorted(maps.Keys(req.ScenarioProbabilities)) {
		writeField(h, "scenario="+name)
		writeField(h, formatFloat(clampUnit(req.ScenarioProbabilities[name])))
	}
	for _, rt := range slices.Sorted(maps.Keys(req.Hazards)) {
		in := req.Hazards[rt]
		writeField(h, "hazard="+string(rt))
		for _, p := range []*float64{in.Hazard, in.Exposure, in.Vulnerability, in.VulnerabilityScore, in.BaseAAL} {
			writeField(h, formatOptional(p))
		}
		writeField(h, strconv.Itoa(len(in.IntensitySeries)))
		for _, x := range in.IntensitySeries {
			writeField(h, formatFloat(x))
		}
		if len(in.Details) > 0 {
			// encoding/json sorts map keys.
			details, _ := json.Marshal(in.Details)
			writeField(h, string(details))
		}
	}
	return "site-" + hex.EncodeToString(h.Sum(nil)[:8])
}

func writeField(h hash.Hash, s string) {
	h.Write([]byte(s)) //nolint:errcheck // hash writes never fail
	h.Write([]byte{'|'})
}

func formatOptional(p *float64) string {
	if p == nil {
		return "-"
	}
	return formatFloat(*p)
}

func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}
