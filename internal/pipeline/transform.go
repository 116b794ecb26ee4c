package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/climate-risk-etl/internal/config"
	"github.com/couchcryptid/climate-risk-etl/internal/domain"
)

// AssessmentTransformer implements Transformer by parsing a site request and
// running the domain assessor over it.
type AssessmentTransformer struct {
	assessor *domain.Assessor
}

// NewTransformer creates an AssessmentTransformer around assessor.
func NewTransformer(assessor *domain.Assessor) *AssessmentTransformer {
	return &AssessmentTransformer{assessor: assessor}
}

func (t *AssessmentTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.SiteAssessment, error) {
	req, err := domain.ParseSiteRequest(raw)
	if err != nil {
		return domain.SiteAssessment{}, err
	}
	return t.assessor.Assess(ctx, req), nil
}

// BuildAssessor wires the hazard registry, overrides and integration settings
// from cfg into an Assessor.
func BuildAssessor(cfg *config.Config, logger *slog.Logger) (*domain.Assessor, error) {
	reg, err := domain.DefaultRegistry().WithOverrides(cfg.HazardOverrides)
	if err != nil {
		return nil, fmt.Errorf("apply hazard overrides: %w", err)
	}

	correlate, err := domain.CorrelationByName(cfg.CorrelationPolicy)
	if err != nil {
		return nil, err
	}

	integrator := domain.NewIntegrator(reg,
		domain.WithCorrelation(correlate),
		domain.WithCompoundWeight(cfg.CompoundWeight),
		domain.WithTopN(cfg.TopRisks),
	)

	logger.Info("assessor configured",
		"hazards", len(reg.RiskTypes()),
		"overrides", len(cfg.HazardOverrides),
		"correlation_policy", cfg.CorrelationPolicy,
		"compound_weight", cfg.CompoundWeight,
		"top_risks", cfg.TopRisks,
	)
	return domain.NewAssessor(reg, integrator, cfg.DefaultInsuranceRate, logger), nil
}
