package pipeline_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/climate-risk-etl/internal/config"
	"github.com/couchcryptid/climate-risk-etl/internal/domain"
	"github.com/couchcryptid/climate-risk-etl/internal/pipeline"
)

func float(v float64) *float64 { return &v }

func TestBuildAssessor_AppliesConfig(t *testing.T) {
	cfg := &config.Config{
		DefaultInsuranceRate: 0.5,
		CompoundWeight:       0,
		TopRisks:             1,
		CorrelationPolicy:    domain.CorrelationNone,
		HazardOverrides: map[domain.RiskType]domain.ProfileOverride{
			domain.Typhoon: {SMin: float(1), SMax: float(1)},
		},
	}

	assessor, err := pipeline.BuildAssessor(cfg, discardLogger())
	require.NoError(t, err)

	got := assessor.Assess(context.Background(), domain.SiteRequest{
		SiteID: "plant-7",
		Hazards: map[domain.RiskType]domain.HazardInput{
			domain.Typhoon:    {Hazard: float(1), Exposure: float(1), Vulnerability: float(0.8), BaseAAL: float(0.1)},
			domain.RiverFlood: {Hazard: float(1), Exposure: float(1), Vulnerability: float(0.5), BaseAAL: float(0.1)},
		},
	})

	require.Len(t, got.Hazards, 2)
	typhoon := got.Hazards[1]
	assert.Equal(t, domain.Typhoon, typhoon.RiskType)
	// Flat band scale 1.0, insurance 0.5.
	assert.InDelta(t, 5.0, typhoon.AAL.FinalAALPercentage, 1e-9)

	assert.Len(t, got.Integrated.TopRisks, 1)
	key := domain.CoupledPair{A: domain.Typhoon, B: domain.RiverFlood}.Key()
	assert.Equal(t, 0.0, got.Integrated.CorrelationFactors[key])
	assert.Equal(t, domain.ClassifyRating(got.Integrated.IntegratedScore), got.Integrated.RiskRating)
}

func TestBuildAssessor_RejectsBadSettings(t *testing.T) {
	_, err := pipeline.BuildAssessor(&config.Config{CorrelationPolicy: "copula"}, discardLogger())
	assert.Error(t, err)

	_, err = pipeline.BuildAssessor(&config.Config{
		HazardOverrides: map[domain.RiskType]domain.ProfileOverride{"hailstorm": {}},
	}, discardLogger())
	assert.ErrorIs(t, err, domain.ErrUnknownRiskType)
}
