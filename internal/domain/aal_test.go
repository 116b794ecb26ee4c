package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeAAL(t *testing.T) {
	tests := []struct {
		name      string
		in        AALInput
		wantScale float64
		wantPct   float64
		wantLevel RiskLevel
	}{
		{
			name:      "most vulnerable",
			in:        AALInput{RiskType: RiverFlood, BaseAAL: 0.10, VulnerabilityScore: 100, Band: DefaultVulnerabilityBand},
			wantScale: 1.1,
			wantPct:   11.0,
			wantLevel: RiskLevelCritical,
		},
		{
			name:      "least vulnerable",
			in:        AALInput{RiskType: RiverFlood, BaseAAL: 0.10, VulnerabilityScore: 0, Band: DefaultVulnerabilityBand},
			wantScale: 0.9,
			wantPct:   9.0,
			wantLevel: RiskLevelModerate,
		},
		{
			name:      "insurance halves the loss",
			in:        AALInput{RiskType: Typhoon, BaseAAL: 0.04, VulnerabilityScore: 50, Band: DefaultVulnerabilityBand, InsuranceRate: 0.5},
			wantScale: 1.0,
			wantPct:   2.0,
			wantLevel: RiskLevelLow,
		},
		{
			name:      "wide band",
			in:        AALInput{RiskType: UrbanFlood, BaseAAL: 0.2, VulnerabilityScore: 100, Band: wideVulnerabilityBand},
			wantScale: 1.3,
			wantPct:   26.0,
			wantLevel: RiskLevelCritical,
		},
		{
			name:      "zero base AAL",
			in:        AALInput{RiskType: Drought, BaseAAL: 0, VulnerabilityScore: 80, Band: DefaultVulnerabilityBand},
			wantScale: 1.06,
			wantPct:   0,
			wantLevel: RiskLevelMinimal,
		},
		{
			name:      "out of range score and insurance are clamped",
			in:        AALInput{RiskType: Wildfire, BaseAAL: 0.10, VulnerabilityScore: 250, Band: DefaultVulnerabilityBand, InsuranceRate: -1},
			wantScale: 1.1,
			wantPct:   11.0,
			wantLevel: RiskLevelCritical,
		},
		{
			name:      "full insurance",
			in:        AALInput{RiskType: Wildfire, BaseAAL: 0.10, VulnerabilityScore: 50, Band: DefaultVulnerabilityBand, InsuranceRate: 3},
			wantScale: 1.0,
			wantPct:   0,
			wantLevel: RiskLevelMinimal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeAAL(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.in.RiskType, got.RiskType)
			assert.InDelta(t, tt.wantScale, got.VulnerabilityScale, 1e-9)
			assert.InDelta(t, tt.wantPct, got.FinalAALPercentage, 1e-9)
			assert.Equal(t, tt.wantLevel, got.RiskLevel)
			assert.Equal(t, StatusCompleted, got.Status)
			assert.Empty(t, got.Error)
		})
	}
}

func TestComputeAAL_RecordsClampedInputs(t *testing.T) {
	got, err := ComputeAAL(AALInput{BaseAAL: 0.0123456789, VulnerabilityScore: -20, Band: DefaultVulnerabilityBand, InsuranceRate: 1.5})
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.VulnerabilityScore)
	assert.Equal(t, 1.0, got.InsuranceRate)
	assert.Equal(t, 0.012346, got.BaseAAL)
}

func TestComputeAAL_Rounding(t *testing.T) {
	got, err := ComputeAAL(AALInput{BaseAAL: 0.0333333333, VulnerabilityScore: 33.333333, Band: DefaultVulnerabilityBand})
	require.NoError(t, err)

	assert.Equal(t, 0.033333, got.BaseAAL)
	assert.Equal(t, 33.3333, got.VulnerabilityScore)
	assert.Equal(t, 0.9667, got.VulnerabilityScale)
	// 0.0333333333 * 0.9666666666 * 100
	assert.Equal(t, 3.2222, got.FinalAALPercentage)
}

func TestComputeAAL_InvalidBaseAAL(t *testing.T) {
	for _, base := range []float64{-0.01, math.NaN(), math.Inf(1), math.Inf(-1)} {
		got, err := ComputeAAL(AALInput{RiskType: Typhoon, BaseAAL: base, VulnerabilityScore: 40, Band: DefaultVulnerabilityBand})
		require.ErrorIs(t, err, ErrInvalidBaseAAL)
		assert.Equal(t, StatusFailed, got.Status)
		assert.NotEmpty(t, got.Error)
		assert.Equal(t, Typhoon, got.RiskType)
		assert.Empty(t, got.RiskLevel)
		assert.Equal(t, 0.0, got.FinalAALPercentage)
	}
}

func TestComputeAAL_OverflowingBaseAAL(t *testing.T) {
	got, err := ComputeAAL(AALInput{RiskType: Typhoon, BaseAAL: 1e303, VulnerabilityScore: 50, Band: DefaultVulnerabilityBand})
	require.ErrorIs(t, err, ErrInvalidBaseAAL)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Contains(t, got.Error, "overflows")
	assert.Empty(t, got.RiskLevel)
	assert.Equal(t, 0.0, got.FinalAALPercentage)
	assert.Equal(t, 0.0, got.BaseAAL)
}

func TestComputeAAL_LargeFiniteBaseAAL(t *testing.T) {
	got, err := ComputeAAL(AALInput{RiskType: Typhoon, BaseAAL: 1e300, VulnerabilityScore: 50, Band: DefaultVulnerabilityBand})
	require.NoError(t, err)
	assert.False(t, math.IsInf(got.FinalAALPercentage, 0))
	assert.InDelta(t, 1e302, got.FinalAALPercentage, 1e288)
	assert.Equal(t, RiskLevelCritical, got.RiskLevel)
}

func TestRound_LeavesHugeValuesAlone(t *testing.T) {
	assert.Equal(t, 1e300, round(1e300, scorePlaces))
	assert.Equal(t, 1.2346, round(1.23456, scorePlaces))
	assert.True(t, math.IsNaN(round(math.NaN(), scorePlaces)))
}

func TestComputeAAL_Idempotent(t *testing.T) {
	in := AALInput{RiskType: SeaLevelRise, BaseAAL: 0.0731, VulnerabilityScore: 61.7, Band: DefaultVulnerabilityBand, InsuranceRate: 0.15}
	first, err := ComputeAAL(in)
	require.NoError(t, err)
	second, err := ComputeAAL(in)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestClassifyAAL_Boundaries(t *testing.T) {
	tests := []struct {
		pct  float64
		want RiskLevel
	}{
		{0, RiskLevelMinimal},
		{0.9999, RiskLevelMinimal},
		{1.0, RiskLevelLow},
		{4.9999, RiskLevelLow},
		{5.0, RiskLevelModerate},
		{9.9999, RiskLevelModerate},
		{10.0, RiskLevelHigh},
		{19.9999, RiskLevelHigh},
		{20.0, RiskLevelCritical},
		{150, RiskLevelCritical},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyAAL(tt.pct), "pct %g", tt.pct)
	}
}
