package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScaleVulnerability(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		sMin  float64
		sMax  float64
		want  float64
	}{
		{"zero score hits s_min", 0, 0.9, 1.1, 0.9},
		{"full score hits s_max", 100, 0.9, 1.1, 1.1},
		{"midpoint", 50, 0.9, 1.1, 1.0},
		{"wide band quarter", 25, 0.7, 1.3, 0.85},
		{"negative clamps to zero", -10, 0.9, 1.1, 0.9},
		{"above range clamps to 100", 150, 0.9, 1.1, 1.1},
		{"NaN clamps to zero", math.NaN(), 0.7, 1.3, 0.7},
		{"degenerate band", 42, 1.0, 1.0, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScaleVulnerability(tt.score, tt.sMin, tt.sMax)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestScaleVulnerability_MonotonicWithinBand(t *testing.T) {
	bands := []VulnerabilityBand{DefaultVulnerabilityBand, wideVulnerabilityBand, {Min: 0, Max: 2}}
	for _, b := range bands {
		prev := math.Inf(-1)
		for score := 0.0; score <= 100; score += 0.5 {
			got := b.Scale(score)
			assert.GreaterOrEqual(t, got, prev, "band %+v score %g", b, score)
			assert.GreaterOrEqual(t, got, b.Min)
			assert.LessOrEqual(t, got, b.Max)
			prev = got
		}
	}
}

func TestScaleVulnerability_OutOfRangeMatchesClamp(t *testing.T) {
	b := DefaultVulnerabilityBand
	assert.Equal(t, b.Scale(0), b.Scale(-10))
	assert.Equal(t, b.Scale(0), b.Scale(-1e9))
	assert.Equal(t, b.Scale(100), b.Scale(150))
	assert.Equal(t, b.Scale(100), b.Scale(math.Inf(1)))
}

func TestVulnerabilityBand_Validate(t *testing.T) {
	require.NoError(t, DefaultVulnerabilityBand.Validate())
	require.NoError(t, VulnerabilityBand{Min: 1, Max: 1}.Validate())

	assert.ErrorContains(t, VulnerabilityBand{Min: 1.2, Max: 0.8}.Validate(), "exceeds")
	assert.ErrorContains(t, VulnerabilityBand{Min: -0.1, Max: 1}.Validate(), "s_min")
	assert.ErrorContains(t, VulnerabilityBand{Min: math.NaN(), Max: 1}.Validate(), "finite")
	assert.ErrorContains(t, VulnerabilityBand{Min: 0.9, Max: math.Inf(1)}.Validate(), "finite")
}
