package domain

import (
	"fmt"
	"math"
	"slices"
)

// IntensityBin is a half-open interval [Lo, Hi) over a hazard-intensity unit
// (depth in meters, stress index, days per year). A bin with Lo == Hi is only
// allowed first and matches exactly Lo, which lets a table reserve a bin for
// "no intensity at all".
type IntensityBin struct {
	Lo float64
	Hi float64
}

// BinTable classifies intensity values into ordered severity bins, each paired
// by position with a base damage rate in [0, 1]. A BinTable is immutable after
// construction and safe for concurrent use.
type BinTable struct {
	bins  []IntensityBin
	rates []float64
}

// NewBinTable validates the bins and their parallel damage rates. Bins must be
// contiguous, start at 0 and end at +Inf.
func NewBinTable(bins []IntensityBin, rates []float64) (*BinTable, error) {
	if len(bins) == 0 {
		return nil, fmt.Errorf("%w: no bins", ErrInvalidBinTable)
	}
	if len(bins) != len(rates) {
		return nil, fmt.Errorf("%w: %d bins but %d damage rates", ErrInvalidBinTable, len(bins), len(rates))
	}
	if bins[0].Lo != 0 {
		return nil, fmt.Errorf("%w: first bin must start at 0, got %g", ErrInvalidBinTable, bins[0].Lo)
	}
	last := len(bins) - 1
	if !math.IsInf(bins[last].Hi, 1) {
		return nil, fmt.Errorf("%w: last bin must be unbounded above, got %g", ErrInvalidBinTable, bins[last].Hi)
	}

	for i, b := range bins {
		if math.IsNaN(b.Lo) || math.IsNaN(b.Hi) || math.IsInf(b.Lo, 0) {
			return nil, fmt.Errorf("%w: bin %d has non-finite bounds [%g, %g)", ErrInvalidBinTable, i, b.Lo, b.Hi)
		}
		if i < last && math.IsInf(b.Hi, 0) {
			return nil, fmt.Errorf("%w: only the last bin may be unbounded, bin %d is not", ErrInvalidBinTable, i)
		}
		if b.Hi < b.Lo || (b.Hi == b.Lo && i != 0) {
			return nil, fmt.Errorf("%w: bin %d is empty or inverted [%g, %g)", ErrInvalidBinTable, i, b.Lo, b.Hi)
		}
		if i > 0 && b.Lo != bins[i-1].Hi {
			return nil, fmt.Errorf("%w: bin %d starts at %g but bin %d ends at %g", ErrInvalidBinTable, i, b.Lo, i-1, bins[i-1].Hi)
		}
		r := rates[i]
		if math.IsNaN(r) || r < 0 || r > 1 {
			return nil, fmt.Errorf("%w: damage rate %d must be in [0, 1], got %g", ErrInvalidBinTable, i, r)
		}
	}

	return &BinTable{
		bins:  slices.Clone(bins),
		rates: slices.Clone(rates),
	}, nil
}

func mustBinTable(bins []IntensityBin, rates []float64) *BinTable {
	t, err := NewBinTable(bins, rates)
	if err != nil {
		panic(err)
	}
	return t
}

// Len returns the number of bins.
func (t *BinTable) Len() int { return len(t.bins) }

// Bins returns a copy of the bin boundaries.
func (t *BinTable) Bins() []IntensityBin { return slices.Clone(t.bins) }

// Rates returns a copy of the damage rates.
func (t *BinTable) Rates() []float64 { return slices.Clone(t.rates) }

// Rate returns the base damage rate of bin i.
func (t *BinTable) Rate(i int) float64 { return t.rates[i] }

// Index returns the bin containing x. Negative and NaN values are treated as
// zero intensity.
func (t *BinTable) Index(x float64) int {
	if math.IsNaN(x) || x < 0 {
		x = 0
	}
	for i, b := range t.bins {
		if b.Lo == b.Hi {
			if x == b.Lo {
				return i
			}
			continue
		}
		if x >= b.Lo && x < b.Hi {
			return i
		}
	}
	// Only +Inf reaches here.
	return len(t.bins) - 1
}

// Classify returns the bin index for each value of the series, in order. An
// empty series yields an empty result.
func (t *BinTable) Classify(series []float64) []int {
	out := make([]int, len(series))
	for i, x := range series {
		out[i] = t.Index(x)
	}
	return out
}

// DamageRate returns the base damage rate of the bin containing x.
func (t *BinTable) DamageRate(x float64) float64 {
	return t.rates[t.Index(x)]
}

// Probabilities returns the empirical fraction of series values falling in
// each bin. An empty series is treated as a single zero-intensity observation.
func (t *BinTable) Probabilities(series []float64) []float64 {
	p := make([]float64, len(t.bins))
	if len(series) == 0 {
		p[t.Index(0)] = 1
		return p
	}
	for _, idx := range t.Classify(series) {
		p[idx]++
	}
	n := float64(len(series))
	for i := range p {
		p[i] /= n
	}
	return p
}

// BaseAAL aggregates bin probabilities with their damage rates:
// sum over bins of P(bin) * rate(bin).
func (t *BinTable) BaseAAL(series []float64) float64 {
	var aal float64
	for i, p := range t.Probabilities(series) {
		aal += p * t.rates[i]
	}
	return aal
}

var inf = math.Inf(1)

// FloodDepthBins classifies inundation depth in meters:
// exactly 0 | (0, 0.3) | [0.3, 1.0) | ≥1.0.
func FloodDepthBins() *BinTable {
	return mustBinTable(
		[]IntensityBin{{0, 0}, {0, 0.3}, {0.3, 1.0}, {1.0, inf}},
		[]float64{0, 0.05, 0.25, 0.50},
	)
}

// WaterStressBins classifies a 0–1 water-stress index:
// <0.2 | [0.2, 0.4) | [0.4, 0.8) | ≥0.8.
func WaterStressBins() *BinTable {
	return mustBinTable(
		[]IntensityBin{{0, 0.2}, {0.2, 0.4}, {0.4, 0.8}, {0.8, inf}},
		[]float64{0.01, 0.03, 0.07, 0.15},
	)
}

// HeatDaysBins classifies the yearly count of days above the heat threshold.
func HeatDaysBins() *BinTable {
	return mustBinTable(
		[]IntensityBin{{0, 10}, {10, 30}, {30, 60}, {60, inf}},
		[]float64{0, 0.01, 0.03, 0.06},
	)
}

// FireWeatherBins classifies a normalized 0–1 fire-weather index.
func FireWeatherBins() *BinTable {
	return mustBinTable(
		[]IntensityBin{{0, 0.2}, {0.2, 0.5}, {0.5, 0.8}, {0.8, inf}},
		[]float64{0, 0.02, 0.06, 0.12},
	)
}
