package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"OmniTrade/internal/domain/models"
)

// scripted replays a fixed sequence of draws.
type scripted struct {
	draws []float64
	i     int
}

func (s *scripted) Float64() float64 {
	v := s.draws[s.i%len(s.draws)]
	s.i++
	return v
}

func TestSampleBranches(t *testing.T) {
	prev := models.DefaultScannerState()
	prev.Phase = models.PhaseDistribution
	prev.Trend = models.TrendDown

	cases := []struct {
		name        string
		draws       []float64
		volatility  models.Volatility
		uncertainty models.Uncertainty
		consumed    int
	}{
		{"calm", []float64{0.1, 0.5, 0.5}, models.VolatilityLow, models.UncertaintyLow, 3},
		{"volatile", []float64{0.96, 0.5, 0.5}, models.VolatilityHigh, models.UncertaintyLow, 3},
		{"critical skips second draw", []float64{0.2, 0.99}, models.VolatilityLow, models.UncertaintyCritical, 2},
		{"high", []float64{0.2, 0.5, 0.95}, models.VolatilityLow, models.UncertaintyHigh, 3},
		{"threshold is exclusive", []float64{0.95, 0.98, 0.9}, models.VolatilityLow, models.UncertaintyLow, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := &scripted{draws: tc.draws}
			got := NewSampler(src).Sample(prev)
			assert.Equal(t, tc.volatility, got.Volatility)
			assert.Equal(t, tc.uncertainty, got.Uncertainty)
			assert.Equal(t, tc.consumed, src.i)
			assert.Equal(t, prev.Phase, got.Phase)
			assert.Equal(t, prev.Trend, got.Trend)
			assert.Equal(t, prev.Clock, got.Clock)
			assert.Equal(t, prev.Cycle, got.Cycle)
		})
	}
}

func TestSampleDistribution(t *testing.T) {
	const trials = 50000
	s := NewSampler(NewSeededSource(42))
	state := models.DefaultScannerState()

	counts := map[models.Uncertainty]int{}
	high := 0
	for i := 0; i < trials; i++ {
		state = s.Sample(state)
		counts[state.Uncertainty]++
		if state.Volatility == models.VolatilityHigh {
			high++
		}
	}

	assert.InDelta(t, 0.02, float64(counts[models.UncertaintyCritical])/trials, 0.005)
	assert.InDelta(t, 0.098, float64(counts[models.UncertaintyHigh])/trials, 0.01)
	assert.InDelta(t, 0.882, float64(counts[models.UncertaintyLow])/trials, 0.01)
	assert.InDelta(t, 0.05, float64(high)/trials, 0.005)
}

func TestRotationSortedAndBounded(t *testing.T) {
	s := NewSampler(NewSeededSource(7))
	rot := s.Rotation()
	require.Len(t, rot, len(rotationTickers))
	for i, r := range rot {
		assert.GreaterOrEqual(t, r.Strength, -5.0)
		assert.LessOrEqual(t, r.Strength, 10.0)
		assert.Contains(t, []string{"TOP_PHASE", "NEXT_PHASE"}, r.Status)
		if i > 0 {
			assert.GreaterOrEqual(t, rot[i-1].Strength, r.Strength)
		}
	}
}

func TestCorrelationClusters(t *testing.T) {
	c := NewSampler(&scripted{draws: []float64{0.123}}).Correlation()
	assert.Equal(t, []string{"SOL", "AVAX", "EGLD"}, c.ClusterA)
	assert.Equal(t, 0.12, c.StressIndex)
}
