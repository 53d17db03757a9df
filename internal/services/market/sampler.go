package market

import (
	"math"
	"math/rand/v2"
	"sort"

	"OmniTrade/internal/domain/models"
	drepo "OmniTrade/internal/domain/repository"
)

const (
	highVolatilityThreshold = 0.95
	criticalThreshold       = 0.98
	highUncertaintyCut      = 0.9
	nextPhaseThreshold      = 0.8
)

var rotationTickers = []string{"SOL", "ETH", "AVAX", "LINK", "EGLD", "MATIC", "DOT"}

// Sampler perturbs the scanner reading on every tick.
type Sampler struct {
	rnd drepo.RandomSource
}

// NewSampler builds a sampler over rnd. A nil rnd uses the unseeded global
// generator.
func NewSampler(rnd drepo.RandomSource) *Sampler {
	if rnd == nil {
		rnd = GlobalSource{}
	}
	return &Sampler{rnd: rnd}
}

// Sample resamples volatility and uncertainty and carries every other field
// of prev over unchanged.
func (s *Sampler) Sample(prev models.ScannerState) models.ScannerState {
	next := prev.Clone()

	next.Volatility = models.VolatilityLow
	if s.rnd.Float64() > highVolatilityThreshold {
		next.Volatility = models.VolatilityHigh
	}

	// Nested draws: the HIGH branch only runs when CRITICAL missed.
	switch {
	case s.rnd.Float64() > criticalThreshold:
		next.Uncertainty = models.UncertaintyCritical
	case s.rnd.Float64() > highUncertaintyCut:
		next.Uncertainty = models.UncertaintyHigh
	default:
		next.Uncertainty = models.UncertaintyLow
	}
	return next
}

// Rotation reads the token rotation scanner, strongest first.
func (s *Sampler) Rotation() []models.TokenRotation {
	out := make([]models.TokenRotation, 0, len(rotationTickers))
	for _, t := range rotationTickers {
		status := "TOP_PHASE"
		strength := round2(-5 + s.rnd.Float64()*15)
		if s.rnd.Float64() > nextPhaseThreshold {
			status = "NEXT_PHASE"
		}
		out = append(out, models.TokenRotation{Ticker: t, Strength: strength, Status: status})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Strength > out[j].Strength })
	return out
}

// Correlation reads the correlation scanner.
func (s *Sampler) Correlation() *models.CorrelationData {
	return &models.CorrelationData{
		ClusterA:    []string{"SOL", "AVAX", "EGLD"},
		ClusterB:    []string{"ETH", "OP", "ARB"},
		StressIndex: round2(s.rnd.Float64()),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// GlobalSource draws from math/rand/v2's unseeded global generator.
type GlobalSource struct{}

func (GlobalSource) Float64() float64 { return rand.Float64() }

// SeededSource is a reproducible source for replays and tests.
type SeededSource struct {
	r *rand.Rand
}

func NewSeededSource(seed uint64) *SeededSource {
	return &SeededSource{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *SeededSource) Float64() float64 { return s.r.Float64() }
