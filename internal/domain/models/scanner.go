package models

// Volatility is the market-state scanner's volatility bucket.
type Volatility string

const (
	VolatilityLow  Volatility = "LOW"
	VolatilityHigh Volatility = "HIGH"
)

type Trend string

const (
	TrendUp      Trend = "UP"
	TrendDown    Trend = "DOWN"
	TrendNeutral Trend = "NEUTRAL"
)

type Phase string

const (
	PhaseAccumulation Phase = "ACCUMULATION"
	PhaseExpansion    Phase = "EXPANSION"
	PhaseDistribution Phase = "DISTRIBUTION"
	PhaseReset        Phase = "RESET"
)

// Session is the trading session the clock-cycle scanner reports.
type Session string

const (
	SessionAsia   Session = "ASIA"
	SessionLondon Session = "LONDON"
	SessionNY     Session = "NY"
)

type Cycle string

const (
	CycleEarly Cycle = "EARLY"
	CycleMid   Cycle = "MID"
	CycleLate  Cycle = "LATE"
)

type Uncertainty string

const (
	UncertaintyLow      Uncertainty = "LOW"
	UncertaintyHigh     Uncertainty = "HIGH"
	UncertaintyCritical Uncertainty = "CRITICAL"
)

// Valid reports whether u is one of the three uncertainty levels.
func (u Uncertainty) Valid() bool {
	switch u {
	case UncertaintyLow, UncertaintyHigh, UncertaintyCritical:
		return true
	}
	return false
}

// TokenRotation is one row of the relative-strength rotation scanner.
type TokenRotation struct {
	Ticker   string  `json:"ticker"`
	Strength float64 `json:"strength"`
	Status   string  `json:"status"`
}

// CorrelationData is the correlation scanner reading.
type CorrelationData struct {
	ClusterA    []string `json:"cluster_a"`
	ClusterB    []string `json:"cluster_b"`
	StressIndex float64  `json:"stress_index"`
}

// ScannerState is the combined scanner reading shown on the dashboard.
// Rotation and Correlation only travel with the telemetry stream.
type ScannerState struct {
	Volatility  Volatility       `json:"volatility"`
	Trend       Trend            `json:"trend"`
	Phase       Phase            `json:"phase"`
	Clock       Session          `json:"clock"`
	Cycle       Cycle            `json:"cycle"`
	Uncertainty Uncertainty      `json:"uncertainty"`
	Rotation    []TokenRotation  `json:"rotation,omitempty"`
	Correlation *CorrelationData `json:"correlation,omitempty"`
}

// DefaultScannerState is the reading a fresh session starts from.
func DefaultScannerState() ScannerState {
	return ScannerState{
		Volatility:  VolatilityLow,
		Trend:       TrendUp,
		Phase:       PhaseExpansion,
		Clock:       SessionLondon,
		Cycle:       CycleMid,
		Uncertainty: UncertaintyLow,
	}
}

// Clone returns a deep copy.
func (s ScannerState) Clone() ScannerState {
	out := s
	if s.Rotation != nil {
		out.Rotation = append([]TokenRotation(nil), s.Rotation...)
	}
	if s.Correlation != nil {
		c := *s.Correlation
		c.ClusterA = append([]string(nil), s.Correlation.ClusterA...)
		c.ClusterB = append([]string(nil), s.Correlation.ClusterB...)
		out.Correlation = &c
	}
	return out
}
