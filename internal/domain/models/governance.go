package models

// GovernanceMode is the operating tier derived from the health score.
type GovernanceMode string

const (
	ModeFull    GovernanceMode = "FULL"
	ModeReduced GovernanceMode = "REDUCED"
	// ModeDefensive is declared for the four-tier scheme but the evaluator
	// never produces it.
	ModeDefensive GovernanceMode = "DEFENSIVE"
	ModeStop      GovernanceMode = "STOP"
)

// HealthReport is the evaluator output for one (uncertainty, drawdown) pair.
type HealthReport struct {
	HealthScore int            `json:"health"`
	Mode        GovernanceMode `json:"mode"`
}

// SystemMetrics are supplied from outside the engine; only Drawdown feeds
// the health formula.
type SystemMetrics struct {
	Drawdown          float64 `json:"drawdown" validate:"gte=0"`
	CorrelationStress float64 `json:"correlationStress"`
	Exposure          float64 `json:"exposure"`
}

// DefaultSystemMetrics is the static metrics reading of a fresh session.
func DefaultSystemMetrics() SystemMetrics {
	return SystemMetrics{Drawdown: 0.42, CorrelationStress: 0.08, Exposure: 12.5}
}
