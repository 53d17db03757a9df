package models

// Requests for the dashboard HTTP endpoints.

type BotRequest struct {
	ID string `param:"id" json:"id" validate:"required"`
}

type EvaluateRequest struct {
	Uncertainty string  `query:"uncertainty" json:"uncertainty" default:"LOW" validate:"oneof=LOW HIGH CRITICAL"`
	Drawdown    float64 `query:"drawdown" json:"drawdown" validate:"gte=0"`
}

type MetricsRequest struct {
	Drawdown          float64 `json:"drawdown" validate:"gte=0"`
	CorrelationStress float64 `json:"correlationStress" validate:"gte=0"`
	Exposure          float64 `json:"exposure" validate:"gte=0"`
}

type ViewRequest struct {
	View string `json:"view" default:"DASHBOARD" validate:"oneof=DASHBOARD BOTS INTELLIGENCE GOVERNANCE LABS"`
}

// ClockReading is the clock-cycle scanner output for the current instant.
type ClockReading struct {
	Time    string  `json:"time"`
	Session Session `json:"session"`
	Cycle   Cycle   `json:"cycle"`
}

func (r MetricsRequest) SystemMetrics() SystemMetrics {
	return SystemMetrics{Drawdown: r.Drawdown, CorrelationStress: r.CorrelationStress, Exposure: r.Exposure}
}
