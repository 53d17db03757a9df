package models

// View is the dashboard page the operator has selected.
type View string

const (
	ViewDashboard    View = "DASHBOARD"
	ViewBots         View = "BOTS"
	ViewIntelligence View = "INTELLIGENCE"
	ViewGovernance   View = "GOVERNANCE"
	ViewLabs         View = "LABS"
)

// Valid reports whether v names a known page.
func (v View) Valid() bool {
	switch v {
	case ViewDashboard, ViewBots, ViewIntelligence, ViewGovernance, ViewLabs:
		return true
	}
	return false
}

// Snapshot is an immutable copy of the session state handed to transports.
// The first six fields form the telemetry document.
type Snapshot struct {
	Scanners      ScannerState   `json:"scanners"`
	Bots          []BotConfig    `json:"bots"`
	Health        int            `json:"health"`
	Mode          GovernanceMode `json:"mode"`
	Metrics       SystemMetrics  `json:"metrics"`
	Logs          []ExecutionLog `json:"logs"`
	Advice        string         `json:"advice,omitempty"`
	AdviceLoading bool           `json:"adviceLoading"`
	Time          string         `json:"time,omitempty"`
	View          View           `json:"view,omitempty"`
	Version       uint64         `json:"version"`
}

// Telemetry is the document shape the feed client decodes.
type Telemetry struct {
	Scanners ScannerState   `json:"scanners"`
	Bots     []BotConfig    `json:"bots"`
	Health   int            `json:"health"`
	Mode     GovernanceMode `json:"mode"`
	Metrics  SystemMetrics  `json:"metrics"`
	Logs     []ExecutionLog `json:"logs"`
}

// Telemetry projects the snapshot onto the streamed document.
func (s *Snapshot) Telemetry() Telemetry {
	return Telemetry{
		Scanners: s.Scanners,
		Bots:     s.Bots,
		Health:   s.Health,
		Mode:     s.Mode,
		Metrics:  s.Metrics,
		Logs:     s.Logs,
	}
}
