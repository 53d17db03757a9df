package models

type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MED"
	RiskHigh   RiskLevel = "HIGH"
)

// BotConfig describes one fleet module. Guardian bots are the system-wide
// kill switch.
type BotConfig struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Trigger     string    `json:"trigger"`
	Description string    `json:"description"`
	Active      bool      `json:"active"`
	Risk        RiskLevel `json:"risk"`
	IsGuardian  bool      `json:"isGuardian,omitempty"`
}

type LogStatus string

const (
	LogSuccess LogStatus = "SUCCESS"
	LogWarning LogStatus = "WARNING"
	LogError   LogStatus = "ERROR"
)

// ExecutionLog is one line of the execution feed (newest first).
type ExecutionLog struct {
	ID        string    `json:"id"`
	Timestamp string    `json:"timestamp"`
	Bot       string    `json:"bot"`
	Action    string    `json:"action"`
	Status    LogStatus `json:"status"`
}

// SeedLogs is the execution feed a fresh session starts with.
func SeedLogs() []ExecutionLog {
	return []ExecutionLog{
		{ID: "1", Bot: "VWAP REVERSION", Action: "Entry Detected ETH/USDT", Status: LogSuccess, Timestamp: "16:02:11"},
		{ID: "2", Bot: "LIQUIDITY SWEEP", Action: "Order Filled BTC/USDT", Status: LogSuccess, Timestamp: "15:58:44"},
		{ID: "3", Bot: "MOMENTUM SCALPEL", Action: "Telemetry Check Pass", Status: LogSuccess, Timestamp: "15:55:00"},
	}
}
