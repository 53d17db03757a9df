package fleet

import (
	"OmniTrade/internal/domain/models"
	drepo "OmniTrade/internal/domain/repository"
)

// Bot ids the permission matrix and trigger rules refer to.
const (
	vwapID         = "1"
	breakoutID     = "2"
	pullbackID     = "3"
	rangeScalperID = "4"
	openAlphaID    = "6"
)

const (
	haltHealth      = 40
	vwapEntryChance = 0.05
)

// Signals simulates one round of trigger checks for the active fleet.
// Returned entries carry no id or timestamp; the caller stamps them.
type Signals struct {
	rnd drepo.RandomSource
}

func NewSignals(rnd drepo.RandomSource) *Signals {
	return &Signals{rnd: rnd}
}

// Check evaluates every active bot against the permission matrix and its
// trigger. prev is the reading before the tick that produced next.
func (s *Signals) Check(prev, next models.ScannerState, health int, bots []models.BotConfig) []models.ExecutionLog {
	for _, b := range bots {
		if b.IsGuardian && b.Active && health < haltHealth {
			return []models.ExecutionLog{{Bot: b.Name, Action: "HALT TRADING - HEALTH CRITICAL", Status: models.LogWarning}}
		}
	}

	var out []models.ExecutionLog
	for _, b := range bots {
		if !b.Active || b.IsGuardian || !Permitted(b.ID, prev, next) {
			continue
		}
		switch b.ID {
		case breakoutID:
			if next.Volatility == models.VolatilityHigh {
				out = append(out, models.ExecutionLog{Bot: b.Name, Action: "Breakout Confirmed", Status: models.LogSuccess})
			}
		case openAlphaID:
			if (next.Clock == models.SessionLondon || next.Clock == models.SessionNY) && next.Cycle == models.CycleEarly {
				out = append(out, models.ExecutionLog{Bot: b.Name, Action: "Open Range Break", Status: models.LogSuccess})
			}
		case vwapID:
			if next.Uncertainty == models.UncertaintyLow && s.rnd.Float64() < vwapEntryChance {
				out = append(out, models.ExecutionLog{Bot: b.Name, Action: "Mean Reversion Entry", Status: models.LogSuccess})
			}
		}
	}
	return out
}

// Permitted is the bot permission matrix. Bots without a rule are allowed.
func Permitted(botID string, prev, next models.ScannerState) bool {
	switch botID {
	case vwapID:
		return next.Trend == models.TrendNeutral && next.Volatility == models.VolatilityLow
	case breakoutID:
		// enters only when volatility expands out of a low reading
		return prev.Volatility == models.VolatilityLow
	case pullbackID:
		return next.Trend == models.TrendUp && next.Phase == models.PhaseExpansion
	case rangeScalperID:
		return next.Phase == models.PhaseAccumulation && next.Volatility == models.VolatilityLow
	}
	return true
}
