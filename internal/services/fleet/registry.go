// Package fleet holds the in-memory bot registry and the simulated trigger
// checks that feed the execution log.
package fleet

import (
	"errors"
	"sync"

	"OmniTrade/internal/domain/models"
)

var (
	ErrBotNotFound = errors.New("fleet: bot not found")
	ErrBotInactive = errors.New("fleet: bot inactive")
)

// GuardianID is the id of the seeded no-trade guardian.
const GuardianID = "10"

// SeedBots is the fleet a fresh session starts with.
func SeedBots() []models.BotConfig {
	return []models.BotConfig{
		{ID: "1", Name: "VWAP Mean Reversion", Trigger: "Price ±2σ from VWAP", Description: "Institutional mean reversion for high-liquidity pairings.", Active: true, Risk: models.RiskLow},
		{ID: "2", Name: "Volatility Expansion", Trigger: "BB Squeeze + Vol Expansion", Description: "Breakout capture for regime shifts in major assets.", Active: true, Risk: models.RiskMedium},
		{ID: "3", Name: "Trend Liquidity", Trigger: "0.5 - 0.618 Fib Retrace", Description: "Captures quality pullbacks in established trend cycles.", Active: false, Risk: models.RiskLow},
		{ID: "4", Name: "Horizontal Scalper", Trigger: "Session Range Extremes", Description: "Micro-range execution within session boundaries.", Active: false, Risk: models.RiskMedium},
		{ID: "5", Name: "Liquidity Sweep", Trigger: "Equal H/L + RSI Div", Description: "Fades false liquidity grabs at structural extremes.", Active: true, Risk: models.RiskMedium},
		{ID: "6", Name: "Session Open Alpha", Trigger: "Volatility Spike at Open", Description: "Regime-based momentum at major market session starts.", Active: true, Risk: models.RiskHigh},
		{ID: "7", Name: "Funding Arbitrage", Trigger: "Extreme Rates + Price Stall", Description: "Counter-trend capture of over-leveraged positioning.", Active: false, Risk: models.RiskHigh},
		{ID: "8", Name: "Cross-Asset Divergence", Trigger: "ETH/BTC Decoupling", Description: "Inter-market divergence strategy for major alts.", Active: false, Risk: models.RiskLow},
		{ID: "9", Name: "Momentum Scalpel", Trigger: "5m / 15m Alignment", Description: "Low timeframe momentum tracking for agile exposure.", Active: true, Risk: models.RiskHigh},
		{ID: GuardianID, Name: "NO-TRADE GUARDIAN", Trigger: "GOVERNANCE LOCK", Description: "Total system circuit breaker. Overrides all execution logic.", Active: false, IsGuardian: true, Risk: models.RiskHigh},
	}
}

// Registry is the session's bot list. Bots are never added or removed after
// construction; only Active changes.
type Registry struct {
	mu   sync.RWMutex
	bots []models.BotConfig
}

func NewRegistry(seed []models.BotConfig) *Registry {
	return &Registry{bots: append([]models.BotConfig(nil), seed...)}
}

// Toggle flips Active for id. Unknown ids are ignored; the returned bool
// says whether a bot matched.
func (r *Registry) Toggle(id string) (models.BotConfig, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.bots {
		if r.bots[i].ID == id {
			r.bots[i].Active = !r.bots[i].Active
			return r.bots[i], true
		}
	}
	return models.BotConfig{}, false
}

func (r *Registry) Get(id string) (models.BotConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.bots {
		if b.ID == id {
			return b, true
		}
	}
	return models.BotConfig{}, false
}

// List returns a copy of the fleet in seed order.
func (r *Registry) List() []models.BotConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.BotConfig(nil), r.bots...)
}

// GuardianActive reports whether any guardian bot is switched on.
func (r *Registry) GuardianActive() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.bots {
		if b.IsGuardian && b.Active {
			return true
		}
	}
	return false
}

// Initialize applies the "initialize" permission gate: the bot must exist
// and be active. It returns the intent entry to log; nothing is executed.
func (r *Registry) Initialize(id string) (models.ExecutionLog, error) {
	b, ok := r.Get(id)
	if !ok {
		return models.ExecutionLog{}, ErrBotNotFound
	}
	if !b.Active {
		return models.ExecutionLog{}, ErrBotInactive
	}
	if b.IsGuardian {
		return models.ExecutionLog{Bot: b.Name, Action: "GOVERNANCE LOCK ENGAGED", Status: models.LogWarning}, nil
	}
	return models.ExecutionLog{Bot: b.Name, Action: "Initialization Requested", Status: models.LogSuccess}, nil
}
