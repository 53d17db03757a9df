// Package governance derives the health score and operating tier from the
// current uncertainty reading and account drawdown.
package governance

import (
	"math"

	"OmniTrade/internal/domain/models"
)

const (
	baseScore            = 100.0
	drawdownWeight       = 2.0
	highPenalty          = 10.0
	criticalPenalty      = 80.0
	fullModeThreshold    = 90
	reducedModeThreshold = 70
)

// Evaluate computes the health score and governance mode. It is total over
// finite inputs. DEFENSIVE is never returned.
func Evaluate(uncertainty models.Uncertainty, drawdownPct float64) models.HealthReport {
	score := baseScore - drawdownPct*drawdownWeight
	if uncertainty == models.UncertaintyHigh {
		score -= highPenalty
	}
	if uncertainty == models.UncertaintyCritical {
		score -= criticalPenalty
	}
	health := int(math.Floor(math.Max(0, score)))
	return models.HealthReport{HealthScore: health, Mode: ModeFor(health)}
}

// ModeFor maps a health score onto the three reachable tiers.
func ModeFor(health int) models.GovernanceMode {
	switch {
	case health >= fullModeThreshold:
		return models.ModeFull
	case health >= reducedModeThreshold:
		return models.ModeReduced
	default:
		return models.ModeStop
	}
}
