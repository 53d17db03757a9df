package repository

import (
	"context"

	"OmniTrade/internal/domain/models"
)

// RandomSource yields uniform draws in [0,1).
type RandomSource interface {
	Float64() float64
}

// AdviceRequester turns a scanner reading into advisory text. Implementations
// absorb every failure and return a fallback string instead.
type AdviceRequester interface {
	Request(ctx context.Context, state models.ScannerState) string
}

// SnapshotPublisher ships dashboard snapshots to a downstream bus.
type SnapshotPublisher interface {
	Publish(ctx context.Context, s *models.Snapshot) error
	Close() error
}

type Metrics interface {
	RecordTick(kind string)
	RecordHealth(score int, mode models.GovernanceMode)
	RecordAdvice(result string, seconds float64)
	RecordToggle(botID string, active bool)
	RecordStreamClients(n int)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
