package usecase

import (
	"context"
	"errors"
	"time"

	"OmniTrade/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// Runner drives the dashboard timers until its context ends.
type Runner struct {
	dashboard   *Dashboard
	sampleEvery time.Duration
	clockEvery  time.Duration
	logger      *logger.Logger
}

func NewRunner(d *Dashboard, sampleEvery, clockEvery time.Duration, l *logger.Logger) *Runner {
	return &Runner{dashboard: d, sampleEvery: sampleEvery, clockEvery: clockEvery, logger: l}
}

// Run blocks until ctx is cancelled, then waits for in-flight advice.
func (r *Runner) Run(ctx context.Context) error {
	r.dashboard.Start(ctx)
	r.logger.Info("simulation started",
		logger.Duration("sample_interval_ms", r.sampleEvery),
		logger.Duration("clock_interval_ms", r.clockEvery),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return every(gctx, r.sampleEvery, func() { r.dashboard.Sample() })
	})
	g.Go(func() error {
		return every(gctx, r.clockEvery, r.dashboard.TickClock)
	})

	err := g.Wait()
	r.dashboard.Shutdown()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func every(ctx context.Context, d time.Duration, fn func()) error {
	t := time.NewTicker(d)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			fn()
		}
	}
}
