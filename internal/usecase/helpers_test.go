package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"OmniTrade/internal/domain/models"
	drepo "OmniTrade/internal/domain/repository"
	"OmniTrade/internal/services/advice"
	"OmniTrade/internal/services/fleet"
	"OmniTrade/internal/services/market"
	"OmniTrade/pkg/logger"
	"OmniTrade/pkg/metrics"
)

// scripted yields queued draws, then 0.5 forever.
type scripted struct {
	mu    sync.Mutex
	draws []float64
}

func (s *scripted) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.draws) == 0 {
		return 0.5
	}
	v := s.draws[0]
	s.draws = s.draws[1:]
	return v
}

func (s *scripted) push(v ...float64) {
	s.mu.Lock()
	s.draws = append(s.draws, v...)
	s.mu.Unlock()
}

// instantAdvisor answers immediately and counts calls.
type instantAdvisor struct {
	mu    sync.Mutex
	calls []models.ScannerState
}

func (a *instantAdvisor) Request(_ context.Context, s models.ScannerState) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, s)
	return fmt.Sprintf("advice #%d for %s", len(a.calls), s.Uncertainty)
}

func (a *instantAdvisor) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.calls)
}

type gatedCall struct {
	ctx   context.Context
	state models.ScannerState
	reply chan string
}

// gatedAdvisor blocks every request until the test replies to it.
type gatedAdvisor struct {
	started chan gatedCall
}

func newGatedAdvisor() *gatedAdvisor {
	return &gatedAdvisor{started: make(chan gatedCall, 16)}
}

func (a *gatedAdvisor) Request(ctx context.Context, s models.ScannerState) string {
	c := gatedCall{ctx: ctx, state: s, reply: make(chan string, 1)}
	a.started <- c
	select {
	case text := <-c.reply:
		return text
	case <-ctx.Done():
		return advice.FallbackText
	}
}

func (a *gatedAdvisor) next(t *testing.T) gatedCall {
	t.Helper()
	select {
	case c := <-a.started:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("advice request was not issued")
		return gatedCall{}
	}
}

var fixedNow = time.Date(2024, 3, 4, 9, 30, 15, 0, time.UTC)

type fixture struct {
	dash *Dashboard
	rnd  *scripted
}

func newFixture(t *testing.T, advisor drepo.AdviceRequester, opts ...DashboardOption) *fixture {
	t.Helper()
	rnd := &scripted{}
	ids := 0
	base := []DashboardOption{
		WithClock(&market.Clock{Now: func() time.Time { return fixedNow }}),
		WithIDGenerator(func() string {
			ids++
			return fmt.Sprintf("log-%d", ids)
		}),
	}
	d := NewDashboard(
		market.NewSampler(rnd),
		fleet.NewRegistry(fleet.SeedBots()),
		advisor,
		metrics.Nop{},
		logger.Nop(),
		append(base, opts...)...,
	)
	return &fixture{dash: d, rnd: rnd}
}
