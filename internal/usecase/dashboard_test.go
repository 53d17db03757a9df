package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"OmniTrade/internal/domain/models"
	"OmniTrade/internal/services/fleet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartEvaluatesAndRequestsAdvice(t *testing.T) {
	adv := &instantAdvisor{}
	f := newFixture(t, adv)

	f.dash.Start(context.Background())
	f.dash.Wait()

	snap := f.dash.Snapshot()
	assert.Equal(t, 99, snap.Health)
	assert.Equal(t, models.ModeFull, snap.Mode)
	assert.Equal(t, "advice #1 for LOW", snap.Advice)
	assert.False(t, snap.AdviceLoading)
	assert.Equal(t, "09:30:15", snap.Time)
	assert.Equal(t, 1, adv.count())
}

func TestUnchangedReadingDoesNotRefetch(t *testing.T) {
	adv := &instantAdvisor{}
	f := newFixture(t, adv)
	f.dash.Start(context.Background())

	for i := 0; i < 3; i++ {
		f.dash.Sample()
	}
	f.dash.Wait()

	assert.Equal(t, 1, adv.count())
	snap := f.dash.Snapshot()
	assert.Len(t, snap.Scanners.Rotation, 7)
	require.NotNil(t, snap.Scanners.Correlation)
	assert.Equal(t, 0.5, snap.Scanners.Correlation.StressIndex)
}

func TestHighUncertaintyReducesAndRefetches(t *testing.T) {
	adv := &instantAdvisor{}
	f := newFixture(t, adv)
	f.dash.Start(context.Background())
	f.dash.Wait()

	f.rnd.push(0.5, 0.5, 0.95)
	snap := f.dash.Sample()
	f.dash.Wait()

	assert.Equal(t, models.UncertaintyHigh, snap.Scanners.Uncertainty)
	assert.Equal(t, 89, snap.Health)
	assert.Equal(t, models.ModeReduced, snap.Mode)
	assert.Equal(t, 2, adv.count())
	assert.Equal(t, "advice #2 for HIGH", f.dash.Snapshot().Advice)
}

func TestCriticalUncertaintyStops(t *testing.T) {
	f := newFixture(t, &instantAdvisor{})
	f.dash.Start(context.Background())

	f.rnd.push(0.99, 0.99)
	snap := f.dash.Sample()
	f.dash.Wait()

	assert.Equal(t, models.VolatilityHigh, snap.Scanners.Volatility)
	assert.Equal(t, models.UncertaintyCritical, snap.Scanners.Uncertainty)
	assert.Equal(t, 19, snap.Health)
	assert.Equal(t, models.ModeStop, snap.Mode)
}

func TestLastSettledAnswerWins(t *testing.T) {
	adv := newGatedAdvisor()
	f := newFixture(t, adv)

	f.dash.Start(context.Background())
	first := adv.next(t)
	f.dash.RefreshAdvice()
	second := adv.next(t)

	second.reply <- "second"
	require.Eventually(t, func() bool { return f.dash.Snapshot().Advice == "second" }, time.Second, 5*time.Millisecond)

	first.reply <- "first"
	f.dash.Wait()
	assert.Equal(t, "first", f.dash.Snapshot().Advice)
	assert.NoError(t, first.ctx.Err())
}

func TestSupersedeDropsStaleAnswers(t *testing.T) {
	adv := newGatedAdvisor()
	f := newFixture(t, adv, WithAdvicePolicy(PolicySupersede))

	f.dash.Start(context.Background())
	first := adv.next(t)
	f.dash.RefreshAdvice()
	second := adv.next(t)

	select {
	case <-first.ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("earlier request was not cancelled")
	}

	second.reply <- "second"
	f.dash.Wait()
	snap := f.dash.Snapshot()
	assert.Equal(t, "second", snap.Advice)
	assert.False(t, snap.AdviceLoading)
}

func TestAdviceLoadingFlag(t *testing.T) {
	adv := newGatedAdvisor()
	f := newFixture(t, adv)

	f.dash.Start(context.Background())
	call := adv.next(t)
	assert.True(t, f.dash.Snapshot().AdviceLoading)
	assert.Equal(t, models.UncertaintyLow, call.state.Uncertainty)

	call.reply <- "ok"
	f.dash.Wait()
	assert.False(t, f.dash.Snapshot().AdviceLoading)
}

func TestToggle(t *testing.T) {
	f := newFixture(t, &instantAdvisor{})

	bot, err := f.dash.Toggle("3")
	require.NoError(t, err)
	assert.True(t, bot.Active)
	assert.True(t, f.dash.Snapshot().Bots[2].Active)

	before := f.dash.Snapshot().Version
	_, err = f.dash.Toggle("99")
	assert.True(t, IsNotFound(err))
	assert.Equal(t, before, f.dash.Snapshot().Version)
}

func TestInitialize(t *testing.T) {
	f := newFixture(t, &instantAdvisor{})

	entry, err := f.dash.Initialize("1")
	require.NoError(t, err)
	assert.Equal(t, "log-1", entry.ID)
	assert.Equal(t, "09:30:15", entry.Timestamp)
	assert.Equal(t, "Initialization Requested", entry.Action)
	assert.Equal(t, entry, f.dash.Snapshot().Logs[0])

	_, err = f.dash.Initialize("3")
	assert.True(t, IsForbidden(err))
	_, err = f.dash.Initialize("nope")
	assert.True(t, IsNotFound(err))
}

func TestGuardianHaltFillsCappedFeed(t *testing.T) {
	rnd := &scripted{}
	f := newFixture(t, &instantAdvisor{}, WithSignals(fleet.NewSignals(rnd)))

	_, err := f.dash.Toggle(fleet.GuardianID)
	require.NoError(t, err)
	snap := f.dash.SetMetrics(models.SystemMetrics{Drawdown: 40})
	assert.Equal(t, 20, snap.Health)
	assert.Equal(t, models.ModeStop, snap.Mode)

	for i := 0; i < 25; i++ {
		snap = f.dash.Sample()
	}
	f.dash.Wait()

	require.Len(t, snap.Logs, MaxLogs)
	for _, l := range snap.Logs {
		assert.Equal(t, "HALT TRADING - HEALTH CRITICAL", l.Action)
		assert.Equal(t, models.LogWarning, l.Status)
	}
	assert.Equal(t, "log-25", snap.Logs[0].ID)
}

func TestTickClockIsQuiet(t *testing.T) {
	f := newFixture(t, &instantAdvisor{})
	heard := 0
	f.dash.Subscribe(func(*models.Snapshot) { heard++ })

	f.dash.TickClock()
	assert.Zero(t, heard)
	assert.Equal(t, "09:30:15", f.dash.Snapshot().Time)

	r := f.dash.Clock()
	assert.Equal(t, models.SessionLondon, r.Session)
	assert.Equal(t, models.CycleEarly, r.Cycle)
}

func TestSetMetricsReevaluates(t *testing.T) {
	f := newFixture(t, &instantAdvisor{})
	f.dash.Start(context.Background())

	snap := f.dash.SetMetrics(models.SystemMetrics{Drawdown: 15.1})
	f.dash.Wait()
	assert.Equal(t, 69, snap.Health)
	assert.Equal(t, models.ModeStop, snap.Mode)
	assert.Equal(t, 15.1, snap.Metrics.Drawdown)
}

func TestSetView(t *testing.T) {
	f := newFixture(t, &instantAdvisor{})
	assert.Equal(t, models.ViewLabs, f.dash.SetView(models.ViewLabs).View)
}

func TestMetricsUpdateDuringSampleSettlesOnCurrentInputs(t *testing.T) {
	f := newFixture(t, &instantAdvisor{})
	f.dash.Start(context.Background())
	f.dash.Wait()

	// A concurrent metrics update lands right after the new reading is
	// stored and before the sample's own reconcile.
	done := make(chan struct{})
	var once sync.Once
	unsubscribe := f.dash.Subscribe(func(s *models.Snapshot) {
		if s.Scanners.Uncertainty != models.UncertaintyHigh {
			return
		}
		once.Do(func() {
			go func() {
				f.dash.SetMetrics(models.SystemMetrics{Drawdown: 20})
				close(done)
			}()
			select {
			case <-done:
			case <-time.After(50 * time.Millisecond):
			}
		})
	})
	defer unsubscribe()

	f.rnd.push(0.5, 0.5, 0.95)
	f.dash.Sample()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("metrics update never completed")
	}
	f.dash.Wait()

	snap := f.dash.Snapshot()
	assert.Equal(t, models.UncertaintyHigh, snap.Scanners.Uncertainty)
	assert.Equal(t, 20.0, snap.Metrics.Drawdown)
	assert.Equal(t, 50, snap.Health)
	assert.Equal(t, models.ModeStop, snap.Mode)
}

func TestRefreshAfterShutdownIsRefused(t *testing.T) {
	adv := &instantAdvisor{}
	f := newFixture(t, adv)
	f.dash.Start(context.Background())
	f.dash.Shutdown()

	snap, err := f.dash.RefreshAdvice()
	assert.ErrorIs(t, err, ErrClosed)
	assert.False(t, snap.AdviceLoading)
	assert.Equal(t, 1, adv.count())

	f.rnd.push(0.5, 0.5, 0.95)
	f.dash.Sample()
	assert.Equal(t, 1, adv.count())
}
