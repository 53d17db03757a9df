package usecase

import (
	"context"
	"errors"
	"sync"

	"OmniTrade/internal/domain/models"
	drepo "OmniTrade/internal/domain/repository"
	"OmniTrade/internal/services/advice"
	"OmniTrade/internal/services/fleet"
	"OmniTrade/internal/services/governance"
	"OmniTrade/internal/services/market"
	"OmniTrade/pkg/logger"

	"github.com/google/uuid"
)

// AdvicePolicy decides what happens when advice is requested while an
// earlier request is still in flight.
type AdvicePolicy string

const (
	// PolicyLastSettled lets every request run; whichever settles last wins.
	PolicyLastSettled AdvicePolicy = "last_settled"
	// PolicySupersede cancels the in-flight request and drops stale answers.
	PolicySupersede AdvicePolicy = "supersede"
)

type govInputs struct {
	uncertainty models.Uncertainty
	drawdown    float64
}

type adviceInputs struct {
	phase       models.Phase
	uncertainty models.Uncertainty
}

// Dashboard owns the session: it mutates state through the store, runs the
// governance and advice effects when their inputs change, and fans
// snapshots out to subscribers.
type Dashboard struct {
	store    *Store
	sampler  *market.Sampler
	clock    *market.Clock
	registry *fleet.Registry
	signals  *fleet.Signals
	advisor  drepo.AdviceRequester
	metrics  drepo.Metrics
	logger   *logger.Logger
	policy   AdvicePolicy
	newID    func() string

	gov    Tracker[govInputs]
	advice Tracker[adviceInputs]

	// effects serialises every input change with the reconcile that follows
	// it, so trackers always see the inputs currently in the store.
	effects sync.Mutex

	mu      sync.Mutex
	baseCtx context.Context
	seq     uint64
	cancel  context.CancelFunc
	closing bool
	wg      sync.WaitGroup
}

// ErrClosed is returned for advice requests issued after Shutdown.
var ErrClosed = errors.New("dashboard is shutting down")

type DashboardOption func(*Dashboard)

func WithAdvicePolicy(p AdvicePolicy) DashboardOption {
	return func(d *Dashboard) {
		if p != "" {
			d.policy = p
		}
	}
}

// WithSignals enables the simulated trigger feed on every sample tick.
func WithSignals(s *fleet.Signals) DashboardOption {
	return func(d *Dashboard) { d.signals = s }
}

// WithClock replaces the wall clock used for the header and log stamps.
func WithClock(c *market.Clock) DashboardOption {
	return func(d *Dashboard) { d.clock = c }
}

// WithIDGenerator replaces uuid.NewString for execution log ids.
func WithIDGenerator(fn func() string) DashboardOption {
	return func(d *Dashboard) { d.newID = fn }
}

func NewDashboard(
	sampler *market.Sampler,
	registry *fleet.Registry,
	advisor drepo.AdviceRequester,
	metrics drepo.Metrics,
	l *logger.Logger,
	opts ...DashboardOption,
) *Dashboard {
	d := &Dashboard{
		sampler:  sampler,
		clock:    market.NewClock(),
		registry: registry,
		advisor:  advisor,
		metrics:  metrics,
		logger:   l,
		policy:   PolicyLastSettled,
		newID:    uuid.NewString,
		baseCtx:  context.Background(),
	}
	for _, opt := range opts {
		opt(d)
	}

	report := governance.Evaluate(models.UncertaintyLow, models.DefaultSystemMetrics().Drawdown)
	d.store = NewStore(models.Snapshot{
		Scanners: models.DefaultScannerState(),
		Bots:     registry.List(),
		Health:   report.HealthScore,
		Mode:     report.Mode,
		Metrics:  models.DefaultSystemMetrics(),
		Logs:     models.SeedLogs(),
		Advice:   advice.PlaceholderText,
		Time:     d.clock.String(),
		View:     models.ViewDashboard,
	})
	return d
}

// Start runs the mount-time effects: the first governance evaluation and
// the first advice request. Advice goroutines inherit ctx.
func (d *Dashboard) Start(ctx context.Context) {
	d.effects.Lock()
	defer d.effects.Unlock()
	d.mu.Lock()
	d.baseCtx = ctx
	d.mu.Unlock()
	d.reconcile()
}

// Snapshot returns a copy of the current session state.
func (d *Dashboard) Snapshot() *models.Snapshot {
	return d.store.Snapshot()
}

// Subscribe registers fn for every state change. fn runs on the mutating
// goroutine and must not call back into the dashboard synchronously.
func (d *Dashboard) Subscribe(fn func(*models.Snapshot)) (unsubscribe func()) {
	return d.store.Subscribe(fn)
}

// Sample takes one scanner reading, re-runs the effects and, when enabled,
// the simulated trigger feed.
func (d *Dashboard) Sample() *models.Snapshot {
	d.effects.Lock()
	defer d.effects.Unlock()

	prev := d.store.Snapshot().Scanners
	next := d.sampler.Sample(prev)
	next.Rotation = d.sampler.Rotation()
	next.Correlation = d.sampler.Correlation()

	d.store.Dispatch(ScannerSampled{Scanners: next})
	d.metrics.RecordTick("sample")
	snap := d.reconcile()

	if d.signals != nil {
		entries := d.signals.Check(prev, next, snap.Health, d.registry.List())
		if len(entries) > 0 {
			snap = d.appendLogs(entries)
		}
	}
	return snap
}

// TickClock refreshes the header clock. Subscribers are not notified.
func (d *Dashboard) TickClock() {
	d.store.Dispatch(ClockTicked{Time: d.clock.String()})
	d.metrics.RecordTick("clock")
}

// Clock returns the current time string with its UTC session and cycle.
func (d *Dashboard) Clock() models.ClockReading {
	return d.clock.Reading()
}

// SetMetrics replaces the externally supplied system metrics.
func (d *Dashboard) SetMetrics(m models.SystemMetrics) *models.Snapshot {
	d.effects.Lock()
	defer d.effects.Unlock()
	d.store.Dispatch(MetricsUpdated{Metrics: m})
	return d.reconcile()
}

func (d *Dashboard) SetView(v models.View) *models.Snapshot {
	return d.store.Dispatch(ViewChanged{View: v})
}

// Toggle flips a bot. Unknown ids leave state untouched and return
// fleet.ErrBotNotFound.
func (d *Dashboard) Toggle(id string) (models.BotConfig, error) {
	bot, ok := d.registry.Toggle(id)
	if !ok {
		return models.BotConfig{}, fleet.ErrBotNotFound
	}
	d.store.Dispatch(BotToggled{Bots: d.registry.List()})
	d.metrics.RecordToggle(bot.ID, bot.Active)
	d.logger.Info("bot toggled", logger.String("bot", bot.Name), logger.Bool("active", bot.Active))
	return bot, nil
}

// Initialize records the operator's intent to start an active bot.
func (d *Dashboard) Initialize(id string) (models.ExecutionLog, error) {
	entry, err := d.registry.Initialize(id)
	if err != nil {
		return models.ExecutionLog{}, err
	}
	snap := d.appendLogs([]models.ExecutionLog{entry})
	return snap.Logs[0], nil
}

// RefreshAdvice requests advice for the current reading regardless of
// whether its inputs changed. After Shutdown it returns ErrClosed.
func (d *Dashboard) RefreshAdvice() (*models.Snapshot, error) {
	d.effects.Lock()
	defer d.effects.Unlock()
	snap, ok := d.requestAdvice(d.store.Snapshot().Scanners)
	if !ok {
		return snap, ErrClosed
	}
	return snap, nil
}

// Wait blocks until every advice request issued so far has settled. It must
// not overlap new requests; use Shutdown when other callers may still be
// active.
func (d *Dashboard) Wait() {
	d.wg.Wait()
}

// Shutdown stops accepting advice requests and waits for in-flight ones.
func (d *Dashboard) Shutdown() {
	d.mu.Lock()
	d.closing = true
	d.mu.Unlock()
	d.wg.Wait()
}

// reconcile runs the effects whose inputs differ from their last run. It
// reads the store afresh and must be called with d.effects held.
func (d *Dashboard) reconcile() *models.Snapshot {
	snap := d.store.Snapshot()
	d.gov.Run(govInputs{snap.Scanners.Uncertainty, snap.Metrics.Drawdown}, func(in govInputs) {
		report := governance.Evaluate(in.uncertainty, in.drawdown)
		snap = d.store.Dispatch(HealthEvaluated{Report: report})
		d.metrics.RecordHealth(report.HealthScore, report.Mode)
		if report.Mode == models.ModeStop {
			d.logger.Warn("governance stop",
				logger.Int("health", report.HealthScore),
				logger.String("uncertainty", string(in.uncertainty)),
				logger.Float64("drawdown", in.drawdown),
			)
		}
	})

	d.advice.Run(adviceInputs{snap.Scanners.Phase, snap.Scanners.Uncertainty}, func(adviceInputs) {
		snap, _ = d.requestAdvice(snap.Scanners)
	})
	return snap
}

// requestAdvice issues a request in its own goroutine. It reports false
// without issuing anything once the dashboard is shutting down.
func (d *Dashboard) requestAdvice(reading models.ScannerState) (*models.Snapshot, bool) {
	d.mu.Lock()
	if d.closing {
		d.mu.Unlock()
		return d.store.Snapshot(), false
	}
	d.seq++
	seq := d.seq
	ctx := d.baseCtx
	if d.policy == PolicySupersede {
		if d.cancel != nil {
			d.cancel()
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithCancel(ctx)
		d.cancel = cancel
	}
	d.wg.Add(1)
	d.mu.Unlock()

	snap := d.store.Dispatch(AdvicePending{})

	go func() {
		defer d.wg.Done()
		text := d.advisor.Request(ctx, reading)
		d.settle(seq, text)
	}()
	return snap, true
}

func (d *Dashboard) settle(seq uint64, text string) {
	d.mu.Lock()
	stale := d.policy == PolicySupersede && seq != d.seq
	if !stale && d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.mu.Unlock()

	if stale {
		d.logger.Debug("stale advice discarded", logger.Uint64("seq", seq))
		return
	}
	d.store.Dispatch(AdviceSettled{Text: text})
}

func (d *Dashboard) appendLogs(entries []models.ExecutionLog) *models.Snapshot {
	stamp := d.clock.String()
	stamped := make([]models.ExecutionLog, len(entries))
	for i, e := range entries {
		if e.ID == "" {
			e.ID = d.newID()
		}
		if e.Timestamp == "" {
			e.Timestamp = stamp
		}
		stamped[i] = e
	}
	return d.store.Dispatch(LogAppended{Entries: stamped})
}

// IsNotFound reports whether err means the bot id is unknown.
func IsNotFound(err error) bool { return errors.Is(err, fleet.ErrBotNotFound) }

// IsForbidden reports whether err means the bot may not be initialized.
func IsForbidden(err error) bool { return errors.Is(err, fleet.ErrBotInactive) }
