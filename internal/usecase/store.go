package usecase

import (
	"sync"

	"OmniTrade/internal/domain/models"
)

// MaxLogs bounds the execution feed.
const MaxLogs = 20

type state struct {
	scanners      models.ScannerState
	bots          []models.BotConfig
	health        int
	mode          models.GovernanceMode
	metrics       models.SystemMetrics
	logs          []models.ExecutionLog
	advice        string
	adviceLoading bool
	time          string
	view          models.View
}

// Action is one state transition. apply reports whether subscribers should
// hear about it; cosmetic changes stay quiet.
type Action interface {
	apply(s *state) bool
}

type ScannerSampled struct{ Scanners models.ScannerState }

func (a ScannerSampled) apply(s *state) bool {
	s.scanners = a.Scanners.Clone()
	return true
}

type MetricsUpdated struct{ Metrics models.SystemMetrics }

func (a MetricsUpdated) apply(s *state) bool {
	s.metrics = a.Metrics
	return true
}

type HealthEvaluated struct{ Report models.HealthReport }

func (a HealthEvaluated) apply(s *state) bool {
	changed := s.health != a.Report.HealthScore || s.mode != a.Report.Mode
	s.health, s.mode = a.Report.HealthScore, a.Report.Mode
	return changed
}

// BotToggled replaces the fleet view with the registry's current list.
type BotToggled struct{ Bots []models.BotConfig }

func (a BotToggled) apply(s *state) bool {
	s.bots = append([]models.BotConfig(nil), a.Bots...)
	return true
}

type ViewChanged struct{ View models.View }

func (a ViewChanged) apply(s *state) bool {
	changed := s.view != a.View
	s.view = a.View
	return changed
}

type ClockTicked struct{ Time string }

func (a ClockTicked) apply(s *state) bool {
	s.time = a.Time
	return false
}

type AdvicePending struct{}

func (AdvicePending) apply(s *state) bool {
	s.adviceLoading = true
	return true
}

// AdviceSettled stores the answer and clears the pending flag.
type AdviceSettled struct{ Text string }

func (a AdviceSettled) apply(s *state) bool {
	s.advice = a.Text
	s.adviceLoading = false
	return true
}

// LogAppended prepends entries (already newest first) and trims the feed.
type LogAppended struct{ Entries []models.ExecutionLog }

func (a LogAppended) apply(s *state) bool {
	if len(a.Entries) == 0 {
		return false
	}
	logs := make([]models.ExecutionLog, 0, len(a.Entries)+len(s.logs))
	logs = append(logs, a.Entries...)
	logs = append(logs, s.logs...)
	if len(logs) > MaxLogs {
		logs = logs[:MaxLogs]
	}
	s.logs = logs
	return true
}

// Store serialises every mutation of the session state and hands out
// deep-copied snapshots.
type Store struct {
	mu      sync.Mutex
	st      state
	version uint64
	subs    map[int]func(*models.Snapshot)
	nextSub int
}

func NewStore(initial models.Snapshot) *Store {
	return &Store{
		st: state{
			scanners:      initial.Scanners.Clone(),
			bots:          append([]models.BotConfig(nil), initial.Bots...),
			health:        initial.Health,
			mode:          initial.Mode,
			metrics:       initial.Metrics,
			logs:          append([]models.ExecutionLog(nil), initial.Logs...),
			advice:        initial.Advice,
			adviceLoading: initial.AdviceLoading,
			time:          initial.Time,
			view:          initial.View,
		},
		subs: make(map[int]func(*models.Snapshot)),
	}
}

// Dispatch applies actions in order as one transition and returns the
// resulting snapshot. Subscribers run after the lock is released, so they
// may observe versions out of order and should compare Version.
func (s *Store) Dispatch(actions ...Action) *models.Snapshot {
	s.mu.Lock()
	notify := false
	for _, a := range actions {
		if a.apply(&s.st) {
			notify = true
		}
	}
	s.version++
	snap := s.snapshotLocked()
	var subs []func(*models.Snapshot)
	if notify {
		subs = make([]func(*models.Snapshot), 0, len(s.subs))
		for _, fn := range s.subs {
			subs = append(subs, fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
	return snap
}

func (s *Store) Snapshot() *models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers fn for every notifying transition.
func (s *Store) Subscribe(fn func(*models.Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) snapshotLocked() *models.Snapshot {
	return &models.Snapshot{
		Scanners:      s.st.scanners.Clone(),
		Bots:          append([]models.BotConfig(nil), s.st.bots...),
		Health:        s.st.health,
		Mode:          s.st.mode,
		Metrics:       s.st.metrics,
		Logs:          append([]models.ExecutionLog(nil), s.st.logs...),
		Advice:        s.st.advice,
		AdviceLoading: s.st.adviceLoading,
		Time:          s.st.time,
		View:          s.st.view,
		Version:       s.version,
	}
}
