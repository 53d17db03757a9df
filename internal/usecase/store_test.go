package usecase

import (
	"fmt"
	"testing"

	"OmniTrade/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() *Store {
	return NewStore(models.Snapshot{
		Scanners: models.DefaultScannerState(),
		Metrics:  models.DefaultSystemMetrics(),
		Logs:     models.SeedLogs(),
		View:     models.ViewDashboard,
	})
}

func TestLogAppendedPrependsAndCaps(t *testing.T) {
	s := newTestStore()
	for i := 0; i < 25; i++ {
		s.Dispatch(LogAppended{Entries: []models.ExecutionLog{{ID: fmt.Sprint(i)}}})
	}
	snap := s.Snapshot()
	require.Len(t, snap.Logs, MaxLogs)
	assert.Equal(t, "24", snap.Logs[0].ID, "newest first")
	assert.Equal(t, "5", snap.Logs[MaxLogs-1].ID)
}

func TestQuietActionsDoNotNotify(t *testing.T) {
	s := newTestStore()
	heard := 0
	s.Subscribe(func(*models.Snapshot) { heard++ })

	s.Dispatch(ClockTicked{Time: "10:00:00"})
	s.Dispatch(ViewChanged{View: models.ViewDashboard})
	s.Dispatch(LogAppended{})
	assert.Zero(t, heard)

	s.Dispatch(ViewChanged{View: models.ViewLabs})
	assert.Equal(t, 1, heard)
	assert.Equal(t, "10:00:00", s.Snapshot().Time)
}

func TestSnapshotsAreIsolatedCopies(t *testing.T) {
	s := newTestStore()
	s.Dispatch(BotToggled{Bots: []models.BotConfig{{ID: "1", Active: true}}})

	snap := s.Snapshot()
	snap.Bots[0].Active = false
	snap.Logs[0].Action = "mutated"
	snap.Scanners.Volatility = models.VolatilityHigh

	again := s.Snapshot()
	assert.True(t, again.Bots[0].Active)
	assert.NotEqual(t, "mutated", again.Logs[0].Action)
	assert.Equal(t, models.VolatilityLow, again.Scanners.Volatility)
}

func TestVersionIncreasesAndUnsubscribeStops(t *testing.T) {
	s := newTestStore()
	var versions []uint64
	unsub := s.Subscribe(func(snap *models.Snapshot) { versions = append(versions, snap.Version) })

	s.Dispatch(AdvicePending{})
	s.Dispatch(AdviceSettled{Text: "x"})
	unsub()
	unsub()
	s.Dispatch(AdvicePending{})

	assert.Equal(t, []uint64{1, 2}, versions)
	assert.Equal(t, uint64(3), s.Snapshot().Version)
}
