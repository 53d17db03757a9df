package usecase

import (
	"context"
	"testing"
	"time"

	"OmniTrade/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunnerTicksUntilCancelled(t *testing.T) {
	adv := &instantAdvisor{}
	f := newFixture(t, adv)
	r := NewRunner(f.dash, 5*time.Millisecond, 5*time.Millisecond, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, func() bool {
		return f.dash.Snapshot().Scanners.Rotation != nil
	}, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop")
	}
	assert.Equal(t, 1, adv.count())
}
